// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package expression compiles user-supplied expression strings into
// integrands for the quadrature engine.
//
// The CLI and HTTP service accept integrands like "exp(-x)*sin(x)" and
// bound expressions like "2*x". This package validates them, compiles them
// with the expr language, and wraps the compiled program in the engine's
// function types. The environment exposes the variables of the requested
// dimension (x, or x and y, or x, y and z) plus the math functions and
// constants an integrand plausibly needs.
//
// Compiled integrands are not safe for concurrent use: each one owns a
// mutable variable environment. Compile one integrand per integration call.
package expression

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/Daniel-B-Smith/scipy/integrate"
	"github.com/Daniel-B-Smith/scipy/pkg/validation"
)

// baseEnv returns the evaluation environment shared by every compilation:
// math functions, constants, and a slot per integration variable.
func baseEnv(vars ...string) map[string]any {
	env := map[string]any{
		// Constants
		"pi": math.Pi,
		"e":  math.E,

		// Elementary functions
		"abs":   math.Abs,
		"sqrt":  math.Sqrt,
		"cbrt":  math.Cbrt,
		"exp":   math.Exp,
		"log":   math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
		"pow":   math.Pow,

		// Trigonometry
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"atan2": math.Atan2,
		"sinh":  math.Sinh,
		"cosh":  math.Cosh,
		"tanh":  math.Tanh,

		// Special functions common in integrands
		"erf":   math.Erf,
		"erfc":  math.Erfc,
		"gamma": math.Gamma,

		// Rounding
		"floor": math.Floor,
		"ceil":  math.Ceil,
	}
	for _, v := range vars {
		env[v] = float64(0)
	}
	return env
}

// compile validates the expression and compiles it against an environment
// containing the given variables. The returned env is the mutable instance
// the caller feeds to the VM on each evaluation.
func compile(code string, vars ...string) (*vm.Program, map[string]any, error) {
	trimmed, err := validation.SanitizeExpression(code)
	if err != nil {
		return nil, nil, err
	}

	env := baseEnv(vars...)
	program, err := expr.Compile(trimmed, expr.Env(env), expr.AsFloat64())
	if err != nil {
		return nil, nil, fmt.Errorf("compile expression: %w", err)
	}
	return program, env, nil
}

// evaluate runs the program with the current environment. Evaluation
// failures surface as NaN, which the engine classifies as bad integrand
// behavior at the offending point rather than silently skipping it.
func evaluate(program *vm.Program, env map[string]any) float64 {
	out, err := expr.Run(program, env)
	if err != nil {
		return math.NaN()
	}
	v, ok := out.(float64)
	if !ok {
		return math.NaN()
	}
	return v
}

// Compile1 compiles an expression of the variable x into a one-dimensional
// integrand. It serves both integrands for Quad and bound expressions for
// DblQuad's inner limits.
//
// Example:
//
//	f, err := expression.Compile1("exp(-x)*sin(x)")
//	if err != nil {
//	    return err
//	}
//	res, err := integrate.Quad(ctx, f, 0, math.Inf(1), opts)
func Compile1(code string) (integrate.Func, error) {
	program, env, err := compile(code, "x")
	if err != nil {
		return nil, err
	}
	return func(x float64) float64 {
		env["x"] = x
		return evaluate(program, env)
	}, nil
}

// Compile2 compiles an expression of x and y into a two-dimensional
// integrand for DblQuad, or a z-bound expression for TplQuad.
func Compile2(code string) (integrate.Func2, error) {
	program, env, err := compile(code, "x", "y")
	if err != nil {
		return nil, err
	}
	return func(x, y float64) float64 {
		env["x"] = x
		env["y"] = y
		return evaluate(program, env)
	}, nil
}

// Compile3 compiles an expression of x, y and z into a three-dimensional
// integrand for TplQuad.
func Compile3(code string) (integrate.Func3, error) {
	program, env, err := compile(code, "x", "y", "z")
	if err != nil {
		return nil, err
	}
	return func(x, y, z float64) float64 {
		env["x"] = x
		env["y"] = y
		env["z"] = z
		return evaluate(program, env)
	}, nil
}
