// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Daniel-B-Smith/scipy/services/quadrature"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	evalLower       string    // Outer lower bound: number or "inf"/"-inf"
	evalUpper       string    // Outer upper bound: number or "inf"/"-inf"
	evalWeight      string    // Weight function: none, sin, cos, algebraic, cauchy
	evalOmega       float64   // Oscillation frequency for sin/cos
	evalAlpha       float64   // Left endpoint exponent for algebraic
	evalBeta        float64   // Right endpoint exponent for algebraic
	evalLogLeft     bool      // Add log(x-a) factor to the algebraic weight
	evalLogRight    bool      // Add log(b-x) factor to the algebraic weight
	evalPole        float64   // Principal-value pole for cauchy
	evalBreakPoints []float64 // Known non-smooth interior abscissas
	evalAbsTol      float64   // Absolute tolerance
	evalRelTol      float64   // Relative tolerance
	evalMaxSubdiv   int       // Bisection budget
	evalYLower      string    // Inner y lower bound expression (2-D/3-D)
	evalYUpper      string    // Inner y upper bound expression (2-D/3-D)
	evalZLower      string    // Innermost z lower bound expression (3-D)
	evalZUpper      string    // Innermost z upper bound expression (3-D)
	evalTimeout     int       // Timeout in seconds
	evalJSON        bool      // Output as JSON
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var evalCmd = &cobra.Command{
	Use:   "eval [expression]",
	Short: "Evaluate a definite integral",
	Long: `Evaluate the definite integral of an expression.

The expression is written in terms of x (plus y and z for nested
integrals) and supports the usual math functions: sin, cos, tan, exp,
log, sqrt, abs, pow, erf, gamma, and friends, plus the constants pi
and e. Bounds accept numbers or the spellings "inf" and "-inf".

Examples:
  quad eval "x*x" -a 0 -b 1
  quad eval "exp(-x)" -a 0 -b inf
  quad eval "exp(-x*x)" -a -inf -b inf --abs-tol 1e-12
  quad eval "exp(-4*x)" -a 0 -b inf --weight sin --omega 3
  quad eval "1" -a 0 -b 1 --weight algebraic --alpha -0.5
  quad eval "1" -a -1 -b 1 --weight cauchy --pole 0
  quad eval "x < 1 ? 1 : 0" -a 0 -b 2 --break-points 1
  quad eval "x + y" -a 1 -b 2 --y-lower x --y-upper 2*x
  quad eval "x*x" -a 0 -b 1 --json

Exit Codes:
  0 = Integration converged
  1 = Integration terminated without convergence (estimate still printed)
  2 = Invalid expression, bounds, or options`,
	Args: cobra.ExactArgs(1),
	Run:  runEvalCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	evalCmd.Flags().StringVarP(&evalLower, "lower", "a", "",
		"Lower bound: a number or \"inf\"/\"-inf\" (required)")
	evalCmd.Flags().StringVarP(&evalUpper, "upper", "b", "",
		"Upper bound: a number or \"inf\"/\"-inf\" (required)")
	evalCmd.Flags().StringVar(&evalWeight, "weight", "",
		"Weight function: sin, cos, algebraic, or cauchy")
	evalCmd.Flags().Float64Var(&evalOmega, "omega", 0,
		"Oscillation frequency for --weight sin/cos")
	evalCmd.Flags().Float64Var(&evalAlpha, "alpha", 0,
		"Left endpoint exponent for --weight algebraic")
	evalCmd.Flags().Float64Var(&evalBeta, "beta", 0,
		"Right endpoint exponent for --weight algebraic")
	evalCmd.Flags().BoolVar(&evalLogLeft, "log-left", false,
		"Multiply a log(x-a) factor into the algebraic weight")
	evalCmd.Flags().BoolVar(&evalLogRight, "log-right", false,
		"Multiply a log(b-x) factor into the algebraic weight")
	evalCmd.Flags().Float64Var(&evalPole, "pole", 0,
		"Principal-value pole location for --weight cauchy")
	evalCmd.Flags().Float64SliceVar(&evalBreakPoints, "break-points", nil,
		"Interior abscissas where the integrand is non-smooth")
	evalCmd.Flags().Float64Var(&evalAbsTol, "abs-tol", 0,
		"Absolute tolerance (default 1.49e-8)")
	evalCmd.Flags().Float64Var(&evalRelTol, "rel-tol", 0,
		"Relative tolerance (default 1.49e-8)")
	evalCmd.Flags().IntVar(&evalMaxSubdiv, "max-subdivisions", 0,
		"Bisection budget (default 200)")
	evalCmd.Flags().StringVar(&evalYLower, "y-lower", "",
		"Inner y lower bound expression in x (promotes to a double integral)")
	evalCmd.Flags().StringVar(&evalYUpper, "y-upper", "",
		"Inner y upper bound expression in x")
	evalCmd.Flags().StringVar(&evalZLower, "z-lower", "",
		"Innermost z lower bound expression in x and y (promotes to a triple integral)")
	evalCmd.Flags().StringVar(&evalZUpper, "z-upper", "",
		"Innermost z upper bound expression in x and y")
	evalCmd.Flags().IntVar(&evalTimeout, "timeout", 60,
		"Timeout in seconds")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false,
		"Output as JSON for scripting")

	evalCmd.MarkFlagRequired("lower")
	evalCmd.MarkFlagRequired("upper")

	// Add to root
	rootCmd.AddCommand(evalCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runEvalCommand builds the integration request from flags, runs it, and
// prints the result.
func runEvalCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(evalTimeout)*time.Second)
	defer cancel()

	req, err := buildEvalRequest(args[0])
	if err != nil {
		outputEvalError(err)
		os.Exit(2)
	}

	svc := quadrature.NewService(quadrature.ServiceConfig{
		CallTimeout: time.Duration(evalTimeout) * time.Second,
	})

	resp, err := svc.Integrate(ctx, req)
	if err != nil {
		outputEvalError(err)
		os.Exit(2)
	}

	if evalJSON {
		outputEvalJSON(resp)
	} else {
		outputEvalText(resp)
	}

	if !resp.Converged {
		os.Exit(1)
	}
}

// buildEvalRequest assembles the integration request from the command
// flags. Flag combinations the engine would reject are passed through and
// reported by the service with context.
func buildEvalRequest(expression string) (*quadrature.IntegrateRequest, error) {
	req := &quadrature.IntegrateRequest{
		Expression:      expression,
		Lower:           evalLower,
		Upper:           evalUpper,
		Weight:          evalWeight,
		Omega:           evalOmega,
		Alpha:           evalAlpha,
		Beta:            evalBeta,
		LogLeft:         evalLogLeft,
		LogRight:        evalLogRight,
		Pole:            evalPole,
		BreakPoints:     evalBreakPoints,
		AbsTol:          evalAbsTol,
		RelTol:          evalRelTol,
		MaxSubdivisions: evalMaxSubdiv,
	}

	if (evalYLower == "") != (evalYUpper == "") {
		return nil, fmt.Errorf("--y-lower and --y-upper must be given together")
	}
	if (evalZLower == "") != (evalZUpper == "") {
		return nil, fmt.Errorf("--z-lower and --z-upper must be given together")
	}
	if evalYLower != "" {
		req.Y = &quadrature.InnerRange{Lower: evalYLower, Upper: evalYUpper}
	}
	if evalZLower != "" {
		req.Z = &quadrature.InnerRange{Lower: evalZLower, Upper: evalZUpper}
	}

	return req, nil
}

// =============================================================================
// OUTPUT FUNCTIONS
// =============================================================================

func outputEvalError(err error) {
	if evalJSON {
		result := map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.Encode(result)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func outputEvalJSON(resp *quadrature.IntegrateResponse) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		os.Exit(2)
	}
}

func outputEvalText(resp *quadrature.IntegrateResponse) {
	fmt.Printf("Value:        %.15g\n", resp.Value)
	fmt.Printf("Abs error:    %.6g\n", resp.AbsError)
	fmt.Printf("Status:       %s\n", resp.Status)
	fmt.Printf("Evaluations:  %d\n", resp.Evaluations)
	fmt.Printf("Subdivisions: %d\n", resp.Subdivisions)
	fmt.Printf("Elapsed:      %.3gms\n", resp.ElapsedMS)

	if resp.BadPoint != nil {
		fmt.Printf("Failed at:    x=%g\n", *resp.BadPoint)
	}
}
