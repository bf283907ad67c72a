// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package expression

import (
	"context"
	"math"
	"testing"

	"github.com/Daniel-B-Smith/scipy/integrate"
)

func TestCompile1_Evaluates(t *testing.T) {
	tests := []struct {
		name string
		expr string
		x    float64
		want float64
	}{
		{"square", "x*x", 3, 9},
		{"constant int coerced", "2", 7, 2},
		{"pi constant", "pi", 0, math.Pi},
		{"exp sin", "exp(-x)*sin(x)", 1, math.Exp(-1) * math.Sin(1)},
		{"power caret", "x^2 + 1", 2, 5},
		{"ternary", "x > 1 ? 1.0 : 0.0", 2, 1},
		{"nested calls", "sqrt(abs(cos(x)))", math.Pi, 1},
		{"atan2 two args", "atan2(x, 1)", 1, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile1(tt.expr)
			if err != nil {
				t.Fatalf("Compile1(%q) error: %v", tt.expr, err)
			}
			got := f(tt.x)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("f(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestCompile1_CompileErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"syntax error", "x +"},
		{"undefined variable", "q * 2"},
		{"y not in scope", "x + y"},
		{"validation rejects quotes", `"drop table" + x`},
		{"validation rejects semicolon", "x; 1"},
		{"boolean result", "x > 0"},
		{"unknown function", "besselj(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile1(tt.expr); err == nil {
				t.Errorf("Compile1(%q) succeeded, want error", tt.expr)
			}
		})
	}
}

func TestCompile1_DomainErrorsYieldNaN(t *testing.T) {
	f, err := Compile1("log(x)")
	if err != nil {
		t.Fatalf("Compile1 error: %v", err)
	}
	if got := f(-1); !math.IsNaN(got) {
		t.Errorf("log(-1) = %v, want NaN", got)
	}
	if got := f(math.E); math.Abs(got-1) > 1e-15 {
		t.Errorf("log(e) = %v, want 1", got)
	}
}

func TestCompile2_Evaluates(t *testing.T) {
	f, err := Compile2("x*y + 1")
	if err != nil {
		t.Fatalf("Compile2 error: %v", err)
	}
	if got := f(3, 4); got != 13 {
		t.Errorf("f(3, 4) = %v, want 13", got)
	}
}

func TestCompile2_RejectsZ(t *testing.T) {
	if _, err := Compile2("x + y + z"); err == nil {
		t.Error("Compile2 accepted z, want error")
	}
}

func TestCompile3_Evaluates(t *testing.T) {
	f, err := Compile3("x + y + z")
	if err != nil {
		t.Fatalf("Compile3 error: %v", err)
	}
	if got := f(1, 2, 3); got != 6 {
		t.Errorf("f(1, 2, 3) = %v, want 6", got)
	}
}

// TestCompile1_DrivesQuad integrates a compiled expression end to end.
func TestCompile1_DrivesQuad(t *testing.T) {
	f, err := Compile1("exp(-x)")
	if err != nil {
		t.Fatalf("Compile1 error: %v", err)
	}

	res, err := integrate.Quad(context.Background(), f, 0, 1, nil)
	if err != nil {
		t.Fatalf("Quad error: %v", err)
	}
	if !res.Converged() {
		t.Fatalf("Quad status = %v, want converged", res.Status)
	}

	want := 1 - math.Exp(-1)
	if math.Abs(res.Value-want) > res.AbsError {
		t.Errorf("Value = %v, want %v within %v", res.Value, want, res.AbsError)
	}
}

func TestCompile1_IndependentEnvironments(t *testing.T) {
	f, err := Compile1("x + 1")
	if err != nil {
		t.Fatalf("Compile1 error: %v", err)
	}
	g, err := Compile1("x * 10")
	if err != nil {
		t.Fatalf("Compile1 error: %v", err)
	}

	// Interleaved evaluation must not share variable state
	if got := f(1); got != 2 {
		t.Errorf("f(1) = %v, want 2", got)
	}
	if got := g(5); got != 50 {
		t.Errorf("g(5) = %v, want 50", got)
	}
	if got := f(2); got != 3 {
		t.Errorf("f(2) = %v, want 3", got)
	}
}
