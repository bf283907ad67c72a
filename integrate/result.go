// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package integrate

import "math"

// Func is a one-dimensional integrand. It must be pure for the error bound
// to be meaningful; the engine may evaluate it at any interior point of the
// (transformed) integration range.
type Func func(x float64) float64

// Func2 is a two-dimensional integrand for DblQuad.
type Func2 func(x, y float64) float64

// Func3 is a three-dimensional integrand for TplQuad.
type Func3 func(x, y, z float64) float64

// Status describes how an integration terminated.
type Status int

const (
	// StatusConverged means the accumulated error estimate met the
	// requested tolerance. The convergence contract |Value - true| <=
	// AbsError applies.
	StatusConverged Status = iota

	// StatusMaxSubdivisions means the subdivision budget ran out before the
	// tolerance was met. Value/AbsError hold the best current estimate and
	// are not authoritative.
	StatusMaxSubdivisions

	// StatusRoundoffLimited means error estimates stopped improving across
	// several bisections: the computation hit floating-point precision
	// limits and further subdivision cannot help.
	StatusRoundoffLimited

	// StatusDivergent means the extrapolation accelerator judged the
	// partial-sum tail not summable (divergent or hopelessly slowly
	// convergent). The numeric estimate may still be informative.
	StatusDivergent

	// StatusBadIntegrand means the integrand panicked or produced a
	// non-finite value at a sampled point. The offending abscissa is
	// reported in Result.BadPoint.
	StatusBadIntegrand

	// StatusCancelled means the context was cancelled mid-iteration. The
	// best estimate accumulated so far is returned.
	StatusCancelled
)

// String returns a short human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusMaxSubdivisions:
		return "max_subdivisions_reached"
	case StatusRoundoffLimited:
		return "roundoff_limited"
	case StatusDivergent:
		return "divergent_or_slowly_convergent"
	case StatusBadIntegrand:
		return "bad_integrand_behavior"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the complete outcome of an integration call.
type Result struct {
	// Value is the estimated integral.
	Value float64

	// AbsError is the estimated absolute error bound. Always >= 0.
	// When Status is StatusConverged, |Value - true integral| <= AbsError
	// is the engine's contract.
	AbsError float64

	// Status reports how the integration terminated.
	Status Status

	// Evaluations is the total number of integrand evaluations, including
	// every nested evaluation for DblQuad/TplQuad.
	Evaluations int

	// Subdivisions is the size of the final interval partition, counting
	// the initial segments seeded by break points. Nested and cyclic
	// integrals report the sum over all component integrations.
	Subdivisions int

	// BadPoint is the abscissa at which the integrand failed when Status is
	// StatusBadIntegrand (or, for nested integrals, the outer coordinate at
	// which the inner integration failed). NaN otherwise.
	BadPoint float64
}

// Converged reports whether the tolerance contract was met.
func (r Result) Converged() bool {
	return r.Status == StatusConverged
}

// newResult builds a Result with BadPoint defaulted to NaN.
func newResult(value, absErr float64, status Status, evals, subdivisions int) Result {
	return Result{
		Value:        value,
		AbsError:     absErr,
		Status:       status,
		Evaluations:  evals,
		Subdivisions: subdivisions,
		BadPoint:     math.NaN(),
	}
}
