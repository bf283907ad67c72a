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

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for configuration problems. These are the only errors
// returned by the public API: anything that goes wrong after validation is
// reported through Result.Status instead, so the caller still receives the
// best available estimate.
var (
	// ErrNilIntegrand is returned when the integrand function is nil.
	ErrNilIntegrand = errors.New("integrand must not be nil")

	// ErrNilLimit is returned when a variable-limit function passed to
	// DblQuad or TplQuad is nil.
	ErrNilLimit = errors.New("limit function must not be nil")

	// ErrInvalidBounds is returned when an integration bound is NaN.
	// Infinite bounds are valid; reversed bounds are handled by negation.
	ErrInvalidBounds = errors.New("invalid integration bounds")

	// ErrInvalidTolerance is returned when the requested accuracy cannot be
	// expressed: a negative or NaN tolerance, or a relative tolerance below
	// 50 machine epsilons with no usable absolute tolerance.
	ErrInvalidTolerance = errors.New("invalid tolerance request")

	// ErrInvalidBreakPoints is returned when break points are not strictly
	// increasing, fall outside the open interval (a, b), or are combined
	// with an infinite range or a weight function.
	ErrInvalidBreakPoints = errors.New("invalid break points")

	// ErrInvalidWeightParams is returned when WeightParams is missing for a
	// weighted call, present for an unweighted call, or carries parameters
	// that are out of range for the selected weight (for example an
	// oscillation frequency of zero, or algebraic exponents <= -1).
	ErrInvalidWeightParams = errors.New("invalid weight parameters")

	// ErrInvalidPole is returned when the Cauchy principal-value pole is not
	// strictly interior to the interval, or coincides with an endpoint
	// within roundoff tolerance.
	ErrInvalidPole = errors.New("cauchy pole must be strictly interior to the interval")

	// ErrWeightedInfiniteRange is returned for weight/range combinations
	// that have no supporting formula: algebraic and Cauchy weights require
	// finite intervals, and oscillatory weights support at most one
	// infinite endpoint.
	ErrWeightedInfiniteRange = errors.New("weight function not supported on this range")
)

// evalFailure records a fatal integrand evaluation: a non-finite value or a
// panic at a sampled abscissa. It aborts the enclosing call and surfaces as
// StatusBadIntegrand with the offending point in Result.BadPoint.
type evalFailure struct {
	x        float64
	status   Status
	panicked bool
	detail   string
}

func (e *evalFailure) Error() string {
	switch {
	case e.panicked:
		return fmt.Sprintf("integrand panicked at x=%g: %s", e.x, e.detail)
	case e.detail != "":
		return fmt.Sprintf("integrand failed at x=%g: %s", e.x, e.detail)
	default:
		return fmt.Sprintf("integrand returned a non-finite value at x=%g", e.x)
	}
}

// failureStatus returns the termination status an evaluation error maps to.
// Plain integrand failures map to StatusBadIntegrand; nested failures from
// the multi-dimensional composer carry the inner call's own status.
func (e *evalFailure) failureStatus() Status {
	if e.status != StatusConverged {
		return e.status
	}
	return StatusBadIntegrand
}

// badPoint extracts the failing abscissa from an evaluation error chain.
// Returns NaN when the error is not an evaluation failure.
func badPoint(err error) float64 {
	var ef *evalFailure
	if errors.As(err, &ef) {
		return ef.x
	}
	return math.NaN()
}
