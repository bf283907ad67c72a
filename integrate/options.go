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
	"fmt"
	"math"
	"sort"
)

// Default tolerances and budgets.
const (
	// DefaultAbsTol is the default absolute tolerance.
	DefaultAbsTol = 1.49e-8

	// DefaultRelTol is the default relative tolerance.
	DefaultRelTol = 1.49e-8

	// DefaultMaxSubdivisions is the default bisection budget per call.
	DefaultMaxSubdivisions = 200

	// DefaultMaxCycles is the default number of oscillation cycles summed
	// for semi-infinite sine/cosine-weighted integrals before the call is
	// declared slowly convergent.
	DefaultMaxCycles = 50

	// DefaultInnerSafety is the factor by which DblQuad/TplQuad tighten the
	// inner tolerance relative to the outer one, so inner integration noise
	// does not dominate outer convergence.
	DefaultInnerSafety = 1e-2

	// minRelTol is the smallest honourable relative tolerance: 50 machine
	// epsilons, below which the error estimator itself is pure roundoff.
	minRelTol = 50 * epsMach
)

// Weight selects an analytic weight function multiplied into the integrand.
// Each weight is integrated by its own specialized formula; see the package
// documentation.
type Weight int

const (
	// WeightNone integrates f alone.
	WeightNone Weight = iota

	// WeightSin integrates f(x) * sin(Omega*x).
	WeightSin

	// WeightCos integrates f(x) * cos(Omega*x).
	WeightCos

	// WeightAlgebraic integrates f(x) * (x-a)^Alpha * (b-x)^Beta with
	// optional log(x-a) and log(b-x) factors.
	WeightAlgebraic

	// WeightCauchy integrates the principal value of f(x) / (x-Pole).
	WeightCauchy
)

// String returns the weight name used in logs and service payloads.
func (w Weight) String() string {
	switch w {
	case WeightNone:
		return "none"
	case WeightSin:
		return "sin"
	case WeightCos:
		return "cos"
	case WeightAlgebraic:
		return "algebraic"
	case WeightCauchy:
		return "cauchy"
	default:
		return "unknown"
	}
}

// WeightParams carries the numeric parameters of the selected weight. Only
// the fields relevant to the weight in use are read; the struct is validated
// once at call entry and never mutated afterwards.
type WeightParams struct {
	// Omega is the oscillation frequency for WeightSin/WeightCos.
	// Must be finite and non-zero.
	Omega float64

	// Alpha, Beta are the endpoint exponents for WeightAlgebraic.
	// Both must be > -1 for the integral to exist.
	Alpha float64
	Beta  float64

	// LogLeft multiplies a log(x-a) factor into the algebraic weight.
	LogLeft bool

	// LogRight multiplies a log(b-x) factor into the algebraic weight.
	LogRight bool

	// Pole is the principal-value pole location for WeightCauchy.
	// Must lie strictly inside the integration interval.
	Pole float64
}

// Options configures a one-dimensional Quad call. The zero value (or a nil
// pointer) selects the defaults.
type Options struct {
	// AbsTol is the absolute tolerance. Zero selects DefaultAbsTol.
	AbsTol float64

	// RelTol is the relative tolerance. Zero selects DefaultRelTol.
	RelTol float64

	// BreakPoints lists interior abscissas at which the integrand is known
	// to be non-smooth; the initial subdivision is split there. Must be
	// strictly increasing and strictly inside (a, b). Only valid for
	// finite, unweighted integration.
	BreakPoints []float64

	// Weight selects an analytic weight function. Default WeightNone.
	Weight Weight

	// WeightParams supplies the weight's numeric parameters. Required
	// exactly when Weight != WeightNone.
	WeightParams *WeightParams

	// MaxSubdivisions bounds the number of bisections. Zero selects
	// DefaultMaxSubdivisions.
	MaxSubdivisions int

	// MaxCycles bounds the number of cycle integrals for sin/cos weights
	// over a half-infinite range; ignored otherwise. Zero selects
	// DefaultMaxCycles.
	MaxCycles int
}

// DefaultOptions returns the default Quad configuration.
func DefaultOptions() *Options {
	return &Options{
		AbsTol:          DefaultAbsTol,
		RelTol:          DefaultRelTol,
		MaxSubdivisions: DefaultMaxSubdivisions,
	}
}

// Validate normalizes zero fields to their defaults and rejects
// configurations the engine cannot honour. It is called by Quad; callers
// constructing Options by hand may call it early to surface problems.
func (o *Options) Validate() error {
	if math.IsNaN(o.AbsTol) || math.IsNaN(o.RelTol) || o.AbsTol < 0 || o.RelTol < 0 {
		return fmt.Errorf("%w: abs_tol=%g rel_tol=%g", ErrInvalidTolerance, o.AbsTol, o.RelTol)
	}
	if o.AbsTol == 0 && o.RelTol == 0 {
		o.AbsTol = DefaultAbsTol
		o.RelTol = DefaultRelTol
	}
	if o.AbsTol <= 0 && o.RelTol < minRelTol {
		return fmt.Errorf("%w: rel_tol=%g is below the attainable floor %.3g and no absolute tolerance is set",
			ErrInvalidTolerance, o.RelTol, minRelTol)
	}
	if o.MaxSubdivisions < 0 {
		return fmt.Errorf("%w: max_subdivisions=%d", ErrInvalidTolerance, o.MaxSubdivisions)
	}
	if o.MaxSubdivisions == 0 {
		o.MaxSubdivisions = DefaultMaxSubdivisions
	}
	if o.MaxCycles < 0 {
		return fmt.Errorf("%w: max_cycles=%d", ErrInvalidTolerance, o.MaxCycles)
	}
	if o.MaxCycles == 0 {
		o.MaxCycles = DefaultMaxCycles
	}

	if o.Weight == WeightNone {
		if o.WeightParams != nil {
			return fmt.Errorf("%w: weight parameters supplied without a weight", ErrInvalidWeightParams)
		}
	} else {
		if o.WeightParams == nil {
			return fmt.Errorf("%w: weight %q requires parameters", ErrInvalidWeightParams, o.Weight)
		}
		if err := o.WeightParams.validate(o.Weight); err != nil {
			return err
		}
		if len(o.BreakPoints) > 0 {
			return fmt.Errorf("%w: break points require unweighted integration", ErrInvalidBreakPoints)
		}
	}
	return nil
}

// validate checks the parameters against the selected weight variant.
func (p *WeightParams) validate(w Weight) error {
	switch w {
	case WeightSin, WeightCos:
		if p.Omega == 0 || math.IsNaN(p.Omega) || math.IsInf(p.Omega, 0) {
			return fmt.Errorf("%w: omega=%g must be finite and non-zero", ErrInvalidWeightParams, p.Omega)
		}
	case WeightAlgebraic:
		if !(p.Alpha > -1) || !(p.Beta > -1) ||
			math.IsInf(p.Alpha, 0) || math.IsInf(p.Beta, 0) {
			return fmt.Errorf("%w: algebraic exponents alpha=%g beta=%g must both be > -1",
				ErrInvalidWeightParams, p.Alpha, p.Beta)
		}
	case WeightCauchy:
		if math.IsNaN(p.Pole) || math.IsInf(p.Pole, 0) {
			return fmt.Errorf("%w: pole=%g must be finite", ErrInvalidPole, p.Pole)
		}
	}
	return nil
}

// validateBreakPoints checks break points against the normalized interval.
// Points must be strictly increasing and strictly inside (lo, hi).
func validateBreakPoints(points []float64, lo, hi float64) error {
	if len(points) == 0 {
		return nil
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return fmt.Errorf("%w: break points require finite bounds", ErrInvalidBreakPoints)
	}
	if !sort.Float64sAreSorted(points) {
		return fmt.Errorf("%w: break points must be sorted ascending", ErrInvalidBreakPoints)
	}
	for i, p := range points {
		if math.IsNaN(p) || p <= lo || p >= hi {
			return fmt.Errorf("%w: point %g is outside (%g, %g)", ErrInvalidBreakPoints, p, lo, hi)
		}
		if i > 0 && p == points[i-1] {
			return fmt.Errorf("%w: duplicate point %g", ErrInvalidBreakPoints, p)
		}
	}
	return nil
}

// NestedOptions configures DblQuad and TplQuad. The zero value (or a nil
// pointer) selects the defaults.
type NestedOptions struct {
	// AbsTol is the outer absolute tolerance. Zero selects DefaultAbsTol.
	AbsTol float64

	// RelTol is the outer relative tolerance. Zero selects DefaultRelTol.
	RelTol float64

	// InnerSafety scales the tolerance passed to each nesting level below
	// the outer one; must be in (0, 1]. Zero selects DefaultInnerSafety.
	InnerSafety float64

	// MaxSubdivisions bounds bisections at every nesting level. Zero
	// selects DefaultMaxSubdivisions.
	MaxSubdivisions int
}

// DefaultNestedOptions returns the default DblQuad/TplQuad configuration.
func DefaultNestedOptions() *NestedOptions {
	return &NestedOptions{
		AbsTol:          DefaultAbsTol,
		RelTol:          DefaultRelTol,
		InnerSafety:     DefaultInnerSafety,
		MaxSubdivisions: DefaultMaxSubdivisions,
	}
}

// Validate normalizes zero fields to defaults and rejects impossible
// configurations.
func (o *NestedOptions) Validate() error {
	if math.IsNaN(o.AbsTol) || math.IsNaN(o.RelTol) || o.AbsTol < 0 || o.RelTol < 0 {
		return fmt.Errorf("%w: abs_tol=%g rel_tol=%g", ErrInvalidTolerance, o.AbsTol, o.RelTol)
	}
	if o.AbsTol == 0 && o.RelTol == 0 {
		o.AbsTol = DefaultAbsTol
		o.RelTol = DefaultRelTol
	}
	if o.InnerSafety < 0 || o.InnerSafety > 1 || math.IsNaN(o.InnerSafety) {
		return fmt.Errorf("%w: inner_safety=%g must be in (0, 1]", ErrInvalidTolerance, o.InnerSafety)
	}
	if o.InnerSafety == 0 {
		o.InnerSafety = DefaultInnerSafety
	}
	if o.MaxSubdivisions < 0 {
		return fmt.Errorf("%w: max_subdivisions=%d", ErrInvalidTolerance, o.MaxSubdivisions)
	}
	if o.MaxSubdivisions == 0 {
		o.MaxSubdivisions = DefaultMaxSubdivisions
	}
	return nil
}
