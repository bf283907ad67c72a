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
	"context"
	"fmt"
	"math"
	"time"
)

// =============================================================================
// Quad - 1-D Adaptive Quadrature
// =============================================================================

// Quad computes the definite integral of f over [a, b].
//
// Description:
//
//	Quad runs globally adaptive Gauss-Kronrod quadrature: the interval is
//	repeatedly bisected where the local error estimate is largest until the
//	accumulated error meets max(AbsTol, RelTol*|value|). Either or both
//	bounds may be infinite (math.Inf); the interval is then mapped onto a
//	finite one before integration. Options selects analytic weight
//	functions (sin/cos, algebraic endpoint singularities, Cauchy principal
//	value) whose singular or oscillatory factor is handled by exact
//	Chebyshev moments instead of raw sampling.
//
// Inputs:
//   - ctx: Context checked once per bisection; cancellation yields
//     StatusCancelled with the best estimate so far.
//   - f: The integrand. Must be safe to call at any point of the open
//     interval; a panic or non-finite value ends the run with
//     StatusBadIntegrand.
//   - a, b: Integration bounds. a > b integrates with flipped sign;
//     a == b returns zero.
//   - opts: Optional configuration. nil selects the defaults.
//
// Outputs:
//   - Result: Value, its error bound, the termination status, and
//     evaluation diagnostics. Returned for every status; only a
//     configuration error prevents it.
//   - error: Non-nil only for configuration mistakes (invalid tolerances,
//     break points, weight parameters, bounds). Never wraps integrand
//     failures; those surface in Result.Status.
//
// Example:
//
//	res, err := integrate.Quad(ctx, math.Exp, 0, 1, nil)
//	if err != nil {
//	    return err
//	}
//	if !res.Converged() {
//	    log.Printf("did not converge: %s", res.Status)
//	}
//	// res.Value ~ e - 1 within res.AbsError
//
// Thread Safety: Safe for concurrent use. Each call owns all of its mutable
// state; opts is read but never written.
//
// Complexity: O(MaxSubdivisions) rule applications, each a constant number
// of integrand evaluations (15-42 depending on the active kernel).
//
// Limitations: Weighted integration requires finite bounds, except sin/cos
// over a half-infinite range, which runs the cyclic Fourier integrator and
// needs AbsTol > 0.
func Quad(ctx context.Context, f Func, a, b float64, opts *Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if f == nil {
		return Result{}, ErrNilIntegrand
	}

	var o Options
	if opts != nil {
		o = *opts
	}
	if err := o.Validate(); err != nil {
		return Result{}, err
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return Result{}, fmt.Errorf("%w: [%g, %g]", ErrInvalidBounds, a, b)
	}
	if err := validateBreakPoints(o.BreakPoints, math.Min(a, b), math.Max(a, b)); err != nil {
		return Result{}, err
	}

	ctx, span := startQuadSpan(ctx, a, b, o.Weight)
	defer span.End()
	start := time.Now()

	res, err := runQuad(ctx, f, a, b, o)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	recordQuadMetrics(ctx, time.Since(start), o.Weight, res)
	setQuadSpanResult(span, res)
	return res, nil
}

// runQuad normalizes the interval orientation and dispatches to the kernel
// selected by the weight.
func runQuad(ctx context.Context, f Func, a, b float64, o Options) (Result, error) {
	if a == b {
		return newResult(0, 0, StatusConverged, 0, 0), nil
	}
	lo, hi := a, b
	flip := a > b
	if flip {
		lo, hi = b, a
	}

	ev := &evaluator{fn: f}
	res, err := dispatchQuad(ctx, ev, lo, hi, o)
	if err != nil {
		return Result{}, err
	}
	if flip {
		res.Value = -res.Value
	}
	return res, nil
}

func dispatchQuad(ctx context.Context, ev *evaluator, lo, hi float64, o Options) (Result, error) {
	p := driveParams{absTol: o.AbsTol, relTol: o.RelTol, maxSubs: o.MaxSubdivisions}
	base := errFunc(ev.call)
	infinite := math.IsInf(lo, 0) || math.IsInf(hi, 0)

	switch o.Weight {
	case WeightSin, WeightCos:
		return dispatchOscillatory(ctx, ev, lo, hi, o, p)

	case WeightAlgebraic:
		if infinite {
			return Result{}, fmt.Errorf("%w: algebraic weight requires finite bounds", ErrWeightedInfiniteRange)
		}
		kern := newAlgKernel(base, *o.WeightParams, lo, hi)
		// Two initial segments so no live segment ever touches both
		// singular endpoints.
		seeds := []float64{0.5 * (lo + hi)}
		return drive(ctx, kern, ev, lo, hi, seeds, p), nil

	case WeightCauchy:
		if infinite {
			return Result{}, fmt.Errorf("%w: cauchy weight requires finite bounds", ErrWeightedInfiniteRange)
		}
		c := o.WeightParams.Pole
		if tol := 50 * epsMach * (hi - lo); c-lo <= tol || hi-c <= tol {
			return Result{}, fmt.Errorf("%w: pole %g must be strictly interior to [%g, %g]",
				ErrInvalidPole, c, lo, hi)
		}
		return drive(ctx, newCauchyKernel(base, c), ev, lo, hi, nil, p), nil

	default:
		tr := transformInterval(base, lo, hi)
		table := &gk21
		if infinite {
			// The transformed integrand concentrates variation near the
			// mapped endpoint; the lower-order pair localizes it faster.
			table = &gk15
		}
		kern := plainKernel{f: tr.f, table: table}
		return drive(ctx, kern, ev, tr.lo, tr.hi, o.BreakPoints, p), nil
	}
}

// dispatchOscillatory routes sin/cos weights: finite ranges run the
// oscillatory kernel directly, half-infinite ranges run the cyclic Fourier
// integrator (mirrored for a lower-infinite range).
func dispatchOscillatory(ctx context.Context, ev *evaluator, lo, hi float64, o Options, p driveParams) (Result, error) {
	base := errFunc(ev.call)
	omega := o.WeightParams.Omega

	switch {
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		return Result{}, fmt.Errorf("%w: sin/cos weight on a doubly infinite range", ErrWeightedInfiniteRange)

	case math.IsInf(hi, 1):
		return fourierQuad(ctx, ev, base, lo, omega, o.Weight, p, o.MaxCycles)

	case math.IsInf(lo, -1):
		// x -> -x maps [-inf, hi] onto [-hi, inf]; cos is even, sin flips
		// the sign of the result.
		mirrored := func(x float64) (float64, error) { return base(-x) }
		res, err := fourierQuad(ctx, ev, mirrored, -hi, omega, o.Weight, p, o.MaxCycles)
		if err == nil && o.Weight == WeightSin {
			res.Value = -res.Value
		}
		return res, err

	default:
		kern := newOscKernel(base, omega, o.Weight, hi-lo)
		return drive(ctx, kern, ev, lo, hi, nil, p), nil
	}
}
