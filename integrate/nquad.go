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
// Multi-dimensional Composer
// =============================================================================
//
// DblQuad and TplQuad nest the 1-D engine: the outer integrand evaluates an
// inner integral at each outer abscissa. Every inner call receives the outer
// coordinates as explicit arguments. Inner tolerances are tightened by
// InnerSafety per nesting level so inner noise stays below the outer
// convergence test, and the worst inner error observed is propagated into
// the final bound: the outer quadrature must not pretend its integrand was
// exact.

// DblQuad computes the integral of f(x, y) for x in [a, b] and y in
// [yLower(x), yUpper(x)].
//
// Description:
//
//	The outer integral over x runs the plain adaptive engine on
//	F(x) = integral of f(x, .) over [yLower(x), yUpper(x)], which is itself
//	computed by the engine under a tightened tolerance. All bounds must be
//	finite: a worst-case propagated error bound over an infinite outer
//	measure would be meaningless.
//
// Inputs:
//   - ctx: Context observed by every nesting level.
//   - f: The integrand, called as f(x, y).
//   - a, b: Outer bounds, finite. a > b integrates with flipped sign.
//   - yLower, yUpper: Inner bounds as functions of x; must return finite
//     values for every sampled x.
//   - opts: Optional configuration. nil selects the defaults.
//
// Outputs:
//   - Result: Value and a bound covering both the outer quadrature error
//     and the worst-case propagated inner error. Evaluations counts calls
//     to f across all levels. A failed inner integration surfaces its
//     status with BadPoint set to the outer x at which it happened.
//   - error: Non-nil only for configuration mistakes.
//
// Example:
//
//	res, err := integrate.DblQuad(ctx,
//	    func(x, y float64) float64 { return x + y },
//	    1, 2,
//	    func(x float64) float64 { return x },
//	    func(x float64) float64 { return 2 * x },
//	    nil)
//	// res.Value ~ 35/6
//
// Thread Safety: Safe for concurrent use; each call owns its state.
//
// Complexity: The outer evaluation count multiplies the inner one; expect
// O(n^2) integrand calls for n typical of 1-D problems.
func DblQuad(ctx context.Context, f Func2, a, b float64, yLower, yUpper func(x float64) float64, opts *NestedOptions) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if f == nil {
		return Result{}, ErrNilIntegrand
	}
	if yLower == nil || yUpper == nil {
		return Result{}, fmt.Errorf("%w: y bounds", ErrNilLimit)
	}
	o, err := nestedConfig(a, b, opts)
	if err != nil {
		return Result{}, err
	}

	ctx, span := startNestedSpan(ctx, "DblQuad", 2)
	defer span.End()
	start := time.Now()

	outer := o.level(0)
	inner := o.level(1)

	var evals int
	var innerWorst float64

	outerFn := func(x float64) (float64, error) {
		yl, yu := yLower(x), yUpper(x)
		if !finiteBounds(yl, yu) {
			return 0, &evalFailure{x: x, detail: fmt.Sprintf("y bounds [%g, %g] are not finite", yl, yu)}
		}
		ev := &evaluator{fn: func(y float64) float64 { return f(x, y) }}
		res := plainQuadErr(ctx, ev.call, yl, yu, inner)
		evals += ev.evals
		if hardFailure(res.Status) {
			return 0, &evalFailure{x: x, status: res.Status,
				detail: fmt.Sprintf("inner integral over y failed: %s", res.Status)}
		}
		innerWorst = math.Max(innerWorst, res.AbsError)
		return res.Value, nil
	}

	res := plainQuadErr(ctx, outerFn, a, b, outer)
	res.AbsError += innerWorst * math.Abs(b-a)
	res.Evaluations = evals

	recordQuadMetrics(ctx, time.Since(start), WeightNone, res)
	setQuadSpanResult(span, res)
	return res, nil
}

// TplQuad computes the integral of f(x, y, z) for x in [a, b], y in
// [yLower(x), yUpper(x)] and z in [zLower(x, y), zUpper(x, y)].
//
// The composition and error propagation follow DblQuad one level deeper:
// the middle tolerance is the outer one scaled by InnerSafety, the
// innermost by InnerSafety squared. All bounds must be finite.
func TplQuad(ctx context.Context, f Func3, a, b float64, yLower, yUpper func(x float64) float64, zLower, zUpper func(x, y float64) float64, opts *NestedOptions) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if f == nil {
		return Result{}, ErrNilIntegrand
	}
	if yLower == nil || yUpper == nil {
		return Result{}, fmt.Errorf("%w: y bounds", ErrNilLimit)
	}
	if zLower == nil || zUpper == nil {
		return Result{}, fmt.Errorf("%w: z bounds", ErrNilLimit)
	}
	o, err := nestedConfig(a, b, opts)
	if err != nil {
		return Result{}, err
	}

	ctx, span := startNestedSpan(ctx, "TplQuad", 3)
	defer span.End()
	start := time.Now()

	outer := o.level(0)
	middle := o.level(1)
	innermost := o.level(2)

	var evals int
	var middleWorst float64

	outerFn := func(x float64) (float64, error) {
		yl, yu := yLower(x), yUpper(x)
		if !finiteBounds(yl, yu) {
			return 0, &evalFailure{x: x, detail: fmt.Sprintf("y bounds [%g, %g] are not finite", yl, yu)}
		}

		var zWorst float64
		middleFn := func(y float64) (float64, error) {
			zl, zu := zLower(x, y), zUpper(x, y)
			if !finiteBounds(zl, zu) {
				return 0, &evalFailure{x: y, detail: fmt.Sprintf("z bounds [%g, %g] are not finite", zl, zu)}
			}
			ev := &evaluator{fn: func(z float64) float64 { return f(x, y, z) }}
			res := plainQuadErr(ctx, ev.call, zl, zu, innermost)
			evals += ev.evals
			if hardFailure(res.Status) {
				return 0, &evalFailure{x: y, status: res.Status,
					detail: fmt.Sprintf("inner integral over z failed: %s", res.Status)}
			}
			zWorst = math.Max(zWorst, res.AbsError)
			return res.Value, nil
		}

		res := plainQuadErr(ctx, middleFn, yl, yu, middle)
		if hardFailure(res.Status) {
			return 0, &evalFailure{x: x, status: res.Status,
				detail: fmt.Sprintf("middle integral over y failed: %s", res.Status)}
		}
		middleWorst = math.Max(middleWorst, res.AbsError+zWorst*math.Abs(yu-yl))
		return res.Value, nil
	}

	res := plainQuadErr(ctx, outerFn, a, b, outer)
	res.AbsError += middleWorst * math.Abs(b-a)
	res.Evaluations = evals

	recordQuadMetrics(ctx, time.Since(start), WeightNone, res)
	setQuadSpanResult(span, res)
	return res, nil
}

// nestedConfig validates the outer bounds and normalizes the options.
func nestedConfig(a, b float64, opts *NestedOptions) (NestedOptions, error) {
	var o NestedOptions
	if opts != nil {
		o = *opts
	}
	if err := o.Validate(); err != nil {
		return o, err
	}
	if !finiteBounds(a, b) {
		return o, fmt.Errorf("%w: nested integration requires finite outer bounds, got [%g, %g]",
			ErrInvalidBounds, a, b)
	}
	return o, nil
}

// level returns the drive parameters for the given nesting depth: each
// level below the outer tightens both tolerances by InnerSafety, with the
// relative tolerance floored at what double precision can resolve.
func (o *NestedOptions) level(depth int) driveParams {
	scale := math.Pow(o.InnerSafety, float64(depth))
	p := driveParams{
		absTol:  o.AbsTol * scale,
		relTol:  o.RelTol * scale,
		maxSubs: o.MaxSubdivisions,
	}
	if depth > 0 && p.relTol < minRelTol {
		p.relTol = minRelTol
	}
	return p
}

// hardFailure reports whether an inner status must abort the enclosing
// integration. Tolerance shortfalls are soft: the estimate is still usable
// and its error is folded into the propagated bound.
func hardFailure(s Status) bool {
	return s == StatusBadIntegrand || s == StatusDivergent || s == StatusCancelled
}

func finiteBounds(lo, hi float64) bool {
	return !math.IsNaN(lo) && !math.IsNaN(hi) && !math.IsInf(lo, 0) && !math.IsInf(hi, 0)
}

// plainQuadErr is the unweighted engine over an errFunc integrand: the
// composer's inner integrals come through here so failures keep their
// structure. Orientation and infinite bounds are normalized the same way
// Quad does it.
func plainQuadErr(ctx context.Context, fn errFunc, lo, hi float64, p driveParams) Result {
	if lo == hi {
		return newResult(0, 0, StatusConverged, 0, 0)
	}
	flip := lo > hi
	if flip {
		lo, hi = hi, lo
	}

	tr := transformInterval(fn, lo, hi)
	table := &gk21
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		table = &gk15
	}
	dummy := &evaluator{}
	res := drive(ctx, plainKernel{f: tr.f, table: table}, dummy, tr.lo, tr.hi, nil, p)
	if flip {
		res.Value = -res.Value
	}
	return res
}
