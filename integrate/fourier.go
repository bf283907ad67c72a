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
)

// =============================================================================
// Fourier Integrals over Half-Infinite Ranges
// =============================================================================

// fourierQuad integrates f(x)*sin(omega*x) or f(x)*cos(omega*x) from a to
// +infinity.
//
// The range is cut into cycles spanning an odd multiple of pi/|omega|, so
// that for decaying f the cycle integrals alternate in sign and shrink; the
// sequence of their partial sums is then summed by the epsilon accelerator.
// Each cycle runs the oscillatory kernel under a geometrically tightening
// absolute tolerance; all cycles share one interval width and therefore one
// moment cache.
//
// Only an absolute tolerance is meaningful here: the accelerated limit is
// compared against AbsTol directly, before any value is close to final.
func fourierQuad(ctx context.Context, ev *evaluator, f errFunc, a, omega float64, trig Weight, p driveParams, maxCycles int) (Result, error) {
	if p.absTol <= 0 {
		return Result{}, fmt.Errorf("%w: sin/cos over a half-infinite range requires AbsTol > 0",
			ErrInvalidTolerance)
	}

	absOmega := math.Abs(omega)
	cycle := (2*math.Floor(absOmega) + 1) * math.Pi / absOmega
	kern := newOscKernel(f, omega, trig, cycle)

	acc := newAccelerator()
	best := accelResult{errBound: math.Inf(1)}
	haveBest := false

	var total, errSum, correc float64
	var subs int
	status := StatusMaxSubdivisions

	lo := a
	cycleTol := 0.1 * p.absTol

	for k := 0; k < maxCycles; k++ {
		if ctx.Err() != nil {
			status = StatusCancelled
			break
		}

		hi := lo + cycle
		cyc := drive(ctx, kern, ev, lo, hi, nil, driveParams{absTol: cycleTol, maxSubs: p.maxSubs})
		total += cyc.Value
		errSum += cyc.AbsError
		subs += cyc.Subdivisions

		switch cyc.Status {
		case StatusBadIntegrand:
			res := newResult(total, errSum, cyc.Status, ev.evals, subs)
			res.BadPoint = cyc.BadPoint
			return res, nil
		case StatusCancelled:
			return newResult(total, errSum, StatusCancelled, ev.evals, subs), nil
		case StatusConverged:
		default:
			// A cycle that missed its own tolerance contributes its error
			// on top of whatever the accelerator claims.
			correc = math.Max(correc, cyc.AbsError)
		}

		acc.append(total)
		lo = hi
		cycleTol *= 0.9

		if acc.samples() < epsMinSamples {
			continue
		}
		ar := acc.accelerate()
		if !ar.improved || ar.unstable {
			continue
		}
		if ar.errBound < best.errBound {
			best = ar
			haveBest = true
		}
		if best.errBound+correc <= p.absTol {
			return newResult(best.value, best.errBound+correc, StatusConverged, ev.evals, subs), nil
		}
	}

	value, errOut := total, errSum
	if haveBest && best.errBound+correc < errSum {
		value, errOut = best.value, best.errBound+correc
	}
	return newResult(value, errOut, status, ev.evals, subs), nil
}
