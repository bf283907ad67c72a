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
	"errors"
	"log/slog"
	"math"
)

// =============================================================================
// Adaptive Subdivision Driver
// =============================================================================

// kernel produces the (estimate, error estimate) pair for one subinterval.
// The driver is agnostic to which kernel is active; weighted kernels get the
// bisection depth to key their moment caches.
type kernel interface {
	apply(lo, hi float64, depth int) (ruleResult, error)
	splitPoint(lo, hi float64) float64
}

// plainKernel is the unweighted Gauss-Kronrod pair on a fixed table.
type plainKernel struct {
	f     errFunc
	table *gkTable
}

func (k plainKernel) apply(lo, hi float64, _ int) (ruleResult, error) {
	return k.table.apply(k.f, lo, hi)
}

func (k plainKernel) splitPoint(lo, hi float64) float64 {
	return 0.5 * (lo + hi)
}

// Driver tuning constants.
const (
	// accelEvery is the iteration cadence of extrapolation attempts.
	accelEvery = 4

	// roundoffNearLimit and roundoffLateLimit bound how many bisections may
	// leave the value essentially unchanged without reducing the error
	// (resp. increase the error late in the run) before the driver declares
	// the computation roundoff-limited.
	roundoffNearLimit = 6
	roundoffLateLimit = 20

	// divergentStreak is how many consecutive failed extrapolations, on top
	// of a growing partial-sum tail, mark the integral divergent.
	divergentStreak = 3
)

// driveParams is the immutable per-call configuration of the loop.
type driveParams struct {
	absTol  float64
	relTol  float64
	maxSubs int
}

func (p driveParams) tolerance(value float64) float64 {
	return math.Max(p.absTol, p.relTol*math.Abs(value))
}

// drive runs the adaptive loop: seed segments from the initial split points,
// then repeatedly bisect the segment with the largest error estimate until
// the totals meet tolerance or a termination condition fires. Replacing a
// parent's contribution with its two children is a single pop + two pushes
// between which no reader observes the accumulator.
func drive(ctx context.Context, kern kernel, ev *evaluator, lo, hi float64, seeds []float64, p driveParams) Result {
	ws := newWorkspace(p.maxSubs)

	bounds := make([]float64, 0, len(seeds)+2)
	bounds = append(bounds, lo)
	bounds = append(bounds, seeds...)
	bounds = append(bounds, hi)
	for i := 0; i+1 < len(bounds); i++ {
		rr, err := kern.apply(bounds[i], bounds[i+1], 0)
		if err != nil {
			return evalFailed(ws, ev, err)
		}
		ws.push(&segment{
			lo:       bounds[i],
			hi:       bounds[i+1],
			estimate: rr.estimate,
			errEst:   rr.errorEst,
			resasc:   rr.resasc,
		})
	}

	acc := newAccelerator()
	acc.append(ws.value)
	best := accelResult{errBound: math.Inf(1)}

	var status Status
	var roundoffNear, roundoffLate, unstableStreak int

	for iter := 1; ; iter++ {
		if ws.errSum <= p.tolerance(ws.value) {
			status = StatusConverged
			break
		}
		if ws.size() >= p.maxSubs {
			status = StatusMaxSubdivisions
			break
		}
		if ctx.Err() != nil {
			status = StatusCancelled
			break
		}

		parent := ws.popWorst()
		mid := kern.splitPoint(parent.lo, parent.hi)
		if !bisectable(parent.lo, mid, parent.hi) {
			ws.push(parent)
			status = StatusRoundoffLimited
			break
		}

		left, err := kern.apply(parent.lo, mid, parent.depth+1)
		var right ruleResult
		if err == nil {
			right, err = kern.apply(mid, parent.hi, parent.depth+1)
		}
		if err != nil {
			ws.push(parent)
			return evalFailed(ws, ev, err)
		}

		childEst := left.estimate + right.estimate
		childErr := left.errorEst + right.errorEst

		// Roundoff accounting in the QUADPACK style: a bisection that moves
		// the value by < 1e-5 of itself while keeping >= 99% of the error is
		// noise, as is an error that grows after the first ten iterations.
		// The resasc comparison excludes segments whose error came from the
		// pure roundoff floor rather than the discrepancy heuristic.
		if left.resasc != left.errorEst && right.resasc != right.errorEst &&
			math.Abs(parent.estimate-childEst) <= 1e-5*math.Abs(childEst) &&
			childErr >= 0.99*parent.errEst {
			roundoffNear++
		}
		if iter > 10 && childErr > parent.errEst {
			roundoffLate++
		}

		ws.push(&segment{
			lo: parent.lo, hi: mid,
			estimate: left.estimate, errEst: left.errorEst, resasc: left.resasc,
			depth: parent.depth + 1,
		})
		ws.push(&segment{
			lo: mid, hi: parent.hi,
			estimate: right.estimate, errEst: right.errorEst, resasc: right.resasc,
			depth: parent.depth + 1,
		})

		if roundoffNear >= roundoffNearLimit || roundoffLate >= roundoffLateLimit {
			status = StatusRoundoffLimited
			break
		}

		acc.append(ws.value)
		if iter%accelEvery != 0 || acc.samples() < epsMinSamples {
			continue
		}
		ar := acc.accelerate()
		if ar.improved && !ar.unstable {
			unstableStreak = 0
			if ar.errBound < best.errBound {
				best = ar
			}
			if ar.errBound <= p.tolerance(ar.value) && ar.errBound < ws.errSum {
				return newResult(ar.value, ar.errBound, StatusConverged, ev.evals, ws.size())
			}
		} else {
			unstableStreak++
			if unstableStreak >= divergentStreak && acc.tailGrowing() {
				status = StatusDivergent
				break
			}
		}
	}

	value := ws.resum()
	errSum := ws.errSum
	if (status == StatusMaxSubdivisions || status == StatusRoundoffLimited) &&
		best.errBound < errSum {
		value, errSum = best.value, best.errBound
	}

	slog.Debug("adaptive drive finished",
		slog.String("status", status.String()),
		slog.Float64("value", value),
		slog.Float64("abs_error", errSum),
		slog.Int("subdivisions", ws.size()),
		slog.Int("evaluations", ev.evals),
	)
	return newResult(value, errSum, status, ev.evals, ws.size())
}

// bisectable reports whether [lo, hi] can still be meaningfully split at
// mid: the midpoint must be strictly interior and the endpoints must not
// already agree to within a few ulps (the QUADPACK smallest-interval test).
func bisectable(lo, mid, hi float64) bool {
	if !(lo < mid && mid < hi) {
		return false
	}
	return math.Max(math.Abs(lo), math.Abs(hi)) >
		(1+100*epsMach)*(math.Abs(mid)+1000*minNormal)
}

// evalFailed produces the best-effort Result for a fatal integrand failure,
// carrying the failure's status and offending point.
func evalFailed(ws *workspace, ev *evaluator, err error) Result {
	res := newResult(ws.resum(), ws.errSum, StatusBadIntegrand, ev.evals, ws.size())
	var ef *evalFailure
	if errors.As(err, &ef) {
		res.Status = ef.failureStatus()
		res.BadPoint = ef.x
	}
	return res
}
