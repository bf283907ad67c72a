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

// =============================================================================
// Extrapolation Accelerator (Wynn epsilon algorithm)
// =============================================================================

// Accelerator tuning constants.
const (
	// epsWindowSize is the bounded trailing window of partial sums kept for
	// extrapolation. Memory is O(1) in the number of subdivisions.
	epsWindowSize = 16

	// epsMinSamples is the minimum history length before extrapolation is
	// attempted.
	epsMinSamples = 5
)

// accelResult is one extrapolation outcome.
type accelResult struct {
	// value is the accelerated limit estimate.
	value float64

	// errBound is the accelerator's own error estimate for value. It is
	// certified only once three earlier accelerated values exist to measure
	// drift against; before that it is +Inf and callers must not terminate
	// on it.
	errBound float64

	// improved reports whether the accelerated estimate is usable: enough
	// samples existed and the epsilon table made progress before any
	// degenerate denominator stopped it.
	improved bool

	// unstable reports that successive accelerated values disagree far
	// beyond their combined error bounds, one symptom of a non-summable
	// tail.
	unstable bool
}

// accelerator applies Wynn's epsilon algorithm to a bounded trailing window
// of the driver's partial-sum history.
//
// The epsilon table is built column by column from the window; even columns
// are limit estimates. A denominator close to roundoff stops the sweep and
// the previous even column's estimate is kept, which is the standard guard
// against the transformation blowing up on (near-)degenerate differences.
type accelerator struct {
	window []float64

	// accelHist holds the most recent accelerated values, newest first.
	accelHist []float64
	prevErr   float64
}

func newAccelerator() *accelerator {
	return &accelerator{
		window:    make([]float64, 0, epsWindowSize),
		accelHist: make([]float64, 0, 3),
	}
}

// append records the next partial sum, dropping the oldest entry once the
// window is full.
func (a *accelerator) append(s float64) {
	if len(a.window) == epsWindowSize {
		copy(a.window, a.window[1:])
		a.window = a.window[:epsWindowSize-1]
	}
	a.window = append(a.window, s)
}

// samples returns the current window length.
func (a *accelerator) samples() int {
	return len(a.window)
}

// accelerate runs the epsilon sweep over the current window.
func (a *accelerator) accelerate() accelResult {
	n := len(a.window)
	if n < epsMinSamples {
		return accelResult{}
	}

	// ests collects the highest-order entry of each even column, starting
	// with the raw partial sum (column 0).
	ests := make([]float64, 0, n/2+1)
	ests = append(ests, a.window[n-1])

	prev := make([]float64, n) // epsilon column k-1 (starts as column -1: zeros)
	curr := append(make([]float64, 0, n), a.window...)

	for col := 1; len(curr) >= 2; col++ {
		next := make([]float64, len(curr)-1)
		for i := 0; i+1 < len(curr); i++ {
			denom := curr[i+1] - curr[i]
			tiny := 10*epsMach*(math.Abs(curr[i+1])+math.Abs(curr[i])) + 1e4*minNormal
			if math.Abs(denom) <= tiny {
				if col == 1 {
					// Two raw partial sums agree to machine accuracy:
					// the tail has already settled and no transformation
					// is needed.
					return a.settled()
				}
				// Degenerate difference deeper in the table: keep what
				// the previous levels gave.
				return a.finish(ests)
			}
			next[i] = prev[i+1] + 1/denom
		}
		prev, curr = curr, next
		if col%2 == 0 {
			ests = append(ests, curr[len(curr)-1])
		}
	}
	return a.finish(ests)
}

// settled reports the raw tail as the limit when consecutive partial sums
// already agree to machine accuracy, with the trailing increments as the
// error bound.
func (a *accelerator) settled() accelResult {
	n := len(a.window)
	value := a.window[n-1]
	errBound := math.Abs(a.window[n-1]-a.window[n-2]) +
		math.Abs(a.window[n-2]-a.window[n-3]) +
		50*epsMach*math.Abs(value)
	return a.note(accelResult{value: value, errBound: errBound, improved: true})
}

// finish turns the collected even-column estimates into an accelResult and
// updates the stability history. At least one acceleration level beyond the
// raw partial sum must have survived the degeneracy guards.
func (a *accelerator) finish(ests []float64) accelResult {
	if len(ests) < 2 {
		return accelResult{}
	}
	k := len(ests)
	value := ests[k-1]
	errBound := math.Abs(ests[k-1]-ests[k-2]) + 50*epsMach*math.Abs(value)
	if k >= 3 {
		errBound += math.Abs(ests[k-2] - ests[k-3])
	}

	return a.note(accelResult{value: value, errBound: errBound, improved: true})
}

// note runs the cross-acceleration stability check and records the outcome
// in the history. An accelerated value far outside the combined table
// bounds of its predecessor is flagged unstable.
//
// The reported errBound is widened to cover the drift across the last three
// accelerated values: a single epsilon sweep routinely underestimates its
// own error, and only agreement across consecutive accelerations certifies
// the bound. Until three predecessors exist the bound stays +Inf.
func (a *accelerator) note(res accelResult) accelResult {
	tableErr := res.errBound
	if len(a.accelHist) > 0 {
		gap := math.Abs(res.value - a.accelHist[0])
		if gap > 10*(tableErr+a.prevErr) {
			res.unstable = true
		}
	}
	if len(a.accelHist) >= 3 {
		var drift float64
		for _, prev := range a.accelHist {
			drift += math.Abs(res.value - prev)
		}
		res.errBound = math.Max(tableErr, drift)
	} else {
		res.errBound = math.Inf(1)
	}
	a.accelHist = append([]float64{res.value}, a.accelHist...)
	if len(a.accelHist) > 3 {
		a.accelHist = a.accelHist[:3]
	}
	a.prevErr = tableErr
	return res
}

// tailGrowing reports whether the partial-sum increments across a full
// window show no decay: the signature of a tail the bisection cannot sum
// (for example a non-integrable singularity adding a constant contribution
// per split). Only meaningful while the driver is still above tolerance.
func (a *accelerator) tailGrowing() bool {
	if len(a.window) < epsWindowSize {
		return false
	}
	half := (len(a.window) - 1) / 2
	var early, late float64
	for i := 1; i < len(a.window); i++ {
		inc := math.Abs(a.window[i] - a.window[i-1])
		if i <= half {
			early += inc
		} else {
			late += inc
		}
	}
	early /= float64(half)
	late /= float64(len(a.window) - 1 - half)

	noise := 10 * epsMach * math.Abs(a.window[len(a.window)-1])
	return late > noise && late >= early
}
