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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Cycle Summation
// =============================================================================

// TestFourierQuad_ExponentialSine drives the cycle loop directly:
// int_0^inf exp(-x) sin(x) dx = 1/2.
func TestFourierQuad_ExponentialSine(t *testing.T) {
	ev := &evaluator{fn: func(x float64) float64 { return math.Exp(-x) }}

	res, err := fourierQuad(context.Background(), ev, ev.call, 0, 1, WeightSin,
		driveParams{absTol: 1e-8, maxSubs: 50}, 30)
	require.NoError(t, err)

	assertQuad(t, res, 0.5, 1e-8)
	assert.Equal(t, ev.evals, res.Evaluations)
}

// TestFourierQuad_RequiresAbsTol: a relative tolerance alone cannot steer
// the accelerated limit, so the call is rejected up front.
func TestFourierQuad_RequiresAbsTol(t *testing.T) {
	ev := &evaluator{fn: func(x float64) float64 { return math.Exp(-x) }}

	_, err := fourierQuad(context.Background(), ev, ev.call, 0, 1, WeightSin,
		driveParams{relTol: 1e-10, maxSubs: 50}, 30)
	require.ErrorIs(t, err, ErrInvalidTolerance)
	assert.Zero(t, ev.evals)
}

// TestFourierQuad_FewCycles: with fewer cycles than the accelerator needs
// for a first extrapolation the run ends unconverged, carrying the raw
// partial sum.
func TestFourierQuad_FewCycles(t *testing.T) {
	ev := &evaluator{fn: func(x float64) float64 { return math.Exp(-x) }}

	res, err := fourierQuad(context.Background(), ev, ev.call, 0, 1, WeightSin,
		driveParams{absTol: 1e-10, maxSubs: 50}, 3)
	require.NoError(t, err)

	assert.Equal(t, StatusMaxSubdivisions, res.Status)
	assert.False(t, res.Converged())
	assert.InDelta(t, 0.5, res.Value, 1e-9)
}

// TestFourierQuad_BudgetStarvedCycles: cycles capped at a single segment
// miss their own tolerances, yet the partial sums still carry enough signal
// for the accelerator; the exit reports the budget status with a value far
// better than the raw cycle errors suggest.
func TestFourierQuad_BudgetStarvedCycles(t *testing.T) {
	ev := &evaluator{fn: func(x float64) float64 { return math.Exp(-x) }}

	res, err := fourierQuad(context.Background(), ev, ev.call, 0, 1, WeightSin,
		driveParams{absTol: 1e-9, maxSubs: 1}, 40)
	require.NoError(t, err)

	assert.Equal(t, StatusMaxSubdivisions, res.Status)
	assert.Equal(t, 40, res.Subdivisions, "one seed segment per cycle")
	assert.InDelta(t, 0.5, res.Value, 1e-5)
	assert.Greater(t, res.AbsError, 0.0)
	assert.Less(t, res.AbsError, 1e-5)
}

// =============================================================================
// Failure Paths
// =============================================================================

// TestFourierQuad_PreCancelled stops before the first cycle.
func TestFourierQuad_PreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := &evaluator{fn: func(x float64) float64 { return math.Exp(-x) }}
	res, err := fourierQuad(ctx, ev, ev.call, 0, 1, WeightSin,
		driveParams{absTol: 1e-8, maxSubs: 50}, 30)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, res.Status)
	assert.Zero(t, res.Evaluations)
	assert.Zero(t, res.Value)
}

// TestFourierQuad_CancelMidFlight cancels from inside the integrand; the
// run stops with the partial sum accumulated so far.
func TestFourierQuad_CancelMidFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	ev := &evaluator{fn: func(x float64) float64 {
		calls++
		if calls == 30 {
			cancel()
		}
		return math.Exp(-x)
	}}

	res, err := fourierQuad(ctx, ev, ev.call, 0, 1, WeightSin,
		driveParams{absTol: 1e-8, maxSubs: 50}, 30)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, res.Status)
	assert.GreaterOrEqual(t, res.Evaluations, 30)
}

// TestFourierQuad_BadIntegrand: a non-finite sample in the first cycle
// aborts the whole run and names the point.
func TestFourierQuad_BadIntegrand(t *testing.T) {
	ev := &evaluator{fn: func(x float64) float64 {
		if x > 5 && x < 6 {
			return math.NaN()
		}
		return math.Exp(-x)
	}}

	res, err := fourierQuad(context.Background(), ev, ev.call, 0, 1, WeightSin,
		driveParams{absTol: 1e-8, maxSubs: 50}, 30)
	require.NoError(t, err)

	assert.Equal(t, StatusBadIntegrand, res.Status)
	assert.False(t, res.Converged())
	assert.Greater(t, res.BadPoint, 5.0)
	assert.Less(t, res.BadPoint, 6.0)
}
