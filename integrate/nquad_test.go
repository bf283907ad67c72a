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
// Composition
// =============================================================================

// TestDblQuad_Polynomial: int_1^2 int_x^2x (x+y) dy dx = 35/6, with the
// evaluation count covering only calls to f.
func TestDblQuad_Polynomial(t *testing.T) {
	calls := 0
	f := func(x, y float64) float64 {
		calls++
		return x + y
	}

	res, err := DblQuad(context.Background(), f, 1, 2,
		func(x float64) float64 { return x },
		func(x float64) float64 { return 2 * x },
		nil)
	require.NoError(t, err)

	assertQuad(t, res, 35.0/6.0, 1e-6)
	assert.Equal(t, calls, res.Evaluations)
}

// TestDblQuad_ReversedOuter: swapping the outer bounds flips the sign.
func TestDblQuad_ReversedOuter(t *testing.T) {
	f := func(x, y float64) float64 { return x + y }

	res, err := DblQuad(context.Background(), f, 2, 1,
		func(x float64) float64 { return x },
		func(x float64) float64 { return 2 * x },
		nil)
	require.NoError(t, err)

	assertQuad(t, res, -35.0/6.0, 1e-6)
}

// TestDblQuad_ZeroWidthOuter: a == b is exactly zero without any sampling.
func TestDblQuad_ZeroWidthOuter(t *testing.T) {
	f := func(x, y float64) float64 { return x + y }

	res, err := DblQuad(context.Background(), f, 3, 3,
		func(x float64) float64 { return 0 },
		func(x float64) float64 { return 1 },
		nil)
	require.NoError(t, err)

	assert.Equal(t, StatusConverged, res.Status)
	assert.Zero(t, res.Value)
	assert.Zero(t, res.Evaluations)
}

// TestTplQuad_Linear: int_1^2 int_x^2x int_{x-y}^{x+y} (x+y+z) dz dy dx = 40.
func TestTplQuad_Linear(t *testing.T) {
	f := func(x, y, z float64) float64 { return x + y + z }

	res, err := TplQuad(context.Background(), f, 1, 2,
		func(x float64) float64 { return x },
		func(x float64) float64 { return 2 * x },
		func(x, y float64) float64 { return x - y },
		func(x, y float64) float64 { return x + y },
		nil)
	require.NoError(t, err)

	assertQuad(t, res, 40.0, 1e-5)
}

// =============================================================================
// Configuration Errors
// =============================================================================

func TestDblQuad_ConfigErrors(t *testing.T) {
	f := func(x, y float64) float64 { return x + y }
	yl := func(x float64) float64 { return 0 }
	yu := func(x float64) float64 { return 1 }

	tests := []struct {
		name    string
		f       Func2
		a, b    float64
		yl, yu  func(x float64) float64
		opts    *NestedOptions
		wantErr error
	}{
		{name: "nil integrand", f: nil, a: 0, b: 1, yl: yl, yu: yu, wantErr: ErrNilIntegrand},
		{name: "nil lower limit", f: f, a: 0, b: 1, yl: nil, yu: yu, wantErr: ErrNilLimit},
		{name: "nil upper limit", f: f, a: 0, b: 1, yl: yl, yu: nil, wantErr: ErrNilLimit},
		{name: "infinite outer bound", f: f, a: 0, b: math.Inf(1), yl: yl, yu: yu, wantErr: ErrInvalidBounds},
		{name: "nan outer bound", f: f, a: math.NaN(), b: 1, yl: yl, yu: yu, wantErr: ErrInvalidBounds},
		{name: "negative tolerance", f: f, a: 0, b: 1, yl: yl, yu: yu,
			opts: &NestedOptions{AbsTol: -1}, wantErr: ErrInvalidTolerance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DblQuad(context.Background(), tt.f, tt.a, tt.b, tt.yl, tt.yu, tt.opts)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTplQuad_ConfigErrors(t *testing.T) {
	f := func(x, y, z float64) float64 { return 1 }
	lim1 := func(x float64) float64 { return 0 }
	lim2 := func(x, y float64) float64 { return 0 }

	_, err := TplQuad(context.Background(), nil, 0, 1, lim1, lim1, lim2, lim2, nil)
	assert.ErrorIs(t, err, ErrNilIntegrand)

	_, err = TplQuad(context.Background(), f, 0, 1, nil, lim1, lim2, lim2, nil)
	assert.ErrorIs(t, err, ErrNilLimit)

	_, err = TplQuad(context.Background(), f, 0, 1, lim1, lim1, nil, lim2, nil)
	assert.ErrorIs(t, err, ErrNilLimit)

	_, err = TplQuad(context.Background(), f, 0, 1, lim1, lim1, lim2, nil, nil)
	assert.ErrorIs(t, err, ErrNilLimit)

	_, err = TplQuad(context.Background(), f, math.Inf(-1), 1, lim1, lim1, lim2, lim2, nil)
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

// =============================================================================
// Runtime Failures
// =============================================================================

// TestDblQuad_RuntimeBadBounds: an inner limit returning NaN is a runtime
// failure attributed to the outer abscissa, not a config error.
func TestDblQuad_RuntimeBadBounds(t *testing.T) {
	f := func(x, y float64) float64 { return x + y }
	yu := func(x float64) float64 {
		if x > 1.4 && x < 1.6 {
			return math.NaN()
		}
		return 2 * x
	}

	res, err := DblQuad(context.Background(), f, 1, 2,
		func(x float64) float64 { return x }, yu, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusBadIntegrand, res.Status)
	assert.False(t, res.Converged())
	assert.Greater(t, res.BadPoint, 1.4)
	assert.Less(t, res.BadPoint, 1.6)
}

// TestDblQuad_InnerPanicAttribution: a panic deep inside an inner integral
// surfaces as BadIntegrand at the outer coordinate that triggered it.
func TestDblQuad_InnerPanicAttribution(t *testing.T) {
	f := func(x, y float64) float64 {
		if x > 1.9 && y > 3.5 {
			panic("corner blew up")
		}
		return x + y
	}

	res, err := DblQuad(context.Background(), f, 1, 2,
		func(x float64) float64 { return x },
		func(x float64) float64 { return 2 * x },
		nil)
	require.NoError(t, err)

	assert.Equal(t, StatusBadIntegrand, res.Status)
	assert.Greater(t, res.BadPoint, 1.9)
	assert.LessOrEqual(t, res.BadPoint, 2.0)
}

// TestDblQuad_CancelledInner: a context cancelled before the call stops the
// first inner integration that needs to subdivide, and the status carries
// through the nesting.
func TestDblQuad_CancelledInner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := func(x, y float64) float64 { return math.Cos(50 * x * y) }
	res, err := DblQuad(ctx, f, 0, 2,
		func(x float64) float64 { return 0 },
		func(x float64) float64 { return 3 },
		nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, res.Status)
	assert.False(t, res.Converged())
}

// =============================================================================
// Helpers
// =============================================================================

func TestHardFailure(t *testing.T) {
	assert.True(t, hardFailure(StatusBadIntegrand))
	assert.True(t, hardFailure(StatusDivergent))
	assert.True(t, hardFailure(StatusCancelled))

	assert.False(t, hardFailure(StatusConverged))
	assert.False(t, hardFailure(StatusMaxSubdivisions))
	assert.False(t, hardFailure(StatusRoundoffLimited))
}

func TestFiniteBounds(t *testing.T) {
	assert.True(t, finiteBounds(0, 1))
	assert.True(t, finiteBounds(-5, math.MaxFloat64))

	assert.False(t, finiteBounds(math.NaN(), 1))
	assert.False(t, finiteBounds(0, math.NaN()))
	assert.False(t, finiteBounds(math.Inf(-1), 0))
	assert.False(t, finiteBounds(0, math.Inf(1)))
}
