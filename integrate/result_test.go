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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusConverged, "converged"},
		{StatusMaxSubdivisions, "max_subdivisions_reached"},
		{StatusRoundoffLimited, "roundoff_limited"},
		{StatusDivergent, "divergent_or_slowly_convergent"},
		{StatusBadIntegrand, "bad_integrand_behavior"},
		{StatusCancelled, "cancelled"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestResult_Converged(t *testing.T) {
	assert.True(t, Result{Status: StatusConverged}.Converged())

	for _, s := range []Status{
		StatusMaxSubdivisions, StatusRoundoffLimited, StatusDivergent,
		StatusBadIntegrand, StatusCancelled,
	} {
		assert.False(t, Result{Status: s}.Converged(), s.String())
	}
}

// TestNewResult: BadPoint defaults to NaN so a zero there can never be
// mistaken for a real abscissa.
func TestNewResult(t *testing.T) {
	res := newResult(1.5, 1e-10, StatusConverged, 42, 3)

	assert.Equal(t, 1.5, res.Value)
	assert.Equal(t, 1e-10, res.AbsError)
	assert.Equal(t, StatusConverged, res.Status)
	assert.Equal(t, 42, res.Evaluations)
	assert.Equal(t, 3, res.Subdivisions)
	assert.True(t, math.IsNaN(res.BadPoint))
}
