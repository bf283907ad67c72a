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
// Chebyshev Expansion (Clenshaw-Curtis points)
// =============================================================================
//
// Weighted kernels expand the smooth part of the integrand in Chebyshev
// series at the 25 Clenshaw-Curtis points cos(i*pi/24) and integrate the
// series against precomputed moments of the weight. The 13-point (degree-12)
// and 25-point (degree-24) coefficient sets share all evaluations; their
// discrepancy is the kernel's error indicator.
//
// Convention used throughout: f(t) ~ sum''_{k=0..N} c_k T_k(t), where ''
// halves the first and last terms, with coefficients
// c_k = (2/N) * sum''_{i=0..N} f(cos(i*pi/N)) * cos(i*k*pi/N). Moments and
// estimates below all follow this convention; mixing conventions is the
// classic way to get silently wrong weighted estimates.

// ccN is the top expansion degree.
const ccN = 24

var (
	// ccNodes are cos(i*pi/24) for i = 0..24, from 1 down to -1.
	ccNodes [ccN + 1]float64

	// ccCos48 is cos(m*pi/24) for m = 0..47; cos(i*k*pi/24) is looked up at
	// index i*k mod 48.
	ccCos48 [2 * ccN]float64

	// ccAbsWeights are the plain (weight 1) Clenshaw-Curtis quadrature
	// weights at the 25 points; all positive. Used to scale roundoff floors
	// via an |f| estimate.
	ccAbsWeights [ccN + 1]float64

	// chebPoly[k][j] is the exact coefficient of x^j in T_k(x), k <= 24.
	chebPoly [ccN + 1][]int64
)

func init() {
	for m := 0; m < 2*ccN; m++ {
		ccCos48[m] = math.Cos(float64(m) * math.Pi / float64(ccN))
	}
	// Exact endpoint values; cos() is exact at 0 but not at pi.
	ccCos48[0] = 1
	ccCos48[ccN] = -1
	for i := 0; i <= ccN; i++ {
		ccNodes[i] = ccCos48[i]
	}

	// T_0 = 1, T_1 = x, T_{k+1} = 2x*T_k - T_{k-1}.
	chebPoly[0] = []int64{1}
	chebPoly[1] = []int64{0, 1}
	for k := 2; k <= ccN; k++ {
		prev, prev2 := chebPoly[k-1], chebPoly[k-2]
		c := make([]int64, k+1)
		for j, v := range prev {
			c[j+1] += 2 * v
		}
		for j, v := range prev2 {
			c[j] -= v
		}
		chebPoly[k] = c
	}

	// Plain CC weights from the unit-weight moments int T_k = 2/(1-k^2)
	// (even k): w_i = h_i * (2/N) * sum''_k m_k cos(ik*pi/N).
	for i := 0; i <= ccN; i++ {
		var sum float64
		for k := 0; k <= ccN; k += 2 {
			m := 2 / (1 - float64(k)*float64(k))
			term := m * ccCos48[(i*k)%(2*ccN)]
			if k == 0 || k == ccN {
				term *= 0.5
			}
			sum += term
		}
		w := sum * 2 / float64(ccN)
		if i == 0 || i == ccN {
			w *= 0.5
		}
		ccAbsWeights[i] = w
	}
}

// chebSeries holds the nested coefficient sets of one expansion.
type chebSeries struct {
	c12 [13]float64
	c24 [ccN + 1]float64
}

// chebExpand samples f at the 25 Clenshaw-Curtis abscissas of [lo, hi]
// (from hi down to lo) and computes both coefficient sets from the shared
// values.
func chebExpand(f errFunc, lo, hi float64) ([ccN + 1]float64, chebSeries, error) {
	var vals [ccN + 1]float64
	var series chebSeries

	center := 0.5 * (lo + hi)
	half := 0.5 * (hi - lo)
	for i := 0; i <= ccN; i++ {
		y, err := f(center + half*ccNodes[i])
		if err != nil {
			return vals, series, err
		}
		vals[i] = y
	}

	for k := 0; k <= ccN; k++ {
		var sum float64
		for i := 0; i <= ccN; i++ {
			v := vals[i] * ccCos48[(i*k)%(2*ccN)]
			if i == 0 || i == ccN {
				v *= 0.5
			}
			sum += v
		}
		series.c24[k] = sum * 2 / float64(ccN)
	}

	// Degree-12 set from the 13 even-indexed points: cos(j*k*pi/12) =
	// cos(2jk*pi/24).
	for k := 0; k <= 12; k++ {
		var sum float64
		for j := 0; j <= 12; j++ {
			v := vals[2*j] * ccCos48[(2*j*k)%(2*ccN)]
			if j == 0 || j == 12 {
				v *= 0.5
			}
			sum += v
		}
		series.c12[k] = sum / 6
	}
	return vals, series, nil
}

// dotPrimed computes sum''_k c_k m_k: the series integrated against the
// moment vector, halving the first and last terms.
func dotPrimed(c, m []float64) float64 {
	n := len(c) - 1
	sum := 0.5 * (c[0]*m[0] + c[n]*m[n])
	for k := 1; k < n; k++ {
		sum += c[k] * m[k]
	}
	return sum
}

// absSample estimates the integral of |f| over [lo, hi] from the 25 sampled
// values, for roundoff floors in weighted kernels.
func absSample(vals [ccN + 1]float64, lo, hi float64) float64 {
	half := math.Abs(0.5 * (hi - lo))
	var sum float64
	for i, v := range vals {
		sum += ccAbsWeights[i] * math.Abs(v)
	}
	return sum * half
}
