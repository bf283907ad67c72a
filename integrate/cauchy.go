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
// Cauchy Principal Value Kernel
// =============================================================================
//
// Integrates f(x)/(x-c) in the principal value sense. On segments where the
// pole sits inside or close by (|cc| <= 1.1 in the scaled coordinate), f is
// expanded in Chebyshev polynomials and dotted against the exact moments of
// 1/(t-cc), which absorb the pole analytically. Segments with the pole far
// outside use the plain weighted rule. The half-width cancels in the change
// of variable, so no width scale appears in the moment estimate.

// cauchyFarPole is the |cc| beyond which the pole no longer needs the
// moment treatment.
const cauchyFarPole = 1.1

type cauchyKernel struct {
	f errFunc
	c float64
}

func newCauchyKernel(f errFunc, pole float64) *cauchyKernel {
	return &cauchyKernel{f: f, c: pole}
}

// splitPoint keeps the pole strictly interior to one child: a midpoint that
// would land the pole on (or next to) a new segment edge is shifted so the
// pole-bearing child keeps the pole comfortably inside.
func (k *cauchyKernel) splitPoint(lo, hi float64) float64 {
	mid := 0.5 * (lo + hi)
	switch {
	case k.c > lo && k.c <= mid:
		return 0.5 * (k.c + hi)
	case k.c > mid && k.c < hi:
		return 0.5 * (lo + k.c)
	default:
		return mid
	}
}

func (k *cauchyKernel) weight(x float64) float64 {
	return 1 / (x - k.c)
}

func (k *cauchyKernel) apply(lo, hi float64, _ int) (ruleResult, error) {
	cc := (2*k.c - lo - hi) / (hi - lo)
	if math.Abs(cc) > cauchyFarPole {
		return applyWeighted(k.f, k.weight, lo, hi)
	}

	_, series, err := chebExpand(k.f, lo, hi)
	if err != nil {
		return ruleResult{}, err
	}

	mu := cauchyMoments(cc)
	est24 := dotPrimed(series.c24[:], mu[:])
	est12 := dotPrimed(series.c12[:], mu[:13])

	var momCap float64
	for _, m := range mu {
		momCap = math.Max(momCap, math.Abs(m))
	}
	return momentResult(est24, est12, 1, momCap, series)
}

// cauchyMoments returns mu[k] = pv int_{-1}^{1} T_k(t)/(t-cc) dt via the
// forward three-term recurrence. The inhomogeneous term appears at odd
// orders, where the preceding order's plain Chebyshev integral is non-zero.
func cauchyMoments(cc float64) [ccN + 1]float64 {
	var mu [ccN + 1]float64
	mu[0] = math.Log(math.Abs((1 - cc) / (1 + cc)))
	mu[1] = 2 + cc*mu[0]
	for m := 2; m <= ccN; m++ {
		mu[m] = 2*cc*mu[m-1] - mu[m-2]
		if m%2 == 1 {
			k := float64(m - 1)
			mu[m] -= 4 / (k*k - 1)
		}
	}
	return mu
}
