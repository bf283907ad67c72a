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
	"math/big"
)

// =============================================================================
// Oscillatory Weight Kernel (sin/cos)
// =============================================================================

// oscSlowThreshold is the |omega * half-width| below which the oscillation
// is slow enough for the plain weighted rule; above it the Clenshaw-Curtis
// moment formula takes over.
const oscSlowThreshold = 2.0

// oscMoments holds the Chebyshev moments of the oscillating factor over
// [-1, 1] for one scaled frequency p: cosM[k] = int T_k(t) cos(pt) dt
// (non-zero for even k) and sinM[k] = int T_k(t) sin(pt) dt (odd k).
type oscMoments struct {
	cosM [ccN + 1]float64
	sinM [ccN + 1]float64
}

// oscKernel integrates f(x)*sin(omega*x) or f(x)*cos(omega*x).
//
// The moment table depends only on p = omega*(width/2), and midpoint
// bisection makes the width a function of depth alone, so moments are
// computed once per depth and cached for the call (and shared across the
// cycles of a Fourier integration, which all have the same width).
type oscKernel struct {
	f         errFunc
	omega     float64
	trig      Weight // WeightSin or WeightCos
	baseWidth float64
	moments   map[int]*oscMoments
}

func newOscKernel(f errFunc, omega float64, trig Weight, baseWidth float64) *oscKernel {
	return &oscKernel{
		f:         f,
		omega:     omega,
		trig:      trig,
		baseWidth: baseWidth,
		moments:   make(map[int]*oscMoments),
	}
}

func (k *oscKernel) splitPoint(lo, hi float64) float64 {
	return 0.5 * (lo + hi)
}

func (k *oscKernel) weight(x float64) float64 {
	if k.trig == WeightSin {
		return math.Sin(k.omega * x)
	}
	return math.Cos(k.omega * x)
}

func (k *oscKernel) apply(lo, hi float64, depth int) (ruleResult, error) {
	p := math.Ldexp(k.omega*k.baseWidth, -(depth + 1))
	if math.Abs(p) <= oscSlowThreshold {
		return applyWeighted(k.f, k.weight, lo, hi)
	}

	mom, ok := k.moments[depth]
	if !ok {
		mom = computeOscMoments(p)
		k.moments[depth] = mom
	}

	vals, series, err := chebExpand(k.f, lo, hi)
	if err != nil {
		return ruleResult{}, err
	}

	half := 0.5 * (hi - lo)
	center := 0.5 * (lo + hi)
	cosC := math.Cos(k.omega * center)
	sinC := math.Sin(k.omega * center)

	resc24 := dotPrimed(series.c24[:], mom.cosM[:])
	ress24 := dotPrimed(series.c24[:], mom.sinM[:])
	resc12 := dotPrimed(series.c12[:], mom.cosM[:13])
	ress12 := dotPrimed(series.c12[:], mom.sinM[:13])

	// w(x) = w(center + half*t) splits into cos(p t) and sin(p t) parts:
	//   cos(omega x) = cos(omega c) cos(pt) - sin(omega c) sin(pt)
	//   sin(omega x) = sin(omega c) cos(pt) + cos(omega c) sin(pt)
	var est24, est12 float64
	if k.trig == WeightCos {
		est24 = half * (cosC*resc24 - sinC*ress24)
		est12 = half * (cosC*resc12 - sinC*ress12)
	} else {
		est24 = half * (sinC*resc24 + cosC*ress24)
		est12 = half * (sinC*resc12 + cosC*ress12)
	}

	// |moments| <= int |T_k| <= 2, so the neglected series tail is bounded
	// by the trailing coefficients.
	tail := 2 * math.Abs(half) * (math.Abs(series.c24[ccN-1]) + math.Abs(series.c24[ccN]))
	raw := math.Abs(est24-est12) + tail

	res := ruleResult{
		estimate: est24,
		resabs:   absSample(vals, lo, hi),
	}
	res.errorEst = scaleRuleError(raw, res.resabs, 0)
	res.resasc = res.errorEst
	return res, nil
}

// =============================================================================
// Oscillatory Chebyshev Moments
// =============================================================================
//
// The classical three-term recurrences for these moments switch between
// forward and backward evaluation depending on the size of p relative to
// the order; getting the regime wrong silently destroys accuracy. Instead
// the moments are summed from the Taylor expansion of cos(pt)/sin(pt)
// against exact power-moments of the Chebyshev polynomials:
//
//	int t^s T_k(t) dt = sum_j coeff(T_k, j) * 2/(s+j+1)   (s+j even)
//
// The alternating series cancels catastrophically in double precision for
// large p, so it is summed in big.Float with precision scaled to p. The
// cost is paid once per bisection depth and cached.

// computeOscMoments returns the moment table for scaled frequency p.
func computeOscMoments(p float64) *oscMoments {
	prec := uint(96 + int(1.5*math.Abs(p)))
	mom := &oscMoments{}
	for k := 0; k <= ccN; k++ {
		if k%2 == 0 {
			mom.cosM[k] = oscMomentSeries(p, k, prec)
		} else {
			mom.sinM[k] = oscMomentSeries(p, k, prec)
		}
	}
	return mom
}

// oscMomentSeries sums the k-th moment's Taylor series in extended
// precision. Even k yields the cos moment, odd k the sin moment; the other
// parity vanishes by symmetry.
func oscMomentSeries(p float64, k int, prec uint) float64 {
	pSq := new(big.Float).SetPrec(prec).SetFloat64(p)
	pSq.Mul(pSq, pSq)

	term := new(big.Float).SetPrec(prec)
	s := 0
	if k%2 == 0 {
		term.SetFloat64(1) // p^0 / 0!
	} else {
		term.SetFloat64(p) // p^1 / 1!
		s = 1
	}

	sum := new(big.Float).SetPrec(prec)
	power := new(big.Float).SetPrec(prec)
	frac := new(big.Float).SetPrec(prec)
	denom := new(big.Float).SetPrec(prec)
	absTerm := new(big.Float).SetPrec(prec)
	cutoff := new(big.Float).SetPrec(prec).SetMantExp(big.NewFloat(1), -80)
	absP := math.Abs(p)
	maxIter := 200 + int(absP)

	for iter := 0; iter < maxIter; iter++ {
		// A(s, k): exact power-moments of T_k against t^s. Chebyshev
		// polynomials are not orthogonal under a flat weight, so these
		// are non-zero even for s < k.
		power.SetInt64(0)
		for j := k % 2; j <= k; j += 2 {
			c := chebPoly[k][j]
			if c == 0 {
				continue
			}
			frac.SetInt64(2 * c)
			frac.Quo(frac, denom.SetInt64(int64(s+j+1)))
			power.Add(power, frac)
		}
		frac.Mul(term, power)
		sum.Add(sum, frac)

		// Next term: multiply by -p^2 / ((s+1)(s+2)).
		term.Mul(term, pSq)
		term.Quo(term, denom.SetInt64(int64(s+1)*int64(s+2)))
		term.Neg(term)
		s += 2

		if float64(s) > absP && absTerm.Abs(term).Cmp(cutoff) < 0 {
			break
		}
	}

	out, _ := sum.Float64()
	return out
}
