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
// Algebraic-Logarithmic Weight Kernel
// =============================================================================
//
// Integrates f(x) * (x-a)^alpha * (b-x)^beta over [a, b] where the
// weight may additionally carry log(x-a) and/or log(b-x) factors. Segments
// touching an endpoint absorb that endpoint's singular factor into exact
// Chebyshev moments; the smooth remainder is expanded with chebExpand.
// Interior segments see no singularity and use the plain weighted rule.
//
// The moments are width-independent: for a segment [a, a+2h],
//
//	int (x-a)^alpha g(x) dx = h^(alpha+1) * int (1+t)^alpha g(a+h(1+t)) dt
//
// so one table per exponent serves every bisection level. A log factor on
// the same endpoint splits as log(h(1+t)) = log h + log(1+t), pairing the
// plain moments with their alpha-derivatives.

// algKernel carries the exact endpoint moments for one (alpha, beta, logs)
// configuration. ri/rg are the left-endpoint moments of (1+t)^alpha and
// (1+t)^alpha*log(1+t); rj/rh are the right-endpoint mirrors with the
// (-1)^k parity already applied.
type algKernel struct {
	f        errFunc
	a, b     float64
	alpha    float64
	beta     float64
	logLeft  bool
	logRight bool

	ri, rg [ccN + 1]float64
	rj, rh [ccN + 1]float64

	riMax, rgMax float64
	rjMax, rhMax float64
}

func newAlgKernel(f errFunc, params WeightParams, lo, hi float64) *algKernel {
	k := &algKernel{
		f:        f,
		a:        lo,
		b:        hi,
		alpha:    params.Alpha,
		beta:     params.Beta,
		logLeft:  params.LogLeft,
		logRight: params.LogRight,
	}
	k.ri, k.rg = computeAlgMoments(params.Alpha)
	k.rj, k.rh = computeAlgMoments(params.Beta)
	for i := 1; i <= ccN; i += 2 {
		k.rj[i] = -k.rj[i]
		k.rh[i] = -k.rh[i]
	}
	for i := 0; i <= ccN; i++ {
		k.riMax = math.Max(k.riMax, math.Abs(k.ri[i]))
		k.rgMax = math.Max(k.rgMax, math.Abs(k.rg[i]))
		k.rjMax = math.Max(k.rjMax, math.Abs(k.rj[i]))
		k.rhMax = math.Max(k.rhMax, math.Abs(k.rh[i]))
	}
	return k
}

func (k *algKernel) splitPoint(lo, hi float64) float64 {
	return 0.5 * (lo + hi)
}

// weight is the full singular factor, used only on interior segments where
// every evaluation point is bounded away from both endpoints.
func (k *algKernel) weight(x float64) float64 {
	w := math.Pow(x-k.a, k.alpha) * math.Pow(k.b-x, k.beta)
	if k.logLeft {
		w *= math.Log(x - k.a)
	}
	if k.logRight {
		w *= math.Log(k.b - x)
	}
	return w
}

func (k *algKernel) apply(lo, hi float64, _ int) (ruleResult, error) {
	switch {
	case lo == k.a:
		return k.applyLeft(lo, hi)
	case hi == k.b:
		return k.applyRight(lo, hi)
	default:
		return applyWeighted(k.f, k.weight, lo, hi)
	}
}

// applyLeft handles a segment whose lower bound is the original endpoint a.
// The (x-a)^alpha factor (and its log) moves into the moments; the rest of
// the weight stays with the integrand.
func (k *algKernel) applyLeft(lo, hi float64) (ruleResult, error) {
	g := k.f
	if k.beta != 0 || k.logRight {
		g = productFunc(k.f, func(x float64) float64 {
			w := math.Pow(k.b-x, k.beta)
			if k.logRight {
				w *= math.Log(k.b - x)
			}
			return w
		})
	}

	_, series, err := chebExpand(g, lo, hi)
	if err != nil {
		return ruleResult{}, err
	}

	hw := 0.5 * (hi - lo)
	factor := math.Pow(hw, k.alpha+1)

	est24 := dotPrimed(series.c24[:], k.ri[:])
	est12 := dotPrimed(series.c12[:], k.ri[:13])
	momCap := k.riMax
	if k.logLeft {
		lg := math.Log(hw)
		est24 = dotPrimed(series.c24[:], k.rg[:]) + lg*est24
		est12 = dotPrimed(series.c12[:], k.rg[:13]) + lg*est12
		momCap = k.rgMax + math.Abs(lg)*k.riMax
	}
	est24 *= factor
	est12 *= factor

	return momentResult(est24, est12, factor, momCap, series)
}

// applyRight mirrors applyLeft for a segment whose upper bound is b.
func (k *algKernel) applyRight(lo, hi float64) (ruleResult, error) {
	g := k.f
	if k.alpha != 0 || k.logLeft {
		g = productFunc(k.f, func(x float64) float64 {
			w := math.Pow(x-k.a, k.alpha)
			if k.logLeft {
				w *= math.Log(x - k.a)
			}
			return w
		})
	}

	_, series, err := chebExpand(g, lo, hi)
	if err != nil {
		return ruleResult{}, err
	}

	hw := 0.5 * (hi - lo)
	factor := math.Pow(hw, k.beta+1)

	est24 := dotPrimed(series.c24[:], k.rj[:])
	est12 := dotPrimed(series.c12[:], k.rj[:13])
	momCap := k.rjMax
	if k.logRight {
		lg := math.Log(hw)
		est24 = dotPrimed(series.c24[:], k.rh[:]) + lg*est24
		est12 = dotPrimed(series.c12[:], k.rh[:13]) + lg*est12
		momCap = k.rhMax + math.Abs(lg)*k.rjMax
	}
	est24 *= factor
	est12 *= factor

	return momentResult(est24, est12, factor, momCap, series)
}

// momentResult folds a 24- vs 12-term moment pair into a ruleResult. The
// trailing coefficients bound the neglected tail of the expansion.
func momentResult(est24, est12, factor, momCap float64, series chebSeries) (ruleResult, error) {
	tail := factor * momCap * (math.Abs(series.c24[ccN-1]) + math.Abs(series.c24[ccN]))
	raw := math.Abs(est24-est12) + math.Abs(tail)

	res := ruleResult{
		estimate: est24,
		resabs:   math.Abs(est24) + raw,
	}
	res.errorEst = scaleRuleError(raw, res.resabs, 0)
	res.resasc = res.errorEst
	return res, nil
}

// =============================================================================
// Algebraic Moments
// =============================================================================

// chebShifted[k] holds the integer coefficients of T_k(u-1) in powers of u.
// They reach ~8e17 by k=24; big.Int keeps the recurrence exact without
// worrying about the margin to the int64 edge.
var chebShifted [ccN + 1][]*big.Int

// ln2Big is log(2) to well beyond the working precision of the moment sums.
var ln2Big *big.Float

func init() {
	chebShifted[0] = []*big.Int{big.NewInt(1)}
	chebShifted[1] = []*big.Int{big.NewInt(-1), big.NewInt(1)}
	for k := 2; k <= ccN; k++ {
		prev, cur := chebShifted[k-2], chebShifted[k-1]
		next := make([]*big.Int, k+1)
		for j := 0; j <= k; j++ {
			c := new(big.Int)
			if j > 0 {
				c.Add(c, new(big.Int).Lsh(cur[j-1], 1))
			}
			if j < k {
				c.Sub(c, new(big.Int).Lsh(cur[j], 1))
			}
			if j < k-1 {
				c.Sub(c, prev[j])
			}
			next[j] = c
		}
		chebShifted[k] = next
	}

	const ln2Digits = "0.6931471805599453094172321214581765680755001343602552541206800094933936219696947"
	f, _, err := big.ParseFloat(ln2Digits, 10, 300, big.ToNearestEven)
	if err != nil {
		panic("integrate: bad ln2 literal: " + err.Error())
	}
	ln2Big = f
}

// computeAlgMoments returns r[k] = int_{-1}^{1} (1+t)^e T_k(t) dt and
// rl[k] = int (1+t)^e log(1+t) T_k(t) dt for e > -1.
//
// Substituting u = 1+t gives sums of d_j * 2^(e+j+1) / (e+j+1) over the
// shifted coefficients d_j; the log moments are the derivatives in e. The
// terms reach ~1e24 while the result is O(1), so the sums run in big.Float
// and only the final values round to float64.
func computeAlgMoments(e float64) (r, rl [ccN + 1]float64) {
	const prec = 256

	scale := math.Pow(2, e)
	eBig := new(big.Float).SetPrec(prec).SetFloat64(e)
	den := new(big.Float).SetPrec(prec)
	val := new(big.Float).SetPrec(prec)
	tmp := new(big.Float).SetPrec(prec)

	for k := 0; k <= ccN; k++ {
		rSum := new(big.Float).SetPrec(prec)
		rlSum := new(big.Float).SetPrec(prec)
		for j, dj := range chebShifted[k] {
			if dj.Sign() == 0 {
				continue
			}
			// dj * 2^(j+1): pull the mantissa out so the shift applies on
			// top of dj's own exponent exactly once.
			val.SetInt(dj)
			exp := val.MantExp(val)
			val.SetMantExp(val, exp+j+1)
			// den = e + j + 1
			den.SetInt64(int64(j + 1))
			den.Add(den, eBig)

			tmp.Quo(val, den)
			rSum.Add(rSum, tmp)

			// d/de term: val * (ln2/den - 1/den^2) = (tmp*ln2 - tmp/den)
			val.Mul(tmp, ln2Big)
			rlSum.Add(rlSum, val)
			val.Quo(tmp, den)
			rlSum.Sub(rlSum, val)
		}
		rk, _ := rSum.Float64()
		rlk, _ := rlSum.Float64()
		r[k] = scale * rk
		rl[k] = scale * rlk
	}
	return r, rl
}
