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
	"fmt"
	"math"
)

// =============================================================================
// Gauss-Kronrod Rules
// =============================================================================

// Floating-point constants used by the error model.
const (
	// epsMach is the double-precision machine epsilon.
	epsMach = 0x1p-52

	// minNormal is the smallest positive normal double.
	minNormal = 0x1p-1022
)

// errFunc is the internal integrand shape: an evaluation either yields a
// finite value or a fatal error for the enclosing subinterval.
type errFunc func(x float64) (float64, error)

// evaluator adapts a user Func to an errFunc: it counts evaluations,
// converts panics into errors, and rejects non-finite values so they can
// never contaminate an estimate silently.
type evaluator struct {
	fn    Func
	evals int
}

func (e *evaluator) call(x float64) (y float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &evalFailure{x: x, panicked: true, detail: fmt.Sprint(r)}
		}
	}()
	e.evals++
	y = e.fn(x)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, &evalFailure{x: x}
	}
	return y, nil
}

// ruleResult is the common output shape of every rule and weight kernel.
type ruleResult struct {
	// estimate is the higher-order (Kronrod) integral estimate.
	estimate float64

	// errorEst is the estimated absolute error, >= 0.
	errorEst float64

	// resabs approximates the integral of |f| (or |w*f|), used by the
	// roundoff floor.
	resabs float64

	// resasc approximates the integral of |f - mean|; when errorEst equals
	// resasc the rule has no resolution left on this subinterval.
	resasc float64
}

// gkTable is a Gauss-Kronrod node/weight pair. Nodes are the non-negative
// Kronrod abscissas in decreasing order, ending with the center 0. The
// embedded Gauss rule lives on the odd-indexed nodes; centerGauss is the
// Gauss center weight (zero for even-point Gauss rules, which skip the
// center).
type gkTable struct {
	nodes       []float64
	kronrodW    []float64
	gaussW      []float64
	centerGauss float64
}

// gk15 is the 7-point Gauss, 15-point Kronrod pair. Used for transformed
// infinite ranges and as the base rule of every weighted formula.
var gk15 = gkTable{
	nodes: []float64{
		0.9914553711208126,
		0.9491079123427585,
		0.8648644233597691,
		0.7415311855993944,
		0.5860872354676911,
		0.4058451513773972,
		0.2077849550078985,
		0.0,
	},
	kronrodW: []float64{
		0.0229353220105292,
		0.0630920926299785,
		0.1047900103222502,
		0.1406532597155259,
		0.1690047266392679,
		0.1903505780647854,
		0.2044329400752989,
		0.2094821410847278,
	},
	gaussW: []float64{
		0.1294849661688697,
		0.2797053914892767,
		0.3818300505051189,
	},
	centerGauss: 0.4179591836734694,
}

// gk21 is the 10-point Gauss, 21-point Kronrod pair. Used for plain finite
// integration.
var gk21 = gkTable{
	nodes: []float64{
		0.9956571630258081,
		0.9739065285171717,
		0.9301574913557082,
		0.8650633666889845,
		0.7808177265864169,
		0.6794095682990244,
		0.5627571346686047,
		0.4333953941292472,
		0.2943928627014602,
		0.1488743389816312,
		0.0,
	},
	kronrodW: []float64{
		0.0116946388673719,
		0.0325581623079647,
		0.0547558965743520,
		0.0750396748109199,
		0.0931254545836976,
		0.1093871588022976,
		0.1234919762620659,
		0.1347092173114733,
		0.1427759385770601,
		0.1477391049013385,
		0.1494455540029169,
	},
	gaussW: []float64{
		0.0666713443086881,
		0.1494513491505806,
		0.2190863625159820,
		0.2692667193099963,
		0.2955242247147529,
	},
	centerGauss: 0, // 10-point Gauss has no center node
}

// apply evaluates the rule on [lo, hi]. Both embedded formulas share every
// evaluation: the integrand is called exactly len(nodes)*2-1 times.
func (t *gkTable) apply(f errFunc, lo, hi float64) (ruleResult, error) {
	center := 0.5 * (lo + hi)
	half := 0.5 * (hi - lo)
	absHalf := math.Abs(half)

	last := len(t.nodes) - 1
	fc, err := f(center)
	if err != nil {
		return ruleResult{}, err
	}

	resk := t.kronrodW[last] * fc
	resg := t.centerGauss * fc
	resabs := t.kronrodW[last] * math.Abs(fc)

	// Symmetric pairs, reused for Kronrod and (odd indices) Gauss.
	lows := make([]float64, last)
	highs := make([]float64, last)
	for j := 0; j < last; j++ {
		dx := half * t.nodes[j]
		f1, err := f(center - dx)
		if err != nil {
			return ruleResult{}, err
		}
		f2, err := f(center + dx)
		if err != nil {
			return ruleResult{}, err
		}
		lows[j], highs[j] = f1, f2

		sum := f1 + f2
		resk += t.kronrodW[j] * sum
		resabs += t.kronrodW[j] * (math.Abs(f1) + math.Abs(f2))
		if j%2 == 1 {
			resg += t.gaussW[j/2] * sum
		}
	}

	mean := 0.5 * resk
	resasc := t.kronrodW[last] * math.Abs(fc-mean)
	for j := 0; j < last; j++ {
		resasc += t.kronrodW[j] * (math.Abs(lows[j]-mean) + math.Abs(highs[j]-mean))
	}

	res := ruleResult{
		estimate: resk * half,
		resabs:   resabs * absHalf,
		resasc:   resasc * absHalf,
	}
	res.errorEst = scaleRuleError(math.Abs((resk-resg)*half), res.resabs, res.resasc)
	return res, nil
}

// scaleRuleError converts the raw Gauss/Kronrod discrepancy into the
// reported error estimate: the discrepancy is damped against the variation
// resasc and floored against roundoff in the |f| sum.
func scaleRuleError(raw, resabs, resasc float64) float64 {
	errEst := raw
	if resasc != 0 && errEst != 0 {
		errEst = resasc * math.Min(1, math.Pow(200*errEst/resasc, 1.5))
	}
	if resabs > minNormal/(50*epsMach) {
		errEst = math.Max(50*epsMach*resabs, errEst)
	}
	return errEst
}

// productFunc wraps f with an analytic factor w. Only f itself counts
// toward the evaluation budget; a non-finite product is reported against
// the point that produced it.
func productFunc(f errFunc, w func(float64) float64) errFunc {
	return func(x float64) (float64, error) {
		y, err := f(x)
		if err != nil {
			return 0, err
		}
		v := y * w(x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &evalFailure{x: x, detail: "weighted product is non-finite"}
		}
		return v, nil
	}
}

// applyWeighted evaluates the 15-point pair on the pointwise product w*f.
// Weight kernels fall back to this wherever their specialized expansion is
// not applicable (slow oscillation, subintervals away from a singularity or
// pole).
func applyWeighted(f errFunc, w func(float64) float64, lo, hi float64) (ruleResult, error) {
	return gk15.apply(productFunc(f, w), lo, hi)
}
