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
// Interval Transformer
// =============================================================================
//
// Infinite ranges are rewritten as integrals over finite parameter domains
// before any rule runs, so the adaptive driver only ever sees finite
// subintervals. The maps:
//
//	(lo, +Inf):  x = lo + t/(1-t),  t in [0,1),   dx = dt/(1-t)^2
//	(-Inf, hi):  x = hi - t/(1-t),  t in [0,1),   dx = dt/(1-t)^2
//	(-Inf,+Inf): x = t/(1-t^2),     t in (-1,1),  dx = (1+t^2)/(1-t^2)^2 dt
//
// The Jacobian blows up at the parameter endpoint; rules sample interior
// abscissas only, so the endpoint is never evaluated. In IEEE arithmetic
// 1-t stays >= one ulp for every interior point, keeping x and the Jacobian
// finite all the way down to unbisectable subintervals.

// transformed describes a finite-domain rewrite of the requested integral.
type transformed struct {
	f      errFunc
	lo, hi float64
}

// transformInterval rewrites f over (a, b) with infinite endpoint(s) into a
// finite-domain integrand. Finite intervals pass through unchanged.
// The caller guarantees a < b after bound normalization.
func transformInterval(f errFunc, a, b float64) transformed {
	infA := math.IsInf(a, -1)
	infB := math.IsInf(b, 1)

	switch {
	case infA && infB:
		return transformed{f: mapDoublyInfinite(f), lo: -1, hi: 1}
	case infB:
		return transformed{f: mapUpperInfinite(f, a), lo: 0, hi: 1}
	case infA:
		return transformed{f: mapLowerInfinite(f, b), lo: 0, hi: 1}
	default:
		return transformed{f: f, lo: a, hi: b}
	}
}

// mapUpperInfinite maps (lo, +Inf) onto t in [0, 1).
func mapUpperInfinite(f errFunc, lo float64) errFunc {
	return func(t float64) (float64, error) {
		u := 1 - t
		x := lo + t/u
		y, err := f(x)
		if err != nil {
			return 0, err
		}
		return y / (u * u), nil
	}
}

// mapLowerInfinite maps (-Inf, hi) onto t in [0, 1), integrating toward
// -Inf as t approaches 1. The orientation keeps the integral's sign: the
// substitution x = hi - t/(1-t) reverses direction twice.
func mapLowerInfinite(f errFunc, hi float64) errFunc {
	return func(t float64) (float64, error) {
		u := 1 - t
		x := hi - t/u
		y, err := f(x)
		if err != nil {
			return 0, err
		}
		return y / (u * u), nil
	}
}

// mapDoublyInfinite maps (-Inf, +Inf) onto t in (-1, 1).
func mapDoublyInfinite(f errFunc) errFunc {
	return func(t float64) (float64, error) {
		u := 1 - t*t
		x := t / u
		y, err := f(x)
		if err != nil {
			return 0, err
		}
		return y * (1 + t*t) / (u * u), nil
	}
}
