// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package integrate provides adaptive numerical integration of real-valued
// functions over finite, semi-infinite, and infinite intervals.
//
// The entry points are Quad (one-dimensional), DblQuad (two-dimensional with
// variable inner limits), and TplQuad (three-dimensional with variable inner
// limits). All of them return a Result carrying the estimated value, an
// estimated absolute error bound, a termination status, and evaluation
// statistics.
//
// # Algorithm
//
// Quad drives a globally adaptive bisection loop over Gauss-Kronrod rules:
// the subinterval with the largest estimated error is repeatedly bisected
// until the accumulated error meets max(AbsTol, RelTol*|value|), a
// subdivision budget is exhausted, or the loop detects that further
// refinement cannot help (floating-point roundoff, divergence). A Wynn
// epsilon accelerator watches the partial-sum history and can terminate the
// loop early when extrapolation converges faster than bisection.
//
// Infinite intervals are mapped onto finite parameter domains before the
// rule is applied: (lo, +Inf) via x = lo + t/(1-t), (-Inf, hi) mirrored, and
// (-Inf, +Inf) via x = t/(1-t^2); see transform.go for the exact maps.
//
// # Weight Functions
//
// Integrals of f(x)*w(x) for the classical weight families use dedicated
// formulas instead of naive multiplication, which loses accuracy near
// singularities and for high oscillation frequencies:
//
//   - WeightSin / WeightCos: Clenshaw-Curtis expansion of f against
//     precomputed Chebyshev moments of the oscillating factor. Over a
//     semi-infinite range the integral is summed cycle by cycle and
//     accelerated (Fourier integration).
//   - WeightAlgebraic: (x-a)^alpha * (b-x)^beta with optional logarithmic
//     factors; the singular factor is removed analytically on subintervals
//     touching an endpoint.
//   - WeightCauchy: principal value against 1/(x-c); the pole is removed
//     analytically through modified Chebyshev moments.
//
// # Contract
//
// AbsError is always >= 0. When Status is StatusConverged the engine intends
// |Value - true integral| <= AbsError; for any other status the estimate is
// best-effort and AbsError reports the residual error bound. Configuration
// problems (malformed bounds, tolerances, break points, weight parameters)
// are the only conditions reported as a Go error; every other outcome,
// including non-convergence and integrand failures, is reported through
// Result.Status so callers always see the best available estimate.
//
// # Thread Safety
//
// All state is call-local. Distinct calls may run concurrently without
// coordination; a single call is strictly sequential by design because each
// bisection decision depends on the full current error ranking.
package integrate
