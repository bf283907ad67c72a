// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package quadrature

// IntegrateRequest is the request body for POST /integrate.
//
// The expression is written in terms of x (plus y for 2-D and z for 3-D
// requests). Bounds are strings so callers can spell infinities: "0",
// "-1.5", "inf", "-inf". Supplying Y promotes the request to a double
// integral; supplying Y and Z to a triple integral.
type IntegrateRequest struct {
	// Expression is the integrand, e.g. "exp(-x)*sin(x)".
	Expression string `json:"expression" binding:"required"`

	// Lower is the outer lower bound: a number or "inf"/"-inf".
	Lower string `json:"lower" binding:"required"`

	// Upper is the outer upper bound: a number or "inf"/"-inf".
	Upper string `json:"upper" binding:"required"`

	// Weight selects an analytic weight function: "none" (default),
	// "sin", "cos", "algebraic", or "cauchy". Weighted integration is
	// one-dimensional only.
	Weight string `json:"weight,omitempty"`

	// Omega is the oscillation frequency for weight "sin"/"cos".
	Omega float64 `json:"omega,omitempty"`

	// Alpha and Beta are the endpoint exponents for weight "algebraic".
	Alpha float64 `json:"alpha,omitempty"`
	Beta  float64 `json:"beta,omitempty"`

	// LogLeft and LogRight add log(x-a) / log(b-x) factors to the
	// algebraic weight.
	LogLeft  bool `json:"log_left,omitempty"`
	LogRight bool `json:"log_right,omitempty"`

	// Pole is the principal-value pole location for weight "cauchy".
	Pole float64 `json:"pole,omitempty"`

	// BreakPoints lists interior abscissas where the integrand is known
	// to be non-smooth. Finite unweighted 1-D integration only.
	BreakPoints []float64 `json:"break_points,omitempty"`

	// AbsTol is the absolute tolerance. Zero selects the engine default.
	AbsTol float64 `json:"abs_tol,omitempty"`

	// RelTol is the relative tolerance. Zero selects the engine default.
	RelTol float64 `json:"rel_tol,omitempty"`

	// MaxSubdivisions bounds the bisection budget. Zero selects the
	// engine default; values above the service cap are rejected.
	MaxSubdivisions int `json:"max_subdivisions,omitempty"`

	// Y gives the inner y-range for 2-D and 3-D requests. Its bounds are
	// expressions in x, so "x" and "2*x" describe a triangular region.
	Y *InnerRange `json:"y,omitempty"`

	// Z gives the innermost z-range for 3-D requests. Its bounds are
	// expressions in x and y. Requires Y.
	Z *InnerRange `json:"z,omitempty"`
}

// InnerRange gives expression-valued bounds for an inner integration
// dimension.
type InnerRange struct {
	// Lower is the inner lower bound expression, e.g. "0" or "x".
	Lower string `json:"lower" binding:"required"`

	// Upper is the inner upper bound expression, e.g. "1" or "2*x".
	Upper string `json:"upper" binding:"required"`
}

// IntegrateResponse is the response body for POST /integrate.
type IntegrateResponse struct {
	// RequestID echoes the request identifier for correlation.
	RequestID string `json:"request_id,omitempty"`

	// Value is the estimated integral. Zero when the engine produced no
	// finite estimate; Status is authoritative.
	Value float64 `json:"value"`

	// AbsError is the estimated absolute error bound.
	AbsError float64 `json:"abs_error"`

	// Status reports how the integration terminated: "converged",
	// "max_subdivisions_reached", "roundoff_limited",
	// "divergent_or_slowly_convergent", "bad_integrand_behavior",
	// or "cancelled".
	Status string `json:"status"`

	// Converged is true when the tolerance contract was met.
	Converged bool `json:"converged"`

	// Evaluations is the number of integrand evaluations performed.
	Evaluations int `json:"evaluations"`

	// Subdivisions is the size of the final interval partition.
	Subdivisions int `json:"subdivisions"`

	// BadPoint is the abscissa at which the integrand failed, present
	// only when Status is "bad_integrand_behavior".
	BadPoint *float64 `json:"bad_point,omitempty"`

	// ElapsedMS is the server-side integration time in milliseconds.
	ElapsedMS float64 `json:"elapsed_ms"`
}

// BatchRequest is the request body for POST /integrate/batch. Jobs are
// independent and run in parallel up to the service's parallelism limit.
type BatchRequest struct {
	// Jobs lists the integration requests to run.
	Jobs []IntegrateRequest `json:"jobs" binding:"required,min=1,dive"`
}

// BatchResult is the outcome of a single batch job. Exactly one of Result
// and Error is set.
type BatchResult struct {
	// Index is the job's position in the request.
	Index int `json:"index"`

	// Result holds the integration outcome when the job was accepted.
	Result *IntegrateResponse `json:"result,omitempty"`

	// Error describes why the job was rejected.
	Error string `json:"error,omitempty"`

	// Code is the machine-readable error code for rejected jobs.
	Code string `json:"code,omitempty"`
}

// BatchResponse is the response body for POST /integrate/batch. Results
// preserve job order.
type BatchResponse struct {
	// RequestID echoes the request identifier for correlation.
	RequestID string `json:"request_id,omitempty"`

	// Count is the number of jobs processed.
	Count int `json:"count"`

	// Results holds one entry per job, in request order.
	Results []BatchResult `json:"results"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	// Status is "healthy" when the service is up.
	Status string `json:"status"`

	// Version is the service version.
	Version string `json:"version"`
}

// ReadyResponse is the response body for GET /ready.
type ReadyResponse struct {
	// Ready indicates whether the service accepts work.
	Ready bool `json:"ready"`

	// Calls is the number of integration calls served since startup.
	Calls int64 `json:"calls"`

	// Uptime is the time since service construction.
	Uptime string `json:"uptime"`
}

// ErrorResponse is the error body returned by all endpoints.
type ErrorResponse struct {
	// Error is a human-readable description of the failure.
	Error string `json:"error"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`

	// Details carries additional context when available.
	Details string `json:"details,omitempty"`
}
