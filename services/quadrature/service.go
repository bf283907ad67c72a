// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package quadrature implements the HTTP integration service.
//
// The service compiles user expression strings into integrands, translates
// request fields into engine options, and runs the integrate package on
// behalf of remote callers. It is stateless: every request carries its full
// problem description, and nothing persists between calls beyond counters.
package quadrature

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Daniel-B-Smith/scipy/integrate"
	"github.com/Daniel-B-Smith/scipy/pkg/expression"
	"github.com/Daniel-B-Smith/scipy/pkg/logging"
	"github.com/Daniel-B-Smith/scipy/pkg/validation"
)

// ServiceVersion is the version reported by health endpoints.
const ServiceVersion = "1.0.0"

// ServiceConfig holds configuration for the quadrature service.
type ServiceConfig struct {
	// MaxBatchSize caps the number of jobs per batch request.
	// Default: 32.
	MaxBatchSize int

	// MaxParallel caps concurrent jobs within one batch request.
	// Default: 4.
	MaxParallel int

	// CallTimeout bounds a single integration call. The engine returns
	// its best estimate with status "cancelled" when the deadline hits.
	// Default: 30 seconds.
	CallTimeout time.Duration

	// MaxSubdivisionsCap rejects requests asking for a larger bisection
	// budget than the service is willing to spend. Default: 1000.
	MaxSubdivisionsCap int
}

// DefaultServiceConfig returns the default service configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxBatchSize:       32,
		MaxParallel:        4,
		CallTimeout:        30 * time.Second,
		MaxSubdivisionsCap: 1000,
	}
}

// Service runs integration jobs for the HTTP handlers.
type Service struct {
	config ServiceConfig
	logger *logging.Logger

	mu      sync.Mutex
	calls   int64
	started time.Time
}

// NewService creates a quadrature service with the given configuration.
// Zero config fields are replaced by their defaults.
func NewService(config ServiceConfig) *Service {
	def := DefaultServiceConfig()
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = def.MaxBatchSize
	}
	if config.MaxParallel <= 0 {
		config.MaxParallel = def.MaxParallel
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = def.CallTimeout
	}
	if config.MaxSubdivisionsCap <= 0 {
		config.MaxSubdivisionsCap = def.MaxSubdivisionsCap
	}
	return &Service{
		config:  config,
		logger:  logging.Nop(),
		started: time.Now(),
	}
}

// WithLogger sets the service logger. Returns the service for chaining.
func (s *Service) WithLogger(logger *logging.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Calls returns the number of integration calls served since startup.
func (s *Service) Calls() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Uptime returns the time since service construction.
func (s *Service) Uptime() time.Duration {
	return time.Since(s.started)
}

// Integrate runs one integration job.
//
// Description:
//
//	Compiles the request's expressions, parses its bounds, translates the
//	weight and tolerance fields into engine options, and dispatches to
//	Quad, DblQuad, or TplQuad depending on which inner ranges are present.
//
// Inputs:
//
//	ctx - Request context. The service applies its own call timeout on top.
//	req - The integration request.
//
// Outputs:
//
//	*IntegrateResponse - The outcome, including non-converged terminations.
//	error - Non-nil only for requests that never reach the engine loop:
//	        bad expressions, bad bounds, or rejected configurations.
func (s *Service) Integrate(ctx context.Context, req *IntegrateRequest) (*IntegrateResponse, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	lower, err := validation.ParseBound(req.Lower)
	if err != nil {
		return nil, fmt.Errorf("%w: lower: %v", ErrInvalidBounds, err)
	}
	upper, err := validation.ParseBound(req.Upper)
	if err != nil {
		return nil, fmt.Errorf("%w: upper: %v", ErrInvalidBounds, err)
	}

	if req.Z != nil && req.Y == nil {
		return nil, fmt.Errorf("%w: z range requires a y range", ErrInvalidOptions)
	}
	if req.MaxSubdivisions > s.config.MaxSubdivisionsCap {
		return nil, fmt.Errorf("%w: max_subdivisions=%d exceeds cap %d",
			ErrInvalidOptions, req.MaxSubdivisions, s.config.MaxSubdivisionsCap)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	start := time.Now()
	var res integrate.Result
	switch {
	case req.Y == nil:
		res, err = s.integrate1D(ctx, req, lower, upper)
	case req.Z == nil:
		res, err = s.integrate2D(ctx, req, lower, upper)
	default:
		res, err = s.integrate3D(ctx, req, lower, upper)
	}
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	s.logger.Debug("integration complete",
		"status", res.Status.String(),
		"evaluations", res.Evaluations,
		"subdivisions", res.Subdivisions,
		"elapsed_ms", float64(elapsed.Microseconds())/1000.0,
	)

	return buildResponse(res, elapsed), nil
}

// integrate1D compiles a single-variable integrand and runs Quad.
func (s *Service) integrate1D(ctx context.Context, req *IntegrateRequest, lower, upper float64) (integrate.Result, error) {
	f, err := expression.Compile1(req.Expression)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	opts, err := buildOptions(req)
	if err != nil {
		return integrate.Result{}, err
	}

	res, err := integrate.Quad(ctx, f, lower, upper, opts)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return res, nil
}

// integrate2D compiles a two-variable integrand with x-dependent y-limits
// and runs DblQuad.
func (s *Service) integrate2D(ctx context.Context, req *IntegrateRequest, lower, upper float64) (integrate.Result, error) {
	if err := rejectWeighted(req); err != nil {
		return integrate.Result{}, err
	}

	f, err := expression.Compile2(req.Expression)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	yLower, err := expression.Compile1(req.Y.Lower)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: y lower: %v", ErrInvalidExpression, err)
	}
	yUpper, err := expression.Compile1(req.Y.Upper)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: y upper: %v", ErrInvalidExpression, err)
	}

	res, err := integrate.DblQuad(ctx, f, lower, upper, yLower, yUpper, buildNestedOptions(req))
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return res, nil
}

// integrate3D compiles a three-variable integrand with x-dependent y-limits
// and (x,y)-dependent z-limits and runs TplQuad.
func (s *Service) integrate3D(ctx context.Context, req *IntegrateRequest, lower, upper float64) (integrate.Result, error) {
	if err := rejectWeighted(req); err != nil {
		return integrate.Result{}, err
	}

	f, err := expression.Compile3(req.Expression)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	yLower, err := expression.Compile1(req.Y.Lower)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: y lower: %v", ErrInvalidExpression, err)
	}
	yUpper, err := expression.Compile1(req.Y.Upper)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: y upper: %v", ErrInvalidExpression, err)
	}
	zLower, err := expression.Compile2(req.Z.Lower)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: z lower: %v", ErrInvalidExpression, err)
	}
	zUpper, err := expression.Compile2(req.Z.Upper)
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: z upper: %v", ErrInvalidExpression, err)
	}

	res, err := integrate.TplQuad(ctx, f, lower, upper, yLower, yUpper, zLower, zUpper, buildNestedOptions(req))
	if err != nil {
		return integrate.Result{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return res, nil
}

// IntegrateBatch runs the batch's jobs in parallel up to MaxParallel.
//
// Jobs are independent: a rejected job reports its error in its own slot
// and the rest still run. Results preserve request order.
func (s *Service) IntegrateBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	if len(req.Jobs) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(req.Jobs) > s.config.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d jobs, limit %d",
			ErrBatchTooLarge, len(req.Jobs), s.config.MaxBatchSize)
	}

	results := make([]BatchResult, len(req.Jobs))

	var g errgroup.Group
	g.SetLimit(s.config.MaxParallel)
	for i := range req.Jobs {
		g.Go(func() error {
			resp, err := s.Integrate(ctx, &req.Jobs[i])
			if err != nil {
				_, code := statusForError(err)
				results[i] = BatchResult{Index: i, Error: err.Error(), Code: code}
				return nil
			}
			results[i] = BatchResult{Index: i, Result: resp}
			return nil
		})
	}
	// Job errors are reported per-slot, so Wait never returns one.
	_ = g.Wait()

	return &BatchResponse{
		Count:   len(results),
		Results: results,
	}, nil
}

// buildOptions translates request fields into 1-D engine options.
func buildOptions(req *IntegrateRequest) (*integrate.Options, error) {
	opts := &integrate.Options{
		AbsTol:          req.AbsTol,
		RelTol:          req.RelTol,
		BreakPoints:     req.BreakPoints,
		MaxSubdivisions: req.MaxSubdivisions,
	}

	switch strings.ToLower(req.Weight) {
	case "", "none":
		// Unweighted.
	case "sin":
		opts.Weight = integrate.WeightSin
		opts.WeightParams = &integrate.WeightParams{Omega: req.Omega}
	case "cos":
		opts.Weight = integrate.WeightCos
		opts.WeightParams = &integrate.WeightParams{Omega: req.Omega}
	case "algebraic":
		opts.Weight = integrate.WeightAlgebraic
		opts.WeightParams = &integrate.WeightParams{
			Alpha:    req.Alpha,
			Beta:     req.Beta,
			LogLeft:  req.LogLeft,
			LogRight: req.LogRight,
		}
	case "cauchy":
		opts.Weight = integrate.WeightCauchy
		opts.WeightParams = &integrate.WeightParams{Pole: req.Pole}
	default:
		return nil, fmt.Errorf("%w: unknown weight %q", ErrInvalidOptions, req.Weight)
	}

	return opts, nil
}

// buildNestedOptions translates request tolerances into nested engine
// options for DblQuad/TplQuad.
func buildNestedOptions(req *IntegrateRequest) *integrate.NestedOptions {
	return &integrate.NestedOptions{
		AbsTol:          req.AbsTol,
		RelTol:          req.RelTol,
		MaxSubdivisions: req.MaxSubdivisions,
	}
}

// rejectWeighted rejects weight and break point fields on multi-dimensional
// requests; the engine's weighted formulas are one-dimensional.
func rejectWeighted(req *IntegrateRequest) error {
	if req.Weight != "" && !strings.EqualFold(req.Weight, "none") {
		return fmt.Errorf("%w: weight %q is not supported for multi-dimensional requests",
			ErrInvalidOptions, req.Weight)
	}
	if len(req.BreakPoints) > 0 {
		return fmt.Errorf("%w: break points are not supported for multi-dimensional requests",
			ErrInvalidOptions)
	}
	return nil
}

// buildResponse converts an engine result into the wire response.
// Non-finite floats are zeroed so the body always marshals; Status stays
// authoritative.
func buildResponse(res integrate.Result, elapsed time.Duration) *IntegrateResponse {
	resp := &IntegrateResponse{
		Value:        jsonSafe(res.Value),
		AbsError:     jsonSafe(res.AbsError),
		Status:       res.Status.String(),
		Converged:    res.Converged(),
		Evaluations:  res.Evaluations,
		Subdivisions: res.Subdivisions,
		ElapsedMS:    float64(elapsed.Microseconds()) / 1000.0,
	}
	if !math.IsNaN(res.BadPoint) {
		bad := res.BadPoint
		resp.BadPoint = &bad
	}
	return resp
}

// jsonSafe replaces non-finite values with zero. encoding/json rejects
// NaN and infinities outright.
func jsonSafe(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
