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

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Daniel-B-Smith/scipy/pkg/telemetry"
)

// Handlers holds the HTTP handlers for the quadrature service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers backed by the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// getOrCreateRequestID returns the X-Request-ID header value, generating a
// new ID when absent, and echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}

// requestLogger builds the per-request logger with correlation attributes.
func requestLogger(c *gin.Context, requestID, handler string) *slog.Logger {
	logger := slog.With("request_id", requestID, "handler", handler)
	if tid := telemetry.TraceID(c.Request.Context()); tid != "" {
		logger = logger.With("trace_id", tid)
	}
	return logger
}

// HandleIntegrate handles POST /integrate.
//
// Description:
//
//	Runs one integration job. The request carries the integrand expression,
//	bounds, and optional weight/tolerance fields; the response carries the
//	estimate, error bound, and termination status. Non-converged
//	terminations are still 200s: the status field is authoritative and the
//	value is the engine's best estimate.
//
// Responses:
//
//	200 - Integration ran (check status for convergence).
//	400 - Malformed body, bad expression, bad bounds, or rejected options.
func (h *Handlers) HandleIntegrate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := requestLogger(c, requestID, "HandleIntegrate")

	var req IntegrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Code:    "invalid_request",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.svc.Integrate(c.Request.Context(), &req)
	if err != nil {
		statusCode, errCode := statusForError(err)
		logger.Warn("integration rejected", "error", err, "code", errCode)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}
	resp.RequestID = requestID

	logger.Info("integration served",
		"status", resp.Status,
		"evaluations", resp.Evaluations,
		"elapsed_ms", resp.ElapsedMS,
	)
	c.JSON(http.StatusOK, resp)
}

// HandleBatch handles POST /integrate/batch.
//
// Jobs run in parallel and fail independently: a rejected job occupies its
// result slot with an error while the others still run. The whole request
// fails only when the batch itself is malformed or too large.
func (h *Handlers) HandleBatch(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := requestLogger(c, requestID, "HandleBatch")

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Code:    "invalid_request",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.svc.IntegrateBatch(c.Request.Context(), &req)
	if err != nil {
		statusCode, errCode := statusForError(err)
		logger.Warn("batch rejected", "error", err, "code", errCode)
		c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
		return
	}
	resp.RequestID = requestID

	logger.Info("batch served", "jobs", resp.Count)
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /ready.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadyResponse{
		Ready:  true,
		Calls:  h.svc.Calls(),
		Uptime: h.svc.Uptime().Round(time.Second).String(),
	})
}
