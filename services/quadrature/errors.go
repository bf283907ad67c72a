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
	"errors"
	"net/http"
)

// Sentinel errors for the quadrature service.
var (
	// ErrInvalidExpression indicates an integrand or limit expression that
	// failed validation or compilation.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrInvalidBounds indicates a bound string that could not be parsed
	// as a number or an infinity spelling.
	ErrInvalidBounds = errors.New("invalid bounds")

	// ErrInvalidOptions indicates a request whose weight, tolerance, break
	// point, or dimension configuration the engine rejected.
	ErrInvalidOptions = errors.New("invalid integration options")

	// ErrEmptyBatch indicates a batch request with no jobs.
	ErrEmptyBatch = errors.New("batch contains no jobs")

	// ErrBatchTooLarge indicates a batch request exceeding the configured
	// job limit.
	ErrBatchTooLarge = errors.New("batch exceeds job limit")
)

// statusForError maps a service error to an HTTP status code and a
// machine-readable error code for ErrorResponse.Code.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidExpression):
		return http.StatusBadRequest, "invalid_expression"
	case errors.Is(err, ErrInvalidBounds):
		return http.StatusBadRequest, "invalid_bounds"
	case errors.Is(err, ErrInvalidOptions):
		return http.StatusBadRequest, "invalid_options"
	case errors.Is(err, ErrEmptyBatch):
		return http.StatusBadRequest, "empty_batch"
	case errors.Is(err, ErrBatchTooLarge):
		return http.StatusBadRequest, "batch_too_large"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
