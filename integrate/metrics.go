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
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for integration operations.
var (
	tracer = otel.Tracer("scipy.integrate")
	meter  = otel.Meter("scipy.integrate")
)

// Metrics for integration calls.
var (
	quadLatency      metric.Float64Histogram
	quadTotal        metric.Int64Counter
	quadEvaluations  metric.Int64Histogram
	quadSubdivisions metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		quadLatency, err = meter.Float64Histogram(
			"quad_duration_seconds",
			metric.WithDescription("Duration of quadrature calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		quadTotal, err = meter.Int64Counter(
			"quad_total",
			metric.WithDescription("Total number of quadrature calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		quadEvaluations, err = meter.Int64Histogram(
			"quad_evaluations",
			metric.WithDescription("Integrand evaluations per call"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		quadSubdivisions, err = meter.Int64Histogram(
			"quad_subdivisions",
			metric.WithDescription("Final subinterval count per call"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordQuadMetrics records metrics for one integration call.
func recordQuadMetrics(ctx context.Context, duration time.Duration, weight Weight, res Result) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("weight", weight.String()),
		attribute.String("status", res.Status.String()),
	)

	quadLatency.Record(ctx, duration.Seconds(), attrs)
	quadTotal.Add(ctx, 1, attrs)
	quadEvaluations.Record(ctx, int64(res.Evaluations), attrs)
	quadSubdivisions.Record(ctx, int64(res.Subdivisions), attrs)
}

// startQuadSpan creates a span for an integration call.
func startQuadSpan(ctx context.Context, a, b float64, weight Weight) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Integrate.Quad",
		trace.WithAttributes(
			attribute.Float64("integrate.lower_bound", a),
			attribute.Float64("integrate.upper_bound", b),
			attribute.String("integrate.weight", weight.String()),
		),
	)
}

// setQuadSpanResult sets the result attributes on an integration span.
func setQuadSpanResult(span trace.Span, res Result) {
	span.SetAttributes(
		attribute.String("integrate.status", res.Status.String()),
		attribute.Float64("integrate.abs_error", res.AbsError),
		attribute.Int("integrate.evaluations", res.Evaluations),
		attribute.Int("integrate.subdivisions", res.Subdivisions),
	)
}

// startNestedSpan creates a span for a multi-dimensional integration call.
func startNestedSpan(ctx context.Context, op string, dims int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Integrate."+op,
		trace.WithAttributes(
			attribute.Int("integrate.dimensions", dims),
		),
	)
}
