// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command quadd starts the quadrature API server.
//
// The server evaluates definite integrals on behalf of remote callers:
//   - Expression-defined integrands ("exp(-x)*sin(x)")
//   - Finite, semi-infinite, and doubly-infinite intervals
//   - Oscillatory, algebraic-singular, and Cauchy principal-value weights
//   - Nested 2-D and 3-D integration over expression-defined regions
//
// Usage:
//
//	go run ./cmd/quadd
//	go run ./cmd/quadd -port 9090
//
// Telemetry is configured through the environment:
//
//	OTEL_TRACES_EXPORTER=stdout OTEL_METRICS_EXPORTER=none go run ./cmd/quadd
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/health
//
//	# Evaluate an integral
//	curl -X POST http://localhost:8080/v1/integrate \
//	  -H "Content-Type: application/json" \
//	  -d '{"expression": "exp(-x)", "lower": "0", "upper": "inf"}'
//
//	# Weighted integral
//	curl -X POST http://localhost:8080/v1/integrate \
//	  -H "Content-Type: application/json" \
//	  -d '{"expression": "exp(-4*x)", "lower": "0", "upper": "inf",
//	       "weight": "sin", "omega": 3}'
//
//	# Prometheus metrics
//	curl http://localhost:8080/metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Daniel-B-Smith/scipy/pkg/logging"
	"github.com/Daniel-B-Smith/scipy/pkg/telemetry"
	"github.com/Daniel-B-Smith/scipy/services/quadrature"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	// Structured JSON logging for the daemon
	logLevel := logging.LevelInfo
	if *debug {
		logLevel = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   logLevel,
		Service: "quadd",
		JSON:    true,
	})
	slog.SetDefault(logger.Slog())

	// Set Gin mode
	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize telemetry (exporters come from the environment)
	telemetryCfg := telemetry.DefaultConfig()
	telemetryCfg.ServiceName = "quadd"
	telemetryCfg.ServiceVersion = quadrature.ServiceVersion

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetryCfg)
	if err != nil {
		slog.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create service with default config
	svc := quadrature.NewService(quadrature.DefaultServiceConfig()).WithLogger(logger)
	handlers := quadrature.NewHandlers(svc)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	if *debug {
		router.Use(gin.Logger())
	}
	router.Use(otelgin.Middleware("quadd"))

	// Register routes under /v1
	v1 := router.Group("/v1")
	quadrature.RegisterRoutes(v1, handlers)

	// Prometheus metrics endpoint when the exporter is enabled
	if metricsHandler := telemetry.MetricsHandler(); metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// Print startup banner
	printBanner(*port)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down quadd server")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting quadd server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                        QUADRATURE SERVER                          ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Adaptive numerical integration over HTTP.                        ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/health                        │  ║
║  │                                                             │  ║
║  │ # Evaluate an integral                                      │  ║
║  │ curl -X POST http://localhost:%d/v1/integrate \           │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"expression": "exp(-x)",                             │  ║
║  │        "lower": "0", "upper": "inf"}'                       │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── POST /v1/integrate         Run one integration job           ║
║  ├── POST /v1/integrate/batch   Run independent jobs in parallel  ║
║  ├── GET  /v1/health, /v1/ready Probes                            ║
║  └── GET  /metrics              Prometheus metrics                ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port)
}
