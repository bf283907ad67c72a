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

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the quadrature service endpoints on the given
// router group.
//
// Endpoints:
//
//	POST /integrate        - Run one integration job
//	POST /integrate/batch  - Run independent jobs in parallel
//	GET  /health           - Liveness probe
//	GET  /ready            - Readiness probe with service counters
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	integrate := rg.Group("/integrate")
	{
		integrate.POST("", handlers.HandleIntegrate)
		integrate.POST("/batch", handlers.HandleBatch)
	}

	rg.GET("/health", handlers.HandleHealth)
	rg.GET("/ready", handlers.HandleReady)
}
