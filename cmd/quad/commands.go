// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Daniel-B-Smith/scipy/pkg/logging"
)

// CLIVersion is the version reported by the version command.
const CLIVersion = "1.0.0"

// --- Global Command Variables ---
var (
	logLevel string // Logging verbosity for all commands

	rootCmd = &cobra.Command{
		Use:   "quad",
		Short: "Evaluate definite integrals from the command line",
		Long: `quad is an adaptive numerical integration tool.

It evaluates definite integrals of expression-defined integrands over
finite, semi-infinite, and doubly-infinite intervals, with optional
oscillatory, algebraic-singular, and Cauchy principal-value weights,
plus nested 2-D and 3-D integration over expression-defined regions.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := logging.New(logging.Config{
				Level:   logging.ParseLevel(logLevel),
				Service: "quad",
			})
			slog.SetDefault(logger.Slog())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Logging verbosity: debug, info, warn, or error")
}
