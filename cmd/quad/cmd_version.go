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
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var versionJSON bool // Output as JSON

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the quad version",
	Run:   runVersionCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false,
		"Output as JSON for scripting")

	// Add to root
	rootCmd.AddCommand(versionCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runVersionCommand(cmd *cobra.Command, args []string) {
	if versionJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.Encode(map[string]string{
			"version": CLIVersion,
			"go":      runtime.Version(),
		})
		return
	}

	fmt.Printf("quad %s (%s)\n", CLIVersion, runtime.Version())
}
