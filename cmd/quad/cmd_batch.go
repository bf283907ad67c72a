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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Daniel-B-Smith/scipy/services/quadrature"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	batchParallel int  // Concurrent jobs
	batchTimeout  int  // Per-job timeout in seconds
	batchJSON     bool // Output as JSON
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var batchCmd = &cobra.Command{
	Use:   "batch [jobs.yaml]",
	Short: "Run a file of integration jobs in parallel",
	Long: `Run independent integration jobs from a YAML file.

Jobs are independent: they run concurrently up to --parallel, and a
rejected job does not stop the others. Results are printed in file
order.

Job file format:

  jobs:
    - name: gaussian
      expression: exp(-x*x)
      lower: "-inf"
      upper: "inf"
    - name: oscillatory-tail
      expression: exp(-4*x)
      lower: "0"
      upper: inf
      weight: sin
      omega: 3
      abs_tol: 1e-9
    - name: corner
      expression: x + y
      lower: "1"
      upper: "2"
      y:
        lower: x
        upper: 2*x

Examples:
  quad batch jobs.yaml
  quad batch jobs.yaml --parallel 8
  quad batch jobs.yaml --json > results.json

Exit Codes:
  0 = All jobs converged
  1 = At least one job was rejected or did not converge
  2 = Job file could not be read or parsed`,
	Args: cobra.ExactArgs(1),
	Run:  runBatchCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	batchCmd.Flags().IntVar(&batchParallel, "parallel", 4,
		"Number of jobs to run concurrently")
	batchCmd.Flags().IntVar(&batchTimeout, "timeout", 60,
		"Per-job timeout in seconds")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false,
		"Output as JSON for scripting")

	// Add to root
	rootCmd.AddCommand(batchCmd)
}

// =============================================================================
// JOB FILE FORMAT
// =============================================================================

// batchFile is the YAML job file layout.
type batchFile struct {
	Jobs []batchJob `yaml:"jobs"`
}

// batchJob is one integration job. Fields mirror the service request;
// bounds are strings so "inf"/"-inf" parse the same way everywhere.
type batchJob struct {
	Name            string          `yaml:"name"`
	Expression      string          `yaml:"expression"`
	Lower           string          `yaml:"lower"`
	Upper           string          `yaml:"upper"`
	Weight          string          `yaml:"weight"`
	Omega           float64         `yaml:"omega"`
	Alpha           float64         `yaml:"alpha"`
	Beta            float64         `yaml:"beta"`
	LogLeft         bool            `yaml:"log_left"`
	LogRight        bool            `yaml:"log_right"`
	Pole            float64         `yaml:"pole"`
	BreakPoints     []float64       `yaml:"break_points"`
	AbsTol          float64         `yaml:"abs_tol"`
	RelTol          float64         `yaml:"rel_tol"`
	MaxSubdivisions int             `yaml:"max_subdivisions"`
	Y               *batchInnerSpec `yaml:"y"`
	Z               *batchInnerSpec `yaml:"z"`
}

// batchInnerSpec gives expression-valued inner bounds for 2-D/3-D jobs.
type batchInnerSpec struct {
	Lower string `yaml:"lower"`
	Upper string `yaml:"upper"`
}

// toRequest converts the YAML job into a service request.
func (j *batchJob) toRequest() *quadrature.IntegrateRequest {
	req := &quadrature.IntegrateRequest{
		Expression:      j.Expression,
		Lower:           j.Lower,
		Upper:           j.Upper,
		Weight:          j.Weight,
		Omega:           j.Omega,
		Alpha:           j.Alpha,
		Beta:            j.Beta,
		LogLeft:         j.LogLeft,
		LogRight:        j.LogRight,
		Pole:            j.Pole,
		BreakPoints:     j.BreakPoints,
		AbsTol:          j.AbsTol,
		RelTol:          j.RelTol,
		MaxSubdivisions: j.MaxSubdivisions,
	}
	if j.Y != nil {
		req.Y = &quadrature.InnerRange{Lower: j.Y.Lower, Upper: j.Y.Upper}
	}
	if j.Z != nil {
		req.Z = &quadrature.InnerRange{Lower: j.Z.Lower, Upper: j.Z.Upper}
	}
	return req
}

// batchJobResult pairs a job name with its outcome. Exactly one of Result
// and Error is set.
type batchJobResult struct {
	Name   string                        `json:"name"`
	Result *quadrature.IntegrateResponse `json:"result,omitempty"`
	Error  string                        `json:"error,omitempty"`
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runBatchCommand loads the job file and runs its jobs through a bounded
// worker group.
func runBatchCommand(cmd *cobra.Command, args []string) {
	jobs, err := loadBatchFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	svc := quadrature.NewService(quadrature.ServiceConfig{
		CallTimeout: time.Duration(batchTimeout) * time.Second,
	})

	start := time.Now()
	results := runBatchJobs(context.Background(), svc, jobs)
	elapsed := time.Since(start)

	if batchJSON {
		outputBatchJSON(results)
	} else {
		outputBatchText(results, elapsed)
	}

	for _, r := range results {
		if r.Error != "" || r.Result == nil || !r.Result.Converged {
			os.Exit(1)
		}
	}
}

// loadBatchFile reads and parses the YAML job file.
func loadBatchFile(path string) ([]batchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var file batchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	if len(file.Jobs) == 0 {
		return nil, fmt.Errorf("job file %q contains no jobs", path)
	}

	// Unnamed jobs get positional names for the report.
	for i := range file.Jobs {
		if file.Jobs[i].Name == "" {
			file.Jobs[i].Name = fmt.Sprintf("job-%d", i+1)
		}
	}
	return file.Jobs, nil
}

// runBatchJobs runs the jobs concurrently, bounded by --parallel, and
// returns results in file order.
func runBatchJobs(ctx context.Context, svc *quadrature.Service, jobs []batchJob) []batchJobResult {
	results := make([]batchJobResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(batchParallel)
	for i := range jobs {
		g.Go(func() error {
			resp, err := svc.Integrate(ctx, jobs[i].toRequest())
			if err != nil {
				results[i] = batchJobResult{Name: jobs[i].Name, Error: err.Error()}
				return nil
			}
			results[i] = batchJobResult{Name: jobs[i].Name, Result: resp}
			return nil
		})
	}
	// Job failures are reported per-slot, so Wait never returns one.
	_ = g.Wait()

	return results
}

// =============================================================================
// OUTPUT FUNCTIONS
// =============================================================================

func outputBatchJSON(results []batchJobResult) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		os.Exit(2)
	}
}

func outputBatchText(results []batchJobResult, elapsed time.Duration) {
	converged, failed := 0, 0

	for _, r := range results {
		switch {
		case r.Error != "":
			failed++
			fmt.Printf("!!  %-24s %s\n", r.Name, r.Error)
		case r.Result.Converged:
			converged++
			fmt.Printf("ok  %-24s %.12g  (abs error %.3g, %d evals)\n",
				r.Name, r.Result.Value, r.Result.AbsError, r.Result.Evaluations)
		default:
			failed++
			fmt.Printf("--  %-24s %.12g  (status %s)\n",
				r.Name, r.Result.Value, r.Result.Status)
		}
	}

	fmt.Printf("\n%d jobs: %d converged, %d failed (%.2fs)\n",
		len(results), converged, failed, elapsed.Seconds())
}
