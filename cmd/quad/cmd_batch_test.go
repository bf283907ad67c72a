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
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Daniel-B-Smith/scipy/services/quadrature"
)

// =============================================================================
// COMMAND FLAG TESTS
// =============================================================================

func TestBatchCommandFlags(t *testing.T) {
	flags := []string{"parallel", "timeout", "json"}

	for _, flagName := range flags {
		flag := batchCmd.Flags().Lookup(flagName)
		if flag == nil {
			t.Errorf("Flag %q not registered", flagName)
		}
	}
}

func TestBatchCommand_Metadata(t *testing.T) {
	if batchCmd.Use != "batch [jobs.yaml]" {
		t.Errorf("batchCmd.Use = %q, want %q", batchCmd.Use, "batch [jobs.yaml]")
	}
	if batchCmd.Run == nil {
		t.Error("batchCmd.Run is nil")
	}
}

// =============================================================================
// JOB FILE TESTS
// =============================================================================

func writeJobFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write job file: %v", err)
	}
	return path
}

func TestLoadBatchFile(t *testing.T) {
	path := writeJobFile(t, `
jobs:
  - name: gaussian
    expression: exp(-x*x)
    lower: "-inf"
    upper: "inf"
    abs_tol: 1e-9
  - expression: exp(-4*x)
    lower: "0"
    upper: inf
    weight: sin
    omega: 3
  - name: corner
    expression: x + y
    lower: "1"
    upper: "2"
    y:
      lower: x
      upper: 2*x
`)

	jobs, err := loadBatchFile(path)
	if err != nil {
		t.Fatalf("loadBatchFile failed: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs, want 3", len(jobs))
	}

	if jobs[0].Name != "gaussian" {
		t.Errorf("jobs[0].Name = %q, want %q", jobs[0].Name, "gaussian")
	}
	if jobs[0].AbsTol != 1e-9 {
		t.Errorf("jobs[0].AbsTol = %v, want 1e-9", jobs[0].AbsTol)
	}

	// Unnamed jobs get positional names.
	if jobs[1].Name != "job-2" {
		t.Errorf("jobs[1].Name = %q, want %q", jobs[1].Name, "job-2")
	}
	if jobs[1].Weight != "sin" || jobs[1].Omega != 3 {
		t.Errorf("jobs[1] weight = %q omega = %v, want sin / 3", jobs[1].Weight, jobs[1].Omega)
	}

	if jobs[2].Y == nil || jobs[2].Y.Lower != "x" || jobs[2].Y.Upper != "2*x" {
		t.Errorf("jobs[2].Y = %+v, want x..2*x", jobs[2].Y)
	}
}

func TestLoadBatchFile_Missing(t *testing.T) {
	if _, err := loadBatchFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBatchFile_Malformed(t *testing.T) {
	path := writeJobFile(t, "jobs: [unclosed")
	if _, err := loadBatchFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadBatchFile_Empty(t *testing.T) {
	path := writeJobFile(t, "jobs: []")
	if _, err := loadBatchFile(path); err == nil {
		t.Error("expected error for empty job list")
	}
}

func TestBatchJob_ToRequest(t *testing.T) {
	job := batchJob{
		Name:        "pv",
		Expression:  "1",
		Lower:       "-1",
		Upper:       "1",
		Weight:      "cauchy",
		Pole:        0.25,
		AbsTol:      1e-10,
		BreakPoints: []float64{0.5},
		Y:           &batchInnerSpec{Lower: "0", Upper: "x"},
		Z:           &batchInnerSpec{Lower: "0", Upper: "x + y"},
	}

	req := job.toRequest()

	if req.Expression != "1" || req.Lower != "-1" || req.Upper != "1" {
		t.Errorf("core fields not mapped: %+v", req)
	}
	if req.Weight != "cauchy" || req.Pole != 0.25 {
		t.Errorf("weight fields not mapped: weight=%q pole=%v", req.Weight, req.Pole)
	}
	if req.AbsTol != 1e-10 || len(req.BreakPoints) != 1 {
		t.Errorf("tolerance fields not mapped: %+v", req)
	}
	if req.Y == nil || req.Y.Upper != "x" {
		t.Errorf("Y not mapped: %+v", req.Y)
	}
	if req.Z == nil || req.Z.Upper != "x + y" {
		t.Errorf("Z not mapped: %+v", req.Z)
	}
}

// =============================================================================
// RUNNER TESTS
// =============================================================================

func TestRunBatchJobs(t *testing.T) {
	svc := quadrature.NewService(quadrature.DefaultServiceConfig())
	jobs := []batchJob{
		{Name: "half", Expression: "x", Lower: "0", Upper: "1"},
		{Name: "broken", Expression: "x", Lower: "nope", Upper: "1"},
		{Name: "third", Expression: "x*x", Lower: "0", Upper: "1"},
	}

	results := runBatchJobs(context.Background(), svc, jobs)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	// File order is preserved regardless of completion order.
	if results[0].Name != "half" || results[1].Name != "broken" || results[2].Name != "third" {
		t.Errorf("result order = %s, %s, %s", results[0].Name, results[1].Name, results[2].Name)
	}

	if results[0].Result == nil || math.Abs(results[0].Result.Value-0.5) > 1e-10 {
		t.Errorf("half: %+v", results[0])
	}
	if results[1].Error == "" || results[1].Result != nil {
		t.Errorf("broken should fail: %+v", results[1])
	}
	if results[2].Result == nil || math.Abs(results[2].Result.Value-1.0/3.0) > 1e-10 {
		t.Errorf("third: %+v", results[2])
	}
}
