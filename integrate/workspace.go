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

import "container/heap"

// =============================================================================
// Call-local Workspace
// =============================================================================

// segment is one live subinterval owned by the adaptive driver.
type segment struct {
	lo, hi   float64
	estimate float64
	errEst   float64
	resasc   float64

	// depth is the bisection depth below the initial subdivision; weighted
	// kernels key their per-level moment caches on it.
	depth int

	// seq is the insertion sequence number, the deterministic tie-break for
	// equal error estimates.
	seq uint64
}

// segmentHeap is a max-heap on errEst with insertion-order tie-break.
type segmentHeap []*segment

func (h segmentHeap) Len() int { return len(h) }

func (h segmentHeap) Less(i, j int) bool {
	if h[i].errEst != h[j].errEst {
		return h[i].errEst > h[j].errEst
	}
	return h[i].seq < h[j].seq
}

func (h segmentHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *segmentHeap) Push(x any) { *h = append(*h, x.(*segment)) }

func (h *segmentHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}

// workspace is the global accumulator of a single call: totals plus the
// priority structure over live segments. It is mutated only by the driver,
// strictly sequentially.
type workspace struct {
	segs    segmentHeap
	value   float64
	errSum  float64
	nextSeq uint64
}

func newWorkspace(capacity int) *workspace {
	return &workspace{segs: make(segmentHeap, 0, capacity)}
}

// push inserts a segment and folds it into the running totals.
func (w *workspace) push(s *segment) {
	s.seq = w.nextSeq
	w.nextSeq++
	w.value += s.estimate
	w.errSum += s.errEst
	heap.Push(&w.segs, s)
}

// popWorst removes and returns the segment with the largest error estimate,
// subtracting its contribution from the totals. The caller must either push
// replacement segments or account for the removal: pop + push of both
// children is the atomic parent-replacement step.
func (w *workspace) popWorst() *segment {
	s := heap.Pop(&w.segs).(*segment)
	w.value -= s.estimate
	w.errSum -= s.errEst
	if w.errSum < 0 {
		w.errSum = 0
	}
	return s
}

// size returns the number of live segments.
func (w *workspace) size() int {
	return len(w.segs)
}

// resum recomputes the value total directly from the live segments. The
// incremental total accumulates cancellation noise over many replacements;
// termination paths use the exact resummation.
func (w *workspace) resum() float64 {
	var total float64
	for _, s := range w.segs {
		total += s.estimate
	}
	return total
}
