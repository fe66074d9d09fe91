//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package stitch

import (
	"container/heap"
	"fmt"

	"github.com/markkurossi/stitch/lut"
)

// Template specifies how two LUTs are fused.
type Template int

// Fusion templates.
const (
	// SharedInputs fuses two LUTs whose combined inputs fit into the
	// five shared inputs. The sixth input is tied to constant 1.
	SharedInputs Template = iota
	// Absorb fuses a six-input LUT with a smaller LUT that equals the
	// six-input function restricted by the select input.
	Absorb
)

func (t Template) String() string {
	switch t {
	case SharedInputs:
		return "shared"
	case Absorb:
		return "absorb"
	default:
		return fmt.Sprintf("{Template %d}", int(t))
	}
}

// Scores.
const (
	sharedWeight = 100
	absorbBase   = 10000
	absorbWeight = 100
)

// Candidate is a proposed LUT pairing. A and B are indices into the
// node slice. For Absorb candidates, A is the six-input LUT.
type Candidate struct {
	A, B     int
	Template Template
	Score    int
	Union    []lut.Signal
	Select   lut.Signal
	seq      int
}

func (c *Candidate) String() string {
	return fmt.Sprintf("%s(%d,%d) score=%d", c.Template, c.A, c.B, c.Score)
}

// SharedScore computes the SharedInputs score.
func SharedScore(shared, union int) int {
	return shared*sharedWeight - union
}

// AbsorbScore computes the Absorb score.
func AbsorbScore(smallSize int) int {
	return absorbBase + smallSize*absorbWeight
}

// Queue orders candidates by descending score. Candidates with equal
// scores come out in insertion order.
type Queue struct {
	h   candidateHeap
	seq int
}

// Len returns the number of queued candidates.
func (q *Queue) Len() int {
	return len(q.h)
}

// Push adds the candidate into the queue.
func (q *Queue) Push(c *Candidate) {
	c.seq = q.seq
	q.seq++
	heap.Push(&q.h, c)
}

// Pop removes and returns the highest scoring candidate. The function
// returns nil if the queue is empty.
func (q *Queue) Pop() *Candidate {
	if len(q.h) == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*Candidate)
}

type candidateHeap []*Candidate

func (h candidateHeap) Len() int {
	return len(h)
}

func (h candidateHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score > h[j].Score
	}
	return h[i].seq < h[j].seq
}

func (h candidateHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(*Candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return c
}
