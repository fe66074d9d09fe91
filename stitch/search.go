//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package stitch

import (
	"time"

	"github.com/markkurossi/stitch/lut"
)

// Searcher finds fusion candidates among the nodes.
type Searcher struct {
	nodes  []*lut.Node
	inputs [][]lut.Signal
	queue  *Queue
	// Rejected counts absorption proofs that only hold with the
	// select input at 1. They cannot be mapped because Z5 reads the
	// I5=0 half of the table.
	Rejected int
	Stats    [Absorb + 1]int
	Elapsed  [Absorb + 1]time.Duration
}

// NewSearcher creates a searcher for the nodes.
func NewSearcher(nodes []*lut.Node) *Searcher {
	s := &Searcher{
		nodes:  nodes,
		inputs: make([][]lut.Signal, len(nodes)),
		queue:  new(Queue),
	}
	for idx, n := range nodes {
		s.inputs[idx] = n.InputSet()
	}
	return s
}

// Global tests every pair of nodes.
func (s *Searcher) Global() *Queue {
	for i := 0; i < len(s.nodes); i++ {
		for j := i + 1; j < len(s.nodes); j++ {
			s.Pair(i, j)
		}
	}
	return s.queue
}

// Layered tests the pairs of nodes on the same dependency level and
// on adjacent levels. Unleveled nodes are skipped.
func (s *Searcher) Layered(layering *Layering) *Queue {
	for k, bucket := range layering.Buckets {
		for x := 0; x < len(bucket); x++ {
			for y := x + 1; y < len(bucket); y++ {
				s.Pair(bucket[x], bucket[y])
			}
		}
		if k+1 >= len(layering.Buckets) {
			continue
		}
		for _, i := range bucket {
			for _, j := range layering.Buckets[k+1] {
				if i < j {
					s.Pair(i, j)
				} else {
					s.Pair(j, i)
				}
			}
		}
	}
	return s.queue
}

// Pair tests the nodes i and j against both templates and queues the
// applicable candidates.
func (s *Searcher) Pair(i, j int) {
	if i == j || s.nodes[i].Consumed || s.nodes[j].Consumed {
		return
	}
	start := time.Now()
	if c := s.shared(i, j); c != nil {
		s.push(c)
	}
	if s.nodes[i].Size != lut.MaxSize && s.nodes[j].Size != lut.MaxSize {
		s.Elapsed[SharedInputs] += time.Since(start)
		return
	}
	now := time.Now()
	s.Elapsed[SharedInputs] += now.Sub(start)
	start = now

	if s.nodes[i].Size == lut.MaxSize {
		if c := s.absorb(i, j); c != nil {
			s.push(c)
		}
	}
	if s.nodes[j].Size == lut.MaxSize {
		if c := s.absorb(j, i); c != nil {
			s.push(c)
		}
	}
	s.Elapsed[Absorb] += time.Since(start)
}

func (s *Searcher) push(c *Candidate) {
	s.Stats[c.Template]++
	s.queue.Push(c)
}

func (s *Searcher) shared(i, j int) *Candidate {
	union := lut.Union(s.inputs[i], s.inputs[j])
	if len(union) > 5 {
		return nil
	}
	shared := len(s.inputs[i]) + len(s.inputs[j]) - len(union)
	return &Candidate{
		A:        i,
		B:        j,
		Template: SharedInputs,
		Score:    SharedScore(shared, len(union)),
		Union:    union,
		Select:   lut.One,
	}
}

func (s *Searcher) absorb(big, small int) *Candidate {
	if s.nodes[small].Size >= lut.MaxSize {
		return nil
	}
	proof, ok := Absorbs(s.nodes[big], s.nodes[small])
	if !ok {
		return nil
	}
	if !proof.SelZero {
		s.Rejected++
		return nil
	}
	return &Candidate{
		A:        big,
		B:        small,
		Template: Absorb,
		Score:    AbsorbScore(s.nodes[small].Size),
		Union:    s.inputs[big],
		Select:   proof.Select,
	}
}
