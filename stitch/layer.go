//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package stitch

import (
	"sort"

	"github.com/markkurossi/stitch/lut"
	"github.com/sirupsen/logrus"
)

// Layering holds the dependency levels of the LUT nodes.
type Layering struct {
	// Levels maps node indices to their dependency levels. Nodes in
	// or behind combinational loops do not have a level.
	Levels map[int]int
	// Buckets lists the node indices of each level in ascending
	// order.
	Buckets [][]int
	// Unleveled lists the node indices without a level.
	Unleveled []int
	// Edges counts the LUT to LUT dependency edges.
	Edges int
}

// Level returns the level of the node.
func (l *Layering) Level(node int) (int, bool) {
	level, ok := l.Levels[node]
	return level, ok
}

// Layer assigns dependency levels to the nodes. Node A precedes node
// B if A's output is read by B. The fanout resolves the cells reading
// a signal; consumers that are not in nodes are ignored.
func Layer(nodes []*lut.Node, fanout lut.Fanout,
	log logrus.FieldLogger) *Layering {

	byCell := make(map[string]int, len(nodes))
	for idx, n := range nodes {
		byCell[n.Cell] = idx
	}

	succ := make([][]int, len(nodes))
	pending := make([]int, len(nodes))
	var edges int

	for idx, n := range nodes {
		if n.Output.IsConst() {
			continue
		}
		seen := make(map[int]bool)
		for _, name := range fanout.Consumers(n.Output) {
			to, ok := byCell[name]
			if !ok || seen[to] {
				continue
			}
			seen[to] = true
			succ[idx] = append(succ[idx], to)
			pending[to]++
			edges++
		}
	}

	levels := make([]int, len(nodes))
	queue := make([]int, 0, len(nodes))
	for idx := range nodes {
		if pending[idx] == 0 {
			queue = append(queue, idx)
		}
	}

	result := &Layering{
		Levels: make(map[int]int, len(nodes)),
		Edges:  edges,
	}

	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		level := levels[idx]
		result.Levels[idx] = level

		for len(result.Buckets) <= level {
			result.Buckets = append(result.Buckets, nil)
		}
		result.Buckets[level] = append(result.Buckets[level], idx)

		for _, to := range succ[idx] {
			if level+1 > levels[to] {
				levels[to] = level + 1
			}
			pending[to]--
			if pending[to] == 0 {
				queue = append(queue, to)
			}
		}
	}
	for _, bucket := range result.Buckets {
		sort.Ints(bucket)
	}

	if len(queue) != len(nodes) {
		for idx := range nodes {
			if _, ok := result.Levels[idx]; !ok {
				result.Unleveled = append(result.Unleveled, idx)
			}
		}
		if log != nil {
			log.WithFields(logrus.Fields{
				"processed": len(queue),
				"total":     len(nodes),
				"unleveled": len(result.Unleveled),
			}).Warn("combinational loop detected: skipping unleveled LUTs in layered search")
		}
	}
	return result
}
