//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package lut

import (
	"github.com/markkurossi/stitch/netlist"
)

// Fanout resolves the cells reading a signal.
type Fanout interface {
	Consumers(sig Signal) []string
}

// NodeFanout resolves consumers from the node inputs alone.
type NodeFanout map[Signal][]string

// NewNodeFanout creates a fanout map of the nodes.
func NewNodeFanout(nodes []*Node) NodeFanout {
	result := make(NodeFanout)
	for _, n := range nodes {
		for _, sig := range n.InputSet() {
			if sig.IsConst() {
				continue
			}
			result[sig] = append(result[sig], n.Cell)
		}
	}
	return result
}

// Consumers implements Fanout.Consumers.
func (f NodeFanout) Consumers(sig Signal) []string {
	return f[sig]
}

// IndexFanout resolves consumers through a host netlist index.
type IndexFanout struct {
	Index *netlist.Index
}

// Consumers implements Fanout.Consumers.
func (f IndexFanout) Consumers(sig Signal) []string {
	cells := f.Index.Consumers(sig)
	result := make([]string, 0, len(cells))
	for _, c := range cells {
		result = append(result, c.Name)
	}
	return result
}
