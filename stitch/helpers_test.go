//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package stitch

import (
	"fmt"
	"testing"

	"github.com/markkurossi/stitch/lut"
	"github.com/markkurossi/stitch/netlist"
	"github.com/stretchr/testify/require"
)

const testPrefix = "GTP_LUT"

// addLUT adds a LUT cell driving the output out.
func addLUT(m *netlist.Module, name string, init uint64, out netlist.Bit,
	inputs ...netlist.Bit) *netlist.Cell {

	size := len(inputs)
	c := m.AddCell(name, fmt.Sprintf("%s%d", testPrefix, size))
	for i, in := range inputs {
		c.SetPort(lut.InputName(i), in)
		c.PortDirections[lut.InputName(i)] = netlist.Input
	}
	c.SetPort(PortZ, out)
	c.PortDirections[PortZ] = netlist.Output
	c.SetParam("INIT", netlist.NewConst(init, 1<<size))
	return c
}

// newLUT adds a LUT cell with a new output bit.
func newLUT(m *netlist.Module, name string, init uint64,
	inputs ...netlist.Bit) netlist.Bit {

	out := m.NewBit()
	addLUT(m, name, init, out, inputs...)
	return out
}

// tableOf computes the truth table of the function f over size
// inputs.
func tableOf(size int, f func(addr int) bool) uint64 {
	var result uint64
	for addr := 0; addr < 1<<size; addr++ {
		if f(addr) {
			result |= 1 << addr
		}
	}
	return result
}

func collect(t *testing.T, m *netlist.Module) []*lut.Node {
	nodes, err := lut.Collect(m, netlist.NewSigMap(m), testPrefix, nil)
	require.NoError(t, err)
	return nodes
}

func nodeIndex(t *testing.T, nodes []*lut.Node, name string) int {
	for idx, n := range nodes {
		if n.Cell == name {
			return idx
		}
	}
	t.Fatalf("node %s not found", name)
	return -1
}
