//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package stitch

import (
	"testing"

	"github.com/markkurossi/stitch/lut"
	"github.com/markkurossi/stitch/netlist"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestLayerChain(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 3).Bits
	a := newLUT(m, "a", 0x6, in[0], in[1])
	b := newLUT(m, "b", 0x8, a, in[2])
	newLUT(m, "c", 0xE, a, b)
	newLUT(m, "d", 0x1, in[2])

	nodes := collect(t, m)
	logger, hook := test.NewNullLogger()
	l := Layer(nodes, lut.NewNodeFanout(nodes), logger)

	require.Empty(t, hook.AllEntries())
	require.Empty(t, l.Unleveled)
	require.Equal(t, 3, l.Edges)
	require.Equal(t, [][]int{{0, 3}, {1}, {2}}, l.Buckets)

	level, ok := l.Level(nodeIndex(t, nodes, "c"))
	require.True(t, ok)
	require.Equal(t, 2, level)
}

func TestLayerCycle(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 2).Bits
	oa := m.NewBit()
	ob := m.NewBit()
	oc := m.NewBit()
	addLUT(m, "a", 0x6, oa, in[0], oc)
	addLUT(m, "b", 0x1, ob, oa)
	addLUT(m, "c", 0x2, oc, ob)
	d := newLUT(m, "d", 0x8, in[0], in[1])
	newLUT(m, "e", 0x6, d, in[1])
	newLUT(m, "f", 0xE, in[0], in[1])

	nodes := collect(t, m)
	logger, hook := test.NewNullLogger()
	l := Layer(nodes, lut.NewNodeFanout(nodes), logger)

	require.Equal(t, []int{0, 1, 2}, l.Unleveled)
	require.Equal(t, [][]int{{3, 5}, {4}}, l.Buckets)
	for _, idx := range l.Unleveled {
		_, ok := l.Level(idx)
		require.False(t, ok)
	}

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	require.Equal(t, logrus.WarnLevel, entry.Level)
	require.Equal(t, 3, entry.Data["processed"])
	require.Equal(t, 6, entry.Data["total"])
	require.Equal(t, 3, entry.Data["unleveled"])

	// The acyclic nodes remain searchable.
	s := NewSearcher(nodes)
	q := s.Layered(l)
	require.Equal(t, 3, q.Len())

	c := q.Pop()
	require.Equal(t, 3, c.A)
	require.Equal(t, 5, c.B)
	require.Equal(t, 198, c.Score)

	// d drives e on the adjacent level.
	c = q.Pop()
	require.Equal(t, 3, c.A)
	require.Equal(t, 4, c.B)
	require.Equal(t, 97, c.Score)

	c = q.Pop()
	require.Equal(t, 4, c.A)
	require.Equal(t, 5, c.B)
	require.Equal(t, 97, c.Score)
}

func TestLayerDownstreamOfCycle(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 1).Bits
	oa := m.NewBit()
	ob := m.NewBit()
	addLUT(m, "a", 0x6, oa, in[0], ob)
	addLUT(m, "b", 0x1, ob, oa)
	newLUT(m, "c", 0x2, ob)

	nodes := collect(t, m)
	l := Layer(nodes, lut.NewNodeFanout(nodes), nil)
	require.Equal(t, []int{0, 1, 2}, l.Unleveled)
	require.Empty(t, l.Buckets)
}

func TestLayerIndexFanout(t *testing.T) {
	m := netlist.Random("top", 7, netlist.RandomParams{
		Inputs:  8,
		Outputs: 4,
		LUTs:    100,
		Window:  10,
	})
	nodes := collect(t, m)
	index := netlist.NewIndex(m, netlist.NewSigMap(m))
	l := Layer(nodes, lut.IndexFanout{Index: index}, nil)

	require.Empty(t, l.Unleveled)
	require.Len(t, l.Levels, len(nodes))

	var count int
	for _, bucket := range l.Buckets {
		count += len(bucket)
	}
	require.Equal(t, len(nodes), count)

	// Every consumer is on a higher level than its producer.
	byOutput := make(map[lut.Signal]int)
	for idx, n := range nodes {
		byOutput[n.Output] = idx
	}
	for idx, n := range nodes {
		level, _ := l.Level(idx)
		for _, in := range n.Inputs {
			producer, ok := byOutput[in.Sig]
			if !ok {
				continue
			}
			plevel, _ := l.Level(producer)
			require.Greater(t, level, plevel, "%s", n.Cell)
		}
	}

	// The node fanout gives the same levels.
	l2 := Layer(nodes, lut.NewNodeFanout(nodes), nil)
	require.Equal(t, l.Buckets, l2.Buckets)
	require.Equal(t, l.Edges, l2.Edges)
}
