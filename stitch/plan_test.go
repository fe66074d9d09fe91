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
	"github.com/stretchr/testify/require"
)

type recordingHost struct {
	*netlist.Module
	ops []string
}

func (h *recordingHost) Remove(name string) bool {
	h.ops = append(h.ops, "remove "+name)
	return h.Module.Remove(name)
}

func (h *recordingHost) AddCell(name, typ string) *netlist.Cell {
	h.ops = append(h.ops, "add "+name)
	return h.Module.AddCell(name, typ)
}

func TestPlannerDiscards(t *testing.T) {
	nodes := []*lut.Node{
		node("a", 2, 0b0110, 10, 11),
		node("b", 2, 0b1000, 10, 12),
		node("c", 2, 0b1110, 11, 12),
	}
	union := []lut.Signal{10, 11, 12}

	q := new(Queue)
	for _, c := range []*Candidate{
		{A: 1, B: 2, Score: 50},
		{A: 0, B: 1, Score: 200},
		{A: 0, B: 2, Score: 100},
	} {
		c.Template = SharedInputs
		c.Union = union
		c.Select = lut.One
		q.Push(c)
	}

	p := NewPlanner(nodes, netlist.NewModule("top"))
	plans, err := p.Plan(q)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, 2, p.Discarded)
	require.Equal(t, 1, p.Stats[SharedInputs])

	plan := plans[0]
	require.Equal(t, "a_b_merged", plan.Name)
	require.Equal(t, [2]string{"a", "b"}, plan.Retire)
	require.True(t, nodes[0].Consumed)
	require.True(t, nodes[1].Consumed)
	require.False(t, nodes[2].Consumed)
}

func TestPlannerUniqueNames(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 3).Bits
	newLUT(m, "a", 0x6, in[0], in[1])
	newLUT(m, "b", 0x8, in[1], in[2])
	m.AddCell("a_b_merged", "GTP_DFF")

	nodes := collect(t, m)
	s := NewSearcher(nodes)
	plans, err := NewPlanner(nodes, m).Plan(s.Global())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, "a_b_merged_1", plans[0].Name)
}

func TestPlannerRelease(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 3).Bits
	newLUT(m, "a", 0x6, in[0], in[1])
	newLUT(m, "b", 0x8, in[1], in[2])

	nodes := collect(t, m)
	planner := NewPlanner(nodes, m)
	plans, err := planner.Plan(NewSearcher(nodes).Global())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, "a_b_merged", plans[0].Name)
	require.Equal(t, "a_b_merged_1", m.Uniquify("a_b_merged"))
	m.Release("a_b_merged_1")

	// An abandoned run leaves no names behind.
	planner.Release(plans)
	nodes = collect(t, m)
	plans, err = NewPlanner(nodes, m).Plan(NewSearcher(nodes).Global())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, "a_b_merged", plans[0].Name)
}

func commitModule(t *testing.T) (*netlist.Module, []*Plan) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 4).Bits
	newLUT(m, "a", 0x6, in[0], in[1])
	newLUT(m, "b", 0x8, in[0], in[1])
	newLUT(m, "c", 0x1, in[2])
	newLUT(m, "d", 0x2, in[3])

	nodes := collect(t, m)
	s := NewSearcher(nodes)
	plans, err := NewPlanner(nodes, m).Plan(s.Global())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	return m, plans
}

func TestCommitOrder(t *testing.T) {
	m, plans := commitModule(t)
	host := &recordingHost{
		Module: m,
	}
	require.NoError(t, Commit(host, plans, "GTP_LUT6D"))
	require.Equal(t, []string{
		"remove a", "remove b", "remove c", "remove d",
		"add a_b_merged", "add c_d_merged",
	}, host.ops)

	require.Equal(t, 2, m.NumCells())
	for _, plan := range plans {
		cell := m.Cell(plan.Name)
		require.NotNil(t, cell)
		require.Equal(t, "GTP_LUT6D", cell.Type)

		init, ok := cell.Param("INIT")
		require.True(t, ok)
		require.Equal(t, 64, init.Width())
		require.Equal(t, plan.Table.Bits, init.Uint64())

		for i, sig := range plan.Inputs {
			bits, ok := cell.Port(lut.InputName(i))
			require.True(t, ok)
			require.Equal(t, []netlist.Bit{sig}, bits)
			require.True(t, cell.IsInput(lut.InputName(i)))
		}
		z, _ := cell.Port(PortZ)
		require.Equal(t, []netlist.Bit{plan.Z}, z)
		z5, _ := cell.Port(PortZ5)
		require.Equal(t, []netlist.Bit{plan.Z5}, z5)
		require.True(t, cell.IsOutput(PortZ))
		require.True(t, cell.IsOutput(PortZ5))
	}
}

func TestCommitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(plans []*Plan)
	}{
		{
			name: "retired twice",
			mutate: func(plans []*Plan) {
				plans[1].Retire[0] = plans[0].Retire[1]
			},
		},
		{
			name: "missing cell",
			mutate: func(plans []*Plan) {
				plans[1].Retire[1] = "missing"
			},
		},
		{
			name: "name in use",
			mutate: func(plans []*Plan) {
				plans[1].Name = plans[0].Retire[0]
			},
		},
	}
	for _, test := range tests {
		m, plans := commitModule(t)
		test.mutate(plans)
		host := &recordingHost{
			Module: m,
		}
		require.Error(t, Commit(host, plans, "GTP_LUT6D"), test.name)
		require.Empty(t, host.ops, test.name)
		require.Equal(t, 4, m.NumCells(), test.name)
	}
}
