//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package stitch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/markkurossi/stitch/lut"
	"github.com/markkurossi/stitch/netlist"
	"github.com/markkurossi/stitch/utils"
	"github.com/markkurossi/stitch/verify"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type nopCloser struct {
	bytes.Buffer
}

func (c *nopCloser) Close() error {
	return nil
}

func testParams(verifyMode utils.VerifyMode, threshold int) *utils.Params {
	logger, _ := test.NewNullLogger()
	params := utils.NewParams()
	params.Verify = verifyMode
	params.LayerThreshold = threshold
	params.Logger = logger
	return params
}

func TestLayered(t *testing.T) {
	tests := []struct {
		count     int
		threshold int
		want      bool
	}{
		{10, 2000, false},
		{2000, 2000, false},
		{2001, 2000, true},
		{1, 0, true},
		{100000, -1, false},
	}
	for _, test := range tests {
		require.Equal(t, test.want, Layered(test.count, test.threshold),
			"%d/%d", test.count, test.threshold)
	}
}

func TestRunSharedInputs(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 4).Bits
	oa := newLUT(m, "a", 0x96, in[0], in[1], in[2])
	ob := newLUT(m, "b", 0xE8, in[1], in[2], in[3])

	result, err := Run(m, testParams(utils.VerifyAll, 2000))
	require.NoError(t, err)
	require.False(t, result.Layered)
	require.Equal(t, 1, result.Candidates)
	require.Len(t, result.Plans, 1)

	require.Nil(t, m.Cell("a"))
	require.Nil(t, m.Cell("b"))
	require.Equal(t, 1, m.NumCells())

	cell := m.Cell("a_b_merged")
	require.NotNil(t, cell)
	require.Equal(t, "GTP_LUT6D", cell.Type)

	expected := map[string]netlist.Bit{
		"I0":   in[0],
		"I1":   in[1],
		"I2":   in[2],
		"I3":   in[3],
		"I4":   netlist.Bit0,
		"I5":   netlist.Bit1,
		PortZ5: oa,
		PortZ:  ob,
	}
	for port, bit := range expected {
		bits, ok := cell.Port(port)
		require.True(t, ok, port)
		require.Equal(t, []netlist.Bit{bit}, bits, port)
	}
}

func TestRunAbsorb(t *testing.T) {
	big, small := absorbPair(0xDEADBEEF, 0x0F0F1234, 0xDEADBEEF)

	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 6).Bits
	obig := newLUT(m, "big", big.Table.Bits,
		in[0], in[1], in[5], in[2], in[3], in[4])
	osmall := newLUT(m, "small", small.Table.Bits,
		in[4], in[3], in[2], in[1], in[0])

	result, err := Run(m, testParams(utils.VerifyAll, -1))
	require.NoError(t, err)
	require.Len(t, result.Plans, 1)

	plan := result.Plans[0]
	require.Equal(t, Absorb, plan.Template)
	require.Equal(t, "big_small_merged", plan.Name)
	require.Equal(t, [lut.MaxSize]lut.Signal{
		in[0], in[1], in[2], in[3], in[4], in[5],
	}, plan.Inputs)
	require.Equal(t, osmall, plan.Z5)
	require.Equal(t, obig, plan.Z)
	require.Equal(t, 1, m.NumCells())
}

func TestRunNoCandidates(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 6).Bits
	newLUT(m, "a", 0x96, in[0], in[1], in[2])
	newLUT(m, "b", 0xE8, in[3], in[4], in[5])

	result, err := Run(m, testParams(utils.VerifyNone, 2000))
	require.NoError(t, err)
	require.Equal(t, 0, result.Candidates)
	require.Empty(t, result.Plans)
	require.Equal(t, 2, m.NumCells())
}

func TestRunCollectError(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 3).Bits
	newLUT(m, "a", 0x6, in[0], in[1])
	newLUT(m, "b", 0x8, in[1], in[2])
	c := m.AddCell("c", "GTP_LUT2")
	c.SetPort("I0", in[0])
	c.SetPort("I1", in[2])
	c.SetPort(PortZ, m.NewBit())

	_, err := Run(m, testParams(utils.VerifyNone, 2000))
	require.Error(t, err)
	require.Contains(t, err.Error(), "INIT")
	require.Equal(t, 3, m.NumCells())
	require.NotNil(t, m.Cell("a"))
	require.NotNil(t, m.Cell("b"))
}

func TestRunMultipleDrivers(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 3).Bits
	oa := newLUT(m, "a", 0x6, in[0], in[1])
	addLUT(m, "b", 0x8, oa, in[1], in[2])
	newLUT(m, "c", 0x1, in[2])

	_, err := Run(m, testParams(utils.VerifyNone, -1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 drivers")
	require.Equal(t, 3, m.NumCells())
	require.NotNil(t, m.Cell("a"))
	require.NotNil(t, m.Cell("b"))
	require.Equal(t, "a_b_merged", m.Uniquify("a_b_merged"))
}

func TestRunInvalidParams(t *testing.T) {
	m := netlist.NewModule("top")

	params := testParams(utils.VerifyMode("exhaustive"), 2000)
	_, err := Run(m, params)
	require.Error(t, err)

	params = testParams(utils.VerifyNone, 2000)
	params.Filter = "Size <"
	_, err = Run(m, params)
	require.Error(t, err)
}

func TestRunFilter(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 4).Bits
	newLUT(m, "a", 0x96, in[0], in[1], in[2])
	newLUT(m, "b", 0xE8, in[1], in[2], in[3])

	params := testParams(utils.VerifyNone, 2000)
	params.Filter = `Name != "b"`
	result, err := Run(m, params)
	require.NoError(t, err)
	require.Len(t, result.Nodes, 1)
	require.Empty(t, result.Plans)
	require.Equal(t, 2, m.NumCells())
}

func TestRunDiagnostics(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 4).Bits
	newLUT(m, "a", 0x96, in[0], in[1], in[2])
	newLUT(m, "b", 0xE8, in[1], in[2], in[3])

	dump := new(nopCloser)
	params := testParams(utils.VerifySim, 0)
	params.DumpOut = dump
	params.Timing = utils.NewTiming()
	params.Metrics = utils.NewMetrics()

	result, err := Run(m, params)
	require.NoError(t, err)
	require.True(t, result.Layered)
	require.NotNil(t, result.Layering)
	require.Len(t, result.Plans, 1)

	out := dump.String()
	require.Contains(t, out, "(2 total)")
	require.Contains(t, out, "Cell: a (Type: GTP_LUT3")
	require.Contains(t, out, "Cell: b (Type: GTP_LUT3")

	var labels []string
	for _, sample := range params.Timing.Samples {
		labels = append(labels, sample.Label)
	}
	require.Equal(t, []string{
		"Collect", "Layer", "Search", "Plan", "Verify", "Commit",
	}, labels)
	subLabels := func(sample *utils.Sample) []string {
		var result []string
		for _, sub := range sample.Samples {
			result = append(result, sub.Label)
		}
		return result
	}
	require.Equal(t, []string{"shared", "absorb"},
		subLabels(params.Timing.Samples[2]))
	require.Equal(t, []string{"sim"}, subLabels(params.Timing.Samples[4]))

	families, err := params.Metrics.Registry.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			switch {
			case metric.GetGauge() != nil:
				values[f.GetName()] += metric.GetGauge().GetValue()
			case metric.GetCounter() != nil:
				values[f.GetName()] += metric.GetCounter().GetValue()
			}
		}
	}
	require.Equal(t, 2.0, values["stitch_luts_collected"])
	require.Equal(t, 1.0, values["stitch_candidates_total"])
	require.Equal(t, 1.0, values["stitch_plans_total"])
	require.Equal(t, 1.0, values["stitch_dependency_levels"])
}

func TestVerifyCorrupted(t *testing.T) {
	m := netlist.NewModule("top")
	in := m.AddPort("in", netlist.Input, 4).Bits
	newLUT(m, "a", 0x96, in[0], in[1], in[2])
	newLUT(m, "b", 0xE8, in[1], in[2], in[3])

	nodes := collect(t, m)
	plans, err := NewPlanner(nodes, m).Plan(NewSearcher(nodes).Global())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.NoError(t, Verify(plans, nodes, utils.VerifyAll))

	// Row 0 of the Z5 half.
	plans[0].Table.Bits ^= 1
	for _, mode := range []utils.VerifyMode{utils.VerifySim, utils.VerifySAT} {
		err := Verify(plans, nodes, mode)
		require.Error(t, err, mode)
		require.Contains(t, err.Error(), "output Z5 differs from a", mode)
	}
	require.NoError(t, Verify(plans, nodes, utils.VerifyNone))
}

func randomModule(seed uint64) *netlist.Module {
	return netlist.Random("top", seed, netlist.RandomParams{
		Inputs:  8,
		Outputs: 8,
		LUTs:    80,
		Window:  8,
	})
}

func TestRunRandomEquivalence(t *testing.T) {
	for seed := uint64(1); seed <= 6; seed++ {
		for _, threshold := range []int{-1, 0} {
			m := randomModule(seed)
			before := m.NumCells()

			result, err := Run(m, testParams(utils.VerifyAll, threshold))
			require.NoError(t, err, "seed %d", seed)
			require.Equal(t, threshold == 0, result.Layered)
			require.Equal(t, before-len(result.Plans), m.NumCells())

			retired := make(map[string]bool)
			for _, plan := range result.Plans {
				for _, name := range plan.Retire {
					require.False(t, retired[name], "%s retired twice", name)
					retired[name] = true
					require.Nil(t, m.Cell(name))
				}
				require.NotNil(t, m.Cell(plan.Name))
				require.NoError(t, verify.Exhaustive(plan.LUT6D(),
					result.Nodes[plan.Z5Node], result.Nodes[plan.ZNode]))
			}
			require.Equal(t, len(result.Plans),
				result.Candidates-result.Discarded)
		}
	}
}

func TestRunIdempotent(t *testing.T) {
	for seed := uint64(10); seed < 14; seed++ {
		m := randomModule(seed)

		first, err := Run(m, testParams(utils.VerifyNone, -1))
		require.NoError(t, err)
		cells := m.NumCells()

		second, err := Run(m, testParams(utils.VerifyNone, -1))
		require.NoError(t, err)
		require.Equal(t, 0, second.Candidates, "seed %d", seed)
		require.Empty(t, second.Plans)
		require.Equal(t, cells, m.NumCells())
		require.Equal(t, len(first.Nodes)-2*len(first.Plans),
			len(second.Nodes))
	}
}

func TestRunJSONRoundTrip(t *testing.T) {
	d := netlist.NewDesign()
	m := randomModule(99)
	d.Modules[m.Name] = m

	result, err := Run(m, testParams(utils.VerifySAT, -1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, d.WriteJSON(&buf))
	require.Equal(t, len(result.Plans),
		strings.Count(buf.String(), `"GTP_LUT6D"`))

	d2, err := netlist.ReadJSON(&buf)
	require.NoError(t, err)
	top, err := d2.Top()
	require.NoError(t, err)
	require.Equal(t, m.NumCells(), top.NumCells())
}
