//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/markkurossi/stitch/lut"
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// MaxSignals limits the number of distinct signals exhaustive
// verification enumerates.
const MaxSignals = 12

// LUT6D describes a dual-output six-input LUT. The output Z5
// implements rows 0-31 of the table over inputs I0-I4 and the output
// Z implements the full table over inputs I0-I5.
type LUT6D struct {
	Table  uint64
	Inputs [6]lut.Signal
}

// Address computes the table address for the signal values.
func (f LUT6D) Address(values map[lut.Signal]bool) int {
	var addr int
	for i, sig := range f.Inputs {
		if values[sig] {
			addr |= 1 << i
		}
	}
	return addr
}

// Eval evaluates the outputs Z5 and Z for the signal values.
func (f LUT6D) Eval(values map[lut.Signal]bool) (z5, z bool) {
	addr := f.Address(values)
	z5 = f.Table&(1<<(addr&0x1f)) != 0
	z = f.Table&(1<<addr) != 0
	return
}

// Mismatch describes an output where the fused LUT differs from the
// original LUT.
type Mismatch struct {
	Output     string
	Cell       string
	Assignment map[lut.Signal]bool
	Expected   string
	Got        string
}

func (m *Mismatch) Error() string {
	var sigs []lut.Signal
	for sig := range m.Assignment {
		if sig != lut.Zero && sig != lut.One {
			sigs = append(sigs, sig)
		}
	}
	sort.Slice(sigs, func(i, j int) bool {
		return sigs[i] < sigs[j]
	})
	var assign []string
	for _, sig := range sigs {
		v := 0
		if m.Assignment[sig] {
			v = 1
		}
		assign = append(assign, fmt.Sprintf("%v=%d", sig, v))
	}
	msg := fmt.Sprintf("output %s differs from %s at {%s}",
		m.Output, m.Cell, strings.Join(assign, " "))
	if len(m.Expected) > 0 {
		msg += ": " + diffString(m.Expected, m.Got)
	}
	return msg
}

// diffString renders the differences between the expected and got
// output sequences.
func diffString(expected, got string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, got, false)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		}
	}
	return sb.String()
}

// Signals returns the distinct free signals of the fused LUT and the
// original nodes in ascending order. Undefined constants are free.
func Signals(f LUT6D, nodes ...*lut.Node) []lut.Signal {
	var result []lut.Signal
	result = lut.Union(result, f.Inputs[:])
	for _, n := range nodes {
		result = lut.Union(result, n.InputSet())
	}
	var vars []lut.Signal
	for _, sig := range result {
		if sig != lut.Zero && sig != lut.One {
			vars = append(vars, sig)
		}
	}
	return vars
}

func assignment(vars []lut.Signal, bits int) map[lut.Signal]bool {
	values := map[lut.Signal]bool{
		lut.One: true,
	}
	for i, sig := range vars {
		values[sig] = bits&(1<<i) != 0
	}
	return values
}

// Exhaustive verifies the fused LUT against the original nodes z5
// and z by simulating all assignments of their signals.
func Exhaustive(f LUT6D, z5, z *lut.Node) error {
	vars := Signals(f, z5, z)
	if len(vars) > MaxSignals {
		return errors.Errorf("too many signals to enumerate: %d", len(vars))
	}

	var first *Mismatch
	var exp5, got5, exp, got strings.Builder

	for bits := 0; bits < 1<<len(vars); bits++ {
		values := assignment(vars, bits)
		fz5, fz := f.Eval(values)
		oz5 := z5.Eval(values)
		oz := z.Eval(values)

		exp5.WriteString(bitString(oz5))
		got5.WriteString(bitString(fz5))
		exp.WriteString(bitString(oz))
		got.WriteString(bitString(fz))

		if first != nil {
			continue
		}
		if fz5 != oz5 {
			first = &Mismatch{
				Output:     "Z5",
				Cell:       z5.Cell,
				Assignment: values,
			}
		} else if fz != oz {
			first = &Mismatch{
				Output:     "Z",
				Cell:       z.Cell,
				Assignment: values,
			}
		}
	}
	if first == nil {
		return nil
	}
	if first.Output == "Z5" {
		first.Expected = exp5.String()
		first.Got = got5.String()
	} else {
		first.Expected = exp.String()
		first.Got = got.String()
	}
	return first
}

func bitString(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
