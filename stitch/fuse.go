//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package stitch

import (
	"github.com/markkurossi/stitch/lut"
	"github.com/pkg/errors"
)

// Proof is the result of an absorption check.
type Proof struct {
	Select lut.Signal
	// SelZero is set if the small LUT equals the six-input LUT with
	// the select input at 0.
	SelZero bool
	// SelOne is set if the small LUT equals the six-input LUT with
	// the select input at 1.
	SelOne bool
}

// columns maps the six-input LUT's signals to their input positions.
// The function returns false if the LUT does not have six distinct
// connected inputs.
func columns(n *lut.Node) (map[lut.Signal]int, bool) {
	if n.Size != lut.MaxSize || len(n.Inputs) != lut.MaxSize {
		return nil, false
	}
	result := make(map[lut.Signal]int, lut.MaxSize)
	for _, in := range n.Inputs {
		if _, ok := result[in.Sig]; ok {
			return nil, false
		}
		result[in.Sig] = in.Port
	}
	return result, true
}

// Expand expands the small LUT's truth table into the 64-row input
// space of the six-input LUT. The cols map gives the six-input LUT
// position of each of the small LUT's signals.
func Expand(small *lut.Node, cols map[lut.Signal]int) uint64 {
	var ports [lut.MaxSize]*lut.Input
	for i := range small.Inputs {
		in := &small.Inputs[i]
		if in.Port < len(ports) {
			ports[in.Port] = in
		}
	}

	var result uint64
	for row := 0; row < small.Table.Rows(); row++ {
		if !small.Table.Bit(row) {
			continue
		}
		mask := ^uint64(0)
		for port := 0; port < small.Size; port++ {
			set := row&(1<<port) != 0
			in := ports[port]
			if in == nil {
				// Unconnected ports read as 0.
				if set {
					mask = 0
				}
				continue
			}
			col := lut.Columns[cols[in.Sig]]
			if set {
				mask &= col
			} else {
				mask &^= col
			}
		}
		result |= mask
	}
	return result
}

// Absorbs tests if the six-input LUT big can absorb the LUT small.
// The small LUT's inputs must be a subset of big's inputs, and
// exactly one of big's inputs, the select, must be missing from
// small.
func Absorbs(big, small *lut.Node) (*Proof, bool) {
	if small.Size >= lut.MaxSize {
		return nil, false
	}
	cols, ok := columns(big)
	if !ok {
		return nil, false
	}
	for _, in := range small.Inputs {
		if _, ok := cols[in.Sig]; !ok {
			return nil, false
		}
	}
	var sel []lut.Signal
	for _, in := range big.Inputs {
		if !small.HasInput(in.Sig) {
			sel = append(sel, in.Sig)
		}
	}
	if len(sel) != 1 {
		return nil, false
	}

	// The expanded table does not depend on the select column.
	expanded := Expand(small, cols)
	selPort := cols[sel[0]]

	proof := &Proof{
		Select:  sel[0],
		SelZero: big.Table.Restrict(selPort, false).Bits == expanded,
		SelOne:  big.Table.Restrict(selPort, true).Bits == expanded,
	}
	return proof, proof.SelZero || proof.SelOne
}

// Fusion is a fused dual-output LUT. Output Z5 implements node Z5Node
// and output Z implements node ZNode.
type Fusion struct {
	Table  lut.TruthTable
	Inputs [lut.MaxSize]lut.Signal
	Z5Node int
	ZNode  int
}

// Fuse computes the fused LUT for the candidate.
func Fuse(c *Candidate, nodes []*lut.Node) (*Fusion, error) {
	if c.A == c.B {
		return nil, errors.Errorf("candidate %v: same LUT twice", c)
	}
	a := nodes[c.A]
	b := nodes[c.B]

	f := &Fusion{
		Z5Node: c.A,
		ZNode:  c.B,
	}

	switch c.Template {
	case SharedInputs:
		if len(c.Union) > 5 {
			return nil, errors.Errorf("candidate %v: %d shared inputs",
				c, len(c.Union))
		}
		for i := 0; i < 5; i++ {
			if i < len(c.Union) {
				f.Inputs[i] = c.Union[i]
			} else {
				f.Inputs[i] = lut.Zero
			}
		}
		if a.HasInput(c.Select) && !b.HasInput(c.Select) {
			f.Z5Node, f.ZNode = c.B, c.A
		}

	case Absorb:
		var i int
		for _, in := range a.Inputs {
			if in.Sig == c.Select {
				continue
			}
			if i >= 5 {
				return nil, errors.Errorf("candidate %v: select %v not found",
					c, c.Select)
			}
			f.Inputs[i] = in.Sig
			i++
		}
		if i != 5 {
			return nil, errors.Errorf("candidate %v: %d shared inputs", c, i)
		}
		f.Z5Node, f.ZNode = c.B, c.A

	default:
		return nil, errors.Errorf("candidate %v: unknown template", c)
	}
	f.Inputs[5] = c.Select

	lo := Remap(nodes[f.Z5Node], f.Inputs[:5], c.Select, false)
	hi := Remap(nodes[f.ZNode], f.Inputs[:5], c.Select, true)
	f.Table = lut.NewTruthTable(lo|hi<<32, lut.MaxSize)

	return f, nil
}

// Remap computes the node's 32-row truth table over the shared
// inputs. Node inputs not found among the shared inputs contribute 0,
// except the select signal, which contributes sel.
func Remap(n *lut.Node, shared []lut.Signal, sel lut.Signal,
	selValue bool) uint64 {

	var result uint64
	for i := 0; i < 32; i++ {
		var addr int
		for _, in := range n.Inputs {
			idx := indexOf(shared, in.Sig)
			if idx >= 0 {
				if i&(1<<idx) != 0 {
					addr |= 1 << in.Port
				}
			} else if selValue && in.Sig == sel {
				addr |= 1 << in.Port
			}
		}
		// Out of range addresses read as 0.
		if n.Table.Bit(addr) {
			result |= 1 << i
		}
	}
	return result
}

func indexOf(signals []lut.Signal, sig lut.Signal) int {
	for i, s := range signals {
		if s == sig {
			return i
		}
	}
	return -1
}
