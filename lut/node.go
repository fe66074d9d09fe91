//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package lut

import (
	"fmt"
	"sort"

	"github.com/markkurossi/stitch/netlist"
	"github.com/pkg/errors"
)

// Signal identifies a canonical bit of the host netlist.
type Signal = netlist.Bit

// Constant signals.
const (
	Zero = netlist.Bit0
	One  = netlist.Bit1
)

// Input is a connected LUT input port.
type Input struct {
	Port int
	Sig  Signal
}

// Node holds a LUT element collected from the host netlist.
type Node struct {
	Cell     string
	Type     string
	Size     int
	Inputs   []Input
	Output   Signal
	Table    TruthTable
	Consumed bool
}

func (n *Node) String() string {
	return fmt.Sprintf("%s[%d]", n.Cell, n.Size)
}

// InputName returns the name of the input port.
func InputName(port int) string {
	return fmt.Sprintf("I%d", port)
}

// HasInput tests if the signal is connected to any of the node's
// inputs.
func (n *Node) HasInput(sig Signal) bool {
	for _, in := range n.Inputs {
		if in.Sig == sig {
			return true
		}
	}
	return false
}

// InputSet returns the distinct input signals of the node in
// ascending order.
func (n *Node) InputSet() []Signal {
	var result []Signal
	for _, in := range n.Inputs {
		result = insertSignal(result, in.Sig)
	}
	return result
}

func insertSignal(set []Signal, sig Signal) []Signal {
	idx := sort.Search(len(set), func(i int) bool {
		return set[i] >= sig
	})
	if idx < len(set) && set[idx] == sig {
		return set
	}
	set = append(set, 0)
	copy(set[idx+1:], set[idx:])
	set[idx] = sig
	return set
}

// Union returns the sorted union of the signal sets.
func Union(a, b []Signal) []Signal {
	result := append([]Signal(nil), a...)
	for _, sig := range b {
		result = insertSignal(result, sig)
	}
	return result
}

// Address computes the node's truth table address for the signal
// values. Signals without a value contribute 0.
func (n *Node) Address(values map[Signal]bool) int {
	var addr int
	for _, in := range n.Inputs {
		if values[in.Sig] {
			addr |= 1 << in.Port
		}
	}
	return addr
}

// Eval evaluates the node for the signal values.
func (n *Node) Eval(values map[Signal]bool) bool {
	return n.Table.Bit(n.Address(values))
}

// Graph is the host netlist view collection needs.
type Graph interface {
	CellList() []*netlist.Cell
}

// Canonicalizer maps bits to their canonical representatives.
type Canonicalizer interface {
	Map(b netlist.Bit) netlist.Bit
}

// LUTSize returns the LUT size of the cell type: the type is the
// prefix followed by a single digit 1-6.
func LUTSize(typ, prefix string) (int, bool) {
	if len(typ) != len(prefix)+1 || typ[:len(prefix)] != prefix {
		return 0, false
	}
	d := typ[len(prefix)]
	if d < '1' || d > '0'+MaxSize {
		return 0, false
	}
	return int(d - '0'), true
}

// Collect extracts all LUT cells of the graph in graph enumeration
// order. The cell type must be prefix followed by the LUT size. If
// the filter is not nil, only cells it accepts are collected.
// Unconnected input ports are skipped; a missing output port or INIT
// parameter is an error.
func Collect(g Graph, sm Canonicalizer, prefix string, filter *Filter) (
	[]*Node, error) {

	var result []*Node

	for _, cell := range g.CellList() {
		size, ok := LUTSize(cell.Type, prefix)
		if !ok {
			continue
		}
		if filter != nil {
			match, err := filter.Match(cell.Name, cell.Type, size)
			if err != nil {
				return nil, err
			}
			if !match {
				continue
			}
		}
		n := &Node{
			Cell: cell.Name,
			Type: cell.Type,
			Size: size,
		}
		for i := 0; i < size; i++ {
			bits, ok := cell.Port(InputName(i))
			if !ok || len(bits) == 0 {
				continue
			}
			n.Inputs = append(n.Inputs, Input{
				Port: i,
				Sig:  sm.Map(bits[0]),
			})
		}
		bits, ok := cell.Port("Z")
		if !ok || len(bits) == 0 {
			return nil, errors.Errorf("cell %s: output port Z not connected",
				cell.Name)
		}
		n.Output = sm.Map(bits[0])

		init, ok := cell.Param("INIT")
		if !ok || init.IsText {
			return nil, errors.Errorf("cell %s: INIT parameter not set",
				cell.Name)
		}
		n.Table = FromConst(init, size)

		result = append(result, n)
	}
	return result, nil
}
