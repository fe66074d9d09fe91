//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package verify

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/markkurossi/stitch/lut"
	"github.com/pkg/errors"
)

// miter builds the equivalence miter of the fused LUT and the
// original nodes.
type miter struct {
	c    *logic.C
	lits map[lut.Signal]z.Lit
}

func newMiter() *miter {
	return &miter{
		c:    logic.NewC(),
		lits: make(map[lut.Signal]z.Lit),
	}
}

func (m *miter) lit(sig lut.Signal) z.Lit {
	switch sig {
	case lut.Zero:
		return m.c.F
	case lut.One:
		return m.c.T
	}
	l, ok := m.lits[sig]
	if !ok {
		l = m.c.Lit()
		m.lits[sig] = l
	}
	return l
}

// table builds the multiplexer tree of the truth table over the
// input literals.
func (m *miter) table(bits uint64, ins []z.Lit) z.Lit {
	if len(ins) == 0 {
		if bits&1 != 0 {
			return m.c.T
		}
		return m.c.F
	}
	n := len(ins) - 1
	rows := uint(1) << n
	mask := uint64(1)<<rows - 1
	lo := bits & mask
	hi := (bits >> rows) & mask
	return m.c.Choice(ins[n], m.table(hi, ins[:n]), m.table(lo, ins[:n]))
}

func (m *miter) node(n *lut.Node) z.Lit {
	ins := make([]z.Lit, n.Size)
	for i := range ins {
		ins[i] = m.c.F
	}
	for _, in := range n.Inputs {
		if in.Port < len(ins) {
			ins[in.Port] = m.lit(in.Sig)
		}
	}
	return m.table(n.Table.Bits, ins)
}

// Prove verifies the fused LUT against the original nodes n5 and n
// with a SAT solver. The function returns nil if the miter of the
// outputs is unsatisfiable.
func Prove(f LUT6D, n5, n *lut.Node) error {
	m := newMiter()

	var ins [6]z.Lit
	for i, sig := range f.Inputs {
		ins[i] = m.lit(sig)
	}
	fz := m.table(f.Table, ins[:])
	fz5 := m.table(f.Table&0xffffffff, ins[:5])

	oz5 := m.node(n5)
	oz := m.node(n)

	root := m.c.Or(m.c.Xor(fz5, oz5), m.c.Xor(fz, oz))
	if root == m.c.F {
		return nil
	}

	g := gini.New()
	m.c.ToCnf(g)
	g.Assume(root)

	switch g.Solve() {
	case -1:
		return nil
	case 1:
		values := map[lut.Signal]bool{
			lut.One: true,
		}
		for sig, l := range m.lits {
			if l.Var() <= g.MaxVar() {
				values[sig] = g.Value(l)
			}
		}
		v5, _ := f.Eval(values)
		if v5 != n5.Eval(values) {
			return &Mismatch{
				Output:     "Z5",
				Cell:       n5.Cell,
				Assignment: values,
			}
		}
		return &Mismatch{
			Output:     "Z",
			Cell:       n.Cell,
			Assignment: values,
		}
	default:
		return errors.New("SAT solver did not finish")
	}
}
