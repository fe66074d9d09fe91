//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package netlist

import (
	"github.com/pkg/errors"
)

// Index maps canonical bits to the cells driving and reading them.
type Index struct {
	sigmap    *SigMap
	drivers   map[Bit][]*Cell
	consumers map[Bit][]*Cell
}

// NewIndex creates a connectivity index for the module. The bits are
// canonicalized with the signal map sm.
func NewIndex(m *Module, sm *SigMap) *Index {
	idx := &Index{
		sigmap:    sm,
		drivers:   make(map[Bit][]*Cell),
		consumers: make(map[Bit][]*Cell),
	}
	for _, c := range m.CellList() {
		for port, bits := range c.Connections {
			out := c.IsOutput(port)
			in := c.IsInput(port)
			for _, b := range sm.MapBits(bits) {
				if b.IsConst() {
					continue
				}
				if out {
					idx.drivers[b] = appendCell(idx.drivers[b], c)
				}
				if in {
					idx.consumers[b] = appendCell(idx.consumers[b], c)
				}
			}
		}
	}
	return idx
}

func appendCell(cells []*Cell, c *Cell) []*Cell {
	for _, e := range cells {
		if e == c {
			return cells
		}
	}
	return append(cells, c)
}

// Consumers returns the cells reading the bit.
func (idx *Index) Consumers(b Bit) []*Cell {
	return idx.consumers[idx.sigmap.Map(b)]
}

// Check verifies that no bit has more than one driver.
func (idx *Index) Check() error {
	for b, cells := range idx.drivers {
		if len(cells) > 1 {
			return errors.Errorf("bit %v has %d drivers: %v, %v",
				b, len(cells), cells[0], cells[1])
		}
	}
	return nil
}
