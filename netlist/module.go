//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package netlist

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Direction specifies port direction.
type Direction string

// Port directions.
const (
	Input  Direction = "input"
	Output Direction = "output"
	InOut  Direction = "inout"
)

// Design holds the modules of a netlist.
type Design struct {
	Creator string
	Modules map[string]*Module
}

// NewDesign creates an empty design.
func NewDesign() *Design {
	return &Design{
		Modules: make(map[string]*Module),
	}
}

// AddModule adds a new empty module into the design.
func (d *Design) AddModule(name string) *Module {
	m := NewModule(name)
	d.Modules[name] = m
	return m
}

// Top returns the top module of the design. The top module is the
// module with the top attribute set or the only module of the
// design.
func (d *Design) Top() (*Module, error) {
	var names []string
	for name := range d.Modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := d.Modules[name]
		if v, ok := m.Attributes["top"]; ok && v.Uint64() != 0 {
			return m, nil
		}
	}
	if len(names) == 1 {
		return d.Modules[names[0]], nil
	}
	return nil, errors.New("no top module found")
}

// Port defines a module port.
type Port struct {
	Direction Direction
	Bits      []Bit
}

// Netname names a bit vector.
type Netname struct {
	HideName bool
	Bits     []Bit
}

// Connection connects two equal width bit vectors.
type Connection struct {
	LHS []Bit
	RHS []Bit
}

// Module implements a netlist module.
type Module struct {
	Name        string
	Attributes  map[string]Const
	Ports       map[string]*Port
	PortOrder   []string
	Netnames    map[string]*Netname
	Connections []Connection
	cells       map[string]*Cell
	order       []string
	removed     int
	reserved    map[string]bool
	nextBit     Bit
}

// NewModule creates a new empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		Attributes: make(map[string]Const),
		Ports:      make(map[string]*Port),
		Netnames:   make(map[string]*Netname),
		cells:      make(map[string]*Cell),
		reserved:   make(map[string]bool),
		nextBit:    2,
	}
}

func (m *Module) String() string {
	return m.Name
}

// NewBit allocates a new net bit.
func (m *Module) NewBit() Bit {
	b := m.nextBit
	m.nextBit++
	return b
}

// NewBits allocates count new net bits.
func (m *Module) NewBits(count int) []Bit {
	result := make([]Bit, count)
	for i := range result {
		result[i] = m.NewBit()
	}
	return result
}

func (m *Module) useBits(bits []Bit) {
	for _, b := range bits {
		if !b.IsConst() && b >= m.nextBit {
			m.nextBit = b + 1
		}
	}
}

// AddPort adds a module port with width new bits.
func (m *Module) AddPort(name string, dir Direction, width int) *Port {
	p := &Port{
		Direction: dir,
		Bits:      m.NewBits(width),
	}
	m.Ports[name] = p
	m.PortOrder = append(m.PortOrder, name)
	m.Netnames[name] = &Netname{
		Bits: p.Bits,
	}
	return p
}

// Connect connects the bit vectors lhs and rhs.
func (m *Module) Connect(lhs, rhs []Bit) error {
	if len(lhs) != len(rhs) {
		return errors.Errorf("connection width mismatch: %d != %d",
			len(lhs), len(rhs))
	}
	m.useBits(lhs)
	m.useBits(rhs)
	m.Connections = append(m.Connections, Connection{
		LHS: lhs,
		RHS: rhs,
	})
	return nil
}

// NumCells returns the number of cells in the module.
func (m *Module) NumCells() int {
	return len(m.cells)
}

// Cell returns the named cell or nil if the module does not have the
// cell.
func (m *Module) Cell(name string) *Cell {
	return m.cells[name]
}

// CellList returns the module cells in their insertion order.
func (m *Module) CellList() []*Cell {
	m.compact()
	result := make([]*Cell, 0, len(m.order))
	for _, name := range m.order {
		result = append(result, m.cells[name])
	}
	return result
}

func (m *Module) compact() {
	if m.removed == 0 {
		return
	}
	var order []string
	for _, name := range m.order {
		if _, ok := m.cells[name]; ok {
			order = append(order, name)
		}
	}
	m.order = order
	m.removed = 0
}

// AddCell adds a new cell into the module. The function panics if
// the module already has a cell with the name.
func (m *Module) AddCell(name, typ string) *Cell {
	if _, ok := m.cells[name]; ok {
		panic(fmt.Sprintf("cell %s already exists in module %s", name, m.Name))
	}
	m.compact()
	c := &Cell{
		Name:           name,
		Type:           typ,
		Params:         make(map[string]Const),
		Attributes:     make(map[string]Const),
		PortDirections: make(map[string]Direction),
		Connections:    make(map[string][]Bit),
		module:         m,
	}
	m.cells[name] = c
	m.order = append(m.order, name)
	delete(m.reserved, name)
	return c
}

// Remove removes the named cell from the module. The function
// returns false if the module does not have the cell.
func (m *Module) Remove(name string) bool {
	c, ok := m.cells[name]
	if !ok {
		return false
	}
	c.module = nil
	delete(m.cells, name)
	m.removed++
	return true
}

// Uniquify returns a cell name, based on hint, that is not used by
// any cell of the module nor by any name returned by an earlier
// Uniquify call. The returned name is reserved until a cell with the
// name is added.
func (m *Module) Uniquify(hint string) string {
	name := hint
	for i := 1; m.used(name); i++ {
		name = fmt.Sprintf("%s_%d", hint, i)
	}
	m.reserved[name] = true
	return name
}

// Release releases a name reserved by Uniquify. Names of existing
// cells are not affected.
func (m *Module) Release(name string) {
	delete(m.reserved, name)
}

func (m *Module) used(name string) bool {
	_, ok := m.cells[name]
	return ok || m.reserved[name]
}

// Cell implements a module cell.
type Cell struct {
	Name           string
	Type           string
	HideName       bool
	Params         map[string]Const
	Attributes     map[string]Const
	PortDirections map[string]Direction
	Connections    map[string][]Bit
	module         *Module
}

func (c *Cell) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Type)
}

// Port returns the bits connected to the named port.
func (c *Cell) Port(name string) ([]Bit, bool) {
	bits, ok := c.Connections[name]
	return bits, ok
}

// SetPort connects the bits to the named port.
func (c *Cell) SetPort(name string, bits ...Bit) {
	c.Connections[name] = bits
	if c.module != nil {
		c.module.useBits(bits)
	}
}

// Param returns the named parameter.
func (c *Cell) Param(name string) (Const, bool) {
	v, ok := c.Params[name]
	return v, ok
}

// SetParam sets the named parameter.
func (c *Cell) SetParam(name string, value Const) {
	c.Params[name] = value
}

var outputPorts = map[string]bool{
	"Z":  true,
	"Z5": true,
	"Y":  true,
	"Q":  true,
	"O":  true,
}

// IsOutput tests if the named port is an output port. Declared port
// directions take precedence over the port naming convention.
func (c *Cell) IsOutput(port string) bool {
	if dir, ok := c.PortDirections[port]; ok {
		return dir == Output || dir == InOut
	}
	return outputPorts[port]
}

// IsInput tests if the named port is an input port.
func (c *Cell) IsInput(port string) bool {
	if dir, ok := c.PortDirections[port]; ok {
		return dir == Input || dir == InOut
	}
	return !outputPorts[port]
}
