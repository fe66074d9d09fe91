//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package netlist

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// The JSON layout follows the Yosys write_json netlist format. The
// optional module level connections array carries explicit bit
// aliases that are not yet merged into shared net IDs.

type jsonDesign struct {
	Creator string                 `json:"creator,omitempty"`
	Modules map[string]*jsonModule `json:"modules"`
}

type jsonModule struct {
	Attributes  map[string]Const        `json:"attributes,omitempty"`
	Ports       map[string]*jsonPort    `json:"ports"`
	Cells       map[string]*jsonCell    `json:"cells"`
	Netnames    map[string]*jsonNetname `json:"netnames"`
	Connections []jsonConnection        `json:"connections,omitempty"`
}

type jsonPort struct {
	Direction Direction `json:"direction"`
	Bits      []Bit     `json:"bits"`
}

type jsonCell struct {
	HideName       int                  `json:"hide_name"`
	Type           string               `json:"type"`
	Parameters     map[string]Const     `json:"parameters"`
	Attributes     map[string]Const     `json:"attributes"`
	PortDirections map[string]Direction `json:"port_directions,omitempty"`
	Connections    map[string][]Bit     `json:"connections"`
}

type jsonNetname struct {
	HideName   int              `json:"hide_name"`
	Bits       []Bit            `json:"bits"`
	Attributes map[string]Const `json:"attributes,omitempty"`
}

type jsonConnection struct {
	LHS []Bit `json:"lhs"`
	RHS []Bit `json:"rhs"`
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ReadJSON reads a design from a Yosys JSON netlist.
func ReadJSON(in io.Reader) (*Design, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, errors.Wrap(err, "read netlist")
	}
	var jd jsonDesign
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, errors.Wrap(err, "parse netlist")
	}

	d := NewDesign()
	d.Creator = jd.Creator
	for name, jm := range jd.Modules {
		if jm == nil {
			return nil, errors.Errorf("module %s: empty definition", name)
		}
		m, err := readModule(name, jm)
		if err != nil {
			return nil, errors.Wrapf(err, "module %s", name)
		}
		d.Modules[name] = m
	}
	return d, nil
}

// ReadJSONFile reads a design from the named Yosys JSON netlist
// file.
func ReadJSONFile(file string) (*Design, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

func readModule(name string, jm *jsonModule) (*Module, error) {
	m := NewModule(name)
	for k, v := range jm.Attributes {
		m.Attributes[k] = v
	}

	for pname, jp := range jm.Ports {
		if jp == nil {
			return nil, errors.Errorf("port %s: empty definition", pname)
		}
		m.Ports[pname] = &Port{
			Direction: jp.Direction,
			Bits:      jp.Bits,
		}
		m.PortOrder = append(m.PortOrder, pname)
		m.useBits(jp.Bits)
	}
	sort.Slice(m.PortOrder, func(i, j int) bool {
		return portKey(m.Ports[m.PortOrder[i]]) <
			portKey(m.Ports[m.PortOrder[j]])
	})

	for nname, jn := range jm.Netnames {
		if jn == nil {
			continue
		}
		m.Netnames[nname] = &Netname{
			HideName: jn.HideName != 0,
			Bits:     jn.Bits,
		}
		m.useBits(jn.Bits)
	}

	var names []string
	for cname := range jm.Cells {
		names = append(names, cname)
	}
	sort.Strings(names)

	for _, cname := range names {
		jc := jm.Cells[cname]
		if jc == nil {
			return nil, errors.Errorf("cell %s: empty definition", cname)
		}
		c := m.AddCell(cname, jc.Type)
		c.HideName = jc.HideName != 0
		for k, v := range jc.Parameters {
			c.Params[k] = v
		}
		for k, v := range jc.Attributes {
			c.Attributes[k] = v
		}
		for k, v := range jc.PortDirections {
			c.PortDirections[k] = v
		}
		for port, bits := range jc.Connections {
			c.SetPort(port, bits...)
		}
	}

	for _, jc := range jm.Connections {
		if err := m.Connect(jc.LHS, jc.RHS); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func portKey(p *Port) Bit {
	for _, b := range p.Bits {
		if !b.IsConst() {
			return b
		}
	}
	return Bit(1<<31 - 1)
}

// WriteJSON writes the design as a Yosys JSON netlist.
func (d *Design) WriteJSON(out io.Writer) error {
	jd := &jsonDesign{
		Creator: d.Creator,
		Modules: make(map[string]*jsonModule),
	}
	for name, m := range d.Modules {
		jd.Modules[name] = writeModule(m)
	}
	data, err := json.MarshalIndent(jd, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal netlist")
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}

func writeModule(m *Module) *jsonModule {
	jm := &jsonModule{
		Attributes: m.Attributes,
		Ports:      make(map[string]*jsonPort),
		Cells:      make(map[string]*jsonCell),
		Netnames:   make(map[string]*jsonNetname),
	}
	for name, p := range m.Ports {
		jm.Ports[name] = &jsonPort{
			Direction: p.Direction,
			Bits:      p.Bits,
		}
	}
	for _, c := range m.CellList() {
		jm.Cells[c.Name] = &jsonCell{
			HideName:       boolInt(c.HideName),
			Type:           c.Type,
			Parameters:     c.Params,
			Attributes:     c.Attributes,
			PortDirections: c.PortDirections,
			Connections:    c.Connections,
		}
	}
	for name, n := range m.Netnames {
		jm.Netnames[name] = &jsonNetname{
			HideName: boolInt(n.HideName),
			Bits:     n.Bits,
		}
	}
	for _, conn := range m.Connections {
		jm.Connections = append(jm.Connections, jsonConnection{
			LHS: conn.LHS,
			RHS: conn.RHS,
		})
	}
	return jm
}
