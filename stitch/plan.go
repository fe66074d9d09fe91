//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package stitch

import (
	"fmt"

	"github.com/markkurossi/stitch/lut"
	"github.com/markkurossi/stitch/netlist"
	"github.com/markkurossi/stitch/verify"
	"github.com/pkg/errors"
)

// Output ports of the fused LUT.
const (
	PortZ  = "Z"
	PortZ5 = "Z5"
)

// Plan holds the instructions to replace two LUT cells with one
// fused LUT cell. Plans do not reference live host objects.
type Plan struct {
	Name     string
	Template Template
	Table    lut.TruthTable
	Inputs   [lut.MaxSize]lut.Signal
	Z        lut.Signal
	Z5       lut.Signal
	Retire   [2]string
	Z5Node   int
	ZNode    int
}

func (p *Plan) String() string {
	return fmt.Sprintf("%s: %s+%s %s %v", p.Name, p.Retire[0], p.Retire[1],
		p.Template, p.Table)
}

// LUT6D returns the fused LUT description of the plan.
func (p *Plan) LUT6D() verify.LUT6D {
	return verify.LUT6D{
		Table:  p.Table.Bits,
		Inputs: p.Inputs,
	}
}

// Namer allocates unique cell names.
type Namer interface {
	Uniquify(hint string) string
	Release(name string)
}

// Planner consumes candidates into non-overlapping fusion plans.
type Planner struct {
	nodes []*lut.Node
	namer Namer
	// Discarded counts candidates dropped because one of their
	// nodes was already consumed.
	Discarded int
	Stats     [Absorb + 1]int
}

// NewPlanner creates a planner for the nodes.
func NewPlanner(nodes []*lut.Node, namer Namer) *Planner {
	return &Planner{
		nodes: nodes,
		namer: namer,
	}
}

// Plan pops all candidates from the queue in score order and creates
// plans for the candidates whose nodes are not yet consumed.
func (p *Planner) Plan(queue *Queue) ([]*Plan, error) {
	var plans []*Plan

	for c := queue.Pop(); c != nil; c = queue.Pop() {
		a := p.nodes[c.A]
		b := p.nodes[c.B]
		if a.Consumed || b.Consumed {
			p.Discarded++
			continue
		}
		a.Consumed = true
		b.Consumed = true

		f, err := Fuse(c, p.nodes)
		if err != nil {
			p.Release(plans)
			return nil, err
		}
		hint := fmt.Sprintf("%s_%s_merged", a.Cell, b.Cell)
		plans = append(plans, &Plan{
			Name:     p.namer.Uniquify(hint),
			Template: c.Template,
			Table:    f.Table,
			Inputs:   f.Inputs,
			Z:        p.nodes[f.ZNode].Output,
			Z5:       p.nodes[f.Z5Node].Output,
			Retire:   [2]string{a.Cell, b.Cell},
			Z5Node:   f.Z5Node,
			ZNode:    f.ZNode,
		})
		p.Stats[c.Template]++
	}
	return plans, nil
}

// Release releases the names allocated for the plans. It is called
// when the plans are abandoned before commit.
func (p *Planner) Release(plans []*Plan) {
	for _, plan := range plans {
		p.namer.Release(plan.Name)
	}
}

// Host is the host netlist view commit mutates.
type Host interface {
	Cell(name string) *netlist.Cell
	Remove(name string) bool
	AddCell(name, typ string) *netlist.Cell
}

// Commit applies the plans to the host. All retired cells are removed
// before any fused cell is added. The plans are validated before the
// host is modified.
func Commit(host Host, plans []*Plan, fusedType string) error {
	retire := make(map[string]bool)
	for _, plan := range plans {
		for _, name := range plan.Retire {
			if retire[name] {
				return errors.Errorf("plan %s: cell %s retired twice",
					plan.Name, name)
			}
			if host.Cell(name) == nil {
				return errors.Errorf("plan %s: cell %s not found",
					plan.Name, name)
			}
			retire[name] = true
		}
		if host.Cell(plan.Name) != nil {
			return errors.Errorf("plan %s: cell already exists", plan.Name)
		}
	}

	for _, plan := range plans {
		for _, name := range plan.Retire {
			host.Remove(name)
		}
	}
	for _, plan := range plans {
		cell := host.AddCell(plan.Name, fusedType)
		cell.SetParam("INIT", plan.Table.Const())
		for i, sig := range plan.Inputs {
			port := lut.InputName(i)
			cell.SetPort(port, sig)
			cell.PortDirections[port] = netlist.Input
		}
		cell.SetPort(PortZ, plan.Z)
		cell.PortDirections[PortZ] = netlist.Output
		cell.SetPort(PortZ5, plan.Z5)
		cell.PortDirections[PortZ5] = netlist.Output
	}
	return nil
}
