//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package stitch

import (
	"fmt"
	"time"

	"github.com/markkurossi/stitch/lut"
	"github.com/markkurossi/stitch/netlist"
	"github.com/markkurossi/stitch/utils"
	"github.com/markkurossi/stitch/verify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result describes a stitcher run.
type Result struct {
	Nodes      []*lut.Node
	Layering   *Layering
	Layered    bool
	Candidates int
	Rejected   int
	Discarded  int
	Plans      []*Plan
}

// Layered tests if a design with count LUTs is searched with the
// layered strategy.
func Layered(count, threshold int) bool {
	if threshold < 0 {
		return false
	}
	return count > threshold
}

// Run collects the LUTs of the module, finds fusion candidates, plans
// the fusions, and commits the plans into the module. No changes are
// made to the module if the function returns an error.
func Run(m *netlist.Module, params *utils.Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	log := params.Log().WithField("module", m.Name)
	timing := params.Timing
	if timing == nil {
		timing = utils.NewTiming()
	}
	metrics := params.Metrics

	var filter *lut.Filter
	if len(params.Filter) > 0 {
		var err error
		filter, err = lut.NewFilter(params.Filter)
		if err != nil {
			return nil, err
		}
	}

	// Searching.
	start := time.Now()
	sigmap := netlist.NewSigMap(m)
	nodes, err := lut.Collect(m, sigmap, params.LUTPrefix, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "module %s", m.Name)
	}
	timing.Sample("Collect", []string{fmt.Sprintf("%d", len(nodes))})
	log.WithFields(logrus.Fields{
		"luts":    len(nodes),
		"elapsed": time.Since(start),
	}).Info("collected LUTs")
	if metrics != nil {
		metrics.Collected.Set(float64(len(nodes)))
		metrics.ObservePhase("collect", time.Since(start))
	}

	if params.DumpOut != nil {
		if err := lut.Dump(params.DumpOut, nodes); err != nil {
			return nil, errors.Wrap(err, "dump LUTs")
		}
		log.Debug("dumped LUTs")
	}

	result := &Result{
		Nodes:   nodes,
		Layered: Layered(len(nodes), params.LayerThreshold),
	}

	start = time.Now()
	index := netlist.NewIndex(m, sigmap)
	if err := index.Check(); err != nil {
		return nil, errors.Wrapf(err, "module %s", m.Name)
	}
	searcher := NewSearcher(nodes)
	var queue *Queue
	if result.Layered {
		result.Layering = Layer(nodes, lut.IndexFanout{Index: index}, log)
		sample := timing.Sample("Layer", []string{
			fmt.Sprintf("%d", len(result.Layering.Buckets)),
		})
		log.WithFields(logrus.Fields{
			"levels":    len(result.Layering.Buckets),
			"edges":     result.Layering.Edges,
			"unleveled": len(result.Layering.Unleveled),
			"elapsed":   time.Since(start),
		}).Info("assigned dependency levels")
		if metrics != nil {
			metrics.Levels.Set(float64(len(result.Layering.Buckets)))
			metrics.Unleveled.Set(float64(len(result.Layering.Unleveled)))
			metrics.ObservePhase("layer", sample.Duration())
		}
		start = time.Now()
		queue = searcher.Layered(result.Layering)
	} else {
		queue = searcher.Global()
	}
	result.Candidates = queue.Len()
	result.Rejected = searcher.Rejected

	sample := timing.Sample("Search",
		[]string{fmt.Sprintf("%d", result.Candidates)})
	for t := SharedInputs; t <= Absorb; t++ {
		sample.AbsSubSample(t.String(), searcher.Elapsed[t])
	}
	log.WithFields(logrus.Fields{
		"candidates": result.Candidates,
		"shared":     searcher.Stats[SharedInputs],
		"absorb":     searcher.Stats[Absorb],
		"layered":    result.Layered,
		"elapsed":    time.Since(start),
	}).Info("found merge candidates")
	if result.Rejected > 0 {
		log.WithField("rejected", result.Rejected).
			Debug("absorptions holding only with select at 1")
	}
	if metrics != nil {
		for t := SharedInputs; t <= Absorb; t++ {
			metrics.Candidates.WithLabelValues(t.String()).
				Add(float64(searcher.Stats[t]))
		}
		metrics.ObservePhase("search", time.Since(start))
	}

	// Planning.
	start = time.Now()
	planner := NewPlanner(nodes, m)
	plans, err := planner.Plan(queue)
	if err != nil {
		return nil, err
	}
	result.Plans = plans
	result.Discarded = planner.Discarded

	timing.Sample("Plan", []string{fmt.Sprintf("%d", len(plans))})
	log.WithFields(logrus.Fields{
		"plans":     len(plans),
		"discarded": planner.Discarded,
		"elapsed":   time.Since(start),
	}).Info("planned merges")
	if metrics != nil {
		for t := SharedInputs; t <= Absorb; t++ {
			metrics.Plans.WithLabelValues(t.String()).
				Add(float64(planner.Stats[t]))
		}
		metrics.Discarded.Add(float64(planner.Discarded))
		metrics.ObservePhase("plan", time.Since(start))
	}

	if len(plans) == 0 {
		log.Info("no valid merges found")
		return result, nil
	}

	if params.Verify.Sim() || params.Verify.SAT() {
		start = time.Now()
		var simEnd, satEnd time.Time
		if params.Verify.Sim() {
			if err := Verify(plans, nodes, utils.VerifySim); err != nil {
				planner.Release(plans)
				return nil, err
			}
			simEnd = time.Now()
		}
		if params.Verify.SAT() {
			if err := Verify(plans, nodes, utils.VerifySAT); err != nil {
				planner.Release(plans)
				return nil, err
			}
			satEnd = time.Now()
		}
		sample := timing.Sample("Verify",
			[]string{fmt.Sprintf("%d", len(plans))})
		if params.Verify.Sim() {
			sample.SubSample(string(utils.VerifySim), simEnd)
		}
		if params.Verify.SAT() {
			sample.SubSample(string(utils.VerifySAT), satEnd)
		}
		log.WithFields(logrus.Fields{
			"mode":    params.Verify,
			"elapsed": time.Since(start),
		}).Info("verified merges")
		if metrics != nil {
			metrics.ObservePhase("verify", time.Since(start))
		}
	}

	// Committed.
	start = time.Now()
	if err := Commit(m, plans, params.FusedType); err != nil {
		planner.Release(plans)
		return nil, err
	}
	timing.Sample("Commit", []string{fmt.Sprintf("%d", len(plans))})
	log.WithFields(logrus.Fields{
		"merges":  len(plans),
		"cells":   m.NumCells(),
		"elapsed": time.Since(start),
		"total":   timing.Total(),
	}).Info("performed merges")
	if metrics != nil {
		metrics.ObservePhase("commit", time.Since(start))
	}

	return result, nil
}

// Verify checks that every plan preserves the behavior of its
// original nodes.
func Verify(plans []*Plan, nodes []*lut.Node, mode utils.VerifyMode) error {
	for _, plan := range plans {
		z5 := nodes[plan.Z5Node]
		z := nodes[plan.ZNode]
		if mode.Sim() {
			if err := verify.Exhaustive(plan.LUT6D(), z5, z); err != nil {
				return errors.Wrapf(err, "plan %s", plan.Name)
			}
		}
		if mode.SAT() {
			if err := verify.Prove(plan.LUT6D(), z5, z); err != nil {
				return errors.Wrapf(err, "plan %s", plan.Name)
			}
		}
	}
	return nil
}
