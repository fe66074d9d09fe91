//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pass metrics of one stitcher run.
type Metrics struct {
	Registry   *prometheus.Registry
	Collected  prometheus.Gauge
	Unleveled  prometheus.Gauge
	Levels     prometheus.Gauge
	Candidates *prometheus.CounterVec
	Plans      *prometheus.CounterVec
	Discarded  prometheus.Counter
	Phase      *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them in a new
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Collected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stitch_luts_collected",
			Help: "Number of LUT cells collected from the netlist.",
		}),
		Unleveled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stitch_luts_unleveled",
			Help: "Number of LUT cells left without a dependency level.",
		}),
		Levels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stitch_dependency_levels",
			Help: "Number of dependency levels.",
		}),
		Candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stitch_candidates_total",
			Help: "Number of fusion candidates found.",
		}, []string{"template"}),
		Plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stitch_plans_total",
			Help: "Number of fusion plans made.",
		}, []string{"template"}),
		Discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stitch_candidates_discarded_total",
			Help: "Number of candidates discarded for consumed LUTs.",
		}),
		Phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stitch_phase_seconds",
			Help: "Duration of the stitcher phases.",
		}, []string{"phase"}),
	}
	m.Registry.MustRegister(m.Collected, m.Unleveled, m.Levels,
		m.Candidates, m.Plans, m.Discarded, m.Phase)
	return m
}

// ObservePhase records the duration of the phase.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.Phase.WithLabelValues(phase).Set(d.Seconds())
}

// WriteFile writes the metrics to the file in the Prometheus text
// exposition format.
func (m *Metrics) WriteFile(file string) error {
	return prometheus.WriteToTextfile(file, m.Registry)
}
