// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

// Package promstats exports gang activity as Prometheus metrics.
package promstats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/embergc/ember/gang"
)

const (
	MetricRoundsStarted  = "rounds_started_total"
	MetricRoundsResolved = "rounds_resolved_total"
	MetricActiveWorkers  = "active_workers"
	MetricYieldedWorkers = "yielded_workers"
)

// GangStats implements gang.Stats on Prometheus collectors. One
// GangStats serves one gang; the gang name is a constant label.
type GangStats struct {
	rounds   prometheus.Counter
	resolved *prometheus.CounterVec
	active   prometheus.Gauge
	yielded  prometheus.Gauge
}

var _ gang.Stats = (*GangStats)(nil)

// New registers and returns collectors for the named gang. A nil
// registerer uses the default one.
func New(gangName string, reg prometheus.Registerer) *GangStats {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"gang": gangName}
	s := &GangStats{
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ember",
			Subsystem:   "gang",
			Name:        MetricRoundsStarted,
			Help:        "Dispatches (start or continue) on this gang.",
			ConstLabels: labels,
		}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "ember",
			Subsystem:   "gang",
			Name:        MetricRoundsResolved,
			Help:        "Rounds resolved on this gang, by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ember",
			Subsystem:   "gang",
			Name:        MetricActiveWorkers,
			Help:        "Workers granted to the current task.",
			ConstLabels: labels,
		}),
		yielded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ember",
			Subsystem:   "gang",
			Name:        MetricYieldedWorkers,
			Help:        "Workers parked at their yield point.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(s.rounds, s.resolved, s.active, s.yielded)
	return s
}

func (s *GangStats) RoundStarted(workers int) {
	s.rounds.Inc()
}

func (s *GangStats) RoundResolved(outcome gang.Status) {
	s.resolved.WithLabelValues(outcome.String()).Inc()
}

func (s *GangStats) Workers(active, yielded int) {
	s.active.Set(float64(active))
	s.yielded.Set(float64(yielded))
}
