// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package promstats_test

import (
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/embergc/ember/gang"
	"github.com/embergc/ember/promstats"
)

// meteredTask yields once and completes on the second round.
type meteredTask struct {
	gang.TaskBase
	g      *gang.Gang
	rounds int32
}

func (t *meteredTask) Work(worker int) {
	if atomic.AddInt32(&t.rounds, 1) <= int32(t.ActualSize()) {
		t.g.Yield()
	}
}

func (t *meteredTask) CoordinatorYield() {}

func TestGangMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := gang.New("metered", 3, false, nil, promstats.New("metered", reg))
	defer g.Close()

	task := &meteredTask{TaskBase: gang.NewTaskBase("metered", 0), g: g}
	if st := g.Start(task); st != gang.StatusYielded {
		t.Fatalf("first round resolved %s, expected yielded", st)
	}
	if st := g.Continue(task); st != gang.StatusCompleted {
		t.Fatalf("second round resolved %s, expected completed", st)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gathering: %v", err)
	}
	byName := map[string][]*dto.Metric{}
	for _, mf := range mfs {
		byName[mf.GetName()] = mf.GetMetric()
	}

	started := byName["ember_gang_"+promstats.MetricRoundsStarted]
	if len(started) != 1 || started[0].GetCounter().GetValue() != 2 {
		t.Fatalf("rounds started = %v, expected one series at 2", started)
	}
	for _, m := range byName["ember_gang_"+promstats.MetricRoundsResolved] {
		outcome := ""
		gangLabel := ""
		for _, p := range m.GetLabel() {
			switch p.GetName() {
			case "outcome":
				outcome = p.GetValue()
			case "gang":
				gangLabel = p.GetValue()
			}
		}
		if gangLabel != "metered" {
			t.Fatalf("resolved series carries gang label %q", gangLabel)
		}
		if v := m.GetCounter().GetValue(); v != 1 {
			t.Fatalf("outcome %q resolved %v times, expected 1", outcome, v)
		}
		if outcome != gang.StatusYielded.String() && outcome != gang.StatusCompleted.String() {
			t.Fatalf("unexpected outcome series %q", outcome)
		}
	}

	active := byName["ember_gang_"+promstats.MetricActiveWorkers]
	if len(active) != 1 || active[0].GetGauge().GetValue() != 3 {
		t.Fatalf("active workers gauge = %v, expected 3", active)
	}
	yielded := byName["ember_gang_"+promstats.MetricYieldedWorkers]
	if len(yielded) != 1 || yielded[0].GetGauge().GetValue() != 0 {
		t.Fatalf("yielded workers gauge = %v, expected 0 after completion", yielded)
	}
}
