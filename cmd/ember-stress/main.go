// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

// ember-stress drives a gang through a partitioned sweep so scheduler
// changes can be exercised under load from the command line.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/embergc/ember"
	"github.com/embergc/ember/gang"
	"github.com/embergc/ember/logger"
	"github.com/embergc/ember/promstats"
)

type stressConfig struct {
	workers    int
	request    int
	items      int
	chunk      int
	abortAfter int
	verbose    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	conf := &stressConfig{}
	cmd := &cobra.Command{
		Use:          "ember-stress",
		Short:        "run a yielding sweep across a worker gang",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(conf)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&conf.workers, "workers", 4, "gang size")
	flags.IntVar(&conf.request, "request", 0, "workers to request per dispatch, 0 for the whole gang")
	flags.IntVar(&conf.items, "items", 100000, "items to sweep")
	flags.IntVar(&conf.chunk, "chunk", 1000, "items per worker per round before yielding")
	flags.IntVar(&conf.abortAfter, "abort-after", 0, "abort the task after this many yielded rounds, 0 to run to completion")
	flags.BoolVar(&conf.verbose, "verbose", false, "debug logging")
	return cmd
}

func runStress(conf *stressConfig) error {
	if conf.workers < 1 {
		return errors.Errorf("need at least one worker, got %d", conf.workers)
	}
	if conf.items < 1 || conf.chunk < 1 {
		return errors.Errorf("items and chunk must be positive")
	}

	log := logger.Logger(logger.NewStandardLogger(os.Stderr))
	if conf.verbose {
		log = logger.NewVerboseLogger(os.Stderr)
	}

	ember.RegisterCoordinator("ember-stress")
	defer ember.ResetRuntime()
	ember.SetParallelWorkers(conf.workers)
	ember.SetReady()

	reg := prometheus.NewRegistry()
	g := gang.New("stress", conf.workers, false, log, promstats.New("stress", reg))
	defer g.Close()

	task := newSweepTask(g, conf.request, conf.items, conf.chunk)
	begin := time.Now()
	st := g.Start(task)
	rounds := 1
	for st == gang.StatusYielded {
		if conf.abortAfter > 0 && rounds >= conf.abortAfter {
			g.Abort()
			st = task.Status()
			break
		}
		st = g.Continue(task)
		rounds++
	}
	elapsed := time.Since(begin)

	log.Infof("task %q: %s after %d rounds in %v, %d/%d items swept, %d coordinator yields",
		task.Name(), st, rounds, elapsed, task.swept(), conf.items, task.compactions)
	if st == gang.StatusCompleted && task.swept() != conf.items {
		return errors.Errorf("completed with %d of %d items swept", task.swept(), conf.items)
	}

	mfs, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Printf("%s%s %v\n", mf.GetName(), labelString(m.GetLabel()), m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Printf("%s%s %v\n", mf.GetName(), labelString(m.GetLabel()), m.GetGauge().GetValue())
			}
		}
	}
	return nil
}

func labelString(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	s := "{"
	for i, p := range pairs {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return s + "}"
}

// sweepTask touches every item in a range once, split into disjoint
// per-worker partitions, yielding after each worker's chunk allowance.
type sweepTask struct {
	gang.TaskBase
	g     *gang.Gang
	items int
	chunk int

	mu          sync.Mutex
	next        []int
	sweptCount  int
	compactions int
}

func newSweepTask(g *gang.Gang, request, items, chunk int) *sweepTask {
	return &sweepTask{
		TaskBase: gang.NewTaskBase("sweep", request),
		g:        g,
		items:    items,
		chunk:    chunk,
		next:     make([]int, g.TotalWorkers()),
	}
}

func (t *sweepTask) partition(w int) (lo, hi int) {
	n := t.ActualSize()
	per := (t.items + n - 1) / n
	lo = w * per
	if lo > t.items {
		lo = t.items
	}
	hi = lo + per
	if hi > t.items {
		hi = t.items
	}
	return lo, hi
}

func (t *sweepTask) Work(w int) {
	lo, hi := t.partition(w)
	t.mu.Lock()
	if t.next[w] < lo {
		t.next[w] = lo
	}
	t.mu.Unlock()
	done := 0
	for {
		if t.ShouldAbort() || t.ShouldYield() {
			return
		}
		t.mu.Lock()
		i := t.next[w]
		if i >= hi {
			t.mu.Unlock()
			return
		}
		t.next[w] = i + 1
		t.sweptCount++
		t.mu.Unlock()
		done++
		if done >= t.chunk {
			t.g.Yield()
			return
		}
	}
}

// CoordinatorYield stands in for the round compaction a real phase
// would do between rounds.
func (t *sweepTask) CoordinatorYield() {
	t.mu.Lock()
	t.compactions++
	t.mu.Unlock()
}

func (t *sweepTask) swept() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sweptCount
}
