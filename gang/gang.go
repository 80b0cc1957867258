// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package gang

import (
	"sync"

	"github.com/embergc/ember"
	"github.com/embergc/ember/logger"
)

// Gang coordinates a fixed set of long-lived worker goroutines around
// one task at a time. A single monitor (mu + cond) guards the attached
// task, the dispatch sequence number, and the worker accounting; every
// worker report and every coordinator wait goes through it, which is
// what makes the coordination barrier race-free: a report and the
// beginning of a wait cannot interleave in a way that loses the report.
type Gang struct {
	name             string
	log              logger.Logger
	stats            Stats
	collectorThreads bool

	mu   sync.Mutex
	cond *sync.Cond

	workers []*worker
	task    Task

	// seq is bumped once per dispatch; a worker runs one Work call per
	// sequence number it observes while inside the grant.
	seq uint64

	// active is the number of workers granted to the current task,
	// yielded the number of them parked at their yield point, and
	// outstanding the number released this round that have not yet
	// reported. 0 <= yielded <= active <= len(workers) always.
	active      int
	yielded     int
	outstanding int

	terminated bool
}

// New creates a gang with the given number of workers and starts them;
// they park until a task is dispatched. The collectorThreads flag tags
// the workers as owned by the concurrent collector, which changes their
// registered names and nothing else about scheduling. A nil log or
// stats falls back to the no-op implementation.
func New(name string, workers int, collectorThreads bool, log logger.Logger, stats Stats) *Gang {
	if workers < 1 {
		ember.Fatalf("gang %q: created with %d workers", name, workers)
	}
	if log == nil {
		log = logger.NopLogger
	}
	if stats == nil {
		stats = NopStats
	}
	g := &Gang{
		name:             name,
		log:              log,
		stats:            stats,
		collectorThreads: collectorThreads,
	}
	g.cond = sync.NewCond(&g.mu)
	g.workers = make([]*worker, workers)
	for i := range g.workers {
		g.workers[i] = newWorker(g, i)
	}
	for _, w := range g.workers {
		go w.loop()
	}
	return g
}

func (g *Gang) Name() string { return g.name }

// TotalWorkers is the gang's fixed size.
func (g *Gang) TotalWorkers() int { return len(g.workers) }

// ActiveWorkers is the number of workers granted to the current task.
// Meaningful only after a dispatch barrier has returned.
func (g *Gang) ActiveWorkers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// YieldedWorkers is the number of granted workers parked at their yield
// point. Meaningful only after a dispatch barrier has returned, where
// it is either 0 or equal to ActiveWorkers.
func (g *Gang) YieldedWorkers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.yielded
}

// Start dispatches task to the gang and blocks until the round
// resolves: the task yielded, aborted, or completed. The grant is
// min(task.RequestedSize, TotalWorkers), the whole gang if the task
// requested zero. Dispatching while another task is attached is a
// protocol violation. Starting a task that already finished returns its
// terminal status immediately with no work done.
func (g *Gang) Start(t Task) Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.terminated {
		ember.Fatalf("gang %q: start after close", g.name)
	}
	if g.task != nil {
		ember.Fatalf("gang %q: task %q dispatched while %q is attached", g.name, t.Name(), g.task.Name())
	}
	tb := t.base()
	switch tb.Status() {
	case StatusInactive:
	case StatusCompleted, StatusAborted:
		return tb.Status()
	default:
		ember.Fatalf("gang %q: start of task %q in state %s", g.name, t.Name(), tb.Status())
	}

	actual := tb.RequestedSize()
	if actual <= 0 || actual > len(g.workers) {
		actual = len(g.workers)
	}
	ember.Assert(actual > 0, "gang %q: zero workers granted to task %q", g.name, t.Name())

	tb.setGang(g)
	tb.setActualSize(actual)
	g.task = t
	g.active = actual
	g.yielded = 0
	g.dispatchLocked(t)
	return g.waitForGangLocked(t)
}

// Continue resumes a yielded task, re-releasing the same granted
// workers, and blocks like Start until the next resolution. Continuing
// a completed task returns immediately with no worker released; this is
// the idempotent-resume guarantee. Any other state is a protocol
// violation.
func (g *Gang) Continue(t Task) Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	tb := t.base()
	switch tb.Status() {
	case StatusCompleted:
		return StatusCompleted
	case StatusYielded:
	default:
		ember.Fatalf("gang %q: continue of task %q in state %s", g.name, t.Name(), tb.Status())
	}
	if g.task != t {
		ember.Fatalf("gang %q: continue of task %q that is not attached here", g.name, t.Name())
	}
	g.yielded = 0
	g.dispatchLocked(t)
	return g.waitForGangLocked(t)
}

// dispatchLocked releases the granted workers for one round.
func (g *Gang) dispatchLocked(t Task) {
	tb := t.base()
	g.outstanding = g.active
	tb.setStatus(StatusActive)
	g.seq++
	g.stats.RoundStarted(g.active)
	g.stats.Workers(g.active, g.yielded)
	g.log.Debugf("gang %q: dispatch task %q, %d/%d workers", g.name, t.Name(), g.active, len(g.workers))
	g.cond.Broadcast()
}

// Yield asks every granted worker to suspend at its next checkpoint. It
// does not block; the caller of Start/Continue is already blocked until
// the round resolves. The signal may come from any thread, including
// the task's own Work callback.
func (g *Gang) Yield() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.task == nil {
		ember.Fatalf("gang %q: yield with no task dispatched", g.name)
	}
	tb := g.task.base()
	if tb.Status() == StatusActive {
		tb.setStatus(StatusYielding)
		g.log.Debugf("gang %q: yield requested for task %q", g.name, g.task.Name())
	}
	// Yielding, Yielded, or an abort in flight: nothing more to ask.
}

// Abort asks every granted worker to unwind instead of continuing, and
// blocks until the task is Aborted. Aborting with no task dispatched is
// a protocol violation.
func (g *Gang) Abort() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.task == nil {
		ember.Fatalf("gang %q: abort with no task dispatched", g.name)
	}
	t := g.task
	tb := t.base()
	switch tb.Status() {
	case StatusActive, StatusYielding:
		tb.setStatus(StatusAborting)
		g.log.Debugf("gang %q: abort requested for task %q", g.name, t.Name())
		for tb.Status() == StatusAborting {
			g.cond.Wait()
		}
	case StatusYielded:
		// Every worker is already parked; there is nothing to unwind.
		g.yielded = 0
		tb.setStatus(StatusAborted)
		g.stats.RoundResolved(StatusAborted)
		g.stats.Workers(g.active, g.yielded)
		g.detachLocked(t)
	default:
		ember.Fatalf("gang %q: abort of task %q in state %s", g.name, t.Name(), tb.Status())
	}
}

// Reset clears the worker accounting and detaches any finished task.
// Legal only when no task is running.
func (g *Gang) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.task != nil && !g.task.Status().Terminal() {
		ember.Fatalf("gang %q: reset while task %q is %s", g.name, g.task.Name(), g.task.Status())
	}
	if g.task != nil {
		g.detachLocked(g.task)
	}
	g.active = 0
	g.yielded = 0
	g.outstanding = 0
}

// Close tears the gang down: the workers unpark, unregister, and exit,
// and Close returns once the last one is gone. Closing with a task
// attached is a protocol violation.
func (g *Gang) Close() {
	g.mu.Lock()
	if g.task != nil {
		ember.Fatalf("gang %q: close while task %q is attached", g.name, g.task.Name())
	}
	g.terminated = true
	for _, w := range g.workers {
		w.halt.RequestStop()
	}
	g.cond.Broadcast()
	g.mu.Unlock()
	for _, w := range g.workers {
		<-w.halt.Done.Chan
	}
	g.log.Debugf("gang %q: closed", g.name)
}

// waitForGangLocked is the coordination barrier: it holds the caller
// until every released worker has reported, then applies the round's
// resolution. Only workers the round released are counted; a worker's
// report and this wait share the monitor, so a report cannot be missed.
func (g *Gang) waitForGangLocked(t Task) Status {
	tb := t.base()
	for g.outstanding > 0 {
		g.cond.Wait()
	}
	switch tb.Status() {
	case StatusYielding:
		// Workers that finished their round before the yield request
		// was posted are parked at the same station as the ones that
		// honored it, so the whole grant counts as yielded.
		g.yielded = g.active
		tb.setStatus(StatusYielded)
		g.stats.RoundResolved(StatusYielded)
		g.stats.Workers(g.active, g.yielded)
		g.log.Debugf("gang %q: task %q yielded with %d workers parked", g.name, t.Name(), g.yielded)
		// Single-caller bookkeeping runs on this thread, after all
		// workers parked and before any of them can resume: resumption
		// needs a new dispatch, and dispatch needs the task Yielded,
		// which it already is, so dropping the monitor here is safe.
		g.mu.Unlock()
		t.CoordinatorYield()
		g.mu.Lock()
	case StatusAborting:
		g.yielded = 0
		tb.setStatus(StatusAborted)
		g.stats.RoundResolved(StatusAborted)
		g.stats.Workers(g.active, g.yielded)
		g.log.Debugf("gang %q: task %q aborted", g.name, t.Name())
		g.detachLocked(t)
	case StatusActive:
		tb.setStatus(StatusCompleting)
		g.yielded = 0
		tb.setStatus(StatusCompleted)
		g.stats.RoundResolved(StatusCompleted)
		g.stats.Workers(g.active, g.yielded)
		g.log.Debugf("gang %q: task %q completed", g.name, t.Name())
		g.detachLocked(t)
	default:
		ember.Fatalf("gang %q: task %q in state %s at barrier", g.name, t.Name(), tb.Status())
	}
	// Wake anyone blocked in Abort waiting for the resolution.
	g.cond.Broadcast()
	return tb.Status()
}

// detachLocked severs gang and task after a terminal resolution.
func (g *Gang) detachLocked(t Task) {
	t.base().setGang(nil)
	g.task = nil
}

// reportLocked is the single synchronized report path for workers
// returning from Work. Classification happens here, under the monitor,
// by the task's state at report time: a pending yield charges the
// worker to the yield accounting, a pending abort runs the task's
// cleanup hook, and a plain return just counts the worker in. The last
// report wakes the coordinator.
func (g *Gang) reportLocked(t Task) {
	switch t.Status() {
	case StatusYielding:
		t.Yield()
	case StatusAborting:
		t.Abort()
	}
	g.outstanding--
	if g.outstanding < 0 {
		ember.Fatalf("gang %q: more worker reports than released workers", g.name)
	}
	if g.outstanding == 0 {
		g.cond.Broadcast()
	}
}

// yieldOneLocked charges one worker to the yielded count; TaskBase.Yield
// delegates here. The monitor is held by the reporting worker.
func (g *Gang) yieldOneLocked() {
	g.yielded++
	if g.yielded > g.active {
		ember.Fatalf("gang %q: %d yielded workers with %d active", g.name, g.yielded, g.active)
	}
}
