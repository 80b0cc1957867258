// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package gang

import (
	"fmt"

	"github.com/glycerine/idem"

	"github.com/embergc/ember"
)

// worker is one gang member: a goroutine identified by its immutable
// (gang, index) pair. It never decides to yield or abort on its own;
// those decisions happen inside the task's callback, which the worker
// merely hosts.
type worker struct {
	gang *Gang
	id   int
	seq  uint64
	halt *idem.Halter
}

func newWorker(g *Gang, id int) *worker {
	return &worker{gang: g, id: id, halt: idem.NewHalter()}
}

func (w *worker) name() string {
	kind := "worker"
	if w.gang.collectorThreads {
		kind = "collector-worker"
	}
	return fmt.Sprintf("%s-%s-%d", w.gang.name, kind, w.id)
}

// loop runs for the life of the gang: park on the monitor, wake when a
// dispatch sequence bump includes this worker in the grant, run the
// task's callback for this index, report through the single monitored
// path, park again.
func (w *worker) loop() {
	defer w.halt.MarkDone()
	ember.Register(ember.KindWorker, w.name())
	defer ember.Unregister()

	g := w.gang
	g.mu.Lock()
	for {
		for !g.terminated && !(g.task != nil && g.seq != w.seq && w.id < g.active) {
			g.cond.Wait()
		}
		if g.terminated {
			g.mu.Unlock()
			return
		}
		w.seq = g.seq
		t := g.task
		g.mu.Unlock()

		t.Work(w.id)

		g.mu.Lock()
		g.reportLocked(t)
	}
}
