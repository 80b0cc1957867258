// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package gang

import (
	"sync/atomic"

	"github.com/embergc/ember"
)

// Task is one unit of distributable, yield/abort-aware work. Concrete
// tasks embed a TaskBase and supply Work and CoordinatorYield; they may
// shadow Yield and Abort to add bookkeeping, delegating to the TaskBase
// methods after their own work.
//
// The interface is closed: the unexported base method means only types
// embedding a TaskBase can satisfy it. Everything the coordinator needs
// that callers and tasks must not touch -- status transitions, gang
// attachment, the granted size -- lives on TaskBase's unexported method
// set, reachable only inside this package.
type Task interface {
	// Name identifies the task in logs and protocol violations.
	Name() string

	// Work is invoked by exactly one worker with that worker's index,
	// concurrently across indices 0..ActualSize()-1, once per round.
	// It must check ShouldYield/ShouldAbort at checkpoints and return
	// promptly when one is set, leaving enough state behind for the
	// next round's Work call to resume. No ordering holds between
	// indices.
	Work(worker int)

	// Yield charges one parked worker to the gang's yield accounting.
	// The gang invokes it, with the gang monitor held, for each worker
	// whose Work returned while a yield was pending; the worker then
	// stays parked at its station until the task is continued or
	// aborted. Shadowing implementations must delegate to TaskBase.
	Yield()

	// Abort mirrors Yield for the abort path: cleanup hook first, then
	// delegate to TaskBase.
	Abort()

	// CoordinatorYield runs single-caller bookkeeping for a yielded
	// round, e.g. compacting the round's result. The coordinator calls
	// it exactly once per yielded round, after every worker has parked
	// and before Start/Continue returns, so before any worker can
	// resume.
	CoordinatorYield()

	Status() Status
	RequestedSize() int
	ActualSize() int

	base() *TaskBase
}

// TaskBase carries the state every task shares: status, the owning
// gang, and the requested and granted worker counts. Embed it by value.
type TaskBase struct {
	name      string
	status    int32 // Status; transitions only under the gang monitor
	gang      *Gang
	requested int
	actual    int
}

// NewTaskBase returns a TaskBase for a task that wants the given number
// of workers. Requested size zero asks for the whole gang.
func NewTaskBase(name string, requested int) TaskBase {
	return TaskBase{name: name, status: int32(StatusInactive), requested: requested}
}

func (tb *TaskBase) Name() string { return tb.name }

// Status returns the task's current state. Safe from any goroutine;
// Work checkpoints read it on every iteration.
func (tb *TaskBase) Status() Status {
	return Status(atomic.LoadInt32(&tb.status))
}

// RequestedSize is the worker count the task asked for.
func (tb *TaskBase) RequestedSize() int { return tb.requested }

// ActualSize is the worker count the coordinator granted for the
// current invocation. Zero before the first dispatch.
func (tb *TaskBase) ActualSize() int { return tb.actual }

func (tb *TaskBase) Yielded() bool   { return tb.Status() == StatusYielded }
func (tb *TaskBase) Completed() bool { return tb.Status() == StatusCompleted }
func (tb *TaskBase) Aborted() bool   { return tb.Status() == StatusAborted }
func (tb *TaskBase) Active() bool    { return tb.Status() == StatusActive }

// ShouldYield reports whether a yield request is pending. Work
// callbacks consult it at their checkpoints.
func (tb *TaskBase) ShouldYield() bool { return tb.Status() == StatusYielding }

// ShouldAbort reports whether an abort request is pending.
func (tb *TaskBase) ShouldAbort() bool { return tb.Status() == StatusAborting }

// Yield is the base yield behavior: per-worker yield accounting. The
// gang calls it on the worker report path with the monitor held; it
// must not call back into the gang's public operations.
func (tb *TaskBase) Yield() {
	if tb.gang == nil {
		ember.Fatalf("task %q: yield with no gang attached", tb.name)
	}
	tb.gang.yieldOneLocked()
}

// Abort is the base abort behavior. The unwind accounting happens on
// the worker report path, so there is nothing to charge here; the
// method exists so shadowing tasks have a base to delegate to.
func (tb *TaskBase) Abort() {
	if tb.gang == nil {
		ember.Fatalf("task %q: abort with no gang attached", tb.name)
	}
}

func (tb *TaskBase) base() *TaskBase { return tb }

// setStatus is the coordinator-only transition point. Callers hold the
// gang monitor; the atomic store is for the checkpoint readers.
func (tb *TaskBase) setStatus(s Status) {
	atomic.StoreInt32(&tb.status, int32(s))
}

func (tb *TaskBase) setGang(g *Gang) {
	if tb.gang != nil && g != nil {
		ember.Fatalf("task %q: gang attached without intermediate reset", tb.name)
	}
	tb.gang = g
}

func (tb *TaskBase) setActualSize(n int) { tb.actual = n }
