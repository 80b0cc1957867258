// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

//go:build lockdebug
// +build lockdebug

package lockcheck

import "github.com/embergc/ember"

// Enabled reports whether lock verification is compiled in.
const Enabled = true

// AssertLocked checks that the calling thread may touch a structure
// protected by lock. A nil lock means the structure is lock-free and
// covered by the coarse collection token. sublock, when non-nil, guards
// a narrower sub-structure under the same umbrella; it is checked
// against the race where a worker holds the sub-lock while the caller
// believes it has exclusive access through the umbrella lock.
//
// Inert until the runtime reports fully initialized. Any violation is a
// logic defect and halts the process.
func AssertLocked(lock, sublock *ember.Mutex) {
	if !ember.Ready() {
		return
	}
	me := ember.Current()

	if lock == nil {
		if sublock != nil {
			ember.Fatalf("lockcheck: sublock supplied for a token-protected structure")
		}
		token := ember.CollectionToken()
		switch {
		case me.IsCollector():
			// If there are ever peer collector threads this needs to
			// change; for now the designated collector is the only one.
			if !ember.IsTheCollector(me) {
				ember.Fatalf("lockcheck: collector-kind thread %q is not the designated collector", me.Name())
			}
			if !token.HeldByCollector() {
				ember.Fatalf("lockcheck: collector thread %q should hold the collection token", me.Name())
			}
		case me.IsCoordinator():
			if !token.HeldByCoordinator() {
				ember.Fatalf("lockcheck: coordinator thread %q should hold the collection token", me.Name())
			}
		case me.IsWorker():
			// The token is held on the worker's behalf by the
			// coordinator or the collector; there is not enough easily
			// testable state to say which.
		default:
			ember.Fatalf("lockcheck: %s thread %q touching a token-protected structure", me.Kind(), me.Name())
		}
		return
	}

	if ember.ParallelWorkers() == 0 {
		assertLockStrong(lock, me)
		return
	}

	switch {
	case me.IsCoordinator(), me.IsCollector(), me.IsOrdinary():
		assertLockStrong(lock, me)
		if sublock != nil {
			if sublock.Held() && !sublock.OwnedBySelf() {
				ember.Fatalf("lockcheck: possible race, sublock held elsewhere while %s thread %q holds the umbrella lock",
					me.Kind(), me.Name())
			}
		}
	case me.IsWorker():
		// Delegation rule: the worker's access is inherited from the
		// thread that dispatched its task.
		owner := lock.Owner()
		if !owner.Is(ember.CoordinatorThread()) && !owner.Is(ember.CollectorThread()) {
			ember.Fatalf("lockcheck: lock should be held by the coordinator or the collector on behalf of worker %q", me.Name())
		}
	default:
		ember.Fatalf("lockcheck: unreachable thread role %s for %q", me.Kind(), me.Name())
	}
}

func assertLockStrong(lock *ember.Mutex, me *ember.Thread) {
	if !lock.OwnedBySelf() {
		ember.Fatalf("lockcheck: %s thread %q does not hold the lock", me.Kind(), me.Name())
	}
}
