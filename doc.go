// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

// Package ember holds the thread and lock model shared by the ember
// collector runtime. It knows which goroutine is the coordinator, which
// one is the concurrent collector, and which ones are gang workers, and
// it owns the coarse collection token and the runtime Mutex type whose
// ownership the lockcheck package verifies.
//
// Goroutines stand in for the threads of the original runtime. A
// goroutine that participates in collection registers itself here; the
// registry classifies every other goroutine as ordinary. The coordinator
// and the collector are process-wide singletons: set once when the
// runtime comes up, read-only afterwards, and torn down with the
// runtime.
package ember
