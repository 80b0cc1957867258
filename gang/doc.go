// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

// Package gang runs one collection task across a fixed set of worker
// goroutines, with cooperative suspension.
//
// To understand this, start with what the collector needs: a marking or
// sweeping phase is one logical task, but it is executed by N workers,
// each taking a slice of the work by index. The phase runs concurrently
// with the application, so the collector must be able to ask the whole
// gang to get out of the way ("yield") when the application needs the
// heap, and later pick the phase back up exactly where it left off. It
// must also be able to give the phase up entirely ("abort"), for
// example when a full stop-the-world collection supersedes it.
//
// Suspension is cooperative. The task's Work callback checks ShouldYield
// and ShouldAbort at checkpoints of its own choosing and returns when
// one is set, keeping whatever continuation state it needs to resume. A
// task that never checks can make the gang unresponsive to yield and
// abort requests; that is the contract, not a bug this package papers
// over. There is no preemption and no timeout, matching the trust model
// of an in-process runtime facility.
//
// One round runs from a Start or Continue call to the moment the
// coordination barrier resolves: every released worker has reported
// back, and the task is Yielded, Aborted, or Completed. The caller of
// Start/Continue is blocked for the whole round. Between rounds the
// workers are parked on the gang's monitor, not spinning.
//
// Misusing the gang -- dispatching over a busy gang, continuing a task
// that isn't yielded, aborting with nothing running -- is a logic
// defect in the collector, and the gang halts the process on it rather
// than returning an error. The one deliberate exception: re-dispatching
// a finished task returns immediately with no work done, so a caller
// driving a task round by round needs no special case for the final
// round.
package gang
