// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package gang

// Stats receives gang lifecycle observations. The gang calls these with
// its monitor held, so implementations must be cheap and must not call
// back into the gang.
type Stats interface {
	// RoundStarted reports a dispatch (Start or Continue) releasing the
	// given number of workers.
	RoundStarted(workers int)
	// RoundResolved reports the coordination barrier returning with the
	// task in the given state: Yielded, Aborted, or Completed.
	RoundResolved(outcome Status)
	// Workers reports the gang's accounting after a dispatch or a
	// barrier: how many workers the current task owns and how many of
	// them are parked at their yield point.
	Workers(active, yielded int)
}

// NopStats is a Stats that doesn't do anything.
var NopStats Stats = nopStats{}

type nopStats struct{}

func (nopStats) RoundStarted(workers int)     {}
func (nopStats) RoundResolved(outcome Status) {}
func (nopStats) Workers(active, yielded int)  {}
