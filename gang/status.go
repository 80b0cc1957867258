// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package gang

// Status is the lifecycle state of a task. A task starts Inactive, is
// driven Active by dispatch, and ends in exactly one of the terminal
// states Completed or Aborted. The coordinator owns every transition;
// tasks and workers only observe.
type Status int32

const (
	StatusInactive Status = iota
	StatusActive
	StatusYielding
	StatusYielded
	StatusAborting
	StatusAborted
	StatusCompleting
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	case StatusYielding:
		return "yielding"
	case StatusYielded:
		return "yielded"
	case StatusAborting:
		return "aborting"
	case StatusAborted:
		return "aborted"
	case StatusCompleting:
		return "completing"
	case StatusCompleted:
		return "completed"
	}
	return "unknown"
}

// Terminal reports whether s ends a task's life for this invocation.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted
}
