// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package gang

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embergc/ember"
)

func TestStatusStrings(t *testing.T) {
	cases := map[Status]string{
		StatusInactive:   "inactive",
		StatusActive:     "active",
		StatusYielding:   "yielding",
		StatusYielded:    "yielded",
		StatusAborting:   "aborting",
		StatusAborted:    "aborted",
		StatusCompleting: "completing",
		StatusCompleted:  "completed",
		Status(99):       "unknown",
	}
	for s, want := range cases {
		require.Equal(t, want, s.String())
	}
	require.True(t, StatusCompleted.Terminal())
	require.True(t, StatusAborted.Terminal())
	require.False(t, StatusYielded.Terminal())
	require.False(t, StatusInactive.Terminal())
}

func TestTaskBaseDefaults(t *testing.T) {
	tb := NewTaskBase("phase", 3)
	require.Equal(t, "phase", tb.Name())
	require.Equal(t, StatusInactive, tb.Status())
	require.Equal(t, 3, tb.RequestedSize())
	require.Equal(t, 0, tb.ActualSize())
	require.False(t, tb.Active())
	require.False(t, tb.ShouldYield())
	require.False(t, tb.ShouldAbort())
}

func TestTaskBaseGangAttachment(t *testing.T) {
	tb := NewTaskBase("attach", 1)
	g := &Gang{name: "a"}
	tb.setGang(g)
	require.PanicsWithError(t,
		`task "attach": gang attached without intermediate reset`,
		func() { tb.setGang(&Gang{name: "b"}) })
	tb.setGang(nil)
	tb.setGang(g)
}

func TestYieldAccountingOverflow(t *testing.T) {
	g := &Gang{name: "overflow", active: 1}
	g.yieldOneLocked()
	defer func() {
		r := recover()
		if _, ok := r.(ember.ProtocolError); !ok {
			t.Fatalf("expected a protocol violation, got %v", r)
		}
	}()
	g.yieldOneLocked()
}

func TestDetachedTaskYieldIsFatal(t *testing.T) {
	tb := NewTaskBase("loose", 1)
	require.Panics(t, func() { tb.Yield() })
	require.Panics(t, func() { tb.Abort() })
}
