// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package ember_test

import (
	"testing"
	"time"

	"github.com/embergc/ember"
)

func TestTokenHandoff(t *testing.T) {
	defer ember.ResetRuntime()
	ember.RegisterCoordinator("coord")
	defer ember.Unregister()
	tk := ember.NewToken()

	tk.Acquire()
	if !tk.HeldByCoordinator() {
		t.Fatal("token not held by coordinator after acquire")
	}
	if tk.HeldByCollector() {
		t.Fatal("token reported held by an unregistered collector")
	}

	// The collector blocks on Acquire until the coordinator lets go.
	got := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ember.RegisterCollector("collector")
		defer ember.Unregister()
		tk.Acquire()
		close(got)
		tk.Release()
	}()
	select {
	case <-got:
		t.Fatal("collector acquired a held token")
	case <-time.After(20 * time.Millisecond):
	}
	tk.Release()
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("collector never acquired the released token")
	}
	<-done
}

func TestTokenOrdinaryAcquireIsFatal(t *testing.T) {
	defer ember.ResetRuntime()
	tk := ember.NewToken()
	defer func() {
		if _, ok := recover().(ember.ProtocolError); !ok {
			t.Fatal("expected a protocol violation")
		}
	}()
	tk.Acquire()
}

func TestTokenReleaseWithoutHoldIsFatal(t *testing.T) {
	defer ember.ResetRuntime()
	ember.RegisterCoordinator("coord")
	defer ember.Unregister()
	tk := ember.NewToken()
	defer func() {
		if _, ok := recover().(ember.ProtocolError); !ok {
			t.Fatal("expected a protocol violation")
		}
	}()
	tk.Release()
}

func TestCollectionTokenIsProcessWide(t *testing.T) {
	defer ember.ResetRuntime()
	ember.RegisterCoordinator("coord")
	defer ember.Unregister()
	tk := ember.CollectionToken()
	tk.Acquire()
	if !ember.CollectionToken().HeldByCoordinator() {
		t.Fatal("the process-wide token is not shared")
	}
	tk.Release()
}
