// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

//go:build lockdebug
// +build lockdebug

package ember_test

import (
	"testing"

	"github.com/embergc/ember"
)

func TestMutexOwnerTracking(t *testing.T) {
	defer ember.ResetRuntime()
	me := ember.Register(ember.KindWorker, "w0")
	defer ember.Unregister()

	var mu ember.Mutex
	if mu.Held() || mu.Owner() != nil {
		t.Fatal("fresh mutex reports an owner")
	}
	mu.Lock()
	if !mu.Held() || !mu.OwnedBySelf() {
		t.Fatal("locked mutex does not report its owner")
	}
	if got := mu.Owner(); got != me {
		t.Fatalf("owner is %v, expected own handle", got)
	}

	// Another goroutine sees it held, but not by itself.
	res := make(chan bool)
	go func() { res <- mu.OwnedBySelf() }()
	if <-res {
		t.Fatal("stranger goroutine claims ownership")
	}

	mu.Unlock()
	if mu.Held() || mu.OwnedBySelf() {
		t.Fatal("unlocked mutex still reports an owner")
	}
}

func TestMutexOwnerForOrdinaryGoroutine(t *testing.T) {
	defer ember.ResetRuntime()
	var mu ember.Mutex
	mu.Lock()
	defer mu.Unlock()
	// Ordinary handles are minted per call; ownership still matches
	// through the goroutine id.
	if !mu.OwnedBySelf() {
		t.Fatal("ordinary goroutine does not own its own lock")
	}
	if owner := mu.Owner(); !owner.IsOrdinary() {
		t.Fatalf("owner classified as %s", owner.Kind())
	}
}
