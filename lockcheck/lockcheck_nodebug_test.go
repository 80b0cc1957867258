// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

//go:build !lockdebug
// +build !lockdebug

package lockcheck_test

import (
	"testing"

	"github.com/embergc/ember"
	"github.com/embergc/ember/lockcheck"
)

// Without the lockdebug tag the check must observe nothing and change
// nothing, even for calls that would be violations.
func TestAssertLockedIsInert(t *testing.T) {
	defer ember.ResetRuntime()
	ember.SetParallelWorkers(4)
	ember.SetReady()
	if lockcheck.Enabled {
		t.Fatal("verifier compiled in without the lockdebug tag")
	}
	var mu, sub ember.Mutex
	lockcheck.AssertLocked(nil, nil)
	lockcheck.AssertLocked(&mu, nil)
	lockcheck.AssertLocked(&mu, &sub)
	lockcheck.AssertLocked(nil, &sub)
}
