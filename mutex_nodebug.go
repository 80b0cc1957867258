// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

//go:build !lockdebug
// +build !lockdebug

package ember

import "sync"

const LockDebug = false

// Mutex is a runtime mutex. Without the lockdebug build tag it is a
// plain sync.Mutex; no owner bookkeeping, no extra cost.
type Mutex struct {
	mu sync.Mutex
}

func (m *Mutex) Lock()   { m.mu.Lock() }
func (m *Mutex) Unlock() { m.mu.Unlock() }

// Held always reports false in non-debug builds; only the lockdebug
// verifier reads it.
func (m *Mutex) Held() bool { return false }

// Owner always returns nil in non-debug builds.
func (m *Mutex) Owner() *Thread { return nil }

// OwnedBySelf always reports false in non-debug builds.
func (m *Mutex) OwnedBySelf() bool { return false }
