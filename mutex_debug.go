// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

//go:build lockdebug
// +build lockdebug

package ember

import "sync"

const LockDebug = true

// Mutex is a runtime mutex. Under the lockdebug build tag it records
// which registered thread holds it, so the lock verifier can check the
// collector's locking protocol at any call site. The owner field is
// bookkeeping only; it never participates in the locking itself.
type Mutex struct {
	mu sync.Mutex

	ownerMu sync.Mutex
	owner   *Thread
}

func (m *Mutex) Lock() {
	m.mu.Lock()
	m.ownerMu.Lock()
	m.owner = Current()
	m.ownerMu.Unlock()
}

func (m *Mutex) Unlock() {
	m.ownerMu.Lock()
	m.owner = nil
	m.ownerMu.Unlock()
	m.mu.Unlock()
}

// Held reports whether any thread currently holds the mutex.
func (m *Mutex) Held() bool {
	return m.Owner() != nil
}

// Owner returns the thread currently holding the mutex, or nil. The
// answer is advisory: the lock can change hands the moment the owner
// field is read, which is fine for a verifier that only checks locks
// the caller believes are pinned by protocol.
func (m *Mutex) Owner() *Thread {
	m.ownerMu.Lock()
	defer m.ownerMu.Unlock()
	return m.owner
}

// OwnedBySelf reports whether the calling thread holds the mutex.
func (m *Mutex) OwnedBySelf() bool {
	return m.Owner().Is(Current())
}
