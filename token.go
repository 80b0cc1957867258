// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package ember

import "sync"

// Token is the coarse ownership marker protecting structures that carry
// no mutex of their own, e.g. the card table the concurrent collector
// scans. The coordinator and the collector hand it back and forth; a
// worker never takes it directly, its access is delegated by whichever
// of the two holds it.
type Token struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner *Thread
}

// NewToken returns an unheld token.
func NewToken() *Token {
	tk := &Token{}
	tk.cond = sync.NewCond(&tk.mu)
	return tk
}

// Acquire blocks until the token is free and takes it for the calling
// thread. Only the coordinator or the collector may hold a token.
func (tk *Token) Acquire() {
	me := Current()
	if !me.IsCoordinator() && !me.IsCollector() {
		Fatalf("%s thread %q may not take the collection token", me.kind, me.name)
	}
	tk.mu.Lock()
	defer tk.mu.Unlock()
	for tk.owner != nil {
		tk.cond.Wait()
	}
	tk.owner = me
}

// Release gives the token up. Releasing a token the calling thread does
// not hold is a protocol violation.
func (tk *Token) Release() {
	me := Current()
	tk.mu.Lock()
	defer tk.mu.Unlock()
	if !tk.owner.Is(me) {
		Fatalf("%s thread %q releasing a token it does not hold", me.kind, me.name)
	}
	tk.owner = nil
	tk.cond.Broadcast()
}

// HeldBy reports whether t currently holds the token.
func (tk *Token) HeldBy(t *Thread) bool {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return tk.owner.Is(t)
}

// HeldByCoordinator reports whether the coordinator thread holds the
// token.
func (tk *Token) HeldByCoordinator() bool {
	return tk.HeldBy(CoordinatorThread())
}

// HeldByCollector reports whether the designated collector thread holds
// the token.
func (tk *Token) HeldByCollector() bool {
	return tk.HeldBy(CollectorThread())
}

func (tk *Token) reset() {
	tk.mu.Lock()
	tk.owner = nil
	tk.mu.Unlock()
	tk.cond.Broadcast()
}

// collectionToken is the process-wide coarse token. The lock verifier
// consults it on the nil-lock path.
var collectionToken = NewToken()

// CollectionToken returns the runtime's coarse collection token.
func CollectionToken() *Token {
	return collectionToken
}
