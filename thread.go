// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package ember

import (
	"sync"

	"github.com/petermattis/goid"
)

// Kind classifies a thread's role in the collection protocol.
type Kind int32

const (
	// KindOrdinary is any goroutine the runtime doesn't know about,
	// e.g. an application thread during a stop-the-world pause.
	KindOrdinary Kind = iota
	// KindCoordinator is the single thread that dispatches collection
	// tasks for the whole runtime.
	KindCoordinator
	// KindCollector is the dedicated background thread running an
	// incremental collection phase.
	KindCollector
	// KindWorker is a gang member executing task callbacks.
	KindWorker
)

func (k Kind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindCoordinator:
		return "coordinator"
	case KindCollector:
		return "collector"
	case KindWorker:
		return "worker"
	}
	return "unknown"
}

// Thread is the handle for a registered goroutine. The handle is
// immutable after registration; the registry maps goroutine ids to
// handles so the current thread's role can be derived at any call site.
type Thread struct {
	kind Kind
	name string
	gid  int64
}

func (t *Thread) Kind() Kind   { return t.kind }
func (t *Thread) Name() string { return t.name }

func (t *Thread) IsCoordinator() bool { return t.kind == KindCoordinator }
func (t *Thread) IsCollector() bool   { return t.kind == KindCollector }
func (t *Thread) IsWorker() bool      { return t.kind == KindWorker }
func (t *Thread) IsOrdinary() bool    { return t.kind == KindOrdinary }

// Is reports whether t and o name the same thread. Registered handles
// are unique per goroutine, but ordinary handles are minted per call,
// so identity goes through the goroutine id rather than the pointer.
func (t *Thread) Is(o *Thread) bool {
	return t != nil && o != nil && t.gid == o.gid
}

var threads = struct {
	mu sync.RWMutex
	m  map[int64]*Thread
}{m: make(map[int64]*Thread)}

// Register marks the calling goroutine as a thread of the given kind.
// A goroutine registers at most once; the returned handle stays valid
// until Unregister.
func Register(kind Kind, name string) *Thread {
	gid := goid.Get()
	t := &Thread{kind: kind, name: name, gid: gid}
	threads.mu.Lock()
	defer threads.mu.Unlock()
	if prev, ok := threads.m[gid]; ok {
		Fatalf("goroutine %d already registered as %s %q", gid, prev.kind, prev.name)
	}
	threads.m[gid] = t
	return t
}

// Unregister removes the calling goroutine's registration.
func Unregister() {
	gid := goid.Get()
	threads.mu.Lock()
	defer threads.mu.Unlock()
	delete(threads.m, gid)
}

// Current returns the calling goroutine's thread handle. A goroutine
// that never registered gets a fresh ordinary handle carrying its
// goroutine id; use Thread.Is to compare handles. The classification is
// derived here, afresh, at each call; nothing caches it.
func Current() *Thread {
	gid := goid.Get()
	threads.mu.RLock()
	t := threads.m[gid]
	threads.mu.RUnlock()
	if t == nil {
		return &Thread{kind: KindOrdinary, name: "ordinary", gid: gid}
	}
	return t
}

var runtimeState struct {
	mu              sync.RWMutex
	coordinator     *Thread
	collector       *Thread
	ready           bool
	parallelWorkers int
}

// RegisterCoordinator registers the calling goroutine as the runtime's
// coordinator thread. There is exactly one; registering a second is a
// protocol violation.
func RegisterCoordinator(name string) *Thread {
	t := Register(KindCoordinator, name)
	runtimeState.mu.Lock()
	defer runtimeState.mu.Unlock()
	if runtimeState.coordinator != nil {
		Fatalf("coordinator thread already registered as %q", runtimeState.coordinator.name)
	}
	runtimeState.coordinator = t
	return t
}

// RegisterCollector registers the calling goroutine as the runtime's
// singleton concurrent-collector thread. Set once when the collector
// thread is created, read-only thereafter.
func RegisterCollector(name string) *Thread {
	t := Register(KindCollector, name)
	runtimeState.mu.Lock()
	defer runtimeState.mu.Unlock()
	if runtimeState.collector != nil {
		Fatalf("collector thread already registered as %q", runtimeState.collector.name)
	}
	runtimeState.collector = t
	return t
}

// CoordinatorThread returns the registered coordinator thread, or nil.
func CoordinatorThread() *Thread {
	runtimeState.mu.RLock()
	defer runtimeState.mu.RUnlock()
	return runtimeState.coordinator
}

// CollectorThread returns the designated collector thread, or nil.
func CollectorThread() *Thread {
	runtimeState.mu.RLock()
	defer runtimeState.mu.RUnlock()
	return runtimeState.collector
}

// IsTheCollector reports whether t is the designated collector thread.
// There is only one concurrent collector thread in this runtime; a
// collector-kind thread that is not the registered singleton is a
// protocol violation waiting to be caught.
func IsTheCollector(t *Thread) bool {
	return t.Is(CollectorThread())
}

// SetParallelWorkers records how many parallel gang workers the runtime
// is configured with. Zero means single-threaded collection, which
// relaxes nothing: it means the thread touching a guarded structure
// must hold its lock directly.
func SetParallelWorkers(n int) {
	runtimeState.mu.Lock()
	runtimeState.parallelWorkers = n
	runtimeState.mu.Unlock()
}

// ParallelWorkers returns the configured parallel gang worker count.
func ParallelWorkers() int {
	runtimeState.mu.RLock()
	defer runtimeState.mu.RUnlock()
	return runtimeState.parallelWorkers
}

// SetReady marks the runtime fully initialized. Lock verification is
// inert before this point, mirroring startup where locking discipline
// is not yet established.
func SetReady() {
	runtimeState.mu.Lock()
	runtimeState.ready = true
	runtimeState.mu.Unlock()
}

// Ready reports whether the runtime finished initializing.
func Ready() bool {
	runtimeState.mu.RLock()
	defer runtimeState.mu.RUnlock()
	return runtimeState.ready
}

// ResetRuntime tears down the thread registry, the singletons, the
// ready gate, and the collection token. Runtime shutdown and tests use
// it; nothing may hold a handle across a reset.
func ResetRuntime() {
	threads.mu.Lock()
	threads.m = make(map[int64]*Thread)
	threads.mu.Unlock()
	runtimeState.mu.Lock()
	runtimeState.coordinator = nil
	runtimeState.collector = nil
	runtimeState.ready = false
	runtimeState.parallelWorkers = 0
	runtimeState.mu.Unlock()
	collectionToken.reset()
}
