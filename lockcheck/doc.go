// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

// Package lockcheck verifies, at the point a shared structure is about
// to be touched, that the calling thread is entitled to touch it under
// the runtime's concurrent and parallel collection rules.
//
// The rules relax plain lock-ownership assertion for parallel
// collection: a gang worker never holds a structure's lock directly;
// its right to touch the structure is inherited from the coordinator or
// collector thread that holds the lock on its behalf. Structures with
// no lock of their own are covered by the coarse collection token.
//
// The check is diagnostic only. It is compiled in under the lockdebug
// build tag; the default build gets an empty function that changes no
// behavior and costs nothing at the call sites. A violation halts the
// process, so a concurrency bug is caught at its first occurrence
// rather than surfacing later as corruption.
package lockcheck
