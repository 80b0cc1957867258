// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0

//go:build !lockdebug
// +build !lockdebug

package lockcheck

import "github.com/embergc/ember"

// Enabled reports whether lock verification is compiled in.
const Enabled = false

// AssertLocked is a no-op without the lockdebug build tag.
func AssertLocked(lock, sublock *ember.Mutex) {}
