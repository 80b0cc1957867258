// Copyright 2023 The Ember Authors.
// SPDX-License-Identifier: Apache-2.0
package ember

import "fmt"

// ProtocolError reports a violation of the runtime's concurrency
// protocol: dispatching over a busy gang, an unentitled thread touching
// a guarded structure, releasing a token that isn't held. These are
// logic defects in the collector, not recoverable conditions, so they
// are raised as panics; an unrecovered panic in a worker goroutine
// halts the process at the first violation.
type ProtocolError struct {
	msg string
}

func (e ProtocolError) Error() string { return e.msg }

// Fatalf raises a ProtocolError.
func Fatalf(format string, args ...interface{}) {
	panic(ProtocolError{msg: fmt.Sprintf(format, args...)})
}

// Assert raises a ProtocolError unless cond holds.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		Fatalf(format, args...)
	}
}
