// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source handed to code that stamps events.
// Production code injects Real(); tests inject Fake() and move time
// explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by time.Now.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
