// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that records timestamps (upload start, last progress) takes a
// Clock instead of calling time.Now directly:
//
//	session, err := upload.NewSession(upload.SessionConfig{
//	    ID:    "upload-1",
//	    Clock: clock.Real(),
//	})
//
// Tests pass a FakeClock and move it explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	// ...
//	c.Advance(5 * time.Second)
package clock
