// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	c := Fake(epoch)
	if got := c.Now(); !got.Equal(epoch) {
		t.Errorf("Now() = %v, want %v", got, epoch)
	}
}

func TestFakeClockAdvance(t *testing.T) {
	c := Fake(epoch)
	c.Advance(90 * time.Second)
	c.Advance(0)
	if got, want := c.Now(), epoch.Add(90*time.Second); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}

func TestFakeClockSet(t *testing.T) {
	c := Fake(epoch)
	target := epoch.Add(time.Hour)
	c.Set(target)
	if got := c.Now(); !got.Equal(target) {
		t.Errorf("Now() = %v, want %v", got, target)
	}
}

func TestFakeClockRejectsRewind(t *testing.T) {
	c := Fake(epoch)

	assertPanics(t, "Advance", func() { c.Advance(-time.Second) })
	assertPanics(t, "Set", func() { c.Set(epoch.Add(-time.Second)) })

	if got := c.Now(); !got.Equal(epoch) {
		t.Errorf("clock moved after rejected rewind: %v", got)
	}
}

func TestRealClockMovesForward(t *testing.T) {
	c := Real()
	first := c.Now()
	second := c.Now()
	if second.Before(first) {
		t.Errorf("real clock went backwards: %v then %v", first, second)
	}
}

func assertPanics(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	f()
}
