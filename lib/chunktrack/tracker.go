// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunktrack

import (
	"errors"
	"math"
)

var (
	// ErrUninitialized is returned by operations that need an initial
	// id when Initialize has never been called.
	ErrUninitialized = errors.New("chunk tracker is not initialized")

	// ErrExhausted is returned by LowestMissingID once every id from
	// the initial id through math.MaxInt64 has been handled: no
	// representable id is missing.
	ErrExhausted = errors.New("every chunk id through math.MaxInt64 is handled")
)

// Tracker records handled chunk ids for one upload and reports the
// lowest id not yet handled. The zero value is an uninitialized
// tracker; call Initialize before anything else.
type Tracker struct {
	initialized bool
	initial     int64

	// initialHandled is tracked separately from the ledger: the
	// first range's Start doubles as the initial id before anything
	// has been handled, so the ledger alone cannot tell whether the
	// initial chunk arrived.
	initialHandled bool

	gaps ledger
}

// New returns a tracker initialized at initial.
func New(initial int64) *Tracker {
	tracker := &Tracker{}
	tracker.Initialize(initial)
	return tracker
}

// Initialize starts a new tracking session at id, discarding all
// previous state.
func (t *Tracker) Initialize(id int64) {
	t.initialized = true
	t.initial = id
	t.initialHandled = false
	t.gaps = newLedger(id)
}

// Initialized reports whether Initialize has been called.
func (t *Tracker) Initialized() bool {
	return t.initialized
}

// Initial returns the id the tracker was initialized with.
func (t *Tracker) Initial() (int64, error) {
	if !t.initialized {
		return 0, ErrUninitialized
	}
	return t.initial, nil
}

// Handle marks id as handled. Ids that are already handled or lie
// below the initial id are ignored.
func (t *Tracker) Handle(id int64) error {
	if !t.initialized {
		return ErrUninitialized
	}
	if id == t.initial {
		t.initialHandled = true
		return nil
	}
	t.gaps.mark(id)
	return nil
}

// Handled reports whether id has been handled. Ids below the initial
// id, and every id on an uninitialized tracker, report false.
func (t *Tracker) Handled(id int64) bool {
	if !t.initialized || id < t.initial {
		return false
	}
	if id == t.initial {
		return t.initialHandled
	}
	return t.gaps.find(id) < 0
}

// LowestMissingID returns the smallest id that has not been handled.
// Repeated calls without an intervening Handle return the same value.
func (t *Tracker) LowestMissingID() (int64, error) {
	if !t.initialized {
		return 0, ErrUninitialized
	}
	if !t.initialHandled {
		return t.initial, nil
	}
	if t.Exhausted() {
		return 0, ErrExhausted
	}
	return t.gaps[0].Start + 1, nil
}

// Exhausted reports whether every id from the initial id through
// math.MaxInt64 has been handled.
func (t *Tracker) Exhausted() bool {
	return t.initialized && t.initialHandled && t.gaps[0].Start == math.MaxInt64
}

// Gaps returns a copy of the gap ledger in ascending order. The last
// entry is always open-ended. Nil on an uninitialized tracker.
func (t *Tracker) Gaps() []Range {
	if !t.initialized {
		return nil
	}
	return append([]Range(nil), t.gaps...)
}

// Missing returns the unhandled ids as inclusive spans in ascending
// order, at most limit of them when limit is positive. The final span
// is unbounded. An unhandled initial id is folded into the first span.
func (t *Tracker) Missing(limit int) ([]Span, error) {
	if !t.initialized {
		return nil, ErrUninitialized
	}
	if t.initialHandled {
		return t.gaps.spans(limit), nil
	}

	// The initial id sits just below the first range when the first
	// range still starts at it; otherwise it stands alone.
	if t.gaps[0].Start == t.initial {
		spans := t.gaps.spans(limit)
		if len(spans) == 0 {
			return []Span{{First: t.initial, Last: t.initial}}, nil
		}
		spans[0].First = t.initial
		return spans, nil
	}
	if limit == 1 {
		return []Span{{First: t.initial, Last: t.initial}}, nil
	}
	rest := limit
	if rest > 0 {
		rest--
	}
	return append([]Span{{First: t.initial, Last: t.initial}}, t.gaps.spans(rest)...), nil
}
