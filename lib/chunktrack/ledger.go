// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunktrack

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Range is one entry of the gap ledger. Start has been handled; the
// ids strictly between Start and End have not. When Open is set the
// range has no upper bound and End is meaningless (always zero).
type Range struct {
	Start int64 `json:"start"`
	End   int64 `json:"end,omitempty"`
	Open  bool  `json:"open,omitempty"`
}

// contains reports whether id is an interior (unhandled) slot of r.
func (r Range) contains(id int64) bool {
	if id <= r.Start {
		return false
	}
	return r.Open || id < r.End
}

// String renders the range in half-open interval notation.
func (r Range) String() string {
	if r.Open {
		return fmt.Sprintf("[%d, +inf)", r.Start)
	}
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Span is an inclusive run of unhandled ids [First, Last]. When
// Unbounded is set the run continues forever and Last is zero.
type Span struct {
	First     int64 `json:"first"`
	Last      int64 `json:"last,omitempty"`
	Unbounded bool  `json:"unbounded,omitempty"`
}

// String renders the span as "first-last", "id", or "first-".
func (s Span) String() string {
	switch {
	case s.Unbounded:
		return fmt.Sprintf("%d-", s.First)
	case s.First == s.Last:
		return fmt.Sprintf("%d", s.First)
	default:
		return fmt.Sprintf("%d-%d", s.First, s.Last)
	}
}

// ledger is the ordered gap list. The tail entry is always open.
type ledger []Range

func newLedger(initial int64) ledger {
	return ledger{{Start: initial, Open: true}}
}

// find returns the index of the range whose interior contains id, or
// -1 when id is not an unhandled slot of any range.
func (l ledger) find(id int64) int {
	// First range with Start >= id; the candidate is the one before.
	index := sort.Search(len(l), func(i int) bool { return l[i].Start >= id })
	if index == 0 {
		return -1
	}
	if !l[index-1].contains(id) {
		return -1
	}
	return index - 1
}

// mark records id as handled. Returns false when no range contains id.
func (l *ledger) mark(id int64) bool {
	index := l.find(id)
	if index < 0 {
		return false
	}

	entries := *l
	current := entries[index]
	atLower := id == current.Start+1
	atUpper := !current.Open && id == current.End-1

	switch {
	case atLower && atUpper:
		*l = slices.Delete(entries, index, index+1)
	case atLower:
		entries[index].Start = id
	case atUpper:
		entries[index].End = id
	default:
		tail := Range{Start: id, End: current.End, Open: current.Open}
		entries[index] = Range{Start: current.Start, End: id}
		*l = slices.Insert(entries, index+1, tail)
	}
	return true
}

// spans converts the ledger to inclusive runs of unhandled ids,
// stopping after limit runs when limit is positive.
func (l ledger) spans(limit int) []Span {
	var result []Span
	for _, entry := range l {
		if limit > 0 && len(result) == limit {
			break
		}
		if entry.Open {
			if entry.Start == math.MaxInt64 {
				break
			}
			result = append(result, Span{First: entry.Start + 1, Unbounded: true})
			continue
		}
		result = append(result, Span{First: entry.Start + 1, Last: entry.End - 1})
	}
	return result
}
