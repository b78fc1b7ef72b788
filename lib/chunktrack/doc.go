// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunktrack tracks which chunks of an upload have been
// handled and answers the question "what is the lowest chunk id that
// has not been handled yet?".
//
// An upload client splits a file into chunks with contiguous ids
// starting at some initial id (not necessarily zero or one). Chunks
// arrive out of order and with gaps. A [Tracker] is initialized with
// the first id and then told about every handled chunk; at any point
// [Tracker.LowestMissingID] reports the id the receiver should ask
// for next.
//
// # Gap ledger
//
// Instead of remembering every handled id, the tracker keeps a ledger
// of gaps: a sorted slice of half-open ranges [Start, End). Start is a
// handled id and the interior ids Start+1 .. End-1 are not yet
// handled. The last range has no upper bound ([Range].Open). A fresh
// ledger holds the single range [initial, +inf).
//
// Handling an id inside a range either narrows it from one side,
// removes it (when the id was its only interior slot), or splits it
// in two. The first range's Start therefore always marks the end of
// the contiguously handled prefix, so the lowest missing id is
// first.Start + 1 once the initial id itself has been handled. When
// that Start is math.MaxInt64 no representable id is missing and
// [Tracker.LowestMissingID] returns [ErrExhausted].
//
// Memory and time are proportional to the number of gaps, not the
// number of handled chunks.
//
// # Duplicates
//
// Handling an id that no range contains (already handled, or below
// the initial id) is a silent no-op: upstream transports legitimately
// redeliver acknowledgements. Callers that need to count duplicates
// can ask [Tracker.Handled] before calling [Tracker.Handle].
//
// A Tracker is not safe for concurrent use. Hold one tracker per
// upload session and drive it from a single goroutine.
package chunktrack
