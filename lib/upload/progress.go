// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upload

import (
	"time"

	"github.com/bureau-foundation/chunkledger/lib/chunktrack"
)

// Progress is a point-in-time report for one upload. It is rendered
// as JSON by the CLI and encoded as CBOR through lib/codec.
type Progress struct {
	Upload        string `json:"upload"`
	First         int64  `json:"first"`
	Last          *int64 `json:"last,omitempty"`
	LowestMissing int64  `json:"lowest_missing"`
	Exhausted     bool   `json:"exhausted,omitempty"`
	Complete      bool   `json:"complete"`

	// Received counts distinct chunks handled; Duplicates counts
	// acknowledgements for chunks that were already handled.
	Received   int64 `json:"received"`
	Duplicates int64 `json:"duplicates"`

	StartedAt   time.Time  `json:"started_at"`
	LastAdvance *time.Time `json:"last_advance,omitempty"`

	// Missing lists the first MaxReportedSpans runs of unreceived
	// chunks. When Last is known, runs are clipped to it.
	Missing []chunktrack.Span `json:"missing,omitempty"`
}

// Progress returns a snapshot of the session.
func (s *Session) Progress() Progress {
	first, _ := s.tracker.Initial()
	lowest, exhausted, _ := s.position()
	progress := Progress{
		Upload:        s.id,
		First:         first,
		LowestMissing: lowest,
		Exhausted:     exhausted,
		Complete:      s.Complete(),
		Received:      s.received,
		Duplicates:    s.duplicates,
		StartedAt:     s.startedAt,
	}
	if s.last != nil {
		last := *s.last
		progress.Last = &last
	}
	if !s.lastAdvance.IsZero() {
		advance := s.lastAdvance
		progress.LastAdvance = &advance
	}

	spans, _ := s.tracker.Missing(MaxReportedSpans)
	progress.Missing = clipSpans(spans, s.last)
	return progress
}

// clipSpans drops runs past last and bounds the open-ended run.
func clipSpans(spans []chunktrack.Span, last *int64) []chunktrack.Span {
	if last == nil {
		return spans
	}
	clipped := spans[:0]
	for _, span := range spans {
		if span.First > *last {
			break
		}
		if span.Unbounded || span.Last > *last {
			span = chunktrack.Span{First: span.First, Last: *last}
		}
		clipped = append(clipped, span)
	}
	if len(clipped) == 0 {
		return nil
	}
	return clipped
}
