// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upload

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/chunkledger/lib/chunktrack"
	"github.com/bureau-foundation/chunkledger/lib/clock"
)

// MaxReportedSpans caps the missing-id spans carried in a Progress
// snapshot. A badly fragmented upload can have thousands of gaps;
// retransmission requests only need the first few.
const MaxReportedSpans = 32

var (
	// ErrInvalidConfig is returned by NewSession for unusable configs.
	ErrInvalidConfig = errors.New("invalid upload session config")

	// ErrOutOfRange is returned by Receive for ids outside the
	// session's expected [First, Last] range.
	ErrOutOfRange = errors.New("chunk id outside upload range")
)

// SessionConfig describes one upload.
type SessionConfig struct {
	// ID names the upload. Required.
	ID string

	// First is the first chunk id of the upload.
	First int64

	// Last is the final chunk id, when the sender announced it.
	// Nil means the upload's length is unknown and Complete never
	// reports true.
	Last *int64

	// Clock stamps session start and progress. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives per-session events. Defaults to discarding.
	Logger *slog.Logger
}

// Session tracks one upload. Not safe for concurrent use.
type Session struct {
	id      string
	last    *int64
	tracker chunktrack.Tracker
	clock   clock.Clock
	logger  *slog.Logger

	received    int64
	duplicates  int64
	startedAt   time.Time
	lastAdvance time.Time
}

// Receipt describes the effect of one Receive call.
type Receipt struct {
	// New is false when the id had already been handled.
	New bool

	// Advanced is true when the lowest missing id moved forward.
	Advanced bool

	// LowestMissing is the lowest missing id after the call. Zero
	// when Exhausted.
	LowestMissing int64

	// Exhausted is true once every id through math.MaxInt64 has been
	// received.
	Exhausted bool
}

// NewSession validates config and returns a session whose tracker is
// initialized at config.First.
func NewSession(config SessionConfig) (*Session, error) {
	if config.ID == "" {
		return nil, fmt.Errorf("%w: upload ID is required", ErrInvalidConfig)
	}
	if config.Last != nil && *config.Last < config.First {
		return nil, fmt.Errorf("%w: upload %s: last chunk %d is before first chunk %d",
			ErrInvalidConfig, config.ID, *config.Last, config.First)
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	session := &Session{
		id:     config.ID,
		clock:  config.Clock,
		logger: config.Logger.With("upload", config.ID),
	}
	if config.Last != nil {
		last := *config.Last
		session.last = &last
	}
	session.Reset(config.First)
	return session, nil
}

// ID returns the upload ID.
func (s *Session) ID() string { return s.id }

// Reset starts the upload over at first, discarding every handled id
// and counter. The expected last chunk id is kept when it is still
// at or after first, and dropped otherwise.
func (s *Session) Reset(first int64) {
	s.tracker.Initialize(first)
	if s.last != nil && *s.last < first {
		s.logger.Warn("dropping expected last chunk before new first chunk",
			"first", first, "last", *s.last)
		s.last = nil
	}
	s.received = 0
	s.duplicates = 0
	s.startedAt = s.clock.Now()
	s.lastAdvance = time.Time{}
	s.logger.Debug("upload session initialized", "first", first)
}

// Receive records chunk id as handled.
func (s *Session) Receive(id int64) (Receipt, error) {
	first, err := s.tracker.Initial()
	if err != nil {
		return Receipt{}, err
	}
	if id < first || (s.last != nil && id > *s.last) {
		return Receipt{}, fmt.Errorf("upload %s: chunk %d: %w", s.id, id, ErrOutOfRange)
	}

	before, beforeExhausted, err := s.position()
	if err != nil {
		return Receipt{}, err
	}

	if s.tracker.Handled(id) {
		s.duplicates++
		s.logger.Debug("duplicate chunk acknowledgement", "chunk", id)
		return Receipt{LowestMissing: before, Exhausted: beforeExhausted}, nil
	}

	if err := s.tracker.Handle(id); err != nil {
		return Receipt{}, fmt.Errorf("upload %s: handling chunk %d: %w", s.id, id, err)
	}
	s.received++

	after, afterExhausted, err := s.position()
	if err != nil {
		return Receipt{}, err
	}
	receipt := Receipt{
		New:           true,
		Advanced:      afterExhausted || after > before,
		LowestMissing: after,
		Exhausted:     afterExhausted,
	}
	if receipt.Advanced {
		s.lastAdvance = s.clock.Now()
		s.logger.Debug("lowest missing chunk advanced", "from", before, "to", after)
		if s.Complete() {
			s.logger.Info("upload complete", "chunks", s.received)
		}
	}
	return receipt, nil
}

// LowestMissing returns the lowest chunk id not yet received, or
// chunktrack.ErrExhausted when none is left.
func (s *Session) LowestMissing() (int64, error) {
	return s.tracker.LowestMissingID()
}

// position is LowestMissingID with exhaustion reported as a flag
// rather than an error.
func (s *Session) position() (lowest int64, exhausted bool, err error) {
	lowest, err = s.tracker.LowestMissingID()
	if errors.Is(err, chunktrack.ErrExhausted) {
		return 0, true, nil
	}
	return lowest, false, err
}

// Complete reports whether every chunk up to the expected last id has
// been received. When the last id is unknown it only becomes true once
// every id through math.MaxInt64 has arrived.
func (s *Session) Complete() bool {
	if s.tracker.Exhausted() {
		return true
	}
	if s.last == nil {
		return false
	}
	lowest, err := s.tracker.LowestMissingID()
	if err != nil {
		return false
	}
	return lowest > *s.last
}

// Gaps returns a copy of the tracker's gap ledger.
func (s *Session) Gaps() []chunktrack.Range {
	return s.tracker.Gaps()
}
