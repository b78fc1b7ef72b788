// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upload

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bureau-foundation/chunkledger/lib/clock"
)

// ErrUnknownUpload is returned for upload IDs the registry does not hold.
var ErrUnknownUpload = errors.New("unknown upload")

// Registry maps upload IDs to sessions. Not safe for concurrent use.
type Registry struct {
	clock    clock.Clock
	logger   *slog.Logger
	sessions map[string]*Session
}

// NewRegistry returns an empty registry whose sessions share c and
// logger. Nil arguments get the same defaults as SessionConfig.
func NewRegistry(c clock.Clock, logger *slog.Logger) *Registry {
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		clock:    c,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Open starts tracking an upload. Opening an ID that is already
// tracked starts that upload over: the old session's state is
// discarded and replaced.
func (r *Registry) Open(id string, first int64, last *int64) (*Session, error) {
	session, err := NewSession(SessionConfig{
		ID:     id,
		First:  first,
		Last:   last,
		Clock:  r.clock,
		Logger: r.logger,
	})
	if err != nil {
		return nil, err
	}
	if _, exists := r.sessions[id]; exists {
		r.logger.Info("reopening upload, discarding previous state", "upload", id)
	}
	r.sessions[id] = session
	return session, nil
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUpload, id)
	}
	return session, nil
}

// Receive routes a chunk acknowledgement to its upload's session.
func (r *Registry) Receive(id string, chunk int64) (Receipt, error) {
	session, err := r.Get(id)
	if err != nil {
		return Receipt{}, err
	}
	return session.Receive(chunk)
}

// Close stops tracking id and returns its final progress.
func (r *Registry) Close(id string) (Progress, error) {
	session, err := r.Get(id)
	if err != nil {
		return Progress{}, err
	}
	delete(r.sessions, id)
	progress := session.Progress()
	r.logger.Info("upload closed", "upload", id,
		"complete", progress.Complete, "lowest_missing", progress.LowestMissing)
	return progress, nil
}

// Len returns the number of tracked uploads.
func (r *Registry) Len() int { return len(r.sessions) }

// IDs returns the tracked upload IDs in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
