// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/chunkledger/lib/chunktrack"
)

// Observation is the outcome of one lowest step.
type Observation struct {
	Step          int    `json:"step"`
	LowestMissing int64  `json:"lowest_missing"`
	Expect        *int64 `json:"expect,omitempty"`

	// Error is set instead of LowestMissing when the tracker has
	// nothing left to report: every id through math.MaxInt64 is
	// handled (chunktrack.ErrExhausted).
	Error string `json:"error,omitempty"`
}

// Mismatch records a lowest step whose result differed from Expect.
type Mismatch struct {
	Step int    `json:"step"`
	Want int64  `json:"want"`
	Got  int64  `json:"got"`
	Err  string `json:"error,omitempty"`
}

// String renders the mismatch for CLI output.
func (m Mismatch) String() string {
	if m.Err != "" {
		return fmt.Sprintf("step %d: want %d, got error: %s", m.Step, m.Want, m.Err)
	}
	return fmt.Sprintf("step %d: want %d, got %d", m.Step, m.Want, m.Got)
}

// Result is the outcome of replaying a scenario.
type Result struct {
	Scenario     string             `json:"scenario"`
	Digest       string             `json:"digest"`
	Steps        int                `json:"steps"`
	Observations []Observation      `json:"observations"`
	Mismatches   []Mismatch         `json:"mismatches,omitempty"`
	Gaps         []chunktrack.Range `json:"gaps"`
	Missing      []chunktrack.Span  `json:"missing"`
}

// maxResultSpans bounds Result.Missing.
const maxResultSpans = 64

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Mismatches) == 0
}

// Run validates the scenario and replays it against a fresh tracker.
// Mismatched expectations are collected in the result; they do not
// stop the replay and are not returned as errors.
func Run(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	digest, err := scenario.Digest()
	if err != nil {
		return nil, err
	}
	logger = logger.With("scenario", scenario.Name, "digest", ShortDigest(digest))

	result := &Result{
		Scenario: scenario.Name,
		Digest:   digest,
		Steps:    len(scenario.Steps),
	}

	var tracker chunktrack.Tracker
	for index, step := range scenario.Steps {
		switch step.Op {
		case OpInit:
			tracker.Initialize(step.ID)
			logger.Debug("tracker initialized", "step", index, "chunk", step.ID)

		case OpHandle:
			if err := tracker.Handle(step.ID); err != nil {
				return nil, fmt.Errorf("step %d: %w", index, err)
			}
			logger.Debug("chunk handled", "step", index, "chunk", step.ID)

		case OpLowest:
			observation := Observation{Step: index, Expect: step.Expect}
			lowest, err := tracker.LowestMissingID()
			if err != nil {
				observation.Error = err.Error()
			} else {
				observation.LowestMissing = lowest
			}
			result.Observations = append(result.Observations, observation)

			if step.Expect == nil {
				continue
			}
			if err != nil || lowest != *step.Expect {
				mismatch := Mismatch{Step: index, Want: *step.Expect, Got: lowest, Err: observation.Error}
				result.Mismatches = append(result.Mismatches, mismatch)
				logger.Warn("expectation failed", "step", index, "want", *step.Expect, "got", lowest)
			}
		}
	}

	result.Gaps = tracker.Gaps()
	result.Missing, err = tracker.Missing(maxResultSpans)
	if err != nil {
		return nil, err
	}
	logger.Info("scenario replayed",
		"steps", result.Steps,
		"observations", len(result.Observations),
		"mismatches", len(result.Mismatches))
	return result, nil
}
