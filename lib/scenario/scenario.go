// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/chunkledger/lib/codec"
)

// ErrInvalidScenario wraps every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Op names a step operation.
type Op string

const (
	// OpInit initializes (or re-initializes) the tracker at ID.
	OpInit Op = "init"

	// OpHandle marks ID as handled.
	OpHandle Op = "handle"

	// OpLowest queries the lowest missing id and compares it against
	// Expect when set.
	OpLowest Op = "lowest"
)

// Step is one scripted operation.
type Step struct {
	Op     Op     `json:"op" yaml:"op"`
	ID     int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Expect *int64 `json:"expect,omitempty" yaml:"expect,omitempty"`
}

// String renders the step the way the CLI prints it.
func (s Step) String() string {
	switch s.Op {
	case OpLowest:
		if s.Expect != nil {
			return fmt.Sprintf("lowest (expect %d)", *s.Expect)
		}
		return "lowest"
	default:
		return fmt.Sprintf("%s %d", s.Op, s.ID)
	}
}

// Scenario is a named list of steps.
type Scenario struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step `json:"steps" yaml:"steps"`
}

// Validate checks that the scenario starts with an init step, uses
// only known ops, and only sets Expect on lowest steps.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	if s.Steps[0].Op != OpInit {
		return fmt.Errorf("%w: step 0 is %q, the first step must be %q",
			ErrInvalidScenario, s.Steps[0].Op, OpInit)
	}
	for index, step := range s.Steps {
		switch step.Op {
		case OpInit, OpHandle:
			if step.Expect != nil {
				return fmt.Errorf("%w: step %d: expect is only valid on %q steps",
					ErrInvalidScenario, index, OpLowest)
			}
		case OpLowest:
		default:
			return fmt.Errorf("%w: step %d: unknown op %q", ErrInvalidScenario, index, step.Op)
		}
	}
	return nil
}

// digestDomainKey separates scenario digests from any other BLAKE3
// use of the same bytes: ASCII "chunkledger.scenario" zero-padded to
// the 32-byte key BLAKE3 keyed mode requires.
var digestDomainKey = [32]byte{
	'c', 'h', 'u', 'n', 'k', 'l', 'e', 'd', 'g', 'e', 'r', '.',
	's', 'c', 'e', 'n', 'a', 'r', 'i', 'o',
}

// Digest returns "blake3:<hex>" over the canonical CBOR encoding of
// the steps.
func (s *Scenario) Digest() (string, error) {
	canonical, err := codec.Marshal(s.Steps)
	if err != nil {
		return "", fmt.Errorf("encoding steps for digest: %w", err)
	}
	hasher, err := blake3.NewKeyed(digestDomainKey[:])
	if err != nil {
		panic("scenario: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(canonical)
	return "blake3:" + hex.EncodeToString(hasher.Sum(nil)), nil
}

// ShortDigest trims a Digest result to 12 hex characters for display.
func ShortDigest(digest string) string {
	const prefix = "blake3:"
	if len(digest) < len(prefix)+12 {
		return digest
	}
	return digest[:len(prefix)+12]
}

func int64Pointer(v int64) *int64 { return &v }

// Demo returns the upload walkthrough: chunks start at 10, arrive as
// 10, 11, 20, then 12.
func Demo() *Scenario {
	return &Scenario{
		Name:        "walkthrough",
		Description: "upload starting at chunk 10 with chunk 20 arriving early",
		Steps: []Step{
			{Op: OpInit, ID: 10},
			{Op: OpLowest, Expect: int64Pointer(10)},
			{Op: OpHandle, ID: 10},
			{Op: OpHandle, ID: 11},
			{Op: OpHandle, ID: 20},
			{Op: OpLowest, Expect: int64Pointer(12)},
			{Op: OpLowest, Expect: int64Pointer(12)},
			{Op: OpHandle, ID: 12},
			{Op: OpLowest, Expect: int64Pointer(13)},
		},
	}
}
