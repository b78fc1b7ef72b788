// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package upload

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/bureau-foundation/chunkledger/lib/chunktrack"
	"github.com/bureau-foundation/chunkledger/lib/clock"
	"github.com/bureau-foundation/chunkledger/lib/codec"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func int64Pointer(v int64) *int64 { return &v }

func newTestSession(t *testing.T, first int64, last *int64) (*Session, *clock.FakeClock) {
	t.Helper()
	fakeClock := clock.Fake(epoch)
	session, err := NewSession(SessionConfig{
		ID:    "upload-test",
		First: first,
		Last:  last,
		Clock: fakeClock,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session, fakeClock
}

func mustReceive(t *testing.T, session *Session, id int64) Receipt {
	t.Helper()
	receipt, err := session.Receive(id)
	if err != nil {
		t.Fatalf("Receive(%d): %v", id, err)
	}
	return receipt
}

func TestNewSessionValidation(t *testing.T) {
	tests := []struct {
		name   string
		config SessionConfig
	}{
		{"missing id", SessionConfig{First: 1}},
		{"last before first", SessionConfig{ID: "u", First: 10, Last: int64Pointer(9)}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewSession(test.config); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSessionReceive(t *testing.T) {
	session, fakeClock := newTestSession(t, 10, int64Pointer(14))

	fakeClock.Advance(time.Second)
	receipt := mustReceive(t, session, 11)
	if !receipt.New || receipt.Advanced || receipt.LowestMissing != 10 {
		t.Fatalf("out-of-order chunk: got %+v", receipt)
	}

	fakeClock.Advance(time.Second)
	receipt = mustReceive(t, session, 10)
	if !receipt.New || !receipt.Advanced || receipt.LowestMissing != 12 {
		t.Fatalf("initial chunk: got %+v", receipt)
	}

	receipt = mustReceive(t, session, 11)
	if receipt.New || receipt.Advanced || receipt.LowestMissing != 12 {
		t.Fatalf("duplicate chunk: got %+v", receipt)
	}

	for _, id := range []int64{9, 15} {
		if _, err := session.Receive(id); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Receive(%d): got %v, want ErrOutOfRange", id, err)
		}
	}

	if session.Complete() {
		t.Fatal("Complete before chunks 12-14 arrived")
	}

	fakeClock.Advance(time.Second)
	for _, id := range []int64{14, 13, 12} {
		mustReceive(t, session, id)
	}
	if !session.Complete() {
		t.Fatal("not Complete after every chunk arrived")
	}

	progress := session.Progress()
	if progress.Received != 5 || progress.Duplicates != 1 {
		t.Errorf("counters: received=%d duplicates=%d, want 5 and 1", progress.Received, progress.Duplicates)
	}
	if progress.LowestMissing != 15 || !progress.Complete {
		t.Errorf("progress: got lowest=%d complete=%v", progress.LowestMissing, progress.Complete)
	}
	if progress.Missing != nil {
		t.Errorf("complete upload still reports missing spans: %v", progress.Missing)
	}
	if !progress.StartedAt.Equal(epoch) {
		t.Errorf("StartedAt = %v, want %v", progress.StartedAt, epoch)
	}
	if progress.LastAdvance == nil || !progress.LastAdvance.Equal(epoch.Add(3*time.Second)) {
		t.Errorf("LastAdvance = %v, want %v", progress.LastAdvance, epoch.Add(3*time.Second))
	}
}

func TestSessionCompletesAtMaxInt64(t *testing.T) {
	session, fakeClock := newTestSession(t, math.MaxInt64-1, int64Pointer(math.MaxInt64))

	fakeClock.Advance(time.Second)
	if receipt := mustReceive(t, session, math.MaxInt64); receipt.Advanced || receipt.LowestMissing != math.MaxInt64-1 {
		t.Errorf("out-of-order final chunk: %+v", receipt)
	}

	fakeClock.Advance(time.Second)
	receipt := mustReceive(t, session, math.MaxInt64-1)
	want := Receipt{New: true, Advanced: true, Exhausted: true}
	if receipt != want {
		t.Errorf("receipt %+v, want %+v", receipt, want)
	}
	if !session.Complete() {
		t.Error("Complete() = false with every chunk through MaxInt64 received")
	}
	if _, err := session.LowestMissing(); !errors.Is(err, chunktrack.ErrExhausted) {
		t.Errorf("LowestMissing error %v, want ErrExhausted", err)
	}

	progress := session.Progress()
	if !progress.Complete || !progress.Exhausted || len(progress.Missing) != 0 {
		t.Errorf("progress %+v", progress)
	}
	if progress.LastAdvance == nil || !progress.LastAdvance.Equal(epoch.Add(2*time.Second)) {
		t.Errorf("LastAdvance = %v, want %v", progress.LastAdvance, epoch.Add(2*time.Second))
	}

	duplicate := mustReceive(t, session, math.MaxInt64)
	if duplicate.New || duplicate.Advanced || !duplicate.Exhausted {
		t.Errorf("duplicate after exhaustion: %+v", duplicate)
	}
}

func TestSessionWithUnknownLengthCompletesOnlyWhenExhausted(t *testing.T) {
	session, _ := newTestSession(t, math.MaxInt64-1, nil)
	mustReceive(t, session, math.MaxInt64-1)
	if session.Complete() {
		t.Error("Complete() = true with MaxInt64 still missing")
	}
	mustReceive(t, session, math.MaxInt64)
	if !session.Complete() {
		t.Error("Complete() = false after every representable id arrived")
	}
}

func TestProgressClipsMissingToLast(t *testing.T) {
	session, _ := newTestSession(t, 0, int64Pointer(9))
	mustReceive(t, session, 0)
	mustReceive(t, session, 3)

	want := []chunktrack.Span{{First: 1, Last: 2}, {First: 4, Last: 9}}
	if got := session.Progress().Missing; !slices.Equal(got, want) {
		t.Errorf("missing: got %v, want %v", got, want)
	}
}

func TestProgressWithUnknownLength(t *testing.T) {
	session, _ := newTestSession(t, 100, nil)
	mustReceive(t, session, 100)
	mustReceive(t, session, 102)

	progress := session.Progress()
	if progress.Complete || session.Complete() {
		t.Error("upload of unknown length reported complete")
	}
	if progress.Last != nil {
		t.Errorf("Last = %v, want nil", *progress.Last)
	}
	want := []chunktrack.Span{{First: 101, Last: 101}, {First: 103, Unbounded: true}}
	if !slices.Equal(progress.Missing, want) {
		t.Errorf("missing: got %v, want %v", progress.Missing, want)
	}
	if progress.LastAdvance == nil {
		t.Error("LastAdvance not set after the initial chunk arrived")
	}
}

func TestSessionReset(t *testing.T) {
	session, fakeClock := newTestSession(t, 0, int64Pointer(5))
	mustReceive(t, session, 0)
	mustReceive(t, session, 0)

	fakeClock.Advance(time.Minute)
	session.Reset(3)

	progress := session.Progress()
	if progress.Received != 0 || progress.Duplicates != 0 {
		t.Errorf("counters survived Reset: %+v", progress)
	}
	if progress.First != 3 || progress.LowestMissing != 3 {
		t.Errorf("after Reset(3): first=%d lowest=%d", progress.First, progress.LowestMissing)
	}
	if !progress.StartedAt.Equal(epoch.Add(time.Minute)) {
		t.Errorf("StartedAt not restamped: %v", progress.StartedAt)
	}
	if progress.LastAdvance != nil {
		t.Errorf("LastAdvance survived Reset: %v", progress.LastAdvance)
	}
	if progress.Last == nil || *progress.Last != 5 {
		t.Errorf("expected last chunk should survive Reset(3), got %v", progress.Last)
	}

	session.Reset(8)
	if session.Progress().Last != nil {
		t.Error("expected last chunk kept although it is before the new first chunk")
	}
}

func TestProgressEncodesAsCBOR(t *testing.T) {
	session, _ := newTestSession(t, 10, int64Pointer(20))
	mustReceive(t, session, 10)
	mustReceive(t, session, 15)
	original := session.Progress()

	data, err := codec.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Progress
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Upload != original.Upload || decoded.LowestMissing != original.LowestMissing {
		t.Errorf("decoded %+v, want %+v", decoded, original)
	}
	if !slices.Equal(decoded.Missing, original.Missing) {
		t.Errorf("missing: got %v, want %v", decoded.Missing, original.Missing)
	}
	if decoded.Last == nil || *decoded.Last != 20 {
		t.Errorf("last: got %v, want 20", decoded.Last)
	}
}

func TestProgressCBORKeysMatchJSON(t *testing.T) {
	session, _ := newTestSession(t, math.MaxInt64, nil)
	mustReceive(t, session, math.MaxInt64)

	data, err := codec.Marshal(session.Progress())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	if err := codec.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"upload", "first", "lowest_missing", "exhausted", "complete", "received", "started_at"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("CBOR map has no %q key: %v", key, fields)
		}
	}
	if _, ok := fields["LowestMissing"]; ok {
		t.Error("CBOR map uses Go field names instead of the json tag names")
	}
}
