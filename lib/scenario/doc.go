// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scenario loads and replays scripted chunk acknowledgement
// streams against a [chunktrack.Tracker].
//
// A scenario is a list of steps. Each step initializes the tracker,
// handles one chunk id, or queries the lowest missing id with an
// optional expectation:
//
//	name: walkthrough
//	steps:
//	  - {op: init, id: 10}
//	  - {op: lowest, expect: 10}
//	  - {op: handle, id: 10}
//	  - {op: handle, id: 11}
//	  - {op: handle, id: 20}
//	  - {op: lowest, expect: 12}
//
// Files may be YAML (.yaml, .yml), JSON with comments and trailing
// commas (.json, .jsonc), or CBOR (.cbor), optionally wrapped in zstd
// (.zst) or LZ4 frame (.lz4) compression: "capture.cbor.zst". Unknown
// fields are rejected in every format so a misspelled key fails the
// load instead of silently changing the replay.
//
// Every loaded scenario carries a BLAKE3 digest of its steps in
// canonical CBOR form. The same step list has the same digest
// regardless of the file format, compression, name, or description.
package scenario
