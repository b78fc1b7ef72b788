// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR configuration.
//
// JSON is used for human-facing output (the CLI's --format json) and
// CBOR for machine-facing data: progress snapshots emitted with
// --format cbor, CBOR-authored scenario files, and the canonical form
// scenario digests are computed over. Encoding uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items.
//
//	data, err := codec.Marshal(progress)
//	err = codec.Unmarshal(data, &progress)
//	err = codec.UnmarshalStrict(fileBytes, &scenario)
//
// # Struct tags
//
// Types that appear in both JSON and CBOR carry only `json` tags;
// fxamacker/cbor falls back to them when `cbor` tags are absent. A
// `cbor` tag marks a type that is never rendered as JSON. Do not put
// both on one field.
package codec
