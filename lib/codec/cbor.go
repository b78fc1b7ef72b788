// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the same
// logical value always produces the same bytes. Scenario digests
// depend on this.
var encMode cbor.EncMode

// decMode accepts unknown fields for forward compatibility with
// snapshots written by newer binaries.
var decMode cbor.DecMode

// strictDecMode rejects unknown fields and duplicate map keys. Used
// for hand-authored input such as scenario files, where a misspelled
// key should be an error rather than a silently ignored step field.
var strictDecMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Timestamps in progress snapshots are encoded as RFC 3339 text
	// so CBOR diagnostics and JSON output read the same.
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decOptions := cbor.DecOptions{
		// any-typed targets decode to map[string]any rather than the
		// CBOR default map[interface{}]interface{}.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}
	decMode, err = decOptions.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}

	decOptions.ExtraReturnErrors = cbor.ExtraDecErrorUnknownField
	decOptions.DupMapKey = cbor.DupMapKeyEnforcedAPF
	strictDecMode, err = decOptions.DecMode()
	if err != nil {
		panic("codec: strict CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v, ignoring unknown fields.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// UnmarshalStrict decodes CBOR data into v and fails on unknown
// struct fields or duplicate map keys.
func UnmarshalStrict(data []byte, v any) error {
	return strictDecMode.Unmarshal(data, v)
}

// Encoder is a CBOR stream encoder. Type alias so consumers import
// only lib/codec, not fxamacker/cbor directly.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder.
type Decoder = cbor.Decoder

// NewEncoder returns a deterministic CBOR encoder writing to w. Each
// Encode call appends one item, so repeated calls form a CBOR
// sequence (RFC 8742).
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a CBOR decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
