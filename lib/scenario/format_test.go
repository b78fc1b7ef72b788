// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/chunkledger/lib/testutil"
)

const walkthroughYAML = `name: walkthrough
steps:
  - {op: init, id: 10}
  - {op: lowest, expect: 10}
  - {op: handle, id: 10}
  - {op: handle, id: 11}
  - {op: handle, id: 20}
  - {op: lowest, expect: 12}
  - {op: lowest, expect: 12}
  - {op: handle, id: 12}
  - {op: lowest, expect: 13}
`

const walkthroughJSONC = `{
  // Same stream as walkthroughYAML.
  "name": "walkthrough",
  "steps": [
    {"op": "init", "id": 10},
    {"op": "lowest", "expect": 10},
    {"op": "handle", "id": 10},
    {"op": "handle", "id": 11},
    {"op": "handle", "id": 20}, /* 20 arrives early */
    {"op": "lowest", "expect": 12},
    {"op": "lowest", "expect": 12},
    {"op": "handle", "id": 12},
    {"op": "lowest", "expect": 13},
  ],
}`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path        string
		format      Format
		compression Compression
	}{
		{"a.yaml", FormatYAML, CompressionNone},
		{"dir/a.YML", FormatYAML, CompressionNone},
		{"a.jsonc", FormatJSON, CompressionNone},
		{"a.json.zst", FormatJSON, CompressionZstd},
		{"a.cbor.lz4", FormatCBOR, CompressionLZ4},
		{"a.cbor.zstd", FormatCBOR, CompressionZstd},
	}
	for _, test := range tests {
		format, compression, err := DetectFormat(test.path)
		if err != nil {
			t.Errorf("DetectFormat(%q): %v", test.path, err)
			continue
		}
		if format != test.format || compression != test.compression {
			t.Errorf("DetectFormat(%q) = %s/%s, want %s/%s",
				test.path, format, compression, test.format, test.compression)
		}
	}

	for _, path := range []string{"a.txt", "a.zst", "noextension"} {
		if _, _, err := DetectFormat(path); err == nil {
			t.Errorf("DetectFormat(%q) accepted an unknown extension", path)
		}
	}
}

func TestNameFromPath(t *testing.T) {
	tests := map[string]string{
		"testdata/gap.cbor.zst": "gap",
		"walk.yaml":             "walk",
		"v1.2.jsonc":            "v1.2",
	}
	for path, want := range tests {
		if got := NameFromPath(path); got != want {
			t.Errorf("NameFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestParseYAMLAndJSONCAgree(t *testing.T) {
	fromYAML, err := Parse([]byte(walkthroughYAML), FormatYAML)
	if err != nil {
		t.Fatalf("Parse YAML: %v", err)
	}
	fromJSONC, err := Parse([]byte(walkthroughJSONC), FormatJSON)
	if err != nil {
		t.Fatalf("Parse JSONC: %v", err)
	}

	yamlDigest, err := fromYAML.Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	jsoncDigest, err := fromJSONC.Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	demoDigest, err := Demo().Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if yamlDigest != jsoncDigest || yamlDigest != demoDigest {
		t.Errorf("digests differ: yaml=%s jsonc=%s demo=%s", yamlDigest, jsoncDigest, demoDigest)
	}
	if !strings.HasPrefix(yamlDigest, "blake3:") || len(yamlDigest) != len("blake3:")+64 {
		t.Errorf("digest %q is not blake3:<64 hex>", yamlDigest)
	}
	if got := ShortDigest(yamlDigest); len(got) != len("blake3:")+12 {
		t.Errorf("ShortDigest = %q", got)
	}
}

func TestDigestIgnoresNameButNotSteps(t *testing.T) {
	renamed := Demo()
	renamed.Name = "other"
	renamed.Description = ""

	changed := Demo()
	changed.Steps[3].ID = 12

	base, _ := Demo().Digest()
	renamedDigest, _ := renamed.Digest()
	changedDigest, _ := changed.Digest()

	if base != renamedDigest {
		t.Errorf("renaming changed the digest: %s vs %s", base, renamedDigest)
	}
	if base == changedDigest {
		t.Error("changing a step did not change the digest")
	}
}

func TestSaveLoadEveryEncoding(t *testing.T) {
	directory := t.TempDir()
	want, err := Demo().Digest()
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	for _, name := range []string{
		"walk.yaml", "walk.json", "walk.cbor",
		"walk.yaml.zst", "walk.cbor.zst", "walk.json.lz4", "walk.cbor.lz4",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(directory, name)
			if err := Save(Demo(), path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if loaded.Name != "walkthrough" {
				t.Errorf("name = %q, want walkthrough", loaded.Name)
			}
			got, err := loaded.Digest()
			if err != nil {
				t.Fatalf("Digest: %v", err)
			}
			if got != want {
				t.Errorf("digest after %s roundtrip = %s, want %s", name, got, want)
			}
		})
	}
}

func TestLoadNamesUnnamedScenario(t *testing.T) {
	path := testutil.WriteFile(t, "early-twenty.yaml", []byte("steps:\n  - {op: init, id: 1}\n"))
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "early-twenty" {
		t.Errorf("name = %q, want early-twenty", loaded.Name)
	}
}

func TestLoadRejectsCorruptCompression(t *testing.T) {
	for _, name := range []string{"bad.yaml.zst", "bad.yaml.lz4"} {
		path := testutil.WriteFile(t, name, []byte("definitely not compressed"))
		if _, err := Load(path); err == nil {
			t.Errorf("Load(%s) accepted corrupt data", name)
		}
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		input   string
		invalid bool
	}{
		{"unknown yaml field", FormatYAML, "steps:\n  - {op: init, idd: 1}\n", false},
		{"unknown json field", FormatJSON, `{"steps": [{"op": "init", "id": 1}], "extra": 1}`, false},
		{"malformed yaml", FormatYAML, "steps: [", false},
		{"no steps", FormatYAML, "name: empty\n", true},
		{"missing init", FormatYAML, "steps:\n  - {op: handle, id: 1}\n", true},
		{"unknown op", FormatJSON, `{"steps": [{"op": "init"}, {"op": "ack", "id": 1}]}`, true},
		{"expect on handle", FormatYAML, "steps:\n  - {op: init, id: 1}\n  - {op: handle, id: 2, expect: 3}\n", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.input), test.format)
			if err == nil {
				t.Fatal("Parse accepted invalid input")
			}
			if got := errors.Is(err, ErrInvalidScenario); got != test.invalid {
				t.Errorf("errors.Is(ErrInvalidScenario) = %v, want %v (error: %v)", got, test.invalid, err)
			}
		})
	}
}

func TestParseRejectsUnknownCBORField(t *testing.T) {
	data, err := Marshal(Demo(), FormatCBOR)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := Parse(data, FormatCBOR); err != nil {
		t.Fatalf("Parse of valid CBOR: %v", err)
	}

	withExtra, err := Marshal(Demo(), FormatCBOR)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// Replace the map header with one entry more and append a field
	// the Scenario type does not know.
	if withExtra[0] != 0xa3 {
		t.Fatalf("expected a 3-entry CBOR map header, got %#x", withExtra[0])
	}
	withExtra[0] = 0xa4
	withExtra = append(withExtra, 0x65, 'e', 'x', 't', 'r', 'a', 0x01)
	if _, err := Parse(withExtra, FormatCBOR); err == nil {
		t.Error("Parse accepted a CBOR scenario with an unknown field")
	}
}
