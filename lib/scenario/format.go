// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/chunkledger/lib/codec"
)

// Format is a scenario file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// Compression is an optional outer compression layer.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// zstdDecoder and zstdEncoder are reused across calls. Both are safe
// for concurrent use with the *All methods.
var (
	zstdDecoder *zstd.Decoder
	zstdEncoder *zstd.Encoder
)

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("scenario: zstd decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("scenario: zstd encoder initialization failed: " + err.Error())
	}
}

// DetectFormat derives the encoding and compression from a file name,
// for example "capture.cbor.zst" is CBOR inside zstd.
func DetectFormat(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))
	compression := CompressionNone
	switch extension := filepath.Ext(name); extension {
	case ".zst", ".zstd":
		compression = CompressionZstd
		name = strings.TrimSuffix(name, extension)
	case ".lz4":
		compression = CompressionLZ4
		name = strings.TrimSuffix(name, extension)
	}

	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return FormatYAML, compression, nil
	case ".json", ".jsonc":
		return FormatJSON, compression, nil
	case ".cbor":
		return FormatCBOR, compression, nil
	default:
		return "", "", fmt.Errorf("%s: cannot tell scenario format from extension (want .yaml, .yml, .json, .jsonc, or .cbor, optionally followed by .zst or .lz4)", path)
	}
}

// Load reads, decompresses, and parses the scenario at path. A
// scenario without a name is named after the file.
func Load(path string) (*Scenario, error) {
	format, compression, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	data, err := Decompress(raw, compression)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	scenario, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if scenario.Name == "" {
		scenario.Name = NameFromPath(path)
	}
	return scenario, nil
}

// NameFromPath strips the directory and every recognized extension:
// "testdata/gap.cbor.zst" becomes "gap".
func NameFromPath(path string) string {
	name := filepath.Base(path)
	for {
		extension := strings.ToLower(filepath.Ext(name))
		switch extension {
		case ".zst", ".zstd", ".lz4", ".yaml", ".yml", ".json", ".jsonc", ".cbor":
			name = name[:len(name)-len(extension)]
			continue
		}
		return name
	}
}

// Parse decodes an uncompressed scenario and validates it.
func Parse(data []byte, format Format) (*Scenario, error) {
	var scenario Scenario
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&scenario); err != nil {
			return nil, fmt.Errorf("parsing YAML scenario: %w", err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&scenario); err != nil {
			return nil, fmt.Errorf("parsing JSON scenario: %w", err)
		}
	case FormatCBOR:
		if err := codec.UnmarshalStrict(data, &scenario); err != nil {
			return nil, fmt.Errorf("parsing CBOR scenario: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Marshal encodes a scenario in the given format.
func Marshal(scenario *Scenario, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(scenario)
	case FormatJSON:
		data, err := json.MarshalIndent(scenario, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatCBOR:
		return codec.Marshal(scenario)
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}
}

// Decompress removes the outer compression layer.
func Decompress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone, "":
		return data, nil
	case CompressionZstd:
		decompressed, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return decompressed, nil
	case CompressionLZ4:
		decompressed, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return decompressed, nil
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
}

// Compress applies the outer compression layer. LZ4 output uses the
// frame format so standard lz4 tools can read it.
func Compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone, "":
		return data, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buffer bytes.Buffer
		writer := lz4.NewWriter(&buffer)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buffer.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
}

// Save encodes the scenario in the format and compression implied by
// path and writes it.
func Save(scenario *Scenario, path string) error {
	format, compression, err := DetectFormat(path)
	if err != nil {
		return err
	}
	data, err := Marshal(scenario, format)
	if err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	data, err = Compress(data, compression)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing scenario: %w", err)
	}
	return nil
}
