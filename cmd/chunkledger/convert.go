// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"io/fs"

	"github.com/bureau-foundation/chunkledger/lib/scenario"
)

func runConvert(env *environment, args []string) error {
	if len(args) != 2 {
		return Validation("convert: want SRC and DST, got %d arguments", len(args))
	}
	source, destination := env.resolve(args[0]), env.resolve(args[1])

	if _, _, err := scenario.DetectFormat(destination); err != nil {
		return Validation("convert: %w", err)
	}
	loaded, err := scenario.Load(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NotFound("convert: %w", err)
		}
		return Validation("convert: %w", err)
	}
	if err := scenario.Save(loaded, destination); err != nil {
		return Internal("convert: %w", err)
	}

	digest, err := loaded.Digest()
	if err != nil {
		return Internal("convert: %w", err)
	}
	env.logger.Info("scenario converted",
		"source", source,
		"destination", destination,
		"digest", scenario.ShortDigest(digest))
	return nil
}
