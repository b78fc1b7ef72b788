// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/chunkledger/lib/upload"
)

func runTrack(env *environment, args []string) error {
	var first, last int64

	flagSet := pflag.NewFlagSet("track", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	flagSet.Int64Var(&first, "first", 0, "first chunk id of every upload")
	flagSet.Int64Var(&last, "last", 0, "last chunk id of every upload (default: unbounded)")
	output := addOutputFlags(flagSet, env.config.Output)
	if err := flagSet.Parse(args); err != nil {
		return Validation("track: %w", err)
	}
	if flagSet.NArg() > 1 {
		return Validation("track: at most one input file, got %d", flagSet.NArg())
	}

	var lastPointer *int64
	if flagSet.Changed("last") {
		lastPointer = &last
	}

	printer, err := newPrinter(env, output)
	if err != nil {
		return err
	}

	input, name := env.stdin, "stdin"
	if flagSet.NArg() == 1 {
		name = flagSet.Arg(0)
		file, err := os.Open(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return NotFound("track: %w", err)
			}
			return Validation("track: %w", err)
		}
		defer file.Close()
		input = file
	}

	registry := upload.NewRegistry(env.clock, env.logger)
	lines, err := ingest(registry, input, name, first, lastPointer)
	if err != nil {
		return err
	}

	var uploads []upload.Progress
	for _, id := range registry.IDs() {
		progress, err := registry.Close(id)
		if err != nil {
			return Internal("track: %w", err)
		}
		uploads = append(uploads, progress)
	}
	env.logger.Info("acknowledgements processed", "input", name, "lines", lines, "uploads", len(uploads))
	return printer.printProgress(uploads)
}

// ingest feeds "<upload> <chunk>" lines into the registry, opening
// uploads on first sight. Blank lines and # comments are skipped. It
// returns the number of lines read.
func ingest(registry *upload.Registry, input io.Reader, name string, first int64, last *int64) (int, error) {
	scanner := bufio.NewScanner(input)
	number := 0
	for scanner.Scan() {
		number++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return number, Validation("%s:%d: want \"<upload> <chunk>\", got %q", name, number, line)
		}
		id := fields[0]
		chunk, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return number, Validation("%s:%d: chunk id %q is not an integer", name, number, fields[1])
		}

		if _, err := registry.Get(id); errors.Is(err, upload.ErrUnknownUpload) {
			if _, err := registry.Open(id, first, last); err != nil {
				return number, Validation("%s:%d: %w", name, number, err)
			}
		}
		if _, err := registry.Receive(id, chunk); err != nil {
			return number, Validation("%s:%d: %w", name, number, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return number, Internal("reading %s: %w", name, err)
	}
	return number, nil
}
