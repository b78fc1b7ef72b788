// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// chunkledger replays chunk acknowledgement scenarios against the
// lowest-missing-chunk tracker and reports upload progress from
// acknowledgement logs.
//
// Commands:
//
//	replay FILE...    replay scenario files and check their expectations
//	demo              replay the built-in walkthrough scenario
//	track [FILE]      report per-upload progress from "<upload> <chunk>" lines
//	convert SRC DST   re-encode a scenario by file extension
//	version [--full]  print version information
//
// A replay with any failed expectation exits 1. Usage, config, and
// input errors exit 2.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/chunkledger/lib/clock"
	"github.com/bureau-foundation/chunkledger/lib/config"
	"github.com/bureau-foundation/chunkledger/lib/version"
)

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitStatus(err, os.Stderr))
}

// environment is what every command receives after global flags and
// config have been resolved.
type environment struct {
	config *config.Config
	logger *slog.Logger
	clock  clock.Clock
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// resolve joins a relative scenario path onto scenarios.directory.
func (e *environment) resolve(path string) string {
	if e.config.Scenarios.Directory == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.config.Scenarios.Directory, path)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	return runWithClock(args, clock.Real(), stdin, stdout, stderr)
}

func runWithClock(args []string, c clock.Clock, stdin io.Reader, stdout, stderr io.Writer) error {
	var configPath, logLevel string
	var help bool

	flagSet := pflag.NewFlagSet("chunkledger", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, or error (overrides log.level)")
	flagSet.BoolVarP(&help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stderr, flagSet)
			return nil
		}
		return Validation("%w", err)
	}
	if help {
		printUsage(stderr, flagSet)
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return Validation("no command given")
	}

	loaded, err := loadConfig(configPath)
	if err != nil {
		return Validation("%w", err)
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	level, err := config.ParseLevel(loaded.Log.Level)
	if err != nil {
		return Validation("%w", err)
	}

	env := &environment{
		config: loaded,
		logger: newCommandLogger(stderr, level),
		clock:  c,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	command, commandArgs := rest[0], rest[1:]
	env.logger = env.logger.With("command", command)
	switch command {
	case "replay":
		return runReplay(env, commandArgs)
	case "demo":
		return runDemo(env, commandArgs)
	case "track":
		return runTrack(env, commandArgs)
	case "convert":
		return runConvert(env, commandArgs)
	case "version":
		return runVersion(env, commandArgs)
	default:
		return Validation("unknown command %q (want replay, demo, track, convert, or version)", command)
	}
}

func runVersion(env *environment, args []string) error {
	var full bool
	flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	flagSet.BoolVar(&full, "full", false, "include the Go toolchain and platform")
	if err := flagSet.Parse(args); err != nil {
		return Validation("version: %w", err)
	}
	if flagSet.NArg() > 0 {
		return Validation("version takes no arguments")
	}
	if full {
		fmt.Fprintf(env.stdout, "chunkledger %s\n", version.Full())
		return nil
	}
	version.Fprint(env.stdout, "chunkledger")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `chunkledger tracks the lowest chunk id not yet acknowledged.

Usage:
  chunkledger [flags] <command> [command flags]

Commands:
  replay FILE...    replay scenario files (.yaml, .json, .jsonc, .cbor, optionally .zst or .lz4)
  demo              replay the built-in walkthrough scenario
  track [FILE]      report per-upload progress from "<upload> <chunk>" lines (stdin by default)
  convert SRC DST   re-encode a scenario; formats follow the file extensions
  version [--full]  print version information (--full adds Go toolchain and platform)

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
