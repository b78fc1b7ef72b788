// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"io/fs"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/chunkledger/lib/scenario"
)

func runReplay(env *environment, args []string) error {
	flagSet := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	output := addOutputFlags(flagSet, env.config.Output)
	if err := flagSet.Parse(args); err != nil {
		return Validation("replay: %w", err)
	}
	paths := flagSet.Args()
	if len(paths) == 0 {
		return Validation("replay: at least one scenario file is required")
	}

	printer, err := newPrinter(env, output)
	if err != nil {
		return err
	}

	// Load everything first so a bad file fails before any output.
	scenarios := make([]*scenario.Scenario, 0, len(paths))
	for _, path := range paths {
		loaded, err := scenario.Load(env.resolve(path))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return NotFound("%w", err)
			}
			return Validation("%w", err)
		}
		scenarios = append(scenarios, loaded)
	}

	return replayAll(env, printer, scenarios)
}

func runDemo(env *environment, args []string) error {
	flagSet := pflag.NewFlagSet("demo", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	output := addOutputFlags(flagSet, env.config.Output)
	if err := flagSet.Parse(args); err != nil {
		return Validation("demo: %w", err)
	}
	if flagSet.NArg() > 0 {
		return Validation("demo: unexpected argument %q", flagSet.Arg(0))
	}

	printer, err := newPrinter(env, output)
	if err != nil {
		return err
	}
	return replayAll(env, printer, []*scenario.Scenario{scenario.Demo()})
}

// replayAll runs and prints every scenario, then reports exit status 1
// if any expectation failed.
func replayAll(env *environment, printer *printer, scenarios []*scenario.Scenario) error {
	failed := 0
	for _, loaded := range scenarios {
		result, err := scenario.Run(loaded, env.logger)
		if err != nil {
			return Validation("%s: %w", loaded.Name, err)
		}
		if !result.Passed() {
			failed++
		}
		if err := printer.printResult(result); err != nil {
			return err
		}
	}
	if failed > 0 {
		env.logger.Warn("scenarios failed", "failed", failed, "total", len(scenarios))
		return &ExitError{Code: 1}
	}
	return nil
}
