// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the
// chunkledger CLI.
//
// Configuration comes from a single file named by the --config flag
// (via [LoadFile]) or the CHUNKLEDGER_CONFIG environment variable
// (via [Load]). There is no ~/.config discovery and no automatic file
// search. Without either, [Default] applies.
//
// Unknown keys are rejected and every field is validated on load, so
// a typo in the file fails loudly instead of falling back to a
// default. ${VAR} and ${VAR:-default} are expanded in
// scenarios.directory.
//
// This package depends on no other packages in this module.
package config
