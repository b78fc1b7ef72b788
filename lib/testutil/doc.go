// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, such as upload IDs opened in a shared registry.
//
// [WriteFile] writes a fixture into a per-test temporary directory
// and returns its path, for tests that exercise file loading.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no dependencies on other packages in this module.
package testutil
