// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
)

// WriteFile writes data to name inside a fresh temporary directory
// owned by the test and returns the full path. The directory is
// removed when the test completes.
//
//	path := testutil.WriteFile(t, "walkthrough.yaml", []byte(scenarioYAML))
func WriteFile(t interface {
	Helper()
	TempDir() string
	Fatalf(format string, args ...any)
}, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}
