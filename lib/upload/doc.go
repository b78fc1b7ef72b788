// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package upload wraps a [chunktrack.Tracker] in the bookkeeping a
// chunk receiver needs for one upload: the expected id range,
// duplicate and receipt counters, progress timestamps, and a
// serializable [Progress] snapshot for reporting.
//
// A [Registry] holds one [Session] per upload ID. Neither type locks;
// a registry and its sessions belong to the single goroutine that
// receives chunk acknowledgements.
package upload
