// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model contains the main use cases models, independent of
// the frameworks and third-party libraries. A unit is one migration
// or one seeder, that is, a versioned apply/revert pair of operations.
// The LedgerEntry records an applied unit while the Descriptor
// represents a discovered, not necessarily applied, unit file.
package model

import "time"

// LedgerEntry represents one row of a ledger table, recording a
// successfully applied unit. The Version is the sole identity and
// ordering key. The Batch groups all units which were applied during
// one invocation. The ExecutedAt timestamp is informational and takes
// no part in the ordering decisions.
type LedgerEntry struct {
	ID         int64     `json:"id"`
	Version    string    `json:"version"`
	Name       string    `json:"name"`
	Batch      int       `json:"batch"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Descriptor represents a candidate unit file as discovered on disk,
// before (or independent of) being loaded and executed. The Location
// is the path which a unit loader can resolve into an executable
// object. The Version and Name fields are derived from the file base
// name by the DeriveVersion and DeriveName transforms.
type Descriptor struct {
	Location string `json:"location"`
	Version  string `json:"version"`
	Name     string `json:"name"`
}
