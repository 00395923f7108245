// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// Kind parameterizes the unit execution engine for one category of
// units. Migrations and seeders share the exact same execution,
// rollback, and lifecycle semantics, differing only in the ledger
// table name which records them and the default directory which holds
// their files. A single engine implementation is instantiated once
// per Kind instead of duplicating the logic per category.
type Kind struct {
	// Name identifies the unit category in logs and error messages,
	// e.g., "migration" or "seeder".
	Name string

	// LedgerTable is the name of the table recording applied units of
	// this kind. It must be a trusted string since it is interpolated
	// into DDL statements.
	LedgerTable string

	// DefaultDir is the directory holding unit files of this kind,
	// used when the configuration does not override it.
	DefaultDir string
}

// Migrations is the schema migration unit kind.
var Migrations = Kind{
	Name:        "migration",
	LedgerTable: "migrations",
	DefaultDir:  "migrations",
}

// Seeders is the data seeder unit kind.
var Seeders = Kind{
	Name:        "seeder",
	LedgerTable: "seeders",
	DefaultDir:  "seeders",
}
