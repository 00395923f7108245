// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package unituc contains the versioned unit execution use cases.
// One UseCase instance drives one unit kind (migrations or seeders)
// and exposes the Apply, Rollback, Reset, Status, and Fresh
// operations. Applying runs each pending unit in its own transaction
// together with its ledger row, in ascending version order, halting
// at the first failure. Rolling back reverts units of the current
// batch in descending version order, removing their ledger rows.
// Units never run concurrently; later units may depend on earlier
// ones and the ledger batch numbering assumes sequential progress.
package unituc

import (
	"fmt"

	"github.com/migrata/migrata/pkg/core/model"
	"github.com/migrata/migrata/pkg/core/repo"
	"github.com/migrata/migrata/pkg/core/unit"
)

// UseCase represents the unit execution engine for one unit kind.
// It holds a database connection pool, the ledger and schema
// repository instances (to be driven over the DB pool), the unit
// catalog, and the loader which turns a discovered unit file into an
// executable object.
type UseCase struct {
	pool     repo.Pool
	kind     model.Kind
	ledgerrp repo.Ledger
	schemarp repo.Schema
	loader   unit.Loader

	catalog *unit.Catalog
	dir     string
}

// New instantiates a unit execution use case for the given kind.
// Required parameters are passed individually, so caller has to
// provision them and whenever they change, caller will notice and fix
// them due to a compilation error.
// Optional parameters are passed as a series of functional options
// in order to facilitate their validation and flexibility.
func New(
	p repo.Pool,
	kind model.Kind,
	l repo.Ledger,
	s repo.Schema,
	loader unit.Loader,
	opts ...Option,
) (*UseCase, error) {
	eng := &UseCase{
		pool:     p,
		kind:     kind,
		ledgerrp: l,
		schemarp: s,
		loader:   loader,
	}
	for _, opt := range opts {
		if err := opt(eng); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if eng.dir == "" {
		eng.dir = kind.DefaultDir
	}
	if eng.catalog == nil {
		eng.catalog = unit.NewCatalog(".sql")
	}
	return eng, nil
}

// appliedSet indexes the versions of the given ledger entries, so the
// catalog can determine the pending candidates by a set difference.
func appliedSet(entries []model.LedgerEntry) map[string]struct{} {
	versions := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		versions[e.Version] = struct{}{}
	}
	return versions
}
