// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// SchemaTxQueryer lists the target schema inspection and destruction
// operations which the fresh lifecycle operation requires. They must
// run in a transaction so that dropping the managed tables and
// clearing the ledger commit atomically; a failure leaves the schema
// untouched.
type SchemaTxQueryer interface {
	// ListTables returns the names of all tables in the current
	// schema, including the ledger tables.
	ListTables(ctx context.Context) ([]string, error)

	// DropTableCascade drops the given table with cascade, dropping
	// dependent objects recursively.
	//
	// Caller is responsible to pass a trusted table name string.
	DropTableCascade(ctx context.Context, table string) error
}

// Schema is the target schema management repository. It adapts a Tx
// into the SchemaTxQueryer view.
type Schema interface {
	Tx(tx Tx) SchemaTxQueryer
}
