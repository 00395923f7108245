// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/migrata/migrata/pkg/core/model"
)

// LedgerQueryer lists the ledger operations which may run on a
// connection or in a transaction alike. When an operation must commit
// or roll back atomically with a unit's own side effects, the caller
// is responsible to obtain a LedgerTxQueryer from the same transaction
// which executes that unit.
type LedgerQueryer interface {
	// List returns all ledger entries ordered by ascending version.
	// It has no side effects.
	List(ctx context.Context) ([]model.LedgerEntry, error)

	// CurrentBatch returns the maximum batch number recorded in the
	// ledger, or zero if the ledger is empty.
	CurrentBatch(ctx context.Context) (int, error)

	// Record inserts a new ledger row. If the version is already
	// recorded, it fails with an error wrapping
	// cerr.ErrDuplicateVersion; the engine treats that as a defensive
	// condition which should not occur under correct use.
	Record(ctx context.Context, version, name string, batch int) error

	// Erase deletes the ledger row of the given version. A missing
	// row is not an error.
	Erase(ctx context.Context, version string) error

	// Clear deletes every ledger row. It is used by the fresh
	// lifecycle operation.
	Clear(ctx context.Context) error
}

// LedgerConnQueryer extends LedgerQueryer with the operations which
// require a connection, running in their own auto-commit transactions.
type LedgerConnQueryer interface {
	LedgerQueryer

	// Ensure creates the ledger table if it does not exist.
	// It is idempotent and safe to call before every operation.
	Ensure(ctx context.Context) error
}

// LedgerTxQueryer is the transaction-scoped view of the ledger.
type LedgerTxQueryer interface {
	LedgerQueryer
}

// Ledger is the durable record of which unit versions have been
// applied, in which batch, and when. An implementation binds a ledger
// table name and adapts a Conn or Tx into the matching queryer view.
type Ledger interface {
	Conn(c Conn) LedgerConnQueryer
	Tx(tx Tx) LedgerTxQueryer
}
