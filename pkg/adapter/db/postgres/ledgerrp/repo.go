// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ledgerrp provides a reification of the repo.Ledger interface
// over one PostgreSQL table. Each unit kind instantiates its own Repo
// with its own ledger table name, so migrations and seeders are
// recorded independently while sharing this implementation.
package ledgerrp

import (
	"context"

	"github.com/migrata/migrata/pkg/adapter/db/postgres"
	"github.com/migrata/migrata/pkg/core/model"
	"github.com/migrata/migrata/pkg/core/repo"
)

// Repo represents a ledger repository, bound to one table name.
type Repo struct {
	table string
}

// New instantiates a ledger Repo recording applied units in the
// `table` table. The table name must be a trusted string since the
// Ensure operation interpolates it into a DDL statement.
func New(table string) *Repo {
	return &Repo{table: table}
}

type connQueryer struct {
	*postgres.Conn
	table string
}

// Conn unwraps the given repo.Conn instance, expecting to find an
// instance of *postgres.Conn as created by this adapter layer.
// Otherwise, it will panic. Unwrapped connection will be wrapped and
// returned as an instance of repo.LedgerConnQueryer interface, so it
// can be used in the use cases layer without requiring to type assert
// again and again.
//
// One operation mandates a connection. The Ensure operation creates
// the ledger table if it is absent; it is invoked before any per-unit
// transaction is opened, so the table is visible to all of them and a
// failed unit does not roll the table creation back.
func (ledger *Repo) Conn(c repo.Conn) repo.LedgerConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc, table: ledger.table}
}

// Ensure creates the ledger table if it does not exist, with a unique
// constraint on the version column. It is idempotent.
func (cq connQueryer) Ensure(ctx context.Context) error {
	return Ensure(ctx, cq.Conn, cq.table)
}

// List returns all ledger entries ordered by ascending version.
func (cq connQueryer) List(ctx context.Context) (
	[]model.LedgerEntry, error,
) {
	return List(ctx, cq.Conn, cq.table)
}

// CurrentBatch returns the maximum recorded batch number, or zero
// for an empty ledger.
func (cq connQueryer) CurrentBatch(ctx context.Context) (int, error) {
	return CurrentBatch(ctx, cq.Conn, cq.table)
}

// Record inserts a new ledger row in an auto-commit transaction.
// Engine code must prefer the transactional variant; this one exists
// to complete the repo.LedgerQueryer contract.
func (cq connQueryer) Record(
	ctx context.Context, version, name string, batch int,
) error {
	return Record(ctx, cq.Conn, cq.table, version, name, batch)
}

// Erase deletes the ledger row of the given version, if any.
func (cq connQueryer) Erase(ctx context.Context, version string) error {
	return Erase(ctx, cq.Conn, cq.table, version)
}

// Clear deletes all ledger rows.
func (cq connQueryer) Clear(ctx context.Context) error {
	return Clear(ctx, cq.Conn, cq.table)
}

type txQueryer struct {
	*postgres.Tx
	table string
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer. Otherwise, it will
// panic. Unwrapped transaction will be wrapped and returned as an
// instance of repo.LedgerTxQueryer interface.
//
// The Record and Erase operations are meant to run in the same
// transaction which executes their unit, so the unit's side effects
// and its ledger row commit or roll back atomically together.
func (ledger *Repo) Tx(tx repo.Tx) repo.LedgerTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt, table: ledger.table}
}

// List returns all ledger entries ordered by ascending version.
func (tq txQueryer) List(ctx context.Context) (
	[]model.LedgerEntry, error,
) {
	return List(ctx, tq.Tx, tq.table)
}

// CurrentBatch returns the maximum recorded batch number, or zero
// for an empty ledger.
func (tq txQueryer) CurrentBatch(ctx context.Context) (int, error) {
	return CurrentBatch(ctx, tq.Tx, tq.table)
}

// Record inserts a new ledger row in the current transaction.
func (tq txQueryer) Record(
	ctx context.Context, version, name string, batch int,
) error {
	return Record(ctx, tq.Tx, tq.table, version, name, batch)
}

// Erase deletes the ledger row of the given version, if any, in the
// current transaction.
func (tq txQueryer) Erase(ctx context.Context, version string) error {
	return Erase(ctx, tq.Tx, tq.table, version)
}

// Clear deletes all ledger rows in the current transaction.
func (tq txQueryer) Clear(ctx context.Context) error {
	return Clear(ctx, tq.Tx, tq.table)
}
