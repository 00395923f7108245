// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp provides a reification of the repo.Schema interface
// making it possible to enumerate and drop the tables of the target
// schema, as required by the fresh lifecycle operation.
package schemarp

import (
	"context"

	"github.com/migrata/migrata/pkg/adapter/db/postgres"
	"github.com/migrata/migrata/pkg/core/repo"
)

// Repo represents a schema management repository.
type Repo struct {
}

// New instantiates a schema management Repo struct. Although this New
// function does not perform complex operations, and users may use
// a &schemarp.Repo{} directly too, but this method improves the code
// readability as schemarp.New() makes the package to look alike a
// data type.
func New() *Repo {
	return &Repo{}
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer. Otherwise, it will
// panic. Unwrapped transaction will be wrapped and returned as an
// instance of repo.SchemaTxQueryer interface, so it can be used in
// the use cases layer without requiring to type assert again and again.
//
// A transaction is mandated because the fresh operation must drop all
// managed tables and clear the ledger atomically; a failure midway
// must leave the schema as it was.
func (schema *Repo) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

// ListTables returns the names of all ordinary tables in the current
// schema, including the ledger tables.
func (tq txQueryer) ListTables(ctx context.Context) ([]string, error) {
	return ListTables(ctx, tq.Tx)
}

// DropTableCascade drops the `table` table with cascading, dropping
// dependent objects such as foreign key constraints recursively.
//
// Caller is responsible to pass a trusted table name string.
func (tq txQueryer) DropTableCascade(
	ctx context.Context, table string,
) error {
	return DropTableCascade(ctx, tq.Tx, table)
}
