// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/migrata/migrata/pkg/adapter/db/postgres"
)

// ListTables returns the names of all ordinary tables of the current
// schema, as resolved by the current_schema() of the `q` session.
// Views, sequences, and foreign tables are excluded; dependent objects
// go away with their table when it is dropped with cascade.
func ListTables[Q postgres.Queryer](
	ctx context.Context, q Q,
) ([]string, error) {
	rows, err := q.Query(ctx, `SELECT tablename FROM pg_catalog.pg_tables
WHERE schemaname = current_schema()`)
	if err != nil {
		return nil, fmt.Errorf("querying pg_tables: %w", err)
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pg_tables: %w", err)
	}
	return tables, nil
}

// DropTableCascade drops the `table` table with cascading, dropping
// all dependent objects recursively. The table must exist, otherwise,
// an error will be returned.
//
// Caller is responsible to pass a trusted table name string.
func DropTableCascade[Q postgres.Queryer](
	ctx context.Context, q Q, table string,
) error {
	stmt := fmt.Sprintf(
		"DROP TABLE %s CASCADE", pgx.Identifier{table}.Sanitize(),
	)
	if _, err := q.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("dropping table %q: %w", table, err)
	}
	return nil
}
