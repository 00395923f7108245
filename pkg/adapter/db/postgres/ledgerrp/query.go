// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgerrp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/migrata/migrata/pkg/adapter/db/postgres"
	"github.com/migrata/migrata/pkg/core/cerr"
	"github.com/migrata/migrata/pkg/core/model"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint
// violation, as raised when recording an already recorded version.
const uniqueViolation = "23505"

type gEntry struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	Version    string    `gorm:"column:version"`
	Name       string    `gorm:"column:name"`
	Batch      int       `gorm:"column:batch"`
	ExecutedAt time.Time `gorm:"column:executed_at"`
}

func (ge *gEntry) Model() model.LedgerEntry {
	return model.LedgerEntry{
		ID:         ge.ID,
		Version:    ge.Version,
		Name:       ge.Name,
		Batch:      ge.Batch,
		ExecutedAt: ge.ExecutedAt,
	}
}

// Ensure creates the `table` ledger table if it does not exist.
// The version column carries a unique constraint which is the last
// line of defense against double-application, whether caused by two
// pending candidates deriving the same version token or by two racing
// invocations of this engine.
//
// Caller is responsible to pass a trusted table name string.
func Ensure(
	ctx context.Context, c *postgres.Conn, table string,
) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	version VARCHAR(255) NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL,
	batch INTEGER NOT NULL,
	executed_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, pgx.Identifier{table}.Sanitize())
	if _, err := c.Exec(ctx, q); err != nil {
		return cerr.Ledger("", fmt.Errorf(
			"creating table %q: %w", table, err,
		))
	}
	return nil
}

// List returns all rows of the `table` ledger table ordered by
// ascending version.
func List[Q postgres.Queryer](
	ctx context.Context, q Q, table string,
) ([]model.LedgerEntry, error) {
	var ges []gEntry
	gdb := q.GORM(ctx)
	if err := gdb.Table(table).Order("version ASC").Find(&ges).Error; err != nil {
		return nil, cerr.Ledger("", fmt.Errorf("listing: %w", err))
	}
	entries := make([]model.LedgerEntry, 0, len(ges))
	for i := range ges {
		entries = append(entries, ges[i].Model())
	}
	return entries, nil
}

// CurrentBatch returns the maximum batch value of the `table` ledger
// table, or zero if it has no rows.
func CurrentBatch[Q postgres.Queryer](
	ctx context.Context, q Q, table string,
) (int, error) {
	var batch int
	gdb := q.GORM(ctx)
	err := gdb.Table(table).
		Select("COALESCE(MAX(batch), 0)").
		Scan(&batch).Error
	if err != nil {
		return 0, cerr.Ledger("", fmt.Errorf("max batch: %w", err))
	}
	return batch, nil
}

// Record inserts one row into the `table` ledger table, leaving the
// id and executed_at columns to their storage-assigned defaults.
// A unique constraint violation on the version column is reported as
// a ledger stage error wrapping cerr.ErrDuplicateVersion.
func Record[Q postgres.Queryer](
	ctx context.Context, q Q, table, version, name string, batch int,
) error {
	ge := gEntry{Version: version, Name: name, Batch: batch}
	gdb := q.GORM(ctx)
	err := gdb.Table(table).
		Select("version", "name", "batch").
		Create(&ge).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return cerr.Ledger(version, fmt.Errorf(
				"%w: %w", cerr.ErrDuplicateVersion, err,
			))
		}
		return cerr.Ledger(version, fmt.Errorf("recording: %w", err))
	}
	return nil
}

// Erase deletes the row of the given version from the `table` ledger
// table. A missing row causes no error.
func Erase[Q postgres.Queryer](
	ctx context.Context, q Q, table, version string,
) error {
	gdb := q.GORM(ctx)
	err := gdb.Table(table).
		Where("version = ?", version).
		Delete(&gEntry{}).Error
	if err != nil {
		return cerr.Ledger(version, fmt.Errorf("erasing: %w", err))
	}
	return nil
}

// Clear deletes all rows of the `table` ledger table.
func Clear[Q postgres.Queryer](
	ctx context.Context, q Q, table string,
) error {
	gdb := q.GORM(ctx)
	if err := gdb.Table(table).Where("TRUE").Delete(&gEntry{}).Error; err != nil {
		return cerr.Ledger("", fmt.Errorf("clearing: %w", err))
	}
	return nil
}
