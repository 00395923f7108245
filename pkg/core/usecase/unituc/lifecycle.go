// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package unituc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/migrata/migrata/pkg/core/log"
	"github.com/migrata/migrata/pkg/core/model"
	"github.com/migrata/migrata/pkg/core/repo"
)

// Report is the result of the Status use case, pairing the applied
// ledger entries (ascending by version) with the pending candidate
// descriptors (ascending by version). Presentation belongs to the
// caller.
type Report struct {
	Applied []model.LedgerEntry `json:"applied"`
	Pending []model.Descriptor  `json:"pending"`
}

// Status use case reports the applied and pending units of this kind
// without changing any unit state. It still ensures that the ledger
// table exists, which is an idempotent initialization and safe before
// every operation.
func (eng *UseCase) Status(ctx context.Context) (rep *Report, err error) {
	err = eng.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		lq := eng.ledgerrp.Conn(c)
		if err := lq.Ensure(ctx); err != nil {
			return err
		}
		applied, err := lq.List(ctx)
		if err != nil {
			return err
		}
		pending, err := eng.catalog.Pending(
			eng.dir, appliedSet(applied),
		)
		if err != nil {
			return err
		}
		rep = &Report{Applied: applied, Pending: pending}
		return nil
	})
	if err != nil {
		rep = nil
	}
	return
}

// Fresh use case destroys all managed state and reapplies every unit
// from scratch. In a first transaction, it drops every table of the
// target schema except this kind's ledger table (with cascade) and
// clears the ledger entirely. Afterwards, outside that transaction,
// it runs a normal Apply over an empty ledger, so the full candidate
// set lands in one fresh batch numbered one.
// The two phases are deliberately separate transactions: a crash in
// between leaves an empty schema with an empty ledger, which is
// recovered by re-running Apply, while fusing the phases would tie
// DDL and unit application into one transaction which not every
// database engine supports.
func (eng *UseCase) Fresh(ctx context.Context) (int, error) {
	run := uuid.NewString()
	err := eng.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		lq := eng.ledgerrp.Conn(c)
		if err := lq.Ensure(ctx); err != nil {
			return err
		}
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			sq := eng.schemarp.Tx(tx)
			tables, err := sq.ListTables(ctx)
			if err != nil {
				return err
			}
			for _, table := range tables {
				if table == eng.kind.LedgerTable {
					continue
				}
				if err := sq.DropTableCascade(ctx, table); err != nil {
					return err
				}
				log.Info(ctx, "table dropped",
					slog.String("run", run),
					slog.String("table", table),
				)
			}
			return eng.ledgerrp.Tx(tx).Clear(ctx)
		})
	})
	if err != nil {
		return 0, err
	}
	return eng.Apply(ctx)
}
