// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package unituc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/migrata/migrata/pkg/core/cerr"
	"github.com/migrata/migrata/pkg/core/log"
	"github.com/migrata/migrata/pkg/core/model"
	"github.com/migrata/migrata/pkg/core/repo"
	"github.com/migrata/migrata/pkg/core/unit"
)

// Apply use case applies all pending units in ascending version
// order, recording each of them in the ledger with a common batch
// number which is one more than the maximum recorded batch number.
// Each unit runs in its own transaction together with its ledger row
// insertion, so a unit's side effects and its ledger entry are never
// observed independently of one another. The first failing unit
// aborts the run, leaving the previously applied units committed and
// the remaining units untouched. The number of applied units is
// returned, also when an error cuts the run short.
func (eng *UseCase) Apply(ctx context.Context) (applied int, err error) {
	run := uuid.NewString()
	err = eng.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		lq := eng.ledgerrp.Conn(c)
		if err := lq.Ensure(ctx); err != nil {
			return err
		}
		entries, err := lq.List(ctx)
		if err != nil {
			return err
		}
		pending, err := eng.catalog.Pending(eng.dir, appliedSet(entries))
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			log.Info(ctx, "no pending units",
				slog.String("run", run),
				slog.String("kind", eng.kind.Name),
			)
			return nil
		}
		batch, err := lq.CurrentBatch(ctx)
		if err != nil {
			return err
		}
		batch++
		log.Info(ctx, "applying pending units",
			slog.String("run", run),
			slog.String("kind", eng.kind.Name),
			slog.Int("pending", len(pending)),
			slog.Int("batch", batch),
		)
		for _, d := range pending {
			if err := eng.applyOne(ctx, c, d, batch); err != nil {
				log.Error(ctx, "unit application failed",
					slog.String("run", run),
					log.Unit("unit", d.Version, d.Name),
					log.Err("error", err),
				)
				return err
			}
			applied++
			log.Info(ctx, "unit applied",
				slog.String("run", run),
				log.Unit("unit", d.Version, d.Name),
				slog.Int("batch", batch),
			)
		}
		return nil
	})
	return applied, err
}

// applyOne loads and applies the d unit and records its ledger row
// with the given batch number, all in one transaction. The unit is
// disposed, best-effort, after its apply call returns regardless of
// the outcome.
func (eng *UseCase) applyOne(
	ctx context.Context, c repo.Conn, d model.Descriptor, batch int,
) error {
	return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
		x, err := eng.loader.Resolve(d.Location)
		if err != nil {
			return cerr.Load(d.Version, d.Name, err)
		}
		defer eng.dispose(ctx, x, d)
		if err := x.Apply(ctx, tx); err != nil {
			return cerr.Apply(d.Version, d.Name, err)
		}
		return eng.ledgerrp.Tx(tx).Record(ctx, d.Version, d.Name, batch)
	})
}

// dispose invokes the optional Dispose operation of the x unit.
// A dispose failure is logged and not propagated, hence, it does not
// block the ledger recording or removal of its unit.
func (eng *UseCase) dispose(
	ctx context.Context, x unit.Executable, d model.Descriptor,
) {
	dsp, ok := x.(unit.Disposer)
	if !ok {
		return
	}
	if err := dsp.Dispose(ctx); err != nil {
		log.Warn(ctx, "unit dispose failed",
			slog.String("kind", eng.kind.Name),
			log.Unit("unit", d.Version, d.Name),
			log.Err("error", err),
		)
	}
}
