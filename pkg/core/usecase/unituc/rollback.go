// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package unituc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/migrata/migrata/pkg/core/cerr"
	"github.com/migrata/migrata/pkg/core/log"
	"github.com/migrata/migrata/pkg/core/model"
	"github.com/migrata/migrata/pkg/core/repo"
	"github.com/migrata/migrata/pkg/core/unit"
)

// selector picks the ledger entries which a revert run must process,
// in their revert order, out of all entries and the current batch
// number.
type selector func(
	entries []model.LedgerEntry, batch int,
) []model.LedgerEntry

// Rollback use case reverts up to steps units of the current (most
// recent) batch, in descending version order, removing their ledger
// rows. A rollback never spans multiple batches in one invocation,
// even when steps exceeds the current batch size; batch numbering
// does not correlate with version order, so the selection goes by the
// batch column, never by version ranges. The number of reverted units
// is returned, also when an error cuts the run short.
func (eng *UseCase) Rollback(
	ctx context.Context, steps int,
) (int, error) {
	if steps <= 0 {
		return 0, cerr.Config(
			fmt.Errorf("steps (%d) is not positive", steps),
		)
	}
	return eng.revert(ctx, func(
		entries []model.LedgerEntry, batch int,
	) []model.LedgerEntry {
		var sel []model.LedgerEntry
		for _, e := range entries {
			if e.Batch == batch {
				sel = append(sel, e)
			}
		}
		sortDescending(sel)
		if len(sel) > steps {
			sel = sel[:steps]
		}
		return sel
	})
}

// Reset use case reverts every ledger-recorded unit, in the reverse
// of the overall application order, returning the ledger to empty
// without touching unrelated schema objects. The number of reverted
// units is returned.
func (eng *UseCase) Reset(ctx context.Context) (int, error) {
	return eng.revert(ctx, func(
		entries []model.LedgerEntry, _ int,
	) []model.LedgerEntry {
		sel := make([]model.LedgerEntry, len(entries))
		copy(sel, entries)
		sortDescending(sel)
		return sel
	})
}

func sortDescending(entries []model.LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Version > entries[j].Version
	})
}

// revert runs the shared revert algorithm over the entries picked by
// the sel selector, one transaction per unit, halting at the first
// failure. A selected entry whose unit file can no longer be
// discovered is a hard failure since its revert action is unknown and
// its ledger row may not be safely removed.
func (eng *UseCase) revert(
	ctx context.Context, sel selector,
) (reverted int, err error) {
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
		batch, err := lq.CurrentBatch(ctx)
		if err != nil {
			return err
		}
		selected := sel(entries, batch)
		if len(selected) == 0 {
			log.Info(ctx, "no units to revert",
				slog.String("run", run),
				slog.String("kind", eng.kind.Name),
			)
			return nil
		}
		ds, err := eng.catalog.Discover(eng.dir)
		if err != nil {
			return err
		}
		index := make(map[string]model.Descriptor, len(ds))
		for _, d := range ds {
			if _, ok := index[d.Version]; !ok {
				index[d.Version] = d
			}
		}
		log.Info(ctx, "reverting units",
			slog.String("run", run),
			slog.String("kind", eng.kind.Name),
			slog.Int("selected", len(selected)),
		)
		for _, e := range selected {
			d, ok := index[e.Version]
			if !ok {
				return cerr.Load(e.Version, e.Name, cerr.ErrMissingSource)
			}
			if err := eng.revertOne(ctx, c, d, e); err != nil {
				log.Error(ctx, "unit revert failed",
					slog.String("run", run),
					log.Unit("unit", e.Version, e.Name),
					log.Err("error", err),
				)
				return err
			}
			reverted++
			log.Info(ctx, "unit reverted",
				slog.String("run", run),
				log.Unit("unit", e.Version, e.Name),
			)
		}
		return nil
	})
	return reverted, err
}

// revertOne loads the d unit, invokes its revert operation when it
// exposes one, and erases its e ledger entry, all in one transaction.
// A unit without a revert operation skips the revert action while its
// ledger entry is still removed; revert is best-effort, the ledger
// cleanup is mandatory once a rollback was explicitly invoked.
func (eng *UseCase) revertOne(
	ctx context.Context,
	c repo.Conn,
	d model.Descriptor,
	e model.LedgerEntry,
) error {
	return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
		x, err := eng.loader.Resolve(d.Location)
		if err != nil {
			return cerr.Load(e.Version, e.Name, err)
		}
		defer eng.dispose(ctx, x, d)
		if r, ok := x.(unit.Reverter); ok {
			if err := r.Revert(ctx, tx); err != nil {
				return cerr.Revert(e.Version, e.Name, err)
			}
		} else {
			log.Warn(ctx, "unit exposes no revert, removing its entry",
				slog.String("kind", eng.kind.Name),
				log.Unit("unit", e.Version, e.Name),
			)
		}
		return eng.ledgerrp.Tx(tx).Erase(ctx, e.Version)
	})
}
