// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package unituc_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/migrata/migrata/pkg/core/cerr"
	"github.com/migrata/migrata/pkg/core/model"
	"github.com/migrata/migrata/pkg/core/repo"
	"github.com/migrata/migrata/pkg/core/unit"
)

// fakeDB is the in-memory state shared by the fake pool, ledger, and
// schema repositories. The engine semantics are exercised against it
// without a real DBMS, while the real postgres adapter is covered by
// the ledgerrp integration tests.
type fakeDB struct {
	entries []model.LedgerEntry
	nextID  int64
	tables  []string
}

func (db *fakeDB) clone() *fakeDB {
	cp := &fakeDB{nextID: db.nextID}
	cp.entries = append(cp.entries, db.entries...)
	cp.tables = append(cp.tables, db.tables...)
	return cp
}

type fakePool struct {
	db *fakeDB
}

func (p *fakePool) Conn(ctx context.Context, h repo.ConnHandler) error {
	return h(ctx, &fakeConn{db: p.db})
}

type fakeConn struct {
	db *fakeDB
}

func (c *fakeConn) Exec(
	context.Context, string, ...any,
) (int64, error) {
	return 0, nil
}

func (c *fakeConn) Query(
	context.Context, string, ...any,
) (repo.Rows, error) {
	return nil, errors.New("not supported by fakeConn")
}

func (c *fakeConn) IsConn() {
}

// Tx snapshots the database state before running the handler and
// restores it when the handler fails, imitating a rolled back
// transaction.
func (c *fakeConn) Tx(ctx context.Context, h repo.TxHandler) error {
	snapshot := c.db.clone()
	if err := h(ctx, &fakeTx{db: c.db}); err != nil {
		*c.db = *snapshot
		return err
	}
	return nil
}

type fakeTx struct {
	db *fakeDB
}

func (tx *fakeTx) Exec(
	context.Context, string, ...any,
) (int64, error) {
	return 0, nil
}

func (tx *fakeTx) Query(
	context.Context, string, ...any,
) (repo.Rows, error) {
	return nil, errors.New("not supported by fakeTx")
}

func (tx *fakeTx) IsTx() {
}

func dbOf(q any) *fakeDB {
	switch qq := q.(type) {
	case *fakeConn:
		return qq.db
	case *fakeTx:
		return qq.db
	}
	panic(fmt.Sprintf("unexpected queryer type %T", q))
}

type fakeLedger struct {
}

func (l *fakeLedger) Conn(c repo.Conn) repo.LedgerConnQueryer {
	return &fakeLedgerQueryer{db: dbOf(c)}
}

func (l *fakeLedger) Tx(tx repo.Tx) repo.LedgerTxQueryer {
	return &fakeLedgerQueryer{db: dbOf(tx)}
}

type fakeLedgerQueryer struct {
	db *fakeDB
}

func (lq *fakeLedgerQueryer) Ensure(context.Context) error {
	return nil
}

func (lq *fakeLedgerQueryer) List(context.Context) (
	[]model.LedgerEntry, error,
) {
	entries := make([]model.LedgerEntry, len(lq.db.entries))
	copy(entries, lq.db.entries)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Version < entries[j].Version
	})
	return entries, nil
}

func (lq *fakeLedgerQueryer) CurrentBatch(context.Context) (int, error) {
	batch := 0
	for _, e := range lq.db.entries {
		if e.Batch > batch {
			batch = e.Batch
		}
	}
	return batch, nil
}

func (lq *fakeLedgerQueryer) Record(
	_ context.Context, version, name string, batch int,
) error {
	for _, e := range lq.db.entries {
		if e.Version == version {
			return cerr.Ledger(version, cerr.ErrDuplicateVersion)
		}
	}
	lq.db.nextID++
	lq.db.entries = append(lq.db.entries, model.LedgerEntry{
		ID:         lq.db.nextID,
		Version:    version,
		Name:       name,
		Batch:      batch,
		ExecutedAt: time.Now(),
	})
	return nil
}

func (lq *fakeLedgerQueryer) Erase(
	_ context.Context, version string,
) error {
	for i, e := range lq.db.entries {
		if e.Version == version {
			lq.db.entries = append(
				lq.db.entries[:i], lq.db.entries[i+1:]...,
			)
			return nil
		}
	}
	return nil
}

func (lq *fakeLedgerQueryer) Clear(context.Context) error {
	lq.db.entries = nil
	return nil
}

type fakeSchema struct {
}

func (s *fakeSchema) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	return &fakeSchemaQueryer{db: dbOf(tx)}
}

type fakeSchemaQueryer struct {
	db *fakeDB
}

func (sq *fakeSchemaQueryer) ListTables(context.Context) (
	[]string, error,
) {
	tables := make([]string, len(sq.db.tables))
	copy(tables, sq.db.tables)
	return tables, nil
}

func (sq *fakeSchemaQueryer) DropTableCascade(
	_ context.Context, table string,
) error {
	for i, t := range sq.db.tables {
		if t == table {
			sq.db.tables = append(
				sq.db.tables[:i], sq.db.tables[i+1:]...,
			)
			return nil
		}
	}
	return fmt.Errorf("table %q does not exist", table)
}

// journal records unit lifecycle calls in their invocation order.
type journal struct {
	calls []string
}

func (j *journal) add(op, name string) {
	j.calls = append(j.calls, op+" "+name)
}

func (j *journal) only(op string) []string {
	var sel []string
	for _, c := range j.calls {
		if len(c) > len(op) && c[:len(op)] == op {
			sel = append(sel, c)
		}
	}
	return sel
}

// fakeUnit is an apply-only unit; it does not expose a revert.
type fakeUnit struct {
	name       string
	jr         *journal
	applyErr   error
	disposeErr error

	// creates is appended to the fake database tables on apply,
	// imitating a unit's schema side effect.
	creates string
}

func (u *fakeUnit) Apply(_ context.Context, tx repo.Tx) error {
	u.jr.add("apply", u.name)
	if u.applyErr != nil {
		return u.applyErr
	}
	if u.creates != "" {
		db := dbOf(tx)
		db.tables = append(db.tables, u.creates)
	}
	return nil
}

func (u *fakeUnit) Dispose(context.Context) error {
	u.jr.add("dispose", u.name)
	return u.disposeErr
}

// revertibleUnit additionally exposes a revert operation.
type revertibleUnit struct {
	fakeUnit
	revertErr error
}

func (u *revertibleUnit) Revert(_ context.Context, tx repo.Tx) error {
	u.jr.add("revert", u.name)
	if u.revertErr != nil {
		return u.revertErr
	}
	if u.creates != "" {
		db := dbOf(tx)
		for i, t := range db.tables {
			if t == u.creates {
				db.tables = append(db.tables[:i], db.tables[i+1:]...)
				break
			}
		}
	}
	return nil
}

// fakeLoader resolves locations to preconfigured units by the file
// base name.
type fakeLoader struct {
	units map[string]unit.Executable
}

func (l *fakeLoader) Resolve(location string) (unit.Executable, error) {
	base := filepath.Base(location)
	x, ok := l.units[base]
	if !ok {
		return nil, fmt.Errorf("no unit is registered for %q", base)
	}
	return x, nil
}
