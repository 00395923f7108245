// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package unituc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/migrata/migrata/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollbackIsBatchScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUnit(t, "1_a.sql", f.revertible("1_a"))
	f.addUnit(t, "2_b.sql", f.revertible("2_b"))
	_, err := f.eng.Apply(ctx)
	require.NoError(t, err)
	f.addUnit(t, "3_c.sql", f.revertible("3_c"))
	_, err = f.eng.Apply(ctx)
	require.NoError(t, err)

	// steps exceeding the current batch size must not reach batch 1
	n, err := f.eng.Rollback(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.ElementsMatch(t, []string{"1", "2"}, f.versions(t))
	assert.Equal(t, []string{"revert 3_c"}, f.jr.only("revert"))
}

func TestRollbackLimitsSteps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUnit(t, "1_a.sql", f.revertible("1_a"))
	f.addUnit(t, "2_b.sql", f.revertible("2_b"))
	f.addUnit(t, "3_c.sql", f.revertible("3_c"))
	_, err := f.eng.Apply(ctx)
	require.NoError(t, err)

	n, err := f.eng.Rollback(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"1"}, f.versions(t))
	// descending version order within the batch
	assert.Equal(
		t, []string{"revert 3_c", "revert 2_b"}, f.jr.only("revert"),
	)
}

func TestRollbackRejectsNonPositiveSteps(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.Rollback(context.Background(), 0)
	require.Error(t, err)
	var ce *cerr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, cerr.StageConfig, ce.Stage)
}

func TestRollbackWithEmptyLedgerIsNoOp(t *testing.T) {
	f := newFixture(t)
	n, err := f.eng.Rollback(context.Background(), 3)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRollbackSkipsRevertButErasesEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUnit(t, "1_a.sql", f.applyOnly("1_a"))
	_, err := f.eng.Apply(ctx)
	require.NoError(t, err)

	n, err := f.eng.Rollback(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, f.db.entries, "ledger cleanup is mandatory")
	assert.Empty(t, f.jr.only("revert"),
		"no revert action may run for an apply-only unit")
}

func TestRollbackMissingSourceIsHardFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUnit(t, "1_a.sql", f.revertible("1_a"))
	_, err := f.eng.Apply(ctx)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "1_a.sql")))

	n, err := f.eng.Rollback(ctx, 1)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, cerr.ErrMissingSource)
	assert.Equal(t, []string{"1"}, f.versions(t),
		"the entry of an unresolvable unit must be kept")
}

func TestRollbackHaltsAtFirstRevertFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUnit(t, "1_a.sql", f.revertible("1_a"))
	failing := f.revertible("2_b")
	failing.revertErr = errors.New("boom")
	f.addUnit(t, "2_b.sql", failing)
	f.addUnit(t, "3_c.sql", f.revertible("3_c"))
	_, err := f.eng.Apply(ctx)
	require.NoError(t, err)

	n, err := f.eng.Rollback(ctx, 3)
	require.Error(t, err)
	assert.Equal(t, 1, n, "only 3_c was reverted before the failure")
	var ce *cerr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, cerr.StageRevert, ce.Stage)
	assert.Equal(t, "2", ce.Version)
	assert.ElementsMatch(t, []string{"1", "2"}, f.versions(t),
		"the failing unit's entry must survive the rollback")
}

func TestResetRevertsEverythingInReverseOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUnit(t, "1_a.sql", f.revertible("1_a"))
	f.addUnit(t, "2_b.sql", f.revertible("2_b"))
	_, err := f.eng.Apply(ctx)
	require.NoError(t, err)
	f.addUnit(t, "3_c.sql", f.revertible("3_c"))
	_, err = f.eng.Apply(ctx)
	require.NoError(t, err)

	n, err := f.eng.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, f.db.entries)
	assert.Equal(
		t,
		[]string{"revert 3_c", "revert 2_b", "revert 1_a"},
		f.jr.only("revert"),
		"reverts must mirror the apply order in reverse",
	)
}
