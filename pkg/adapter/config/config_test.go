// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/migrata/migrata/pkg/adapter/config"
	"github.com/migrata/migrata/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `database:
  url: postgres://u:p@localhost:5432/db
`)
	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, slog.LevelInfo, c.Level())

	kind, dir := c.Kind(model.Migrations)
	assert.Equal(t, model.Migrations.LedgerTable, kind.LedgerTable)
	assert.Equal(t, model.Migrations.DefaultDir, dir)
}

func TestLoadHonorsOverrides(t *testing.T) {
	path := writeConfig(t, `database:
  url: postgres://u:p@localhost:5432/db
migrations:
  table: schema_versions
  dir: db/migrate
seeders:
  dir: db/seed
log-level: debug
`)
	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, c.Level())

	kind, dir := c.Kind(model.Migrations)
	assert.Equal(t, "schema_versions", kind.LedgerTable)
	assert.Equal(t, "db/migrate", dir)

	kind, dir = c.Kind(model.Seeders)
	assert.Equal(t, model.Seeders.LedgerTable, kind.LedgerTable)
	assert.Equal(t, "db/seed", dir)
}

func TestLoadRejectsMissingURL(t *testing.T) {
	path := writeConfig(t, "migrations:\n  dir: x\n")
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating configs")
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	path := writeConfig(t, `database:
  url: postgres://u:p@localhost:5432/db
log-level: loud
`)
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
