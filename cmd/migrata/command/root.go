// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the migrata
// tool. Commands are organized using the cobra library.
// The "migrate" sub-command manages the schema migration units while
// the "seed" sub-command manages the data seeder units; both expose
// the same set of actions over the shared unit execution engine.
//
//	./migrata migrate up       [-c /path/of/config.yaml]
//	./migrata migrate status   [--json]
//	./migrata migrate rollback [-s steps]
//	./migrata migrate fresh
//	./migrata migrate reset
//	./migrata seed run|status|rollback|fresh|reset
package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "migrata",
	Short: "Versioned database migration and seeding tool",
	Long: `Migrata applies ordered, versioned units of work (schema
migrations and data seeders) against a PostgreSQL database exactly
once. Applied units are recorded in a per-kind ledger table together
with a batch number grouping the units of one invocation, so they can
be rolled back batch by batch, reverted entirely, or dropped and
reapplied from scratch. Units are plain SQL files named
<version>_<name>.sql whose apply and revert statements are separated
by "-- +migrate Up" and "-- +migrate Down" directive comments.`,
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The exit code may
// be a boolean (zero for success and non-zero for failure) or may be
// chosen based on the error condition (if it is desired to report
// several error conditions in the CLI of this program).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the MIGRATA_CONFIG environment variable, or its default
// value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("MIGRATA_CONFIG"); !found {
		cfgPath = "migrata.yaml"
	}
}
