// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"github.com/migrata/migrata/pkg/adapter/config"
	"github.com/migrata/migrata/pkg/adapter/db/postgres/ledgerrp"
	"github.com/migrata/migrata/pkg/adapter/db/postgres/schemarp"
	"github.com/migrata/migrata/pkg/adapter/unit/sqlfile"
	"github.com/migrata/migrata/pkg/core/model"
	"github.com/migrata/migrata/pkg/core/usecase/unituc"
	"github.com/spf13/cobra"
)

// withUseCase loads the configuration, connects the pool, wires the
// unit execution use case of the given kind, and runs f over it.
// The pool is owned here and closed when f returns, so each command
// invocation holds its resources for its own duration only.
func withUseCase(
	kind model.Kind, f func(context.Context, *unituc.UseCase) error,
) error {
	ctx := context.Background()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: c.Level()},
	)))
	p, err := c.ConnectionPool(ctx)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	k, dir := c.Kind(kind)
	eng, err := unituc.New(
		p, k,
		ledgerrp.New(k.LedgerTable),
		schemarp.New(),
		sqlfile.New(),
		unituc.WithDirectory(dir),
		unituc.WithExtensions(sqlfile.Ext),
	)
	if err != nil {
		return fmt.Errorf("unituc.New: %w", err)
	}
	return f(ctx, eng)
}

// newKindCommand builds the command tree of one unit kind. The
// migrate and seed commands only differ in their kind and the verb
// which applies the pending units (matching the familiar wording of
// each kind), all running the same engine underneath.
func newKindCommand(
	kind model.Kind, use, short, applyVerb string,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	apply := &cobra.Command{
		Use:   applyVerb,
		Short: fmt.Sprintf("Apply all pending %ss", kind.Name),
		Long: fmt.Sprintf(`Apply all pending %ss in ascending version
order, recording them in the ledger as one batch. Each unit runs in
its own transaction together with its ledger entry, halting at the
first failure and leaving the earlier units of the run applied.`,
			kind.Name),
		RunE: func(_ *cobra.Command, _ []string) error {
			return withUseCase(kind, func(
				ctx context.Context, eng *unituc.UseCase,
			) error {
				n, err := eng.Apply(ctx)
				if err != nil {
					return fmt.Errorf(
						"%d %ss applied: %w", n, kind.Name, err,
					)
				}
				fmt.Printf("%d %ss applied\n", n, kind.Name)
				return nil
			})
		},
	}

	var steps int
	rollback := &cobra.Command{
		Use:   "rollback",
		Short: fmt.Sprintf("Revert %ss of the current batch", kind.Name),
		Long: fmt.Sprintf(`Revert up to the given number of %ss of the
most recent batch, in descending version order, removing their ledger
entries. One invocation never reverts beyond the current batch.`,
			kind.Name),
		RunE: func(_ *cobra.Command, _ []string) error {
			return withUseCase(kind, func(
				ctx context.Context, eng *unituc.UseCase,
			) error {
				n, err := eng.Rollback(ctx, steps)
				if err != nil {
					return fmt.Errorf(
						"%d %ss reverted: %w", n, kind.Name, err,
					)
				}
				fmt.Printf("%d %ss reverted\n", n, kind.Name)
				return nil
			})
		},
	}
	rollback.Flags().IntVarP(
		&steps, "steps", "s", 1, "number of units to revert",
	)

	var asJSON bool
	status := &cobra.Command{
		Use:   "status",
		Short: fmt.Sprintf("Report applied and pending %ss", kind.Name),
		RunE: func(_ *cobra.Command, _ []string) error {
			return withUseCase(kind, func(
				ctx context.Context, eng *unituc.UseCase,
			) error {
				rep, err := eng.Status(ctx)
				if err != nil {
					return err
				}
				return printReport(rep, asJSON)
			})
		},
	}
	status.Flags().BoolVar(
		&asJSON, "json", false, "print the report as JSON",
	)

	fresh := &cobra.Command{
		Use:   "fresh",
		Short: "Drop all tables and reapply everything",
		Long: fmt.Sprintf(`Drop every table of the target schema except
the %s ledger table, clear the ledger, and reapply the complete %s set
from scratch as batch one. The dropping phase is one transaction; the
reapplication runs afterwards as a normal apply.`,
			kind.Name, kind.Name),
		RunE: func(_ *cobra.Command, _ []string) error {
			return withUseCase(kind, func(
				ctx context.Context, eng *unituc.UseCase,
			) error {
				n, err := eng.Fresh(ctx)
				if err != nil {
					return fmt.Errorf("fresh: %w", err)
				}
				fmt.Printf("schema rebuilt, %d %ss applied\n", n, kind.Name)
				return nil
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: fmt.Sprintf("Revert every applied %s", kind.Name),
		RunE: func(_ *cobra.Command, _ []string) error {
			return withUseCase(kind, func(
				ctx context.Context, eng *unituc.UseCase,
			) error {
				n, err := eng.Reset(ctx)
				if err != nil {
					return fmt.Errorf(
						"%d %ss reverted: %w", n, kind.Name, err,
					)
				}
				fmt.Printf("%d %ss reverted\n", n, kind.Name)
				return nil
			})
		},
	}

	cmd.AddCommand(apply, rollback, status, fresh, reset)
	return cmd
}

// printReport writes the status report to the standard output, either
// as indented JSON or as a plain listing.
func printReport(rep *unituc.Report, asJSON bool) error {
	if asJSON {
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling report: %w", err)
		}
		fmt.Println(string(b))
		return nil
	}
	fmt.Printf("Applied (%d):\n", len(rep.Applied))
	for _, e := range rep.Applied {
		fmt.Printf(
			"  %s_%s  batch=%d  %s\n",
			e.Version, e.Name, e.Batch,
			e.ExecutedAt.Format("2006-01-02 15:04:05"),
		)
	}
	fmt.Printf("Pending (%d):\n", len(rep.Pending))
	for _, d := range rep.Pending {
		fmt.Printf("  %s_%s\n", d.Version, d.Name)
	}
	return nil
}
