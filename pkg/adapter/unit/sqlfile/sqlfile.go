// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sqlfile provides a unit.Loader implementation which resolves
// a unit location into the plain SQL script stored at that path.
// A script is split into an apply and an optional revert section by
// the "-- +migrate Up" and "-- +migrate Down" directive comments.
// A file without any directive is taken as an apply-only script.
// Each section runs as one multi-statement Exec call in the
// transaction supplied by the engine, so the script must not manage
// transactions on its own.
package sqlfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/migrata/migrata/pkg/core/repo"
	"github.com/migrata/migrata/pkg/core/unit"
)

const (
	directivePrefix = "-- +migrate "
	directiveUp     = "Up"
	directiveDown   = "Down"
)

// Ext is the file name extension recognized by this loader.
const Ext = ".sql"

// Loader resolves unit locations as SQL script files.
type Loader struct {
}

// New instantiates a sqlfile Loader.
func New() *Loader {
	return &Loader{}
}

// Resolve reads and parses the SQL script at the given location.
// It fails when the file cannot be read, when it contains an unknown
// or misplaced directive, or when its apply section is empty (a unit
// without an apply operation violates the unit contract).
// The returned object implements unit.Reverter if and only if the
// script has a non-empty Down section.
func (l *Loader) Resolve(location string) (unit.Executable, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", location, err)
	}
	up, down, err := parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", location, err)
	}
	if strings.TrimSpace(up) == "" {
		return nil, fmt.Errorf(
			"%q exposes no apply statements", location,
		)
	}
	if strings.TrimSpace(down) == "" {
		return &script{up: up}, nil
	}
	return &reversibleScript{script: script{up: up}, down: down}, nil
}

// parse splits the src script into its Up and Down sections.
// When src contains no directive at all, the whole script is the Up
// section. Otherwise, every statement must follow an Up or Down
// directive; only comments and blank lines may precede the first one.
func parse(src string) (up, down string, err error) {
	if !strings.Contains(src, directivePrefix) {
		return src, "", nil
	}
	var ub, db strings.Builder
	section := (*strings.Builder)(nil)
	scanner := bufio.NewScanner(strings.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, directivePrefix) {
			switch d := strings.TrimSpace(
				trimmed[len(directivePrefix):],
			); d {
			case directiveUp:
				section = &ub
			case directiveDown:
				section = &db
			default:
				return "", "", fmt.Errorf("unknown directive %q", d)
			}
			continue
		}
		if section == nil {
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			return "", "", errors.New(
				"statement precedes the first directive",
			)
		}
		section.WriteString(line)
		section.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("scanning script: %w", err)
	}
	return ub.String(), db.String(), nil
}

// script is an apply-only unit; it intentionally does not implement
// unit.Reverter, so a rollback skips its revert action while still
// removing its ledger entry.
type script struct {
	up string
}

// Apply executes the Up section statements in the given transaction.
func (s *script) Apply(ctx context.Context, tx repo.Tx) error {
	if _, err := tx.Exec(ctx, s.up); err != nil {
		return fmt.Errorf("executing apply script: %w", err)
	}
	return nil
}

type reversibleScript struct {
	script
	down string
}

// Revert executes the Down section statements in the given
// transaction.
func (s *reversibleScript) Revert(ctx context.Context, tx repo.Tx) error {
	if _, err := tx.Exec(ctx, s.down); err != nil {
		return fmt.Errorf("executing revert script: %w", err)
	}
	return nil
}
