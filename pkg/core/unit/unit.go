// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package unit defines the runtime contract of an executable unit and
// the catalog which discovers candidate unit files. A unit is loaded
// from its backing location immediately before execution and disposed
// after its apply or revert call returns; only the resulting ledger
// row (or its removal) outlives the execution.
package unit

import (
	"context"

	"github.com/migrata/migrata/pkg/core/repo"
)

// Executable is the required surface of a loaded unit. Its Apply
// operation runs inside the transaction which also records the unit's
// ledger row, so a failing apply leaves no trace in the database.
type Executable interface {
	Apply(ctx context.Context, tx repo.Tx) error
}

// Reverter is optionally implemented by units which can undo their
// apply operation. During rollback, a unit without a Reverter skips
// the revert action while its ledger entry is still removed.
type Reverter interface {
	Revert(ctx context.Context, tx repo.Tx) error
}

// Disposer is optionally implemented by units which acquire resources
// of their own, e.g., a dedicated connection. Dispose is invoked
// best-effort after the apply or revert call returns, whether it
// succeeded or failed; a dispose failure is logged and not propagated.
type Disposer interface {
	Dispose(ctx context.Context) error
}

// Loader resolves a unit location into its executable object.
// How a unit's code is located and instantiated is an adapter concern;
// injecting this interface keeps the engine control flow independent
// of any concrete loading mechanism.
type Loader interface {
	// Resolve loads the unit at the given location. It fails when the
	// location cannot be read, when its content is malformed, or when
	// the loaded object exposes no apply operation.
	Resolve(location string) (Executable, error)
}
