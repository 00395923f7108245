// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr categorizes the error conditions of the unit execution
// engine. Every failure of an engine invocation is fatal for that
// invocation, however, callers need to distinguish the failing stage
// and the offending unit in order to present it properly.
// The Error struct wraps an underlying cause with the failing Stage
// and the unit version/name (when one specific unit is at fault),
// supporting the errors.Is and errors.As inspection functions.
package cerr

import (
	"errors"
	"fmt"
)

// Stage indicates which engine stage an error belongs to.
type Stage string

// Engine stages which may fail. Discovery and configuration errors
// precede any unit-level work, hence, carry no unit version. The
// load, apply, and revert stages always identify one specific unit.
const (
	StageConfig    Stage = "config"
	StageDiscovery Stage = "discovery"
	StageLoad      Stage = "load"
	StageApply     Stage = "apply"
	StageRevert    Stage = "revert"
	StageLedger    Stage = "ledger"
)

// ErrDuplicateVersion indicates that a ledger row insertion violated
// the version uniqueness constraint. Under a correct engine use this
// may only happen when two pending candidates derive the same version
// token or when two concurrent invocations race; both conditions are
// surfaced instead of being silently resolved.
var ErrDuplicateVersion = errors.New("version is already recorded")

// ErrMissingSource indicates that a ledger-recorded unit can no longer
// be resolved to its source file, e.g., after a rename or deletion.
// Its ledger entry may not be safely removed since its revert action
// is unknown.
var ErrMissingSource = errors.New("unit source cannot be resolved")

// Error is the engine error type. The Version and Name fields are
// empty for failures which precede any unit-level work.
type Error struct {
	Stage   Stage
	Version string
	Name    string
	Err     error
}

// Error returns a string representation of the e error instance.
func (e *Error) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Err.Error())
	}
	return fmt.Sprintf(
		"%s: unit %s_%s: %s", e.Stage, e.Version, e.Name, e.Err.Error(),
	)
}

// Unwrap returns the wrapped error, supporting errors.Is and
// errors.As functions.
func (e *Error) Unwrap() error {
	return e.Err
}

// Config creates a configuration stage error, reporting that no
// usable schema or location could be resolved before any unit-level
// work began.
func Config(err error) *Error {
	return &Error{Stage: StageConfig, Err: err}
}

// Discovery creates a discovery stage error, reporting that the
// candidate units location could not be read.
func Discovery(err error) *Error {
	return &Error{Stage: StageDiscovery, Err: err}
}

// Load creates a load stage error for the version/name unit, raised
// when its code cannot be resolved or instantiated, or when it does
// not expose the operations its contract requires.
func Load(version, name string, err error) *Error {
	return &Error{
		Stage: StageLoad, Version: version, Name: name, Err: err,
	}
}

// Apply creates an apply stage error for the version/name unit.
func Apply(version, name string, err error) *Error {
	return &Error{
		Stage: StageApply, Version: version, Name: name, Err: err,
	}
}

// Revert creates a revert stage error for the version/name unit.
func Revert(version, name string, err error) *Error {
	return &Error{
		Stage: StageRevert, Version: version, Name: name, Err: err,
	}
}

// Ledger creates a ledger stage error for the version unit, raised
// when its ledger row cannot be written or removed.
func Ledger(version string, err error) *Error {
	return &Error{Stage: StageLedger, Version: version, Err: err}
}
