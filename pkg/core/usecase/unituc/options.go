// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package unituc

import (
	"errors"

	"github.com/migrata/migrata/pkg/core/unit"
)

// Option is a functional option for the unit execution use case.
type Option func(eng *UseCase) error

// WithDirectory option overrides the directory holding the unit files
// of this kind, replacing the kind's default directory. This option
// may be passed to the New() function.
func WithDirectory(dir string) Option {
	return func(eng *UseCase) error {
		if dir == "" {
			return errors.New("directory is empty")
		}
		if eng.dir != "" {
			return errors.New("directory is already configured")
		}
		eng.dir = dir
		return nil
	}
}

// WithExtensions option configures the set of file name extensions
// which the unit catalog recognizes, replacing the default ".sql".
// Extensions are passed with their leading dot. This option may be
// passed to the New() function.
func WithExtensions(exts ...string) Option {
	return func(eng *UseCase) error {
		if len(exts) == 0 {
			return errors.New("no extension is given")
		}
		if eng.catalog != nil {
			return errors.New("extensions are already configured")
		}
		eng.catalog = unit.NewCatalog(exts...)
		return nil
	}
}
