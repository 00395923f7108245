// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import "github.com/migrata/migrata/pkg/core/model"

func init() {
	rootCmd.AddCommand(newKindCommand(
		model.Seeders,
		"seed",
		"Manage data seeders",
		"run",
	))
}
