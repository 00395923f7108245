// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"path/filepath"
	"strings"
)

// DeriveVersion returns the version token of a unit file name, that
// is, the substring of its base name which precedes the first
// underscore. A base name without any underscore is its own version
// token (with the extension stripped). The version tokens are compared
// lexicographically as strings, hence, "10" precedes "2" and a fixed
// width zero-padded numbering scheme is advisable for unit files.
func DeriveVersion(filename string) string {
	base := filepath.Base(filename)
	if i := strings.IndexByte(base, '_'); i >= 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DeriveName returns the human-readable label of a unit file name,
// that is, its base name with the version token, its trailing
// underscore, and the extension stripped. A base name without any
// underscore has an empty name.
func DeriveName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.IndexByte(base, '_'); i >= 0 {
		return base[i+1:]
	}
	return ""
}
