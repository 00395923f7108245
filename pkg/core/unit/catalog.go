// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package unit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/migrata/migrata/pkg/core/cerr"
	"github.com/migrata/migrata/pkg/core/model"
)

// Catalog discovers candidate unit files and determines the pending
// subset by diffing against the applied versions. It performs pure
// directory listing and string transforms, without loading any unit
// code or touching the database.
type Catalog struct {
	exts map[string]struct{}
}

// NewCatalog instantiates a Catalog recognizing the given file name
// extensions (with their leading dot, e.g., ".sql"). Files with other
// extensions are ignored during discovery.
func NewCatalog(exts ...string) *Catalog {
	c := &Catalog{exts: make(map[string]struct{}, len(exts))}
	for _, e := range exts {
		c.exts[e] = struct{}{}
	}
	return c
}

// Discover lists the candidate unit files in the dir directory and
// returns them with their derived version and name, sorted ascending
// by version (breaking the rare version ties by the file base name).
// The ordering is deterministic and independent of the directory
// enumeration order, since it dictates the apply order and therefore
// the batch composition.
// An unreadable directory is fatal for the whole operation and is
// reported as a discovery stage error.
func (c *Catalog) Discover(dir string) ([]model.Descriptor, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, cerr.Discovery(
			fmt.Errorf("listing %q: %w", dir, err),
		)
	}
	var ds []model.Descriptor
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		if _, ok := c.exts[filepath.Ext(name)]; !ok {
			continue
		}
		ds = append(ds, model.Descriptor{
			Location: filepath.Join(dir, name),
			Version:  model.DeriveVersion(name),
			Name:     model.DeriveName(name),
		})
	}
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].Version != ds[j].Version {
			return ds[i].Version < ds[j].Version
		}
		return ds[i].Location < ds[j].Location
	})
	return ds, nil
}

// Pending returns the discovered candidates of the dir directory
// which are absent from the applied versions set, preserving the
// ascending version order of Discover. Two pending candidates with
// the same derived version are both returned (in file name order);
// the ledger uniqueness constraint rejects the second one when it is
// recorded, instead of guessing a de-duplication rule here.
func (c *Catalog) Pending(
	dir string, applied map[string]struct{},
) ([]model.Descriptor, error) {
	ds, err := c.Discover(dir)
	if err != nil {
		return nil, err
	}
	pending := make([]model.Descriptor, 0, len(ds))
	for _, d := range ds {
		if _, ok := applied[d.Version]; ok {
			continue
		}
		pending = append(pending, d)
	}
	return pending, nil
}
