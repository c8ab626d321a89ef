// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package billyx

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Tree is a listing of a filesystem relative to its root.
// Keys are slash-separated paths without a leading slash.
type Tree struct {
	Files map[string]fs.FileInfo
	Dirs  []string
}

// Rel converts a walk path into a Tree key.
func Rel(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "/")
}

// List walks the root of fsys. Symlinks to regular files are listed with the
// target's info; any other non-regular entries are ignored. Files for which
// skip returns true are omitted.
func List(fsys billy.Filesystem, skip func(rel string) bool) (*Tree, error) {
	t := &Tree{Files: make(map[string]fs.FileInfo)}
	err := util.Walk(fsys, "/", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel := Rel(p)
		if rel == "" {
			return nil
		}
		if info.IsDir() {
			t.Dirs = append(t.Dirs, rel)
			return nil
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := fsys.Stat(p)
			if err != nil {
				return err
			}
			info = target
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if skip != nil && skip(rel) {
			return nil
		}
		t.Files[rel] = info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Paths returns the file keys in lexical order.
func (t *Tree) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// RemoveEmptyDirs removes directories of fsys that hold no entries and are
// not listed in keep, deepest first. It returns the removed directories.
func RemoveEmptyDirs(fsys billy.Filesystem, dirs []string, keep map[string]bool) ([]string, error) {
	sorted := append([]string(nil), dirs...)
	sort.Slice(sorted, func(i, j int) bool {
		di, dj := strings.Count(sorted[i], "/"), strings.Count(sorted[j], "/")
		if di != dj {
			return di > dj
		}
		return sorted[i] > sorted[j]
	})
	var removed []string
	for _, d := range sorted {
		if keep[d] {
			continue
		}
		entries, err := fsys.ReadDir(d)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, err
		}
		if len(entries) > 0 {
			continue
		}
		if err := fsys.Remove(d); err != nil {
			return removed, err
		}
		removed = append(removed, d)
	}
	return removed, nil
}
