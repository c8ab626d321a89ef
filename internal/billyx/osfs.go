// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package billyx

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// OSFS is an osfs filesystem rooted at a directory that can also set
// modification times.
type OSFS struct {
	billy.Filesystem
	root string
}

// NewOSFS returns an OSFS rooted at root. The directory need not exist.
func NewOSFS(root string) *OSFS {
	return &OSFS{Filesystem: osfs.New(root), root: root}
}

// Chtimes implements Chtimer.
func (o *OSFS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return os.Chtimes(filepath.Join(o.root, filepath.FromSlash(name)), atime, mtime)
}

var _ Chtimer = &OSFS{}
