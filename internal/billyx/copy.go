// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package billyx provides utilities for working with billy filesystems.
package billyx

import (
	"io"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
)

// Chtimer is implemented by filesystems able to set modification times.
// billy.Change implementations satisfy it.
type Chtimer interface {
	Chtimes(name string, atime time.Time, mtime time.Time) error
}

// CopyFile copies name from src to dst, creating parent directories in dst.
// The file mode is taken from info and, when dst is a Chtimer, the
// modification time is carried over as well.
func CopyFile(dst, src billy.Filesystem, name string, info fs.FileInfo) error {
	if dir := path.Dir(name); dir != "." && dir != "/" {
		if err := dst.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	srcFile, err := src.Open(name)
	if err != nil {
		return err
	}
	defer srcFile.Close()
	dstFile, err := dst.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	if ch, ok := dst.(Chtimer); ok {
		if err := ch.Chtimes(name, info.ModTime(), info.ModTime()); err != nil {
			return errors.Wrapf(err, "setting times on %s", name)
		}
	}
	return nil
}
