// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package stage

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"slices"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/khalidmaquilang/gv-flutter/internal/hashext"
	"github.com/pkg/errors"
)

const recordVersion = 1

// FileRecord is the snapshot of one file at the end of a run.
type FileRecord struct {
	Size    int64          `json:"size"`
	ModTime time.Time      `json:"mtime"`
	Digest  hashext.Digest `json:"digest,omitzero"`
}

func snapshot(info fs.FileInfo) FileRecord {
	return FileRecord{Size: info.Size(), ModTime: info.ModTime()}
}

// sameStat reports whether info still has the recorded size and mtime.
func (r FileRecord) sameStat(info fs.FileInfo) bool {
	return info != nil && r.Size == info.Size() && r.ModTime.Equal(info.ModTime())
}

// Record describes the last successful run of a stage.
type Record struct {
	Version int                   `json:"version"`
	RunID   string                `json:"run_id"`
	Time    time.Time             `json:"time"`
	Policy  Policy                `json:"policy"`
	Detect  Detection             `json:"detect"`
	Exclude []string              `json:"exclude,omitempty"`
	Inputs  map[string]FileRecord `json:"inputs"`
	Outputs map[string]FileRecord `json:"outputs"`
}

// StateStore persists the Record of a stage between runs.
type StateStore interface {
	// Load returns ErrNoState when nothing usable is recorded.
	Load() (*Record, error)
	Save(*Record) error
	Delete() error
}

// FileState is a StateStore keeping the record as JSON in a billy filesystem.
type FileState struct {
	fs   billy.Filesystem
	name string
}

// NewFileState returns a FileState writing name within fs.
func NewFileState(fs billy.Filesystem, name string) *FileState {
	return &FileState{fs: fs, name: name}
}

// Load implements StateStore.
func (s *FileState) Load() (*Record, error) {
	b, err := util.ReadFile(s.fs, s.name)
	if os.IsNotExist(err) {
		return nil, ErrNoState
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.name)
	}
	var r Record
	// A corrupt or outdated record only costs a full comparison.
	if err := json.Unmarshal(b, &r); err != nil || r.Version != recordVersion {
		return nil, ErrNoState
	}
	return &r, nil
}

// Save implements StateStore. The record is written to a temporary file and
// renamed into place.
func (s *FileState) Save(r *Record) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding state")
	}
	dir := path.Dir(s.name)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	tmp := s.name + ".tmp"
	if err := util.WriteFile(s.fs, tmp, append(b, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	if err := s.fs.Rename(tmp, s.name); err != nil {
		return errors.Wrapf(err, "renaming %s", tmp)
	}
	return nil
}

// Delete implements StateStore. Deleting an absent record is not an error.
func (s *FileState) Delete() error {
	if err := s.fs.Remove(s.name); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", s.name)
	}
	return nil
}

// upToDate reports whether r still describes the current source and
// destination under opts.
func (r *Record) upToDate(opts Options, src, dst map[string]fs.FileInfo) bool {
	if r.Policy != opts.Policy || r.Detect != opts.Detect || !slices.Equal(r.Exclude, opts.Exclude) {
		return false
	}
	if len(r.Inputs) != len(src) || len(r.Outputs) != len(src) {
		return false
	}
	for p, in := range r.Inputs {
		if !in.sameStat(src[p]) {
			return false
		}
	}
	for p, out := range r.Outputs {
		if !out.sameStat(dst[p]) {
			return false
		}
	}
	if opts.Policy == Mirror && len(dst) != len(r.Outputs) {
		return false
	}
	return true
}

var _ StateStore = &FileState{}
