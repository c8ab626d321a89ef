// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package stage mirrors a source asset directory into a destination asset
// directory, skipping work when nothing changed since the last run.
package stage

import (
	"context"
	"crypto"
	"io/fs"
	"log"
	"os"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
	"github.com/khalidmaquilang/gv-flutter/internal/billyx"
	"github.com/khalidmaquilang/gv-flutter/internal/glob"
	"github.com/khalidmaquilang/gv-flutter/internal/hashext"
	"github.com/pkg/errors"
)

// Result summarizes a run. Paths are slash-separated and relative to the
// destination root.
type Result struct {
	RunID string
	// UpToDate is set when the recorded state matched and nothing was compared.
	UpToDate  bool
	Copied    []string
	Unchanged []string
	Removed   []string
}

// Changed reports whether the run wrote or removed anything.
func (r *Result) Changed() bool {
	return len(r.Copied) > 0 || len(r.Removed) > 0
}

// Stager stages the files of src into dst.
type Stager struct {
	src, dst billy.Filesystem
	opts     Options
	exclude  glob.Set
	detect   Detection
}

// New creates a Stager. opts is validated; an empty Policy or Detect take
// their defaults.
func New(src, dst billy.Filesystem, opts Options) (*Stager, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Policy, _ = ParsePolicy(string(opts.Policy))
	opts.Detect, _ = ParseDetection(string(opts.Detect))
	exclude, _ := glob.CompileSet(opts.Exclude...)
	s := &Stager{src: src, dst: dst, opts: opts, exclude: exclude, detect: opts.Detect}
	if s.detect == ModTime {
		if _, ok := dst.(billyx.Chtimer); !ok {
			log.Printf("destination %s cannot keep modification times, comparing content instead", dst.Root())
			s.detect = Content
		}
	}
	return s, nil
}

// Stage copies every changed source file into the destination and, under
// Mirror, removes destination entries absent from the source.
func (s *Stager) Stage(ctx context.Context) (*Result, error) {
	return s.run(ctx, false)
}

// Status reports what Stage would do without writing anything.
func (s *Stager) Status(ctx context.Context) (*Result, error) {
	return s.run(ctx, true)
}

// Clean removes the contents of the destination and the recorded state.
func (s *Stager) Clean() error {
	entries, err := s.dst.ReadDir("/")
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "listing destination")
	}
	for _, e := range entries {
		if err := util.RemoveAll(s.dst, e.Name()); err != nil {
			return errors.Wrapf(err, "removing %s", e.Name())
		}
	}
	if s.opts.State != nil {
		return s.opts.State.Delete()
	}
	return nil
}

func (s *Stager) checkSource() error {
	info, err := s.src.Stat("/")
	if os.IsNotExist(err) {
		return errors.Wrapf(ErrMissingSource, "%s", s.src.Root())
	} else if err != nil {
		return errors.Wrapf(err, "reading source %s", s.src.Root())
	}
	if !info.IsDir() {
		return errors.Wrapf(ErrMissingSource, "%s is not a directory", s.src.Root())
	}
	return nil
}

func (s *Stager) listDest() (*billyx.Tree, error) {
	if _, err := s.dst.Stat("/"); os.IsNotExist(err) {
		return &billyx.Tree{Files: map[string]fs.FileInfo{}}, nil
	}
	t, err := billyx.List(s.dst, s.exclude.Match)
	return t, errors.Wrap(err, "listing destination")
}

func (s *Stager) run(ctx context.Context, dryRun bool) (res *Result, err error) {
	if err := s.checkSource(); err != nil {
		return nil, err
	}
	src, err := billyx.List(s.src, s.exclude.Match)
	if err != nil {
		return nil, errors.Wrap(err, "listing source")
	}
	dst, err := s.listDest()
	if err != nil {
		return nil, err
	}
	res = &Result{RunID: uuid.New().String()}
	if s.opts.State != nil && !s.opts.Force {
		prev, err := s.opts.State.Load()
		if err != nil && !errors.Is(err, ErrNoState) {
			return nil, err
		}
		if prev != nil && prev.upToDate(s.opts, src.Files, dst.Files) {
			res.UpToDate = true
			res.Unchanged = src.Paths()
			return res, nil
		}
	}
	if obs := s.opts.Observer; obs != nil {
		obs.Begin(len(src.Files))
		defer obs.End()
	}
	rec := &Record{
		Version: recordVersion,
		RunID:   res.RunID,
		Policy:  s.opts.Policy,
		Detect:  s.opts.Detect,
		Exclude: s.opts.Exclude,
		Inputs:  make(map[string]FileRecord, len(src.Files)),
		Outputs: make(map[string]FileRecord, len(src.Files)),
	}
	for _, p := range src.Paths() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		info := src.Files[p]
		in := snapshot(info)
		copyNeeded, err := s.changed(p, info, dst.Files[p], &in)
		if err != nil {
			return res, err
		}
		rec.Inputs[p] = in
		action := ActionUnchanged
		if copyNeeded {
			action = ActionCopy
			if s.opts.Policy == Mirror {
				if err := s.clearConflicts(p, dst, dryRun, res); err != nil {
					return res, err
				}
			}
			if !dryRun && len(res.Copied) == 0 {
				if err := s.dst.MkdirAll("/", 0o755); err != nil {
					return res, errors.Wrap(err, "creating destination")
				}
			}
			if !dryRun {
				if err := billyx.CopyFile(s.dst, s.src, p, info); err != nil {
					return res, errors.Wrapf(err, "copying %s", p)
				}
			}
			res.Copied = append(res.Copied, p)
		} else {
			res.Unchanged = append(res.Unchanged, p)
		}
		s.notify(p, action)
	}
	if s.opts.Policy == Mirror {
		if err := s.prune(ctx, src, dst, dryRun, res); err != nil {
			return res, err
		}
	}
	if dryRun || s.opts.State == nil {
		return res, nil
	}
	for p, in := range rec.Inputs {
		info, err := s.dst.Stat(p)
		if err != nil {
			return res, errors.Wrapf(err, "reading staged %s", p)
		}
		out := snapshot(info)
		out.Digest = in.Digest
		rec.Outputs[p] = out
	}
	rec.Time = time.Now().UTC()
	if err := s.opts.State.Save(rec); err != nil {
		return res, errors.Wrap(err, "saving stage state")
	}
	return res, nil
}

// changed reports whether the source file p must be copied over its
// destination counterpart. in receives the source digest when one is computed.
func (s *Stager) changed(p string, info, dstInfo fs.FileInfo, in *FileRecord) (bool, error) {
	if s.detect == Content {
		d, err := hashext.FileDigest(s.src, p, crypto.SHA256)
		if err != nil {
			return false, errors.Wrapf(err, "hashing source %s", p)
		}
		in.Digest = d
	}
	if dstInfo == nil || dstInfo.Size() != info.Size() {
		return true, nil
	}
	if s.detect == ModTime {
		return !info.ModTime().Truncate(time.Second).Equal(dstInfo.ModTime().Truncate(time.Second)), nil
	}
	d, err := hashext.FileDigest(s.dst, p, crypto.SHA256)
	if err != nil {
		return false, errors.Wrapf(err, "hashing destination %s", p)
	}
	return d != in.Digest, nil
}

// clearConflicts removes the destination entries that keep p from being
// written: a file at one of p's parent directories, or a directory at p.
// Removed entries are dropped from dst.
func (s *Stager) clearConflicts(p string, dst *billyx.Tree, dryRun bool, res *Result) error {
	for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
		if _, ok := dst.Files[dir]; !ok {
			continue
		}
		if !dryRun {
			if err := s.dst.Remove(dir); err != nil {
				return errors.Wrapf(err, "removing %s", dir)
			}
		}
		delete(dst.Files, dir)
		res.Removed = append(res.Removed, dir)
		s.notify(dir, ActionRemove)
	}
	if !slices.Contains(dst.Dirs, p) {
		return nil
	}
	if !dryRun {
		if err := util.RemoveAll(s.dst, p); err != nil {
			return errors.Wrapf(err, "removing %s", p)
		}
	}
	prefix := p + "/"
	for f := range dst.Files {
		if strings.HasPrefix(f, prefix) {
			delete(dst.Files, f)
		}
	}
	dst.Dirs = slices.DeleteFunc(dst.Dirs, func(d string) bool {
		return d == p || strings.HasPrefix(d, prefix)
	})
	res.Removed = append(res.Removed, p)
	s.notify(p, ActionRemove)
	return nil
}

// prune removes destination files and directories absent from src.
func (s *Stager) prune(ctx context.Context, src, dst *billyx.Tree, dryRun bool, res *Result) error {
	for _, p := range dst.Paths() {
		if _, ok := src.Files[p]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !dryRun {
			if err := s.dst.Remove(p); err != nil {
				return errors.Wrapf(err, "removing %s", p)
			}
		}
		res.Removed = append(res.Removed, p)
		s.notify(p, ActionRemove)
	}
	if dryRun {
		return nil
	}
	keep := make(map[string]bool, len(src.Dirs))
	for _, d := range src.Dirs {
		keep[d] = true
	}
	dirs, err := billyx.RemoveEmptyDirs(s.dst, dst.Dirs, keep)
	if err != nil {
		return errors.Wrap(err, "removing stale directories")
	}
	res.Removed = append(res.Removed, dirs...)
	sort.Strings(res.Removed)
	return nil
}

func (s *Stager) notify(p string, a Action) {
	if s.opts.Observer != nil {
		s.opts.Observer.Step(p, a)
	}
}
