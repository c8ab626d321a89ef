// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package stage

import (
	"github.com/khalidmaquilang/gv-flutter/internal/glob"
	"github.com/pkg/errors"
)

// Policy determines what happens to destination files absent from the source.
type Policy string

const (
	// Additive copies and overwrites but never deletes.
	Additive Policy = "additive"
	// Mirror also deletes destination entries absent from the source.
	Mirror Policy = "mirror"
)

// ParsePolicy parses a policy name. The empty string selects Additive.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", Additive:
		return Additive, nil
	case Mirror:
		return Mirror, nil
	}
	return "", errors.Errorf("unknown policy %q", s)
}

// Detection determines how a destination file is judged current.
type Detection string

const (
	// Content compares size and SHA-256 digest.
	Content Detection = "content"
	// ModTime compares size and modification time to the second.
	ModTime Detection = "mtime"
)

// ParseDetection parses a change detection mode. The empty string selects Content.
func ParseDetection(s string) (Detection, error) {
	switch Detection(s) {
	case "", Content:
		return Content, nil
	case ModTime:
		return ModTime, nil
	}
	return "", errors.Errorf("unknown change detection %q", s)
}

// Action is what a stage run did, or would do, to a single path.
type Action int

const (
	ActionUnchanged Action = iota
	ActionCopy
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionCopy:
		return "copy"
	case ActionRemove:
		return "remove"
	default:
		return "unchanged"
	}
}

// Observer receives progress notifications from a run.
type Observer interface {
	// Begin is called once with the number of source files.
	Begin(total int)
	// Step is called once per source file and once per removed path.
	Step(path string, action Action)
	// End is called after the last Step, including on failure.
	End()
}

// Options configures a Stager.
type Options struct {
	Policy  Policy
	Detect  Detection
	Exclude []string
	// State records the last successful run for up-to-date checks. Nil
	// disables the fast path; unchanged files are still not rewritten.
	State StateStore
	// Force ignores any recorded state.
	Force    bool
	Observer Observer
}

// Validate ensures the options are usable.
func (o Options) Validate() error {
	if _, err := ParsePolicy(string(o.Policy)); err != nil {
		return err
	}
	if _, err := ParseDetection(string(o.Detect)); err != nil {
		return err
	}
	if _, err := glob.CompileSet(o.Exclude...); err != nil {
		return errors.Wrap(err, "exclude")
	}
	return nil
}
