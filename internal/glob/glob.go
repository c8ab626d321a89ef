// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package glob provides path.Match patterns with support for **
package glob

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Pattern is a compiled glob pattern.
//   - '**' matches zero or more directory levels
//   - '**' must appear at most once in the pattern
//   - '**' must be preceded and succeeded by '/' characters or by the beginning/end of the pattern
//   - a leading '**/' also matches names with no directory component
type Pattern struct {
	raw      string
	globstar bool
	prefix   string
	suffix   string
}

// Compile validates pattern and returns its compiled form.
func Compile(pattern string) (Pattern, error) {
	p := Pattern{raw: pattern}
	idx := strings.Index(pattern, "**")
	if idx == -1 {
		if _, err := path.Match(pattern, ""); err != nil {
			return Pattern{}, errors.Wrapf(err, "invalid pattern %q", pattern)
		}
		return p, nil
	}
	if strings.Count(pattern, "**") > 1 {
		return Pattern{}, errors.Errorf("invalid pattern %q: only one '**' is permitted", pattern)
	}
	if idx > 0 && pattern[idx-1] != '/' {
		return Pattern{}, errors.Errorf("invalid pattern %q: '**' must be surrounded by slashes or be at start/end of pattern", pattern)
	}
	if idx+2 < len(pattern) && pattern[idx+2] != '/' {
		return Pattern{}, errors.Errorf("invalid pattern %q: '**' must be surrounded by slashes or be at start/end of pattern", pattern)
	}
	p.globstar = true
	p.prefix, p.suffix = pattern[:idx], pattern[idx+2:]
	for _, part := range []string{p.prefix, p.suffix} {
		if _, err := path.Match(part, ""); err != nil {
			return Pattern{}, errors.Wrapf(err, "invalid pattern %q", pattern)
		}
	}
	return p, nil
}

// String returns the source pattern.
func (p Pattern) String() string { return p.raw }

// Match reports whether name matches the pattern.
func (p Pattern) Match(name string) bool {
	if !p.globstar {
		ok, _ := path.Match(p.raw, name)
		return ok
	}
	if p.match(name) {
		return true
	}
	// Zero leading directories for "**/x".
	return p.prefix == "" && strings.HasPrefix(p.suffix, "/") && !strings.HasPrefix(name, "/") && p.match("/"+name)
}

func (p Pattern) match(name string) bool {
	if p.prefix != "" {
		// Take as many leading path components of name as the prefix has.
		end := prefixEnd(name, strings.Count(p.prefix, "/"))
		if end == -1 {
			return false
		}
		if ok, _ := path.Match(p.prefix, name[:end]); !ok {
			return false
		}
	}
	if p.suffix != "" {
		start := suffixStart(name, strings.Count(p.suffix, "/"))
		if start == -1 {
			return false
		}
		if ok, _ := path.Match(p.suffix, name[start:]); !ok {
			return false
		}
	}
	return true
}

// prefixEnd returns the index in name just past its n-th slash, or -1.
func prefixEnd(name string, n int) int {
	if n == 0 {
		return 0
	}
	seen := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			seen++
			if seen == n {
				return i + 1
			}
		}
	}
	return -1
}

// suffixStart returns the index of the n-th slash from the end of name, or -1.
func suffixStart(name string, n int) int {
	if n == 0 {
		return len(name)
	}
	seen := 0
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			seen++
			if seen == n {
				return i
			}
		}
	}
	return -1
}

// Set is an ordered collection of patterns.
type Set []Pattern

// CompileSet compiles every pattern, failing on the first invalid one.
func CompileSet(patterns ...string) (Set, error) {
	var s Set
	for _, raw := range patterns {
		p, err := Compile(raw)
		if err != nil {
			return nil, err
		}
		s = append(s, p)
	}
	return s, nil
}

// Match reports whether any pattern in the set matches name.
func (s Set) Match(name string) bool {
	for _, p := range s {
		if p.Match(name) {
			return true
		}
	}
	return false
}
