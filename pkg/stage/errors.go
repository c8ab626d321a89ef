// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package stage

import "github.com/pkg/errors"

// ErrMissingSource is returned when the source directory is absent or is not
// a directory. Nothing is written when it is returned.
var ErrMissingSource = errors.New("missing source directory")

// ErrNoState is returned by a StateStore holding no usable record.
var ErrNoState = errors.New("no recorded state")
