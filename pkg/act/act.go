// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package act describes gvbuild operations as plain functions over a
// validated input and a set of dependencies, independent of the command line.
package act

import "context"

// Input is anything an action accepts. Validate runs before dependencies are
// created, so it must not touch the filesystem.
type Input interface {
	Validate() error
}

// Deps is the dependency container passed to an action.
type Deps any

// InitDeps builds the dependencies for one invocation.
type InitDeps[D Deps] func(context.Context) (D, error)

// Action performs the operation for a validated input.
type Action[I Input, O any, D Deps] func(context.Context, I, D) (*O, error)

// NoOutput is returned by actions that report only through their IO.
type NoOutput struct{}
