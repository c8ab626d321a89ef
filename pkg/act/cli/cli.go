// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cli binds act actions to cobra commands.
package cli

import (
	"io"

	"github.com/khalidmaquilang/gv-flutter/pkg/act"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// IO holds the streams of the running command.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Deps receives the command's streams before the action runs.
type Deps interface {
	SetIO(IO)
}

// ParseArgs fills an input from the positional arguments.
type ParseArgs[I act.Input] func(in *I, args []string) error

// SkipArgs ignores positional arguments.
func SkipArgs[I act.Input](*I, []string) error {
	return nil
}

// ArgsInto stores a copy of the positional arguments in the slice field returns.
func ArgsInto[I act.Input](field func(*I) *[]string) ParseArgs[I] {
	return func(in *I, args []string) error {
		*field(in) = append([]string(nil), args...)
		return nil
	}
}

// RunE returns a cobra RunE that parses arguments into in, validates it,
// builds the dependencies and runs action with the command's context.
func RunE[I act.Input, O any, D Deps](
	in *I,
	parseArgs ParseArgs[I],
	initDeps act.InitDeps[D],
	action act.Action[I, O, D],
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := parseArgs(in, args); err != nil {
			return err
		}
		if err := (*in).Validate(); err != nil {
			return errors.Wrap(err, "invalid arguments")
		}
		deps, err := initDeps(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "initializing dependencies")
		}
		deps.SetIO(IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()})
		// Failures past this point are not usage errors.
		cmd.SilenceUsage = true
		_, err = action(cmd.Context(), *in, deps)
		return err
	}
}
