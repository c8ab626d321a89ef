// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package local runs the packaging toolchain on the host.
package local

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// CommandOptions are the per-invocation settings of a command.
type CommandOptions struct {
	Input  io.Reader
	Output io.Writer // receives both stdout and stderr; nil discards
	Dir    string
	Env    []string // added to the inherited environment
}

// CommandExecutor starts external programs.
type CommandExecutor interface {
	// Execute runs name to completion.
	Execute(ctx context.Context, opts CommandOptions, name string, args ...string) error
	// LookPath resolves an executable the way a shell would.
	LookPath(file string) (string, error)
}

type hostExecutor struct{}

// NewRealCommandExecutor returns a CommandExecutor backed by os/exec.
func NewRealCommandExecutor() CommandExecutor {
	return hostExecutor{}
}

func (hostExecutor) Execute(ctx context.Context, opts CommandOptions, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Stdin = opts.Input
	if w := opts.Output; w != nil {
		cmd.Stdout, cmd.Stderr = w, w
	}
	if len(opts.Env) != 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	return cmd.Run()
}

func (hostExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
