// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"slices"
	"sync"
)

// MockCommandExecutor implements CommandExecutor for testing. It records
// every command and fails those for which a failure was registered.
type MockCommandExecutor struct {
	mu       sync.Mutex
	commands []MockCommand
	failures map[string]error
	missing  map[string]bool
}

// MockCommand represents a command execution for verification
type MockCommand struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// NewMockCommandExecutor creates a new mock command executor
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{failures: map[string]error{}, missing: map[string]bool{}}
}

// FailWith makes every later execution of name return err.
func (m *MockCommandExecutor) FailWith(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[name] = err
}

// Hide makes LookPath fail for file.
func (m *MockCommandExecutor) Hide(file string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missing[file] = true
}

// Execute implements CommandExecutor
func (m *MockCommandExecutor) Execute(ctx context.Context, opts CommandOptions, name string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, MockCommand{
		Name: name,
		Args: slices.Clone(args),
		Dir:  opts.Dir,
		Env:  slices.Clone(opts.Env),
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.failures[name]
}

// LookPath implements CommandExecutor
func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.missing[file] {
		return "", &execError{file}
	}
	return "/usr/bin/" + file, nil
}

// Commands returns all recorded commands for verification
func (m *MockCommandExecutor) Commands() []MockCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.commands)
}

type execError struct{ file string }

func (e *execError) Error() string { return "exec: " + e.file + ": executable file not found in $PATH" }

var _ CommandExecutor = &MockCommandExecutor{}
