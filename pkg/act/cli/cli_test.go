// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/khalidmaquilang/gv-flutter/pkg/act"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Test types
type TestConfig struct {
	Name string
	Args []string
}

func (c TestConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type TestDeps struct {
	IO IO
}

func (d *TestDeps) SetIO(cio IO) { d.IO = cio }

// Test action that writes to output
func testAction(ctx context.Context, cfg TestConfig, deps *TestDeps) (*act.NoOutput, error) {
	deps.IO.Out.Write([]byte("Hello " + cfg.Name + strings.Join(cfg.Args, ",")))
	return &act.NoOutput{}, nil
}

func testInitDeps(ctx context.Context) (*TestDeps, error) {
	return &TestDeps{}, nil
}

func TestSkipArgs(t *testing.T) {
	cfg := &TestConfig{}
	if err := SkipArgs(cfg, []string{"ignored"}); err != nil {
		t.Errorf("SkipArgs() error = %v", err)
	}
	if cfg.Args != nil {
		t.Errorf("SkipArgs() set Args = %v", cfg.Args)
	}
}

func TestArgsInto(t *testing.T) {
	cfg := &TestConfig{}
	parse := ArgsInto(func(c *TestConfig) *[]string { return &c.Args })
	if err := parse(cfg, []string{"flutter", "build"}); err != nil {
		t.Fatalf("ArgsInto() error = %v", err)
	}
	if diff := cmp.Diff([]string{"flutter", "build"}, cfg.Args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestRunE(t *testing.T) {
	cfg := TestConfig{Name: "World"}
	cmd := &cobra.Command{
		Use: "test",
		RunE: RunE(
			&cfg,
			ArgsInto(func(c *TestConfig) *[]string { return &c.Args }),
			testInitDeps,
			testAction,
		),
	}
	var outBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetArgs([]string{"!"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got, want := outBuf.String(), "Hello World!"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunEValidationError(t *testing.T) {
	cfg := TestConfig{}
	cmd := &cobra.Command{
		Use:  "test",
		RunE: RunE(&cfg, SkipArgs[TestConfig], testInitDeps, testAction),
	}
	var outBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&outBuf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() expected validation error")
	}
	if strings.Contains(outBuf.String(), "Hello") {
		t.Errorf("action ran despite invalid config: %q", outBuf.String())
	}
}
