// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"context"
	"flag"

	"github.com/khalidmaquilang/gv-flutter/pkg/act"
	"github.com/khalidmaquilang/gv-flutter/pkg/act/cli"
	"github.com/khalidmaquilang/gv-flutter/pkg/stage"
	"github.com/khalidmaquilang/gv-flutter/tools/gvbuild/project"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the status command.
type Config struct {
	Project project.Flags
	Stage   string
	Policy  string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Policy != "" {
		if _, err := stage.ParsePolicy(c.Policy); err != nil {
			return err
		}
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO cli.IO
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{}, nil
}

// Handler reports what staging would change, without writing.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*act.NoOutput, error) {
	c, err := cfg.Project.Load()
	if err != nil {
		return nil, err
	}
	stages, err := c.Select(cfg.Stage)
	if err != nil {
		return nil, err
	}
	for _, s := range stages {
		st, err := project.NewStager(c, s, project.Overrides{Policy: cfg.Policy})
		if err != nil {
			return nil, err
		}
		res, err := st.Status(ctx)
		if err != nil {
			return nil, err
		}
		project.PrintPending(deps.IO.Out, s.Name, res)
	}
	return &act.NoOutput{}, nil
}

// Command creates a new status command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "status [--config <file>] [--module <dir>] [--stage <name>] [--policy additive|mirror]",
		Short: "Shows which staged assets are out of date",
		Args:  cobra.NoArgs,
		RunE: cli.RunE(
			&cfg,
			cli.SkipArgs[Config],
			InitDeps,
			Handler,
		),
	}
	cmd.Flags().AddGoFlagSet(flagSet(cmd.Name(), &cfg))
	return cmd
}

// flagSet returns the command-line flags for the Config struct.
func flagSet(name string, cfg *Config) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	project.AddFlags(set, &cfg.Project)
	set.StringVar(&cfg.Stage, "stage", "", "only report the named stage")
	set.StringVar(&cfg.Policy, "policy", "", "override the stage policy (additive or mirror)")
	return set
}
