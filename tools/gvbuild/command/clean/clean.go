// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package clean

import (
	"context"
	"flag"
	"fmt"

	"github.com/khalidmaquilang/gv-flutter/pkg/act"
	"github.com/khalidmaquilang/gv-flutter/pkg/act/cli"
	"github.com/khalidmaquilang/gv-flutter/tools/gvbuild/project"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the clean command.
type Config struct {
	Project project.Flags
	Stage   string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
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

// Handler removes staged assets and their recorded state.
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
		st, err := project.NewStager(c, s, project.Overrides{})
		if err != nil {
			return nil, err
		}
		if err := st.Clean(); err != nil {
			return nil, err
		}
		fmt.Fprintf(deps.IO.Out, "%s: cleaned %s\n", s.Name, c.DestinationDir(s))
	}
	return &act.NoOutput{}, nil
}

// Command creates a new clean command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "clean [--config <file>] [--module <dir>] [--stage <name>]",
		Short: "Removes staged assets and recorded stage state",
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
	set.StringVar(&cfg.Stage, "stage", "", "only clean the named stage")
	return set
}
