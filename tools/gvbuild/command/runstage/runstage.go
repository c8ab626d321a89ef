// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package runstage

import (
	"context"
	"flag"

	"github.com/khalidmaquilang/gv-flutter/internal/syncx"
	"github.com/khalidmaquilang/gv-flutter/pkg/act"
	"github.com/khalidmaquilang/gv-flutter/pkg/act/cli"
	"github.com/khalidmaquilang/gv-flutter/pkg/build"
	"github.com/khalidmaquilang/gv-flutter/pkg/config"
	"github.com/khalidmaquilang/gv-flutter/pkg/stage"
	"github.com/khalidmaquilang/gv-flutter/tools/gvbuild/project"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the stage command.
type Config struct {
	Project  project.Flags
	Stage    string
	Policy   string
	Force    bool
	Progress bool
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

// Steps returns one pre-build step per selected stage of c.
func Steps(c *config.Config, cfg Config, locks *syncx.KeyedMutex, deps *Deps) ([]build.Step, error) {
	stages, err := c.Select(cfg.Stage)
	if err != nil {
		return nil, err
	}
	var steps []build.Step
	for _, s := range stages {
		o := project.Overrides{Policy: cfg.Policy, Force: cfg.Force}
		if cfg.Progress {
			o.Observer = &project.Progress{Name: s.Name, Out: deps.IO.Err}
		}
		st, err := project.NewStager(c, s, o)
		if err != nil {
			return nil, err
		}
		name := s.Name
		steps = append(steps, build.StageStep(name, st, locks, c.DestinationDir(s), func(res *stage.Result) {
			project.PrintResult(deps.IO.Out, name, res)
		}))
	}
	return steps, nil
}

// Handler stages the selected stages.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*act.NoOutput, error) {
	c, err := cfg.Project.Load()
	if err != nil {
		return nil, err
	}
	steps, err := Steps(c, cfg, &syncx.KeyedMutex{}, deps)
	if err != nil {
		return nil, err
	}
	if _, err := (&build.Pipeline{PreBuild: steps}).Run(ctx); err != nil {
		return nil, err
	}
	return &act.NoOutput{}, nil
}

// Command creates a new stage command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "stage [--config <file>] [--module <dir>] [--stage <name>] [--policy additive|mirror] [--rerun] [--progress]",
		Short: "Copies effect assets into the Android asset bundle",
		Long: `Copies each configured source directory (by default the Flutter project's
effects directory) into the Android app module's asset directory. Files that
are already current are left untouched, and a stage whose inputs and outputs
match the last recorded run is reported UP-TO-DATE without comparing content.`,
		Args: cobra.NoArgs,
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
	AddStageFlags(set, cfg)
	set.BoolVar(&cfg.Progress, "progress", false, "draw a progress bar on stderr")
	return set
}

// AddStageFlags registers the flags selecting and tuning stages.
func AddStageFlags(set *flag.FlagSet, cfg *Config) {
	set.StringVar(&cfg.Stage, "stage", "", "only run the named stage")
	set.StringVar(&cfg.Policy, "policy", "", "override the stage policy (additive or mirror)")
	set.BoolVar(&cfg.Force, "rerun", false, "ignore recorded state and compare every file")
}
