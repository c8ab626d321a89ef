// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package runbuild

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/khalidmaquilang/gv-flutter/internal/syncx"
	"github.com/khalidmaquilang/gv-flutter/pkg/act"
	"github.com/khalidmaquilang/gv-flutter/pkg/act/cli"
	"github.com/khalidmaquilang/gv-flutter/pkg/build"
	"github.com/khalidmaquilang/gv-flutter/pkg/build/local"
	"github.com/khalidmaquilang/gv-flutter/pkg/config"
	"github.com/khalidmaquilang/gv-flutter/tools/gvbuild/command/runstage"
	"github.com/khalidmaquilang/gv-flutter/tools/gvbuild/project"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the build command.
type Config struct {
	runstage.Config
	// Command replaces the configured packaging command when set.
	Command []string
}

// Deps holds dependencies for the command.
type Deps struct {
	IO       cli.IO
	Executor local.CommandExecutor
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{Executor: local.NewRealCommandExecutor()}, nil
}

// Handler stages every selected stage and then runs the packaging command
// from the Flutter source root. Packaging never starts if staging fails.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*act.NoOutput, error) {
	c, err := cfg.Project.Load()
	if err != nil {
		return nil, err
	}
	steps, err := runstage.Steps(c, cfg.Config, &syncx.KeyedMutex{}, &runstage.Deps{IO: deps.IO})
	if err != nil {
		return nil, err
	}
	argv := c.Package
	if len(cfg.Command) > 0 {
		argv = cfg.Command
	}
	pkg, err := build.CommandStep(config.PackageStep, deps.Executor, c.FlutterSourceDir(), argv, deps.IO.Out)
	if err != nil {
		return nil, err
	}
	report, err := (&build.Pipeline{PreBuild: steps, Package: &pkg}).Run(ctx)
	for _, name := range report.Steps {
		log.Printf("%s: %s", name, report.States[name])
	}
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(deps.IO.Out, "build succeeded")
	return &act.NoOutput{}, nil
}

// Command creates a new build command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "build [--config <file>] [--module <dir>] [--stage <name>] [-- <packaging command>...]",
		Short: "Stages assets, then packages the application",
		Long: `Runs every stage and, only if all of them succeed, the packaging command
(by default "flutter build apk") from the Flutter project root. Arguments after
"--" replace the configured packaging command.`,
		RunE: cli.RunE(
			&cfg,
			cli.ArgsInto(func(c *Config) *[]string { return &c.Command }),
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
	runstage.AddStageFlags(set, &cfg.Config)
	set.BoolVar(&cfg.Progress, "progress", false, "draw a progress bar on stderr")
	return set
}
