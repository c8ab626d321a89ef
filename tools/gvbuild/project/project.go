// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package project holds the pieces shared by the gvbuild subcommands:
// locating the project configuration and constructing stagers from it.
package project

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb"
	"github.com/fatih/color"
	"github.com/khalidmaquilang/gv-flutter/internal/billyx"
	"github.com/khalidmaquilang/gv-flutter/pkg/build"
	"github.com/khalidmaquilang/gv-flutter/pkg/config"
	"github.com/khalidmaquilang/gv-flutter/pkg/stage"
	"github.com/pkg/errors"
)

// ConfigNames are the files searched for in the working directory when no
// --config is given.
var ConfigNames = []string{"gvbuild.yaml", "gvbuild.yml", "gvbuild.toml"}

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// Flags locate the project.
type Flags struct {
	ConfigPath string
	Module     string
	// Dir is where the config file is searched for; the working directory if empty.
	Dir string
}

// AddFlags registers the project flags on set.
func AddFlags(set *flag.FlagSet, f *Flags) {
	set.StringVar(&f.ConfigPath, "config", "", "path to a gvbuild.yaml or gvbuild.toml project file")
	set.StringVar(&f.Module, "module", "", "Android app module directory, overriding the project file")
}

// Load returns the project configuration, validated.
func (f Flags) Load() (*config.Config, error) {
	dir := f.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "getting working directory")
		}
		dir = wd
	}
	path := f.ConfigPath
	if path == "" {
		for _, name := range ConfigNames {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				path = filepath.Join(dir, name)
				break
			}
		}
	}
	var c *config.Config
	if path == "" {
		c = config.Default(dir)
	} else {
		var err error
		if c, err = config.Load(path); err != nil {
			return nil, err
		}
		log.Printf("Loaded project file %s", path)
	}
	if f.Module != "" {
		m := f.Module
		if !filepath.IsAbs(m) {
			m = filepath.Join(dir, m)
		}
		if err := c.SetModule(m); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid project configuration")
	}
	return c, nil
}

// Overrides adjust every selected stage.
type Overrides struct {
	Policy   string
	Force    bool
	Observer stage.Observer
}

// NewStager builds the stager for s.
func NewStager(c *config.Config, s config.Stage, o Overrides) (*stage.Stager, error) {
	policy := s.Policy
	if o.Policy != "" {
		policy = o.Policy
	}
	statePath := c.StatePath(s)
	opts := stage.Options{
		Policy:   stage.Policy(policy),
		Detect:   stage.Detection(s.Detect),
		Exclude:  s.Exclude,
		State:    stage.NewFileState(billyx.NewOSFS(filepath.Dir(statePath)), filepath.Base(statePath)),
		Force:    o.Force,
		Observer: o.Observer,
	}
	st, err := stage.New(billyx.NewOSFS(c.SourceDir(s)), billyx.NewOSFS(c.DestinationDir(s)), opts)
	return st, errors.Wrapf(err, "stage %s", s.Name)
}

// PrintResult writes the one-line summary of a stage run.
func PrintResult(w io.Writer, name string, res *stage.Result) {
	line := build.Summary(name, res)
	switch {
	case res.UpToDate:
		line = yellow(line)
	case res.Changed():
		line = green(line)
	}
	fmt.Fprintln(w, line)
}

// PrintPending writes the paths a run would change.
func PrintPending(w io.Writer, name string, res *stage.Result) {
	if res.UpToDate || !res.Changed() {
		PrintResult(w, name, res)
		return
	}
	for _, p := range res.Copied {
		fmt.Fprintf(w, "%s: %s %s\n", name, green("copy"), p)
	}
	for _, p := range res.Removed {
		fmt.Fprintf(w, "%s: %s %s\n", name, red("remove"), p)
	}
}

// Progress is a stage.Observer drawing a progress bar.
type Progress struct {
	Name string
	Out  io.Writer
	bar  *pb.ProgressBar
}

// Begin implements stage.Observer.
func (p *Progress) Begin(total int) {
	p.bar = pb.New(total)
	p.bar.Output = p.Out
	p.bar.ShowTimeLeft = false
	p.bar.Prefix(p.Name + " ")
	p.bar.Start()
}

// Step implements stage.Observer.
func (p *Progress) Step(_ string, a stage.Action) {
	if a != stage.ActionRemove {
		p.bar.Increment()
	}
}

// End implements stage.Observer.
func (p *Progress) End() {
	p.bar.Finish()
}

var _ stage.Observer = &Progress{}
