// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package build orders the steps of an application build: pre-build steps
// run to completion before the packaging step is allowed to start.
package build

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/khalidmaquilang/gv-flutter/internal/syncx"
	"github.com/khalidmaquilang/gv-flutter/pkg/build/local"
	"github.com/khalidmaquilang/gv-flutter/pkg/stage"
	"github.com/pkg/errors"
)

// Step is a named unit of build work.
type Step struct {
	Name string
	Run  func(context.Context) error
}

// StepState is the outcome of a step within a pipeline run.
type StepState int

const (
	StepStatePending StepState = iota
	StepStateSucceeded
	StepStateFailed
	StepStateSkipped
)

func (s StepState) String() string {
	switch s {
	case StepStatePending:
		return "pending"
	case StepStateSucceeded:
		return "succeeded"
	case StepStateFailed:
		return "failed"
	case StepStateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Report records the state of every step of a pipeline run, in run order.
type Report struct {
	Steps  []string
	States map[string]StepState
}

// Pipeline runs PreBuild steps in order and then Package.
type Pipeline struct {
	PreBuild []Step
	// Package is optional; a pipeline without it only stages.
	Package *Step
}

// Run executes the pipeline. The first failing pre-build step aborts the run
// and Package is skipped.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	r := &Report{States: map[string]StepState{}}
	steps := append([]Step(nil), p.PreBuild...)
	if p.Package != nil {
		steps = append(steps, *p.Package)
	}
	for _, s := range steps {
		r.Steps = append(r.Steps, s.Name)
		r.States[s.Name] = StepStatePending
	}
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			skipRest(r, steps[i:])
			return r, err
		}
		if err := s.Run(ctx); err != nil {
			r.States[s.Name] = StepStateFailed
			skipRest(r, steps[i+1:])
			return r, errors.Wrapf(err, "step %s", s.Name)
		}
		r.States[s.Name] = StepStateSucceeded
	}
	return r, nil
}

func skipRest(r *Report, steps []Step) {
	for _, s := range steps {
		r.States[s.Name] = StepStateSkipped
	}
}

// StageStep runs stager as a pre-build step. Steps sharing a lock key never
// stage concurrently; the destination path is the natural key.
// done, when set, receives the result of a successful run.
func StageStep(name string, stager *stage.Stager, locks *syncx.KeyedMutex, key string, done func(*stage.Result)) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context) error {
			unlock := locks.Lock(filepath.Clean(key))
			defer unlock()
			res, err := stager.Stage(ctx)
			if err != nil {
				return err
			}
			if done != nil {
				done(res)
			}
			return nil
		},
	}
}

// Summary renders a one-line description of a stage result.
func Summary(name string, res *stage.Result) string {
	if res.UpToDate {
		return name + ": UP-TO-DATE"
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(": ")
	if !res.Changed() {
		b.WriteString("no changes")
	} else {
		b.WriteString(plural(len(res.Copied), "file") + " copied")
		if len(res.Removed) > 0 {
			b.WriteString(", " + plural(len(res.Removed), "entry") + " removed")
		}
	}
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if strings.HasSuffix(noun, "y") {
		return strconv.Itoa(n) + " " + strings.TrimSuffix(noun, "y") + "ies"
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// CommandStep runs argv in dir as the packaging step.
func CommandStep(name string, exec local.CommandExecutor, dir string, argv []string, out io.Writer) (Step, error) {
	if len(argv) == 0 {
		return Step{}, errors.New("empty packaging command")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return Step{}, errors.Wrapf(err, "finding %s", argv[0])
	}
	return Step{
		Name: name,
		Run: func(ctx context.Context) error {
			log.Printf("Running %s in %s", strings.Join(argv, " "), dir)
			return exec.Execute(ctx, local.CommandOptions{Dir: dir, Output: out}, argv[0], argv[1:]...)
		},
	}, nil
}
