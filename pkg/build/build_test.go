// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/khalidmaquilang/gv-flutter/internal/billyx"
	"github.com/khalidmaquilang/gv-flutter/internal/syncx"
	"github.com/khalidmaquilang/gv-flutter/pkg/build/local"
	"github.com/khalidmaquilang/gv-flutter/pkg/stage"
	"github.com/pkg/errors"
)

func newStager(t *testing.T, src, dst string) *stage.Stager {
	t.Helper()
	s, err := stage.New(billyx.NewOSFS(src), billyx.NewOSFS(dst), stage.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPipelineStagesBeforePackaging(t *testing.T) {
	root := t.TempDir()
	src, dst := filepath.Join(root, "effects"), filepath.Join(root, "assets", "effects")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "b.zip"), []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	var locks syncx.KeyedMutex
	var staged *stage.Result
	mock := local.NewMockCommandExecutor()
	pkg, err := CommandStep("package", mock, root, []string{"flutter", "build", "apk"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	run := pkg.Run
	pkg.Run = func(ctx context.Context) error {
		// Assets must be in place by the time packaging starts.
		if _, err := os.Stat(filepath.Join(dst, "sub", "b.zip")); err != nil {
			t.Errorf("packaging started before staging: %v", err)
		}
		return run(ctx)
	}
	p := &Pipeline{
		PreBuild: []Step{StageStep("effects", newStager(t, src, dst), &locks, dst, func(r *stage.Result) { staged = r })},
		Package:  &pkg,
	}
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff([]string{"effects", "package"}, report.Steps); diff != "" {
		t.Errorf("Steps mismatch (-want +got):\n%s", diff)
	}
	for name, state := range report.States {
		if state != StepStateSucceeded {
			t.Errorf("step %s = %s", name, state)
		}
	}
	if staged == nil || len(staged.Copied) != 1 {
		t.Errorf("stage result = %+v", staged)
	}
	want := []local.MockCommand{{Name: "flutter", Args: []string{"build", "apk"}, Dir: root}}
	if diff := cmp.Diff(want, mock.Commands()); diff != "" {
		t.Errorf("Commands() mismatch (-want +got):\n%s", diff)
	}
}

func TestPipelineStageFailureSkipsPackaging(t *testing.T) {
	root := t.TempDir()
	var locks syncx.KeyedMutex
	mock := local.NewMockCommandExecutor()
	pkg, err := CommandStep("package", mock, root, []string{"flutter", "build", "apk"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	later := false
	p := &Pipeline{
		PreBuild: []Step{
			StageStep("effects", newStager(t, filepath.Join(root, "missing"), filepath.Join(root, "out")), &locks, "out", nil),
			{Name: "later", Run: func(context.Context) error { later = true; return nil }},
		},
		Package: &pkg,
	}
	report, err := p.Run(context.Background())
	if !errors.Is(err, stage.ErrMissingSource) {
		t.Fatalf("Run() error = %v, want ErrMissingSource", err)
	}
	wantStates := map[string]StepState{
		"effects": StepStateFailed,
		"later":   StepStateSkipped,
		"package": StepStateSkipped,
	}
	if diff := cmp.Diff(wantStates, report.States); diff != "" {
		t.Errorf("States mismatch (-want +got):\n%s", diff)
	}
	if later {
		t.Error("step after failure ran")
	}
	if cmds := mock.Commands(); len(cmds) != 0 {
		t.Errorf("packaging ran after stage failure: %+v", cmds)
	}
	if _, err := os.Stat(filepath.Join(root, "out")); !os.IsNotExist(err) {
		t.Errorf("destination created after failure: %v", err)
	}
}

func TestPipelinePackagingFailure(t *testing.T) {
	mock := local.NewMockCommandExecutor()
	mock.FailWith("flutter", errors.New("exit status 1"))
	pkg, err := CommandStep("package", mock, "", []string{"flutter", "build", "apk"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	report, err := (&Pipeline{Package: &pkg}).Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected error")
	}
	if got := report.States["package"]; got != StepStateFailed {
		t.Errorf("package state = %s", got)
	}
}

func TestPipelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	report, err := (&Pipeline{PreBuild: []Step{{Name: "a", Run: func(context.Context) error { ran = true; return nil }}}}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if ran || report.States["a"] != StepStateSkipped {
		t.Errorf("ran=%v state=%s", ran, report.States["a"])
	}
}

func TestCommandStepValidation(t *testing.T) {
	mock := local.NewMockCommandExecutor()
	if _, err := CommandStep("package", mock, "", nil, nil); err == nil {
		t.Error("CommandStep() expected error for empty command")
	}
	mock.Hide("flutter")
	if _, err := CommandStep("package", mock, "", []string{"flutter"}, nil); err == nil {
		t.Error("CommandStep() expected error for missing executable")
	}
}

func TestStageStepsShareDestinationLock(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "effects")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.zip", "b.zip", "c.zip"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	dst := filepath.Join(root, "assets")
	var locks syncx.KeyedMutex
	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		p := &Pipeline{PreBuild: []Step{StageStep("effects", newStager(t, src, dst), &locks, dst, nil)}}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Run(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Run() error = %v", err)
	}
	for _, name := range []string{"a.zip", "b.zip", "c.zip"} {
		b, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil || string(b) != name {
			t.Errorf("%s = %q, %v", name, b, err)
		}
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		res  stage.Result
		want string
	}{
		{stage.Result{UpToDate: true}, "effects: UP-TO-DATE"},
		{stage.Result{Unchanged: []string{"a.zip"}}, "effects: no changes"},
		{stage.Result{Copied: []string{"a.zip"}}, "effects: 1 file copied"},
		{stage.Result{Copied: []string{"a.zip", "b.zip"}, Removed: []string{"c.zip"}}, "effects: 2 files copied, 1 entry removed"},
		{stage.Result{Removed: []string{"c.zip", "d"}}, "effects: 0 files copied, 2 entries removed"},
	}
	for _, tc := range tests {
		if got := Summary("effects", &tc.res); got != tc.want {
			t.Errorf("Summary() = %q, want %q", got, tc.want)
		}
	}
}
