// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package billyx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
)

func TestList(t *testing.T) {
	fs := memfs.New()
	for name, content := range map[string]string{
		"a.zip":         "a",
		"sub/b.zip":     "bb",
		"sub/.DS_Store": "junk",
	} {
		if err := util.WriteFile(fs, name, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile(%s) failed: %v", name, err)
		}
	}
	if err := fs.MkdirAll("empty/nested", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	tree, err := List(fs, func(rel string) bool { return strings.HasSuffix(rel, ".DS_Store") })
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a.zip", "sub/b.zip"}, tree.Paths()); diff != "" {
		t.Errorf("Paths() mismatch (-want +got):\n%s", diff)
	}
	if got := tree.Files["sub/b.zip"].Size(); got != 2 {
		t.Errorf("size of sub/b.zip = %d, want 2", got)
	}
	dirs := map[string]bool{}
	for _, d := range tree.Dirs {
		dirs[d] = true
	}
	for _, want := range []string{"sub", "empty", "empty/nested"} {
		if !dirs[want] {
			t.Errorf("Dirs missing %q: %v", want, tree.Dirs)
		}
	}
}

func TestCopyFileOSFS(t *testing.T) {
	srcDir, dstDir := t.TempDir(), filepath.Join(t.TempDir(), "out")
	if err := os.MkdirAll(filepath.Join(srcDir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	srcPath := filepath.Join(srcDir, "sub", "b.zip")
	if err := os.WriteFile(srcPath, []byte("payload"), 0640); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(srcPath, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	src, dst := NewOSFS(srcDir), NewOSFS(dstDir)
	info, err := src.Stat("sub/b.zip")
	if err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(dst, src, "sub/b.zip", info); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dstDir, "sub", "b.zip"))
	if err != nil {
		t.Fatalf("reading copy: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("copy content = %q", got)
	}
	st, err := os.Stat(filepath.Join(dstDir, "sub", "b.zip"))
	if err != nil {
		t.Fatal(err)
	}
	if !st.ModTime().Equal(mtime) {
		t.Errorf("copy mtime = %v, want %v", st.ModTime(), mtime)
	}
	if st.Mode().Perm() != 0640 {
		t.Errorf("copy mode = %v, want 0640", st.Mode().Perm())
	}
}

func TestRemoveEmptyDirs(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, "kept/a.zip", []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{"stale/deeper", "wanted"} {
		if err := fs.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	removed, err := RemoveEmptyDirs(fs, []string{"kept", "stale", "stale/deeper", "wanted"}, map[string]bool{"wanted": true})
	if err != nil {
		t.Fatalf("RemoveEmptyDirs failed: %v", err)
	}
	if diff := cmp.Diff([]string{"stale/deeper", "stale"}, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	if _, err := fs.Stat("wanted"); err != nil {
		t.Errorf("kept directory removed: %v", err)
	}
	if _, err := fs.Stat("kept/a.zip"); err != nil {
		t.Errorf("file removed: %v", err)
	}
}
