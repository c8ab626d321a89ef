// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package config describes where the stager reads and writes for a Flutter
// project with an Android app module.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/khalidmaquilang/gv-flutter/pkg/stage"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults matching the app module's Gradle layout.
const (
	DefaultModule        = "android/app"
	DefaultFlutterSource = "../.."
	DefaultStateDir      = "build/gv-stage"
	EffectsStage         = "effects"
	EffectsSource        = "effects"
	EffectsDestination   = "src/main/assets/gv-resources/effects"
)

// PackageStep names the packaging step of a build; no stage may use it.
const PackageStep = "package"

// DefaultPackage is the packaging command run after staging.
var DefaultPackage = []string{"flutter", "build", "apk"}

// Stage configures one source-to-destination staging.
type Stage struct {
	Name string `yaml:"name" toml:"name"`
	// Source is relative to the Flutter source root.
	Source string `yaml:"source" toml:"source"`
	// Destination is relative to the module directory.
	Destination string   `yaml:"destination" toml:"destination"`
	Policy      string   `yaml:"policy,omitempty" toml:"policy,omitempty"`
	Detect      string   `yaml:"detect,omitempty" toml:"detect,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
}

// Config is a project configuration.
type Config struct {
	// Module is the Android app module, relative to the config file.
	Module string `yaml:"module" toml:"module"`
	// FlutterSource is the Flutter project root, relative to Module.
	FlutterSource string `yaml:"flutter_source" toml:"flutter_source"`
	// StateDir holds stage records, relative to Module.
	StateDir string   `yaml:"state_dir" toml:"state_dir"`
	Stages   []Stage  `yaml:"stages" toml:"stages"`
	Package  []string `yaml:"package" toml:"package"`

	base string
}

// Default returns the configuration of the stock project layout, resolved
// against base.
func Default(base string) *Config {
	c := &Config{base: base}
	c.applyDefaults()
	return c
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) configuration file.
// Relative paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening config")
	}
	defer f.Close()
	c := &Config{base: filepath.Dir(path)}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "decoding %s", path)
		}
	case ".toml":
		dec := toml.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported config format %q", ext)
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Module == "" {
		c.Module = DefaultModule
	}
	if c.FlutterSource == "" {
		c.FlutterSource = DefaultFlutterSource
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	if len(c.Stages) == 0 {
		c.Stages = []Stage{{Name: EffectsStage, Source: EffectsSource, Destination: EffectsDestination}}
	}
	for i := range c.Stages {
		if c.Stages[i].Policy == "" {
			c.Stages[i].Policy = string(stage.Additive)
		}
		if c.Stages[i].Detect == "" {
			c.Stages[i].Detect = string(stage.Content)
		}
	}
	if len(c.Package) == 0 {
		c.Package = append([]string(nil), DefaultPackage...)
	}
}

// SetModule overrides the module directory. dir is relative to the working
// directory, not to the config file.
func (c *Config) SetModule(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	c.Module = abs
	return nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, filepath.FromSlash(p))
}

// ModuleDir is the resolved Android app module directory.
func (c *Config) ModuleDir() string { return resolve(c.base, c.Module) }

// FlutterSourceDir is the resolved Flutter project root.
func (c *Config) FlutterSourceDir() string { return resolve(c.ModuleDir(), c.FlutterSource) }

// SourceDir is the resolved source directory of s.
func (c *Config) SourceDir(s Stage) string { return resolve(c.FlutterSourceDir(), s.Source) }

// DestinationDir is the resolved destination directory of s.
func (c *Config) DestinationDir(s Stage) string { return resolve(c.ModuleDir(), s.Destination) }

// StatePath is the resolved state record of s.
func (c *Config) StatePath(s Stage) string {
	return filepath.Join(resolve(c.ModuleDir(), c.StateDir), s.Name+".json")
}

// Select returns the named stage, or every stage when name is empty.
func (c *Config) Select(name string) ([]Stage, error) {
	if name == "" {
		return c.Stages, nil
	}
	for _, s := range c.Stages {
		if s.Name == name {
			return []Stage{s}, nil
		}
	}
	return nil, errors.Errorf("no stage named %q", name)
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	names := map[string]bool{}
	dests := map[string]string{}
	for i, s := range c.Stages {
		if s.Name == "" {
			return errors.Errorf("stage %d: name is required", i)
		}
		if strings.ContainsAny(s.Name, `/\`) {
			return errors.Errorf("stage %s: name must not contain path separators", s.Name)
		}
		if s.Name == PackageStep {
			return errors.Errorf("stage %s: name is reserved for the packaging step", s.Name)
		}
		if names[s.Name] {
			return errors.Errorf("stage %s: duplicate name", s.Name)
		}
		names[s.Name] = true
		if s.Source == "" {
			return errors.Errorf("stage %s: source is required", s.Name)
		}
		if s.Destination == "" {
			return errors.Errorf("stage %s: destination is required", s.Name)
		}
		opts := stage.Options{Policy: stage.Policy(s.Policy), Detect: stage.Detection(s.Detect), Exclude: s.Exclude}
		if err := opts.Validate(); err != nil {
			return errors.Wrapf(err, "stage %s", s.Name)
		}
		src, dst := c.SourceDir(s), c.DestinationDir(s)
		if within(dst, src) || within(src, dst) {
			return errors.Errorf("stage %s: source %s and destination %s overlap", s.Name, src, dst)
		}
		if other, ok := dests[dst]; ok {
			return errors.Errorf("stage %s: destination %s already used by stage %s", s.Name, dst, other)
		}
		dests[dst] = s.Name
	}
	if len(c.Package) == 0 || c.Package[0] == "" {
		return errors.New("package command is required")
	}
	return nil
}

// within reports whether p is dir or lies beneath it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// String renders the resolved layout for diagnostics.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "module: %s\nflutter source: %s\n", c.ModuleDir(), c.FlutterSourceDir())
	for _, s := range c.Stages {
		fmt.Fprintf(&b, "stage %s: %s -> %s (%s, %s)\n", s.Name, c.SourceDir(s), c.DestinationDir(s), s.Policy, s.Detect)
	}
	return b.String()
}
