// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// gvbuild stages the AR effect bundles of the gv-flutter app into the Android
// asset bundle and runs the packaging build once they are in place.
package main

import (
	"log"

	"github.com/khalidmaquilang/gv-flutter/tools/gvbuild/command/clean"
	"github.com/khalidmaquilang/gv-flutter/tools/gvbuild/command/runbuild"
	"github.com/khalidmaquilang/gv-flutter/tools/gvbuild/command/runstage"
	"github.com/khalidmaquilang/gv-flutter/tools/gvbuild/command/status"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gvbuild",
	Short: "Asset staging and build driver for the gv-flutter Android app",
}

func init() {
	rootCmd.AddCommand(runstage.Command())
	rootCmd.AddCommand(status.Command())
	rootCmd.AddCommand(clean.Command())
	rootCmd.AddCommand(runbuild.Command())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
