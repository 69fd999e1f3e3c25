// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/windmillai/windmill-go/lib/cli"
	"github.com/windmillai/windmill-go/lib/cmd"
)

var (
	handler = cmd.Multi(map[string]cmd.Handler{
		"version":   cmd.Version,
		"-version":  cmd.Version,
		"--version": cmd.Version,

		"create-experiment": cli.CreateExperiment,
		"params":            cli.Params,
		"diary":             cli.Diary,
		"log-measurements":  cli.LogMeasurements,
		"complete":          cli.Complete,
		"signal":            cli.Signal,
		"upload":            cli.Upload,
	})
)

// fixLegacyArgs moves the subcommand to the front, so "windmill
// -format=yaml params ..." works like "windmill params -format=yaml
// ...".
func fixLegacyArgs(args []string) []string {
	flags := cli.GlobalFlagSet()
	return cmd.SubcommandToFront(args, flags)
}

func main() {
	os.Exit(handler.RunCommand(os.Args[0], fixLegacyArgs(os.Args[1:]), os.Stdin, os.Stdout, os.Stderr))
}
