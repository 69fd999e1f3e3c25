// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/windmillai/windmill-go/lib/cmd"
	"github.com/windmillai/windmill-go/sdk/go/ctxlog"
	"github.com/windmillai/windmill-go/sdk/go/windmill"
)

// CreateExperiment implements the "create-experiment" subcommand.
var CreateExperiment createExperimentCommand

type createExperimentCommand struct{}

func (createExperimentCommand) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := ctxlog.New(stderr, "text", "info")
	logger.SetFormatter(cmd.NoPrefixFormatter{})

	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), `
Usage:
  %s [options ...] -name <name>

  Create an experiment and print its work units. The server assigns
  one work unit per element of the -parameters list, or a single
  work unit if no -parameters are given.

Options:
`, prog)
		flags.PrintDefaults()
	}
	var cf clientFlags
	cf.SetupFlags(flags)
	name := flags.String("name", "", "experiment `name` (required)")
	var tags tagFlags
	flags.Var(&tags, "tag", "experiment tag (may be given multiple times)")
	parameters := flags.String("parameters", "", "`JSON` array of per work unit parameter objects, or - to read the array from stdin")
	format := flags.String("format", "json", "output format: json, yaml, or ids")
	flags.StringVar(format, "f", "json", "alias for -format")
	if ok, code := cmd.ParseFlags(flags, prog, args, "", stderr); !ok {
		return code
	}
	if *name == "" {
		fmt.Fprintf(stderr, "missing -name argument (try -help)\n")
		return 2
	}

	options := windmill.CreateExperimentOptions{Name: *name, Tags: tags}
	if *parameters != "" {
		data := []byte(*parameters)
		if *parameters == "-" {
			var err error
			data, err = io.ReadAll(stdin)
			if err != nil {
				logger.Errorf("Error: reading parameters from stdin: %s", err)
				return 1
			}
		}
		if err := json.Unmarshal(data, &options.Parameters); err != nil {
			logger.Errorf("Error: parsing -parameters: %s", err)
			return 2
		}
	}

	client, err := cf.Client(logger)
	if err != nil {
		logger.Errorf("Error: %s", err)
		return 2
	}
	workUnits, err := client.CreateExperiment(context.Background(), options)
	if err != nil {
		logger.Errorf("Error: creating experiment: %s", err)
		return 1
	}
	if *format == "ids" {
		for _, wu := range workUnits {
			fmt.Fprintf(stdout, "%s %d\n", wu.XID, wu.WID)
		}
		return 0
	}
	if err := writeObject(stdout, *format, workUnits); err != nil {
		logger.Errorf("Error: %s", err)
		return 1
	}
	return 0
}
