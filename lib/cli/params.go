// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/windmillai/windmill-go/lib/cmd"
	"github.com/windmillai/windmill-go/sdk/go/ctxlog"
)

// Params implements the "params" subcommand.
var Params paramsCommand

type paramsCommand struct{}

func (paramsCommand) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	logger := ctxlog.New(stderr, "text", "info")
	defer func() {
		if err != nil {
			logger.WithError(err).Error("fatal")
		}
	}()

	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), `
Usage:
  %s [options ...] -xid <xid> -wid <wid>

  Fetch the parameters assigned to a work unit when its experiment
  was created, and print them on stdout. A work unit created without
  parameters has an empty parameter set.

Options:
`, prog)
		flags.PrintDefaults()
	}
	var cf clientFlags
	cf.SetupFlags(flags)
	xid := flags.String("xid", "", "experiment `ID` (required)")
	wid := flags.Int64("wid", 0, "work unit `number` within the experiment")
	format := flags.String("format", "json", "output format: json or yaml")
	flags.StringVar(format, "f", "json", "alias for -format")
	if ok, code := cmd.ParseFlags(flags, prog, args, "", stderr); !ok {
		return code
	}
	if *xid == "" {
		fmt.Fprintf(stderr, "missing -xid argument (try -help)\n")
		return 2
	}

	client, err := cf.Client(logger)
	if err != nil {
		return 2
	}
	params, err := client.WorkUnit(*xid, *wid).GetParameters(context.Background())
	if err != nil {
		return 1
	}
	if err = writeObject(stdout, *format, params); err != nil {
		return 1
	}
	return 0
}
