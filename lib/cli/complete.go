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

// Complete implements the "complete" subcommand.
var Complete completeCommand

type completeCommand struct{}

func (completeCommand) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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

  Mark a work unit finished. The experiment as a whole is finished
  once all of its work units have been marked.

Options:
`, prog)
		flags.PrintDefaults()
	}
	var cf clientFlags
	cf.SetupFlags(flags)
	xid := flags.String("xid", "", "experiment `ID` (required)")
	wid := flags.Int64("wid", 0, "work unit `number` within the experiment")
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
	err = client.WorkUnit(*xid, *wid).Complete(context.Background())
	if err != nil {
		return 1
	}
	return 0
}
