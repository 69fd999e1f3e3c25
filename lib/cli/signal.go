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

// Signal implements the "signal" subcommand.
var Signal signalCommand

type signalCommand struct{}

func (signalCommand) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
  %s [options ...] -xid <xid> -wid <wid> register|activate|deactivate <signal>
  %s [options ...] -xid <xid> -wid <wid> check <signal>

  Manage a work unit's named signals. "register" declares a signal
  (initially inactive), "activate" raises it, "deactivate" clears
  it.

  "check" prints the signal's state on stdout. Like grep, it exits 0
  if the signal is active, 1 if it is inactive, and 2 if the check
  could not be performed. Unless -clear=false is given, a signal
  found active is deactivated in the same request, so each
  activation is observed at most once.

Options:
`, prog, prog)
		flags.PrintDefaults()
	}
	var cf clientFlags
	cf.SetupFlags(flags)
	xid := flags.String("xid", "", "experiment `ID` (required)")
	wid := flags.Int64("wid", 0, "work unit `number` within the experiment")
	clear := flags.Bool("clear", true, "with check: deactivate the signal if it was active")
	if ok, code := cmd.ParseFlags(flags, prog, args, "operation <signal>", stderr); !ok {
		return code
	}
	if *xid == "" {
		fmt.Fprintf(stderr, "missing -xid argument (try -help)\n")
		return 2
	}
	if flags.NArg() != 2 {
		fmt.Fprintf(stderr, "expected an operation and a signal name (try -help)\n")
		return 2
	}
	operation, signal := flags.Arg(0), flags.Arg(1)

	client, err := cf.Client(logger)
	if err != nil {
		return 2
	}
	wu := client.WorkUnit(*xid, *wid)
	ctx := context.Background()
	switch operation {
	case "register":
		err = wu.RegisterSignal(ctx, signal)
	case "activate":
		err = wu.ActivateSignal(ctx, signal)
	case "deactivate":
		err = wu.DeactivateSignal(ctx, signal)
	case "check":
		var active bool
		active, err = wu.CheckSignalActive(ctx, signal, *clear)
		if err != nil {
			return 2
		}
		if active {
			fmt.Fprintln(stdout, "active")
			return 0
		}
		fmt.Fprintln(stdout, "inactive")
		return 1
	default:
		fmt.Fprintf(stderr, "unrecognized signal operation %q (try -help)\n", operation)
		return 2
	}
	if err != nil {
		return 1
	}
	return 0
}
