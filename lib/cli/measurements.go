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
)

// LogMeasurements implements the "log-measurements" subcommand.
var LogMeasurements logMeasurementsCommand

type logMeasurementsCommand struct{}

func (logMeasurementsCommand) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
  %s [options ...] -xid <xid> -wid <wid> < measurements.json

  Record measurements for a work unit. The measurements are read
  from stdin as a single JSON object mapping measurement names to
  values, e.g. {"step": 100, "loss": 0.25}.

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

	var measurements map[string]interface{}
	if err = json.NewDecoder(stdin).Decode(&measurements); err != nil {
		err = fmt.Errorf("error parsing measurements from stdin: %s", err)
		return 1
	}

	client, err := cf.Client(logger)
	if err != nil {
		return 2
	}
	err = client.WorkUnit(*xid, *wid).RecordMeasurements(context.Background(), measurements)
	if err != nil {
		return 1
	}
	return 0
}
