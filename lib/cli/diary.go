// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/windmillai/windmill-go/lib/cmd"
	"github.com/windmillai/windmill-go/sdk/go/ctxlog"
)

// Diary implements the "diary" subcommand.
var Diary diaryCommand

type diaryCommand struct{}

func (diaryCommand) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
  %s [options ...] -xid <xid> [entry ...]

  Append a free text entry to an experiment's diary. The entry is
  taken from the remaining arguments, or read from stdin if none are
  given. The diary belongs to the experiment as a whole, so there is
  no -wid option.

Options:
`, prog)
		flags.PrintDefaults()
	}
	var cf clientFlags
	cf.SetupFlags(flags)
	xid := flags.String("xid", "", "experiment `ID` (required)")
	if ok, code := cmd.ParseFlags(flags, prog, args, "entry ...", stderr); !ok {
		return code
	}
	if *xid == "" {
		fmt.Fprintf(stderr, "missing -xid argument (try -help)\n")
		return 2
	}

	entry := strings.Join(flags.Args(), " ")
	if entry == "" {
		var buf []byte
		buf, err = io.ReadAll(stdin)
		if err != nil {
			return 1
		}
		entry = strings.TrimSuffix(string(buf), "\n")
	}
	if entry == "" {
		fmt.Fprintf(stderr, "refusing to add an empty diary entry (try -help)\n")
		return 2
	}

	client, err := cf.Client(logger)
	if err != nil {
		return 2
	}
	err = client.WorkUnit(*xid, 0).AddDiaryEntry(context.Background(), entry)
	if err != nil {
		return 1
	}
	return 0
}
