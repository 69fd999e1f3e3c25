// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/windmillai/windmill-go/lib/cmd"
	"github.com/windmillai/windmill-go/sdk/go/ctxlog"
)

// Upload implements the "upload" subcommand.
var Upload uploadCommand

type uploadCommand struct{}

func (uploadCommand) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
  %s [options ...] -xid <xid> -wid <wid> <path>

  Upload a file or directory as an artifact of a work unit. A
  directory is packed into a gzip compressed tar archive before
  uploading.

Options:
`, prog)
		flags.PrintDefaults()
	}
	var cf clientFlags
	cf.SetupFlags(flags)
	xid := flags.String("xid", "", "experiment `ID` (required)")
	wid := flags.Int64("wid", 0, "work unit `number` within the experiment")
	name := flags.String("name", "", "artifact `filename` on the server (default: the base name of path, plus .tgz for a directory)")
	if ok, code := cmd.ParseFlags(flags, prog, args, "path", stderr); !ok {
		return code
	}
	if *xid == "" {
		fmt.Fprintf(stderr, "missing -xid argument (try -help)\n")
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintf(stderr, "expected exactly one path argument (try -help)\n")
		return 2
	}
	path := flags.Arg(0)

	fi, err := os.Stat(path)
	if err != nil {
		return 1
	}
	client, err := cf.Client(logger)
	if err != nil {
		return 2
	}
	wu := client.WorkUnit(*xid, *wid)
	ctx := context.Background()
	filename := *name
	size := fi.Size()
	if fi.IsDir() {
		if filename == "" {
			filename = filepath.Base(path) + ".tgz"
		}
		if size, err = dirSize(path); err != nil {
			return 1
		}
		err = wu.CreateArtifactFromDirectory(ctx, filename, path)
	} else {
		if filename == "" {
			filename = filepath.Base(path)
		}
		err = wu.CreateArtifactFromFile(ctx, filename, path)
	}
	if err != nil {
		return 1
	}
	logger.WithFields(logrus.Fields{
		"filename": filename,
		"size":     humanize.IBytes(uint64(size)),
	}).Info("upload succeeded")
	return 0
}

// dirSize returns the total size of the regular files under dir,
// before archiving and compression.
func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.Mode().IsRegular() {
			total += fi.Size()
		}
		return nil
	})
	return total, err
}
