// Copyright (C) The Windmill Authors. All rights reserved.
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"flag"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/windmillai/windmill-go/lib/cmd"
	"github.com/windmillai/windmill-go/sdk/go/windmill"
	"rsc.io/getopt"
)

// GlobalFlagSet returns a flag set covering the flags that are
// accepted by every subcommand. It is used to rearrange command lines
// that give global flags before the subcommand name, so "windmill
// -format=yaml params ..." works like "windmill params -format=yaml
// ...".
func GlobalFlagSet() cmd.FlagSet {
	flags := getopt.NewFlagSet("", flag.ContinueOnError)
	flags.String("endpoint", "", "WindmillAI service base URL")
	flags.String("api-key", "", "API key to authenticate requests with")
	flags.Duration("timeout", 0, "request timeout")
	flags.String("log-level", "info", "logging level (debug, info, ...)")
	flags.String("format", "json", "output format")
	flags.Alias("f", "format")
	return flags
}

// clientFlags holds the command line options shared by all
// subcommands that contact the WindmillAI service.
type clientFlags struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	logLevel string
}

// SetupFlags registers the shared client options on the given flag
// set.
func (cf *clientFlags) SetupFlags(flags *flag.FlagSet) {
	flags.StringVar(&cf.endpoint, "endpoint", "", "service base `URL` (default $WINDMILLAI_ENDPOINT, or "+windmill.DefaultEndpoint+")")
	flags.StringVar(&cf.apiKey, "api-key", "", "API `key` to authenticate requests with (default $WINDMILLAI_API_KEY, or the settings file)")
	flags.DurationVar(&cf.timeout, "timeout", 0, "request timeout, e.g. 30s (0 waits indefinitely)")
	flags.StringVar(&cf.logLevel, "log-level", "info", "logging `level` (debug, info, ...)")
}

// Client returns a client configured from the environment and
// settings file, with explicit command line flags overriding both.
// It also applies the -log-level flag to logger.
func (cf *clientFlags) Client(logger *logrus.Logger) (*windmill.Client, error) {
	lvl, err := logrus.ParseLevel(cf.logLevel)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(lvl)

	client := windmill.NewClientFromEnv()
	if cf.endpoint != "" {
		client.Endpoint = cf.endpoint
	}
	if cf.apiKey != "" {
		client.APIKey = cf.apiKey
	}
	client.Timeout = cf.timeout
	if client.APIKey == "" {
		return nil, errors.New("no API key found: use -api-key, set $WINDMILLAI_API_KEY, or add WINDMILLAI_API_KEY to ~/.config/windmill/settings.conf")
	}
	return client, nil
}

// tagFlags accumulates repeated -tag arguments.
type tagFlags []string

func (tf *tagFlags) Set(t string) error {
	*tf = append(*tf, t)
	return nil
}

func (tf *tagFlags) String() string {
	return strings.Join(*tf, ",")
}
