// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/env_logger/internal/app"
	"github.com/relabs-tech/env_logger/internal/config"
	"github.com/relabs-tech/env_logger/internal/fault"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-config path] <bus-device>\n", os.Args[0])
	flag.PrintDefaults()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "fatal (%s): %v\n", fault.Of(err), err)
	os.Exit(1)
}

func main() {
	configPath := flag.String("config", "./env_logger.config", "path to configuration file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "missing bus device argument (e.g. /dev/i2c-1)")
		usage()
		os.Exit(1)
	}

	if err := config.InitGlobal(*configPath); err != nil {
		fatal(err)
	}
	cfg := config.Get()
	if err := app.SetupLogging(cfg.LogLevel); err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunLogger(ctx, cfg, flag.Arg(0)); err != nil {
		stop()
		fatal(err)
	}
}
