// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_logger/internal/app"
	"github.com/relabs-tech/env_logger/internal/config"
)

func main() {
	configPath := flag.String("config", "./env_logger.config", "path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()
	if err := app.SetupLogging(cfg.LogLevel); err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	log.Info("starting env_logger web server (MQTT subscriber)")

	if err := app.RunWeb(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
