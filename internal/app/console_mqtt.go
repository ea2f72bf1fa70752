// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_logger/internal/config"
	"github.com/relabs-tech/env_logger/internal/env"
)

func RunConsoleMQTT(cfg *config.Config) error {
	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	if err := subscribeRecords(client, cfg.TopicEnv, "console", func(rec env.Record) {
		fmt.Println(formatConsoleRecord(rec))
	}); err != nil {
		client.Disconnect(disconnectQuiesce)
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("console: shutting down")
	client.Disconnect(disconnectQuiesce)
	return nil
}

func formatConsoleRecord(rec env.Record) string {
	return fmt.Sprintf("[ENV] %s  T=%6.2f°C  P=%7.2fhPa  H=%6.2f%%",
		rec.Time.Local().Format("02-01-2006 15:04:05"), rec.Temperature, rec.Pressure, rec.Humidity)
}
