// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_logger/internal/fault"
)

// SetupLogging configures the process-wide logrus logger.
func SetupLogging(level string) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fault.New(fault.Config, "LOG_LEVEL", errors.Wrapf(err, "level %q", level))
	}
	log.SetLevel(lvl)
	return nil
}
