// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/env_logger/internal/acquisition"
	"github.com/relabs-tech/env_logger/internal/bus"
	"github.com/relabs-tech/env_logger/internal/config"
	"github.com/relabs-tech/env_logger/internal/csvlog"
	"github.com/relabs-tech/env_logger/internal/sensors"
	"github.com/relabs-tech/env_logger/internal/telemetry"
)

// sleepDelay stands in for the bus delay when no bus is open (mock driver).
type sleepDelay struct{}

func (sleepDelay) Delay(us uint32) { time.Sleep(time.Duration(us) * time.Microsecond) }

// RunLogger opens the sensor on busName, then logs averaged records until ctx
// is cancelled. Every error it returns happened during startup.
func RunLogger(ctx context.Context, cfg *config.Config, busName string) error {
	log.WithFields(log.Fields{
		"bus":    busName,
		"addr":   cfg.I2CAddr,
		"driver": cfg.SensorDriver,
	}).Info("starting env logger")

	// --- Bus (skipped for the mock driver) ---
	var (
		b     i2c.Bus
		delay acquisition.Delayer = sleepDelay{}
	)
	if cfg.SensorDriver != sensors.KindMock {
		peer, err := bus.Open(busName, cfg.I2CAddr)
		if err != nil {
			return errors.Wrap(err, "open sensor bus")
		}
		adapter := bus.NewAdapter(peer)
		defer adapter.Close()
		b, delay = adapter, adapter
		log.Infof("bus: opened %s", adapter)
	}

	driver, err := sensors.New(cfg.SensorDriver, b, cfg.I2CAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Halt(); err != nil {
			log.WithError(err).Warn("sensor halt failed")
		}
	}()

	// --- Log file: must be writable before the first cycle ---
	csvLog := csvlog.New(cfg.LogPath, cfg.LogTimestamps)
	if err := csvLog.Open(); err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer csvLog.Close()
	log.WithField("path", csvLog.Path()).Info("logging averaged records")

	sinks := []acquisition.Sink{csvLog}

	// --- MQTT (optional, never blocks disk logging) ---
	if cfg.MQTTBroker != "" {
		client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDLogger)
		if err != nil {
			log.WithError(err).Warn("MQTT publishing disabled")
		} else {
			pub := NewPublisher(client, cfg.TopicEnv)
			defer pub.Close()
			sinks = append(sinks, pub)
		}
	}

	// --- Telemetry ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.New(reg)
	telemetry.Serve(cfg.MetricsAddr, reg)

	loop, err := acquisition.New(driver, delay, sinks, acquisition.Options{
		Pacing:   time.Duration(cfg.CyclePacingMS) * time.Millisecond,
		Observer: metrics,
	})
	if err != nil {
		return err
	}

	return loop.Run(ctx)
}
