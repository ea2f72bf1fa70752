// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry exposes acquisition progress and the latest averages to
// Prometheus.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_logger/internal/env"
)

// Metrics implements acquisition.Observer.
type Metrics struct {
	temperature prometheus.Gauge
	pressure    prometheus.Gauge
	humidity    prometheus.Gauge
	windowFill  prometheus.Gauge

	cycles        prometheus.Counter
	cycleFailures *prometheus.CounterVec
	records       prometheus.Counter
	sinkFailures  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		temperature: newGauge("env_temperature_celsius", "Latest averaged temperature (units: degrees Celsius)"),
		pressure:    newGauge("env_pressure_hpa", "Latest averaged atmospheric pressure (units: hPa)"),
		humidity:    newGauge("env_humidity_percent", "Latest averaged relative humidity (units: %)"),
		windowFill:  newGauge("env_window_fill", "Readings collected in the current averaging window"),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "env_cycles_total",
			Help: "Acquisition cycles that produced a reading",
		}),
		cycleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "env_cycle_failures_total",
			Help: "Acquisition cycles abandoned, by failing stage",
		}, []string{"stage"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "env_records_written_total",
			Help: "Averaged records emitted",
		}),
		sinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "env_sink_failures_total",
			Help: "Averaged records a sink failed to accept",
		}, []string{"sink"}),
	}
	reg.MustRegister(
		m.temperature, m.pressure, m.humidity, m.windowFill,
		m.cycles, m.cycleFailures, m.records, m.sinkFailures,
	)
	return m
}

func newGauge(name string, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
}

func (m *Metrics) CycleDone() { m.cycles.Inc() }

func (m *Metrics) CycleFailed(stage string) {
	m.cycleFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) WindowFill(n int) { m.windowFill.Set(float64(n)) }

func (m *Metrics) RecordEmitted(rec env.Record) {
	m.records.Inc()
	m.temperature.Set(rec.Temperature)
	m.pressure.Set(rec.Pressure)
	m.humidity.Set(rec.Humidity)
}

func (m *Metrics) SinkFailed(sink string) {
	m.sinkFailures.WithLabelValues(sink).Inc()
}

// Serve exposes g on addr/metrics in the background. An empty addr disables
// the endpoint. The listener never touches acquisition state.
func Serve(addr string, g prometheus.Gatherer) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{
		// Opt into OpenMetrics to support exemplars.
		EnableOpenMetrics: true,
	}))
	go func() {
		log.Infof("telemetry: serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("telemetry: metrics listener stopped")
		}
	}()
}
