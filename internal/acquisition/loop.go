// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package acquisition runs the forced-mode measurement cycle:
// trigger, wait for the sensor to settle, read, average, log.
package acquisition

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_logger/internal/aggregate"
	"github.com/relabs-tech/env_logger/internal/env"
	"github.com/relabs-tech/env_logger/internal/sensors"
)

// Sampling is programmed once at startup and never changed; the settling
// delay is derived from it.
var Sampling = sensors.SamplingConfig{
	Humidity:    sensors.Oversampling1x,
	Pressure:    sensors.Oversampling16x,
	Temperature: sensors.Oversampling2x,
	Filter:      sensors.Filter16,
}

// State is the position of the loop inside one cycle.
type State int

const (
	Idle State = iota
	Triggering
	Waiting
	Reading
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Triggering:
		return "triggering"
	case Waiting:
		return "waiting"
	case Reading:
		return "reading"
	}
	return "unknown"
}

// Delayer blocks for a number of microseconds. bus.Adapter implements it.
type Delayer interface {
	Delay(us uint32)
}

// Sink receives every averaged record, in order.
type Sink interface {
	Name() string
	Append(rec env.Record) error
}

// Observer is told about cycle outcomes; telemetry.Metrics implements it.
type Observer interface {
	CycleDone()
	CycleFailed(stage string)
	WindowFill(n int)
	RecordEmitted(rec env.Record)
	SinkFailed(sink string)
}

// Options tune a Loop. The zero value runs back to back cycles with no
// observer.
type Options struct {
	// Pacing is an extra pause after every cycle.
	Pacing   time.Duration
	Observer Observer
}

// Loop owns the aggregation window. It is not safe for concurrent use.
type Loop struct {
	driver sensors.Driver
	delay  Delayer
	sinks  []Sink
	obs    Observer
	pacing time.Duration
	now    func() time.Time

	settle uint32
	window aggregate.Window
	state  State
}

// New initializes the driver, programs the fixed sampling configuration and
// returns a loop ready to run. Any error here is fatal to the process.
func New(d sensors.Driver, delay Delayer, sinks []Sink, opts Options) (*Loop, error) {
	if err := d.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initialize sensor")
	}
	if err := d.SetSamplingConfig(Sampling); err != nil {
		return nil, errors.Wrap(err, "configure sensor")
	}
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	l := &Loop{
		driver: d,
		delay:  delay,
		sinks:  sinks,
		obs:    obs,
		pacing: opts.Pacing,
		now:    time.Now,
		settle: d.SettlingDelay(Sampling),
	}
	log.WithFields(log.Fields{
		"settle_us": l.settle,
		"window":    aggregate.WindowSize,
		"pacing":    l.pacing,
	}).Info("acquisition: sensor configured (osr_h x1, osr_p x16, osr_t x2, filter 16)")
	return l, nil
}

// State reports where the loop is inside the current cycle.
func (l *Loop) State() State {
	return l.state
}

// SettleMicros is the delay waited between trigger and read.
func (l *Loop) SettleMicros() uint32 {
	return l.settle
}

// Cycle performs one trigger/wait/read pass and feeds the result to the
// window. A failed trigger or read abandons the cycle without touching the
// window and is returned to the caller. Sink failures are logged only.
func (l *Loop) Cycle() error {
	defer func() { l.state = Idle }()

	l.state = Triggering
	if err := l.driver.TriggerForced(); err != nil {
		l.obs.CycleFailed("trigger")
		return errors.Wrap(err, "trigger forced measurement")
	}

	l.state = Waiting
	l.delay.Delay(l.settle)

	l.state = Reading
	r, err := l.driver.ReadCompensated()
	if err != nil {
		l.obs.CycleFailed("read")
		return errors.Wrap(err, "read compensated data")
	}
	l.obs.CycleDone()

	log.Debugf("acquisition: %d %0.2f,%0.2f,%0.2f", l.window.Count(), r.Temperature, r.Pressure, r.Humidity)

	avg, ok := l.window.Observe(r)
	l.obs.WindowFill(l.window.Count())
	if !ok {
		return nil
	}

	rec := env.Record{Reading: avg, Time: l.now()}
	l.obs.RecordEmitted(rec)
	for _, s := range l.sinks {
		if err := s.Append(rec); err != nil {
			l.obs.SinkFailed(s.Name())
			log.WithError(err).WithField("sink", s.Name()).Error("acquisition: record not delivered")
		}
	}
	return nil
}

// Run cycles until ctx is cancelled, then returns nil. Cycle errors are
// logged and the next cycle starts as usual.
func (l *Loop) Run(ctx context.Context) error {
	log.Info("acquisition: loop started")
	for ctx.Err() == nil {
		if err := l.Cycle(); err != nil {
			log.WithError(err).Warn("acquisition: cycle abandoned")
		}
		if !l.pause(ctx) {
			break
		}
	}
	log.Info("acquisition: loop stopped")
	return nil
}

func (l *Loop) pause(ctx context.Context) bool {
	if l.pacing <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(l.pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type nopObserver struct{}

func (nopObserver) CycleDone()               {}
func (nopObserver) CycleFailed(string)       {}
func (nopObserver) WindowFill(int)           {}
func (nopObserver) RecordEmitted(env.Record) {}
func (nopObserver) SinkFailed(string)        {}
