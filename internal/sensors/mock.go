// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/env_logger/internal/env"
)

type mockDriver struct {
	start time.Time
	now   func() time.Time
	armed bool
}

// NewMock creates a driver that needs no hardware and generates smoothly
// drifting indoor conditions.
func NewMock() Driver {
	return &mockDriver{start: time.Now(), now: time.Now}
}

func (m *mockDriver) Initialize() error { return nil }

func (m *mockDriver) SetSamplingConfig(cfg SamplingConfig) error {
	return cfg.Validate()
}

func (m *mockDriver) SettlingDelay(cfg SamplingConfig) uint32 {
	return MeasurementDelay(cfg)
}

func (m *mockDriver) TriggerForced() error {
	m.armed = true
	return nil
}

func (m *mockDriver) ReadCompensated() (env.Reading, error) {
	if !m.armed {
		return env.Reading{}, errNotTriggered
	}
	m.armed = false
	elapsed := m.now().Sub(m.start).Seconds()

	return env.Reading{
		Temperature: 22 + 3*math.Sin(elapsed/60),
		Pressure:    1013.25 + 2*math.Cos(elapsed/90),
		Humidity:    50 + 10*math.Sin(elapsed/120),
	}, nil
}

func (m *mockDriver) Halt() error { return nil }
