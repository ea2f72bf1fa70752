// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"github.com/pkg/errors"

	"github.com/relabs-tech/env_logger/internal/env"
	"github.com/relabs-tech/env_logger/internal/fault"
)

// Driver is the compensation driver the acquisition loop talks to. It owns
// register decoding and calibration; callers only see physical units.
type Driver interface {
	Initialize() error
	SetSamplingConfig(cfg SamplingConfig) error
	// SettlingDelay is the worst-case conversion time in microseconds for
	// one forced measurement under cfg.
	SettlingDelay(cfg SamplingConfig) uint32
	TriggerForced() error
	ReadCompensated() (env.Reading, error)
	Halt() error
}

// Oversampling is the number of internal samples averaged per value.
type Oversampling uint8

const (
	OversamplingOff Oversampling = 0
	Oversampling1x  Oversampling = 1
	Oversampling2x  Oversampling = 2
	Oversampling4x  Oversampling = 4
	Oversampling8x  Oversampling = 8
	Oversampling16x Oversampling = 16
)

func (o Oversampling) valid() bool {
	switch o {
	case OversamplingOff, Oversampling1x, Oversampling2x, Oversampling4x, Oversampling8x, Oversampling16x:
		return true
	}
	return false
}

// Filter is the IIR filter coefficient.
type Filter uint8

const (
	FilterOff Filter = 0
	Filter2   Filter = 2
	Filter4   Filter = 4
	Filter8   Filter = 8
	Filter16  Filter = 16
)

func (f Filter) valid() bool {
	switch f {
	case FilterOff, Filter2, Filter4, Filter8, Filter16:
		return true
	}
	return false
}

// SamplingConfig selects oversampling per quantity plus the IIR filter.
type SamplingConfig struct {
	Humidity    Oversampling
	Pressure    Oversampling
	Temperature Oversampling
	Filter      Filter
}

// Validate rejects values the sensor cannot be programmed with.
func (c SamplingConfig) Validate() error {
	switch {
	case !c.Humidity.valid():
		return fault.New(fault.DriverInit, "sampling config", errors.Errorf("humidity oversampling x%d", c.Humidity))
	case !c.Pressure.valid():
		return fault.New(fault.DriverInit, "sampling config", errors.Errorf("pressure oversampling x%d", c.Pressure))
	case !c.Temperature.valid():
		return fault.New(fault.DriverInit, "sampling config", errors.Errorf("temperature oversampling x%d", c.Temperature))
	case !c.Filter.valid():
		return fault.New(fault.DriverInit, "sampling config", errors.Errorf("filter coefficient %d", c.Filter))
	}
	return nil
}

// BME280 datasheet, appendix B: maximum measurement time.
const (
	measOffsetUS    = 1250
	measPerSampleUS = 2300
	presHumOffsetUS = 575
)

// MeasurementDelay returns the maximum forced-mode conversion time for cfg in
// microseconds. The filter does not affect conversion time.
func MeasurementDelay(cfg SamplingConfig) uint32 {
	return measOffsetUS +
		measPerSampleUS*uint32(cfg.Temperature) +
		(measPerSampleUS*uint32(cfg.Pressure) + presHumOffsetUS) +
		(measPerSampleUS*uint32(cfg.Humidity) + presHumOffsetUS)
}
