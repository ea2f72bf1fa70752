// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bme280"

	"github.com/relabs-tech/env_logger/internal/env"
	"github.com/relabs-tech/env_logger/internal/fault"
)

// tinygoDriver runs the sensor through tinygo's bme280 package. In forced
// mode every Read* call converts afresh, so TriggerForced arms the driver and
// ReadCompensated collects the three quantities.
type tinygoDriver struct {
	dev   bme280.Device
	armed bool
}

// NewTinyGo returns a Driver for a BME280 at addr on b.
func NewTinyGo(b drivers.I2C, addr uint16) Driver {
	dev := bme280.New(b)
	dev.Address = addr
	return &tinygoDriver{dev: dev}
}

func (d *tinygoDriver) Initialize() error {
	if !d.dev.Connected() {
		return fault.New(fault.DriverInit, fmt.Sprintf("bme280 at 0x%02X", d.dev.Address),
			errors.New("chip id mismatch or no response"))
	}
	d.dev.Configure()
	return nil
}

func (d *tinygoDriver) SetSamplingConfig(cfg SamplingConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.dev.ConfigureWithSettings(bme280.Config{
		Temperature: tinygoOversampling(cfg.Temperature),
		Pressure:    tinygoOversampling(cfg.Pressure),
		Humidity:    tinygoOversampling(cfg.Humidity),
		IIR:         tinygoFilter(cfg.Filter),
		Mode:        bme280.ModeForced,
	})
	return nil
}

func (d *tinygoDriver) SettlingDelay(cfg SamplingConfig) uint32 {
	return MeasurementDelay(cfg)
}

func (d *tinygoDriver) TriggerForced() error {
	if !d.dev.Connected() {
		d.armed = false
		return fault.New(fault.BusComm, "bme280 forced measurement", errors.New("sensor not responding"))
	}
	d.armed = true
	return nil
}

func (d *tinygoDriver) ReadCompensated() (env.Reading, error) {
	if !d.armed {
		return env.Reading{}, errNotTriggered
	}
	d.armed = false

	t, err := d.dev.ReadTemperature()
	if err != nil {
		return env.Reading{}, fault.New(fault.BusComm, "bme280 temperature", err)
	}
	p, err := d.dev.ReadPressure()
	if err != nil {
		return env.Reading{}, fault.New(fault.BusComm, "bme280 pressure", err)
	}
	h, err := d.dev.ReadHumidity()
	if err != nil {
		return env.Reading{}, fault.New(fault.BusComm, "bme280 humidity", err)
	}

	// milli-°C, milli-Pa, hundredths of %RH
	return env.Reading{
		Temperature: float64(t) / 1000.0,
		Pressure:    float64(p) / 100000.0,
		Humidity:    float64(h) / 100.0,
	}, nil
}

func (d *tinygoDriver) Halt() error {
	return nil
}

func tinygoOversampling(o Oversampling) bme280.Oversampling {
	switch o {
	case Oversampling1x:
		return bme280.Sampling1X
	case Oversampling2x:
		return bme280.Sampling2X
	case Oversampling4x:
		return bme280.Sampling4X
	case Oversampling8x:
		return bme280.Sampling8X
	case Oversampling16x:
		return bme280.Sampling16X
	}
	return bme280.SamplingOff
}

func tinygoFilter(f Filter) bme280.FilterCoefficient {
	switch f {
	case Filter2:
		return bme280.Coeff2
	case Filter4:
		return bme280.Coeff4
	case Filter8:
		return bme280.Coeff8
	case Filter16:
		return bme280.Coeff16
	}
	return bme280.Coeff0
}
