// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"

	"github.com/relabs-tech/env_logger/internal/env"
	"github.com/relabs-tech/env_logger/internal/fault"
)

var errNotTriggered = errors.New("no forced measurement pending")

// bmxDriver runs the sensor through periph's bmxx80 package. bmxx80 performs
// trigger, conversion wait and burst read inside Sense, so the conversion
// happens in TriggerForced and ReadCompensated hands back its result.
type bmxDriver struct {
	bus  i2c.Bus
	addr uint16
	opts bmxx80.Opts
	dev  *bmxx80.Dev

	pending *physic.Env
}

// NewBMXX80 returns a Driver for a BME280 at addr on b.
func NewBMXX80(b i2c.Bus, addr uint16) Driver {
	return &bmxDriver{bus: b, addr: addr, opts: bmxx80.DefaultOpts}
}

func (d *bmxDriver) Initialize() error {
	dev, err := bmxx80.NewI2C(d.bus, d.addr, &d.opts)
	if err != nil {
		return fault.New(fault.DriverInit, fmt.Sprintf("bmxx80 at 0x%02X", d.addr), err)
	}
	d.dev = dev
	return nil
}

// SetSamplingConfig reprograms the device. bmxx80 only takes options at
// construction, so the device is rebuilt with the new ones.
func (d *bmxDriver) SetSamplingConfig(cfg SamplingConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if d.dev == nil {
		return fault.New(fault.DriverInit, "bmxx80 sampling config", errors.New("not initialized"))
	}
	if err := d.dev.Halt(); err != nil {
		return fault.New(fault.DriverInit, "bmxx80 halt", err)
	}
	d.opts = bmxOpts(cfg)
	d.dev = nil
	return d.Initialize()
}

func (d *bmxDriver) SettlingDelay(cfg SamplingConfig) uint32 {
	return MeasurementDelay(cfg)
}

func (d *bmxDriver) TriggerForced() error {
	d.pending = nil
	var e physic.Env
	if err := d.dev.Sense(&e); err != nil {
		return fault.New(fault.BusComm, "bmxx80 forced measurement", err)
	}
	d.pending = &e
	return nil
}

func (d *bmxDriver) ReadCompensated() (env.Reading, error) {
	if d.pending == nil {
		return env.Reading{}, errNotTriggered
	}
	e := *d.pending
	d.pending = nil

	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	return env.Reading{
		Temperature: e.Temperature.Celsius(),
		Pressure:    pressurePa / 100.0, // 1 hPa = 100 Pa
		Humidity:    float64(e.Humidity) / float64(physic.PercentRH),
	}, nil
}

func (d *bmxDriver) Halt() error {
	if d.dev == nil {
		return nil
	}
	return d.dev.Halt()
}

func bmxOpts(cfg SamplingConfig) bmxx80.Opts {
	return bmxx80.Opts{
		Temperature: bmxOversampling(cfg.Temperature),
		Pressure:    bmxOversampling(cfg.Pressure),
		Humidity:    bmxOversampling(cfg.Humidity),
		Filter:      bmxFilter(cfg.Filter),
	}
}

func bmxOversampling(o Oversampling) bmxx80.Oversampling {
	switch o {
	case Oversampling1x:
		return bmxx80.O1x
	case Oversampling2x:
		return bmxx80.O2x
	case Oversampling4x:
		return bmxx80.O4x
	case Oversampling8x:
		return bmxx80.O8x
	case Oversampling16x:
		return bmxx80.O16x
	}
	return bmxx80.Off
}

func bmxFilter(f Filter) bmxx80.Filter {
	switch f {
	case Filter2:
		return bmxx80.F2
	case Filter4:
		return bmxx80.F4
	case Filter8:
		return bmxx80.F8
	case Filter16:
		return bmxx80.F16
	}
	return bmxx80.NoFilter
}
