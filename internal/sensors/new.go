// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors adapts third-party BME280 compensation drivers to the
// trigger/settle/read cycle used by the acquisition loop.
package sensors

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/env_logger/internal/fault"
)

// Driver backends selectable through SENSOR_DRIVER.
const (
	KindBMXX80 = "bmxx80"
	KindTinyGo = "tinygo"
	KindMock   = "mock"
)

// New builds the driver backend named by kind on top of b. The mock backend
// ignores b, which may then be nil.
func New(kind string, b i2c.Bus, addr uint16) (Driver, error) {
	switch kind {
	case KindMock:
		return NewMock(), nil
	case KindBMXX80, KindTinyGo:
		if b == nil {
			return nil, fault.New(fault.DriverInit, kind, errors.New("no bus"))
		}
		if kind == KindTinyGo {
			return NewTinyGo(b, addr), nil
		}
		return NewBMXX80(b, addr), nil
	}
	return nil, fault.New(fault.DriverInit, "driver", errors.Errorf("unknown sensor driver %q", kind))
}
