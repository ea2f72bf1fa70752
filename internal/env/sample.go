// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package env

import "time"

// Reading is a single compensated environmental measurement (BME280).
type Reading struct {
	Temperature float64 `json:"temp_c"`       // °C
	Pressure    float64 `json:"pressure_hpa"` // hPa
	Humidity    float64 `json:"humidity_pct"` // %RH
}

// Record is an averaged reading stamped at the moment it was emitted.
type Record struct {
	Reading
	Time time.Time `json:"time"`
}
