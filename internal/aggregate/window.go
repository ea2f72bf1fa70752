// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package aggregate averages readings over non-overlapping windows.
package aggregate

import "github.com/relabs-tech/env_logger/internal/env"

// WindowSize is the number of readings folded into one average.
const WindowSize = 10

// Window accumulates readings until WindowSize of them have been seen.
// The zero value is ready to use.
type Window struct {
	sumT, sumP, sumH float64
	count            int
}

// Observe adds r to the window. When the window fills it returns the mean of
// the batch and true, and the window starts over empty.
func (w *Window) Observe(r env.Reading) (env.Reading, bool) {
	w.sumT += r.Temperature
	w.sumP += r.Pressure
	w.sumH += r.Humidity
	w.count++

	if w.count < WindowSize {
		return env.Reading{}, false
	}

	avg := env.Reading{
		Temperature: w.sumT / WindowSize,
		Pressure:    w.sumP / WindowSize,
		Humidity:    w.sumH / WindowSize,
	}
	*w = Window{}
	return avg, true
}

// Count is the number of readings in the current, incomplete window.
func (w *Window) Count() int {
	return w.count
}
