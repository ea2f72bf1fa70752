// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/env_logger/internal/env"
)

func TestConstantWindowAveragesToInput(t *testing.T) {
	inputs := []env.Reading{
		{Temperature: 20, Pressure: 1013.25, Humidity: 55},
		{Temperature: -5.5, Pressure: 987.1, Humidity: 0},
		{Temperature: 0, Pressure: 0, Humidity: 100},
	}
	for _, in := range inputs {
		var w Window
		emitted := 0
		var got env.Reading
		for i := 0; i < WindowSize; i++ {
			if avg, ok := w.Observe(in); ok {
				emitted++
				got = avg
			}
		}
		require.Equal(t, 1, emitted)
		assert.InDelta(t, in.Temperature, got.Temperature, 1e-9)
		assert.InDelta(t, in.Pressure, got.Pressure, 1e-9)
		assert.InDelta(t, in.Humidity, got.Humidity, 1e-9)
	}
}

func TestEmitsFloorNOverWindow(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 19, 20, 25, 100, 101} {
		var w Window
		emitted := 0
		for i := 0; i < n; i++ {
			if _, ok := w.Observe(env.Reading{Temperature: float64(i)}); ok {
				emitted++
			}
			require.GreaterOrEqual(t, w.Count(), 0)
			require.Less(t, w.Count(), WindowSize)
		}
		assert.Equal(t, n/WindowSize, emitted, "n=%d", n)
		assert.Equal(t, n%WindowSize, w.Count(), "n=%d", n)
	}
}

func TestWindowsDoNotOverlap(t *testing.T) {
	var w Window
	var avgs []float64
	for i := 0; i < 2*WindowSize; i++ {
		if avg, ok := w.Observe(env.Reading{Temperature: float64(i)}); ok {
			avgs = append(avgs, avg.Temperature)
		}
	}
	// mean(0..9) and mean(10..19)
	assert.Equal(t, []float64{4.5, 14.5}, avgs)
}

func TestNoEmissionReturnsZeroReading(t *testing.T) {
	var w Window
	avg, ok := w.Observe(env.Reading{Temperature: 30, Pressure: 1000, Humidity: 40})
	assert.False(t, ok)
	assert.Equal(t, env.Reading{}, avg)
	assert.Equal(t, 1, w.Count())
}
