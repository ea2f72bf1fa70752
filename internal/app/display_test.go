// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/env_logger/internal/env"
)

func litBytes(img *image1bit.VerticalLSB) int {
	n := 0
	for _, b := range img.Pix {
		if b != 0 {
			n++
		}
	}
	return n
}

func TestRenderLines(t *testing.T) {
	img := renderLines()
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
	assert.Zero(t, litBytes(img))

	assert.NotZero(t, litBytes(renderLines("T: 22.00 C")))
	// Lines past the fourth row are dropped.
	assert.Equal(t, litBytes(renderLines("a", "b", "c", "d")), litBytes(renderLines("a", "b", "c", "d", "e")))
}

func TestRenderRecord(t *testing.T) {
	waiting := renderRecord(env.Record{}, false)
	rec := env.Record{
		Reading: env.Reading{Temperature: 22.46, Pressure: 1009.99, Humidity: 47.1},
		Time:    time.Now(),
	}
	shown := renderRecord(rec, true)

	assert.NotZero(t, litBytes(waiting))
	assert.NotEqual(t, waiting.Pix, shown.Pix)
}

type addrRecorder struct {
	addrs []uint16
}

func (b *addrRecorder) String() string                  { return "recorder" }
func (b *addrRecorder) SetSpeed(physic.Frequency) error { return nil }

func (b *addrRecorder) Tx(addr uint16, w, r []byte) error {
	b.addrs = append(b.addrs, addr)
	return nil
}

func TestDisplayBusRemapsPanelAddress(t *testing.T) {
	rec := &addrRecorder{}

	assert.Same(t, rec, displayBus(rec, ssd1306DefaultAddr))

	b := displayBus(rec, 0x3D)
	assert.NoError(t, b.Tx(ssd1306DefaultAddr, []byte{0x00, 0xAE}, nil))
	assert.NoError(t, b.Tx(0x50, []byte{0x00}, nil))
	assert.Equal(t, []uint16{0x3D, 0x50}, rec.addrs)
	assert.Equal(t, "recorder", b.String())
}
