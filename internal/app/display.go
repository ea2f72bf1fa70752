// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/env_logger/internal/config"
	"github.com/relabs-tech/env_logger/internal/env"
	"github.com/relabs-tech/env_logger/internal/fault"
)

// Text baselines of the four 13 px rows on a 128x64 panel.
var displayRows = [...]int{13, 26, 39, 52}

// ssd1306DefaultAddr is the address periph's ssd1306 driver always talks to.
const ssd1306DefaultAddr = 0x3C

// remapBus redirects transactions for one address to another, letting the
// fixed-address ssd1306 driver reach a panel strapped to a different one.
type remapBus struct {
	i2c.Bus
	from, to uint16
}

func (r *remapBus) Tx(addr uint16, w, rd []byte) error {
	if addr == r.from {
		addr = r.to
	}
	return r.Bus.Tx(addr, w, rd)
}

// displayBus returns b, wrapped when the panel is not at the default address.
func displayBus(b i2c.Bus, addr uint16) i2c.Bus {
	if addr == ssd1306DefaultAddr {
		return b
	}
	return &remapBus{Bus: b, from: ssd1306DefaultAddr, to: addr}
}

// latestRecord is written by the MQTT callback and read by the refresh tick.
type latestRecord struct {
	mu   sync.RWMutex
	rec  env.Record
	have bool
}

func (l *latestRecord) set(rec env.Record) {
	l.mu.Lock()
	l.rec, l.have = rec, true
	l.mu.Unlock()
}

func (l *latestRecord) get() (env.Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rec, l.have
}

func RunDisplay(cfg *config.Config) error {
	if _, err := host.Init(); err != nil {
		return fault.New(fault.BusOpen, "periph host init", err)
	}

	b, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fault.New(fault.BusOpen, fmt.Sprintf("display bus %q", cfg.DisplayI2CBus), err)
	}
	defer b.Close()

	dev, err := ssd1306.NewI2C(displayBus(b, cfg.DisplayI2CAddr), &ssd1306.DefaultOpts)
	if err != nil {
		return fault.New(fault.DriverInit, "ssd1306", err)
	}
	defer dev.Halt()
	log.Infof("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := dev.Draw(dev.Bounds(), renderLines("Env Logger", "BME280", "", "Waiting..."), image.Point{}); err != nil {
		log.WithError(err).Warn("display: error showing splash")
	}

	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)

	var latest latestRecord
	if err := subscribeRecords(client, cfg.TopicEnv, "display", latest.set); err != nil {
		return errors.Wrap(err, "display")
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Info("display: starting update loop")
	for range ticker.C {
		rec, have := latest.get()
		if err := dev.Draw(dev.Bounds(), renderRecord(rec, have), image.Point{}); err != nil {
			log.WithError(err).Warn("display: update error")
		}
	}
	return nil
}

// renderRecord lays out one averaged record, or a waiting screen.
func renderRecord(rec env.Record, have bool) *image1bit.VerticalLSB {
	if !have {
		return renderLines("", "Environment", "Waiting...", "")
	}
	stamp := ""
	if !rec.Time.IsZero() {
		stamp = rec.Time.Local().Format("15:04:05")
	}
	return renderLines(
		fmt.Sprintf("T: %6.2f C", rec.Temperature),
		fmt.Sprintf("P: %7.2f hPa", rec.Pressure),
		fmt.Sprintf("H: %6.2f %%", rec.Humidity),
		stamp,
	)
}

func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		if i >= len(displayRows) || line == "" {
			continue
		}
		drawer.Dot = fixed.P(0, displayRows[i])
		drawer.DrawString(line)
	}
	return img
}
