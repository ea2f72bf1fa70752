// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/env_logger/internal/fault"
)

// Open picks the peer kind from the bus argument: a /dev/ path is opened as a
// raw device node, anything else ("1", "I2C1") goes through periph's registry.
func Open(name string, addr uint16) (Peer, error) {
	if strings.HasPrefix(name, "/dev/") {
		return OpenDevice(name, addr)
	}
	return OpenRegistry(name, addr)
}

type registryPeer struct {
	bus  i2c.BusCloser
	dev  *i2c.Dev
	name string
}

// OpenRegistry opens a periph registered bus by name or number.
func OpenRegistry(name string, addr uint16) (Peer, error) {
	if _, err := host.Init(); err != nil {
		return nil, fault.New(fault.BusOpen, "periph host init", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fault.New(fault.BusOpen, fmt.Sprintf("i2c bus %q", name), err)
	}
	return &registryPeer{bus: b, dev: &i2c.Dev{Bus: b, Addr: addr}, name: name}, nil
}

func (p *registryPeer) Write(b []byte) (int, error) {
	if err := p.dev.Tx(b, nil); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p *registryPeer) Read(b []byte) (int, error) {
	if err := p.dev.Tx(nil, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p *registryPeer) Close() error   { return p.bus.Close() }
func (p *registryPeer) Addr() uint16   { return p.dev.Addr }
func (p *registryPeer) String() string { return fmt.Sprintf("%s@0x%02X", p.bus, p.dev.Addr) }
