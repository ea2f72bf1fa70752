// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build linux

package bus

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/relabs-tech/env_logger/internal/fault"
)

// I2C_SLAVE from linux/i2c-dev.h
const i2cSlave = 0x0703

type devicePeer struct {
	f    *os.File
	addr uint16
}

// OpenDevice opens an i2c-dev node (e.g. /dev/i2c-1) and binds it to addr.
func OpenDevice(path string, addr uint16) (Peer, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fault.New(fault.BusOpen, path, err)
	}
	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, int(addr)); err != nil {
		f.Close()
		return nil, fault.New(fault.BusAddress, fmt.Sprintf("%s addr 0x%02X", path, addr), err)
	}
	return &devicePeer{f: f, addr: addr}, nil
}

func (p *devicePeer) Read(b []byte) (int, error)  { return p.f.Read(b) }
func (p *devicePeer) Write(b []byte) (int, error) { return p.f.Write(b) }
func (p *devicePeer) Close() error                { return p.f.Close() }
func (p *devicePeer) Addr() uint16                { return p.addr }
func (p *devicePeer) String() string              { return fmt.Sprintf("%s@0x%02X", p.f.Name(), p.addr) }
