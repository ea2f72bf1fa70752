// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bus is the only code that touches the physical I2C bus. Adapter
// exposes the register read/write/delay capabilities a compensation driver
// needs, and also speaks the Tx form used by periph and tinygo drivers.
package bus

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/env_logger/internal/fault"
)

// Peer is an open bus handle already bound to one target address.
type Peer interface {
	io.ReadWriteCloser
	String() string
	Addr() uint16
}

// Adapter owns a Peer for the lifetime of the process.
type Adapter struct {
	peer  Peer
	sleep func(time.Duration)
}

var _ i2c.Bus = (*Adapter)(nil)

// NewAdapter takes exclusive ownership of p.
func NewAdapter(p Peer) *Adapter {
	return &Adapter{peer: p, sleep: time.Sleep}
}

// Read writes the register address byte, then reads n bytes back from the
// same peer.
func (a *Adapter) Read(reg byte, n int) ([]byte, error) {
	op := fmt.Sprintf("read reg 0x%02X", reg)
	if k, err := a.peer.Write([]byte{reg}); err != nil || k != 1 {
		return nil, fault.New(fault.BusComm, op, transferErr("address write", k, 1, err))
	}
	buf := make([]byte, n)
	k, err := a.peer.Read(buf)
	if err != nil || k != n {
		return nil, fault.New(fault.BusComm, op, transferErr("data read", k, n, err))
	}
	return buf, nil
}

// Write sends reg followed by payload as a single frame. Every byte of the
// frame, address included, must be acknowledged.
func (a *Adapter) Write(reg byte, payload []byte) error {
	frame := make([]byte, len(payload)+1)
	frame[0] = reg
	copy(frame[1:], payload)
	k, err := a.peer.Write(frame)
	if err != nil || k < len(frame) {
		op := fmt.Sprintf("write reg 0x%02X", reg)
		return fault.New(fault.BusComm, op, transferErr("frame write", k, len(frame), err))
	}
	return nil
}

// Delay blocks for at least us microseconds.
func (a *Adapter) Delay(us uint32) {
	a.sleep(time.Duration(us) * time.Microsecond)
}

// Tx implements i2c.Bus (and tinygo's drivers.I2C). Register reads arrive as
// a one byte write plus a read buffer, register writes as reg+payload with no
// read buffer.
func (a *Adapter) Tx(addr uint16, w, r []byte) error {
	if addr != a.peer.Addr() {
		return fault.New(fault.BusAddress, "tx",
			errors.Errorf("peer %s is bound to 0x%02X, not 0x%02X", a.peer, a.peer.Addr(), addr))
	}
	switch {
	case len(w) == 0:
		return fault.New(fault.BusComm, "tx", errors.New("transaction without register address"))
	case len(r) == 0:
		return a.Write(w[0], w[1:])
	case len(w) == 1:
		b, err := a.Read(w[0], len(r))
		if err != nil {
			return err
		}
		copy(r, b)
		return nil
	default:
		return fault.New(fault.BusComm, "tx",
			errors.Errorf("combined write of %d bytes with read is not supported", len(w)))
	}
}

// SetSpeed is not supported; the kernel driver fixes the bus clock.
func (a *Adapter) SetSpeed(f physic.Frequency) error {
	return errors.Errorf("bus %s: cannot set speed to %s", a.peer, f)
}

func (a *Adapter) String() string {
	return a.peer.String()
}

// Close releases the underlying peer.
func (a *Adapter) Close() error {
	return a.peer.Close()
}

func transferErr(stage string, got, want int, err error) error {
	if err != nil {
		return errors.Wrap(err, stage)
	}
	return errors.Errorf("%s: short transfer, %d of %d bytes", stage, got, want)
}
