// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/env_logger/internal/fault"
)

// fakePeer scripts what the wire accepts and returns.
type fakePeer struct {
	addr     uint16
	writes   [][]byte
	accept   int // bytes accepted per write; <0 means all
	writeErr error
	readData []byte
	readErr  error
	reads    int
	closed   bool
}

func newFakePeer() *fakePeer {
	return &fakePeer{addr: 0x76, accept: -1}
}

func (p *fakePeer) Write(b []byte) (int, error) {
	p.writes = append(p.writes, append([]byte(nil), b...))
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	if p.accept >= 0 && p.accept < len(b) {
		return p.accept, nil
	}
	return len(b), nil
}

func (p *fakePeer) Read(b []byte) (int, error) {
	p.reads++
	if p.readErr != nil {
		return 0, p.readErr
	}
	return copy(b, p.readData), nil
}

func (p *fakePeer) Close() error {
	p.closed = true
	return nil
}

func (p *fakePeer) Addr() uint16   { return p.addr }
func (p *fakePeer) String() string { return "fake@0x76" }

func TestWriteFullPayloadSucceeds(t *testing.T) {
	p := newFakePeer()
	a := NewAdapter(p)

	err := a.Write(0xF4, []byte{1, 2, 3, 4})

	require.NoError(t, err)
	require.Len(t, p.writes, 1)
	assert.Equal(t, []byte{0xF4, 1, 2, 3, 4}, p.writes[0])
}

func TestWriteShortPayloadIsBusComm(t *testing.T) {
	p := newFakePeer()
	p.accept = 4 // address byte plus 3 of 4 payload bytes
	a := NewAdapter(p)

	err := a.Write(0xF4, []byte{1, 2, 3, 4})

	require.Error(t, err)
	assert.ErrorIs(t, err, fault.BusComm)
	assert.Equal(t, fault.BusComm, fault.Of(err))
}

func TestWriteErrorIsBusComm(t *testing.T) {
	p := newFakePeer()
	p.writeErr = errors.New("remote I/O error")
	a := NewAdapter(p)

	err := a.Write(0xF2, []byte{0x01})

	assert.ErrorIs(t, err, fault.BusComm)
	assert.Contains(t, err.Error(), "remote I/O error")
}

func TestReadWritesAddressThenReads(t *testing.T) {
	p := newFakePeer()
	p.readData = []byte{0x60, 0x00, 0x11}
	a := NewAdapter(p)

	got, err := a.Read(0xD0, 3)

	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x00, 0x11}, got)
	require.Len(t, p.writes, 1)
	assert.Equal(t, []byte{0xD0}, p.writes[0])
	assert.Equal(t, 1, p.reads)
}

func TestReadFailedAddressWriteSkipsRead(t *testing.T) {
	p := newFakePeer()
	p.accept = 0
	a := NewAdapter(p)

	_, err := a.Read(0xD0, 1)

	assert.ErrorIs(t, err, fault.BusComm)
	assert.Equal(t, 0, p.reads)
}

func TestReadShortDataIsBusComm(t *testing.T) {
	p := newFakePeer()
	p.readData = []byte{0x01}
	a := NewAdapter(p)

	_, err := a.Read(0xF7, 8)

	assert.ErrorIs(t, err, fault.BusComm)
	assert.Contains(t, err.Error(), "1 of 8 bytes")
}

func TestDelaySleepsMicroseconds(t *testing.T) {
	a := NewAdapter(newFakePeer())
	var slept time.Duration
	a.sleep = func(d time.Duration) { slept += d }

	a.Delay(46100)

	assert.Equal(t, 46100*time.Microsecond, slept)
}

func TestTxRoutesRegisterRead(t *testing.T) {
	p := newFakePeer()
	p.readData = []byte{0xAA, 0xBB}
	a := NewAdapter(p)
	r := make([]byte, 2)

	require.NoError(t, a.Tx(0x76, []byte{0x88}, r))

	assert.Equal(t, []byte{0xAA, 0xBB}, r)
	assert.Equal(t, [][]byte{{0x88}}, p.writes)
}

func TestTxRoutesRegisterWrite(t *testing.T) {
	p := newFakePeer()
	a := NewAdapter(p)

	require.NoError(t, a.Tx(0x76, []byte{0xF4, 0x55}, nil))

	assert.Equal(t, [][]byte{{0xF4, 0x55}}, p.writes)
	assert.Equal(t, 0, p.reads)
}

func TestTxRejects(t *testing.T) {
	tests := []struct {
		name string
		addr uint16
		w, r []byte
		code fault.Code
	}{
		{"foreign address", 0x77, []byte{0xD0}, make([]byte, 1), fault.BusAddress},
		{"no register", 0x76, nil, make([]byte, 1), fault.BusComm},
		{"multi byte prefix", 0x76, []byte{0xD0, 0x01}, make([]byte, 1), fault.BusComm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakePeer()
			a := NewAdapter(p)

			err := a.Tx(tt.addr, tt.w, tt.r)

			assert.Equal(t, tt.code, fault.Of(err))
			assert.Empty(t, p.writes)
		})
	}
}

func TestCloseReleasesPeer(t *testing.T) {
	p := newFakePeer()
	a := NewAdapter(p)

	require.NoError(t, a.Close())
	assert.True(t, p.closed)
	assert.Equal(t, "fake@0x76", a.String())
}
