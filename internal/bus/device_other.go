// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build !linux

package bus

import (
	"github.com/pkg/errors"

	"github.com/relabs-tech/env_logger/internal/fault"
)

// OpenDevice is only implemented on linux.
func OpenDevice(path string, addr uint16) (Peer, error) {
	return nil, fault.New(fault.BusOpen, path, errors.New("i2c device nodes require linux"))
}
