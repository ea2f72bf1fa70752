// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package fault holds the error taxonomy shared by the bus, driver and log
// layers. Startup code maps any of these to exit status 1; the acquisition
// loop only ever sees BusComm and LogIO.
package fault

import "errors"

// Code is a stable error identifier. It implements error so it can be used
// directly as a sentinel with errors.Is.
type Code string

func (c Code) Error() string { return string(c) }

const (
	BusOpen    Code = "bus_open"
	BusAddress Code = "bus_address"
	DriverInit Code = "driver_init"
	BusComm    Code = "bus_comm"
	LogIO      Code = "log_io"
	Config     Code = "config"

	Unknown Code = "error"
)

// E carries a code together with the failing operation and its cause.
type E struct {
	C   Code
	Op  string
	Err error
}

func (e *E) Error() string {
	msg := string(e.C)
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *E) Unwrap() error { return e.Err }

// Is lets errors.Is(err, fault.BusComm) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New wraps err under code c for operation op.
func New(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts the Code from anywhere in err's chain, defaulting to Unknown.
func Of(err error) Code {
	if err == nil {
		return ""
	}
	var e *E
	if errors.As(err, &e) {
		return e.C
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Unknown
}
