// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package csvlog appends averaged readings to a comma separated log file.
package csvlog

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/relabs-tech/env_logger/internal/env"
	"github.com/relabs-tech/env_logger/internal/fault"
)

var (
	plainHeader       = []string{"TEMPERATURA", "PRESSAO", "UMIDADE"}
	timestampedHeader = []string{"TEMPERATURA(°C)", "PRESSAO(hPa)", "UMIDADE(%)", "DIA", "HORA"}
)

const (
	dateLayout = "02-01-2006"
	timeLayout = "15:04:05"
)

// Logger keeps one append-mode descriptor open and syncs it after every row.
type Logger struct {
	path        string
	timestamped bool

	f *os.File
	// out receives encoded rows; it is f outside tests.
	out io.Writer
}

// New returns a Logger for path. Nothing is opened until Open or the first
// Append.
func New(path string, timestamped bool) *Logger {
	return &Logger{path: path, timestamped: timestamped}
}

// Path is the log file location.
func (l *Logger) Path() string {
	return l.path
}

func (l *Logger) Name() string { return "csv" }

// Open creates the file if needed and writes the header when it is empty.
// Calling it again after a successful open is a no-op. A failed open leaves
// nothing behind, so the next call starts over.
func (l *Logger) Open() error {
	if l.f != nil {
		return nil
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fault.New(fault.LogIO, "create log dir", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fault.New(fault.LogIO, "open log", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fault.New(fault.LogIO, "stat log", err)
	}

	if info.Size() == 0 {
		header := plainHeader
		if l.timestamped {
			header = timestampedHeader
		}
		if err := writeRow(f, f, header); err != nil {
			f.Close()
			return err
		}
	}
	l.f, l.out = f, f
	return nil
}

// Append writes one row for rec and forces it to stable storage.
func (l *Logger) Append(rec env.Record) error {
	if err := l.Open(); err != nil {
		return err
	}
	row := []string{
		formatValue(rec.Temperature),
		formatValue(rec.Pressure),
		formatValue(rec.Humidity),
	}
	if l.timestamped {
		local := rec.Time.Local()
		row = append(row, local.Format(dateLayout), local.Format(timeLayout))
	}
	return writeRow(l.out, l.f, row)
}

// Close releases the descriptor. The Logger must not be used afterwards.
func (l *Logger) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f, l.out = nil, nil
	if err != nil {
		return fault.New(fault.LogIO, "close log", err)
	}
	return nil
}

// writeRow encodes row on its own and hands it to out in a single write, so
// a failed row leaves no buffered state behind for the next one.
func writeRow(out io.Writer, f *os.File, row []string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(row); err != nil {
		return fault.New(fault.LogIO, "encode row", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fault.New(fault.LogIO, "encode row", err)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fault.New(fault.LogIO, "write row", err)
	}
	if err := f.Sync(); err != nil {
		return fault.New(fault.LogIO, "sync log", errors.Wrap(err, f.Name()))
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
