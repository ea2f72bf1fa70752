// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/env_logger/internal/fault"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "env_logger.config")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.config"))
	require.NoError(t, err)

	assert.Equal(t, uint16(0x76), cfg.I2CAddr)
	assert.Equal(t, "bmxx80", cfg.SensorDriver)
	assert.True(t, cfg.LogTimestamps)
	assert.Equal(t, DefaultTimestampedLogPath, cfg.LogPath)
	assert.Equal(t, 1000, cfg.CyclePacingMS)
	assert.Empty(t, cfg.MQTTBroker)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
# sensor
I2C_ADDR=0x77
SENSOR_DRIVER = mock

LOG_TIMESTAMPS=false
CYCLE_PACING_MS=0
MQTT_BROKER=tcp://localhost:1883
TOPIC_ENV=lab/env
WEB_SERVER_PORT=9090
DISPLAY_I2C_ADDR=60
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x77), cfg.I2CAddr)
	assert.Equal(t, "mock", cfg.SensorDriver)
	assert.False(t, cfg.LogTimestamps)
	assert.Equal(t, DefaultPlainLogPath, cfg.LogPath)
	assert.Equal(t, 0, cfg.CyclePacingMS)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "lab/env", cfg.TopicEnv)
	assert.Equal(t, 9090, cfg.WebServerPort)
	assert.Equal(t, uint16(60), cfg.DisplayI2CAddr)
}

func TestExplicitLogPathWins(t *testing.T) {
	cfg, err := Load(writeConfig(t, "LOG_PATH=/var/log/env.csv\nLOG_TIMESTAMPS=false\n"))
	require.NoError(t, err)
	assert.Equal(t, "/var/log/env.csv", cfg.LogPath)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no equals", "I2C_ADDR\n"},
		{"unknown key", "COLOR=blue\n"},
		{"address too wide", "I2C_ADDR=0x100\n"},
		{"address not 7 bit", "I2C_ADDR=0x80\n"},
		{"bad bool", "LOG_TIMESTAMPS=maybe\n"},
		{"negative pacing", "CYCLE_PACING_MS=-5\n"},
		{"unknown driver", "SENSOR_DRIVER=bme680\n"},
		{"broker without topic", "MQTT_BROKER=tcp://x:1883\nTOPIC_ENV=\n"},
		{"zero display interval", "DISPLAY_UPDATE_INTERVAL=0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, fault.Config), "got %v", err)
		})
	}
}
