// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/relabs-tech/env_logger/internal/fault"
)

// Config holds all application configuration values.
type Config struct {
	// Sensor
	I2CAddr      uint16
	SensorDriver string // "bmxx80", "tinygo" or "mock"

	// Log file
	LogPath       string
	LogTimestamps bool

	// Timing
	CyclePacingMS int // milliseconds, extra pause after every cycle

	// Logging / telemetry
	LogLevel    string
	MetricsAddr string // empty disables /metrics

	// MQTT (empty broker disables publishing)
	MQTTBroker          string
	MQTTClientIDLogger  string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string
	MQTTClientIDConsole string
	TopicEnv            string

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

// Default log paths of the two row formats.
const (
	DefaultTimestampedLogPath = "./data.csv"
	DefaultPlainLogPath       = "./data/sensor_data.csv"
)

// Defaults returns the configuration used when no config file is present.
func Defaults() *Config {
	return &Config{
		I2CAddr:               0x76,
		SensorDriver:          "bmxx80",
		LogTimestamps:         true,
		CyclePacingMS:         1000,
		LogLevel:              "info",
		MQTTClientIDLogger:    "env-logger",
		MQTTClientIDWeb:       "env-web-subscriber",
		MQTTClientIDDisplay:   "env-display",
		MQTTClientIDConsole:   "env-console-subscriber",
		TopicEnv:              "env/bme280",
		WebServerPort:         8080,
		DisplayI2CBus:         "",
		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 1000,
	}
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file on top of Defaults. A missing file is
// not an error; the defaults are returned as they are.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	file, err := os.Open(configPath)
	if os.IsNotExist(err) {
		cfg.finish()
		return cfg, nil
	}
	if err != nil {
		return nil, fault.New(fault.Config, "open config file", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fault.New(fault.Config, configPath, errors.Errorf("invalid config line %d: %q", lineNum, line))
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fault.New(fault.Config, configPath, errors.Wrapf(err, "config line %d", lineNum))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fault.New(fault.Config, "read config file", err)
	}

	cfg.finish()
	if err := cfg.validate(); err != nil {
		return nil, fault.New(fault.Config, configPath, err)
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Sensor
	case "I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.I2CAddr = addr
	case "SENSOR_DRIVER":
		c.SensorDriver = value

	// Log file
	case "LOG_PATH":
		c.LogPath = value
	case "LOG_TIMESTAMPS":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid LOG_TIMESTAMPS %q", value)
		}
		c.LogTimestamps = b

	// Timing
	case "CYCLE_PACING_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "invalid CYCLE_PACING_MS %q", value)
		}
		if ms < 0 {
			return errors.Errorf("CYCLE_PACING_MS must be >= 0, got %d", ms)
		}
		c.CyclePacingMS = ms

	// Logging / telemetry
	case "LOG_LEVEL":
		c.LogLevel = value
	case "METRICS_ADDR":
		c.MetricsAddr = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_LOGGER":
		c.MQTTClientIDLogger = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "TOPIC_ENV":
		c.TopicEnv = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "invalid WEB_SERVER_PORT %q", value)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, err := parseAddr(key, value)
		if err != nil {
			return err
		}
		c.DisplayI2CAddr = addr
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "invalid DISPLAY_UPDATE_INTERVAL %q", value)
		}
		c.DisplayUpdateInterval = interval

	default:
		return errors.Errorf("unknown config key: %q", key)
	}

	return nil
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", key, value)
	}
	if addr > 0x7F {
		return 0, errors.Errorf("%s must be a 7-bit address, got 0x%X", key, addr)
	}
	return uint16(addr), nil
}

// finish fills values that depend on other settings.
func (c *Config) finish() {
	if c.LogPath == "" {
		c.LogPath = DefaultPlainLogPath
		if c.LogTimestamps {
			c.LogPath = DefaultTimestampedLogPath
		}
	}
}

// validate checks that all required fields are usable.
func (c *Config) validate() error {
	switch c.SensorDriver {
	case "bmxx80", "tinygo", "mock":
	default:
		return errors.Errorf("SENSOR_DRIVER must be bmxx80, tinygo or mock, got %q", c.SensorDriver)
	}
	if c.MQTTBroker != "" && c.TopicEnv == "" {
		return errors.New("TOPIC_ENV is required when MQTT_BROKER is set")
	}
	if c.DisplayUpdateInterval <= 0 {
		return errors.New("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
