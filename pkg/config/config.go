// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the bridge configuration from a YAML file with
// environment overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/aerostat/pkg/bridge"
)

// Defaults
const (
	DefaultBaudRate        = 9600
	DefaultUpdateInterval  = 5 * time.Second
	DefaultLogLevel        = "info"
	DefaultMQTTClientID    = "aerostat"
	DefaultMQTTBaseTopic   = "aerostat"
	DefaultDiscoveryPrefix = "homeassistant"
	DefaultDeviceName      = "Daewoo AC"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "AEROSTAT_"

// Serial configures a local serial port
type Serial struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// WebSocket configures a remote serial bridge
type WebSocket struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
}

// MQTT configures the Home Assistant integration. An empty broker disables it.
type MQTT struct {
	Broker          string `yaml:"broker"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	ClientID        string `yaml:"client_id"`
	BaseTopic       string `yaml:"base_topic"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	DeviceName      string `yaml:"device_name"`
}

// HTTP configures the REST API. An empty listen address disables it.
type HTTP struct {
	Listen string `yaml:"listen"`
}

// Config is the full bridge configuration
type Config struct {
	Serial              Serial        `yaml:"serial"`
	WebSocket           WebSocket     `yaml:"websocket"`
	UpdateInterval      time.Duration `yaml:"update_interval"`
	VerticalVaneOptions []string      `yaml:"vertical_vane_options"`
	MQTT                MQTT          `yaml:"mqtt"`
	HTTP                HTTP          `yaml:"http"`
	LogLevel            string        `yaml:"log_level"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Serial:              Serial{Baud: DefaultBaudRate},
		UpdateInterval:      DefaultUpdateInterval,
		VerticalVaneOptions: bridge.DefaultVaneLabels.Options(),
		MQTT: MQTT{
			ClientID:        DefaultMQTTClientID,
			BaseTopic:       DefaultMQTTBaseTopic,
			DiscoveryPrefix: DefaultDiscoveryPrefix,
			DeviceName:      DefaultDeviceName,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "reading config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing config %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// applyEnv overrides fields from AEROSTAT_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("SERIAL_PORT", &c.Serial.Port)
	str("WEBSOCKET_URL", &c.WebSocket.URL)
	str("WEBSOCKET_USERNAME", &c.WebSocket.Username)
	str("PASSWORD", &c.WebSocket.Password)
	str("MQTT_BROKER", &c.MQTT.Broker)
	str("MQTT_USERNAME", &c.MQTT.Username)
	str("MQTT_PASSWORD", &c.MQTT.Password)
	str("MQTT_CLIENT_ID", &c.MQTT.ClientID)
	str("MQTT_BASE_TOPIC", &c.MQTT.BaseTopic)
	str("MQTT_DISCOVERY_PREFIX", &c.MQTT.DiscoveryPrefix)
	str("MQTT_DEVICE_NAME", &c.MQTT.DeviceName)
	str("HTTP_LISTEN", &c.HTTP.Listen)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup(EnvPrefix + "SERIAL_BAUD"); ok && v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%sSERIAL_BAUD", EnvPrefix)
		}
		c.Serial.Baud = baud
	}
	if v, ok := lookup(EnvPrefix + "UPDATE_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%sUPDATE_INTERVAL", EnvPrefix)
		}
		c.UpdateInterval = d
	}
	if v, ok := lookup(EnvPrefix + "WEBSOCKET_NO_SSL_VERIFY"); ok && v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%sWEBSOCKET_NO_SSL_VERIFY", EnvPrefix)
		}
		c.WebSocket.NoSSLVerify = insecure
	}

	return nil
}

// Validate rejects values the bridge cannot run with
func (c Config) Validate() error {
	if c.Serial.Port != "" && c.WebSocket.URL != "" {
		return errors.New("serial.port and websocket.url are mutually exclusive")
	}
	if c.Serial.Baud <= 0 {
		return errors.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if c.UpdateInterval <= 0 {
		return errors.Errorf("update_interval must be positive, got %s", c.UpdateInterval)
	}
	if len(c.VerticalVaneOptions) == 0 {
		return errors.New("vertical_vane_options must not be empty")
	}
	return nil
}
