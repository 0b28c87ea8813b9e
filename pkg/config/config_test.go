// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aerostat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, 5*time.Second, cfg.UpdateInterval)
	assert.Equal(t, "homeassistant", cfg.MQTT.DiscoveryPrefix)
	assert.Len(t, cfg.VerticalVaneOptions, 7)
	assert.Equal(t, "Swing", cfg.VerticalVaneOptions[0])
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: /dev/ttyUSB0
update_interval: 2s
vertical_vane_options: [Oscillate, Top, Upper, Middle, Lower, Bottom, Fixed]
mqtt:
  broker: tcp://broker:1883
  base_topic: living_room_ac
http:
  listen: ":8080"
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.Baud, "unset fields keep their defaults")
	assert.Equal(t, 2*time.Second, cfg.UpdateInterval)
	assert.Equal(t, "Fixed", cfg.VerticalVaneOptions[6])
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "living_room_ac", cfg.MQTT.BaseTopic)
	assert.Equal(t, "aerostat", cfg.MQTT.ClientID)
	assert.Equal(t, ":8080", cfg.HTTP.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")

	_, err = Load(writeConfig(t, "serial: [unclosed"))
	assert.ErrorContains(t, err, "parsing config")

	_, err = Load(writeConfig(t, "update_interval: 0s\n"))
	assert.ErrorContains(t, err, "update_interval")

	_, err = Load(writeConfig(t, "serial:\n  port: /dev/ttyS0\nwebsocket:\n  url: wss://bridge/serial\n"))
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AEROSTAT_SERIAL_PORT":     "/dev/ttyAMA0",
		"AEROSTAT_SERIAL_BAUD":     "4800",
		"AEROSTAT_UPDATE_INTERVAL": "750ms",
		"AEROSTAT_MQTT_BROKER":     "tcp://mqtt:1883",
		"AEROSTAT_PASSWORD":        "hunter2",
		"AEROSTAT_LOG_LEVEL":       "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))

	assert.Equal(t, "/dev/ttyAMA0", cfg.Serial.Port)
	assert.Equal(t, 4800, cfg.Serial.Baud)
	assert.Equal(t, 750*time.Millisecond, cfg.UpdateInterval)
	assert.Equal(t, "tcp://mqtt:1883", cfg.MQTT.Broker)
	assert.Equal(t, "hunter2", cfg.WebSocket.Password)
	assert.Equal(t, "info", cfg.LogLevel, "empty values do not override")
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"AEROSTAT_SERIAL_BAUD", "fast"},
		{"AEROSTAT_UPDATE_INTERVAL", "soon"},
		{"AEROSTAT_WEBSOCKET_NO_SSL_VERIFY", "perhaps"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(func(k string) (string, bool) {
				if k == tt.key {
					return tt.value, true
				}
				return "", false
			})
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("AEROSTAT_HTTP_LISTEN", "127.0.0.1:9090")
	path := writeConfig(t, "http:\n  listen: \":8080\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Listen)
}
