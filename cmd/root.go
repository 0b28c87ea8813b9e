// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/aerostat/pkg/config"
)

var (
	// Config file and logging flags
	configPath string
	logLevel   string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// cfg is loaded before any command runs
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "aerostat",
	Short: "Daewoo air conditioner UART bridge",
	Long: `Aerostat - A bridge between Daewoo air conditioners and home automation.

Speaks the unit's 22-byte UART frame protocol, keeps a climate model in sync
with the unit and queues user changes into command frames. Includes tools for
logging, capturing and replaying the raw frame stream.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

Settings can also come from a YAML file (--config) and AEROSTAT_* environment
variables. Flags override both.

For WebSocket authentication, the password is read from the AEROSTAT_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", config.DefaultBaudRate, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// loadConfig reads the config file and lets explicitly set flags override it
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		loaded.Serial.Port = portName
		loaded.WebSocket.URL = ""
	}
	if flags.Changed("baud") {
		loaded.Serial.Baud = baudRate
	}
	if flags.Changed("url") {
		loaded.WebSocket.URL = wsURL
		loaded.Serial.Port = ""
	}
	if flags.Changed("username") {
		loaded.WebSocket.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		loaded.WebSocket.NoSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	setupLogging(cfg.LogLevel)
	return nil
}

func setupLogging(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.Debugf("Log level set to: %s", lvl)
}

// componentLogger returns the standard logger tagged with a component name
func componentLogger(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
