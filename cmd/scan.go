// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

var scanTimeout int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find serial ports with a unit attached",
	Long: `Probe every serial port on the system for a Daewoo unit.

Each port is opened at the configured baud rate and sent a keep-alive frame.
A port is reported as a match when a valid frame arrives before the
per-port timeout.

Example:
  aerostat scan --baud 9600 --timeout 3

Exit codes:
  0 - At least one unit found
  1 - No unit found
  2 - Ports could not be listed`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 3, "Timeout in seconds per port")
}

func runScan(cmd *cobra.Command, args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list serial ports: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Aerostat - Port Scan\n")
	fmt.Printf("Baud: %d\n", cfg.Serial.Baud)
	fmt.Printf("Timeout: %d seconds per port\n\n", scanTimeout)

	if len(ports) == 0 {
		fmt.Printf("No serial ports found\n")
		os.Exit(1)
	}

	found := make([]string, 0)
	for _, name := range ports {
		fmt.Printf("%s: ", name)
		record, err := scanPort(name, cfg.Serial.Baud, time.Duration(scanTimeout)*time.Second)
		if err != nil {
			fmt.Printf("%v\n", err)
			continue
		}
		found = append(found, name)
		fmt.Printf("FOUND (power %s, mode %s, target %d°C)\n",
			daewoo.FormatPower(record.Power), daewoo.FormatMode(record.Mode), record.TargetTemperature)
	}

	fmt.Printf("\n--- Scan summary ---\n")
	fmt.Printf("Ports scanned: %d\n", len(ports))
	fmt.Printf("Units found: %d\n", len(found))
	for _, name := range found {
		fmt.Printf("  %s\n", name)
	}

	if len(found) == 0 {
		os.Exit(1)
	}
	return nil
}

// scanPort polls one port and returns the first valid record it answers with
func scanPort(name string, baud int, timeout time.Duration) (daewoo.Record, error) {
	conn, err := OpenSerialConnection(name, baud)
	if err != nil {
		return daewoo.Record{}, err
	}
	defer conn.Close()

	// Short reads so the deadline below is checked between chunks
	if sc, ok := conn.(*SerialConnection); ok {
		if err := sc.port.SetReadTimeout(100 * time.Millisecond); err != nil {
			return daewoo.Record{}, err
		}
	}

	if _, err := conn.Write(daewoo.KeepAliveFrame); err != nil {
		return daewoo.Record{}, err
	}

	decoder := daewoo.NewDecoder()
	buf := make([]byte, 128)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		n, err := conn.Read(buf)
		if err != nil {
			return daewoo.Record{}, err
		}
		for i := 0; i < n; i++ {
			packet, decodeErr := decoder.DecodeByte(buf[i])
			if decodeErr != nil || packet == nil {
				continue
			}
			return packet.Record(), nil
		}
	}

	return daewoo.Record{}, errors.Errorf("no response in %s", timeout)
}
