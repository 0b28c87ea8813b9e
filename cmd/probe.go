// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

var (
	probeTimeout int
	probePoll    bool
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test connection by waiting for a valid status frame",
	Long: `Wait for a valid UART frame on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any valid
frame. It ignores bytes before the sync byte and rejected frames, and exits
on the first frame that passes every framing and checksum check.

Unless --poll=false is given, a keep-alive frame is sent once a second to
prompt the unit for a status frame.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
	probeCmd.Flags().BoolVar(&probePoll, "poll", true, "Send keep-alive frames while waiting")
}

func runProbe(cmd *cobra.Command, args []string) error {
	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Aerostat - Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for valid frame...\n\n")

	decoder := daewoo.NewDecoder()

	packetChan := make(chan *daewoo.Packet, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		buf := make([]byte, 128)
		rejected := 0
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}

			for i := 0; i < n; i++ {
				packet, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					rejected++
					continue
				}
				if packet != nil {
					if skipped := decoder.SkippedBytes(); skipped > 0 || rejected > 0 {
						fmt.Printf("(skipped %d bytes, rejected %d frames before sync)\n", skipped, rejected)
					}
					packetChan <- packet
					return
				}
			}
		}
	}()

	var pollC <-chan time.Time
	if probePoll {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		pollC = ticker.C
		if _, err := conn.Write(daewoo.KeepAliveFrame); err != nil {
			fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
			os.Exit(2)
		}
	}

	timeout := time.After(time.Duration(probeTimeout) * time.Second)
	for {
		select {
		case packet := <-packetChan:
			raw := packet.Raw()
			fmt.Printf("SUCCESS: Received valid frame\n")
			fmt.Printf("  Operation: %s (0x%02X)\n", daewoo.FormatOperation(packet.Operation()), packet.Operation())
			fmt.Printf("  Checksum: 0x%02X\n", packet.Checksum())
			fmt.Printf("  Raw: %s\n", daewoo.FormatHex(raw.Bytes()))
			fmt.Print(daewoo.FormatRecord(packet.Record()))
			os.Exit(0)

		case <-pollC:
			if _, err := conn.Write(daewoo.KeepAliveFrame); err != nil {
				fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
				os.Exit(2)
			}

		case err := <-errChan:
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			os.Exit(2)

		case <-timeout:
			fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", probeTimeout)
			os.Exit(1)
		}
	}
}
