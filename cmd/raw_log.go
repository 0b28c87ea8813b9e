// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

var (
	rawLogCapture string
	rawLogPoll    bool
)

var (
	rxLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	txLabel    = color.New(color.FgCyan, color.Bold).SprintFunc()
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display raw frame log in human-readable format",
	Long: `Continuously decode and display UART frames as they arrive.

Each valid frame is printed with its timestamp, operation and decoded fields.
Rejected frames are printed in red with the reason.

With --poll a keep-alive frame is sent every update interval so the unit
keeps answering with status frames. With --capture all traffic is appended to
a CBOR capture file that the replay command can read back.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().StringVar(&rawLogCapture, "capture", "", "Append traffic to a CBOR capture file")
	rawLogCmd.Flags().BoolVar(&rawLogPoll, "poll", false, "Send keep-alive frames every update interval")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	log := componentLogger("raw_log")

	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection(cfg)
	if err != nil {
		return err
	}
	conn, err = withCapture(conn, rawLogCapture)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Aerostat - Raw Frame Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	if rawLogCapture != "" {
		fmt.Printf("Capture: %s\n", rawLogCapture)
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	if rawLogPoll {
		go func() {
			ticker := time.NewTicker(cfg.UpdateInterval)
			defer ticker.Stop()
			for range ticker.C {
				if _, err := conn.Write(daewoo.KeepAliveFrame); err != nil {
					log.WithError(err).Warn("Keep-alive write failed")
					return
				}
				fmt.Printf("[%s] %s %s\n\n", time.Now().Format("15:04:05.000"), txLabel("TX"), daewoo.FormatHex(daewoo.KeepAliveFrame))
			}
		}()
	}

	decoder := daewoo.NewDecoder()
	buf := make([]byte, 128)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			// For WebSocket connections, a read error usually means
			// the connection is permanently closed - exit gracefully
			if errors.Is(err, ErrConnectionClosed) {
				log.WithError(err).Info("Connection closed")
				return nil
			}
			log.WithError(err).Warn("Read error")
			continue
		}

		for i := 0; i < n; i++ {
			packet, err := decoder.DecodeByte(buf[i])
			if err != nil {
				fmt.Printf("[%s] %s %v\n\n", time.Now().Format("15:04:05.000"), errorLabel("ERROR"), err)
				continue
			}
			if packet != nil {
				printPacket(packet)
			}
		}
	}
}

// printPacket prints one decoded frame
func printPacket(p *daewoo.Packet) {
	raw := p.Raw()
	fmt.Printf("%s %s", rxLabel("RX"), daewoo.FormatPacket(p))
	fmt.Printf("  Raw: %s\n\n", daewoo.FormatHex(raw.Bytes()))
}
