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
	showAll       bool
	statsInterval int
	edPoll        bool
)

var (
	rejectedLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	anomalyLabel  = color.New(color.FgYellow, color.Bold).SprintFunc()
	syncLabel     = color.New(color.FgGreen, color.Bold).SprintFunc()
	okLabel       = color.New(color.FgGreen).SprintFunc()
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection",
	Short: "Detect and analyze malformed frames and field anomalies",
	Long: `Track frame errors, malformed data, and anomalous values with statistics.

This command validates each frame and detects:
  - Framing failures (length, sync byte, declared length)
  - Checksum mismatches
  - Unknown mode, fan, power or vane codes
  - Temperatures outside the unit's range

By default, only errors are displayed. Use --show-all to display valid frames too.

Decode errors before the first valid frame only count as skipped bytes, since
the stream may have been joined mid-frame. A statistics summary is printed
every --stats-interval seconds.`,
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just errors)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	errorDetectionCmd.Flags().BoolVar(&edPoll, "poll", true, "Send keep-alive frames every update interval")
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	log := componentLogger("error_detection")

	conn, connInfo, err := OpenConnection(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Aerostat - Error Detection Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All frames\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := daewoo.NewDecoder()
	stats := daewoo.NewStatistics()

	// Sync tracking - ignore decode errors until first valid frame
	synchronized := false

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	var pollC <-chan time.Time
	if edPoll {
		pollTicker := time.NewTicker(cfg.UpdateInterval)
		defer pollTicker.Stop()
		pollC = pollTicker.C
	}

	// Channel for non-blocking reads
	readBuf := make(chan []byte, 10)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if errors.Is(err, ErrConnectionClosed) {
					readErr <- err
					return
				}
				log.WithError(err).Warn("Read error")
				continue
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			readBuf <- data
		}
	}()

	for {
		select {
		case data := <-readBuf:
			for _, b := range data {
				packet, decodeErr := decoder.DecodeByte(b)
				stats.SetSkippedBytes(decoder.SkippedBytes())

				if decodeErr != nil {
					if synchronized {
						// We're synced, this is a real error
						stats.Update(nil, decodeErr, nil)
						printDecodeError(decodeErr)
					}
					continue
				}
				if packet == nil {
					continue
				}

				if !synchronized {
					synchronized = true
					if skipped := decoder.SkippedBytes(); skipped > 0 {
						fmt.Printf("%s Synchronized after skipping %d bytes\n\n", syncLabel("[SYNC]"), skipped)
					} else {
						fmt.Printf("%s Synchronized\n\n", syncLabel("[SYNC]"))
					}
				}

				warnings := daewoo.ValidateRecord(packet.Record())
				stats.Update(packet, nil, warnings)

				if len(warnings) > 0 {
					printFieldWarnings(packet, warnings)
				} else if showAll {
					fmt.Print(daewoo.FormatPacket(packet))
					fmt.Println()
				}
			}

		case <-pollC:
			if _, err := conn.Write(daewoo.KeepAliveFrame); err != nil {
				log.WithError(err).Warn("Keep-alive write failed")
			}

		case err := <-readErr:
			fmt.Println()
			fmt.Print(stats.String())
			log.WithError(err).Info("Connection closed")
			if errors.Is(err, ErrConnectionClosed) {
				return nil
			}
			return err

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}

// printDecodeError prints a rejected frame in highlighted format
func printDecodeError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] %s %v\n", timestamp, rejectedLabel("FRAME ERROR:"), err)
	fmt.Printf("  >>> FRAME REJECTED <<<\n\n")
}

// printFieldWarnings prints the anomalous fields of an otherwise valid frame
func printFieldWarnings(packet *daewoo.Packet, warnings []daewoo.FieldWarning) {
	timestamp := packet.Timestamp().Format("15:04:05.000")
	raw := packet.Raw()

	fmt.Printf("[%s] %s %s (0x%02X)\n", timestamp, anomalyLabel("FIELD WARNING:"),
		daewoo.FormatOperation(packet.Operation()), packet.Operation())
	fmt.Printf("  Checksum: %s\n", okLabel("OK"))

	for i, w := range warnings {
		fmt.Printf("  Issue %d: %s %s\n", i+1, anomalyLabel(w.Kind.String()), w.Message)
		fmt.Printf("    %s=0x%02X\n", w.Field, w.Raw)
	}

	fmt.Printf("  Raw: %s\n", daewoo.FormatHex(raw.Bytes()))
	fmt.Printf("  >>> FIELDS SKIPPED <<<\n\n")
}
