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
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure round-trip time of keep-alive polls",
	Long: `Send keep-alive frames and wait for the status frame the unit answers with.

Each ping writes one keep-alive frame and waits for the next valid frame.
Rejected frames in between are counted but do not end the wait.

This is useful for verifying:
  - The serial or WebSocket link is bidirectional
  - The unit is powered and answering polls
  - Link latency through a WebSocket bridge

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Aerostat - Ping\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per ping\n", pingTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	// One reader for the whole run; responses are matched in send order
	responseChan := make(chan *daewoo.Packet, 8)
	rejectChan := make(chan error, 8)
	errChan := make(chan error, 1)
	go func() {
		decoder := daewoo.NewDecoder()
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			for j := 0; j < n; j++ {
				packet, decodeErr := decoder.DecodeByte(buf[j])
				if decodeErr != nil {
					select {
					case rejectChan <- decodeErr:
					default:
					}
					continue
				}
				if packet != nil {
					responseChan <- packet
				}
			}
		}
	}()

	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		// Discard answers that arrived after the previous ping timed out
	drain:
		for {
			select {
			case <-responseChan:
			case <-rejectChan:
			default:
				break drain
			}
		}

		startTime := time.Now()
		if _, err := conn.Write(daewoo.KeepAliveFrame); err != nil {
			fmt.Printf("SEND FAILED: %v\n", err)
			failCount++
			continue
		}

		rejected := 0
		timeout := time.After(time.Duration(pingTimeout) * time.Second)
	wait:
		for {
			select {
			case packet := <-responseChan:
				rtt := time.Since(startTime)
				r := packet.Record()
				fmt.Printf("%s, target=%d°C current=%d°C, rtt=%v",
					daewoo.FormatOperation(packet.Operation()), r.TargetTemperature, r.CurrentTemperature,
					rtt.Round(time.Millisecond))
				if rejected > 0 {
					fmt.Printf(" (%d rejected)", rejected)
				}
				fmt.Println()
				successCount++
				break wait

			case <-rejectChan:
				rejected++

			case err := <-errChan:
				fmt.Printf("READ FAILED: %v\n", err)
				failCount += pingCount - i + 1
				i = pingCount
				break wait

			case <-timeout:
				fmt.Printf("TIMEOUT (no response in %ds)\n", pingTimeout)
				failCount++
				break wait
			}
		}

		// Small delay between pings
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
