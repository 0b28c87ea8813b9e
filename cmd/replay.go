// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

var replayRealtime bool

var replayCmd = &cobra.Command{
	Use:   "replay <capture.cbor>",
	Short: "Feed a capture file through the bridge",
	Long: `Replay traffic recorded with raw_log --capture.

Received chunks are fed through the stream decoder and reconciler exactly as
a live link would deliver them. Each change to the climate model is printed
along with the frames that were sent. A statistics summary is printed at the
end.

No connection is opened.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayRealtime, "realtime", false, "Sleep between records to match the capture timing")
}

// replayTransport hands captured bytes to the bridge
type replayTransport struct {
	buf []byte
}

func (r *replayTransport) Available() int { return len(r.buf) }

func (r *replayTransport) ReadByte() (byte, error) {
	if len(r.buf) == 0 {
		return 0, bridge.ErrNoData
	}
	c := r.buf[0]
	r.buf = r.buf[1:]
	return c, nil
}

func (r *replayTransport) Write(p []byte) (int, error) {
	return len(p), nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrapf(err, "failed to open capture %s", args[0])
	}
	defer f.Close()

	b := newBridge()
	b.OnStateChange(func(s bridge.State) {
		fmt.Printf("State:\n%s\n", formatState(s))
	})

	fmt.Printf("Aerostat - Replay\n")
	fmt.Printf("Capture: %s\n\n", args[0])

	reader := daewoo.NewCaptureReader(f)
	t := &replayTransport{}
	var last time.Time
	records := 0

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		records++

		ts := rec.Time()
		if replayRealtime && !last.IsZero() && ts.After(last) {
			time.Sleep(ts.Sub(last))
		}
		last = ts

		if rec.Direction == daewoo.DirectionTX {
			fmt.Printf("[%s] %s %s\n\n", ts.Format("15:04:05.000"), txLabel("TX"), daewoo.FormatHex(rec.Data))
			continue
		}

		fmt.Printf("[%s] %s %s\n", ts.Format("15:04:05.000"), rxLabel("RX"), daewoo.FormatHex(rec.Data))
		t.buf = append(t.buf, rec.Data...)
		if err := b.Poll(t); err != nil {
			return err
		}
	}

	stats := b.Statistics()
	fmt.Printf("\n%d records replayed\n", records)
	fmt.Print(stats.String())
	return nil
}
