// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

var (
	sendMode            string
	sendFan             string
	sendSwing           string
	sendTarget          float64
	sendDisplay         bool
	sendUVLight         bool
	sendHorizontalSwing bool
	sendVane            string
	sendTimeout         int
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a single command frame to the unit",
	Long: `Read the unit's current state, apply the requested changes and send one
command frame.

The command waits for a status frame first so that fields that are not
changed keep the unit's own values. After sending, it waits for the next
status frame and prints the reconciled state.

Example:
  aerostat send --port /dev/ttyUSB0 --mode cool --target 22 --fan low`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendMode, "mode", "", "Mode (off, auto, cool, heat, dry, fan_only)")
	sendCmd.Flags().StringVar(&sendFan, "fan", "", "Fan mode (auto, low, medium, high, quiet)")
	sendCmd.Flags().StringVar(&sendSwing, "swing", "", "Swing mode (off, vertical, horizontal, both)")
	sendCmd.Flags().Float64Var(&sendTarget, "target", 0, "Target temperature in °C")
	sendCmd.Flags().BoolVar(&sendDisplay, "display", true, "Display on or off")
	sendCmd.Flags().BoolVar(&sendUVLight, "uv-light", false, "UV light on or off")
	sendCmd.Flags().BoolVar(&sendHorizontalSwing, "horizontal-swing", false, "Horizontal swing on or off")
	sendCmd.Flags().StringVar(&sendVane, "vane", "", "Vertical vane label")
	sendCmd.Flags().IntVar(&sendTimeout, "timeout", 10, "Seconds to wait for each status frame")
}

func runSend(cmd *cobra.Command, args []string) error {
	call, err := sendCall(cmd)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Aerostat - Send\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	b := newBridge()
	vane := bridge.NewVaneSelect(b, nil)
	t := bridge.NewStreamTransport(conn)

	received := make(chan struct{}, 1)
	b.OnFrame(func(dir daewoo.Direction, _ []byte) {
		if dir != daewoo.DirectionRX {
			return
		}
		select {
		case received <- struct{}{}:
		default:
		}
	})

	timeout := time.Duration(sendTimeout) * time.Second
	if err := waitForStatus(cmd.Context(), b, t, received, timeout, true); err != nil {
		return err
	}
	fmt.Printf("Current state:\n%s\n", formatState(b.State()))

	b.Control(call)
	flags := cmd.Flags()
	if flags.Changed("display") {
		bridge.NewSwitch(b, bridge.SwitchDisplay).Write(sendDisplay)
	}
	if flags.Changed("uv-light") {
		bridge.NewSwitch(b, bridge.SwitchUVLight).Write(sendUVLight)
	}
	if flags.Changed("horizontal-swing") {
		bridge.NewSwitch(b, bridge.SwitchHorizontalSwing).Write(sendHorizontalSwing)
	}
	if sendVane != "" {
		vane.Select(sendVane)
	}

	if b.QueueLen() == 0 {
		fmt.Println("Nothing to send")
		return nil
	}

	// Drop the status frame that already arrived so the wait below sees
	// the unit's answer to the command
	select {
	case <-received:
	default:
	}

	frame := b.NextFrame()
	if _, err := t.Write(frame); err != nil {
		return errors.Wrap(err, "failed to send command frame")
	}
	fmt.Printf("Sent: %s\n\n", daewoo.FormatHex(frame))

	if err := waitForStatus(cmd.Context(), b, t, received, timeout, false); err != nil {
		return err
	}
	fmt.Printf("Reported state:\n%s", formatState(b.State()))
	return nil
}

// sendCall builds the climate request from the command flags
func sendCall(cmd *cobra.Command) (bridge.Call, error) {
	var call bridge.Call

	if sendMode != "" {
		m, ok := bridge.ParseMode(sendMode)
		if !ok || !m.Known() {
			return call, errors.Errorf("unknown mode %q", sendMode)
		}
		call = call.SetMode(m)
	}
	if sendFan != "" {
		f, ok := bridge.ParseFanMode(sendFan)
		if !ok || !f.Known() {
			return call, errors.Errorf("unknown fan mode %q", sendFan)
		}
		call = call.SetFanMode(f)
	}
	if sendSwing != "" {
		s, ok := bridge.ParseSwingMode(sendSwing)
		if !ok || s < bridge.SwingOff || s > bridge.SwingBoth {
			return call, errors.Errorf("unknown swing mode %q", sendSwing)
		}
		call = call.SetSwingMode(s)
	}
	if cmd.Flags().Changed("target") {
		call = call.SetTargetTemperature(sendTarget)
	}
	return call, nil
}

// waitForStatus polls the link until a status frame has been applied. With
// poll set, a keep-alive frame is sent every second to prompt the unit.
func waitForStatus(ctx context.Context, b *bridge.Bridge, t *bridge.StreamTransport, received <-chan struct{}, timeout time.Duration, poll bool) error {
	pollTicker := time.NewTicker(50 * time.Millisecond)
	defer pollTicker.Stop()
	keepAlive := time.NewTicker(time.Second)
	defer keepAlive.Stop()
	deadline := time.After(timeout)

	if poll {
		if err := b.Update(t); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-received:
			return nil
		case <-pollTicker.C:
			if err := b.Poll(t); err != nil {
				return err
			}
		case <-keepAlive.C:
			if !poll {
				continue
			}
			if _, err := t.Write(daewoo.KeepAliveFrame); err != nil {
				return errors.Wrap(err, "failed to send keep-alive")
			}
		case <-deadline:
			return errors.Errorf("no status frame within %s", timeout)
		}
	}
}

// formatState renders the climate model for terminal output
func formatState(s bridge.State) string {
	return fmt.Sprintf("  Mode: %s  Fan: %s  Swing: %s\n"+
		"  Target: %d°C  Current: %d°C\n"+
		"  Vane: %s  H-Swing: %s  Display: %s  UV: %s\n",
		s.Mode, s.FanMode, s.SwingMode(),
		s.TargetTemperature, s.CurrentTemperature,
		s.VaneLabel, onOffLabel(s.HorizontalSwing), onOffLabel(s.Display), onOffLabel(s.UVLight))
}
