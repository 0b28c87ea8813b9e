// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hass

import (
	"strings"

	"github.com/Thermoquad/aerostat/pkg/bridge"
)

// StatePayload is published retained on the state topic. Enum values use
// Home Assistant's lower-case names.
type StatePayload struct {
	Mode               string `json:"mode"`
	FanMode            string `json:"fan_mode"`
	SwingMode          string `json:"swing_mode"`
	CurrentTemperature int    `json:"current_temperature"`
	TargetTemperature  int    `json:"target_temperature"`
	VerticalVane       string `json:"vertical_vane"`
	HorizontalSwing    bool   `json:"horizontal_swing_on"`
	Display            bool   `json:"display_on"`
	UVLight            bool   `json:"uv_light_on"`
}

// NewStatePayload converts a model snapshot
func NewStatePayload(s bridge.State) StatePayload {
	return StatePayload{
		Mode:               haName(s.Mode.String()),
		FanMode:            haName(s.FanMode.String()),
		SwingMode:          haName(s.SwingMode().String()),
		CurrentTemperature: s.CurrentTemperature,
		TargetTemperature:  s.TargetTemperature,
		VerticalVane:       s.VaneLabel,
		HorizontalSwing:    s.HorizontalSwing,
		Display:            s.Display,
		UVLight:            s.UVLight,
	}
}

func haName(name string) string {
	return strings.ToLower(name)
}

func modeNames(modes []bridge.Mode) []string {
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		out = append(out, haName(m.String()))
	}
	return out
}

func fanModeNames(modes []bridge.FanMode) []string {
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		out = append(out, haName(m.String()))
	}
	return out
}

func swingModeNames(modes []bridge.SwingMode) []string {
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		out = append(out, haName(m.String()))
	}
	return out
}
