// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"strconv"
	"strings"
)

// Mode is the climate operating mode
type Mode int

const (
	ModeOff Mode = iota
	ModeAuto
	ModeCool
	ModeHeat
	ModeDry
	ModeFanOnly
)

var modeNames = []string{"OFF", "AUTO", "COOL", "HEAT", "DRY", "FAN_ONLY"}

// String returns the mode name
func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "UNKNOWN(" + strconv.Itoa(int(m)) + ")"
}

// Known reports whether m is one of the defined modes
func (m Mode) Known() bool {
	return m >= ModeOff && m <= ModeFanOnly
}

// ParseMode accepts a mode name (any case) or its integer value.
// Integers outside the defined range are returned as-is so callers can apply
// the "unknown mode" policy themselves.
func ParseMode(s string) (Mode, bool) {
	s = strings.TrimSpace(s)
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), true
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Mode(n), true
	}
	return 0, false
}

// FanMode is the fan speed
type FanMode int

const (
	FanAuto FanMode = iota
	FanLow
	FanMedium
	FanHigh
	FanQuiet
)

var fanNames = []string{"AUTO", "LOW", "MEDIUM", "HIGH", "QUIET"}

// String returns the fan mode name
func (f FanMode) String() string {
	if f >= 0 && int(f) < len(fanNames) {
		return fanNames[f]
	}
	return "UNKNOWN(" + strconv.Itoa(int(f)) + ")"
}

// Known reports whether f is one of the defined fan modes
func (f FanMode) Known() bool {
	return f >= FanAuto && f <= FanQuiet
}

// ParseFanMode accepts a fan mode name (any case) or its integer value
func ParseFanMode(s string) (FanMode, bool) {
	s = strings.TrimSpace(s)
	for i, name := range fanNames {
		if strings.EqualFold(s, name) {
			return FanMode(i), true
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return FanMode(n), true
	}
	return 0, false
}

// SwingMode is the combined swing state of both vane axes
type SwingMode int

const (
	SwingOff SwingMode = iota
	SwingVertical
	SwingHorizontal
	SwingBoth
)

var swingNames = []string{"OFF", "VERTICAL", "HORIZONTAL", "BOTH"}

// String returns the swing mode name
func (s SwingMode) String() string {
	if s >= 0 && int(s) < len(swingNames) {
		return swingNames[s]
	}
	return "UNKNOWN(" + strconv.Itoa(int(s)) + ")"
}

// ParseSwingMode accepts a swing mode name (any case) or its integer value
func ParseSwingMode(s string) (SwingMode, bool) {
	s = strings.TrimSpace(s)
	for i, name := range swingNames {
		if strings.EqualFold(s, name) {
			return SwingMode(i), true
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return SwingMode(n), true
	}
	return 0, false
}

// DeriveSwingMode combines the two vane axes into one swing mode
func DeriveSwingMode(verticalSwing, horizontalSwing bool) SwingMode {
	switch {
	case verticalSwing && horizontalSwing:
		return SwingBoth
	case verticalSwing:
		return SwingVertical
	case horizontalSwing:
		return SwingHorizontal
	default:
		return SwingOff
	}
}

// State is the published climate model
type State struct {
	Mode               Mode
	FanMode            FanMode
	CurrentTemperature int
	TargetTemperature  int
	VerticalVane       VanePosition
	VaneLabel          string
	HorizontalSwing    bool
	Display            bool
	UVLight            bool
}

// SwingMode derives the combined swing mode from the vane axes
func (s State) SwingMode() SwingMode {
	return DeriveSwingMode(s.VerticalVane == VaneSwing, s.HorizontalSwing)
}

// DefaultState returns the model a bridge starts with before the unit reports
func DefaultState() State {
	return State{
		Mode:               ModeOff,
		FanMode:            FanAuto,
		CurrentTemperature: 22,
		TargetTemperature:  24,
		VerticalVane:       VaneStatic,
		VaneLabel:          DefaultVaneLabels[VaneStatic],
		HorizontalSwing:    false,
		Display:            true,
		UVLight:            false,
	}
}

// Traits describes what the climate entity supports
type Traits struct {
	Modes              []Mode
	FanModes           []FanMode
	SwingModes         []SwingMode
	VisualMinimum      int
	VisualMaximum      int
	VisualStep         float64
	MinimumTarget      int
	MaximumTarget      int
	SupportsCurrentTmp bool
}
