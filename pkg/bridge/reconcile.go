// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"strings"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

var modeCodes = map[Mode]byte{
	ModeAuto:    daewoo.ModeCodeAuto,
	ModeCool:    daewoo.ModeCodeCool,
	ModeDry:     daewoo.ModeCodeDry,
	ModeHeat:    daewoo.ModeCodeHeat,
	ModeFanOnly: daewoo.ModeCodeFanOnly,
}

var fanCodes = map[FanMode]byte{
	FanAuto:   daewoo.FanCodeAuto,
	FanLow:    daewoo.FanCodeLow,
	FanMedium: daewoo.FanCodeMedium,
	FanHigh:   daewoo.FanCodeHigh,
}

func modeCode(m Mode) (byte, bool) {
	code, ok := modeCodes[m]
	return code, ok
}

func modeFromCode(code byte) (Mode, bool) {
	for m, c := range modeCodes {
		if c == code {
			return m, true
		}
	}
	return 0, false
}

func fanFromCode(code byte) (FanMode, bool) {
	for f, c := range fanCodes {
		if c == code {
			return f, true
		}
	}
	return 0, false
}

// Changes is a set of model fields touched by one reconciliation
type Changes uint16

const (
	ChangedMode Changes = 1 << iota
	ChangedFanMode
	ChangedVerticalVane
	ChangedHorizontalSwing
	ChangedDisplay
	ChangedUVLight
	ChangedTargetTemperature
	ChangedCurrentTemperature
)

var changeNames = []struct {
	flag Changes
	name string
}{
	{ChangedMode, "mode"},
	{ChangedFanMode, "fan_mode"},
	{ChangedVerticalVane, "vertical_vane"},
	{ChangedHorizontalSwing, "horizontal_swing"},
	{ChangedDisplay, "display"},
	{ChangedUVLight, "uv_light"},
	{ChangedTargetTemperature, "target_temperature"},
	{ChangedCurrentTemperature, "current_temperature"},
}

// Has reports whether every flag in f is set
func (c Changes) Has(f Changes) bool {
	return c&f == f
}

// Any reports whether anything changed
func (c Changes) Any() bool {
	return c != 0
}

// SwingModeChanged reports whether the derived swing mode may have moved
func (c Changes) SwingModeChanged() bool {
	return c&(ChangedVerticalVane|ChangedHorizontalSwing) != 0
}

// String lists the changed fields
func (c Changes) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for _, n := range changeNames {
		if c.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// Reconcile maps a device record onto the model.
//
// Fields are resolved independently. A field whose byte is unknown or out of
// range keeps its previous value and yields a warning, and never blocks the
// other fields of the same record.
func Reconcile(prev State, labels VaneLabels, r daewoo.Record) (State, Changes, []daewoo.FieldWarning) {
	next := prev
	var changes Changes
	var warnings []daewoo.FieldWarning

	// power and mode
	switch r.Power {
	case daewoo.PowerOff:
		next.Mode = ModeOff
	case daewoo.PowerOn:
		if m, ok := modeFromCode(r.Mode); ok {
			next.Mode = m
		} else {
			warnings = append(warnings, daewoo.NewFieldWarning(daewoo.WarningUnknownMode, daewoo.OffsetMode, r.Mode))
		}
	default:
		warnings = append(warnings, daewoo.NewFieldWarning(daewoo.WarningUnknownPower, daewoo.OffsetPower, r.Power))
	}
	if next.Mode != prev.Mode {
		changes |= ChangedMode
	}

	// quiet overrides the fan byte
	if r.Quiet() {
		next.FanMode = FanQuiet
	} else if f, ok := fanFromCode(r.Fan); ok {
		next.FanMode = f
	} else {
		warnings = append(warnings, daewoo.NewFieldWarning(daewoo.WarningUnknownFan, daewoo.OffsetFan, r.Fan))
	}
	if next.FanMode != prev.FanMode {
		changes |= ChangedFanMode
	}

	if v, ok := VanePositionFromCode(r.VerticalVane); ok {
		next.VerticalVane = v
		next.VaneLabel = labels.Label(v)
	} else {
		warnings = append(warnings, daewoo.NewFieldWarning(daewoo.WarningUnknownVane, daewoo.OffsetVerticalVane, r.VerticalVane))
	}
	if next.VerticalVane != prev.VerticalVane {
		changes |= ChangedVerticalVane
	}

	next.HorizontalSwing = r.HorizontalSwing()
	if next.HorizontalSwing != prev.HorizontalSwing {
		changes |= ChangedHorizontalSwing
	}

	next.Display = r.Display()
	if next.Display != prev.Display {
		changes |= ChangedDisplay
	}

	next.UVLight = r.UVLight()
	if next.UVLight != prev.UVLight {
		changes |= ChangedUVLight
	}

	if t := int(r.TargetTemperature); t >= daewoo.MinTargetTemperature && t <= daewoo.MaxTargetTemperature {
		next.TargetTemperature = t
	} else {
		warnings = append(warnings, daewoo.NewFieldWarning(daewoo.WarningTargetOutOfRange, daewoo.OffsetTargetTemperature, r.TargetTemperature))
	}
	if next.TargetTemperature != prev.TargetTemperature {
		changes |= ChangedTargetTemperature
	}

	if t := int(r.CurrentTemperature); t >= daewoo.MinCurrentTemperature && t <= daewoo.MaxCurrentTemperature {
		next.CurrentTemperature = t
	} else {
		warnings = append(warnings, daewoo.NewFieldWarning(daewoo.WarningCurrentOutOfRange, daewoo.OffsetCurrentTemperature, r.CurrentTemperature))
	}
	if next.CurrentTemperature != prev.CurrentTemperature {
		changes |= ChangedCurrentTemperature
	}

	return next, changes, warnings
}

// BuildCommand replays changes in order onto a copy of base and encodes the
// result. current is the in-memory model consulted by variants that rewrite
// a field from live state rather than from their own payload.
func BuildCommand(base daewoo.Record, current State, changes []Change) daewoo.Frame {
	working := base
	for _, c := range changes {
		c.apply(&working, current)
	}
	return daewoo.Encode(working)
}
