// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"math"
	"strconv"
	"strings"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// Property names accepted by ParseChange
const (
	PropMode              = "mode"
	PropTargetTemperature = "target_temperature"
	PropFanMode           = "fan_mode"
	PropDisplay           = "display_on"
	PropUVLight           = "uv_light_on"
	PropHorizontalSwing   = "horizontal_swing_on"
	PropSwingMode         = "swing_mode"
	PropVerticalVane      = "vertical_vane"
)

// Change is one queued user edit. Each implementation knows how to replay
// itself onto a working record, given the in-memory model at replay time.
type Change interface {
	Property() string
	Value() string
	apply(r *daewoo.Record, current State)
}

// ModeChange requests a climate mode. An invalid change replays the current
// in-memory mode.
type ModeChange struct {
	Mode  Mode
	Valid bool
}

func (c ModeChange) Property() string { return PropMode }

func (c ModeChange) Value() string {
	if !c.Valid {
		return "invalid"
	}
	return c.Mode.String()
}

func (c ModeChange) apply(r *daewoo.Record, current State) {
	mode := c.Mode
	if !c.Valid {
		mode = current.Mode
	}
	if mode == ModeOff {
		r.Power = daewoo.PowerOff
		return
	}
	r.Power = daewoo.PowerOn
	if code, ok := modeCode(mode); ok {
		r.Mode = code
	}
}

// TargetTemperatureChange requests a setpoint in °C. The value is rounded and
// clamped when replayed. An invalid change replays the current setpoint.
type TargetTemperatureChange struct {
	Temperature float64
	Valid       bool
}

func (c TargetTemperatureChange) Property() string { return PropTargetTemperature }

func (c TargetTemperatureChange) Value() string {
	if !c.Valid {
		return "invalid"
	}
	return strconv.FormatFloat(c.Temperature, 'f', -1, 64)
}

func (c TargetTemperatureChange) apply(r *daewoo.Record, current State) {
	t := c.Temperature
	if !c.Valid || math.IsNaN(t) || math.IsInf(t, 0) {
		t = float64(current.TargetTemperature)
	}
	r.TargetTemperature = byte(ClampTarget(t))
}

// FanModeChange requests a fan speed. An invalid change replays the current
// in-memory fan mode.
type FanModeChange struct {
	Fan   FanMode
	Valid bool
}

func (c FanModeChange) Property() string { return PropFanMode }

func (c FanModeChange) Value() string {
	if !c.Valid {
		return "invalid"
	}
	return c.Fan.String()
}

func (c FanModeChange) apply(r *daewoo.Record, current State) {
	fan := c.Fan
	if !c.Valid {
		fan = current.FanMode
	}
	switch fan {
	case FanQuiet:
		r.Fan = daewoo.FanCodeAuto
		daewoo.SetFlag(&r.Flags1, daewoo.FlagQuiet, true)
	case FanAuto, FanLow, FanMedium, FanHigh:
		r.Fan = fanCodes[fan]
		daewoo.SetFlag(&r.Flags1, daewoo.FlagQuiet, false)
	}
}

// DisplayChange switches the unit display
type DisplayChange struct {
	On bool
}

func (c DisplayChange) Property() string { return PropDisplay }
func (c DisplayChange) Value() string    { return strconv.FormatBool(c.On) }

func (c DisplayChange) apply(r *daewoo.Record, _ State) {
	daewoo.SetFlag(&r.Flags1, daewoo.FlagDisplay, c.On)
}

// UVLightChange switches the UV lamp
type UVLightChange struct {
	On bool
}

func (c UVLightChange) Property() string { return PropUVLight }
func (c UVLightChange) Value() string    { return strconv.FormatBool(c.On) }

func (c UVLightChange) apply(r *daewoo.Record, _ State) {
	daewoo.SetFlag(&r.Flags1, daewoo.FlagUVLight, c.On)
}

// HorizontalSwingChange switches horizontal swing. The vane byte is rewritten
// from the in-memory position so both axes leave in the same frame.
type HorizontalSwingChange struct {
	On bool
}

func (c HorizontalSwingChange) Property() string { return PropHorizontalSwing }
func (c HorizontalSwingChange) Value() string    { return strconv.FormatBool(c.On) }

func (c HorizontalSwingChange) apply(r *daewoo.Record, current State) {
	daewoo.SetFlag(&r.Flags0, daewoo.FlagHorizontalSwing, c.On)
	r.VerticalVane = current.VerticalVane.Code()
}

// SwingModeChange records a combined swing request. The requested mode is
// informational: both axes are replayed from the in-memory model, which the
// caller has already updated.
type SwingModeChange struct {
	Mode SwingMode
}

func (c SwingModeChange) Property() string { return PropSwingMode }
func (c SwingModeChange) Value() string    { return c.Mode.String() }

func (c SwingModeChange) apply(r *daewoo.Record, current State) {
	daewoo.SetFlag(&r.Flags0, daewoo.FlagHorizontalSwing, current.HorizontalSwing)
	r.VerticalVane = current.VerticalVane.Code()
}

// VerticalVaneChange records a vane selection by label. The byte is replayed
// from the in-memory position.
type VerticalVaneChange struct {
	Label string
}

func (c VerticalVaneChange) Property() string { return PropVerticalVane }
func (c VerticalVaneChange) Value() string    { return c.Label }

func (c VerticalVaneChange) apply(r *daewoo.Record, current State) {
	r.VerticalVane = current.VerticalVane.Code()
}

// UnknownChange is an edit to a property the device does not have.
// It is kept in the queue and ignored on replay.
type UnknownChange struct {
	Name string
	Raw  string
}

func (c UnknownChange) Property() string            { return c.Name }
func (c UnknownChange) Value() string               { return c.Raw }
func (c UnknownChange) apply(*daewoo.Record, State) {}

// ParseChange builds a typed change from a property name and string value.
// It never fails: values that do not parse produce an invalid variant, which
// falls back to the in-memory value when replayed.
func ParseChange(property, value string) Change {
	switch property {
	case PropMode:
		m, ok := ParseMode(value)
		return ModeChange{Mode: m, Valid: ok}
	case PropTargetTemperature:
		t, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		ok := err == nil && !math.IsNaN(t) && !math.IsInf(t, 0)
		return TargetTemperatureChange{Temperature: t, Valid: ok}
	case PropFanMode:
		f, ok := ParseFanMode(value)
		return FanModeChange{Fan: f, Valid: ok}
	case PropDisplay:
		return DisplayChange{On: ParseBoolToken(value)}
	case PropUVLight:
		return UVLightChange{On: ParseBoolToken(value)}
	case PropHorizontalSwing:
		return HorizontalSwingChange{On: ParseBoolToken(value)}
	case PropSwingMode:
		s, _ := ParseSwingMode(value)
		return SwingModeChange{Mode: s}
	case PropVerticalVane:
		return VerticalVaneChange{Label: value}
	default:
		return UnknownChange{Name: property, Raw: value}
	}
}

// ParseBoolToken treats "true", "1" and "on" as true and anything else as false
func ParseBoolToken(s string) bool {
	return s == "true" || s == "1" || s == "on"
}

// ClampTarget rounds a setpoint and limits it to the unit's accepted range.
// Clamping happens before the integer conversion so huge values saturate.
func ClampTarget(t float64) int {
	t = math.Round(t)
	t = math.Max(t, daewoo.MinTargetTemperature)
	t = math.Min(t, daewoo.MaxTargetTemperature)
	return int(t)
}
