// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import "fmt"

// WarningKind classifies a field that decoded but carried an unexpected value
type WarningKind int

const (
	WarningUnknownPower WarningKind = iota
	WarningUnknownMode
	WarningUnknownFan
	WarningUnknownVane
	WarningTargetOutOfRange
	WarningCurrentOutOfRange
)

// String returns the kind name
func (k WarningKind) String() string {
	switch k {
	case WarningUnknownPower:
		return "UNKNOWN_POWER"
	case WarningUnknownMode:
		return "UNKNOWN_MODE"
	case WarningUnknownFan:
		return "UNKNOWN_FAN"
	case WarningUnknownVane:
		return "UNKNOWN_VANE"
	case WarningTargetOutOfRange:
		return "TARGET_OUT_OF_RANGE"
	case WarningCurrentOutOfRange:
		return "CURRENT_OUT_OF_RANGE"
	default:
		return "UNKNOWN"
	}
}

// FieldWarning describes one record field that could not be applied.
// Warnings never reject the frame; the remaining fields still apply.
type FieldWarning struct {
	Kind    WarningKind
	Field   string
	Raw     byte
	Message string
}

// NewFieldWarning creates a warning for the payload byte at offset
func NewFieldWarning(kind WarningKind, offset int, raw byte) FieldWarning {
	field := FieldName(offset)
	var msg string
	switch kind {
	case WarningTargetOutOfRange:
		msg = fmt.Sprintf("%s %d outside [%d, %d]", field, raw, MinTargetTemperature, MaxTargetTemperature)
	case WarningCurrentOutOfRange:
		msg = fmt.Sprintf("%s %d outside [%d, %d]", field, raw, MinCurrentTemperature, MaxCurrentTemperature)
	default:
		msg = fmt.Sprintf("unknown %s value 0x%02X", field, raw)
	}
	return FieldWarning{Kind: kind, Field: field, Raw: raw, Message: msg}
}

// Error implements the error interface
func (w FieldWarning) Error() string {
	return w.Message
}

// ValidateRecord reports every field of r that a reconciler would skip.
// The mode byte is only checked while power is on and the fan byte only
// while the quiet flag is clear, matching how the fields are consumed.
func ValidateRecord(r Record) []FieldWarning {
	var warnings []FieldWarning

	switch r.Power {
	case PowerOff:
	case PowerOn:
		if r.Mode > ModeCodeFanOnly {
			warnings = append(warnings, NewFieldWarning(WarningUnknownMode, OffsetMode, r.Mode))
		}
	default:
		warnings = append(warnings, NewFieldWarning(WarningUnknownPower, OffsetPower, r.Power))
	}

	if !r.Quiet() && r.Fan > FanCodeHigh {
		warnings = append(warnings, NewFieldWarning(WarningUnknownFan, OffsetFan, r.Fan))
	}

	if r.VerticalVane > VaneCodeStatic {
		warnings = append(warnings, NewFieldWarning(WarningUnknownVane, OffsetVerticalVane, r.VerticalVane))
	}

	if r.TargetTemperature < MinTargetTemperature || r.TargetTemperature > MaxTargetTemperature {
		warnings = append(warnings, NewFieldWarning(WarningTargetOutOfRange, OffsetTargetTemperature, r.TargetTemperature))
	}

	if r.CurrentTemperature < MinCurrentTemperature || r.CurrentTemperature > MaxCurrentTemperature {
		warnings = append(warnings, NewFieldWarning(WarningCurrentOutOfRange, OffsetCurrentTemperature, r.CurrentTemperature))
	}

	return warnings
}
