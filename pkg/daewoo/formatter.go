// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import (
	"fmt"
	"strings"
)

// FormatPacket formats a packet into a human-readable string
func FormatPacket(p *Packet) string {
	timestamp := p.timestamp.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %s (0x%02X) sum=0x%02X\n", timestamp, FormatOperation(p.Operation()), p.Operation(), p.Checksum())
	result += FormatRecord(p.record)
	return result
}

// FormatRecord formats the decoded fields of a record
func FormatRecord(r Record) string {
	var sb strings.Builder

	fan := FormatFan(r.Fan)
	if r.Quiet() {
		fan = "QUIET"
	}

	fmt.Fprintf(&sb, "  Power: %s  Mode: %s (0x%02X)  Fan: %s (0x%02X)\n",
		FormatPower(r.Power), FormatMode(r.Mode), r.Mode, fan, r.Fan)
	fmt.Fprintf(&sb, "  Target: %d°C  Current: %d°C\n", r.TargetTemperature, r.CurrentTemperature)
	fmt.Fprintf(&sb, "  Vane: %s (0x%02X)  H-Swing: %s  Display: %s  UV: %s\n",
		FormatVane(r.VerticalVane), r.VerticalVane, onOff(r.HorizontalSwing()), onOff(r.Display()), onOff(r.UVLight()))

	for _, w := range ValidateRecord(r) {
		fmt.Fprintf(&sb, "  Warning: %s\n", w.Message)
	}

	return sb.String()
}

// FormatOperation returns the name of an operation code
func FormatOperation(op byte) string {
	switch op {
	case OpRead:
		return "STATUS"
	case OpWrite:
		return "COMMAND"
	default:
		return "UNKNOWN"
	}
}

// FormatPower returns the name of a power code
func FormatPower(code byte) string {
	switch code {
	case PowerOff:
		return "OFF"
	case PowerOn:
		return "ON"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", code)
	}
}

// FormatMode returns the name of a mode code
func FormatMode(code byte) string {
	switch code {
	case ModeCodeAuto:
		return "AUTO"
	case ModeCodeCool:
		return "COOL"
	case ModeCodeDry:
		return "DRY"
	case ModeCodeHeat:
		return "HEAT"
	case ModeCodeFanOnly:
		return "FAN_ONLY"
	default:
		return "UNKNOWN"
	}
}

// FormatFan returns the name of a fan code
func FormatFan(code byte) string {
	switch code {
	case FanCodeAuto:
		return "AUTO"
	case FanCodeLow:
		return "LOW"
	case FanCodeMedium:
		return "MEDIUM"
	case FanCodeHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// FormatVane returns the name of a vertical vane code
func FormatVane(code byte) string {
	switch code {
	case VaneCodeSwing:
		return "SWING"
	case VaneCodeDown:
		return "DOWN"
	case VaneCodeMediumDown:
		return "MEDIUM_DOWN"
	case VaneCodeMedium:
		return "MEDIUM"
	case VaneCodeUpMedium:
		return "UP_MEDIUM"
	case VaneCodeUp:
		return "UP"
	case VaneCodeStatic:
		return "STATIC"
	default:
		return "UNKNOWN"
	}
}

// FormatHex formats bytes as space separated hex, the way frames are logged
func FormatHex(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
