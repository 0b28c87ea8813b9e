// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package daewoo implements the UART frame protocol spoken by Daewoo split
// air conditioners.
//
// Every message is a fixed 22-byte frame: a sync byte, a declared payload
// length, a 20-byte state payload and an additive checksum. The byte meanings
// were reverse engineered from a working unit; the numeric mappings in this
// package must be kept verbatim to stay wire compatible.
package daewoo

// Framing
const (
	SyncByte      = 0xAA
	PayloadLength = 0x14 // declared length byte, always 20
	FrameLength   = 22
	RecordLength  = 20
)

// Operation codes (payload byte 0)
const (
	OpRead  = 0x01
	OpWrite = 0x02
)

// Power byte values
const (
	PowerOff = 0x00
	PowerOn  = 0x01
)

// Mode byte values (only meaningful while PowerOn)
const (
	ModeCodeAuto    = 0x00
	ModeCodeCool    = 0x01
	ModeCodeDry     = 0x02
	ModeCodeHeat    = 0x03
	ModeCodeFanOnly = 0x04
)

// Fan byte values. Quiet is not a fan code, see FlagQuiet.
const (
	FanCodeAuto   = 0x00
	FanCodeLow    = 0x01
	FanCodeMedium = 0x02
	FanCodeHigh   = 0x03
)

// Vertical vane byte values. The device counts from the bottom up, which is
// the reverse of the display order used by the climate model.
const (
	VaneCodeSwing      = 0x00
	VaneCodeDown       = 0x01
	VaneCodeMediumDown = 0x02
	VaneCodeMedium     = 0x03
	VaneCodeUpMedium   = 0x04
	VaneCodeUp         = 0x05
	VaneCodeStatic     = 0x06
)

// Flags0 bits
const (
	FlagHorizontalSwing = 0x02
)

// Flags1 bits
const (
	FlagQuiet   = 0x01
	FlagUVLight = 0x02
	FlagDisplay = 0x10
)

// Temperature limits in whole degrees Celsius
const (
	MinTargetTemperature  = 16
	MaxTargetTemperature  = 32
	MinCurrentTemperature = 10
	MaxCurrentTemperature = 40
)

// KeepAliveFrame is the short poll frame sent when there is nothing to write.
// The unit answers it with a full status frame.
var KeepAliveFrame = []byte{SyncByte, 0x02, OpRead, 0xAD}
