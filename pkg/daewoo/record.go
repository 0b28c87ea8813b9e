// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Payload offsets of each record field
const (
	OffsetOperation          = 0
	OffsetPower              = 1
	OffsetReserved0          = 2
	OffsetVerticalVane       = 3
	OffsetFlags0             = 4
	OffsetMode               = 5
	OffsetFlags1             = 6
	OffsetFan                = 7
	OffsetTargetTemperature  = 8
	OffsetCurrentTemperature = 9
	OffsetReserved1          = 10
	OffsetChecksum           = 19
)

// Frame offsets
const (
	FrameOffsetSync     = 0
	FrameOffsetLength   = 1
	FrameOffsetPayload  = 2
	FrameOffsetChecksum = FrameLength - 1
)

// Record is the 20-byte state payload carried by every frame
type Record struct {
	Operation          byte
	Power              byte
	Reserved0          byte
	VerticalVane       byte
	Flags0             byte
	Mode               byte
	Flags1             byte
	Fan                byte
	TargetTemperature  byte
	CurrentTemperature byte
	Reserved1          [9]byte
	Checksum           byte
}

// layoutEntry binds one payload byte to the record field that holds it
type layoutEntry struct {
	name   string
	offset int
	field  func(r *Record) *byte
}

// recordLayout is the only place that knows where fields live in the payload.
// Both UnmarshalRecord and Record.Bytes walk it.
var recordLayout = buildRecordLayout()

func buildRecordLayout() []layoutEntry {
	layout := []layoutEntry{
		{"operation", OffsetOperation, func(r *Record) *byte { return &r.Operation }},
		{"power", OffsetPower, func(r *Record) *byte { return &r.Power }},
		{"reserved0", OffsetReserved0, func(r *Record) *byte { return &r.Reserved0 }},
		{"vertical_vane", OffsetVerticalVane, func(r *Record) *byte { return &r.VerticalVane }},
		{"flags0", OffsetFlags0, func(r *Record) *byte { return &r.Flags0 }},
		{"mode", OffsetMode, func(r *Record) *byte { return &r.Mode }},
		{"flags1", OffsetFlags1, func(r *Record) *byte { return &r.Flags1 }},
		{"fan", OffsetFan, func(r *Record) *byte { return &r.Fan }},
		{"target_temperature", OffsetTargetTemperature, func(r *Record) *byte { return &r.TargetTemperature }},
		{"current_temperature", OffsetCurrentTemperature, func(r *Record) *byte { return &r.CurrentTemperature }},
	}
	for i := 0; i < len(Record{}.Reserved1); i++ {
		i := i
		layout = append(layout, layoutEntry{
			name:   fmt.Sprintf("reserved1[%d]", i),
			offset: OffsetReserved1 + i,
			field:  func(r *Record) *byte { return &r.Reserved1[i] },
		})
	}
	layout = append(layout, layoutEntry{"checksum", OffsetChecksum, func(r *Record) *byte { return &r.Checksum }})

	if len(layout) != RecordLength {
		panic(fmt.Sprintf("daewoo: record layout covers %d bytes, want %d", len(layout), RecordLength))
	}
	return layout
}

// UnmarshalRecord unpacks a 20-byte payload
func UnmarshalRecord(payload []byte) (Record, error) {
	var r Record
	if len(payload) != RecordLength {
		return r, errors.Errorf("record payload must be %d bytes, got %d", RecordLength, len(payload))
	}
	for _, e := range recordLayout {
		*e.field(&r) = payload[e.offset]
	}
	return r, nil
}

// Bytes packs the record into its 20-byte wire form
func (r Record) Bytes() [RecordLength]byte {
	var out [RecordLength]byte
	for _, e := range recordLayout {
		out[e.offset] = *e.field(&r)
	}
	return out
}

// FieldName returns the layout name of the payload byte at offset
func FieldName(offset int) string {
	for _, e := range recordLayout {
		if e.offset == offset {
			return e.name
		}
	}
	return "unknown"
}

// HorizontalSwing reports the horizontal swing bit of flags0
func (r Record) HorizontalSwing() bool { return r.Flags0&FlagHorizontalSwing != 0 }

// Quiet reports the quiet bit of flags1
func (r Record) Quiet() bool { return r.Flags1&FlagQuiet != 0 }

// UVLight reports the UV light bit of flags1
func (r Record) UVLight() bool { return r.Flags1&FlagUVLight != 0 }

// Display reports the display bit of flags1
func (r Record) Display() bool { return r.Flags1&FlagDisplay != 0 }

// SetFlag sets or clears mask in *flags
func SetFlag(flags *byte, mask byte, on bool) {
	if on {
		*flags |= mask
	} else {
		*flags &^= mask
	}
}
