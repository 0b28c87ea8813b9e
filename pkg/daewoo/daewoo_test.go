// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import (
	"errors"
	"strings"
	"testing"
)

// ============================================================
// Test Helpers
// ============================================================

// statusRecord returns a plausible status record: cooling at 24°C, fan medium
func statusRecord() Record {
	return Record{
		Operation:          OpRead,
		Power:              PowerOn,
		VerticalVane:       VaneCodeStatic,
		Mode:               ModeCodeCool,
		Flags1:             FlagDisplay,
		Fan:                FanCodeMedium,
		TargetTemperature:  24,
		CurrentTemperature: 26,
		Reserved1:          [9]byte{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}
}

// buildStatusFrame builds a valid inbound frame around r, keeping r.Operation
func buildStatusFrame(r Record) []byte {
	frame := make([]byte, FrameLength)
	frame[0] = SyncByte
	frame[1] = PayloadLength
	payload := r.Bytes()
	copy(frame[2:], payload[:])
	frame[FrameOffsetChecksum] = Checksum(frame[:FrameOffsetChecksum])
	return frame
}

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if sum := Checksum(nil); sum != 0 {
		t.Errorf("Checksum of empty data should be 0, got 0x%02X", sum)
	}
}

func TestChecksum_Wraps(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{"keep-alive prefix", []byte{0xAA, 0x02, 0x01}, 0xAD},
		{"overflow", []byte{0xFF, 0x02}, 0x01},
		{"exact 256", []byte{0x80, 0x80}, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sum := Checksum(tt.data); sum != tt.expected {
				t.Errorf("expected 0x%02X, got 0x%02X", tt.expected, sum)
			}
		})
	}
}

func TestKeepAliveFrame(t *testing.T) {
	if len(KeepAliveFrame) != 4 {
		t.Fatalf("keep-alive frame should be 4 bytes, got %d", len(KeepAliveFrame))
	}
	if KeepAliveFrame[3] != Checksum(KeepAliveFrame[:3]) {
		t.Errorf("keep-alive checksum should be 0x%02X, got 0x%02X", Checksum(KeepAliveFrame[:3]), KeepAliveFrame[3])
	}
}

// ============================================================
// Record Layout Tests
// ============================================================

func TestRecordLayout_CoversEveryOffset(t *testing.T) {
	seen := make(map[int]bool)
	for _, e := range recordLayout {
		if seen[e.offset] {
			t.Errorf("offset %d mapped twice", e.offset)
		}
		seen[e.offset] = true
	}
	for i := 0; i < RecordLength; i++ {
		if !seen[i] {
			t.Errorf("offset %d not mapped", i)
		}
	}
}

func TestRecord_BytesRoundTrip(t *testing.T) {
	var payload [RecordLength]byte
	for i := range payload {
		payload[i] = byte(0x10 + i)
	}

	r, err := UnmarshalRecord(payload[:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.VerticalVane != 0x13 || r.Mode != 0x15 || r.TargetTemperature != 0x18 || r.Reserved1[8] != 0x22 || r.Checksum != 0x23 {
		t.Errorf("fields unpacked at wrong offsets: %+v", r)
	}
	if got := r.Bytes(); got != payload {
		t.Errorf("Bytes() = % X, want % X", got, payload)
	}
}

func TestUnmarshalRecord_WrongLength(t *testing.T) {
	if _, err := UnmarshalRecord(make([]byte, 19)); err == nil {
		t.Error("expected error for short payload")
	}
}

func TestRecord_Flags(t *testing.T) {
	r := Record{Flags0: FlagHorizontalSwing, Flags1: FlagQuiet | FlagDisplay}
	if !r.HorizontalSwing() || !r.Quiet() || !r.Display() || r.UVLight() {
		t.Errorf("flag accessors wrong for %+v", r)
	}

	SetFlag(&r.Flags1, FlagUVLight, true)
	SetFlag(&r.Flags1, FlagQuiet, false)
	if !r.UVLight() || r.Quiet() || !r.Display() {
		t.Errorf("SetFlag changed the wrong bits: flags1=0x%02X", r.Flags1)
	}
}

func TestFieldName(t *testing.T) {
	if name := FieldName(OffsetFan); name != "fan" {
		t.Errorf("expected fan, got %s", name)
	}
	if name := FieldName(OffsetReserved1 + 3); name != "reserved1[3]" {
		t.Errorf("expected reserved1[3], got %s", name)
	}
	if name := FieldName(99); name != "unknown" {
		t.Errorf("expected unknown, got %s", name)
	}
}

// ============================================================
// Decode Tests
// ============================================================

func TestDecode_Valid(t *testing.T) {
	in := statusRecord()
	frame := buildStatusFrame(in)

	r, err := Decode(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode != ModeCodeCool || r.Fan != FanCodeMedium || r.TargetTemperature != 24 || r.CurrentTemperature != 26 {
		t.Errorf("decoded record mismatch: %+v", r)
	}
	if r.Reserved1 != in.Reserved1 {
		t.Errorf("reserved bytes not preserved: % X", r.Reserved1)
	}
}

func TestDecode_Errors(t *testing.T) {
	valid := buildStatusFrame(statusRecord())

	badSync := append([]byte(nil), valid...)
	badSync[0] = 0x55

	badLength := append([]byte(nil), valid...)
	badLength[1] = 0x13

	badChecksum := append([]byte(nil), valid...)
	badChecksum[FrameOffsetChecksum]++

	// sync and checksum both wrong: sync must be reported first
	badBoth := append([]byte(nil), badChecksum...)
	badBoth[0] = 0x00

	tests := []struct {
		name     string
		data     []byte
		kind     FrameErrorKind
		sentinel error
	}{
		{"empty", nil, FrameErrLength, ErrLengthMismatch},
		{"short", valid[:21], FrameErrLength, ErrLengthMismatch},
		{"long", append(append([]byte(nil), valid...), 0x00), FrameErrLength, ErrLengthMismatch},
		{"bad sync", badSync, FrameErrSync, ErrBadSyncByte},
		{"bad declared length", badLength, FrameErrDeclaredLength, ErrBadDeclaredLength},
		{"bad checksum", badChecksum, FrameErrChecksum, ErrChecksumMismatch},
		{"sync before checksum", badBoth, FrameErrSync, ErrBadSyncByte},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			var fe *FrameError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FrameError, got %T", err)
			}
			if fe.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, fe.Kind)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected errors.Is(%v)", tt.sentinel)
			}
		})
	}
}

func TestDecode_ChecksumCorruptionEveryValue(t *testing.T) {
	valid := buildStatusFrame(statusRecord())
	for delta := 1; delta < 256; delta++ {
		frame := append([]byte(nil), valid...)
		frame[FrameOffsetChecksum] += byte(delta)
		if _, err := Decode(frame); !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("delta %d: expected checksum mismatch, got %v", delta, err)
		}
	}
}

func TestFrameErrorKind_String(t *testing.T) {
	if FrameErrChecksum.String() != "CHECKSUM_MISMATCH" {
		t.Errorf("unexpected name %s", FrameErrChecksum)
	}
	if FrameErrorKind(42).String() != "UNKNOWN" {
		t.Errorf("unexpected name for unknown kind")
	}
}

// ============================================================
// Encode Tests
// ============================================================

func TestEncode_Layout(t *testing.T) {
	f := Encode(statusRecord())

	if f[0] != SyncByte || f[1] != PayloadLength {
		t.Errorf("bad header % X", f[:2])
	}
	if f[FrameOffsetPayload+OffsetOperation] != OpWrite {
		t.Errorf("operation byte should be forced to 0x02, got 0x%02X", f[2])
	}
	sum := Checksum(f[:FrameOffsetChecksum])
	if f.Checksum() != sum {
		t.Errorf("trailing checksum 0x%02X, want 0x%02X", f.Checksum(), sum)
	}
	if f[FrameOffsetPayload+OffsetChecksum] != sum {
		t.Errorf("embedded checksum 0x%02X, want 0x%02X", f[FrameOffsetPayload+OffsetChecksum], sum)
	}
}

func TestEncode_IgnoresStaleChecksum(t *testing.T) {
	a := statusRecord()
	b := statusRecord()
	b.Checksum = 0x77
	if Encode(a) != Encode(b) {
		t.Error("incoming checksum field must not influence the encoded frame")
	}
}

func TestEncode_DecodeRoundTrip(t *testing.T) {
	in := statusRecord()
	f := Encode(in)

	out, err := Decode(f.Bytes())
	if err != nil {
		t.Fatalf("encoded frame should decode: %v", err)
	}
	in.Operation = OpWrite
	in.Checksum = f.Checksum()
	if out != in {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestEncode_ReencodeKeepsChecksumOfWriteFrames(t *testing.T) {
	r := statusRecord()
	r.Operation = OpWrite
	frame := buildStatusFrame(r)

	decoded, err := Decode(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Encode(decoded).Checksum() != frame[FrameOffsetChecksum] {
		t.Errorf("re-encoding should reproduce checksum 0x%02X", frame[FrameOffsetChecksum])
	}
}

// ============================================================
// Warning Tests
// ============================================================

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Record)
		kinds  []WarningKind
	}{
		{"clean", func(r *Record) {}, nil},
		{"unknown power", func(r *Record) { r.Power = 0x07 }, []WarningKind{WarningUnknownPower}},
		{"unknown mode while on", func(r *Record) { r.Mode = 0x09 }, []WarningKind{WarningUnknownMode}},
		{"unknown mode while off", func(r *Record) { r.Power = PowerOff; r.Mode = 0x09 }, nil},
		{"unknown fan", func(r *Record) { r.Fan = 0x04 }, []WarningKind{WarningUnknownFan}},
		{"unknown fan masked by quiet", func(r *Record) { r.Fan = 0x04; r.Flags1 |= FlagQuiet }, nil},
		{"unknown vane", func(r *Record) { r.VerticalVane = 0x07 }, []WarningKind{WarningUnknownVane}},
		{"target low", func(r *Record) { r.TargetTemperature = 15 }, []WarningKind{WarningTargetOutOfRange}},
		{"target high", func(r *Record) { r.TargetTemperature = 33 }, []WarningKind{WarningTargetOutOfRange}},
		{"current bounds ok", func(r *Record) { r.CurrentTemperature = 40 }, nil},
		{"current high", func(r *Record) { r.CurrentTemperature = 41 }, []WarningKind{WarningCurrentOutOfRange}},
		{"several", func(r *Record) { r.VerticalVane = 0xFF; r.CurrentTemperature = 0 }, []WarningKind{WarningUnknownVane, WarningCurrentOutOfRange}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := statusRecord()
			tt.modify(&r)
			warnings := ValidateRecord(r)
			if len(warnings) != len(tt.kinds) {
				t.Fatalf("expected %d warnings, got %d: %v", len(tt.kinds), len(warnings), warnings)
			}
			for i, w := range warnings {
				if w.Kind != tt.kinds[i] {
					t.Errorf("warning %d: expected %s, got %s", i, tt.kinds[i], w.Kind)
				}
			}
		})
	}
}

func TestFieldWarning_Message(t *testing.T) {
	w := NewFieldWarning(WarningTargetOutOfRange, OffsetTargetTemperature, 99)
	if !strings.Contains(w.Error(), "target_temperature 99 outside [16, 32]") {
		t.Errorf("unexpected message %q", w.Error())
	}
	w = NewFieldWarning(WarningUnknownVane, OffsetVerticalVane, 0x0A)
	if w.Error() != "unknown vertical_vane value 0x0A" {
		t.Errorf("unexpected message %q", w.Error())
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestFormatHex(t *testing.T) {
	if got := FormatHex(KeepAliveFrame); got != "AA 02 01 AD" {
		t.Errorf("unexpected hex %q", got)
	}
	if got := FormatHex(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestFormatRecord(t *testing.T) {
	r := statusRecord()
	r.Flags1 |= FlagQuiet
	out := FormatRecord(r)
	for _, want := range []string{"Mode: COOL", "Fan: QUIET", "Target: 24°C", "Vane: STATIC", "Display: on", "UV: off"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted record missing %q:\n%s", want, out)
		}
	}
}

func TestFormatPacket(t *testing.T) {
	frame := Encode(statusRecord())
	r, _ := Decode(frame.Bytes())
	out := FormatPacket(NewPacket(frame, r))
	if !strings.Contains(out, "COMMAND (0x02)") {
		t.Errorf("expected COMMAND header, got:\n%s", out)
	}
}
