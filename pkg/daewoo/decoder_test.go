// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import (
	"bytes"
	"errors"
	"testing"
)

// feed pushes data through d and collects packets and errors
func feed(d *Decoder, data []byte) ([]*Packet, []error) {
	var packets []*Packet
	var errs []error
	for _, b := range data {
		p, err := d.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
		}
		if p != nil {
			packets = append(packets, p)
		}
	}
	return packets, errs
}

// ============================================================
// Decoder Tests
// ============================================================

func TestDecoder_SingleFrame(t *testing.T) {
	d := NewDecoder()
	frame := buildStatusFrame(statusRecord())

	packets, errs := feed(d, frame)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(packets))
	}
	if !bytes.Equal(packets[0].Raw().Bytes(), frame) {
		t.Errorf("raw bytes mismatch")
	}
	if packets[0].Record().Mode != ModeCodeCool {
		t.Errorf("expected COOL mode code, got 0x%02X", packets[0].Record().Mode)
	}
	if d.InFrame() {
		t.Error("decoder should be idle after a complete frame")
	}
}

func TestDecoder_SkipsGarbageBeforeSync(t *testing.T) {
	d := NewDecoder()
	frame := buildStatusFrame(statusRecord())
	data := append([]byte{0x00, 0x13, 0x7F}, frame...)

	packets, errs := feed(d, data)
	if len(errs) != 0 || len(packets) != 1 {
		t.Fatalf("expected 1 packet and no errors, got %d packets, %v", len(packets), errs)
	}
	if d.SkippedBytes() != 3 {
		t.Errorf("expected 3 skipped bytes, got %d", d.SkippedBytes())
	}
}

func TestDecoder_BackToBackFrames(t *testing.T) {
	d := NewDecoder()
	a := statusRecord()
	b := statusRecord()
	b.TargetTemperature = 18

	data := append(buildStatusFrame(a), buildStatusFrame(b)...)
	packets, errs := feed(d, data)
	if len(errs) != 0 || len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %d (errors %v)", len(packets), errs)
	}
	if packets[1].Record().TargetTemperature != 18 {
		t.Errorf("second frame target should be 18, got %d", packets[1].Record().TargetTemperature)
	}
}

func TestDecoder_CorruptFrameResets(t *testing.T) {
	d := NewDecoder()
	bad := buildStatusFrame(statusRecord())
	bad[FrameOffsetChecksum] ^= 0xFF
	good := buildStatusFrame(statusRecord())

	packets, errs := feed(d, append(bad, good...))
	if len(errs) != 1 || !errors.Is(errs[0], ErrChecksumMismatch) {
		t.Fatalf("expected one checksum error, got %v", errs)
	}
	if len(packets) != 1 {
		t.Fatalf("good frame after a bad one should decode, got %d packets", len(packets))
	}
}

func TestDecoder_PartialFrame(t *testing.T) {
	d := NewDecoder()
	frame := buildStatusFrame(statusRecord())

	packets, errs := feed(d, frame[:10])
	if len(packets) != 0 || len(errs) != 0 {
		t.Fatal("partial frame should produce nothing")
	}
	if !d.InFrame() {
		t.Error("decoder should be collecting a frame")
	}
	if !bytes.Equal(d.GetRawBytes(), frame[:10]) {
		t.Errorf("raw buffer mismatch: % X", d.GetRawBytes())
	}

	d.Reset()
	if d.InFrame() || len(d.GetRawBytes()) != 0 {
		t.Error("Reset should discard the partial frame")
	}
}
