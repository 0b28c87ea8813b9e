// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

// Decoder states
const (
	stateIdle = iota
	stateFrame
)

// Decoder reassembles frames from a byte stream.
//
// While idle it discards everything up to the next sync byte. Once a sync
// byte is seen it collects exactly FrameLength bytes and hands them to
// Decode, then returns to idle whether or not the frame was valid.
type Decoder struct {
	state   int
	buffer  []byte
	skipped uint64
}

// NewDecoder creates a new stream decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:  stateIdle,
		buffer: make([]byte, 0, FrameLength),
	}
}

// Reset discards any partial frame
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.buffer = d.buffer[:0]
}

// DecodeByte feeds one byte into the decoder.
// It returns a packet when a valid frame completes, an error when a complete
// frame fails validation, and (nil, nil) otherwise.
func (d *Decoder) DecodeByte(b byte) (*Packet, error) {
	if d.state == stateIdle {
		if b != SyncByte {
			d.skipped++
			return nil, nil
		}
		d.buffer = append(d.buffer[:0], b)
		d.state = stateFrame
		return nil, nil
	}

	d.buffer = append(d.buffer, b)
	if len(d.buffer) < FrameLength {
		return nil, nil
	}

	var raw Frame
	copy(raw[:], d.buffer)
	d.Reset()

	record, err := Decode(raw[:])
	if err != nil {
		return nil, err
	}
	return NewPacket(raw, record), nil
}

// InFrame reports whether a partial frame is buffered
func (d *Decoder) InFrame() bool {
	return d.state == stateFrame
}

// SkippedBytes returns the number of bytes discarded while hunting for sync
func (d *Decoder) SkippedBytes() uint64 {
	return d.skipped
}

// GetRawBytes returns a copy of the partial frame buffer
func (d *Decoder) GetRawBytes() []byte {
	out := make([]byte, len(d.buffer))
	copy(out, d.buffer)
	return out
}
