// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

// Frame is a complete 22-byte wire frame
type Frame [FrameLength]byte

// Bytes returns the frame as a slice
func (f Frame) Bytes() []byte {
	return f[:]
}

// Checksum returns the trailing checksum byte
func (f Frame) Checksum() byte {
	return f[FrameOffsetChecksum]
}

// Payload returns the 20-byte payload
func (f Frame) Payload() []byte {
	return f[FrameOffsetPayload : FrameOffsetPayload+RecordLength]
}

// Decode validates a raw frame and unpacks its payload.
//
// Checks run in order and the first failure is returned as a *FrameError:
// total length, sync byte, declared length, checksum. Decode never panics
// on malformed input.
func Decode(data []byte) (Record, error) {
	if len(data) != FrameLength {
		return Record{}, newFrameError(FrameErrLength, FrameLength, len(data),
			"invalid frame: expected %d bytes, got %d bytes", FrameLength, len(data))
	}

	if data[FrameOffsetSync] != SyncByte {
		return Record{}, newFrameError(FrameErrSync, SyncByte, int(data[FrameOffsetSync]),
			"invalid frame: expected 0x%02X, got 0x%02X", SyncByte, data[FrameOffsetSync])
	}

	if int(data[FrameOffsetLength])+2 != FrameLength {
		return Record{}, newFrameError(FrameErrDeclaredLength, FrameLength-2, int(data[FrameOffsetLength]),
			"invalid frame: declared payload length %d, expected %d", data[FrameOffsetLength], FrameLength-2)
	}

	calculated := Checksum(data[:FrameOffsetChecksum])
	if calculated != data[FrameOffsetChecksum] {
		return Record{}, newFrameError(FrameErrChecksum, int(calculated), int(data[FrameOffsetChecksum]),
			"checksum mismatch: calculated 0x%02X, received 0x%02X", calculated, data[FrameOffsetChecksum])
	}

	return UnmarshalRecord(data[FrameOffsetPayload : FrameOffsetPayload+RecordLength])
}

// Encode builds an outbound write frame from r.
//
// The operation byte is forced to OpWrite and the checksum is written both
// at the end of the frame and into the payload's own checksum field.
func Encode(r Record) Frame {
	r.Operation = OpWrite
	r.Checksum = 0x00

	var f Frame
	f[FrameOffsetSync] = SyncByte
	f[FrameOffsetLength] = PayloadLength
	payload := r.Bytes()
	copy(f[FrameOffsetPayload:], payload[:])

	sum := Checksum(f[:FrameOffsetChecksum])
	f[FrameOffsetChecksum] = sum
	f[FrameOffsetPayload+OffsetChecksum] = sum

	return f
}
