// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import "time"

// Packet represents a decoded Daewoo frame
type Packet struct {
	raw       Frame
	record    Record
	timestamp time.Time
}

// NewPacket creates a new packet from a validated frame and its record
func NewPacket(raw Frame, record Record) *Packet {
	return &Packet{
		raw:       raw,
		record:    record,
		timestamp: time.Now(),
	}
}

// Raw returns the frame bytes as received
func (p *Packet) Raw() Frame {
	return p.raw
}

// Record returns the unpacked payload
func (p *Packet) Record() Record {
	return p.record
}

// Operation returns the payload operation byte
func (p *Packet) Operation() byte {
	return p.record.Operation
}

// Checksum returns the trailing checksum byte
func (p *Packet) Checksum() byte {
	return p.raw.Checksum()
}

// Timestamp returns when the packet was decoded
func (p *Packet) Timestamp() time.Time {
	return p.timestamp
}
