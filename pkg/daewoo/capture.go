// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import (
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Direction of a captured chunk relative to the host
type Direction uint8

const (
	DirectionRX Direction = 0
	DirectionTX Direction = 1
)

// String returns RX or TX
func (d Direction) String() string {
	if d == DirectionTX {
		return "TX"
	}
	return "RX"
}

// CaptureRecord is one entry of a capture file, stored as a CBOR map with
// integer keys so files stay compact.
type CaptureRecord struct {
	Timestamp int64     `cbor:"0,keyasint"` // unix milliseconds
	Direction Direction `cbor:"1,keyasint"`
	Data      []byte    `cbor:"2,keyasint"`
}

// Time returns the record timestamp
func (c CaptureRecord) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// CaptureWriter appends CBOR capture records to a stream
type CaptureWriter struct {
	enc *cbor.Encoder
}

// NewCaptureWriter creates a capture writer on w
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{enc: cbor.NewEncoder(w)}
}

// Write appends one chunk of link traffic
func (c *CaptureWriter) Write(dir Direction, data []byte, ts time.Time) error {
	rec := CaptureRecord{
		Timestamp: ts.UnixMilli(),
		Direction: dir,
		Data:      append([]byte(nil), data...),
	}
	if err := c.enc.Encode(rec); err != nil {
		return errors.Wrap(err, "failed to encode capture record")
	}
	return nil
}

// CaptureReader reads records written by CaptureWriter
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a capture reader on r
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream
func (c *CaptureReader) Next() (CaptureRecord, error) {
	var rec CaptureRecord
	if err := c.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return rec, io.EOF
		}
		return rec, errors.Wrap(err, "failed to decode capture record")
	}
	return rec, nil
}
