// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoData is returned by ReadByte when nothing is buffered
var ErrNoData = errors.New("no data available")

// Transport is the non-blocking byte link to the unit
type Transport interface {
	// Available returns the number of bytes that can be read without blocking
	Available() int
	// ReadByte returns the next buffered byte
	ReadByte() (byte, error)
	// Write sends p. It may buffer and return before the bytes leave.
	Write(p []byte) (int, error)
}

// StreamTransport adapts a blocking reader/writer, such as a serial port or a
// websocket connection, to Transport. A background goroutine copies inbound
// bytes into a buffer until the reader fails.
type StreamTransport struct {
	rw io.ReadWriter

	mu     sync.Mutex
	buf    []byte
	err    error
	closed chan struct{}
}

// NewStreamTransport starts reading from rw
func NewStreamTransport(rw io.ReadWriter) *StreamTransport {
	t := &StreamTransport{
		rw:     rw,
		closed: make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *StreamTransport) readLoop() {
	defer close(t.closed)
	chunk := make([]byte, 256)
	for {
		n, err := t.rw.Read(chunk)
		t.mu.Lock()
		if n > 0 {
			t.buf = append(t.buf, chunk[:n]...)
		}
		if err != nil {
			t.err = err
			t.mu.Unlock()
			return
		}
		t.mu.Unlock()
	}
}

// Available returns the number of buffered bytes
func (t *StreamTransport) Available() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}

// ReadByte pops one buffered byte. Once the buffer is empty it returns the
// reader's terminal error, or ErrNoData while the reader is still running.
func (t *StreamTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.buf) == 0 {
		if t.err != nil {
			return 0, t.err
		}
		return 0, ErrNoData
	}
	b := t.buf[0]
	t.buf = t.buf[1:]
	return b, nil
}

// Write sends p on the underlying stream
func (t *StreamTransport) Write(p []byte) (int, error) {
	return t.rw.Write(p)
}

// Err returns the reader's terminal error once the buffer is drained
func (t *StreamTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.buf) > 0 {
		return nil
	}
	return t.err
}

// Done is closed when the reader goroutine exits
func (t *StreamTransport) Done() <-chan struct{} {
	return t.closed
}
