// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// captureConnection records every chunk read from or written to a
// connection into a CBOR capture file
type captureConnection struct {
	Connection

	mu   sync.Mutex
	file *os.File
	w    *daewoo.CaptureWriter
}

// withCapture wraps conn so its traffic is appended to path. An empty path
// returns conn unchanged.
func withCapture(conn Connection, path string) (Connection, error) {
	if path == "" {
		return conn, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open capture file %s", path)
	}
	return &captureConnection{
		Connection: conn,
		file:       f,
		w:          daewoo.NewCaptureWriter(f),
	}, nil
}

func (c *captureConnection) record(dir daewoo.Direction, p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.w.Write(dir, p, time.Now()); err != nil {
		componentLogger("capture").WithError(err).Warn("Dropping capture record")
	}
}

func (c *captureConnection) Read(p []byte) (int, error) {
	n, err := c.Connection.Read(p)
	if n > 0 {
		c.record(daewoo.DirectionRX, p[:n])
	}
	return n, err
}

func (c *captureConnection) Write(p []byte) (int, error) {
	n, err := c.Connection.Write(p)
	if n > 0 {
		c.record(daewoo.DirectionTX, p[:n])
	}
	return n, err
}

func (c *captureConnection) Close() error {
	err := c.Connection.Close()
	if ferr := c.file.Close(); ferr != nil && err == nil {
		err = errors.Wrap(ferr, "failed to close capture file")
	}
	return err
}
