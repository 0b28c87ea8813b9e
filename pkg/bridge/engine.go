// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// Poll drains every available inbound byte through the stream decoder and
// applies each complete valid frame. It must be called from a single
// goroutine; the decoder is not shared.
func (b *Bridge) Poll(t Transport) error {
	for t.Available() > 0 {
		c, err := t.ReadByte()
		if err != nil {
			if errors.Is(err, ErrNoData) {
				return nil
			}
			return errors.Wrap(err, "read failed")
		}
		b.decodeByte(c)
	}

	if s, ok := t.(interface{ Err() error }); ok {
		if err := s.Err(); err != nil {
			if err == io.EOF {
				return errors.New("link closed")
			}
			return errors.Wrap(err, "link failed")
		}
	}
	return nil
}

func (b *Bridge) decodeByte(c byte) {
	packet, err := b.decoder.DecodeByte(c)

	b.mu.Lock()
	b.stats.SetSkippedBytes(b.decoder.SkippedBytes())
	if err != nil {
		b.stats.Update(nil, err, nil)
	}
	b.mu.Unlock()

	if err != nil {
		b.log.Warn(err.Error())
		return
	}
	if packet == nil {
		return
	}

	raw := packet.Raw()
	b.log.Infof("Received UART frame:\t%s", daewoo.FormatHex(raw.Bytes()))
	b.notifyFrame(daewoo.DirectionRX, raw.Bytes())
	b.ApplyRecord(packet.Record())
}

// NextFrame returns the frame the next update should send: a command frame
// when edits are queued, otherwise the keep-alive poll. Building a command
// frame empties the queue.
func (b *Bridge) NextFrame() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.queue.Len() == 0 {
		return append([]byte(nil), daewoo.KeepAliveFrame...)
	}
	f := b.buildCommandFrameLocked()
	return f.Bytes()
}

// Update sends one outbound frame
func (b *Bridge) Update(t Transport) error {
	frame := b.NextFrame()
	if _, err := t.Write(frame); err != nil {
		return errors.Wrap(err, "write failed")
	}
	b.log.Infof("Sent UART frame:\t%s", daewoo.FormatHex(frame))
	b.notifyFrame(daewoo.DirectionTX, frame)
	return nil
}

// Run polls the link and sends one frame per update interval until ctx is
// cancelled or the link fails.
func (b *Bridge) Run(ctx context.Context, t Transport) error {
	pollTicker := time.NewTicker(b.pollInterval)
	defer pollTicker.Stop()
	updateTicker := time.NewTicker(b.updateInterval)
	defer updateTicker.Stop()

	b.log.WithField("update_interval", b.updateInterval).Info("Bridge running")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pollTicker.C:
			if err := b.Poll(t); err != nil {
				return err
			}
		case <-updateTicker.C:
			if err := b.Update(t); err != nil {
				return err
			}
		}
	}
}
