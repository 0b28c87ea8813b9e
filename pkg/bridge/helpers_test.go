// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// coolRecord is a unit cooling to 24°C with the fan on medium and the vane static
func coolRecord() daewoo.Record {
	return daewoo.Record{
		Operation:          daewoo.OpRead,
		Power:              daewoo.PowerOn,
		VerticalVane:       daewoo.VaneCodeStatic,
		Mode:               daewoo.ModeCodeCool,
		Flags1:             daewoo.FlagDisplay,
		Fan:                daewoo.FanCodeMedium,
		TargetTemperature:  24,
		CurrentTemperature: 27,
	}
}

// statusFrame wraps r in a valid inbound frame
func statusFrame(r daewoo.Record) []byte {
	frame := make([]byte, daewoo.FrameLength)
	frame[0] = daewoo.SyncByte
	frame[1] = daewoo.PayloadLength
	payload := r.Bytes()
	copy(frame[2:], payload[:])
	frame[daewoo.FrameOffsetChecksum] = daewoo.Checksum(frame[:daewoo.FrameOffsetChecksum])
	return frame
}

// newTestBridge returns a bridge whose log output is captured by the hook
func newTestBridge(opts ...Option) (*Bridge, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts = append([]Option{WithLogger(logger.WithField("component", "bridge"))}, opts...)
	return New(opts...), hook
}

// warnings returns the messages of every captured warning entry
func warnings(hook *test.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e.Message)
		}
	}
	return out
}

// fakeTransport is an in-memory Transport
type fakeTransport struct {
	in      []byte
	written [][]byte
	failW   error
}

func (f *fakeTransport) Available() int { return len(f.in) }

func (f *fakeTransport) ReadByte() (byte, error) {
	if len(f.in) == 0 {
		return 0, ErrNoData
	}
	b := f.in[0]
	f.in = f.in[1:]
	return b, nil
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	if f.failW != nil {
		return 0, f.failW
	}
	f.written = append(f.written, append([]byte(nil), p...))
	return len(p), nil
}
