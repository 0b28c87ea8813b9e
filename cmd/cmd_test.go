// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// ============================================================
// Test Helpers
// ============================================================

// bufferConnection is an in-memory Connection
type bufferConnection struct {
	in     *bytes.Reader
	out    bytes.Buffer
	closed bool
}

func (b *bufferConnection) Read(p []byte) (int, error)  { return b.in.Read(p) }
func (b *bufferConnection) Write(p []byte) (int, error) { return b.out.Write(p) }
func (b *bufferConnection) Close() error {
	b.closed = true
	return nil
}

func coolStatusFrame() []byte {
	f := daewoo.Encode(daewoo.Record{
		Power:              daewoo.PowerOn,
		Mode:               daewoo.ModeCodeCool,
		Fan:                daewoo.FanCodeMedium,
		VerticalVane:       daewoo.VaneCodeStatic,
		Flags1:             daewoo.FlagDisplay,
		TargetTemperature:  21,
		CurrentTemperature: 27,
	})
	return f.Bytes()
}

// ============================================================
// Control TUI helpers
// ============================================================

func TestNextMode_CyclesAndWraps(t *testing.T) {
	modes := []bridge.Mode{bridge.ModeOff, bridge.ModeCool, bridge.ModeHeat}

	assert.Equal(t, bridge.ModeCool, nextMode(modes, bridge.ModeOff))
	assert.Equal(t, bridge.ModeOff, nextMode(modes, bridge.ModeHeat))
	assert.Equal(t, bridge.ModeOff, nextMode(modes, bridge.ModeDry), "unlisted mode restarts the cycle")
}

func TestNextSwingMode_FollowsTraitsOrder(t *testing.T) {
	traits := bridge.New().Traits()

	seen := map[bridge.SwingMode]bool{}
	current := bridge.SwingOff
	for range traits.SwingModes {
		seen[current] = true
		current = nextSwingMode(traits.SwingModes, current)
	}
	assert.Equal(t, bridge.SwingOff, current)
	assert.Len(t, seen, len(traits.SwingModes))
}

func TestOnOffLabel(t *testing.T) {
	assert.Equal(t, "ON", onOffLabel(true))
	assert.Equal(t, "OFF", onOffLabel(false))
}

// ============================================================
// send
// ============================================================

func TestSendCall(t *testing.T) {
	c := &cobra.Command{}
	c.Flags().Float64Var(&sendTarget, "target", 0, "")
	require.NoError(t, c.Flags().Set("target", "22"))

	sendMode, sendFan, sendSwing = "cool", "quiet", "both"
	t.Cleanup(func() { sendMode, sendFan, sendSwing, sendTarget = "", "", "", 0 })

	call, err := sendCall(c)
	require.NoError(t, err)
	require.NotNil(t, call.Mode)
	assert.Equal(t, bridge.ModeCool, *call.Mode)
	require.NotNil(t, call.FanMode)
	assert.Equal(t, bridge.FanQuiet, *call.FanMode)
	require.NotNil(t, call.SwingMode)
	assert.Equal(t, bridge.SwingBoth, *call.SwingMode)
	require.NotNil(t, call.TargetTemperature)
	assert.Equal(t, 22.0, *call.TargetTemperature)
}

func TestSendCall_RejectsUnknownValues(t *testing.T) {
	c := &cobra.Command{}
	t.Cleanup(func() { sendMode, sendFan, sendSwing = "", "", "" })

	sendMode = "turbo"
	_, err := sendCall(c)
	assert.ErrorContains(t, err, "unknown mode")

	sendMode, sendFan = "", "9"
	_, err = sendCall(c)
	assert.ErrorContains(t, err, "unknown fan mode")

	sendFan, sendSwing = "", "diagonal"
	_, err = sendCall(c)
	assert.ErrorContains(t, err, "unknown swing mode")
}

func TestSendCall_NoFlagsIsEmpty(t *testing.T) {
	call, err := sendCall(&cobra.Command{})
	require.NoError(t, err)
	assert.Nil(t, call.Mode)
	assert.Nil(t, call.FanMode)
	assert.Nil(t, call.SwingMode)
	assert.Nil(t, call.TargetTemperature)
}

// ============================================================
// Capture and replay
// ============================================================

func TestWithCapture_EmptyPathPassesThrough(t *testing.T) {
	conn := &bufferConnection{in: bytes.NewReader(nil)}
	wrapped, err := withCapture(conn, "")
	require.NoError(t, err)
	assert.Same(t, conn, wrapped)
}

func TestWithCapture_RecordsBothDirections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link.cbor")
	status := coolStatusFrame()

	raw := &bufferConnection{in: bytes.NewReader(status)}
	conn, err := withCapture(raw, path)
	require.NoError(t, err)

	_, err = conn.Write(daewoo.KeepAliveFrame)
	require.NoError(t, err)
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, status, buf[:n])
	require.NoError(t, conn.Close())
	assert.True(t, raw.closed)
	assert.Equal(t, daewoo.KeepAliveFrame, raw.out.Bytes())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	reader := daewoo.NewCaptureReader(f)

	first, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, daewoo.DirectionTX, first.Direction)
	assert.Equal(t, daewoo.KeepAliveFrame, first.Data)

	second, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, daewoo.DirectionRX, second.Direction)
	assert.Equal(t, status, second.Data)

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReplayTransport_FeedsBridge(t *testing.T) {
	b := bridge.New()
	tr := &replayTransport{}

	// Split the frame across two chunks like a serial read would
	status := coolStatusFrame()
	tr.buf = append(tr.buf, status[:9]...)
	require.NoError(t, b.Poll(tr))
	assert.Equal(t, bridge.ModeOff, b.State().Mode)

	tr.buf = append(tr.buf, status[9:]...)
	require.NoError(t, b.Poll(tr))

	s := b.State()
	assert.Equal(t, bridge.ModeCool, s.Mode)
	assert.Equal(t, bridge.FanMedium, s.FanMode)
	assert.Equal(t, 21, s.TargetTemperature)
	assert.Equal(t, 27, s.CurrentTemperature)

	_, err := tr.ReadByte()
	assert.ErrorIs(t, err, bridge.ErrNoData)
}

func TestFormatState(t *testing.T) {
	out := formatState(bridge.DefaultState())
	assert.Contains(t, out, "Mode: OFF")
	assert.Contains(t, out, "Target: 24°C")
	assert.Contains(t, out, "Vane: Static")
	assert.Contains(t, out, "Display: ON")
}

// ============================================================
// WebSocket connection
// ============================================================

func TestWebSocketConnection_ReportsCloseCause(t *testing.T) {
	status := coolStatusFrame()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.WriteMessage(websocket.TextMessage, []byte("hello"))
		_ = c.WriteMessage(websocket.BinaryMessage, status)
		_ = c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "bridge restarting"))
	}))
	defer server.Close()

	conn, err := OpenWebSocketConnection("ws"+strings.TrimPrefix(server.URL, "http"), "", "", false)
	require.NoError(t, err)
	defer conn.Close()

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, status, buf[:n], "text messages are skipped")

	_, err = conn.Read(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionClosed))

	var closeErr *websocket.CloseError
	require.True(t, errors.As(err, &closeErr))
	assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)
	assert.Contains(t, err.Error(), "bridge restarting")

	// Later reads keep reporting the same cause
	_, again := conn.Read(buf)
	assert.Equal(t, err, again)
}

func TestOpenWebSocketConnection_RejectsScheme(t *testing.T) {
	_, err := OpenWebSocketConnection("http://example.invalid/ws", "", "", false)
	assert.ErrorContains(t, err, "unsupported URL scheme")
}
