// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/config"
)

// Connection provides a common interface for reading/writing bytes from serial or WebSocket
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when reading from a closed WebSocket
// connection. The concrete error also carries the close cause; match it with
// errors.Is.
var ErrConnectionClosed = errors.New("websocket connection closed")

// connectionClosedError records why a WebSocket read loop ended
type connectionClosedError struct {
	cause error
}

func (e *connectionClosedError) Error() string {
	return ErrConnectionClosed.Error() + ": " + e.cause.Error()
}

// Is lets errors.Is match ErrConnectionClosed
func (e *connectionClosedError) Is(target error) bool {
	return target == ErrConnectionClosed
}

// Unwrap returns the websocket error that closed the connection
func (e *connectionClosedError) Unwrap() error {
	return e.cause
}

// Cause supports errors.Cause from github.com/pkg/errors
func (e *connectionClosedError) Cause() error {
	return e.cause
}

// WebSocketConnection wraps a WebSocket connection for byte-level reading.
// A serial bridge on the far side forwards raw UART bytes in binary
// messages, which may split or merge frames arbitrarily.
type WebSocketConnection struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closeErr  error // set once the connection has failed
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	// Return immediately if the connection is known to be closed
	if w.closeErr != nil {
		return 0, w.closeErr
	}

	// Drain the previous message before reading the next one
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closeErr = &connectionClosedError{cause: err}
			return 0, w.closeErr
		}

		// UART bytes arrive as binary messages; text frames are bridge chatter
		if messageType != websocket.BinaryMessage {
			continue
		}

		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

// Write sends p as one binary message
func (w *WebSocketConnection) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	return w.conn.Close()
}

// OpenSerialConnection opens a serial port at 8N1
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial port %s", portName)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool) (Connection, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid URL")
	}

	// Only plain and TLS websocket schemes are accepted
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, errors.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	// The serial bridge authenticates with HTTP Basic auth on the upgrade
	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "WebSocket connection failed (HTTP %d)", resp.StatusCode)
		}
		return nil, errors.Wrap(err, "WebSocket connection failed")
	}

	return &WebSocketConnection{conn: conn}, nil
}

// GetPassword returns the configured password or prompts for one
func GetPassword(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	// Prompt on stderr so stdout stays clean for frame output
	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", errors.Wrap(err, "failed to read password")
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenConnection opens either a serial or WebSocket connection from the config
func OpenConnection(c config.Config) (Connection, string, error) {
	if c.WebSocket.URL != "" {
		password := ""
		if c.WebSocket.Username != "" {
			var err error
			password, err = GetPassword(c.WebSocket.Password)
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(c.WebSocket.URL, c.WebSocket.Username, password, c.WebSocket.NoSSLVerify)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("WebSocket: %s", c.WebSocket.URL), nil
	}

	if c.Serial.Port != "" {
		conn, err := OpenSerialConnection(c.Serial.Port, c.Serial.Baud)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("Serial: %s @ %d baud", c.Serial.Port, c.Serial.Baud), nil
	}

	return nil, "", errors.New("either --port or --url must be specified")
}

// newBridge builds a bridge from the loaded config
func newBridge() *bridge.Bridge {
	return bridge.New(
		bridge.WithLogger(componentLogger("bridge")),
		bridge.WithUpdateInterval(cfg.UpdateInterval),
		bridge.WithVaneLabels(cfg.VerticalVaneOptions),
	)
}
