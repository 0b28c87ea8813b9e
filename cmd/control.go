// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for controlling the air conditioner",
	Long: `Control a Daewoo unit via an interactive terminal UI.

The bridge runs inside the TUI: the unit is polled every update interval and
every change you make is queued into the next command frame.

Features:
  - Live climate state (mode, temperatures, fan, swing, vane, toggles)
  - Mode, fan and swing cycling, target temperature input
  - Vertical vane picker using the configured labels
  - Display, UV light and horizontal swing toggles
  - Frame statistics and event log
  - Automatic reconnection on connection loss

Keys: m=mode f=fan s=swing d=display v=uv h=horizontal swing +/-=target
Tab switches between the vane list, the target input and the controls.

Supports both serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	bridge   *bridge.Bridge
	conn     Connection
	connInfo string
	mu       sync.RWMutex
	p        *tea.Program
	done     chan struct{}

	states chan bridge.State
	events chan controlEventMsg
}

func (cm *connectionManager) getConn() Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn
}

func (cm *connectionManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
}

func runControl(cmd *cobra.Command, args []string) error {
	// Prompt before the TUI owns the terminal so reconnects never prompt
	if cfg.WebSocket.URL != "" && cfg.WebSocket.Username != "" {
		password, err := GetPassword(cfg.WebSocket.Password)
		if err != nil {
			return err
		}
		cfg.WebSocket.Password = password
	}

	conn, connInfo, err := OpenConnection(cfg)
	if err != nil {
		return err
	}

	cm := &connectionManager{
		conn:     conn,
		connInfo: connInfo,
		done:     make(chan struct{}),
		states:   make(chan bridge.State, 1),
		events:   make(chan controlEventMsg, 100),
	}

	// Log output would tear the TUI; route warnings into the event log instead
	logrus.SetOutput(io.Discard)
	logrus.AddHook(&eventLogHook{events: cm.events})

	b := newBridge()
	cm.bridge = b
	vane := bridge.NewVaneSelect(b, nil)

	b.OnStateChange(cm.pushState)
	b.OnFrame(func(dir daewoo.Direction, data []byte) {
		cm.pushEvent(controlEventMsg{kind: eventFrame, dir: dir, data: append([]byte(nil), data...)})
	})

	m := initialControlModel(cm, b, vane, connInfo)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	cm.p = p

	go cm.runLoop()
	go cm.batchLoop()

	_, err = p.Run()
	close(cm.done)
	if c := cm.getConn(); c != nil {
		c.Close()
	}
	if err != nil {
		return errors.Wrap(err, "TUI error")
	}
	return nil
}

// pushState keeps only the newest model snapshot for the TUI
func (cm *connectionManager) pushState(s bridge.State) {
	for {
		select {
		case cm.states <- s:
			return
		default:
		}
		select {
		case <-cm.states:
		default:
		}
	}
}

// pushEvent drops events when the TUI falls behind
func (cm *connectionManager) pushEvent(e controlEventMsg) {
	select {
	case cm.events <- e:
	default:
	}
}

// runLoop runs the bridge on the current connection and reconnects when the
// link drops
func (cm *connectionManager) runLoop() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-cm.done
		cancel()
	}()

	for {
		transport := bridge.NewStreamTransport(cm.getConn())
		err := cm.bridge.Run(ctx, transport)

		select {
		case <-cm.done:
			return
		default:
		}

		cm.p.Send(connectionLostMsg{err: err})
		if !cm.reconnect() {
			return
		}
	}
}

// batchLoop sends batched updates to the TUI at a fixed rate. Sending from
// the bridge observers directly would block when the TUI itself triggered
// the change.
func (cm *connectionManager) batchLoop() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cm.done:
			return
		case <-ticker.C:
			var batch controlBatchMsg

			select {
			case s := <-cm.states:
				batch.state = &s
			default:
			}

		drainLoop:
			for {
				select {
				case e := <-cm.events:
					batch.events = append(batch.events, e)
				default:
					break drainLoop
				}
			}

			if batch.state != nil || len(batch.events) > 0 {
				cm.p.Send(batch)
			}
		}
	}
}

// reconnect attempts to reconnect with exponential backoff
// Returns false if shutdown was requested during reconnection
func (cm *connectionManager) reconnect() bool {
	if conn := cm.getConn(); conn != nil {
		conn.Close()
	}

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := OpenConnection(cfg)
		if err == nil {
			cm.setConn(conn, connInfo)
			cm.p.Send(reconnectedMsg{connInfo: connInfo})
			return true
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// eventLogHook forwards warnings and errors to the TUI event log
type eventLogHook struct {
	events chan controlEventMsg
}

func (h *eventLogHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (h *eventLogHook) Fire(e *logrus.Entry) error {
	select {
	case h.events <- controlEventMsg{kind: eventLog, message: e.Message, isError: e.Level <= logrus.ErrorLevel}:
	default:
	}
	return nil
}
