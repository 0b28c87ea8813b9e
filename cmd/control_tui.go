// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	maxLogEntries = 100
	logHeight     = 8
	staleAfter    = 10 * time.Second // unit considered silent after this long without a frame
)

// Focus states
const (
	focusVaneList = iota
	focusTargetInput
	focusControls
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// vaneItem is one vertical vane position in the picker
type vaneItem struct {
	position bridge.VanePosition
	label    string
}

// Implement list.Item interface
func (v vaneItem) Title() string       { return v.label }
func (v vaneItem) Description() string { return v.position.String() }
func (v vaneItem) FilterValue() string { return v.label }

type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	// Connection manager (for reconnection state)
	connMgr  *connectionManager
	connInfo string

	// Bridge and UI handles
	bridge   *bridge.Bridge
	vane     *bridge.VaneSelect
	display  *bridge.Switch
	uvLight  *bridge.Switch
	hSwing   *bridge.Switch
	traits   bridge.Traits
	state    bridge.State
	vaneList list.Model

	// Monitoring
	stats     daewoo.Statistics
	errorLog  []errorLogEntry
	lastFrame time.Time

	// Control
	targetInput  textinput.Model
	focusedField int

	// UI state
	width          int
	height         int
	synchronized   bool
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type controlEventKind int

const (
	eventFrame controlEventKind = iota
	eventLog
)

type controlEventMsg struct {
	kind    controlEventKind
	dir     daewoo.Direction
	data    []byte
	message string
	isError bool
}

type controlBatchMsg struct {
	state  *bridge.State
	events []controlEventMsg
}

type connectionLostMsg struct {
	err error
}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(connMgr *connectionManager, b *bridge.Bridge, vane *bridge.VaneSelect, connInfo string) controlModel {
	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(b.State().TargetTemperature)
	ti.CharLimit = 4
	ti.Width = 6

	labels := b.VaneLabels()
	items := make([]list.Item, 0, bridge.VanePositionCount)
	for i := 0; i < bridge.VanePositionCount; i++ {
		pos := bridge.VanePosition(i)
		items = append(items, vaneItem{position: pos, label: labels.Label(pos)})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	vaneList := list.New(items, delegate, 30, 10)
	vaneList.Title = "Vertical Vane"
	vaneList.SetShowStatusBar(false)
	vaneList.SetShowHelp(false)
	vaneList.SetFilteringEnabled(false)
	vaneList.Select(int(b.VerticalVanePosition()))

	return controlModel{
		connMgr:      connMgr,
		connInfo:     connInfo,
		bridge:       b,
		vane:         vane,
		display:      bridge.NewSwitch(b, bridge.SwitchDisplay),
		uvLight:      bridge.NewSwitch(b, bridge.SwitchUVLight),
		hSwing:       bridge.NewSwitch(b, bridge.SwitchHorizontalSwing),
		traits:       b.Traits(),
		state:        b.State(),
		vaneList:     vaneList,
		stats:        b.Statistics(),
		errorLog:     make([]errorLogEntry, 0),
		targetInput:  ti,
		focusedField: focusControls,
		width:        80,
		height:       24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return controlTickCmd()
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case controlTickMsg:
		m.stats = m.bridge.Statistics()
		m.syncSatellites()
		return m, controlTickCmd()

	case controlBatchMsg:
		if msg.state != nil {
			m.applyState(*msg.state)
		}
		for _, e := range msg.events {
			m.processEvent(e)
		}

	case connectionLostMsg:
		m.connectionLost = true
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Connection lost (%v) - reconnecting...", msg.err), true)
		} else {
			m.addLogEntry("Connection lost - reconnecting...", true)
		}

	case reconnectedMsg:
		m.connectionLost = false
		m.synchronized = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected", false)
	}

	var cmd tea.Cmd
	if m.focusedField == focusTargetInput {
		m.targetInput, cmd = m.targetInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.cycleFocus(1)
		return m, nil

	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil

	case "enter":
		return m.handleEnter()
	}

	// The target input owns every other key while focused
	if m.focusedField == focusTargetInput {
		var cmd tea.Cmd
		m.targetInput, cmd = m.targetInput.Update(msg)
		return m, cmd
	}

	if m.focusedField == focusVaneList {
		switch msg.String() {
		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.vaneList, cmd = m.vaneList.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "m":
		m.cycleMode()
	case "f":
		m.cycleFanMode()
	case "s":
		m.cycleSwingMode()
	case "+", "=":
		m.setTarget(float64(m.state.TargetTemperature + 1))
	case "-":
		m.setTarget(float64(m.state.TargetTemperature - 1))
	case "d":
		m.toggle(m.display, "Display")
	case "v":
		m.toggle(m.uvLight, "UV light")
	case "h":
		m.toggle(m.hSwing, "Horizontal swing")
	}

	return m, nil
}

func (m *controlModel) cycleFocus(delta int) {
	m.focusedField = (m.focusedField + delta + focusControls + 1) % (focusControls + 1)

	if m.focusedField == focusTargetInput {
		m.targetInput.Focus()
	} else {
		m.targetInput.Blur()
	}
}

func (m controlModel) handleEnter() (tea.Model, tea.Cmd) {
	switch m.focusedField {
	case focusVaneList:
		item, ok := m.vaneList.SelectedItem().(vaneItem)
		if !ok {
			return m, nil
		}
		m.vane.Select(item.label)
		m.addLogEntry(fmt.Sprintf("Vertical vane -> %s", item.label), false)

	case focusTargetInput:
		raw := strings.TrimSpace(m.targetInput.Value())
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			m.addLogEntry(fmt.Sprintf("Invalid target temperature: %q", raw), true)
			return m, nil
		}
		m.setTarget(t)
		m.targetInput.SetValue("")
	}

	m.state = m.bridge.State()
	return m, nil
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

func (m *controlModel) cycleMode() {
	next := nextMode(m.traits.Modes, m.state.Mode)
	m.bridge.Control(bridge.Call{}.SetMode(next))
	m.state = m.bridge.State()
	m.addLogEntry(fmt.Sprintf("Mode -> %s", next), false)
}

func (m *controlModel) cycleFanMode() {
	next := nextFanMode(m.traits.FanModes, m.state.FanMode)
	m.bridge.Control(bridge.Call{}.SetFanMode(next))
	m.state = m.bridge.State()
	m.addLogEntry(fmt.Sprintf("Fan -> %s", next), false)
}

func (m *controlModel) cycleSwingMode() {
	next := nextSwingMode(m.traits.SwingModes, m.state.SwingMode())
	m.bridge.Control(bridge.Call{}.SetSwingMode(next))
	m.state = m.bridge.State()
	m.addLogEntry(fmt.Sprintf("Swing -> %s", next), false)
}

func (m *controlModel) setTarget(t float64) {
	if t < float64(m.traits.MinimumTarget) || t > float64(m.traits.MaximumTarget) {
		m.addLogEntry(fmt.Sprintf("Target must be between %d and %d", m.traits.MinimumTarget, m.traits.MaximumTarget), true)
		return
	}
	m.bridge.Control(bridge.Call{}.SetTargetTemperature(t))
	m.state = m.bridge.State()
	m.targetInput.Placeholder = strconv.Itoa(m.state.TargetTemperature)
	m.addLogEntry(fmt.Sprintf("Target -> %d°C", m.state.TargetTemperature), false)
}

func (m *controlModel) toggle(sw *bridge.Switch, name string) {
	on := !sw.State()
	sw.Write(on)
	m.state = m.bridge.State()
	m.addLogEntry(fmt.Sprintf("%s -> %s", name, onOffLabel(on)), false)
}

func nextMode(modes []bridge.Mode, current bridge.Mode) bridge.Mode {
	for i, mode := range modes {
		if mode == current {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

func nextFanMode(modes []bridge.FanMode, current bridge.FanMode) bridge.FanMode {
	for i, mode := range modes {
		if mode == current {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

func nextSwingMode(modes []bridge.SwingMode, current bridge.SwingMode) bridge.SwingMode {
	for i, mode := range modes {
		if mode == current {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

//////////////////////////////////////////////////////////////
// Data Processing
//////////////////////////////////////////////////////////////

func (m *controlModel) applyState(s bridge.State) {
	prev := m.state
	m.state = s
	m.targetInput.Placeholder = strconv.Itoa(s.TargetTemperature)
	if s.VerticalVane != prev.VerticalVane && m.focusedField != focusVaneList {
		m.vaneList.Select(int(s.VerticalVane))
	}
}

func (m *controlModel) processEvent(e controlEventMsg) {
	switch e.kind {
	case eventFrame:
		if e.dir == daewoo.DirectionRX {
			m.lastFrame = time.Now()
			if !m.synchronized {
				m.synchronized = true
				m.addLogEntry("Synchronized", false)
			}
		}
	case eventLog:
		m.addLogEntry(e.message, e.isError)
	}
}

// syncSatellites picks up switch and vane changes reported by the unit
func (m *controlModel) syncSatellites() {
	for _, sw := range []*bridge.Switch{m.display, m.uvLight, m.hSwing} {
		if on, changed := sw.Sync(); changed {
			m.addLogEntry(fmt.Sprintf("%s changed on unit: %s", sw.Kind(), onOffLabel(on)), false)
		}
	}
	if label, changed := m.vane.Sync(); changed {
		m.addLogEntry(fmt.Sprintf("Vane changed on unit: %s", label), false)
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("12"))
)

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("AEROSTAT CONTROL"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	} else if !m.synchronized {
		connStatus += " " + warningStyle.Render("(waiting for unit)")
	} else if time.Since(m.lastFrame) > staleAfter {
		connStatus += " " + warningStyle.Render("(unit silent)")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit Tab=switch", connStatus)))
	s.WriteString("\n\n")

	leftWidth := 30
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 30 {
		rightWidth = 30
	}

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusVaneList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	vanePanel := listStyle.Render(m.vaneList.View())

	climateStyle := boxStyle.Width(rightWidth)
	if m.focusedField != focusVaneList {
		climateStyle = focusedBoxStyle.Width(rightWidth)
	}
	climatePanel := climateStyle.Render(m.renderClimatePanel())

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, vanePanel, " ", climatePanel))
	s.WriteString("\n\n")

	s.WriteString(m.renderStatisticsBar())
	s.WriteString("\n\n")

	s.WriteString(m.renderEventLog())

	return s.String()
}

func (m controlModel) renderClimatePanel() string {
	var s strings.Builder
	st := m.state

	row := func(label, value, key string) {
		s.WriteString(fmt.Sprintf("%-20s %-14s %s\n",
			statsLabelStyle.Render(label),
			statsValueStyle.Render(value),
			headerStyle.Render(key)))
	}

	row("Mode:", st.Mode.String(), "[m]")
	row("Fan:", st.FanMode.String(), "[f]")
	row("Swing:", st.SwingMode().String(), "[s]")
	row("Current:", fmt.Sprintf("%d°C", st.CurrentTemperature), "")
	row("Target:", fmt.Sprintf("%d°C", st.TargetTemperature), "[+/-]")
	row("Vane:", st.VaneLabel, "")
	row("Display:", onOffLabel(st.Display), "[d]")
	row("UV light:", onOffLabel(st.UVLight), "[v]")
	row("Horizontal swing:", onOffLabel(st.HorizontalSwing), "[h]")

	s.WriteString("\n")
	s.WriteString(statsLabelStyle.Render("Set target: "))
	if m.focusedField == focusTargetInput {
		s.WriteString(m.targetInput.View())
	} else {
		s.WriteString(fmt.Sprintf("[%s]", m.targetInput.Placeholder))
	}
	s.WriteString("\n")

	pending := m.bridge.QueueLen()
	if pending > 0 {
		s.WriteString(warningStyle.Render(fmt.Sprintf("%d change(s) pending", pending)))
	} else {
		s.WriteString(headerStyle.Render("In sync"))
	}

	return s.String()
}

func (m controlModel) renderStatisticsBar() string {
	var validPercent, errorPercent float64
	if m.stats.TotalFrames > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalFrames)
		errorPercent = float64(m.stats.FrameErrors) * 100.0 / float64(m.stats.TotalFrames)
	}

	errText := statsValueStyle.Render("0.0%")
	if errorPercent > 0 {
		errText = errorStyle.Render(fmt.Sprintf("%.1f%%", errorPercent))
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Frames:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%.1f%%", validPercent)),
		statsLabelStyle.Render("Errors:"), errText,
		statsLabelStyle.Render("Warnings:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.FieldWarnings)),
		statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.2f fr/s", m.stats.FrameRate)),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func (m controlModel) renderEventLog() string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyle
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.errorLog = append(m.errorLog, errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	if len(m.errorLog) > maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-maxLogEntries:]
	}
}

func (m *controlModel) updateListSize() {
	listHeight := m.height / 3
	if listHeight < 5 {
		listHeight = 5
	}
	m.vaneList.SetSize(28, listHeight)
}

func onOffLabel(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
