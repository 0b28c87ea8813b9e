// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// SwitchKind selects which boolean a Switch controls
type SwitchKind int

const (
	SwitchDisplay SwitchKind = iota
	SwitchUVLight
	SwitchHorizontalSwing
)

// String returns the switch name
func (k SwitchKind) String() string {
	switch k {
	case SwitchDisplay:
		return "display"
	case SwitchUVLight:
		return "uv_light"
	case SwitchHorizontalSwing:
		return "horizontal_swing"
	default:
		return "unknown"
	}
}

// Switch is a toggle exposed to a UI. It holds a non-owning reference to the
// bridge and only ever reads state or writes intent through it.
type Switch struct {
	bridge *Bridge
	kind   SwitchKind
	log    *logrus.Entry

	mu           sync.Mutex
	lastReported bool
}

// NewSwitch creates a switch and seeds it with the bridge's current value
func NewSwitch(b *Bridge, kind SwitchKind) *Switch {
	s := &Switch{
		bridge: b,
		kind:   kind,
		log:    b.log.WithField("switch", kind.String()),
	}
	s.lastReported = s.read()
	s.log.Debugf("Setting up toggle (initial state: %s)", onOff(s.lastReported))
	return s
}

// Kind returns what the switch controls
func (s *Switch) Kind() SwitchKind {
	return s.kind
}

func (s *Switch) read() bool {
	switch s.kind {
	case SwitchDisplay:
		return s.bridge.IsDisplayOn()
	case SwitchUVLight:
		return s.bridge.IsUVLightOn()
	default:
		return s.bridge.IsHorizontalSwingOn()
	}
}

// State returns the last value the switch reported
func (s *Switch) State() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReported
}

// Write requests a new value. A request equal to the last reported value is
// dropped. Otherwise the edit is queued before the in-memory state changes.
func (s *Switch) Write(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on == s.lastReported {
		s.log.Debugf("Already %s", onOff(on))
		return
	}

	switch s.kind {
	case SwitchDisplay:
		s.bridge.Enqueue(DisplayChange{On: on})
		s.bridge.SetDisplayOn(on)
	case SwitchUVLight:
		s.bridge.Enqueue(UVLightChange{On: on})
		s.bridge.SetUVLightOn(on)
	case SwitchHorizontalSwing:
		s.bridge.Enqueue(HorizontalSwingChange{On: on})
		s.bridge.SetHorizontalSwingOn(on)
	}
	s.lastReported = on
}

// Sync reads the bridge and reports whether the value moved since the last
// report. Callers use it to republish state the unit changed on its own.
func (s *Switch) Sync() (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.read()
	if current == s.lastReported {
		return current, false
	}
	s.lastReported = current
	s.log.Debugf("State synced from AC: %s", onOff(current))
	return current, true
}

// VaneSelect is the vertical vane picker exposed to a UI
type VaneSelect struct {
	bridge  *Bridge
	options []string
	log     *logrus.Entry

	mu    sync.Mutex
	state string
}

// NewVaneSelect installs options as the bridge's vane labels and picks the
// initial selection. A nil list keeps the labels the bridge already has. When the bridge's current label is not one of the
// options, the first option is selected instead.
func NewVaneSelect(b *Bridge, options []string) *VaneSelect {
	v := &VaneSelect{
		bridge: b,
		log:    b.log.WithField("select", "vertical_vane"),
	}

	if len(options) > 0 {
		b.SetVaneLabels(options)
		// The table has one slot per position; extra options could never be selected
		if len(options) > VanePositionCount {
			options = options[:VanePositionCount]
		}
		v.options = append([]string(nil), options...)
	} else {
		v.options = b.VaneLabels().Options()
	}

	initial := b.VerticalVaneLabel()
	if !v.hasOption(initial) && len(v.options) > 0 {
		initial = v.options[0]
		v.log.Warnf("Initial state not in options, using first option: %s", initial)
		b.SetVerticalVanePositionLabel(initial)
	}
	v.state = initial
	v.log.Debugf("Initial state: %s", initial)
	return v
}

func (v *VaneSelect) hasOption(label string) bool {
	for _, o := range v.options {
		if o == label {
			return true
		}
	}
	return false
}

// Options returns the selectable labels
func (v *VaneSelect) Options() []string {
	return append([]string(nil), v.options...)
}

// State returns the last reported label
func (v *VaneSelect) State() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Select queues a vane change and moves the in-memory position to label.
// An unknown label is still queued but leaves the position unchanged.
func (v *VaneSelect) Select(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.bridge.Enqueue(VerticalVaneChange{Label: label})
	v.bridge.SetVerticalVanePositionLabel(label)
	v.state = v.bridge.VerticalVaneLabel()
}

// Sync reads the bridge label and reports whether it moved since the last report
func (v *VaneSelect) Sync() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	current := v.bridge.VerticalVaneLabel()
	if current == v.state {
		return current, false
	}
	v.state = current
	return current, true
}
