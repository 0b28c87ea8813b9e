// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package bridge translates between the Daewoo device record and a climate
// model. It owns the last device record, the pending user edits and the
// published model, and serializes access to all three.
package bridge

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// DefaultUpdateInterval is the command/poll frame period when none is configured
const DefaultUpdateInterval = 2 * time.Second

// DefaultPollInterval is how often inbound bytes are drained
const DefaultPollInterval = 50 * time.Millisecond

// Observer receives the whole model after it changes
type Observer func(State)

// FrameObserver sees every frame that crosses the link
type FrameObserver func(dir daewoo.Direction, data []byte)

// Bridge is the protocol engine for one air conditioner
type Bridge struct {
	mu sync.Mutex

	record daewoo.Record
	state  State
	labels VaneLabels
	queue  ChangeQueue

	decoder *daewoo.Decoder
	stats   *daewoo.Statistics

	observers      []Observer
	frameObservers []FrameObserver

	updateInterval time.Duration
	pollInterval   time.Duration
	log            *logrus.Entry
}

// Option configures a Bridge
type Option func(*Bridge)

// WithLogger sets the log entry used by the bridge
func WithLogger(log *logrus.Entry) Option {
	return func(b *Bridge) {
		b.log = log
	}
}

// WithUpdateInterval sets the outbound frame period. Zero keeps the default.
func WithUpdateInterval(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.updateInterval = d
		}
	}
}

// WithPollInterval sets how often inbound bytes are drained. Zero keeps the default.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.pollInterval = d
		}
	}
}

// WithVaneLabels configures the vane labels at construction
func WithVaneLabels(options []string) Option {
	return func(b *Bridge) {
		b.setVaneLabelsLocked(options)
	}
}

// New creates a bridge with the default model
func New(opts ...Option) *Bridge {
	b := &Bridge{
		state:          DefaultState(),
		labels:         DefaultVaneLabels,
		decoder:        daewoo.NewDecoder(),
		stats:          daewoo.NewStatistics(),
		updateInterval: DefaultUpdateInterval,
		pollInterval:   DefaultPollInterval,
		log:            logrus.WithField("component", "bridge"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

//////////////////////////////////////////////////////////////
// Observers
//////////////////////////////////////////////////////////////

// OnStateChange registers fn to receive the model after every change
func (b *Bridge) OnStateChange(fn Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// OnFrame registers fn to see every sent and received frame
func (b *Bridge) OnFrame(fn FrameObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frameObservers = append(b.frameObservers, fn)
}

// unlockAndPublish releases the lock and then notifies observers with a
// snapshot, so observers may call back into the bridge.
func (b *Bridge) unlockAndPublish() {
	s := b.state
	observers := append([]Observer(nil), b.observers...)
	b.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
}

func (b *Bridge) notifyFrame(dir daewoo.Direction, data []byte) {
	b.mu.Lock()
	observers := append([]FrameObserver(nil), b.frameObservers...)
	b.mu.Unlock()

	for _, fn := range observers {
		fn(dir, data)
	}
}

//////////////////////////////////////////////////////////////
// Accessors
//////////////////////////////////////////////////////////////

// State returns a copy of the published model
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Record returns a copy of the last device record
func (b *Bridge) Record() daewoo.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record
}

// IsDisplayOn reports the display state
func (b *Bridge) IsDisplayOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Display
}

// IsUVLightOn reports the UV lamp state
func (b *Bridge) IsUVLightOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.UVLight
}

// IsHorizontalSwingOn reports the horizontal swing state
func (b *Bridge) IsHorizontalSwingOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.HorizontalSwing
}

// VerticalVanePosition returns the vane position
func (b *Bridge) VerticalVanePosition() VanePosition {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.VerticalVane
}

// VerticalVaneLabel returns the label of the current vane position
func (b *Bridge) VerticalVaneLabel() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.VaneLabel
}

// VaneLabels returns the configured label table
func (b *Bridge) VaneLabels() VaneLabels {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.labels
}

// Statistics returns a copy of the link statistics
func (b *Bridge) Statistics() daewoo.Statistics {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := *b.stats
	s.CalculateRates()
	return s
}

// UpdateInterval returns the outbound frame period
func (b *Bridge) UpdateInterval() time.Duration {
	return b.updateInterval
}

// Traits describes the climate entity
func (b *Bridge) Traits() Traits {
	return Traits{
		Modes:              []Mode{ModeOff, ModeCool, ModeHeat, ModeDry, ModeFanOnly, ModeAuto},
		FanModes:           []FanMode{FanAuto, FanLow, FanMedium, FanHigh, FanQuiet},
		SwingModes:         []SwingMode{SwingOff, SwingBoth, SwingVertical, SwingHorizontal},
		VisualMinimum:      daewoo.MinCurrentTemperature,
		VisualMaximum:      daewoo.MaxCurrentTemperature,
		VisualStep:         1.0,
		MinimumTarget:      daewoo.MinTargetTemperature,
		MaximumTarget:      daewoo.MaxTargetTemperature,
		SupportsCurrentTmp: true,
	}
}

//////////////////////////////////////////////////////////////
// Vane labels
//////////////////////////////////////////////////////////////

// SetVaneLabels overlays user labels onto the table. Missing entries keep
// their defaults and extra entries are ignored.
func (b *Bridge) SetVaneLabels(options []string) {
	b.mu.Lock()
	b.setVaneLabelsLocked(options)
	b.mu.Unlock()
}

func (b *Bridge) setVaneLabelsLocked(options []string) {
	if len(options) == 0 {
		b.log.Warn("Vertical vane configured without options; keeping defaults")
		return
	}

	b.labels = b.labels.withOptions(options)

	if len(options) < VanePositionCount {
		b.log.Warnf("Vertical vane provided %d options but %d are expected; missing entries keep defaults",
			len(options), VanePositionCount)
	} else if len(options) > VanePositionCount {
		b.log.Warnf("Vertical vane provided %d options; only the first %d are used", len(options), VanePositionCount)
	}

	b.state.VaneLabel = b.labels.Label(b.state.VerticalVane)
}

//////////////////////////////////////////////////////////////
// In-memory setters
//////////////////////////////////////////////////////////////

// SetDisplayOn updates the in-memory display state
func (b *Bridge) SetDisplayOn(on bool) {
	b.mu.Lock()
	if b.state.Display == on {
		b.log.Debugf("Display already %s", onOff(on))
		b.mu.Unlock()
		return
	}
	b.state.Display = on
	b.log.Debugf("Display state changed to: %s", onOff(on))
	b.unlockAndPublish()
}

// SetUVLightOn updates the in-memory UV lamp state
func (b *Bridge) SetUVLightOn(on bool) {
	b.mu.Lock()
	if b.state.UVLight == on {
		b.log.Debugf("UV light already %s", onOff(on))
		b.mu.Unlock()
		return
	}
	b.state.UVLight = on
	b.log.Debugf("UV light state changed to: %s", onOff(on))
	b.unlockAndPublish()
}

// SetHorizontalSwingOn updates the in-memory horizontal swing state
func (b *Bridge) SetHorizontalSwingOn(on bool) {
	b.mu.Lock()
	if !b.setHorizontalSwingLocked(on) {
		b.mu.Unlock()
		return
	}
	b.unlockAndPublish()
}

func (b *Bridge) setHorizontalSwingLocked(on bool) bool {
	if b.state.HorizontalSwing == on {
		b.log.Debugf("Horizontal swing already %s", onOff(on))
		return false
	}
	b.state.HorizontalSwing = on
	b.log.WithField("swing_mode", b.state.SwingMode()).Debugf("Horizontal swing state changed to: %s", onOff(on))
	return true
}

// SetVerticalVanePosition updates the in-memory vane position
func (b *Bridge) SetVerticalVanePosition(pos VanePosition) {
	if !pos.Valid() {
		b.log.Warnf("Ignoring invalid vertical vane position %d", int(pos))
		return
	}
	b.mu.Lock()
	if !b.setVanePositionLocked(pos) {
		b.mu.Unlock()
		return
	}
	b.unlockAndPublish()
}

// SetVerticalVanePositionLabel selects the vane position carrying label.
// It returns false and keeps the current position when no position has it.
func (b *Bridge) SetVerticalVanePositionLabel(label string) bool {
	b.mu.Lock()
	pos, ok := b.labels.Lookup(label)
	if !ok {
		b.mu.Unlock()
		b.log.Warnf("Unknown vertical vane label '%s'; keeping current state", label)
		return false
	}
	if !b.setVanePositionLocked(pos) {
		b.mu.Unlock()
		return true
	}
	b.unlockAndPublish()
	return true
}

func (b *Bridge) setVanePositionLocked(pos VanePosition) bool {
	if b.state.VerticalVane == pos {
		return false
	}
	b.state.VerticalVane = pos
	b.state.VaneLabel = b.labels.Label(pos)
	b.log.WithField("swing_mode", b.state.SwingMode()).Debugf("Vertical vane position changed to: %s", b.state.VaneLabel)
	return true
}

//////////////////////////////////////////////////////////////
// User intent
//////////////////////////////////////////////////////////////

// Enqueue adds an edit to the pending queue
func (b *Bridge) Enqueue(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enqueueLocked(c)
}

func (b *Bridge) enqueueLocked(c Change) {
	if b.queue.Push(c) {
		b.log.Debug("Change queue full; dropped oldest entry")
	}
	b.log.Debugf("Queued UI change: %s = %s", c.Property(), c.Value())
}

// EnqueueUIChange parses a property/value pair and queues it
func (b *Bridge) EnqueueUIChange(property, value string) {
	b.Enqueue(ParseChange(property, value))
}

// PendingChanges returns a copy of the queued edits, oldest first
func (b *Bridge) PendingChanges() []Change {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Entries()
}

// QueueLen returns the number of queued edits
func (b *Bridge) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Len()
}

// BuildCommandFrame replays every queued edit onto the last device record,
// encodes it and empties the queue.
func (b *Bridge) BuildCommandFrame() daewoo.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buildCommandFrameLocked()
}

func (b *Bridge) buildCommandFrameLocked() daewoo.Frame {
	return BuildCommand(b.record, b.state, b.queue.Drain())
}

// Call is a climate control request. Nil fields are left alone.
type Call struct {
	Mode              *Mode
	TargetTemperature *float64
	FanMode           *FanMode
	SwingMode         *SwingMode
}

// SetMode requests a mode
func (c Call) SetMode(m Mode) Call { c.Mode = &m; return c }

// SetTargetTemperature requests a setpoint
func (c Call) SetTargetTemperature(t float64) Call { c.TargetTemperature = &t; return c }

// SetFanMode requests a fan speed
func (c Call) SetFanMode(f FanMode) Call { c.FanMode = &f; return c }

// SetSwingMode requests a combined swing mode
func (c Call) SetSwingMode(s SwingMode) Call { c.SwingMode = &s; return c }

// Control applies a climate request to the model and queues it for the unit.
// A swing request is split onto the two vane axes.
func (b *Bridge) Control(call Call) {
	b.mu.Lock()

	if call.Mode != nil {
		if call.Mode.Known() {
			b.state.Mode = *call.Mode
			b.enqueueLocked(ModeChange{Mode: *call.Mode, Valid: true})
			b.log.Debugf("Mode changed to: %s", call.Mode)
		} else {
			b.log.Warnf("Unsupported mode request: %d", int(*call.Mode))
		}
	}

	if call.TargetTemperature != nil {
		t := *call.TargetTemperature
		if math.IsNaN(t) || math.IsInf(t, 0) {
			b.log.Warnf("Ignoring non-finite target temperature")
		} else {
			b.state.TargetTemperature = ClampTarget(t)
			b.enqueueLocked(TargetTemperatureChange{Temperature: t, Valid: true})
			b.log.Debugf("Target temperature changed to: %.1f", t)
		}
	}

	if call.FanMode != nil {
		if call.FanMode.Known() {
			b.state.FanMode = *call.FanMode
			b.enqueueLocked(FanModeChange{Fan: *call.FanMode, Valid: true})
			b.log.Debugf("Fan mode changed to: %s", call.FanMode)
		} else {
			b.log.Warnf("Unsupported fan mode request: %d", int(*call.FanMode))
		}
	}

	if call.SwingMode != nil {
		b.applySwingLocked(*call.SwingMode)
	}

	b.log.WithFields(logrus.Fields{
		"display":          onOff(b.state.Display),
		"uv_light":         onOff(b.state.UVLight),
		"vertical_vane":    b.state.VaneLabel,
		"horizontal_swing": onOff(b.state.HorizontalSwing),
	}).Debug("Climate state after control")

	b.unlockAndPublish()
}

func (b *Bridge) applySwingLocked(mode SwingMode) {
	b.enqueueLocked(SwingModeChange{Mode: mode})
	b.log.Debugf("Swing mode change request: %s", mode)

	switch mode {
	case SwingBoth:
		b.setVanePositionLocked(VaneSwing)
		b.setHorizontalSwingLocked(true)
	case SwingVertical:
		b.setVanePositionLocked(VaneSwing)
		b.setHorizontalSwingLocked(false)
	case SwingHorizontal:
		b.setHorizontalSwingLocked(true)
		if b.state.VerticalVane == VaneSwing {
			b.setVanePositionLocked(VaneStatic)
		}
	case SwingOff:
		if b.state.VerticalVane == VaneSwing {
			b.setVanePositionLocked(VaneStatic)
		}
		b.setHorizontalSwingLocked(false)
	default:
		b.log.Warnf("Unsupported swing mode request: %d", int(mode))
	}
}

//////////////////////////////////////////////////////////////
// Device state
//////////////////////////////////////////////////////////////

// ApplyRecord stores a validated device record and reconciles the model.
// Observers are notified once when any field changed.
func (b *Bridge) ApplyRecord(r daewoo.Record) Changes {
	b.mu.Lock()

	b.record = r
	next, changes, warnings := Reconcile(b.state, b.labels, r)
	b.state = next
	b.stats.Update(nil, nil, warnings)

	for _, w := range warnings {
		b.log.WithFields(logrus.Fields{
			"field": w.Field,
			"raw":   w.Raw,
		}).Warn(w.Message)
	}

	if !changes.Any() {
		b.mu.Unlock()
		return changes
	}

	b.log.WithFields(logrus.Fields{
		"changed":          changes.String(),
		"mode":             next.Mode,
		"fan_mode":         next.FanMode,
		"swing_mode":       next.SwingMode(),
		"display":          onOff(next.Display),
		"uv_light":         onOff(next.UVLight),
		"vertical_vane":    next.VaneLabel,
		"horizontal_swing": onOff(next.HorizontalSwing),
	}).Debug("Climate state updated from unit")

	b.unlockAndPublish()
	return changes
}

// HandleFrame validates a raw 22-byte frame and applies it. A rejected frame
// leaves the stored record and model untouched.
func (b *Bridge) HandleFrame(data []byte) (Changes, error) {
	r, err := daewoo.Decode(data)
	if err != nil {
		b.mu.Lock()
		b.stats.Update(nil, err, nil)
		b.mu.Unlock()
		b.log.Warn(err.Error())
		return 0, err
	}
	b.log.Infof("Received UART frame:\t%s", daewoo.FormatHex(data))
	return b.ApplyRecord(r), nil
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
