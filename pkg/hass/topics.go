// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hass

import "strings"

// Command topic suffixes, relative to the base topic
const (
	CommandMode            = "mode/set"
	CommandTemperature     = "temperature/set"
	CommandFanMode         = "fan_mode/set"
	CommandSwingMode       = "swing_mode/set"
	CommandDisplay         = "display/set"
	CommandUVLight         = "uv_light/set"
	CommandHorizontalSwing = "horizontal_swing/set"
	CommandVerticalVane    = "vertical_vane/set"
)

// State topic suffixes
const (
	TopicState        = "state"
	TopicAvailability = "availability"
)

// Availability payloads
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Switch payloads
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

var commandSuffixes = []string{
	CommandMode,
	CommandTemperature,
	CommandFanMode,
	CommandSwingMode,
	CommandDisplay,
	CommandUVLight,
	CommandHorizontalSwing,
	CommandVerticalVane,
}

// Topics builds topic names under a base topic
type Topics struct {
	Base string
}

// Join returns base/suffix
func (t Topics) Join(suffix string) string {
	return strings.TrimSuffix(t.Base, "/") + "/" + suffix
}

// State is the JSON state topic
func (t Topics) State() string {
	return t.Join(TopicState)
}

// Availability is the online/offline topic
func (t Topics) Availability() string {
	return t.Join(TopicAvailability)
}

// Suffix strips the base topic from topic
func (t Topics) Suffix(topic string) (string, bool) {
	prefix := strings.TrimSuffix(t.Base, "/") + "/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	return strings.TrimPrefix(topic, prefix), true
}
