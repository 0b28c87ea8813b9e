// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hass

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Manufacturer reported in the device block
const Manufacturer = "Daewoo"

// DiscoveryMessage is one retained Home Assistant discovery config
type DiscoveryMessage struct {
	Topic   string
	Payload map[string]interface{}
}

// Marshal encodes the payload
func (d DiscoveryMessage) Marshal() ([]byte, error) {
	data, err := json.Marshal(d.Payload)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal discovery payload for %s", d.Topic)
	}
	return data, nil
}

func (i *Integration) deviceInfo() map[string]interface{} {
	return map[string]interface{}{
		"identifiers":  []string{i.opts.NodeID},
		"manufacturer": Manufacturer,
		"model":        "UART air conditioner",
		"name":         i.opts.DeviceName,
	}
}

func (i *Integration) discoveryBase(component, objectID, name string) (string, map[string]interface{}) {
	uniqueID := i.opts.NodeID + "_" + objectID
	topic := fmt.Sprintf("%s/%s/%s/%s/config", i.opts.DiscoveryPrefix, component, i.opts.NodeID, objectID)
	return topic, map[string]interface{}{
		"name":               name,
		"unique_id":          uniqueID,
		"availability_topic": i.topics.Availability(),
		"device":             i.deviceInfo(),
	}
}

// Discovery builds the configs for the climate entity, the three switches and
// the vane select
func (i *Integration) Discovery() []DiscoveryMessage {
	traits := i.bridge.Traits()
	state := i.topics.State()

	topic, climate := i.discoveryBase("climate", "climate", i.opts.DeviceName)
	climate["mode_command_topic"] = i.topics.Join(CommandMode)
	climate["mode_state_topic"] = state
	climate["mode_state_template"] = "{{ value_json.mode }}"
	climate["modes"] = modeNames(traits.Modes)
	climate["temperature_command_topic"] = i.topics.Join(CommandTemperature)
	climate["temperature_state_topic"] = state
	climate["temperature_state_template"] = "{{ value_json.target_temperature }}"
	climate["current_temperature_topic"] = state
	climate["current_temperature_template"] = "{{ value_json.current_temperature }}"
	climate["fan_mode_command_topic"] = i.topics.Join(CommandFanMode)
	climate["fan_mode_state_topic"] = state
	climate["fan_mode_state_template"] = "{{ value_json.fan_mode }}"
	climate["fan_modes"] = fanModeNames(traits.FanModes)
	climate["swing_mode_command_topic"] = i.topics.Join(CommandSwingMode)
	climate["swing_mode_state_topic"] = state
	climate["swing_mode_state_template"] = "{{ value_json.swing_mode }}"
	climate["swing_modes"] = swingModeNames(traits.SwingModes)
	climate["min_temp"] = traits.MinimumTarget
	climate["max_temp"] = traits.MaximumTarget
	climate["temp_step"] = traits.VisualStep
	climate["precision"] = 1.0
	climate["temperature_unit"] = "C"

	messages := []DiscoveryMessage{{Topic: topic, Payload: climate}}

	switches := []struct {
		objectID string
		name     string
		command  string
		field    string
	}{
		{"display", "Display", CommandDisplay, "display_on"},
		{"uv_light", "UV Light", CommandUVLight, "uv_light_on"},
		{"horizontal_swing", "Horizontal Swing", CommandHorizontalSwing, "horizontal_swing_on"},
	}
	for _, sw := range switches {
		topic, payload := i.discoveryBase("switch", sw.objectID, sw.name)
		payload["command_topic"] = i.topics.Join(sw.command)
		payload["state_topic"] = state
		payload["value_template"] = fmt.Sprintf("{{ 'ON' if value_json.%s else 'OFF' }}", sw.field)
		payload["payload_on"] = PayloadOn
		payload["payload_off"] = PayloadOff
		messages = append(messages, DiscoveryMessage{Topic: topic, Payload: payload})
	}

	topic, vane := i.discoveryBase("select", "vertical_vane", "Vertical Vane")
	vane["command_topic"] = i.topics.Join(CommandVerticalVane)
	vane["state_topic"] = state
	vane["value_template"] = "{{ value_json.vertical_vane }}"
	vane["options"] = i.vane.Options()
	messages = append(messages, DiscoveryMessage{Topic: topic, Payload: vane})

	return messages
}
