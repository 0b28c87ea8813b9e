// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hass publishes the climate bridge to Home Assistant over MQTT
package hass

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Thermoquad/aerostat/pkg/bridge"
)

// publishTimeout bounds how long a publish may wait for the broker
const publishTimeout = 5 * time.Second

// Client is the part of mqtt.Client the integration uses
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// Options configures topic layout and device naming
type Options struct {
	BaseTopic       string
	DiscoveryPrefix string
	DeviceName      string
	NodeID          string
}

// Integration maps the bridge onto MQTT topics
type Integration struct {
	bridge   *bridge.Bridge
	vane     *bridge.VaneSelect
	switches map[string]*bridge.Switch
	opts     Options
	topics   Topics
	log      *logrus.Entry

	mu     sync.Mutex
	client Client

	updates chan bridge.State
}

// New creates an integration for b. The vane select must belong to b.
func New(b *bridge.Bridge, vane *bridge.VaneSelect, opts Options, log *logrus.Entry) *Integration {
	if opts.NodeID == "" {
		opts.NodeID = nodeID(opts.BaseTopic)
	}
	i := &Integration{
		bridge: b,
		vane:   vane,
		switches: map[string]*bridge.Switch{
			CommandDisplay:         bridge.NewSwitch(b, bridge.SwitchDisplay),
			CommandUVLight:         bridge.NewSwitch(b, bridge.SwitchUVLight),
			CommandHorizontalSwing: bridge.NewSwitch(b, bridge.SwitchHorizontalSwing),
		},
		opts:    opts,
		topics:  Topics{Base: opts.BaseTopic},
		log:     log,
		updates: make(chan bridge.State, 1),
	}
	b.OnStateChange(i.notify)
	return i
}

func nodeID(base string) string {
	id := strings.Trim(base, "/")
	id = strings.ReplaceAll(id, "/", "_")
	if id == "" {
		return "aerostat"
	}
	return id
}

// Topics returns the topic layout
func (i *Integration) Topics() Topics {
	return i.topics
}

// OnConnect is installed as the paho connect handler. Subscriptions and
// discovery are repeated after every reconnect.
func (i *Integration) OnConnect(c mqtt.Client) {
	if err := i.Start(c); err != nil {
		i.log.WithError(err).Error("MQTT setup failed")
	}
}

// Start publishes discovery and availability, subscribes to the command
// topics and publishes the current state
func (i *Integration) Start(c Client) error {
	i.mu.Lock()
	i.client = c
	i.mu.Unlock()

	for _, msg := range i.Discovery() {
		data, err := msg.Marshal()
		if err != nil {
			return err
		}
		if err := i.publish(msg.Topic, true, data); err != nil {
			return errors.Wrap(err, "publish discovery")
		}
	}

	for _, suffix := range commandSuffixes {
		topic := i.topics.Join(suffix)
		if err := wait(c.Subscribe(topic, 0, i.handleCommand)); err != nil {
			return errors.Wrapf(err, "subscribe to %s", topic)
		}
		i.log.Debugf("Subscribed to %s", topic)
	}

	if err := i.publish(i.topics.Availability(), true, PayloadOnline); err != nil {
		return errors.Wrap(err, "publish availability")
	}

	i.log.Info("Connected to MQTT broker")
	return i.PublishState(i.bridge.State())
}

// Stop marks the device offline
func (i *Integration) Stop() error {
	return i.publish(i.topics.Availability(), true, PayloadOffline)
}

// notify hands s to the run loop, replacing any update it has not consumed
func (i *Integration) notify(s bridge.State) {
	for {
		select {
		case i.updates <- s:
			return
		default:
		}
		select {
		case <-i.updates:
		default:
		}
	}
}

// Run publishes state updates until ctx is done
func (i *Integration) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if err := i.Stop(); err != nil {
				i.log.WithError(err).Warn("Failed to publish offline availability")
			}
			return nil
		case s := <-i.updates:
			i.syncSatellites()
			if err := i.PublishState(s); err != nil {
				i.log.WithError(err).Warn("Failed to publish state")
			}
		}
	}
}

// syncSatellites refreshes the switch and select handles from the bridge
func (i *Integration) syncSatellites() {
	for suffix, sw := range i.switches {
		if on, changed := sw.Sync(); changed {
			i.log.WithField("switch", suffix).Debugf("Synced from unit: %t", on)
		}
	}
	if label, changed := i.vane.Sync(); changed {
		i.log.Debugf("Vertical vane synced from unit: %s", label)
	}
}

// PublishState publishes s retained on the state topic
func (i *Integration) PublishState(s bridge.State) error {
	data, err := json.Marshal(NewStatePayload(s))
	if err != nil {
		return errors.Wrap(err, "marshal state")
	}
	i.log.Debugf("MQTT PUB %s: %s", i.topics.State(), data)
	return i.publish(i.topics.State(), true, data)
}

func (i *Integration) publish(topic string, retained bool, payload interface{}) error {
	i.mu.Lock()
	c := i.client
	i.mu.Unlock()
	if c == nil {
		return errors.New("mqtt client not connected")
	}
	return wait(c.Publish(topic, 0, retained, payload))
}

func wait(t mqtt.Token) error {
	if !t.WaitTimeout(publishTimeout) {
		return errors.New("timed out waiting for broker")
	}
	return t.Error()
}

// handleCommand routes a command topic message to the bridge
func (i *Integration) handleCommand(_ mqtt.Client, msg mqtt.Message) {
	suffix, ok := i.topics.Suffix(msg.Topic())
	if !ok {
		return
	}
	payload := strings.TrimSpace(string(msg.Payload()))
	log := i.log.WithFields(logrus.Fields{"topic": msg.Topic(), "payload": payload})
	log.Debug("MQTT command")

	switch suffix {
	case CommandMode:
		m, parsed := bridge.ParseMode(payload)
		if !parsed || !m.Known() {
			log.Warn("Unsupported mode command")
			return
		}
		i.bridge.Control(bridge.Call{}.SetMode(m))

	case CommandTemperature:
		t, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			log.WithError(err).Warn("Invalid temperature command")
			return
		}
		i.bridge.Control(bridge.Call{}.SetTargetTemperature(t))

	case CommandFanMode:
		f, parsed := bridge.ParseFanMode(payload)
		if !parsed || !f.Known() {
			log.Warn("Unsupported fan mode command")
			return
		}
		i.bridge.Control(bridge.Call{}.SetFanMode(f))

	case CommandSwingMode:
		s, parsed := bridge.ParseSwingMode(payload)
		if !parsed || s < bridge.SwingOff || s > bridge.SwingBoth {
			log.Warn("Unsupported swing mode command")
			return
		}
		i.bridge.Control(bridge.Call{}.SetSwingMode(s))

	case CommandDisplay, CommandUVLight, CommandHorizontalSwing:
		i.switches[suffix].Write(bridge.ParseBoolToken(strings.ToLower(payload)))

	case CommandVerticalVane:
		i.vane.Select(payload)

	default:
		log.Warn("Unhandled command topic")
	}
}
