// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hass

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/Thermoquad/aerostat/pkg/config"
)

// NewClientOptions builds paho options for cfg. The last will marks the
// device offline and every (re)connect runs the integration's setup.
func NewClientOptions(cfg config.MQTT, i *Integration) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetWill(i.Topics().Availability(), PayloadOffline, 0, true)
	opts.SetOnConnectHandler(i.OnConnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		i.log.WithError(err).Warn("MQTT connection lost")
	})
	return opts
}

// Connect creates a client and starts connecting. With connect retry enabled
// the first attempt failing is only logged and paho keeps trying.
func Connect(cfg config.MQTT, i *Integration) (mqtt.Client, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt.broker is not set")
	}
	client := mqtt.NewClient(NewClientOptions(cfg, i))
	token := client.Connect()
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		i.log.WithError(token.Error()).Warn("Could not connect to MQTT initially, will retry in background")
	}
	return client, nil
}
