// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package metrics exports the climate model and link statistics to Prometheus
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

const namespace = "aerostat"

// Metrics holds the collectors for one bridge
type Metrics struct {
	registry *prometheus.Registry

	gauges    map[string]prometheus.Gauge
	mode      *prometheus.GaugeVec
	fanMode   *prometheus.GaugeVec
	swingMode *prometheus.GaugeVec
	frames    *prometheus.CounterVec
	bytes     *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gauges:   map[string]prometheus.Gauge{},
	}

	m.addGauge("current_temperature_celsius", "Room temperature reported by the unit (°C)")
	m.addGauge("target_temperature_celsius", "Target temperature (°C)")
	m.addGauge("display_on", "Display state (1 on, 0 off)")
	m.addGauge("uv_light_on", "UV lamp state (1 on, 0 off)")
	m.addGauge("horizontal_swing_on", "Horizontal swing state (1 on, 0 off)")
	m.addGauge("vertical_vane_position", "Vertical vane position (0 swing ... 6 static)")
	m.addGauge("pending_changes", "Edits queued for the next command frame")

	m.mode = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mode",
		Help:      "Active climate mode (1 for the active mode)",
	}, []string{"mode"})
	m.fanMode = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fan_mode",
		Help:      "Active fan mode (1 for the active mode)",
	}, []string{"fan_mode"})
	m.swingMode = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "swing_mode",
		Help:      "Derived swing mode (1 for the active mode)",
	}, []string{"swing_mode"})
	m.frames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_total",
		Help:      "Frames exchanged with the unit",
	}, []string{"direction"})
	m.bytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frame_bytes_total",
		Help:      "Bytes exchanged with the unit in complete frames",
	}, []string{"direction"})

	for _, g := range m.gauges {
		m.registry.MustRegister(g)
	}
	m.registry.MustRegister(m.mode, m.fanMode, m.swingMode, m.frames, m.bytes)

	return m
}

func (m *Metrics) addGauge(name, help string) {
	m.gauges[name] = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func (m *Metrics) setGauge(name string, v float64) {
	if g, ok := m.gauges[name]; ok {
		g.Set(v)
	}
}

// Registry returns the registry holding every collector
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Attach subscribes to b and registers a collector for its link statistics
func (m *Metrics) Attach(b *bridge.Bridge) {
	m.UpdateState(b.State())
	b.OnStateChange(func(s bridge.State) {
		m.UpdateState(s)
		m.setGauge("pending_changes", float64(b.QueueLen()))
	})
	b.OnFrame(m.ObserveFrame)
	m.registry.MustRegister(newStatsCollector(b))
}

// UpdateState sets the model gauges from s
func (m *Metrics) UpdateState(s bridge.State) {
	m.setGauge("current_temperature_celsius", float64(s.CurrentTemperature))
	m.setGauge("target_temperature_celsius", float64(s.TargetTemperature))
	m.setGauge("display_on", boolValue(s.Display))
	m.setGauge("uv_light_on", boolValue(s.UVLight))
	m.setGauge("horizontal_swing_on", boolValue(s.HorizontalSwing))
	m.setGauge("vertical_vane_position", float64(s.VerticalVane))

	for _, mode := range []bridge.Mode{bridge.ModeOff, bridge.ModeAuto, bridge.ModeCool, bridge.ModeHeat, bridge.ModeDry, bridge.ModeFanOnly} {
		m.mode.WithLabelValues(mode.String()).Set(boolValue(mode == s.Mode))
	}
	for _, fan := range []bridge.FanMode{bridge.FanAuto, bridge.FanLow, bridge.FanMedium, bridge.FanHigh, bridge.FanQuiet} {
		m.fanMode.WithLabelValues(fan.String()).Set(boolValue(fan == s.FanMode))
	}
	swing := s.SwingMode()
	for _, sm := range []bridge.SwingMode{bridge.SwingOff, bridge.SwingVertical, bridge.SwingHorizontal, bridge.SwingBoth} {
		m.swingMode.WithLabelValues(sm.String()).Set(boolValue(sm == swing))
	}
}

// ObserveFrame counts one frame crossing the link
func (m *Metrics) ObserveFrame(dir daewoo.Direction, data []byte) {
	label := dir.String()
	m.frames.WithLabelValues(label).Inc()
	m.bytes.WithLabelValues(label).Add(float64(len(data)))
}

func boolValue(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
