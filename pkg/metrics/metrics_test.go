// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

func newBridge() *bridge.Bridge {
	logger, _ := test.NewNullLogger()
	return bridge.New(bridge.WithLogger(logrus.NewEntry(logger)))
}

func frameFor(r daewoo.Record) []byte {
	f := daewoo.Encode(r)
	return f.Bytes()
}

func TestMetrics_State(t *testing.T) {
	m := New()
	b := newBridge()
	m.Attach(b)

	assert.Equal(t, 24.0, testutil.ToFloat64(m.gauges["target_temperature_celsius"]))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mode.WithLabelValues("OFF")))

	_, err := b.HandleFrame(frameFor(daewoo.Record{
		Power:              daewoo.PowerOn,
		Mode:               daewoo.ModeCodeHeat,
		VerticalVane:       daewoo.VaneCodeSwing,
		Flags0:             daewoo.FlagHorizontalSwing,
		Fan:                daewoo.FanCodeHigh,
		TargetTemperature:  28,
		CurrentTemperature: 19,
	}))
	require.NoError(t, err)

	assert.Equal(t, 28.0, testutil.ToFloat64(m.gauges["target_temperature_celsius"]))
	assert.Equal(t, 19.0, testutil.ToFloat64(m.gauges["current_temperature_celsius"]))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.gauges["display_on"]))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mode.WithLabelValues("HEAT")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.mode.WithLabelValues("OFF")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fanMode.WithLabelValues("HIGH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.swingMode.WithLabelValues("BOTH")))
}

func TestMetrics_Frames(t *testing.T) {
	m := New()
	m.ObserveFrame(daewoo.DirectionTX, daewoo.KeepAliveFrame)
	m.ObserveFrame(daewoo.DirectionTX, make([]byte, daewoo.FrameLength))
	m.ObserveFrame(daewoo.DirectionRX, make([]byte, daewoo.FrameLength))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames.WithLabelValues("TX")))
	assert.Equal(t, 26.0, testutil.ToFloat64(m.bytes.WithLabelValues("TX")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frames.WithLabelValues("RX")))
}

func TestMetrics_StatisticsCollector(t *testing.T) {
	m := New()
	b := newBridge()
	m.Attach(b)

	bad := frameFor(daewoo.Record{TargetTemperature: 24, CurrentTemperature: 22})
	bad[daewoo.FrameOffsetChecksum]++
	_, err := b.HandleFrame(bad)
	require.Error(t, err)

	expected := `
# HELP aerostat_link_frame_errors_total Inbound frames rejected by validation
# TYPE aerostat_link_frame_errors_total counter
aerostat_link_frame_errors_total{kind="BAD_DECLARED_LENGTH"} 0
aerostat_link_frame_errors_total{kind="BAD_SYNC_BYTE"} 0
aerostat_link_frame_errors_total{kind="CHECKSUM_MISMATCH"} 1
aerostat_link_frame_errors_total{kind="LENGTH_MISMATCH"} 0
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "aerostat_link_frame_errors_total"))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Attach(newBridge())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aerostat_target_temperature_celsius 24")
	assert.Contains(t, rec.Body.String(), "aerostat_link_frames_received_total 0")
}
