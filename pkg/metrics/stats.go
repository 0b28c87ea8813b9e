// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// StatisticsSource provides a snapshot of link statistics
type StatisticsSource interface {
	Statistics() daewoo.Statistics
}

// statsCollector reads link statistics at scrape time
type statsCollector struct {
	source StatisticsSource

	frames       *prometheus.Desc
	frameErrors  *prometheus.Desc
	warnings     *prometheus.Desc
	skippedBytes *prometheus.Desc
}

var _ prometheus.Collector = (*statsCollector)(nil)

func newStatsCollector(source StatisticsSource) *statsCollector {
	return &statsCollector{
		source: source,
		frames: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "link", "frames_received_total"),
			"Complete inbound frames, valid or not", nil, nil),
		frameErrors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "link", "frame_errors_total"),
			"Inbound frames rejected by validation", []string{"kind"}, nil),
		warnings: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "link", "field_warnings_total"),
			"Fields skipped because of unknown or out of range values", []string{"kind"}, nil),
		skippedBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "link", "skipped_bytes_total"),
			"Bytes discarded while searching for a sync byte", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.frames
	ch <- c.frameErrors
	ch <- c.warnings
	ch <- c.skippedBytes
}

// Collect implements prometheus.Collector
func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Statistics()

	ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(s.TotalFrames))

	ch <- prometheus.MustNewConstMetric(c.frameErrors, prometheus.CounterValue, float64(s.LengthMismatches), daewoo.FrameErrLength.String())
	ch <- prometheus.MustNewConstMetric(c.frameErrors, prometheus.CounterValue, float64(s.BadSyncBytes), daewoo.FrameErrSync.String())
	ch <- prometheus.MustNewConstMetric(c.frameErrors, prometheus.CounterValue, float64(s.BadDeclaredLengths), daewoo.FrameErrDeclaredLength.String())
	ch <- prometheus.MustNewConstMetric(c.frameErrors, prometheus.CounterValue, float64(s.ChecksumErrors), daewoo.FrameErrChecksum.String())

	ch <- prometheus.MustNewConstMetric(c.warnings, prometheus.CounterValue, float64(s.UnknownCodes), "unknown_code")
	ch <- prometheus.MustNewConstMetric(c.warnings, prometheus.CounterValue, float64(s.OutOfRangeTemps), "out_of_range")

	ch <- prometheus.MustNewConstMetric(c.skippedBytes, prometheus.CounterValue, float64(s.SkippedBytes))
}

// compile-time check that a bridge can feed the collector
var _ StatisticsSource = (*bridge.Bridge)(nil)
