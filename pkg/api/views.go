// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package api

import (
	"github.com/Thermoquad/aerostat/pkg/bridge"
	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// StateView is the JSON form of the climate model
type StateView struct {
	Mode               string `json:"mode"`
	FanMode            string `json:"fan_mode"`
	SwingMode          string `json:"swing_mode"`
	CurrentTemperature int    `json:"current_temperature"`
	TargetTemperature  int    `json:"target_temperature"`
	VerticalVane       string `json:"vertical_vane"`
	VerticalVaneLabel  string `json:"vertical_vane_label"`
	HorizontalSwing    bool   `json:"horizontal_swing_on"`
	Display            bool   `json:"display_on"`
	UVLight            bool   `json:"uv_light_on"`
}

// NewStateView converts a model snapshot
func NewStateView(s bridge.State) StateView {
	return StateView{
		Mode:               s.Mode.String(),
		FanMode:            s.FanMode.String(),
		SwingMode:          s.SwingMode().String(),
		CurrentTemperature: s.CurrentTemperature,
		TargetTemperature:  s.TargetTemperature,
		VerticalVane:       s.VerticalVane.String(),
		VerticalVaneLabel:  s.VaneLabel,
		HorizontalSwing:    s.HorizontalSwing,
		Display:            s.Display,
		UVLight:            s.UVLight,
	}
}

// TraitsView is the JSON form of the entity traits
type TraitsView struct {
	Modes              []string `json:"modes"`
	FanModes           []string `json:"fan_modes"`
	SwingModes         []string `json:"swing_modes"`
	VaneOptions        []string `json:"vertical_vane_options"`
	VisualMinimum      int      `json:"visual_min_temperature"`
	VisualMaximum      int      `json:"visual_max_temperature"`
	VisualStep         float64  `json:"visual_temperature_step"`
	MinimumTarget      int      `json:"min_target_temperature"`
	MaximumTarget      int      `json:"max_target_temperature"`
	SupportsCurrentTmp bool     `json:"supports_current_temperature"`
}

// NewTraitsView converts entity traits
func NewTraitsView(t bridge.Traits, vaneOptions []string) TraitsView {
	v := TraitsView{
		VaneOptions:        vaneOptions,
		VisualMinimum:      t.VisualMinimum,
		VisualMaximum:      t.VisualMaximum,
		VisualStep:         t.VisualStep,
		MinimumTarget:      t.MinimumTarget,
		MaximumTarget:      t.MaximumTarget,
		SupportsCurrentTmp: t.SupportsCurrentTmp,
	}
	for _, m := range t.Modes {
		v.Modes = append(v.Modes, m.String())
	}
	for _, f := range t.FanModes {
		v.FanModes = append(v.FanModes, f.String())
	}
	for _, s := range t.SwingModes {
		v.SwingModes = append(v.SwingModes, s.String())
	}
	return v
}

// ChangeView is one queued edit
type ChangeView struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// StatisticsView is the JSON form of the link statistics
type StatisticsView struct {
	TotalFrames        uint64  `json:"total_frames"`
	ValidFrames        uint64  `json:"valid_frames"`
	FrameErrors        uint64  `json:"frame_errors"`
	LengthMismatches   uint64  `json:"length_mismatches"`
	BadSyncBytes       uint64  `json:"bad_sync_bytes"`
	BadDeclaredLengths uint64  `json:"bad_declared_lengths"`
	ChecksumErrors     uint64  `json:"checksum_errors"`
	FieldWarnings      uint64  `json:"field_warnings"`
	SkippedBytes       uint64  `json:"skipped_bytes"`
	FrameRate          float64 `json:"frame_rate"`
	ErrorRate          float64 `json:"error_rate"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
}

// NewStatisticsView converts link statistics
func NewStatisticsView(s daewoo.Statistics) StatisticsView {
	return StatisticsView{
		TotalFrames:        s.TotalFrames,
		ValidFrames:        s.ValidFrames,
		FrameErrors:        s.FrameErrors,
		LengthMismatches:   s.LengthMismatches,
		BadSyncBytes:       s.BadSyncBytes,
		BadDeclaredLengths: s.BadDeclaredLengths,
		ChecksumErrors:     s.ChecksumErrors,
		FieldWarnings:      s.FieldWarnings,
		SkippedBytes:       s.SkippedBytes,
		FrameRate:          s.FrameRate,
		ErrorRate:          s.ErrorRate,
		UptimeSeconds:      s.LastUpdateTime.Sub(s.StartTime).Seconds(),
	}
}
