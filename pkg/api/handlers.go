// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Thermoquad/aerostat/pkg/bridge"
)

// ControlRequest is a climate control call. Omitted fields are left alone.
// Enum fields take a name (any case) or the integer value.
type ControlRequest struct {
	Mode              *string  `json:"mode"`
	TargetTemperature *float64 `json:"target_temperature"`
	FanMode           *string  `json:"fan_mode"`
	SwingMode         *string  `json:"swing_mode"`
}

// SwitchRequest turns a switch on or off
type SwitchRequest struct {
	On *bool `json:"on" binding:"required"`
}

// VaneRequest selects a vertical vane label
type VaneRequest struct {
	Label string `json:"label" binding:"required"`
}

// ChangeRequest queues a raw UI edit
type ChangeRequest struct {
	Property string `json:"property" binding:"required"`
	Value    string `json:"value"`
}

// ClimateHandler exposes one bridge over HTTP
type ClimateHandler struct {
	bridge   *bridge.Bridge
	switches map[string]*bridge.Switch
	vane     *bridge.VaneSelect
}

// NewClimateHandler builds a handler for b. The vane select must belong to b.
func NewClimateHandler(b *bridge.Bridge, vane *bridge.VaneSelect) *ClimateHandler {
	return &ClimateHandler{
		bridge: b,
		switches: map[string]*bridge.Switch{
			"display":          bridge.NewSwitch(b, bridge.SwitchDisplay),
			"uv_light":         bridge.NewSwitch(b, bridge.SwitchUVLight),
			"horizontal_swing": bridge.NewSwitch(b, bridge.SwitchHorizontalSwing),
		},
		vane: vane,
	}
}

// GetState returns the climate model
func (h *ClimateHandler) GetState(c *gin.Context) {
	ok(c, NewStateView(h.bridge.State()))
}

// GetTraits returns what the climate entity supports
func (h *ClimateHandler) GetTraits(c *gin.Context) {
	ok(c, NewTraitsView(h.bridge.Traits(), h.vane.Options()))
}

// Control applies a climate call
func (h *ClimateHandler) Control(c *gin.Context) {
	var req ControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid control request", err)
		return
	}

	var call bridge.Call
	if req.Mode != nil {
		m, parsed := bridge.ParseMode(*req.Mode)
		if !parsed || !m.Known() {
			fail(c, http.StatusBadRequest, fmt.Sprintf("unsupported mode %q", *req.Mode), nil)
			return
		}
		call = call.SetMode(m)
	}
	if req.TargetTemperature != nil {
		call = call.SetTargetTemperature(*req.TargetTemperature)
	}
	if req.FanMode != nil {
		f, parsed := bridge.ParseFanMode(*req.FanMode)
		if !parsed || !f.Known() {
			fail(c, http.StatusBadRequest, fmt.Sprintf("unsupported fan mode %q", *req.FanMode), nil)
			return
		}
		call = call.SetFanMode(f)
	}
	if req.SwingMode != nil {
		s, parsed := bridge.ParseSwingMode(*req.SwingMode)
		if !parsed || s < bridge.SwingOff || s > bridge.SwingBoth {
			fail(c, http.StatusBadRequest, fmt.Sprintf("unsupported swing mode %q", *req.SwingMode), nil)
			return
		}
		call = call.SetSwingMode(s)
	}

	h.bridge.Control(call)
	ok(c, NewStateView(h.bridge.State()))
}

// SetSwitch writes the switch named by the :name path parameter
func (h *ClimateHandler) SetSwitch(c *gin.Context) {
	sw, found := h.switches[c.Param("name")]
	if !found {
		fail(c, http.StatusNotFound, fmt.Sprintf("unknown switch %q", c.Param("name")), nil)
		return
	}

	var req SwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid switch request", err)
		return
	}

	// The unit or another client may have moved the switch since the last
	// request; dedup must compare against the live value
	sw.Sync()
	sw.Write(*req.On)
	ok(c, gin.H{"name": c.Param("name"), "on": sw.State()})
}

// SelectVane moves the vertical vane to a label
func (h *ClimateHandler) SelectVane(c *gin.Context) {
	var req VaneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid vane request", err)
		return
	}

	h.vane.Select(req.Label)
	ok(c, gin.H{"label": h.vane.State()})
}

// QueueChange queues a raw property edit for the next command frame
func (h *ClimateHandler) QueueChange(c *gin.Context) {
	var req ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid change request", err)
		return
	}

	h.bridge.EnqueueUIChange(req.Property, req.Value)
	c.JSON(http.StatusAccepted, Response{Code: 0, Msg: "queued", Data: gin.H{"pending": h.bridge.QueueLen()}})
}

// GetPendingChanges lists the queued edits
func (h *ClimateHandler) GetPendingChanges(c *gin.Context) {
	pending := h.bridge.PendingChanges()
	views := make([]ChangeView, 0, len(pending))
	for _, p := range pending {
		views = append(views, ChangeView{Property: p.Property(), Value: p.Value()})
	}
	ok(c, views)
}

// GetStatistics returns the link statistics
func (h *ClimateHandler) GetStatistics(c *gin.Context) {
	ok(c, NewStatisticsView(h.bridge.Statistics()))
}
