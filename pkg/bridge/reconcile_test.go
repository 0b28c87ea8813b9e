// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// ============================================================
// Reconcile Tests
// ============================================================

func TestReconcile_QuietOverridesFan(t *testing.T) {
	r := coolRecord()
	r.Flags1 |= daewoo.FlagQuiet
	r.Fan = daewoo.FanCodeMedium

	s, changes, warns := Reconcile(DefaultState(), DefaultVaneLabels, r)
	assert.Empty(t, warns)
	assert.Equal(t, FanQuiet, s.FanMode)
	assert.Equal(t, ModeCool, s.Mode)
	assert.True(t, changes.Has(ChangedFanMode|ChangedMode))
}

func TestReconcile_QuietMasksUnknownFan(t *testing.T) {
	r := coolRecord()
	r.Flags1 |= daewoo.FlagQuiet
	r.Fan = 0x0F

	s, _, warns := Reconcile(DefaultState(), DefaultVaneLabels, r)
	assert.Empty(t, warns)
	assert.Equal(t, FanQuiet, s.FanMode)
}

func TestReconcile_PowerAndMode(t *testing.T) {
	tests := []struct {
		name    string
		power   byte
		mode    byte
		want    Mode
		warning bool
	}{
		{"off ignores mode", daewoo.PowerOff, 0x09, ModeOff, false},
		{"auto", daewoo.PowerOn, daewoo.ModeCodeAuto, ModeAuto, false},
		{"cool", daewoo.PowerOn, daewoo.ModeCodeCool, ModeCool, false},
		{"dry", daewoo.PowerOn, daewoo.ModeCodeDry, ModeDry, false},
		{"heat", daewoo.PowerOn, daewoo.ModeCodeHeat, ModeHeat, false},
		{"fan only", daewoo.PowerOn, daewoo.ModeCodeFanOnly, ModeFanOnly, false},
		{"unknown mode keeps previous", daewoo.PowerOn, 0x05, ModeHeat, true},
		{"unknown power keeps previous", 0x02, daewoo.ModeCodeCool, ModeHeat, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := DefaultState()
			prev.Mode = ModeHeat
			r := coolRecord()
			r.Power = tt.power
			r.Mode = tt.mode

			s, _, warns := Reconcile(prev, DefaultVaneLabels, r)
			assert.Equal(t, tt.want, s.Mode)
			assert.Equal(t, tt.warning, len(warns) == 1, "warnings: %v", warns)
		})
	}
}

func TestReconcile_VaneReverseMapping(t *testing.T) {
	tests := []struct {
		code byte
		want VanePosition
	}{
		{0x00, VaneSwing},
		{0x01, VaneDown},
		{0x02, VaneMediumDown},
		{0x03, VaneMedium},
		{0x04, VaneUpMedium},
		{0x05, VaneUp},
		{0x06, VaneStatic},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			r := coolRecord()
			r.VerticalVane = tt.code
			s, _, warns := Reconcile(DefaultState(), DefaultVaneLabels, r)
			require.Empty(t, warns)
			assert.Equal(t, tt.want, s.VerticalVane)
			assert.Equal(t, DefaultVaneLabels[tt.want], s.VaneLabel)
			assert.Equal(t, tt.code, tt.want.Code())
		})
	}
}

func TestReconcile_InvalidFieldsKeepPrevious(t *testing.T) {
	prev := DefaultState()
	r := coolRecord()
	r.VerticalVane = 0x07
	r.Fan = 0x04
	r.TargetTemperature = 40
	r.CurrentTemperature = 9
	r.Flags1 = daewoo.FlagUVLight

	s, changes, warns := Reconcile(prev, DefaultVaneLabels, r)
	assert.Len(t, warns, 4)

	assert.Equal(t, prev.VerticalVane, s.VerticalVane)
	assert.Equal(t, prev.FanMode, s.FanMode)
	assert.Equal(t, prev.TargetTemperature, s.TargetTemperature)
	assert.Equal(t, prev.CurrentTemperature, s.CurrentTemperature)

	// valid fields in the same record still apply
	assert.Equal(t, ModeCool, s.Mode)
	assert.True(t, s.UVLight)
	assert.False(t, s.Display)
	assert.Equal(t, ChangedMode|ChangedUVLight|ChangedDisplay, changes)
}

func TestReconcile_NoChange(t *testing.T) {
	s, changes, _ := Reconcile(DefaultState(), DefaultVaneLabels, coolRecord())
	again, changes2, _ := Reconcile(s, DefaultVaneLabels, coolRecord())
	assert.True(t, changes.Any())
	assert.False(t, changes2.Any())
	assert.Equal(t, "none", changes2.String())
	assert.Equal(t, s, again)
}

func TestReconcile_TemperatureBounds(t *testing.T) {
	r := coolRecord()
	r.TargetTemperature = 16
	r.CurrentTemperature = 40
	s, _, warns := Reconcile(DefaultState(), DefaultVaneLabels, r)
	assert.Empty(t, warns)
	assert.Equal(t, 16, s.TargetTemperature)
	assert.Equal(t, 40, s.CurrentTemperature)

	r.TargetTemperature = 32
	r.CurrentTemperature = 10
	s, _, warns = Reconcile(DefaultState(), DefaultVaneLabels, r)
	assert.Empty(t, warns)
	assert.Equal(t, 32, s.TargetTemperature)
	assert.Equal(t, 10, s.CurrentTemperature)
}

func TestChanges_String(t *testing.T) {
	assert.Equal(t, "mode,target_temperature", (ChangedMode | ChangedTargetTemperature).String())
	assert.True(t, ChangedHorizontalSwing.SwingModeChanged())
	assert.False(t, ChangedDisplay.SwingModeChanged())
}

// ============================================================
// Swing Derivation Tests
// ============================================================

func TestDeriveSwingMode(t *testing.T) {
	assert.Equal(t, SwingOff, DeriveSwingMode(false, false))
	assert.Equal(t, SwingVertical, DeriveSwingMode(true, false))
	assert.Equal(t, SwingHorizontal, DeriveSwingMode(false, true))
	assert.Equal(t, SwingBoth, DeriveSwingMode(true, true))
}

func TestStateSwingMode(t *testing.T) {
	s := DefaultState()
	assert.Equal(t, SwingOff, s.SwingMode())
	s.HorizontalSwing = true
	assert.Equal(t, SwingHorizontal, s.SwingMode())
	s.VerticalVane = VaneSwing
	assert.Equal(t, SwingBoth, s.SwingMode())
}

// ============================================================
// Enum Tests
// ============================================================

func TestParseEnums(t *testing.T) {
	m, ok := ParseMode("fan_only")
	assert.True(t, ok)
	assert.Equal(t, ModeFanOnly, m)

	f, ok := ParseFanMode(" high ")
	assert.True(t, ok)
	assert.Equal(t, FanHigh, f)

	s, ok := ParseSwingMode("3")
	assert.True(t, ok)
	assert.Equal(t, SwingBoth, s)

	_, ok = ParseSwingMode("sideways")
	assert.False(t, ok)

	assert.Equal(t, "UNKNOWN(9)", Mode(9).String())
	assert.False(t, Mode(9).Known())
	assert.Equal(t, "MEDIUM_DOWN", VaneMediumDown.String())
	assert.Equal(t, byte(daewoo.VaneCodeStatic), VanePosition(12).Code())
}

func TestVaneLabels(t *testing.T) {
	labels := DefaultVaneLabels.withOptions([]string{"A", "B"})
	assert.Equal(t, "A", labels[VaneSwing])
	assert.Equal(t, "B", labels[VaneUp])
	assert.Equal(t, "Static", labels[VaneStatic])

	pos, ok := labels.Lookup("B")
	assert.True(t, ok)
	assert.Equal(t, VaneUp, pos)

	_, ok = labels.Lookup("Up")
	assert.False(t, ok)

	assert.Equal(t, "", labels.Label(VanePosition(-1)))
	assert.Len(t, labels.Options(), VanePositionCount)
}
