// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"strconv"

	"github.com/Thermoquad/aerostat/pkg/daewoo"
)

// VanePosition is a vertical vane position in display order, top to bottom
type VanePosition int

const (
	VaneSwing VanePosition = iota
	VaneUp
	VaneUpMedium
	VaneMedium
	VaneMediumDown
	VaneDown
	VaneStatic
)

// VanePositionCount is the number of vertical vane positions
const VanePositionCount = 7

var vanePositionNames = [VanePositionCount]string{"SWING", "UP", "UP_MEDIUM", "MEDIUM", "MEDIUM_DOWN", "DOWN", "STATIC"}

// String returns the position name
func (v VanePosition) String() string {
	if v.Valid() {
		return vanePositionNames[v]
	}
	return "UNKNOWN(" + strconv.Itoa(int(v)) + ")"
}

// Valid reports whether v is one of the seven positions
func (v VanePosition) Valid() bool {
	return v >= VaneSwing && v <= VaneStatic
}

// The device numbers the vane from the bottom up, so UP and DOWN are swapped
// relative to VanePosition order.
var vaneCodes = [VanePositionCount]byte{
	VaneSwing:      daewoo.VaneCodeSwing,
	VaneUp:         daewoo.VaneCodeUp,
	VaneUpMedium:   daewoo.VaneCodeUpMedium,
	VaneMedium:     daewoo.VaneCodeMedium,
	VaneMediumDown: daewoo.VaneCodeMediumDown,
	VaneDown:       daewoo.VaneCodeDown,
	VaneStatic:     daewoo.VaneCodeStatic,
}

// Code returns the wire code for v. Out of range positions encode as static.
func (v VanePosition) Code() byte {
	if !v.Valid() {
		return daewoo.VaneCodeStatic
	}
	return vaneCodes[v]
}

// VanePositionFromCode maps a wire code to a position
func VanePositionFromCode(code byte) (VanePosition, bool) {
	for pos, c := range vaneCodes {
		if c == code {
			return VanePosition(pos), true
		}
	}
	return 0, false
}

// VaneLabels holds the user-facing label of each vane position
type VaneLabels [VanePositionCount]string

// DefaultVaneLabels are used for any position not configured at setup
var DefaultVaneLabels = VaneLabels{"Swing", "Up", "Up & Medium", "Medium", "Medium & Down", "Down", "Static"}

// Label returns the label for v, or the empty string when v is out of range
func (l VaneLabels) Label(v VanePosition) string {
	if !v.Valid() {
		return ""
	}
	return l[v]
}

// Lookup finds the position carrying label
func (l VaneLabels) Lookup(label string) (VanePosition, bool) {
	for i, s := range l {
		if s == label {
			return VanePosition(i), true
		}
	}
	return 0, false
}

// Options returns the labels as a slice, in position order
func (l VaneLabels) Options() []string {
	out := make([]string, len(l))
	copy(out, l[:])
	return out
}

// withOptions overlays options onto l. A short list leaves the remaining
// slots untouched and extra entries are dropped.
func (l VaneLabels) withOptions(options []string) VaneLabels {
	copy(l[:], options)
	return l
}
