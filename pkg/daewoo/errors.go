// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel frame errors, matchable with errors.Is
var (
	ErrLengthMismatch    = errors.New("frame length mismatch")
	ErrBadSyncByte       = errors.New("bad sync byte")
	ErrBadDeclaredLength = errors.New("bad declared length")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
)

// FrameErrorKind identifies which framing check rejected a frame
type FrameErrorKind int

const (
	FrameErrLength FrameErrorKind = iota
	FrameErrSync
	FrameErrDeclaredLength
	FrameErrChecksum
)

// String returns the kind name
func (k FrameErrorKind) String() string {
	switch k {
	case FrameErrLength:
		return "LENGTH_MISMATCH"
	case FrameErrSync:
		return "BAD_SYNC_BYTE"
	case FrameErrDeclaredLength:
		return "BAD_DECLARED_LENGTH"
	case FrameErrChecksum:
		return "CHECKSUM_MISMATCH"
	default:
		return "UNKNOWN"
	}
}

// FrameError describes a rejected inbound frame
type FrameError struct {
	Kind     FrameErrorKind
	Expected int
	Got      int
	Message  string
}

func newFrameError(kind FrameErrorKind, expected, got int, format string, args ...interface{}) *FrameError {
	return &FrameError{
		Kind:     kind,
		Expected: expected,
		Got:      got,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (e *FrameError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel for the error kind
func (e *FrameError) Unwrap() error {
	switch e.Kind {
	case FrameErrLength:
		return ErrLengthMismatch
	case FrameErrSync:
		return ErrBadSyncByte
	case FrameErrDeclaredLength:
		return ErrBadDeclaredLength
	case FrameErrChecksum:
		return ErrChecksumMismatch
	}
	return nil
}
