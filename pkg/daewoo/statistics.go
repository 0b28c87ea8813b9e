// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Statistics tracks frame statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames        uint64
	ValidFrames        uint64
	FrameErrors        uint64
	LengthMismatches   uint64
	BadSyncBytes       uint64
	BadDeclaredLengths uint64
	ChecksumErrors     uint64
	FieldWarnings      uint64
	UnknownCodes       uint64
	OutOfRangeTemps    uint64
	SkippedBytes       uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics based on one complete frame and its outcome
func (s *Statistics) Update(packet *Packet, decodeErr error, warnings []FieldWarning) {
	s.TotalFrames++

	if decodeErr != nil {
		s.FrameErrors++
		var fe *FrameError
		if errors.As(decodeErr, &fe) {
			switch fe.Kind {
			case FrameErrLength:
				s.LengthMismatches++
			case FrameErrSync:
				s.BadSyncBytes++
			case FrameErrDeclaredLength:
				s.BadDeclaredLengths++
			case FrameErrChecksum:
				s.ChecksumErrors++
			}
		}
		return
	}

	if len(warnings) > 0 {
		for _, w := range warnings {
			s.FieldWarnings++
			switch w.Kind {
			case WarningTargetOutOfRange, WarningCurrentOutOfRange:
				s.OutOfRangeTemps++
			default:
				s.UnknownCodes++
			}
		}
	} else {
		s.ValidFrames++
	}

	s.LastUpdateTime = time.Now()
}

// SetSkippedBytes records the decoder's sync-hunt discard count
func (s *Statistics) SetSkippedBytes(n uint64) {
	s.SkippedBytes = n
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.FrameErrors+s.FieldWarnings) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, frameErrorPercent, warningPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
		frameErrorPercent = float64(s.FrameErrors) * 100.0 / float64(s.TotalFrames)
		warningPercent = float64(s.FieldWarnings) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	if s.FrameErrors > 0 {
		result += fmt.Sprintf("Frame Errors:    %8d (%.1f%%)\n", s.FrameErrors, frameErrorPercent)
		if s.LengthMismatches > 0 {
			result += fmt.Sprintf("  Length Mismatch:  %5d\n", s.LengthMismatches)
		}
		if s.BadSyncBytes > 0 {
			result += fmt.Sprintf("  Bad Sync Byte:    %5d\n", s.BadSyncBytes)
		}
		if s.BadDeclaredLengths > 0 {
			result += fmt.Sprintf("  Bad Length Byte:  %5d\n", s.BadDeclaredLengths)
		}
		if s.ChecksumErrors > 0 {
			result += fmt.Sprintf("  Checksum:         %5d\n", s.ChecksumErrors)
		}
	}
	if s.FieldWarnings > 0 {
		result += fmt.Sprintf("Field Warnings:  %8d (%.1f%%)\n", s.FieldWarnings, warningPercent)
		if s.UnknownCodes > 0 {
			result += fmt.Sprintf("  Unknown Codes:    %5d\n", s.UnknownCodes)
		}
		if s.OutOfRangeTemps > 0 {
			result += fmt.Sprintf("  Temp Range:       %5d\n", s.OutOfRangeTemps)
		}
	}
	if s.SkippedBytes > 0 {
		result += fmt.Sprintf("Skipped Bytes:   %8d\n", s.SkippedBytes)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset clears all statistics
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
