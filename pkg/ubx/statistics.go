// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames     uint64
	ValidFrames     uint64
	ChecksumErrors  uint64
	ChecksumAErrors uint64
	ChecksumBErrors uint64
	UnknownTypes    uint64
	Overruns        uint64
	Anomalies       uint64
	LengthMismatch  uint64
	InvalidFix      uint64
	InvalidPosition uint64
	HighDOP         uint64
	LowAccuracy     uint64

	// Decoded messages per kind
	ByKind map[Kind]uint64

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
		ByKind:         make(map[Kind]uint64),
	}
}

// Update updates statistics with one decoded message or one frame error.
func (s *Statistics) Update(msg Message, frameErr error, validationErrors []ValidationError) {
	s.TotalFrames++
	s.LastUpdateTime = time.Now()

	if frameErr != nil {
		switch {
		case errors.Is(frameErr, ErrChecksumA):
			s.ChecksumErrors++
			s.ChecksumAErrors++
		case errors.Is(frameErr, ErrChecksumB):
			s.ChecksumErrors++
			s.ChecksumBErrors++
		case errors.Is(frameErr, ErrUnknownType):
			s.UnknownTypes++
		default:
			s.Overruns++
		}
		return
	}

	if msg != nil {
		s.ByKind[msg.Kind()]++
	}

	if len(validationErrors) == 0 {
		s.ValidFrames++
		return
	}

	s.Anomalies++
	for _, err := range validationErrors {
		switch err.Type {
		case AnomalyLengthMismatch:
			s.LengthMismatch++
		case AnomalyInvalidFix:
			s.InvalidFix++
		case AnomalyInvalidPosition:
			s.InvalidPosition++
		case AnomalyHighDOP:
			s.HighDOP++
		case AnomalyLowAccuracy:
			s.LowAccuracy++
		}
	}
}

// ErrorCount returns the number of frames that were rejected or flagged.
// Unknown types are not counted: a receiver that was not configured sends them
// in normal operation.
func (s *Statistics) ErrorCount() uint64 {
	return s.ChecksumErrors + s.Overruns + s.Anomalies
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.ErrorCount()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, checksumPercent, unknownPercent, anomalyPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
		checksumPercent = float64(s.ChecksumErrors) * 100.0 / float64(s.TotalFrames)
		unknownPercent = float64(s.UnknownTypes) * 100.0 / float64(s.TotalFrames)
		anomalyPercent = float64(s.Anomalies) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	for _, k := range []Kind{KindNavStatus, KindNavPosLLH, KindNavDOP} {
		if n := s.ByKind[k]; n > 0 {
			result += fmt.Sprintf("  %-14s %6d\n", k.String()+":", n)
		}
	}

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, checksumPercent)
		result += fmt.Sprintf("  CK_A: %d, CK_B: %d\n", s.ChecksumAErrors, s.ChecksumBErrors)
	}
	if s.UnknownTypes > 0 {
		result += fmt.Sprintf("Unknown Types:   %8d (%.1f%%)\n", s.UnknownTypes, unknownPercent)
	}
	if s.Overruns > 0 {
		result += fmt.Sprintf("Overruns:        %8d\n", s.Overruns)
	}
	if s.Anomalies > 0 {
		result += fmt.Sprintf("Anomalies:       %8d (%.1f%%)\n", s.Anomalies, anomalyPercent)
		if s.LengthMismatch > 0 {
			result += fmt.Sprintf("  Length Mismatch:  %5d\n", s.LengthMismatch)
		}
		if s.InvalidFix > 0 {
			result += fmt.Sprintf("  Invalid Fix:      %5d\n", s.InvalidFix)
		}
		if s.InvalidPosition > 0 {
			result += fmt.Sprintf("  Invalid Position: %5d\n", s.InvalidPosition)
		}
		if s.HighDOP > 0 {
			result += fmt.Sprintf("  High DOP:         %5d\n", s.HighDOP)
		}
		if s.LowAccuracy > 0 {
			result += fmt.Sprintf("  Low Accuracy:     %5d\n", s.LowAccuracy)
		}
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
