// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import "fmt"

// AnomalyType represents different types of message anomalies
type AnomalyType int

const (
	AnomalyLengthMismatch AnomalyType = iota
	AnomalyInvalidFix
	AnomalyInvalidPosition
	AnomalyHighDOP
	AnomalyLowAccuracy
)

// Validation limits
const (
	maxLatitude  = 90 * 1e7
	maxLongitude = 180 * 1e7
	maxDOP       = 9999          // 99.99
	maxAccuracy  = 1_000_000_000 // 1000 km in mm
)

// ValidationError represents a message validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateMessage checks a decoded message for values a healthy receiver does
// not produce. Returns an empty slice if the message is valid.
func ValidateMessage(m Message) []ValidationError {
	errors := []ValidationError{}

	switch msg := m.(type) {
	case *NavPosLLH:
		errors = append(errors, validateLength(msg.Kind(), msg.Header, NavPosLLHSize)...)
		errors = append(errors, validatePosLLH(msg)...)
	case *NavStatus:
		errors = append(errors, validateLength(msg.Kind(), msg.Header, NavStatusSize)...)
		if msg.GPSFix > FixTimeOnly {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidFix,
				Message: fmt.Sprintf("Invalid gpsFix=%d (max %d)", msg.GPSFix, FixTimeOnly),
				Details: map[string]interface{}{"gps_fix": uint8(msg.GPSFix), "max": uint8(FixTimeOnly)},
			})
		}
	case *NavDOP:
		errors = append(errors, validateLength(msg.Kind(), msg.Header, NavDOPSize)...)
		errors = append(errors, validateDOP(msg)...)
	}

	return errors
}

// validateLength compares the length field sent by the receiver with the
// registered record size.
func validateLength(k Kind, h Header, size int) []ValidationError {
	expected := size - headerLen
	if int(h.Length) == expected {
		return nil
	}
	return []ValidationError{{
		Type:    AnomalyLengthMismatch,
		Message: fmt.Sprintf("%s length field mismatch (expected %d bytes)", k, expected),
		Details: map[string]interface{}{"received": int(h.Length), "expected": expected},
	}}
}

func validatePosLLH(m *NavPosLLH) []ValidationError {
	errors := []ValidationError{}

	if m.Lat > maxLatitude || m.Lat < -maxLatitude {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidPosition,
			Message: fmt.Sprintf("Latitude out of range (%.7f°)", m.LatDegrees()),
			Details: map[string]interface{}{"lat": m.Lat},
		})
	}
	if m.Lon > maxLongitude || m.Lon < -maxLongitude {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidPosition,
			Message: fmt.Sprintf("Longitude out of range (%.7f°)", m.LonDegrees()),
			Details: map[string]interface{}{"lon": m.Lon},
		})
	}
	if m.HAcc > maxAccuracy || m.VAcc > maxAccuracy {
		errors = append(errors, ValidationError{
			Type:    AnomalyLowAccuracy,
			Message: fmt.Sprintf("Accuracy estimate implausible (h=%d mm, v=%d mm)", m.HAcc, m.VAcc),
			Details: map[string]interface{}{"h_acc": m.HAcc, "v_acc": m.VAcc},
		})
	}

	return errors
}

func validateDOP(m *NavDOP) []ValidationError {
	errors := []ValidationError{}

	values := []struct {
		name string
		v    uint16
	}{
		{"gDOP", m.GDOP}, {"pDOP", m.PDOP}, {"tDOP", m.TDOP}, {"vDOP", m.VDOP},
		{"hDOP", m.HDOP}, {"nDOP", m.NDOP}, {"eDOP", m.EDOP},
	}
	for _, dop := range values {
		if dop.v > maxDOP {
			errors = append(errors, ValidationError{
				Type:    AnomalyHighDOP,
				Message: fmt.Sprintf("%s above 99.99 (%s)", dop.name, formatDOP(dop.v)),
				Details: map[string]interface{}{"field": dop.name, "value": dop.v},
			})
		}
	}

	return errors
}
