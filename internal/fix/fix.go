// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package fix assembles position fixes from the NAV message stream and keeps
// the most recent one for concurrent readers.
package fix

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

// ErrNoFix is returned by Collect when the receiver reports no usable fix.
var ErrNoFix = errors.New("receiver has no valid fix")

// Fix holds one position solution built from a NAV-STATUS, NAV-POSLLH and
// NAV-DOP triple.
type Fix struct {
	Type     ubx.FixType `json:"fixType"`
	OK       bool        `json:"fixOk"`
	ITOW     uint32      `json:"iTOW"`     // GPS time of week of the position, ms
	Lon      int32       `json:"lon"`      // 1e-7 deg
	Lat      int32       `json:"lat"`      // 1e-7 deg
	Height   int32       `json:"height"`   // mm above ellipsoid
	HMSL     int32       `json:"hMSL"`     // mm above mean sea level
	HAcc     uint32      `json:"hAcc"`     // mm
	VAcc     uint32      `json:"vAcc"`     // mm
	HDOP     uint16      `json:"hDOP"`     // 0.01
	Captured time.Time   `json:"captured"` // local time the fix was completed
}

// Longitude returns the longitude in decimal degrees.
func (f *Fix) Longitude() float64 { return float64(f.Lon) / 1e7 }

// Latitude returns the latitude in decimal degrees.
func (f *Fix) Latitude() float64 { return float64(f.Lat) / 1e7 }

// Altitude returns the height above mean sea level in meters.
func (f *Fix) Altitude() float64 { return float64(f.HMSL) / 1000 }

// HorizontalDOP returns hDOP as a plain number.
func (f *Fix) HorizontalDOP() float64 { return float64(f.HDOP) / 100 }

func (f *Fix) String() string {
	return fmt.Sprintf("%s fix at %.7f, %.7f, %.1f m MSL (hAcc %.1f m, hDOP %.2f)",
		f.Type, f.Latitude(), f.Longitude(), f.Altitude(), float64(f.HAcc)/1000, f.HorizontalDOP())
}

// Collect waits for a NAV-STATUS and, if it reports a valid fix, for the
// following NAV-POSLLH and NAV-DOP. Without a valid fix it returns the status
// together with ErrNoFix so the caller can report what the receiver sees.
func Collect(ctx context.Context, d *ubx.Decoder) (*Fix, *ubx.NavStatus, error) {
	status, err := ubx.WaitStatusContext(ctx, d)
	if err != nil {
		return nil, nil, fmt.Errorf("waiting for NAV-STATUS: %w", err)
	}
	if !status.FixOK() {
		return nil, status, ErrNoFix
	}

	pos, err := ubx.WaitPositionContext(ctx, d)
	if err != nil {
		return nil, status, fmt.Errorf("waiting for NAV-POSLLH: %w", err)
	}

	dop, err := ubx.WaitDOPContext(ctx, d)
	if err != nil {
		return nil, status, fmt.Errorf("waiting for NAV-DOP: %w", err)
	}

	return Assemble(status, pos, dop, time.Now()), status, nil
}

// Assemble combines the three messages into a Fix.
func Assemble(status *ubx.NavStatus, pos *ubx.NavPosLLH, dop *ubx.NavDOP, captured time.Time) *Fix {
	return &Fix{
		Type:     status.GPSFix,
		OK:       status.FixOK(),
		ITOW:     pos.ITOW,
		Lon:      pos.Lon,
		Lat:      pos.Lat,
		Height:   pos.Height,
		HMSL:     pos.HMSL,
		HAcc:     pos.HAcc,
		VAcc:     pos.VAcc,
		HDOP:     dop.HDOP,
		Captured: captured,
	}
}

// Store holds the latest fix. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	latest *Fix
}

// Set replaces the stored fix.
func (s *Store) Set(f *Fix) {
	s.mu.Lock()
	s.latest = f
	s.mu.Unlock()
}

// Latest returns a copy of the stored fix, or false if none was set.
func (s *Store) Latest() (Fix, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Fix{}, false
	}
	return *s.latest, true
}

// Age returns how long ago the stored fix was captured.
func (s *Store) Age(now time.Time) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return 0, false
	}
	return now.Sub(s.latest.Captured), true
}
