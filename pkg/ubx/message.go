// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"encoding/binary"
	"fmt"
)

// Kind identifies a decoded message variant.
type Kind int

const (
	// KindNone is the zero value. Next never returns a message of this kind.
	KindNone Kind = iota
	KindNavPosLLH
	KindNavStatus
	KindNavDOP
)

// String returns the diagnostic label for a kind
func (k Kind) String() string {
	switch k {
	case KindNavPosLLH:
		return "NAV-POSLLH"
	case KindNavStatus:
		return "NAV-STATUS"
	case KindNavDOP:
		return "NAV-DOP"
	case KindNone:
		return "NONE"
	default:
		return "unknown"
	}
}

// ParseKind maps a short name (as used on the command line) to a kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "status", "nav-status", "NAV-STATUS":
		return KindNavStatus, nil
	case "position", "posllh", "nav-posllh", "NAV-POSLLH":
		return KindNavPosLLH, nil
	case "dop", "nav-dop", "NAV-DOP":
		return KindNavDOP, nil
	}
	return KindNone, fmt.Errorf("unknown message kind %q (use status, position or dop)", s)
}

// Message is a decoded UBX message.
type Message interface {
	Kind() Kind
}

// Header is the first four bytes of every record.
type Header struct {
	Class  uint8
	ID     uint8
	Length uint16 // payload length as sent by the receiver
}

func parseHeader(rec []byte) Header {
	return Header{
		Class:  rec[0],
		ID:     rec[1],
		Length: binary.LittleEndian.Uint16(rec[2:4]),
	}
}

func putHeader(rec []byte, class, id uint8) {
	rec[0] = class
	rec[1] = id
	binary.LittleEndian.PutUint16(rec[2:4], uint16(len(rec)-headerLen))
}

// NavPosLLH is the geodetic position solution (NAV-POSLLH).
type NavPosLLH struct {
	Header
	ITOW   uint32 // GPS time of week, ms
	Lon    int32  // 1e-7 deg
	Lat    int32  // 1e-7 deg
	Height int32  // above ellipsoid, mm
	HMSL   int32  // above mean sea level, mm
	HAcc   uint32 // horizontal accuracy estimate, mm
	VAcc   uint32 // vertical accuracy estimate, mm
}

func (m *NavPosLLH) Kind() Kind { return KindNavPosLLH }

// LonDegrees returns the longitude in decimal degrees.
func (m *NavPosLLH) LonDegrees() float64 { return float64(m.Lon) * 1e-7 }

// LatDegrees returns the latitude in decimal degrees.
func (m *NavPosLLH) LatDegrees() float64 { return float64(m.Lat) * 1e-7 }

func decodeNavPosLLH(rec []byte) Message {
	p := rec[headerLen:]
	return &NavPosLLH{
		Header: parseHeader(rec),
		ITOW:   binary.LittleEndian.Uint32(p[0:4]),
		Lon:    int32(binary.LittleEndian.Uint32(p[4:8])),
		Lat:    int32(binary.LittleEndian.Uint32(p[8:12])),
		Height: int32(binary.LittleEndian.Uint32(p[12:16])),
		HMSL:   int32(binary.LittleEndian.Uint32(p[16:20])),
		HAcc:   binary.LittleEndian.Uint32(p[20:24]),
		VAcc:   binary.LittleEndian.Uint32(p[24:28]),
	}
}

// MarshalBinary encodes the message as a record (header + payload).
func (m *NavPosLLH) MarshalBinary() ([]byte, error) {
	rec := make([]byte, NavPosLLHSize)
	putHeader(rec, ClassNAV, IDNavPosLLH)
	p := rec[headerLen:]
	binary.LittleEndian.PutUint32(p[0:4], m.ITOW)
	binary.LittleEndian.PutUint32(p[4:8], uint32(m.Lon))
	binary.LittleEndian.PutUint32(p[8:12], uint32(m.Lat))
	binary.LittleEndian.PutUint32(p[12:16], uint32(m.Height))
	binary.LittleEndian.PutUint32(p[16:20], uint32(m.HMSL))
	binary.LittleEndian.PutUint32(p[20:24], m.HAcc)
	binary.LittleEndian.PutUint32(p[24:28], m.VAcc)
	return rec, nil
}

// NavStatus is the receiver navigation status (NAV-STATUS).
type NavStatus struct {
	Header
	ITOW    uint32
	GPSFix  FixType
	Flags   uint8
	FixStat uint8
	Flags2  uint8
	TTFF    uint32 // time to first fix, ms
	MSSS    uint32 // ms since startup
}

func (m *NavStatus) Kind() Kind { return KindNavStatus }

// FixOK reports whether the receiver flags the fix as valid (gpsFixOk).
func (m *NavStatus) FixOK() bool { return m.Flags&StatusFlagGPSFixOK != 0 }

func decodeNavStatus(rec []byte) Message {
	p := rec[headerLen:]
	return &NavStatus{
		Header:  parseHeader(rec),
		ITOW:    binary.LittleEndian.Uint32(p[0:4]),
		GPSFix:  FixType(p[4]),
		Flags:   p[5],
		FixStat: p[6],
		Flags2:  p[7],
		TTFF:    binary.LittleEndian.Uint32(p[8:12]),
		MSSS:    binary.LittleEndian.Uint32(p[12:16]),
	}
}

// MarshalBinary encodes the message as a record (header + payload).
func (m *NavStatus) MarshalBinary() ([]byte, error) {
	rec := make([]byte, NavStatusSize)
	putHeader(rec, ClassNAV, IDNavStatus)
	p := rec[headerLen:]
	binary.LittleEndian.PutUint32(p[0:4], m.ITOW)
	p[4] = uint8(m.GPSFix)
	p[5] = m.Flags
	p[6] = m.FixStat
	p[7] = m.Flags2
	binary.LittleEndian.PutUint32(p[8:12], m.TTFF)
	binary.LittleEndian.PutUint32(p[12:16], m.MSSS)
	return rec, nil
}

// NavDOP holds the dilution of precision values (NAV-DOP), scaled by 0.01.
type NavDOP struct {
	Header
	ITOW uint32
	GDOP uint16
	PDOP uint16
	TDOP uint16
	VDOP uint16
	HDOP uint16
	NDOP uint16
	EDOP uint16
}

func (m *NavDOP) Kind() Kind { return KindNavDOP }

// HorizontalDOP returns hDOP as a plain number.
func (m *NavDOP) HorizontalDOP() float64 { return float64(m.HDOP) * 0.01 }

func decodeNavDOP(rec []byte) Message {
	p := rec[headerLen:]
	return &NavDOP{
		Header: parseHeader(rec),
		ITOW:   binary.LittleEndian.Uint32(p[0:4]),
		GDOP:   binary.LittleEndian.Uint16(p[4:6]),
		PDOP:   binary.LittleEndian.Uint16(p[6:8]),
		TDOP:   binary.LittleEndian.Uint16(p[8:10]),
		VDOP:   binary.LittleEndian.Uint16(p[10:12]),
		HDOP:   binary.LittleEndian.Uint16(p[12:14]),
		NDOP:   binary.LittleEndian.Uint16(p[14:16]),
		EDOP:   binary.LittleEndian.Uint16(p[16:18]),
	}
}

// MarshalBinary encodes the message as a record (header + payload).
func (m *NavDOP) MarshalBinary() ([]byte, error) {
	rec := make([]byte, NavDOPSize)
	putHeader(rec, ClassNAV, IDNavDOP)
	p := rec[headerLen:]
	binary.LittleEndian.PutUint32(p[0:4], m.ITOW)
	binary.LittleEndian.PutUint16(p[4:6], m.GDOP)
	binary.LittleEndian.PutUint16(p[6:8], m.PDOP)
	binary.LittleEndian.PutUint16(p[8:10], m.TDOP)
	binary.LittleEndian.PutUint16(p[10:12], m.VDOP)
	binary.LittleEndian.PutUint16(p[12:14], m.HDOP)
	binary.LittleEndian.PutUint16(p[14:16], m.NDOP)
	binary.LittleEndian.PutUint16(p[16:18], m.EDOP)
	return rec, nil
}
