// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package ubx decodes the u-blox UBX binary protocol from a raw serial byte
// stream.
//
// A UBX frame on the wire is
//
//	0xB5 0x62 | CLASS ID | LEN_LO LEN_HI PAYLOAD... | CK_A CK_B
//
// The decoder treats everything between the sync marker and the checksum as
// one record whose first two bytes are the type tag (class, id). The record
// size is taken from a fixed registry of supported message kinds rather than
// from the length field, so only registered kinds are ever decoded.
package ubx

// Sync marker
const (
	Sync1 = 0xB5
	Sync2 = 0x62
)

// Frame layout
const (
	syncLen   = 2
	tagLen    = 2
	headerLen = 4 // class, id, little-endian length
)

var syncBytes = [syncLen]byte{Sync1, Sync2}

// Message classes
const (
	ClassNAV  = 0x01
	ClassACK  = 0x05
	ClassCFG  = 0x06
	ClassNMEA = 0xF0
)

// NAV message IDs
const (
	IDNavPosLLH = 0x02
	IDNavStatus = 0x03
	IDNavDOP    = 0x04
	IDNavSol    = 0x06
	IDNavVelNED = 0x12
)

// CFG message IDs
const (
	IDCfgMsg  = 0x01
	IDCfgRate = 0x08
)

// Standard NMEA sentence IDs (class 0xF0), used when switching them off.
const (
	IDNmeaGGA = 0x00
	IDNmeaGLL = 0x01
	IDNmeaGSA = 0x02
	IDNmeaGSV = 0x03
	IDNmeaRMC = 0x04
	IDNmeaVTG = 0x05
)

// Record sizes including the 4-byte header.
const (
	NavPosLLHSize = headerLen + 28
	NavStatusSize = headerLen + 16
	NavDOPSize    = headerLen + 18
)

// NavStatus flag bits
const (
	StatusFlagGPSFixOK = 0x01
	StatusFlagDiffSoln = 0x02
	StatusFlagWKNSet   = 0x04
	StatusFlagTOWSet   = 0x08
)

// FixType is the gpsFix field of NAV-STATUS.
type FixType uint8

const (
	FixNone FixType = iota
	FixDeadReckoning
	Fix2D
	Fix3D
	FixGPSDeadReckoning
	FixTimeOnly
)

func (f FixType) String() string {
	switch f {
	case FixNone:
		return "no fix"
	case FixDeadReckoning:
		return "dead reckoning"
	case Fix2D:
		return "2D"
	case Fix3D:
		return "3D"
	case FixGPSDeadReckoning:
		return "GPS + dead reckoning"
	case FixTimeOnly:
		return "time only"
	default:
		return "invalid"
	}
}
