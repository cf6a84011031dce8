// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package uplink packs fixes into the fixed 31-byte tracker payload and into
// CBOR for the WebSocket feed.
package uplink

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/Thermoquad/ubxstat/internal/fix"
	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

// PayloadSize is the length of a packed tracker payload.
const PayloadSize = 31

// Payload offsets
const (
	offFixType = 0
	offLon     = 1
	offLat     = 5
	offHeight  = 9
	offHAcc    = 13
	offVAcc    = 17
	offNegLon  = 21
	offNegLat  = 22
	offHDOP    = 23
	offHMSL    = 25
	offFixOK   = 29
)

// Pack writes a fix into the tracker payload. All multi-byte values are
// little-endian; coordinates keep their sign and the two sign flags are set
// as well.
func Pack(f *fix.Fix) []byte {
	buf := make([]byte, PayloadSize)
	buf[offFixType] = uint8(f.Type)
	binary.LittleEndian.PutUint32(buf[offLon:], uint32(f.Lon))
	binary.LittleEndian.PutUint32(buf[offLat:], uint32(f.Lat))
	binary.LittleEndian.PutUint32(buf[offHeight:], uint32(f.Height))
	binary.LittleEndian.PutUint32(buf[offHAcc:], f.HAcc)
	binary.LittleEndian.PutUint32(buf[offVAcc:], f.VAcc)
	if f.Lon < 0 {
		buf[offNegLon] = 1
	}
	if f.Lat < 0 {
		buf[offNegLat] = 1
	}
	binary.LittleEndian.PutUint16(buf[offHDOP:], f.HDOP)
	binary.LittleEndian.PutUint32(buf[offHMSL:], uint32(f.HMSL))
	if f.OK {
		buf[offFixOK] = 1
	}
	return buf
}

// Decoded is the network-side view of a tracker payload.
type Decoded struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`  // m above ellipsoid
	Accuracy  uint32  `json:"accuracy"`  // horizontal, mm
	VAccuracy uint32  `json:"vaccuracy"` // vertical, mm
	Sats      uint8   `json:"sats"`      // fix type, not a satellite count
	HDOP      float64 `json:"hdop"`
	MSL       float64 `json:"msl"` // m above mean sea level
	FixOK     bool    `json:"fixok"`
}

// Unpack decodes a tracker payload.
func Unpack(b []byte) (*Decoded, error) {
	if len(b) < PayloadSize {
		return nil, fmt.Errorf("payload too short: %d bytes (need %d)", len(b), PayloadSize)
	}
	lon := int32(binary.LittleEndian.Uint32(b[offLon:]))
	lat := int32(binary.LittleEndian.Uint32(b[offLat:]))
	if (lon < 0) != (b[offNegLon] != 0) || (lat < 0) != (b[offNegLat] != 0) {
		return nil, fmt.Errorf("sign flags disagree with coordinates (lon %d/%d, lat %d/%d)",
			lon, b[offNegLon], lat, b[offNegLat])
	}
	return &Decoded{
		Longitude: float64(lon) / 1e7,
		Latitude:  float64(lat) / 1e7,
		Altitude:  float64(int32(binary.LittleEndian.Uint32(b[offHeight:]))) / 1000,
		Accuracy:  binary.LittleEndian.Uint32(b[offHAcc:]),
		VAccuracy: binary.LittleEndian.Uint32(b[offVAcc:]),
		Sats:      b[offFixType],
		HDOP:      float64(binary.LittleEndian.Uint16(b[offHDOP:])) / 100,
		MSL:       float64(int32(binary.LittleEndian.Uint32(b[offHMSL:]))) / 1000,
		FixOK:     b[offFixOK] != 0,
	}, nil
}

// cborFix is the integer-keyed CBOR form of a fix.
type cborFix struct {
	Type     uint8  `cbor:"0,keyasint"`
	OK       bool   `cbor:"1,keyasint"`
	ITOW     uint32 `cbor:"2,keyasint"`
	Lon      int32  `cbor:"3,keyasint"`
	Lat      int32  `cbor:"4,keyasint"`
	Height   int32  `cbor:"5,keyasint"`
	HMSL     int32  `cbor:"6,keyasint"`
	HAcc     uint32 `cbor:"7,keyasint"`
	VAcc     uint32 `cbor:"8,keyasint"`
	HDOP     uint16 `cbor:"9,keyasint"`
	Captured int64  `cbor:"10,keyasint"` // Unix ms
}

// MarshalCBOR encodes a fix as a CBOR map with integer keys.
func MarshalCBOR(f *fix.Fix) ([]byte, error) {
	data, err := cbor.Marshal(cborFix{
		Type:     uint8(f.Type),
		OK:       f.OK,
		ITOW:     f.ITOW,
		Lon:      f.Lon,
		Lat:      f.Lat,
		Height:   f.Height,
		HMSL:     f.HMSL,
		HAcc:     f.HAcc,
		VAcc:     f.VAcc,
		HDOP:     f.HDOP,
		Captured: f.Captured.UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return data, nil
}

// UnmarshalCBOR decodes a fix produced by MarshalCBOR.
func UnmarshalCBOR(data []byte) (*fix.Fix, error) {
	var c cborFix
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}
	return &fix.Fix{
		Type:     ubx.FixType(c.Type),
		OK:       c.OK,
		ITOW:     c.ITOW,
		Lon:      c.Lon,
		Lat:      c.Lat,
		Height:   c.Height,
		HMSL:     c.HMSL,
		HAcc:     c.HAcc,
		VAcc:     c.VAcc,
		HDOP:     c.HDOP,
		Captured: time.UnixMilli(c.Captured),
	}, nil
}
