// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uplink

import (
	"bytes"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/Thermoquad/ubxstat/internal/fix"
	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

func sampleFix() *fix.Fix {
	return &fix.Fix{
		Type:     ubx.Fix3D,
		OK:       true,
		ITOW:     345000,
		Lon:      -1,         // FF FF FF FF
		Lat:      0x01020304, // 04 03 02 01
		Height:   1000,       // E8 03 00 00
		HMSL:     -1000,      // 18 FC FF FF
		HAcc:     0x0A0B0C0D,
		VAcc:     0x11,
		HDOP:     0x0102,
		Captured: time.UnixMilli(1735689600123),
	}
}

func TestPack_Layout(t *testing.T) {
	got := Pack(sampleFix())
	want := []byte{
		0x03,
		0xFF, 0xFF, 0xFF, 0xFF,
		0x04, 0x03, 0x02, 0x01,
		0xE8, 0x03, 0x00, 0x00,
		0x0D, 0x0C, 0x0B, 0x0A,
		0x11, 0x00, 0x00, 0x00,
		0x01,
		0x00,
		0x02, 0x01,
		0x18, 0xFC, 0xFF, 0xFF,
		0x01,
		0x00,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Pack =\n% X\nwant\n% X", got, want)
	}
}

func TestUnpack(t *testing.T) {
	f := &fix.Fix{
		Type:   ubx.Fix2D,
		OK:     true,
		Lon:    -793832000,
		Lat:    436532000,
		Height: 112500,
		HMSL:   76000,
		HAcc:   2500,
		VAcc:   4100,
		HDOP:   87,
	}

	d, err := Unpack(Pack(f))
	if err != nil {
		t.Fatalf("Unpack error: %v", err)
	}
	want := Decoded{
		Longitude: -79.3832,
		Latitude:  43.6532,
		Altitude:  112.5,
		Accuracy:  2500,
		VAccuracy: 4100,
		Sats:      2,
		HDOP:      0.87,
		MSL:       76,
		FixOK:     true,
	}
	if *d != want {
		t.Errorf("Unpack = %+v, want %+v", *d, want)
	}
}

func TestUnpack_Errors(t *testing.T) {
	if _, err := Unpack(make([]byte, PayloadSize-1)); err == nil {
		t.Error("expected error for short payload")
	}

	b := Pack(sampleFix())
	b[offNegLon] = 0
	if _, err := Unpack(b); err == nil {
		t.Error("expected error for inconsistent sign flag")
	}
}

func TestMarshalCBOR_RoundTrip(t *testing.T) {
	f := sampleFix()

	data, err := MarshalCBOR(f)
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}
	got, err := UnmarshalCBOR(data)
	if err != nil {
		t.Fatalf("UnmarshalCBOR error: %v", err)
	}
	if got.Lon != f.Lon || got.Lat != f.Lat || got.HMSL != f.HMSL || got.HDOP != f.HDOP {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.Captured.Equal(f.Captured) {
		t.Errorf("captured = %v, want %v", got.Captured, f.Captured)
	}
}

func TestMarshalCBOR_IntegerKeys(t *testing.T) {
	data, err := MarshalCBOR(sampleFix())
	if err != nil {
		t.Fatalf("MarshalCBOR error: %v", err)
	}

	var m map[interface{}]interface{}
	if err := cbor.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(m) != 11 {
		t.Errorf("expected 11 entries, got %d", len(m))
	}
	if v, ok := m[uint64(0)]; !ok || v != uint64(3) {
		t.Errorf("key 0 (fix type) = %v", v)
	}
	if v, ok := m[uint64(3)]; !ok || v != int64(-1) {
		t.Errorf("key 3 (lon) = %v", v)
	}
}

func TestUnmarshalCBOR_Invalid(t *testing.T) {
	if _, err := UnmarshalCBOR([]byte{0xFF}); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}
