// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"encoding"
	"encoding/binary"
	"fmt"
)

// MaxPayloadSize is the largest payload EncodePacket accepts.
const MaxPayloadSize = 0xFFFF

// Frame wraps a record (class, id, length, payload) with the sync marker and
// checksum.
func Frame(record []byte) []byte {
	buf := make([]byte, 0, syncLen+len(record)+2)
	buf = append(buf, Sync1, Sync2)
	buf = append(buf, record...)
	ckA, ckB := Checksum(record)
	return append(buf, ckA, ckB)
}

// EncodePacket builds a complete UBX frame for class/id with the given
// payload. The length field is derived from the payload.
func EncodePacket(class, id byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}
	rec := make([]byte, headerLen, headerLen+len(payload))
	rec[0] = class
	rec[1] = id
	binary.LittleEndian.PutUint16(rec[2:4], uint16(len(payload)))
	rec = append(rec, payload...)
	return Frame(rec), nil
}

// MustEncodePacket is EncodePacket for payloads known to fit.
// Panics on encoding error.
func MustEncodePacket(class, id byte, payload []byte) []byte {
	data, err := EncodePacket(class, id, payload)
	if err != nil {
		panic(fmt.Sprintf("ubx: encode error: %v", err))
	}
	return data
}

// Encode frames a decoded message for transmission.
func Encode(m Message) ([]byte, error) {
	bm, ok := m.(encoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("%s cannot be encoded", m.Kind())
	}
	rec, err := bm.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Kind(), err)
	}
	return Frame(rec), nil
}

// PollRequest builds a poll for one message: a frame of the same class and id
// with an empty payload. The receiver answers with the current message.
func PollRequest(class, id byte) []byte {
	return MustEncodePacket(class, id, nil)
}

// PollKind builds a poll request for a registered kind.
func PollKind(k Kind) ([]byte, error) {
	e, ok := defaultRegistry.Find(k)
	if !ok {
		return nil, fmt.Errorf("no registered message of kind %s", k)
	}
	return PollRequest(e.Tag[0], e.Tag[1]), nil
}
