// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// ============================================================
// Test Helpers
// ============================================================

func samplePosLLH() *NavPosLLH {
	return &NavPosLLH{
		Header: Header{Class: ClassNAV, ID: IDNavPosLLH, Length: NavPosLLHSize - headerLen},
		ITOW:   123456000,
		Lon:    85455939,
		Lat:    473977419,
		Height: 500123,
		HMSL:   450000,
		HAcc:   1234,
		VAcc:   2000,
	}
}

func sampleStatus() *NavStatus {
	return &NavStatus{
		Header:  Header{Class: ClassNAV, ID: IDNavStatus, Length: NavStatusSize - headerLen},
		ITOW:    123456000,
		GPSFix:  Fix3D,
		Flags:   StatusFlagGPSFixOK | StatusFlagWKNSet | StatusFlagTOWSet,
		FixStat: 0x00,
		Flags2:  0x08,
		TTFF:    28123,
		MSSS:    600000,
	}
}

func sampleDOP() *NavDOP {
	return &NavDOP{
		Header: Header{Class: ClassNAV, ID: IDNavDOP, Length: NavDOPSize - headerLen},
		ITOW:   123456000,
		GDOP:   180,
		PDOP:   160,
		TDOP:   90,
		VDOP:   130,
		HDOP:   95,
		NDOP:   70,
		EDOP:   60,
	}
}

func mustEncode(t *testing.T, m Message) []byte {
	t.Helper()
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode(%s) error: %v", m.Kind(), err)
	}
	return data
}

// decodeAll runs Next over data until the source is exhausted.
func decodeAll(t *testing.T, data []byte, opts ...Option) []Message {
	t.Helper()
	d := NewDecoder(bytes.NewReader(data), opts...)
	var msgs []Message
	for {
		msg, err := d.Next()
		if errors.Is(err, io.EOF) {
			return msgs
		}
		if err != nil {
			t.Fatalf("Next error: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

// rawMessage is a decoded record for test registries.
type rawMessage struct {
	kind Kind
	data []byte
}

func (m *rawMessage) Kind() Kind { return m.kind }

func rawEntry(class, id byte, size int, kind Kind) Entry {
	return Entry{
		Tag:  [2]byte{class, id},
		Size: size,
		Kind: kind,
		Decode: func(rec []byte) Message {
			return &rawMessage{kind: kind, data: append([]byte(nil), rec...)}
		},
	}
}

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	a, b := Checksum(nil)
	if a != 0 || b != 0 {
		t.Errorf("Checksum of empty data should be (0, 0), got (0x%02X, 0x%02X)", a, b)
	}
}

func TestChecksum_WorkedExample(t *testing.T) {
	a, b := Checksum([]byte{0x01, 0x02, 0x03})
	if a != 0x06 || b != 0x0A {
		t.Errorf("expected (0x06, 0x0A), got (0x%02X, 0x%02X)", a, b)
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x1C, 0x00, 0x10, 0x20, 0x30, 0x40}
	a1, b1 := Checksum(data)
	a2, b2 := Checksum(data)
	if a1 != a2 || b1 != b2 {
		t.Errorf("Checksum should be deterministic: (0x%02X, 0x%02X) != (0x%02X, 0x%02X)", a1, b1, a2, b2)
	}
}

func TestChecksum_OrderSensitive(t *testing.T) {
	a1, b1 := Checksum([]byte{0x01, 0x02, 0x03})
	a2, b2 := Checksum([]byte{0x02, 0x01, 0x03})
	if a1 == a2 && b1 == b2 {
		t.Errorf("swapping two different bytes should change the checksum, both gave (0x%02X, 0x%02X)", a1, b1)
	}
}

func TestChecksum_Wraps(t *testing.T) {
	a, b := Checksum([]byte{0xFF, 0xFF})
	// A: 0xFF, 0xFE; B: 0xFF, 0xFD
	if a != 0xFE || b != 0xFD {
		t.Errorf("expected (0xFE, 0xFD), got (0x%02X, 0x%02X)", a, b)
	}
}

// ============================================================
// Kind / Registry Tests
// ============================================================

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNavPosLLH, "NAV-POSLLH"},
		{KindNavStatus, "NAV-STATUS"},
		{KindNavDOP, "NAV-DOP"},
		{KindNone, "NONE"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"status": KindNavStatus, "position": KindNavPosLLH, "dop": KindNavDOP} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseKind("velocity"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRegistry_Default(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		id   byte
		size int
		kind Kind
	}{
		{IDNavPosLLH, 32, KindNavPosLLH},
		{IDNavStatus, 20, KindNavStatus},
		{IDNavDOP, 22, KindNavDOP},
	}
	for _, tt := range tests {
		e, ok := r.Lookup(ClassNAV, tt.id)
		if !ok {
			t.Fatalf("tag 0x01 0x%02X not registered", tt.id)
		}
		if e.Size != tt.size || e.Kind != tt.kind {
			t.Errorf("tag 0x01 0x%02X: got size=%d kind=%s, want size=%d kind=%s", tt.id, e.Size, e.Kind, tt.size, tt.kind)
		}
	}
	if _, ok := r.Lookup(ClassNAV, IDNavSol); ok {
		t.Error("NAV-SOL should not be registered")
	}
	if r.MaxSize() != NavPosLLHSize {
		t.Errorf("MaxSize = %d, want %d", r.MaxSize(), NavPosLLHSize)
	}
}

func TestRegistry_FirstMatchWins(t *testing.T) {
	r := Registry{
		rawEntry(0x10, 0x20, 6, KindNavStatus),
		rawEntry(0x10, 0x20, 8, KindNavDOP),
	}
	e, ok := r.Lookup(0x10, 0x20)
	if !ok || e.Size != 6 || e.Kind != KindNavStatus {
		t.Errorf("expected first entry, got %+v", e)
	}
}

func TestRegistry_DefaultIsCopy(t *testing.T) {
	r := DefaultRegistry()
	r[0].Size = 99
	if defaultRegistry[0].Size == 99 {
		t.Error("DefaultRegistry should return an independent copy")
	}
}

// ============================================================
// Decoder Tests
// ============================================================

func TestDecoder_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"NAV-POSLLH", samplePosLLH()},
		{"NAV-STATUS", sampleStatus()},
		{"NAV-DOP", sampleDOP()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := decodeAll(t, mustEncode(t, tt.msg))
			if len(msgs) != 1 {
				t.Fatalf("expected 1 message, got %d", len(msgs))
			}
			switch want := tt.msg.(type) {
			case *NavPosLLH:
				got, ok := msgs[0].(*NavPosLLH)
				if !ok || *got != *want {
					t.Errorf("got %+v, want %+v", msgs[0], want)
				}
			case *NavStatus:
				got, ok := msgs[0].(*NavStatus)
				if !ok || *got != *want {
					t.Errorf("got %+v, want %+v", msgs[0], want)
				}
			case *NavDOP:
				got, ok := msgs[0].(*NavDOP)
				if !ok || *got != *want {
					t.Errorf("got %+v, want %+v", msgs[0], want)
				}
			}
		})
	}
}

func TestDecoder_ConcreteExample(t *testing.T) {
	reg := Registry{rawEntry(0x01, 0x02, 3, KindNavPosLLH)}

	d := NewDecoder(nil, WithRegistry(reg))
	var got Message
	for _, b := range []byte{Sync1, Sync2, 0x01, 0x02, 0x03, 0x06, 0x0A} {
		msg, err := d.DecodeByte(b)
		if err != nil {
			t.Fatalf("unexpected error at byte 0x%02X: %v", b, err)
		}
		if msg != nil {
			got = msg
		}
	}
	raw, ok := got.(*rawMessage)
	if !ok {
		t.Fatalf("expected a decoded message, got %v", got)
	}
	if !bytes.Equal(raw.data, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("record = % X, want 01 02 03", raw.data)
	}
}

func TestDecoder_ConcreteExample_SecondChecksumByteWrong(t *testing.T) {
	reg := Registry{rawEntry(0x01, 0x02, 3, KindNavPosLLH)}
	d := NewDecoder(nil, WithRegistry(reg))

	input := []byte{Sync1, Sync2, 0x01, 0x02, 0x03, 0x06, 0x0B}
	for i, b := range input {
		msg, err := d.DecodeByte(b)
		if msg != nil {
			t.Fatalf("no message expected, got %v", msg)
		}
		if i < len(input)-1 {
			if err != nil {
				t.Fatalf("unexpected error at byte %d: %v", i, err)
			}
			continue
		}
		if !errors.Is(err, ErrChecksumB) {
			t.Fatalf("expected ErrChecksumB, got %v", err)
		}
		var fe *FrameError
		if !errors.As(err, &fe) || fe.Expected != 0x0A || fe.Got != 0x0B {
			t.Errorf("unexpected frame error details: %+v", fe)
		}
	}

	if d.Synced() {
		t.Error("decoder should be back in sync search")
	}

	// The decoder recovers for the next frame.
	var got Message
	for _, b := range []byte{Sync1, Sync2, 0x01, 0x02, 0x03, 0x06, 0x0A} {
		if msg, _ := d.DecodeByte(b); msg != nil {
			got = msg
		}
	}
	if got == nil {
		t.Error("expected the following frame to decode")
	}
}

func TestDecoder_FirstChecksumByteWrong(t *testing.T) {
	frame := mustEncode(t, sampleStatus())
	frame[len(frame)-2] ^= 0xFF

	d := NewDecoder(nil)
	var lastErr error
	for _, b := range frame[:len(frame)-1] {
		if _, err := d.DecodeByte(b); err != nil {
			lastErr = err
		}
	}
	if !errors.Is(lastErr, ErrChecksumA) {
		t.Fatalf("expected ErrChecksumA, got %v", lastErr)
	}
	var fe *FrameError
	if errors.As(lastErr, &fe) && fe.Kind != KindNavStatus {
		t.Errorf("FrameError.Kind = %s, want NAV-STATUS", fe.Kind)
	}
}

func TestDecoder_ResyncAfterGarbage(t *testing.T) {
	rng := newFuzzRng(t)
	frame := mustEncode(t, samplePosLLH())

	for n := 0; n <= 64; n++ {
		garbage := make([]byte, n)
		for i := range garbage {
			garbage[i] = randomNonSync(rng)
		}
		msgs := decodeAll(t, append(garbage, frame...))
		if len(msgs) != 1 {
			t.Fatalf("N=%d: expected exactly 1 message, got %d", n, len(msgs))
		}
		if got, ok := msgs[0].(*NavPosLLH); !ok || *got != *samplePosLLH() {
			t.Fatalf("N=%d: wrong message %+v", n, msgs[0])
		}
	}
}

func TestDecoder_ResyncAfterBadChecksum(t *testing.T) {
	follow := []Message{samplePosLLH(), sampleStatus(), sampleDOP()}

	for _, next := range follow {
		t.Run(next.Kind().String(), func(t *testing.T) {
			bad := mustEncode(t, sampleStatus())
			bad[len(bad)-1] ^= 0x01

			var reported []error
			data := append(bad, mustEncode(t, next)...)
			msgs := decodeAll(t, data, WithReporter(func(err error) { reported = append(reported, err) }))

			if len(msgs) != 1 || msgs[0].Kind() != next.Kind() {
				t.Fatalf("expected only the second frame (%s), got %v", next.Kind(), msgs)
			}
			if len(reported) != 1 || !errors.Is(reported[0], ErrChecksumB) {
				t.Errorf("expected one ErrChecksumB report, got %v", reported)
			}
		})
	}
}

func TestDecoder_UnknownTypeSkipped(t *testing.T) {
	// NAV-SOL tag with a zero payload; not in the registry.
	unknown := MustEncodePacket(ClassNAV, IDNavSol, make([]byte, 4))

	var reported []error
	data := append(unknown, mustEncode(t, sampleDOP())...)
	msgs := decodeAll(t, data, WithReporter(func(err error) { reported = append(reported, err) }))

	if len(msgs) != 1 || msgs[0].Kind() != KindNavDOP {
		t.Fatalf("expected only NAV-DOP, got %v", msgs)
	}
	if len(reported) != 1 || !errors.Is(reported[0], ErrUnknownType) {
		t.Fatalf("expected one ErrUnknownType report, got %v", reported)
	}
	if !strings.Contains(reported[0].Error(), "0x01 0x06") {
		t.Errorf("error should name the tag, got %q", reported[0].Error())
	}
}

func TestDecoder_UnknownTagBytesNotRescanned(t *testing.T) {
	// The tag bytes of an abandoned frame are dropped, so a marker hidden in
	// them does not start a new frame.
	frame := mustEncode(t, sampleStatus())
	data := append([]byte{Sync1, Sync2}, frame...)
	if msgs := decodeAll(t, data); len(msgs) != 0 {
		t.Errorf("expected no messages, got %v", msgs)
	}
}

func TestDecoder_EmbeddedSyncInPayload(t *testing.T) {
	want := samplePosLLH()
	want.ITOW = 0x030162B5 // B5 62 01 03 on the wire
	want.Lon = 0x020162B5  // B5 62 01 02
	want.HAcc = 0x6262B5B5 // B5 B5 62 62

	msgs := decodeAll(t, append(mustEncode(t, want), mustEncode(t, sampleDOP())...))
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if got, ok := msgs[0].(*NavPosLLH); !ok || *got != *want {
		t.Errorf("got %+v, want %+v", msgs[0], want)
	}
	if msgs[1].Kind() != KindNavDOP {
		t.Errorf("second message should be NAV-DOP, got %s", msgs[1].Kind())
	}
}

func TestDecoder_ConsecutiveSyncBytes(t *testing.T) {
	frame := mustEncode(t, sampleStatus())

	t.Run("repeated first sync byte", func(t *testing.T) {
		// B5 B5 62: the second B5 breaks the marker and is not re-tested,
		// so this frame is lost.
		data := append([]byte{Sync1}, frame...)
		if msgs := decodeAll(t, data); len(msgs) != 0 {
			t.Errorf("expected no messages, got %d", len(msgs))
		}
	})

	t.Run("lost frame does not block the next", func(t *testing.T) {
		data := append([]byte{Sync1}, frame...)
		data = append(data, mustEncode(t, sampleDOP())...)
		msgs := decodeAll(t, data)
		if len(msgs) != 1 || msgs[0].Kind() != KindNavDOP {
			t.Errorf("expected only NAV-DOP, got %v", msgs)
		}
	})

	t.Run("other byte between", func(t *testing.T) {
		data := append([]byte{Sync1, 0x00}, frame...)
		msgs := decodeAll(t, data)
		if len(msgs) != 1 || msgs[0].Kind() != KindNavStatus {
			t.Errorf("expected NAV-STATUS, got %v", msgs)
		}
	})

	t.Run("first sync byte then second", func(t *testing.T) {
		d := NewDecoder(nil)
		d.DecodeByte(Sync1)
		d.DecodeByte(Sync1)
		if d.Synced() {
			t.Error("B5 B5 must not count as a marker")
		}
		d.DecodeByte(Sync2)
		if d.Synced() {
			t.Error("B5 B5 62 must not sync on the trailing pair")
		}
	})
}

func TestDecoder_Record(t *testing.T) {
	m := sampleDOP()
	rec, _ := m.MarshalBinary()

	d := NewDecoder(bytes.NewReader(Frame(rec)))
	if _, err := d.Next(); err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if !bytes.Equal(d.Record(), rec) {
		t.Errorf("Record() = % X, want % X", d.Record(), rec)
	}
}

func TestDecoder_Reset(t *testing.T) {
	d := NewDecoder(nil)
	frame := mustEncode(t, sampleStatus())
	for _, b := range frame[:6] {
		d.DecodeByte(b)
	}
	if !d.Synced() {
		t.Fatal("decoder should be mid-frame")
	}
	d.Reset()
	if d.Synced() {
		t.Error("Reset should return to sync search")
	}
}

func TestDecoder_NoSource(t *testing.T) {
	d := NewDecoder(nil)
	if _, err := d.Next(); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}

func TestDecoder_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDecoder(bytes.NewReader(mustEncode(t, sampleStatus())))
	if _, err := d.NextContext(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// pausingSource returns errPause once at each break offset.
type pausingSource struct {
	data   []byte
	pos    int
	breaks map[int]bool
}

var errPause = errors.New("paused")

func (s *pausingSource) ReadByte() (byte, error) {
	if s.breaks[s.pos] {
		delete(s.breaks, s.pos)
		return 0, errPause
	}
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func TestDecoder_SourceErrorKeepsFrame(t *testing.T) {
	frame := mustEncode(t, samplePosLLH())
	src := &pausingSource{data: frame, breaks: map[int]bool{10: true}}
	d := NewDecoder(src)

	if _, err := d.Next(); !errors.Is(err, errPause) {
		t.Fatalf("expected errPause, got %v", err)
	}
	msg, err := d.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if msg.Kind() != KindNavPosLLH {
		t.Errorf("expected NAV-POSLLH, got %s", msg.Kind())
	}
}

func TestFrameError_Messages(t *testing.T) {
	tests := []struct {
		err  *FrameError
		want string
	}{
		{&FrameError{Err: ErrUnknownType, Tag: [2]byte{0x0A, 0x04}}, "unknown message type 0x0A 0x04"},
		{&FrameError{Err: ErrChecksumA, Kind: KindNavDOP, Expected: 0x12, Got: 0x34}, "first checksum byte mismatch in NAV-DOP: expected 0x12, got 0x34"},
		{&FrameError{Err: ErrOverrun}, "frame overrun"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

// ============================================================
// Typed Accessor Tests
// ============================================================

func TestWaitAccessors_SkipOtherKinds(t *testing.T) {
	var data []byte
	data = append(data, mustEncode(t, sampleDOP())...)
	data = append(data, mustEncode(t, samplePosLLH())...)
	data = append(data, mustEncode(t, sampleStatus())...)
	data = append(data, mustEncode(t, sampleDOP())...)

	d := NewDecoder(bytes.NewReader(data))

	status, err := WaitStatus(d)
	if err != nil {
		t.Fatalf("WaitStatus error: %v", err)
	}
	if !status.FixOK() || status.GPSFix != Fix3D {
		t.Errorf("unexpected status %+v", status)
	}

	dop, err := WaitDOP(d)
	if err != nil {
		t.Fatalf("WaitDOP error: %v", err)
	}
	if dop.HDOP != 95 {
		t.Errorf("hDOP = %d, want 95", dop.HDOP)
	}

	// The only position message was skipped while waiting for the status.
	if _, err := WaitPosition(d); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestWaitKind_Context(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDecoder(bytes.NewReader(mustEncode(t, sampleDOP())))
	if _, err := WaitPositionContext(ctx, d); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// ============================================================
// Validator Tests
// ============================================================

func TestValidateMessage_Valid(t *testing.T) {
	for _, m := range []Message{samplePosLLH(), sampleStatus(), sampleDOP()} {
		if errs := ValidateMessage(m); len(errs) != 0 {
			t.Errorf("%s: expected no errors, got %v", m.Kind(), errs)
		}
	}
}

func TestValidateMessage_LengthMismatch(t *testing.T) {
	rec, _ := sampleStatus().MarshalBinary()
	rec[2] = 0x0F // one byte short of the real payload

	msgs := decodeAll(t, Frame(rec))
	if len(msgs) != 1 {
		t.Fatalf("frame should still decode, got %d messages", len(msgs))
	}
	errs := ValidateMessage(msgs[0])
	if len(errs) != 1 || errs[0].Type != AnomalyLengthMismatch {
		t.Fatalf("expected length mismatch, got %v", errs)
	}
	if errs[0].Details["received"] != 15 || errs[0].Details["expected"] != 16 {
		t.Errorf("unexpected details %v", errs[0].Details)
	}
}

func TestValidateMessage_InvalidFix(t *testing.T) {
	m := sampleStatus()
	m.GPSFix = 9
	errs := ValidateMessage(m)
	if len(errs) != 1 || errs[0].Type != AnomalyInvalidFix {
		t.Errorf("expected invalid fix, got %v", errs)
	}
}

func TestValidateMessage_PositionOutOfRange(t *testing.T) {
	m := samplePosLLH()
	m.Lat = 910000000
	m.Lon = -1810000000
	errs := ValidateMessage(m)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	for _, err := range errs {
		if err.Type != AnomalyInvalidPosition {
			t.Errorf("unexpected anomaly type %v", err.Type)
		}
	}
}

func TestValidateMessage_HighDOP(t *testing.T) {
	m := sampleDOP()
	m.HDOP = 10000
	errs := ValidateMessage(m)
	if len(errs) != 1 || errs[0].Type != AnomalyHighDOP {
		t.Fatalf("expected high DOP, got %v", errs)
	}
	if !strings.Contains(errs[0].Message, "hDOP") {
		t.Errorf("message should name the field: %q", errs[0].Message)
	}
}

// ============================================================
// Statistics Tests
// ============================================================

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()

	s.Update(sampleStatus(), nil, nil)
	s.Update(samplePosLLH(), nil, nil)
	s.Update(nil, &FrameError{Err: ErrChecksumA}, nil)
	s.Update(nil, &FrameError{Err: ErrChecksumB}, nil)
	s.Update(nil, &FrameError{Err: ErrUnknownType}, nil)
	s.Update(sampleDOP(), nil, []ValidationError{{Type: AnomalyHighDOP}})

	if s.TotalFrames != 6 {
		t.Errorf("TotalFrames = %d, want 6", s.TotalFrames)
	}
	if s.ValidFrames != 2 {
		t.Errorf("ValidFrames = %d, want 2", s.ValidFrames)
	}
	if s.ChecksumErrors != 2 || s.ChecksumAErrors != 1 || s.ChecksumBErrors != 1 {
		t.Errorf("checksum counters = %d/%d/%d", s.ChecksumErrors, s.ChecksumAErrors, s.ChecksumBErrors)
	}
	if s.UnknownTypes != 1 {
		t.Errorf("UnknownTypes = %d, want 1", s.UnknownTypes)
	}
	if s.Anomalies != 1 || s.HighDOP != 1 {
		t.Errorf("anomaly counters = %d/%d", s.Anomalies, s.HighDOP)
	}
	if s.ByKind[KindNavDOP] != 1 || s.ByKind[KindNavStatus] != 1 {
		t.Errorf("ByKind = %v", s.ByKind)
	}
	if s.ErrorCount() != 3 {
		t.Errorf("ErrorCount = %d, want 3", s.ErrorCount())
	}

	out := s.String()
	for _, want := range []string{"Total Frames:", "Checksum Errors:", "Unknown Types:", "High DOP:"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	s.Reset()
	if s.TotalFrames != 0 || len(s.ByKind) != 0 {
		t.Error("Reset should clear counters")
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestFormatMessage(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 6000000, time.UTC)

	out := FormatMessage(samplePosLLH(), ts)
	for _, want := range []string{"[03:04:05.006]", "NAV-POSLLH (0x01 0x02)", "47.3977419", "8.5455939", "500.123 m"} {
		if !strings.Contains(out, want) {
			t.Errorf("POSLLH output missing %q:\n%s", want, out)
		}
	}

	out = FormatMessage(sampleStatus(), ts)
	if !strings.Contains(out, "Fix: 3D (3), fixOk=true") {
		t.Errorf("unexpected status output:\n%s", out)
	}

	out = FormatMessage(sampleDOP(), ts)
	if !strings.Contains(out, "hDOP=0.95") {
		t.Errorf("unexpected DOP output:\n%s", out)
	}
}

func TestFormatTag(t *testing.T) {
	if got := FormatTag(ClassNAV, IDNavSol); got != "NAV-SOL" {
		t.Errorf("FormatTag(NAV-SOL) = %q", got)
	}
	if got := FormatTag(0x42, 0x42); got != "UNKNOWN" {
		t.Errorf("FormatTag(unknown) = %q", got)
	}
}
