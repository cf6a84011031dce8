// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Frame errors. They describe an abandoned frame and are never fatal: the
// decoder has already resynchronized when one is reported.
var (
	ErrUnknownType = errors.New("unknown message type")
	ErrChecksumA   = errors.New("first checksum byte mismatch")
	ErrChecksumB   = errors.New("second checksum byte mismatch")
	ErrOverrun     = errors.New("frame overrun")

	// ErrNoSource is returned by Next when the decoder was built without a
	// byte source.
	ErrNoSource = errors.New("ubx: decoder has no byte source")
)

// FrameError carries the details of an abandoned frame.
type FrameError struct {
	Err      error
	Kind     Kind    // matched kind, for checksum errors
	Tag      [2]byte // received tag
	Expected byte    // computed checksum byte
	Got      byte    // received checksum byte
}

func (e *FrameError) Error() string {
	switch {
	case errors.Is(e.Err, ErrUnknownType):
		return fmt.Sprintf("%v 0x%02X 0x%02X", e.Err, e.Tag[0], e.Tag[1])
	case errors.Is(e.Err, ErrChecksumA), errors.Is(e.Err, ErrChecksumB):
		return fmt.Sprintf("%v in %s: expected 0x%02X, got 0x%02X", e.Err, e.Kind, e.Expected, e.Got)
	default:
		return e.Err.Error()
	}
}

func (e *FrameError) Unwrap() error { return e.Err }

// ReportFunc receives every frame error seen by Next.
type ReportFunc func(err error)

// Option configures a Decoder.
type Option func(*Decoder)

// WithRegistry replaces the built-in message table.
func WithRegistry(r Registry) Option {
	return func(d *Decoder) { d.registry = r }
}

// WithReporter installs a callback for abandoned frames.
func WithReporter(fn ReportFunc) Option {
	return func(d *Decoder) { d.report = fn }
}

// Decoder implements the UBX frame synchronizer state machine.
//
// A Decoder is not safe for concurrent use. It holds at most one frame in
// flight and reuses its record buffer across calls.
type Decoder struct {
	src      io.ByteReader
	registry Registry
	report   ReportFunc

	pos    int    // bytes consumed in the current frame, sync marker included
	size   int    // expected record size for the current frame
	entry  *Entry // matched entry, nil until the tag is resolved
	record []byte
	ck     [2]byte
	last   []byte
}

// NewDecoder creates a decoder reading from src. src may be nil when the
// decoder is only driven through DecodeByte.
func NewDecoder(src io.ByteReader, opts ...Option) *Decoder {
	d := &Decoder{
		src:      src,
		registry: defaultRegistry,
	}
	for _, opt := range opts {
		opt(d)
	}
	n := d.registry.MaxSize()
	if n < tagLen {
		n = tagLen
	}
	d.record = make([]byte, n)
	d.last = make([]byte, 0, n)
	d.Reset()
	return d
}

// Reset discards any frame in flight and returns to sync search.
func (d *Decoder) Reset() {
	d.pos = 0
	d.size = len(d.record)
	d.entry = nil
}

// Synced reports whether a sync marker has been matched and a frame is in
// flight.
func (d *Decoder) Synced() bool {
	return d.pos >= syncLen
}

// Record returns the raw record bytes of the last successfully decoded
// message. The slice is overwritten by the next successful decode.
func (d *Decoder) Record() []byte {
	return d.last
}

// Next blocks until a complete, checksum-valid frame of a registered kind has
// been read, and returns it. Abandoned frames are passed to the reporter and
// otherwise ignored. Errors from the byte source are returned as is; the frame
// in flight is kept so a later call can resume it.
func (d *Decoder) Next() (Message, error) {
	return d.NextContext(context.Background())
}

// NextContext is Next with a cancellation check before each byte. A read
// already blocked inside the byte source is not interrupted.
func (d *Decoder) NextContext(ctx context.Context) (Message, error) {
	if d.src == nil {
		return nil, ErrNoSource
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := d.src.ReadByte()
		if err != nil {
			return nil, err
		}
		msg, ferr := d.DecodeByte(c)
		if ferr != nil {
			if d.report != nil {
				d.report(ferr)
			}
			continue
		}
		if msg != nil {
			return msg, nil
		}
	}
}

// DecodeByte advances the state machine by one byte.
// Returns a message when c completes a valid frame, a *FrameError when c
// causes the frame in flight to be abandoned, and nil, nil otherwise.
func (d *Decoder) DecodeByte(c byte) (Message, error) {
	// Sync search. A byte that breaks the marker is dropped, not re-tested.
	if d.pos < syncLen {
		if c == syncBytes[d.pos] {
			d.pos++
		} else {
			d.pos = 0
		}
		return nil, nil
	}

	if off := d.pos - syncLen; off < d.size {
		d.record[off] = c
	}
	d.pos++

	if d.pos == syncLen+tagLen {
		e, ok := d.registry.Lookup(d.record[0], d.record[1])
		if !ok {
			tag := [2]byte{d.record[0], d.record[1]}
			d.Reset()
			return nil, &FrameError{Err: ErrUnknownType, Tag: tag}
		}
		d.entry = e
		d.size = e.Size
		if d.size < tagLen {
			d.size = tagLen
		}
	}

	switch {
	case d.pos == syncLen+d.size:
		d.ck[0], d.ck[1] = Checksum(d.record[:d.size])

	case d.pos == syncLen+d.size+1:
		if c != d.ck[0] {
			err := d.checksumError(ErrChecksumA, d.ck[0], c)
			d.Reset()
			return nil, err
		}

	case d.pos == syncLen+d.size+2:
		if c != d.ck[1] {
			err := d.checksumError(ErrChecksumB, d.ck[1], c)
			d.Reset()
			return nil, err
		}
		entry, size := d.entry, d.size
		d.last = append(d.last[:0], d.record[:size]...)
		d.Reset()
		return entry.Decode(d.last), nil

	case d.pos > syncLen+d.size+2:
		d.Reset()
		return nil, &FrameError{Err: ErrOverrun}
	}

	return nil, nil
}

func (d *Decoder) checksumError(err error, want, got byte) *FrameError {
	fe := &FrameError{Err: err, Expected: want, Got: got}
	fe.Tag = [2]byte{d.record[0], d.record[1]}
	if d.entry != nil {
		fe.Kind = d.entry.Kind
	}
	return fe
}
