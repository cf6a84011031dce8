// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sim generates a synthetic UBX stream for bench testing without a
// receiver attached.
package sim

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

// Options controls the generated stream.
type Options struct {
	Period      time.Duration // navigation epoch, default 1s
	CenterLat   float64       // decimal degrees
	CenterLon   float64       // decimal degrees
	Radius      float64       // circle radius in degrees, ~0.005 is 500 m
	NoFixEpochs int           // epochs reported without a fix at startup
	Noise       float64       // per-epoch probability of each impairment, 0..1
	Seed        int64
}

// DefaultOptions returns a receiver circling a point at one epoch per second.
func DefaultOptions() Options {
	return Options{
		Period:      time.Second,
		CenterLat:   43.6532,
		CenterLon:   -79.3832,
		Radius:      0.005,
		NoFixEpochs: 3,
		Seed:        time.Now().UnixNano(),
	}
}

// Generator produces one epoch of NAV messages at a time.
type Generator struct {
	opts  Options
	rng   *rand.Rand
	epoch int
	itow  uint32
}

// New creates a generator.
func New(opts Options) *Generator {
	if opts.Period <= 0 {
		opts.Period = time.Second
	}
	return &Generator{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		itow: 345600000, // Monday 00:00 GPS time
	}
}

// Messages returns the clean NAV-STATUS, NAV-POSLLH and NAV-DOP for the next
// epoch and advances the generator.
func (g *Generator) Messages() (*ubx.NavStatus, *ubx.NavPosLLH, *ubx.NavDOP) {
	g.epoch++
	g.itow += uint32(g.opts.Period / time.Millisecond)
	t := float64(g.epoch)

	status := &ubx.NavStatus{
		ITOW: g.itow,
		MSSS: uint32(g.epoch) * uint32(g.opts.Period/time.Millisecond),
	}
	if g.epoch > g.opts.NoFixEpochs {
		status.GPSFix = ubx.Fix3D
		status.Flags = ubx.StatusFlagGPSFixOK | ubx.StatusFlagWKNSet | ubx.StatusFlagTOWSet
		status.TTFF = uint32(g.opts.NoFixEpochs+1) * uint32(g.opts.Period/time.Millisecond)
	}

	lat := g.opts.CenterLat + g.opts.Radius*math.Sin(t*0.1)
	lon := g.opts.CenterLon + g.opts.Radius*math.Cos(t*0.1)
	pos := &ubx.NavPosLLH{
		ITOW:   g.itow,
		Lon:    int32(math.Round(lon * 1e7)),
		Lat:    int32(math.Round(lat * 1e7)),
		Height: 112000 + int32(g.rng.Intn(2000)),
		HMSL:   76000 + int32(g.rng.Intn(2000)),
		HAcc:   1800 + uint32(g.rng.Intn(1500)),
		VAcc:   3000 + uint32(g.rng.Intn(2500)),
	}

	hdop := uint16(80 + g.rng.Intn(40))
	dop := &ubx.NavDOP{
		ITOW: g.itow,
		GDOP: hdop * 2,
		PDOP: hdop + hdop/2,
		TDOP: hdop,
		VDOP: hdop + hdop/3,
		HDOP: hdop,
		NDOP: hdop / 2,
		EDOP: hdop / 2,
	}

	return status, pos, dop
}

// Epoch returns the wire bytes for the next epoch. With Noise set, garbage
// bytes, a corrupted checksum and an unregistered NAV-SOL frame are each
// mixed in with that probability.
func (g *Generator) Epoch() []byte {
	status, pos, dop := g.Messages()

	var frames [][]byte
	for _, m := range []ubx.Message{status, pos, dop} {
		frame, err := ubx.Encode(m)
		if err != nil {
			// Encode only fails for types without MarshalBinary.
			panic(fmt.Sprintf("sim: %v", err))
		}
		frames = append(frames, frame)
	}

	if g.chance() {
		frames = append(frames, ubx.MustEncodePacket(ubx.ClassNAV, ubx.IDNavSol, make([]byte, 52)))
	}
	if g.chance() {
		f := frames[g.rng.Intn(3)]
		f[len(f)-1] ^= byte(g.rng.Intn(255) + 1)
	}

	var out []byte
	if g.chance() {
		garbage := make([]byte, g.rng.Intn(16)+1)
		g.rng.Read(garbage)
		out = append(out, garbage...)
	}
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}

func (g *Generator) chance() bool {
	return g.opts.Noise > 0 && g.rng.Float64() < g.opts.Noise
}

// Run writes one epoch per period to w until ctx is cancelled or a write
// fails. Returns the number of epochs written.
func (g *Generator) Run(ctx context.Context, w io.Writer) (int, error) {
	ticker := time.NewTicker(g.opts.Period)
	defer ticker.Stop()

	written := 0
	for {
		if _, err := w.Write(g.Epoch()); err != nil {
			return written, fmt.Errorf("write failed: %w", err)
		}
		written++

		select {
		case <-ctx.Done():
			return written, nil
		case <-ticker.C:
		}
	}
}
