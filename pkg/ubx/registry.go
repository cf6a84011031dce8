// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

// Entry describes one recognized message kind.
type Entry struct {
	Tag  [2]byte // class, id
	Size int     // record size in bytes, including the tag and length field
	Kind Kind

	// Decode converts a checksum-valid record of exactly Size bytes into a
	// typed message. The slice is reused by the decoder after Decode returns.
	Decode func(record []byte) Message
}

// Registry is a fixed table of recognized message kinds. Lookup is by exact
// tag match and the first matching entry wins.
type Registry []Entry

var defaultRegistry = Registry{
	{Tag: [2]byte{ClassNAV, IDNavPosLLH}, Size: NavPosLLHSize, Kind: KindNavPosLLH, Decode: decodeNavPosLLH},
	{Tag: [2]byte{ClassNAV, IDNavStatus}, Size: NavStatusSize, Kind: KindNavStatus, Decode: decodeNavStatus},
	{Tag: [2]byte{ClassNAV, IDNavDOP}, Size: NavDOPSize, Kind: KindNavDOP, Decode: decodeNavDOP},
}

// DefaultRegistry returns a copy of the built-in table: NAV-POSLLH,
// NAV-STATUS and NAV-DOP.
func DefaultRegistry() Registry {
	return append(Registry(nil), defaultRegistry...)
}

// Lookup returns the entry registered for a tag.
func (r Registry) Lookup(class, id byte) (*Entry, bool) {
	for i := range r {
		if r[i].Tag[0] == class && r[i].Tag[1] == id {
			return &r[i], true
		}
	}
	return nil, false
}

// Find returns the first entry of the given kind.
func (r Registry) Find(k Kind) (*Entry, bool) {
	for i := range r {
		if r[i].Kind == k {
			return &r[i], true
		}
	}
	return nil, false
}

// MaxSize returns the largest record size in the table.
func (r Registry) MaxSize() int {
	size := 0
	for _, e := range r {
		if e.Size > size {
			size = e.Size
		}
	}
	return size
}
