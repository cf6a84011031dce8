// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

// Checksum computes the UBX two-byte checksum (8-bit Fletcher) over data.
// For a frame, data is the record: class, id, length and payload, never the
// sync marker.
func Checksum(data []byte) (ckA, ckB byte) {
	for _, b := range data {
		ckA += b
		ckB += ckA
	}
	return ckA, ckB
}
