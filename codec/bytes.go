// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

// Uint32LE reads an uint32 integer from a byte slice.
func Uint32LE(b []byte) uint32 {
	x := uint32(b[3]) << 24
	x |= uint32(b[2]) << 16
	x |= uint32(b[1]) << 8
	x |= uint32(b[0])
	return x
}

// PutUint32LE puts an uint32 integer into a byte slice that must have at
// least a length of 4 bytes.
func PutUint32LE(b []byte, x uint32) {
	b[0] = byte(x)
	b[1] = byte(x >> 8)
	b[2] = byte(x >> 16)
	b[3] = byte(x >> 24)
}

// AppendUint32LE appends x as little endian value to p.
func AppendUint32LE(p []byte, x uint32) []byte {
	return append(p, byte(x), byte(x>>8), byte(x>>16), byte(x>>24))
}
