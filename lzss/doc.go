// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lzss implements the LZSS dictionary compression of the
// compression header family with tag 1.
//
// The body consists of groups of a control byte followed by up to eight
// tokens. The bits of the control byte are consumed from the most
// significant bit. A clear bit marks a literal byte. A set bit marks a
// two byte back-reference: the high nibble of the first byte is the
// match length minus 3, the low nibble together with the second byte is
// the displacement minus 1. Matches have 3 to 18 bytes and reach up to
// 4096 bytes back. A match may overlap the bytes it produces.
package lzss

const name = "lzss"

const (
	minMatchLen = 3
	maxMatchLen = 0xf + minMatchLen
	windowSize  = 1 << 12
)
