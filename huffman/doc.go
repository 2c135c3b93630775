// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package huffman implements the Huffman coding of the compression
// header family with tag 2. The low nibble of the header selects the
// data unit size: 4-bit symbols (two per byte, low nibble first) or
// 8-bit symbols.
//
// The header is followed by the tree table. Its first byte T gives the
// table length (T+1)*2 including T itself. The root node follows T.
// An internal node is a single byte: bits 0-5 hold an offset, bit 6 is
// set if the right child is a leaf and bit 7 is set if the left child is
// a leaf. The children of the node at table position P are stored as an
// adjacent pair at
//
//	(P &^ 1) + offset*2 + 2
//
// with the left child first. Leaf bytes hold the symbol.
//
// The bit stream after the table consists of 32-bit little-endian words
// whose bits are read from the most significant bit. A zero bit selects
// the left child, a one bit the right child.
package huffman

const name = "huffman"

// Data unit sizes in bits.
const (
	Unit4 = 4
	Unit8 = 8
)

const (
	offsetMask    = 0x3f
	maxOffset     = offsetMask
	leftLeafFlag  = 0x80
	rightLeafFlag = 0x40
	// position of the root in the tree table
	rootPos = 1
)
