// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import "fmt"

// Tag identifies the codec in the compression header.
type Tag byte

// Codec tags as stored in bits 4-7 of the compression header.
const (
	None    Tag = 0
	LZSS    Tag = 1
	Huffman Tag = 2
	RLE     Tag = 3
)

// String returns the codec name.
func (t Tag) String() string {
	switch t {
	case None:
		return "none"
	case LZSS:
		return "lzss"
	case Huffman:
		return "huffman"
	case RLE:
		return "rle"
	}
	return fmt.Sprintf("Tag(%d)", byte(t))
}

const (
	// HeaderLen is the length of the compression header in bytes.
	HeaderLen = 4
	// MaxSize is the maximum decompressed size that can be stored
	// in the header.
	MaxSize = 1<<24 - 1
)

// Header is the 32-bit compression header that starts every RLE, LZSS
// and Huffman stream. Unit is the data unit size in bits; it is used by
// the Huffman codec only and zero for the others.
type Header struct {
	Tag  Tag
	Unit byte
	Size int
}

// Verify checks the header fields.
func (h Header) Verify() error {
	if h.Tag > RLE {
		return fmt.Errorf("codec: tag %d out of range", h.Tag)
	}
	if h.Unit > 0xf {
		return fmt.Errorf("codec: data unit size %d out of range",
			h.Unit)
	}
	if !(0 <= h.Size && h.Size <= MaxSize) {
		return fmt.Errorf("codec: size %d out of range [0,%d]",
			h.Size, MaxSize)
	}
	return nil
}

// Append appends the header to p. The header must be valid.
func (h Header) Append(p []byte) []byte {
	x := uint32(h.Size)<<8 | uint32(h.Tag)<<4 | uint32(h.Unit)
	return AppendUint32LE(p, x)
}

// ParseHeader decodes the header at the start of p without checking the
// tag.
func ParseHeader(p []byte) (h Header, err error) {
	if len(p) < HeaderLen {
		return h, ErrUnexpectedEOF
	}
	x := Uint32LE(p)
	h = Header{
		Tag:  Tag(x>>4) & 0xf,
		Unit: byte(x & 0xf),
		Size: int(x >> 8),
	}
	return h, nil
}

// ReadHeader parses the header at the start of p and verifies that it
// carries the tag want. The name of the codec is used for the error
// value.
func ReadHeader(p []byte, name string, want Tag) (h Header, err error) {
	h, err = ParseHeader(p)
	if err != nil {
		return h, Errorf(name, "header", ErrUnexpectedEOF,
			"%d bytes available", len(p))
	}
	if h.Tag != want {
		return h, Errorf(name, "header", ErrFormat,
			"tag %s; want %s", h.Tag, want)
	}
	return h, nil
}

// NewHeader creates a header for the given codec and decompressed size.
// Sizes exceeding MaxSize are reported as error.
func NewHeader(name string, t Tag, unit byte, size int) (h Header, err error) {
	h = Header{Tag: t, Unit: unit, Size: size}
	if size > MaxSize {
		return h, Errorf(name, "compress", ErrTooLarge,
			"input size %d exceeds maximum %d", size, MaxSize)
	}
	if err = h.Verify(); err != nil {
		return h, err
	}
	return h, nil
}
