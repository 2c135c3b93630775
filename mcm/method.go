// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcm

import (
	"fmt"

	"github.com/ulikunitz/mar/codec"
	"github.com/ulikunitz/mar/huffman"
	"github.com/ulikunitz/mar/lzss"
	"github.com/ulikunitz/mar/rle"
)

// Method is the compression method byte of the MCM header. The values
// differ from the tags of the compression headers.
type Method byte

// Compression methods.
const (
	None    Method = 0
	RLE     Method = 1
	LZSS    Method = 2
	Huffman Method = 3
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case RLE:
		return "rle"
	case LZSS:
		return "lzss"
	case Huffman:
		return "huffman"
	}
	return fmt.Sprintf("Method(%d)", byte(m))
}

// ParseMethod converts a method name into a Method.
func ParseMethod(s string) (m Method, err error) {
	for m = None; m <= Huffman; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, codec.Errorf(name, "method", codec.ErrUnsupportedCodec,
		"unknown method %q", s)
}

// Verify returns an error wrapping codec.ErrUnsupportedCodec for
// unknown methods.
func (m Method) Verify() error {
	if m > Huffman {
		return codec.Errorf(name, "method", codec.ErrUnsupportedCodec,
			"method byte %d", byte(m))
	}
	return nil
}

// decode reverses the method. None copies the input.
func (m Method) decode(p []byte) ([]byte, error) {
	switch m {
	case None:
		q := make([]byte, len(p))
		copy(q, p)
		return q, nil
	case RLE:
		return rle.Decompress(p)
	case LZSS:
		return lzss.Decompress(p)
	case Huffman:
		return huffman.Decompress(p)
	}
	return nil, m.Verify()
}

// encode applies the method. A zero unit selects the Huffman data unit
// size automatically.
func (m Method) encode(p []byte, unit byte) ([]byte, error) {
	switch m {
	case None:
		q := make([]byte, len(p))
		copy(q, p)
		return q, nil
	case RLE:
		return rle.Compress(p)
	case LZSS:
		return lzss.Compress(p)
	case Huffman:
		if unit == 0 {
			return huffman.Compress(p)
		}
		return huffman.CompressUnit(p, unit)
	}
	return nil, m.Verify()
}
