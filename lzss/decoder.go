// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzss

import (
	"bytes"

	"github.com/ulikunitz/lz"

	"github.com/ulikunitz/mar/codec"
)

// Decompress decodes the LZSS stream in p. Decoding stops as soon as the
// declared size has been produced, even inside a group.
func Decompress(p []byte) (out []byte, err error) {
	h, err := codec.ReadHeader(p, name, codec.LZSS)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(h.Size)
	dec, err := lz.NewRingDecoder(&buf, windowSize)
	if err != nil {
		return nil, err
	}
	// n counts the decoded bytes
	n := 0
	i := codec.HeaderLen
	for n < h.Size {
		if i >= len(p) {
			return nil, codec.Errorf(name, "decompress",
				codec.ErrUnexpectedEOF,
				"control byte missing after %d of %d bytes",
				n, h.Size)
		}
		flags := p[i]
		i++
		for mask := byte(0x80); mask != 0 && n < h.Size; mask >>= 1 {
			if flags&mask == 0 {
				if i >= len(p) {
					return nil, codec.Errorf(name,
						"decompress",
						codec.ErrUnexpectedEOF,
						"literal missing")
				}
				if _, err = dec.Write(p[i : i+1]); err != nil {
					return nil, err
				}
				i++
				n++
				continue
			}
			if i+1 >= len(p) {
				return nil, codec.Errorf(name, "decompress",
					codec.ErrUnexpectedEOF,
					"back-reference truncated")
			}
			m := int(p[i]>>4) + minMatchLen
			d := (int(p[i]&0xf)<<8 | int(p[i+1])) + 1
			i += 2
			if d > n {
				return nil, codec.Errorf(name, "decompress",
					codec.ErrCorrupt,
					"displacement %d exceeds output length %d",
					d, n)
			}
			if n+m > h.Size {
				return nil, codec.Errorf(name, "decompress",
					codec.ErrCorrupt,
					"match of %d overshoots size %d",
					m, h.Size)
			}
			if err = dec.WriteMatch(m, d); err != nil {
				return nil, err
			}
			n += m
		}
	}
	if err = dec.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
