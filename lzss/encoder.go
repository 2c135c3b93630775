// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzss

import (
	"github.com/ulikunitz/mar/codec"
)

// Compress encodes p. At every position the longest match of 3 to 18
// bytes in the preceding 4096 bytes is used, preferring the nearest of
// equally long matches. The output is padded with zeros to a multiple
// of four bytes.
func Compress(p []byte) (out []byte, err error) {
	h, err := codec.NewHeader(name, codec.LZSS, 0, len(p))
	if err != nil {
		return nil, err
	}
	out = make([]byte, 0, codec.HeaderLen+len(p)+len(p)/8+4)
	out = h.Append(out)

	m := newMatcher(p)
	var (
		flagPos int
		mask    byte
	)
	for i := 0; i < len(p); {
		if mask == 0 {
			flagPos = len(out)
			out = append(out, 0)
			mask = 0x80
		}
		m.insertUpTo(i)
		n, d := m.longest(i)
		if n >= minMatchLen {
			out[flagPos] |= mask
			d--
			out = append(out, byte(n-minMatchLen)<<4|byte(d>>8),
				byte(d))
			i += n
		} else {
			out = append(out, p[i])
			i++
		}
		mask >>= 1
	}
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out, nil
}
