// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rle implements the run-length encoding of the compression
// header family with tag 3.
//
// The body is a sequence of flag bytes. If bit 7 of the flag is clear,
// (flag&0x7f)+1 literal bytes follow. If bit 7 is set, a single byte
// follows that is repeated (flag&0x7f)+3 times.
package rle

import (
	"github.com/ulikunitz/mar/codec"
)

const name = "rle"

// Limits for the runs.
const (
	minRepeat  = 3
	maxRepeat  = 0x7f + minRepeat
	maxLiteral = 0x7f + 1
	repeatFlag = 0x80
)

// Decompress decodes the RLE stream in p. The result has exactly the
// size declared in the header.
func Decompress(p []byte) (out []byte, err error) {
	h, err := codec.ReadHeader(p, name, codec.RLE)
	if err != nil {
		return nil, err
	}
	out = make([]byte, 0, h.Size)
	i := codec.HeaderLen
	for len(out) < h.Size {
		if i >= len(p) {
			return out, codec.Errorf(name, "decompress",
				codec.ErrUnexpectedEOF,
				"flag missing after %d of %d bytes",
				len(out), h.Size)
		}
		flag := p[i]
		i++
		if flag&repeatFlag != 0 {
			n := int(flag&^repeatFlag) + minRepeat
			if len(out)+n > h.Size {
				return out, codec.Errorf(name, "decompress",
					codec.ErrCorrupt,
					"repeat run of %d overshoots size %d",
					n, h.Size)
			}
			if i >= len(p) {
				return out, codec.Errorf(name, "decompress",
					codec.ErrUnexpectedEOF,
					"repeat byte missing")
			}
			c := p[i]
			i++
			for k := 0; k < n; k++ {
				out = append(out, c)
			}
			continue
		}
		n := int(flag) + 1
		if len(out)+n > h.Size {
			return out, codec.Errorf(name, "decompress",
				codec.ErrCorrupt,
				"literal run of %d overshoots size %d", n, h.Size)
		}
		if i+n > len(p) {
			return out, codec.Errorf(name, "decompress",
				codec.ErrUnexpectedEOF,
				"literal run of %d truncated", n)
		}
		out = append(out, p[i:i+n]...)
		i += n
	}
	return out, nil
}

// runLen returns the number of bytes starting at p[i] equal to p[i],
// limited by maxRepeat.
func runLen(p []byte, i int) int {
	c := p[i]
	n := 1
	for i+n < len(p) && n < maxRepeat && p[i+n] == c {
		n++
	}
	return n
}

// Compress encodes p greedily. Runs of at least three identical bytes
// become repeat runs; all other bytes are collected in literal runs.
func Compress(p []byte) (out []byte, err error) {
	h, err := codec.NewHeader(name, codec.RLE, 0, len(p))
	if err != nil {
		return nil, err
	}
	out = make([]byte, 0, codec.HeaderLen+len(p)+len(p)/maxLiteral+1)
	out = h.Append(out)

	lit := 0
	flush := func(end int) {
		if lit == 0 {
			return
		}
		out = append(out, byte(lit-1))
		out = append(out, p[end-lit:end]...)
		lit = 0
	}
	for i := 0; i < len(p); {
		n := runLen(p, i)
		if n >= minRepeat {
			flush(i)
			out = append(out, repeatFlag|byte(n-minRepeat), p[i])
			i += n
			continue
		}
		// n < minRepeat; the bytes become literals
		for k := 0; k < n; k++ {
			lit++
			i++
			if lit == maxLiteral {
				flush(i)
			}
		}
	}
	flush(len(p))
	return out, nil
}
