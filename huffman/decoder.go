// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"errors"
	"io"

	"github.com/ulikunitz/mar/codec"
)

// splitTable returns the tree table including its size byte and the
// bit stream following it.
func splitTable(p []byte) (table, stream []byte, err error) {
	if len(p) < 1 {
		return nil, nil, codec.Errorf(name, "tree",
			codec.ErrUnexpectedEOF, "tree size missing")
	}
	n := (int(p[0]) + 1) * 2
	if n > len(p) {
		return nil, nil, codec.Errorf(name, "tree",
			codec.ErrUnexpectedEOF,
			"tree table of %d bytes truncated", n)
	}
	return p[:n], p[n:], nil
}

// Decompress decodes the Huffman stream in p.
func Decompress(p []byte) (out []byte, err error) {
	h, err := codec.ReadHeader(p, name, codec.Huffman)
	if err != nil {
		return nil, err
	}
	if h.Unit != Unit4 && h.Unit != Unit8 {
		return nil, codec.Errorf(name, "header", codec.ErrFormat,
			"data unit size %d", h.Unit)
	}
	out = make([]byte, 0, h.Size)
	if h.Size == 0 {
		return out, nil
	}
	table, stream, err := splitTable(p[codec.HeaderLen:])
	if err != nil {
		return nil, err
	}
	t, err := readTree(table, h.Unit)
	if err != nil {
		return nil, err
	}

	br := wordReader(stream)
	var (
		c    byte
		half bool
	)
	i := t.root
	for len(out) < h.Size {
		bit, err := br.ReadBits(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = codec.Errorf(name, "decompress",
					codec.ErrUnexpectedEOF,
					"bit stream ends after %d of %d bytes",
					len(out), h.Size)
			}
			return out, err
		}
		nd := &t.nodes[i]
		if bit == 0 {
			i = nd.left
		} else {
			i = nd.right
		}
		nd = &t.nodes[i]
		if !nd.leaf {
			continue
		}
		i = t.root
		if h.Unit == Unit8 {
			out = append(out, nd.data)
			continue
		}
		if !half {
			c = nd.data
			half = true
			continue
		}
		out = append(out, c|nd.data<<4)
		half = false
	}
	return out, nil
}
