// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"errors"

	"github.com/ulikunitz/mar/codec"
)

// emptyTable is the table written for empty inputs: a root with two
// leaves.
var emptyTable = []byte{1, leftLeafFlag | rightLeafFlag, 0, 1}

// symbols returns the symbols of p for the given unit. In 4-bit mode
// the low nibble of a byte precedes the high nibble.
func symbols(p []byte, unit byte) []byte {
	if unit == Unit8 {
		return p
	}
	s := make([]byte, 0, 2*len(p))
	for _, c := range p {
		s = append(s, c&0xf, c>>4)
	}
	return s
}

// CompressUnit encodes p using the given data unit size, which must be
// 4 or 8. Inputs with fewer than two distinct symbols cannot be
// represented and result in an error wrapping codec.ErrDatasetTooSmall;
// the empty input is the exception.
func CompressUnit(p []byte, unit byte) (out []byte, err error) {
	if unit != Unit4 && unit != Unit8 {
		return nil, codec.Errorf(name, "compress",
			codec.ErrUnsupportedCodec, "data unit size %d", unit)
	}
	h, err := codec.NewHeader(name, codec.Huffman, unit, len(p))
	if err != nil {
		return nil, err
	}
	out = h.Append(nil)
	if len(p) == 0 {
		return append(out, emptyTable...), nil
	}

	syms := symbols(p, unit)
	freq := make([]int, 1<<unit)
	distinct := 0
	for _, s := range syms {
		if freq[s] == 0 {
			distinct++
		}
		freq[s]++
	}
	if distinct < 2 {
		return nil, codec.Errorf(name, "compress",
			codec.ErrDatasetTooSmall,
			"%d distinct %d-bit symbols", distinct, unit)
	}

	t := buildTree(freq)
	if err = t.layout(); err != nil {
		return nil, err
	}
	t.assignCodes(t.root, 0, 0)
	out = t.writeTable(out)

	var codes [256]*node
	for k := range t.nodes {
		if nd := &t.nodes[k]; nd.leaf {
			codes[nd.data] = nd
		}
	}
	w := newWordWriter()
	for _, s := range syms {
		nd := codes[s]
		if err = w.writeCode(nd.code, nd.codeLen); err != nil {
			return nil, err
		}
	}
	return w.appendTo(out)
}

// Compress encodes p with the data unit size that produces the smaller
// output. A unit that cannot represent the data is skipped; if neither
// can, the error for the 8-bit unit is returned.
func Compress(p []byte) (out []byte, err error) {
	out, err = CompressUnit(p, Unit8)
	if err != nil && !skippable(err) {
		return nil, err
	}
	out4, err4 := CompressUnit(p, Unit4)
	if err4 != nil {
		if !skippable(err4) {
			return nil, err4
		}
		return out, err
	}
	if err != nil || len(out4) < len(out) {
		return out4, nil
	}
	return out, nil
}

// skippable reports whether the error of one unit allows trying the other.
func skippable(err error) bool {
	return errors.Is(err, codec.ErrDatasetTooSmall) ||
		errors.Is(err, codec.ErrTooLarge)
}
