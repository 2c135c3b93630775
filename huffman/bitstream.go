// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"bytes"

	"github.com/icza/bitio"
)

// swapWords reverses the byte order of every complete 32-bit word in p.
// It converts between the little-endian words of the stream and the
// most significant bit first byte order of bitio.
func swapWords(p []byte) {
	for i := 0; i+4 <= len(p); i += 4 {
		p[i], p[i+1], p[i+2], p[i+3] = p[i+3], p[i+2], p[i+1], p[i]
	}
}

// wordReader returns a bit reader for the complete words in p. A
// trailing partial word is ignored.
func wordReader(p []byte) *bitio.Reader {
	n := len(p) &^ 3
	q := make([]byte, n)
	copy(q, p[:n])
	swapWords(q)
	return bitio.NewReader(bytes.NewReader(q))
}

// wordWriter collects codes and produces the word stream.
type wordWriter struct {
	buf bytes.Buffer
	bw  *bitio.Writer
}

func newWordWriter() *wordWriter {
	w := new(wordWriter)
	w.bw = bitio.NewWriter(&w.buf)
	return w
}

// writeCode writes the n least significant bits of code, most
// significant bit first.
func (w *wordWriter) writeCode(code uint64, n uint8) error {
	return w.bw.WriteBits(code, n)
}

// appendTo flushes the pending bits, pads the last word with zero bits
// and appends the words to p.
func (w *wordWriter) appendTo(p []byte) ([]byte, error) {
	if err := w.bw.Close(); err != nil {
		return p, err
	}
	for w.buf.Len()%4 != 0 {
		w.buf.WriteByte(0)
	}
	q := w.buf.Bytes()
	swapWords(q)
	return append(p, q...), nil
}
