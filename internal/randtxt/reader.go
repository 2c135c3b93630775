// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package randtxt produces pseudo-random but compressible test data. The
// output mixes words of a small vocabulary with runs of repeated bytes
// and short binary records, which resembles the script and table assets
// stored in MAR archives.
package randtxt

import (
	"io"
	"math/rand"
)

var words = []string{
	"the", "of", "and", "to", "in", "is", "you", "that", "it", "he",
	"was", "for", "on", "are", "as", "with", "his", "they", "at",
	"be", "this", "have", "from", "or", "one", "had", "by", "word",
	"sword", "shield", "potion", "dragon", "castle", "quest", "item",
	"SPRITE", "PALETTE", "TILE", "MAP", "EVENT", "FLAG", "NPC",
}

// Reader generates an endless stream of test data.
type Reader struct {
	rnd *rand.Rand
	buf []byte
}

// NewReader creates a reader using src as source of randomness. Equal
// sources produce equal streams.
func NewReader(src rand.Source) *Reader {
	return &Reader{rnd: rand.New(src)}
}

// fill appends the next token to r.buf.
func (r *Reader) fill() {
	switch k := r.rnd.Intn(16); {
	case k < 11:
		w := words[r.rnd.Intn(len(words))]
		r.buf = append(r.buf, w...)
		if r.rnd.Intn(8) == 0 {
			r.buf = append(r.buf, '.', '\n')
		} else {
			r.buf = append(r.buf, ' ')
		}
	case k < 14:
		c := byte(r.rnd.Intn(4))
		n := 3 + r.rnd.Intn(200)
		for i := 0; i < n; i++ {
			r.buf = append(r.buf, c)
		}
	default:
		n := 4 + r.rnd.Intn(12)
		for i := 0; i < n; i++ {
			r.buf = append(r.buf, byte(r.rnd.Intn(256)))
		}
	}
}

// Read fills p completely. It never returns an error.
func (r *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if len(r.buf) == 0 {
			r.fill()
		}
		k := copy(p[n:], r.buf)
		r.buf = r.buf[k:]
		n += k
	}
	return n, nil
}

// Bytes returns n bytes of test data generated with the given seed.
func Bytes(seed int64, n int) []byte {
	p := make([]byte, n)
	if _, err := io.ReadFull(NewReader(rand.NewSource(seed)), p); err != nil {
		panic(err)
	}
	return p
}
