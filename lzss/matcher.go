// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzss

const (
	hashBits = 14
	hashSize = 1 << hashBits
)

// matcher finds the longest match for a position using hash chains over
// the three-byte prefixes of the window. The chains link positions from
// nearest to farthest, so the first longest match found has the
// smallest displacement.
type matcher struct {
	data []byte
	head []int32
	// prev is indexed by position modulo windowSize
	prev []int32
	// next position to insert
	pos int
}

func newMatcher(data []byte) *matcher {
	m := &matcher{
		data: data,
		head: make([]int32, hashSize),
		prev: make([]int32, windowSize),
	}
	for i := range m.head {
		m.head[i] = -1
	}
	return m
}

func hash3(p []byte) uint32 {
	x := uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
	return (x * 2654435761) >> (32 - hashBits)
}

// insertUpTo adds all positions below end to the hash chains.
func (m *matcher) insertUpTo(end int) {
	for ; m.pos < end; m.pos++ {
		if m.pos+minMatchLen > len(m.data) {
			continue
		}
		h := hash3(m.data[m.pos:])
		m.prev[m.pos%windowSize] = m.head[h]
		m.head[h] = int32(m.pos)
	}
}

// longest returns the length and displacement of the longest match for
// position i. All positions before i must have been inserted. A length
// below minMatchLen means that no match has been found.
func (m *matcher) longest(i int) (n, dist int) {
	p := m.data
	if i+minMatchLen > len(p) {
		return 0, 0
	}
	limit := len(p) - i
	if limit > maxMatchLen {
		limit = maxMatchLen
	}
	cand := int(m.head[hash3(p[i:])])
	for cand >= 0 && i-cand <= windowSize {
		k := 0
		for k < limit && p[cand+k] == p[i+k] {
			k++
		}
		if k > n {
			n, dist = k, i-cand
			if n == limit {
				break
			}
		}
		cand = int(m.prev[cand%windowSize])
	}
	return n, dist
}
