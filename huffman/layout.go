// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"github.com/ulikunitz/mar/codec"
)

// offset returns the value of the offset field for an internal node at
// position pos whose children are at pair position.
func offset(pos, pair int) int {
	return (pair - (pos &^ 1) - 2) / 2
}

// deadline returns the largest pair position that the children of a
// node at position pos can have.
func deadline(pos int) int {
	return (pos &^ 1) + 2 + 2*maxOffset
}

// layoutLevelOrder assigns table positions in level order: the root
// first, then the child pairs of each level in tree order. It reports
// false if an offset doesn't fit into six bits.
func (t *tree) layoutLevelOrder() bool {
	t.nodes[t.root].pos = rootPos
	next := rootPos + 1
	queue := []int{t.root}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		nd := &t.nodes[i]
		if nd.leaf {
			continue
		}
		if offset(nd.pos, next) > maxOffset {
			return false
		}
		t.nodes[nd.left].pos = next
		t.nodes[nd.right].pos = next + 1
		next += 2
		queue = append(queue, nd.left, nd.right)
	}
	return true
}

// feasible checks whether nodes with the given sorted deadlines can get
// their child pairs in deadline order starting at pair position next.
func feasible(deadlines []int, next int) bool {
	for _, d := range deadlines {
		if next > d {
			return false
		}
		next += 2
	}
	return true
}

// layoutBounded assigns table positions for trees where the level
// order overflows the offset field. Pairs are placed depth first, which
// keeps the number of pending nodes small, unless this would make a
// pending node miss its deadline; then the node with the earliest
// deadline is served.
func (t *tree) layoutBounded() error {
	t.nodes[t.root].pos = rootPos
	next := rootPos + 1
	pending := []int{t.root}
	var ds []int
	for len(pending) > 0 {
		k := len(pending) - 1
		i := pending[k]
		if next <= deadline(t.nodes[i].pos) {
			// children of i would get the pair at next
			ds = ds[:0]
			for _, j := range pending[:k] {
				ds = append(ds, deadline(t.nodes[j].pos))
			}
			nd := &t.nodes[i]
			for _, c := range []int{nd.left, nd.right} {
				if !t.nodes[c].leaf {
					ds = append(ds, deadline(next))
				}
			}
			if !feasible(ds, next+2) {
				k = 0
			}
		} else {
			k = 0
		}
		i = pending[k]
		if next > deadline(t.nodes[i].pos) {
			return codec.Errorf(name, "compress", codec.ErrTooLarge,
				"tree too wide for 6-bit offsets")
		}
		pending = append(pending[:k], pending[k+1:]...)
		nd := &t.nodes[i]
		t.nodes[nd.left].pos = next
		t.nodes[nd.right].pos = next + 1
		next += 2
		for _, c := range []int{nd.left, nd.right} {
			if !t.nodes[c].leaf {
				pending = append(pending, c)
			}
		}
	}
	return nil
}

// layout assigns the table positions of all nodes.
func (t *tree) layout() error {
	if t.layoutLevelOrder() {
		return nil
	}
	return t.layoutBounded()
}

// writeTable serializes the tree into a table whose length including
// the size byte is a multiple of four.
func (t *tree) writeTable(p []byte) []byte {
	n := len(t.nodes) + 1
	n = (n + 3) &^ 3
	start := len(p)
	for k := 0; k < n; k++ {
		p = append(p, 0)
	}
	table := p[start:]
	table[0] = byte(n/2 - 1)
	for _, nd := range t.nodes {
		if nd.leaf {
			table[nd.pos] = nd.data
			continue
		}
		l, r := &t.nodes[nd.left], &t.nodes[nd.right]
		b := byte(offset(nd.pos, l.pos))
		if l.leaf {
			b |= leftLeafFlag
		}
		if r.leaf {
			b |= rightLeafFlag
		}
		table[nd.pos] = b
	}
	return p
}
