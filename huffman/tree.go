// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import (
	"github.com/ulikunitz/mar/codec"
)

// node is an element of the tree arena. Leaves have no children; the
// children of internal nodes are arena indexes.
type node struct {
	left, right int
	leaf        bool
	data        byte

	// encoder fields
	freq    int
	seq     int
	pos     int
	code    uint64
	codeLen uint8
}

// tree stores the nodes in an arena. The root has index 0 for parsed
// trees; for constructed trees it is given by root.
type tree struct {
	nodes []node
	root  int
}

func (t *tree) addLeaf(data byte, freq int) int {
	t.nodes = append(t.nodes, node{
		left: -1, right: -1, leaf: true, data: data,
		freq: freq, seq: len(t.nodes),
	})
	return len(t.nodes) - 1
}

func (t *tree) addParent(left, right int) int {
	t.nodes = append(t.nodes, node{
		left: left, right: right,
		freq: t.nodes[left].freq + t.nodes[right].freq,
		seq:  len(t.nodes),
	})
	return len(t.nodes) - 1
}

// childPos computes the table position of a child of the node at
// position pos; bit 0 selects the left and bit 1 the right child.
func childPos(pos int, b byte, bit int) int {
	return (pos &^ 1) + int(b&offsetMask)*2 + 2 + bit
}

// readTree reconstructs the tree stored in table. The table includes the
// size byte at position 0. Only nodes reachable from the root are
// visited.
func readTree(table []byte, unit byte) (t *tree, err error) {
	if len(table) <= rootPos {
		return nil, codec.Errorf(name, "tree", codec.ErrCorrupt,
			"tree table has no root")
	}
	t = &tree{}
	t.root, err = t.readNode(table, rootPos, false, unit)
	return t, err
}

func (t *tree) readNode(table []byte, pos int, leaf bool, unit byte) (int, error) {
	if pos >= len(table) {
		return -1, codec.Errorf(name, "tree", codec.ErrCorrupt,
			"node position %d outside of table with %d bytes",
			pos, len(table))
	}
	if len(t.nodes) >= len(table) {
		return -1, codec.Errorf(name, "tree", codec.ErrCorrupt,
			"more nodes than table bytes")
	}
	b := table[pos]
	if leaf {
		if unit == Unit4 && b > 0xf {
			return -1, codec.Errorf(name, "tree",
				codec.ErrCorrupt,
				"leaf %#02x at position %d exceeds 4 bits",
				b, pos)
		}
		i := t.addLeaf(b, 0)
		t.nodes[i].pos = pos
		return i, nil
	}
	i := len(t.nodes)
	t.nodes = append(t.nodes, node{pos: pos, seq: i})
	left, err := t.readNode(table, childPos(pos, b, 0),
		b&leftLeafFlag != 0, unit)
	if err != nil {
		return -1, err
	}
	right, err := t.readNode(table, childPos(pos, b, 1),
		b&rightLeafFlag != 0, unit)
	if err != nil {
		return -1, err
	}
	t.nodes[i].left = left
	t.nodes[i].right = right
	return i, nil
}

// assignCodes computes the code of every leaf. Left edges add a zero bit
// and right edges a one bit.
func (t *tree) assignCodes(i int, code uint64, n uint8) {
	nd := &t.nodes[i]
	if nd.leaf {
		nd.code, nd.codeLen = code, n
		return
	}
	l, r := nd.left, nd.right
	t.assignCodes(l, code<<1, n+1)
	t.assignCodes(r, code<<1|1, n+1)
}
