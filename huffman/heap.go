// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package huffman

import "container/heap"

// nodeHeap is a min-heap of arena indexes ordered by frequency. Nodes
// with equal frequency are ordered by their sequence number, which makes
// the tree construction deterministic.
type nodeHeap struct {
	t   *tree
	idx []int
}

func (h *nodeHeap) Len() int { return len(h.idx) }

func (h *nodeHeap) Less(i, j int) bool {
	a, b := &h.t.nodes[h.idx[i]], &h.t.nodes[h.idx[j]]
	if a.freq != b.freq {
		return a.freq < b.freq
	}
	return a.seq < b.seq
}

func (h *nodeHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }

func (h *nodeHeap) Push(x interface{}) { h.idx = append(h.idx, x.(int)) }

func (h *nodeHeap) Pop() interface{} {
	n := len(h.idx) - 1
	x := h.idx[n]
	h.idx = h.idx[:n]
	return x
}

// buildTree constructs the Huffman tree for the symbol frequencies. At
// least two frequencies must be positive.
func buildTree(freq []int) *tree {
	t := &tree{nodes: make([]node, 0, 2*len(freq))}
	h := &nodeHeap{t: t}
	for s, f := range freq {
		if f > 0 {
			h.idx = append(h.idx, t.addLeaf(byte(s), f))
		}
	}
	heap.Init(h)
	for h.Len() > 1 {
		a := heap.Pop(h).(int)
		b := heap.Pop(h).(int)
		heap.Push(h, t.addParent(a, b))
	}
	t.root = h.idx[0]
	return t
}
