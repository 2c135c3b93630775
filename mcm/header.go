// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcm

import (
	"bytes"
	"errors"
	"io"

	"github.com/ulikunitz/mar/codec"
)

const name = "mcm"

// magic starts every MCM stream.
var magic = []byte{'M', 'C', 'M', 0}

// fixedHeaderLen is the length of the header without the offset table.
const fixedHeaderLen = 20

// Header describes an MCM stream. Offsets has ChunkCount()+1 entries;
// they are absolute positions in the MCM stream and the last one marks
// the end of the chunk data.
type Header struct {
	Size         int
	MaxChunkSize int
	Type1        Method
	Type2        Method
	Offsets      []int
}

// ChunkCount returns the number of chunks.
func (h *Header) ChunkCount() int {
	if len(h.Offsets) == 0 {
		return 0
	}
	return len(h.Offsets) - 1
}

// Len returns the length of the header including the offset table.
func (h *Header) Len() int {
	return fixedHeaderLen + 4*len(h.Offsets)
}

// Chunk returns the byte range of chunk i.
func (h *Header) Chunk(i int) (start, end int) {
	return h.Offsets[i], h.Offsets[i+1]
}

// Verify checks the header for consistency.
func (h *Header) Verify() error {
	if err := h.Type1.Verify(); err != nil {
		return err
	}
	if err := h.Type2.Verify(); err != nil {
		return err
	}
	if h.Size < 0 || h.MaxChunkSize < 0 {
		return codec.Errorf(name, "header", codec.ErrCorrupt,
			"negative size")
	}
	if len(h.Offsets) == 0 {
		return codec.Errorf(name, "header", codec.ErrCorrupt,
			"offset table is empty")
	}
	if h.Offsets[0] < h.Len() {
		return codec.Errorf(name, "header", codec.ErrCorrupt,
			"first chunk at %d overlaps header of %d bytes",
			h.Offsets[0], h.Len())
	}
	for i := 1; i < len(h.Offsets); i++ {
		if h.Offsets[i] <= h.Offsets[i-1] {
			return codec.Errorf(name, "header", codec.ErrCorrupt,
				"offset %d not increasing", i)
		}
	}
	n := h.ChunkCount()
	if n > 0 && (h.MaxChunkSize == 0 || h.MaxChunkSize > codec.MaxSize) {
		return codec.Errorf(name, "header", codec.ErrCorrupt,
			"max chunk size %d out of range", h.MaxChunkSize)
	}
	if n == 0 && h.Size != 0 {
		return codec.Errorf(name, "header", codec.ErrCorrupt,
			"size %d without chunks", h.Size)
	}
	if n > 0 && h.Size > n*h.MaxChunkSize {
		return codec.Errorf(name, "header", codec.ErrCorrupt,
			"size %d exceeds %d chunks of %d bytes",
			h.Size, n, h.MaxChunkSize)
	}
	return nil
}

// AppendBinary appends the binary representation of the header to p.
func (h *Header) AppendBinary(p []byte) []byte {
	p = append(p, magic...)
	p = codec.AppendUint32LE(p, uint32(h.Size))
	p = codec.AppendUint32LE(p, uint32(h.MaxChunkSize))
	p = codec.AppendUint32LE(p, uint32(h.ChunkCount()))
	p = append(p, byte(h.Type1), byte(h.Type2), 0, 0)
	for _, off := range h.Offsets {
		p = codec.AppendUint32LE(p, uint32(off))
	}
	return p
}

// parseFixed decodes the fixed part of the header and returns the chunk
// count.
func (h *Header) parseFixed(p []byte) (n int, err error) {
	if !bytes.Equal(p[:4], magic) {
		return 0, codec.Errorf(name, "header", codec.ErrFormat,
			"magic % x", p[:4])
	}
	*h = Header{
		Size:         int(codec.Uint32LE(p[4:])),
		MaxChunkSize: int(codec.Uint32LE(p[8:])),
		Type1:        Method(p[16]),
		Type2:        Method(p[17]),
	}
	u := codec.Uint32LE(p[12:])
	if u >= 1<<28 {
		return 0, codec.Errorf(name, "header", codec.ErrCorrupt,
			"chunk count %d", u)
	}
	return int(u), nil
}

// ParseHeader decodes the header at the start of p. The offsets must
// not point beyond the end of p.
func ParseHeader(p []byte) (h *Header, err error) {
	if len(p) < fixedHeaderLen {
		return nil, codec.Errorf(name, "header",
			codec.ErrUnexpectedEOF, "%d bytes", len(p))
	}
	h = new(Header)
	n, err := h.parseFixed(p)
	if err != nil {
		return nil, err
	}
	end := fixedHeaderLen + 4*(n+1)
	if end > len(p) {
		return nil, codec.Errorf(name, "header",
			codec.ErrUnexpectedEOF,
			"offset table of %d chunks truncated", n)
	}
	h.Offsets = make([]int, n+1)
	for i := range h.Offsets {
		h.Offsets[i] = int(codec.Uint32LE(p[fixedHeaderLen+4*i:]))
	}
	if err = h.Verify(); err != nil {
		return nil, err
	}
	if last := h.Offsets[n]; last > len(p) {
		return nil, codec.Errorf(name, "header",
			codec.ErrUnexpectedEOF,
			"chunk data ends at %d beyond %d bytes", last, len(p))
	}
	return h, nil
}

// ReadHeader reads the header from r. It consumes exactly h.Len()
// bytes.
func ReadHeader(r io.Reader) (h *Header, err error) {
	p := make([]byte, fixedHeaderLen)
	if _, err = io.ReadFull(r, p); err != nil {
		return nil, eofError(err, "header")
	}
	h = new(Header)
	n, err := h.parseFixed(p)
	if err != nil {
		return nil, err
	}
	// the table is read in pieces; n comes from untrusted input
	const piece = 1024
	h.Offsets = make([]int, 0, 1+n%piece)
	for k := n + 1; k > 0; {
		m := k
		if m > piece {
			m = piece
		}
		q := make([]byte, 4*m)
		if _, err = io.ReadFull(r, q); err != nil {
			return nil, eofError(err, "offset table")
		}
		for i := 0; i < m; i++ {
			h.Offsets = append(h.Offsets,
				int(codec.Uint32LE(q[4*i:])))
		}
		k -= m
	}
	if err = h.Verify(); err != nil {
		return nil, err
	}
	return h, nil
}

// eofError converts an early end of the stream into an error wrapping
// codec.ErrUnexpectedEOF.
func eofError(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return codec.Errorf(name, "read", codec.ErrUnexpectedEOF,
			"%s truncated", what)
	}
	return err
}
