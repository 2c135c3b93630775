// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcm

import (
	"errors"
	"io"

	"github.com/ulikunitz/mar/codec"
	"github.com/ulikunitz/mar/internal/discard"
	"github.com/ulikunitz/mar/xlog"
)

// ReaderConfig defines the parameters for the MCM reader.
type ReaderConfig struct {
	// Logger receives a message per decoded chunk. It may be nil.
	Logger xlog.Logger
}

// decodeChunk decodes one chunk: first with Type1, the result with
// Type2.
func decodeChunk(h *Header, i int, p []byte) (q []byte, err error) {
	if q, err = h.Type1.decode(p); err != nil {
		return nil, err
	}
	if q, err = h.Type2.decode(q); err != nil {
		return nil, err
	}
	if len(q) > h.MaxChunkSize {
		return nil, codec.Errorf(name, "decompress", codec.ErrCorrupt,
			"chunk %d has %d bytes; max %d",
			i, len(q), h.MaxChunkSize)
	}
	return q, nil
}

// Decompress decodes the MCM stream in p.
func Decompress(p []byte) (out []byte, err error) {
	return DecompressConfig(p, ReaderConfig{})
}

// DecompressConfig decodes the MCM stream in p using the given
// configuration.
func DecompressConfig(p []byte, cfg ReaderConfig) (out []byte, err error) {
	h, err := ParseHeader(p)
	if err != nil {
		return nil, err
	}
	out = make([]byte, 0, h.Size)
	for i := 0; i < h.ChunkCount(); i++ {
		start, end := h.Chunk(i)
		q, err := decodeChunk(h, i, p[start:end])
		if err != nil {
			return nil, err
		}
		xlog.Printf(cfg.Logger, "mcm: chunk %d: %d -> %d bytes",
			i, end-start, len(q))
		out = append(out, q...)
	}
	if len(out) != h.Size {
		return nil, codec.Errorf(name, "decompress", codec.ErrCorrupt,
			"decoded %d bytes; header declares %d",
			len(out), h.Size)
	}
	return out, nil
}

// Reader decodes an MCM stream chunk by chunk. It is not safe for
// concurrent use.
type Reader struct {
	ReaderConfig
	Header *Header

	r io.Reader
	// pos is the position in the MCM stream
	pos   int
	chunk int
	buf   []byte
	n     int
	err   error
}

// NewReader creates a reader for the MCM stream starting at the current
// position of r.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderConfig(r, ReaderConfig{})
}

// NewReaderConfig creates a reader using the given configuration.
func NewReaderConfig(r io.Reader, cfg ReaderConfig) (*Reader, error) {
	if r == nil {
		return nil, errors.New("mcm: reader must be non-nil")
	}
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	mr := &Reader{
		ReaderConfig: cfg,
		Header:       h,
		r:            r,
		pos:          h.Len(),
	}
	return mr, nil
}

// nextChunk reads and decodes the next chunk into r.buf.
func (r *Reader) nextChunk() error {
	h := r.Header
	if r.chunk >= h.ChunkCount() {
		if r.n != h.Size {
			return codec.Errorf(name, "decompress",
				codec.ErrCorrupt,
				"decoded %d bytes; header declares %d",
				r.n, h.Size)
		}
		return io.EOF
	}
	start, end := h.Chunk(r.chunk)
	if start > r.pos {
		k, err := discard.Skip(r.r, int64(start-r.pos))
		r.pos += int(k)
		if err != nil {
			return eofError(err, "gap")
		}
	}
	p := make([]byte, end-start)
	k, err := io.ReadFull(r.r, p)
	r.pos += k
	if err != nil {
		return eofError(err, "chunk")
	}
	q, err := decodeChunk(h, r.chunk, p)
	if err != nil {
		return err
	}
	xlog.Printf(r.Logger, "mcm: chunk %d: %d -> %d bytes",
		r.chunk, len(p), len(q))
	r.chunk++
	r.n += len(q)
	if r.n > h.Size {
		return codec.Errorf(name, "decompress", codec.ErrCorrupt,
			"decoded data exceeds declared size %d", h.Size)
	}
	r.buf = q
	return nil
}

// Read reads decoded data.
func (r *Reader) Read(p []byte) (n int, err error) {
	if r.err != nil {
		return 0, r.err
	}
	for n < len(p) {
		if len(r.buf) == 0 {
			if err = r.nextChunk(); err != nil {
				r.err = err
				return n, err
			}
			continue
		}
		k := copy(p[n:], r.buf)
		r.buf = r.buf[k:]
		n += k
	}
	return n, nil
}
