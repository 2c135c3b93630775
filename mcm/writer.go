// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/mar/codec"
	"github.com/ulikunitz/mar/huffman"
	"github.com/ulikunitz/mar/xlog"
)

// DefaultMaxChunkSize is the chunk size used if none is configured.
const DefaultMaxChunkSize = 0x2000

// WriterConfig defines the parameters for compressing MCM streams.
type WriterConfig struct {
	// MaxChunkSize limits the decoded size of a chunk.
	MaxChunkSize int
	// Type1 is the outer method; it is removed first by the decoder.
	Type1 Method
	// Type2 is applied to the raw chunk data before Type1.
	Type2 Method
	// HuffmanUnit selects the data unit size of Huffman chunks: 4, 8
	// or 0 for the smaller result.
	HuffmanUnit byte
	// Logger receives a message per encoded chunk. It may be nil.
	Logger xlog.Logger
}

// ApplyDefaults sets a zero MaxChunkSize to DefaultMaxChunkSize.
func (c *WriterConfig) ApplyDefaults() {
	if c.MaxChunkSize == 0 {
		c.MaxChunkSize = DefaultMaxChunkSize
	}
}

// Verify checks the configuration for errors. Zero values are not
// replaced by defaults.
func (c *WriterConfig) Verify() error {
	if c == nil {
		return errors.New("mcm: writer configuration is nil")
	}
	if !(0 < c.MaxChunkSize && c.MaxChunkSize <= codec.MaxSize) {
		return fmt.Errorf("mcm: MaxChunkSize %d out of range [1,%d]",
			c.MaxChunkSize, codec.MaxSize)
	}
	if err := c.Type1.Verify(); err != nil {
		return err
	}
	if err := c.Type2.Verify(); err != nil {
		return err
	}
	switch c.HuffmanUnit {
	case 0, huffman.Unit4, huffman.Unit8:
	default:
		return fmt.Errorf("mcm: HuffmanUnit %d must be 0, 4 or 8",
			c.HuffmanUnit)
	}
	return nil
}

// encodeChunk encodes a chunk with Type2 first and Type1 second, so
// that the decoder can remove Type1 first.
func (c *WriterConfig) encodeChunk(p []byte) (q []byte, err error) {
	if q, err = c.Type2.encode(p, c.HuffmanUnit); err != nil {
		return nil, err
	}
	return c.Type1.encode(q, c.HuffmanUnit)
}

// Compress encodes p as MCM stream. Zero configuration values are
// replaced by defaults.
func Compress(p []byte, cfg WriterConfig) (out []byte, err error) {
	cfg.ApplyDefaults()
	if err = cfg.Verify(); err != nil {
		return nil, err
	}
	if uint64(len(p)) > 1<<32-1 {
		return nil, codec.Errorf(name, "compress", codec.ErrTooLarge,
			"%d bytes exceed the 32-bit size field", len(p))
	}
	n := (len(p) + cfg.MaxChunkSize - 1) / cfg.MaxChunkSize
	chunks := make([][]byte, n)
	for i := range chunks {
		start := i * cfg.MaxChunkSize
		end := start + cfg.MaxChunkSize
		if end > len(p) {
			end = len(p)
		}
		if chunks[i], err = cfg.encodeChunk(p[start:end]); err != nil {
			return nil, err
		}
		xlog.Printf(cfg.Logger, "mcm: chunk %d: %d -> %d bytes",
			i, end-start, len(chunks[i]))
	}

	h := &Header{
		Size:         len(p),
		MaxChunkSize: cfg.MaxChunkSize,
		Type1:        cfg.Type1,
		Type2:        cfg.Type2,
		Offsets:      make([]int, n+1),
	}
	off := h.Len()
	for i, c := range chunks {
		h.Offsets[i] = off
		off += len(c)
	}
	h.Offsets[n] = off
	if uint64(off) > 1<<32-1 {
		return nil, codec.Errorf(name, "compress", codec.ErrTooLarge,
			"stream of %d bytes exceeds 32-bit offsets", off)
	}

	out = make([]byte, 0, off)
	out = h.AppendBinary(out)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}

// Writer buffers the data written to it and writes the MCM stream to
// the underlying writer when it is closed. It is not safe for
// concurrent use.
type Writer struct {
	WriterConfig

	w      io.Writer
	buf    bytes.Buffer
	closed bool
}

// NewWriter creates a writer using the default configuration.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterConfig(w, WriterConfig{})
}

// NewWriterConfig creates a writer for the given configuration. Zero
// configuration values are replaced by defaults.
func NewWriterConfig(w io.Writer, cfg WriterConfig) (*Writer, error) {
	if w == nil {
		return nil, errors.New("mcm: writer must be non-nil")
	}
	cfg.ApplyDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return &Writer{WriterConfig: cfg, w: w}, nil
}

var errClosed = errors.New("mcm: writer is closed")

// Write buffers p.
func (w *Writer) Write(p []byte) (n int, err error) {
	if w.closed {
		return 0, errClosed
	}
	return w.buf.Write(p)
}

// Close compresses the buffered data and writes the MCM stream. It
// doesn't close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return errClosed
	}
	w.closed = true
	out, err := Compress(w.buf.Bytes(), w.WriterConfig)
	if err != nil {
		return err
	}
	w.buf = bytes.Buffer{}
	_, err = w.w.Write(out)
	return err
}
