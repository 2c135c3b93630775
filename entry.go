// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mar

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/ulikunitz/mar/codec"
	"github.com/ulikunitz/mar/mcm"
	"github.com/ulikunitz/mar/xlog"
)

// Entry is a single file of an archive. Its payload is a complete MCM
// stream.
type Entry struct {
	a        *Archive
	index    int
	offset   int64
	span     int64
	sizeHint uint32

	// raw holds the payload if it has been created or loaded into
	// memory; nil means it is still located in the archive stream.
	raw []byte

	digest    uint64
	hasDigest bool
}

// Index returns the position of the entry in the entry table.
func (e *Entry) Index() int { return e.index }

// Offset returns the absolute offset of the payload in the archive.
// Entries that have not been flushed yet return zero.
func (e *Entry) Offset() int64 { return e.offset }

// Span returns the number of payload bytes of the entry. It is the
// distance to the offset of the next entry or, for the last entry, to
// the end of the archive.
func (e *Entry) Span() int64 {
	if e.raw != nil {
		return int64(len(e.raw))
	}
	return e.span
}

// SizeHint returns the decompressed size recorded in the entry table.
// It is informational only.
func (e *Entry) SizeHint() uint32 { return e.sizeHint }

// Raw returns the payload bytes of the entry without decoding them.
// Entries without payload are returned as empty MCM streams.
func (e *Entry) Raw() ([]byte, error) {
	if e.raw != nil {
		if len(e.raw) == 0 {
			return mcm.Compress(nil, mcm.WriterConfig{})
		}
		return e.raw, nil
	}
	p := make([]byte, e.span)
	if err := readAt(e.a.ra, p, e.offset); err != nil {
		return nil, err
	}
	return p, nil
}

// section returns a reader for the payload.
func (e *Entry) section() io.Reader {
	if e.raw != nil {
		return bytes.NewReader(e.raw)
	}
	return io.NewSectionReader(e.a.ra, e.offset, e.span)
}

// logger prefixes the trace messages of the archive with the entry
// index.
func (e *Entry) logger() xlog.Logger {
	if e.a.Logger == nil {
		return nil
	}
	return xlog.WithPrefix(e.a.Logger,
		fmt.Sprintf("mar: entry %d: ", e.index))
}

// Header returns the MCM header of the payload.
func (e *Entry) Header() (*mcm.Header, error) {
	p, err := e.Raw()
	if err != nil {
		return nil, err
	}
	return mcm.ParseHeader(p)
}

// Open returns a reader for the decoded entry data. Cached entries are
// served from memory.
func (e *Entry) Open() (io.Reader, error) {
	if e.a.cache != nil {
		if p, ok := e.a.cache.Get(e); ok {
			return bytes.NewReader(p), nil
		}
	}
	if e.raw != nil && len(e.raw) == 0 {
		return bytes.NewReader(nil), nil
	}
	cfg := mcm.ReaderConfig{Logger: e.logger()}
	r, err := mcm.NewReaderConfig(e.section(), cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Bytes decodes the entry completely. The result is stored in the
// cache of the archive, if there is one, and must not be modified.
func (e *Entry) Bytes() ([]byte, error) {
	if e.a.cache != nil {
		if p, ok := e.a.cache.Get(e); ok {
			return p, nil
		}
	}
	raw, err := e.Raw()
	if err != nil {
		return nil, err
	}
	p, err := mcm.DecompressConfig(raw,
		mcm.ReaderConfig{Logger: e.logger()})
	if err != nil {
		return nil, err
	}
	e.digest, e.hasDigest = xxhash.Sum64(p), true
	if e.a.cache != nil {
		e.a.cache.Add(e, p)
	}
	return p, nil
}

// Digest returns the xxHash-64 of the decoded entry data.
func (e *Entry) Digest() (uint64, error) {
	if e.hasDigest {
		return e.digest, nil
	}
	if _, err := e.Bytes(); err != nil {
		return 0, err
	}
	return e.digest, nil
}

// Create returns a writer replacing the payload of the entry. The new
// payload is encoded with cfg when the writer is closed. In update mode
// a payload is kept unchanged if the written data has the same digest
// as the existing data.
func (e *Entry) Create(cfg mcm.WriterConfig) (io.WriteCloser, error) {
	if e.a.mode == Read {
		return nil, errReadOnly
	}
	ew := &entryWriter{e: e, digest: xxhash.New()}
	var err error
	if ew.mw, err = mcm.NewWriterConfig(&ew.buf, cfg); err != nil {
		return nil, err
	}
	ew.w = io.MultiWriter(ew.mw, ew.digest)
	return ew, nil
}

// entryWriter encodes the data for an entry.
type entryWriter struct {
	e      *Entry
	buf    bytes.Buffer
	mw     *mcm.Writer
	digest *xxhash.Digest
	w      io.Writer
	n      int64
	closed bool
}

var errWriterClosed = errors.New("mar: entry writer is closed")

func (w *entryWriter) Write(p []byte) (n int, err error) {
	if w.closed {
		return 0, errWriterClosed
	}
	n, err = w.w.Write(p)
	w.n += int64(n)
	return n, err
}

// unchanged reports whether the entry already stores data with the
// given digest. Only entries read from the archive are checked.
func (w *entryWriter) unchanged(sum uint64) bool {
	e := w.e
	if e.a.mode != Update || e.raw != nil {
		return false
	}
	d, err := e.Digest()
	// a payload that cannot be decoded is replaced
	return err == nil && d == sum
}

func (w *entryWriter) Close() error {
	if w.closed {
		return errWriterClosed
	}
	w.closed = true
	e := w.e
	if w.n > 1<<32-1 {
		return codec.Errorf("mar", "compress", codec.ErrTooLarge,
			"entry size %d exceeds 32 bits", w.n)
	}
	sum := w.digest.Sum64()
	if w.unchanged(sum) {
		xlog.Printf(e.logger(), "unchanged")
		return nil
	}
	if err := w.mw.Close(); err != nil {
		return err
	}
	e.raw = w.buf.Bytes()
	e.sizeHint = uint32(w.n)
	e.digest, e.hasDigest = sum, true
	if e.a.cache != nil {
		e.a.cache.Remove(e)
	}
	xlog.Printf(e.logger(), "%d -> %d bytes", w.n, len(e.raw))
	return nil
}
