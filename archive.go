// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mar

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ulikunitz/mar/xlog"
)

// Mode defines how an archive is opened.
type Mode int

// Archive modes.
const (
	// Read requires an io.Reader. Readers that don't support ReadAt and
	// Seek are buffered in memory.
	Read Mode = iota
	// Create requires an io.Writer and starts with an empty archive.
	Create
	// Update requires an io.ReadWriteSeeker.
	Update
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Read:
		return "read"
	case Create:
		return "create"
	case Update:
		return "update"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Config provides the parameters for an archive.
type Config struct {
	// CacheSize is the number of decoded entries kept in memory. Zero
	// disables the cache.
	CacheSize int
	// Logger receives debug messages. It may be nil.
	Logger xlog.Logger
}

// Verify checks the configuration.
func (c *Config) Verify() error {
	if c == nil {
		return errors.New("mar: config is nil")
	}
	if c.CacheSize < 0 {
		return errors.New("mar: CacheSize must be non-negative")
	}
	return nil
}

// Archive represents an open MAR archive. It is not safe for concurrent
// use.
type Archive struct {
	Config
	mode    Mode
	ra      io.ReaderAt
	size    int64
	w       io.Writer
	flushed bool
	entries []*Entry
	cache   *lru.Cache[*Entry, []byte]
}

// readerAtSeeker is the interface required for reading without
// buffering the whole archive.
type readerAtSeeker interface {
	io.ReaderAt
	io.Seeker
}

// Open opens the archive f in the given mode. The type of f must
// support the operations required by the mode. A nil cfg selects the
// default configuration.
func Open(f interface{}, mode Mode, cfg *Config) (a *Archive, err error) {
	if f == nil {
		return nil, errors.New("mar: stream must be non-nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	switch mode {
	case Read:
		r, ok := f.(io.Reader)
		if !ok {
			return nil, errors.New("mar: read mode requires an io.Reader")
		}
		return NewReader(r, cfg)
	case Create:
		w, ok := f.(io.Writer)
		if !ok {
			return nil, errors.New("mar: create mode requires an io.Writer")
		}
		return NewWriter(w, cfg)
	case Update:
		rws, ok := f.(io.ReadWriteSeeker)
		if !ok {
			return nil, errors.New(
				"mar: update mode requires an io.ReadWriteSeeker")
		}
		return NewUpdater(rws, cfg)
	}
	return nil, fmt.Errorf("mar: unknown mode %d", mode)
}

func newArchive(mode Mode, cfg *Config) (a *Archive, err error) {
	if err = cfg.Verify(); err != nil {
		return nil, err
	}
	a = &Archive{Config: *cfg, mode: mode}
	if cfg.CacheSize > 0 {
		a.cache, err = lru.New[*Entry, []byte](cfg.CacheSize)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// source returns an io.ReaderAt for r and the size of the stream.
// Streams without ReadAt and Seek are read completely.
func source(r io.Reader) (ra io.ReaderAt, size int64, err error) {
	if rs, ok := r.(readerAtSeeker); ok {
		size, err = rs.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, err
		}
		return rs, size, nil
	}
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(p), int64(len(p)), nil
}

// load reads the entry table of the archive.
func (a *Archive) load(r io.Reader) error {
	var err error
	a.ra, a.size, err = source(r)
	if err != nil {
		return err
	}
	recs, err := readTable(a.ra, a.size)
	if err != nil {
		return err
	}
	a.entries = make([]*Entry, len(recs))
	for i, rec := range recs {
		end := a.size
		if i+1 < len(recs) {
			end = recs[i+1].offset
		}
		a.entries[i] = &Entry{
			a:        a,
			index:    i,
			offset:   rec.offset,
			span:     end - rec.offset,
			sizeHint: rec.sizeHint,
		}
	}
	xlog.Printf(a.Logger, "mar: %d entries in %d bytes",
		len(a.entries), a.size)
	return nil
}

// NewReader opens an archive for reading.
func NewReader(r io.Reader, cfg *Config) (a *Archive, err error) {
	if r == nil {
		return nil, errors.New("mar: reader must be non-nil")
	}
	if a, err = newArchive(Read, cfg); err != nil {
		return nil, err
	}
	if err = a.load(r); err != nil {
		return nil, err
	}
	return a, nil
}

// NewWriter creates an empty archive that will be written to w by
// Flush.
func NewWriter(w io.Writer, cfg *Config) (a *Archive, err error) {
	if w == nil {
		return nil, errors.New("mar: writer must be non-nil")
	}
	if a, err = newArchive(Create, cfg); err != nil {
		return nil, err
	}
	a.w = w
	return a, nil
}

// NewUpdater opens an existing archive for modification. Flush
// rewrites the stream from the start.
func NewUpdater(rws io.ReadWriteSeeker, cfg *Config) (a *Archive, err error) {
	if rws == nil {
		return nil, errors.New("mar: stream must be non-nil")
	}
	if a, err = newArchive(Update, cfg); err != nil {
		return nil, err
	}
	if err = a.load(rws); err != nil {
		return nil, err
	}
	a.w = rws
	return a, nil
}

// Mode returns the mode the archive has been opened with.
func (a *Archive) Mode() Mode { return a.mode }

// Entries returns the entries of the archive in table order.
func (a *Archive) Entries() []*Entry {
	entries := make([]*Entry, len(a.entries))
	copy(entries, a.entries)
	return entries
}

// Entry returns the entry with index i.
func (a *Archive) Entry(i int) (*Entry, error) {
	if !(0 <= i && i < len(a.entries)) {
		return nil, fmt.Errorf("mar: entry %d out of range [0,%d)",
			i, len(a.entries))
	}
	return a.entries[i], nil
}

var errReadOnly = errors.New("mar: archive is opened read-only")

// CreateEntry appends a new empty entry. Its payload is set with
// Entry.Create. Entries without payload are written as empty MCM
// streams.
func (a *Archive) CreateEntry() (*Entry, error) {
	if a.mode == Read {
		return nil, errReadOnly
	}
	e := &Entry{a: a, index: len(a.entries), raw: []byte{}}
	a.entries = append(a.entries, e)
	return e, nil
}

// truncater is supported by *os.File.
type truncater interface {
	Truncate(size int64) error
}

// Flush writes the header, the entry table and all payloads. In update
// mode the stream is rewritten from the start and truncated if it
// supports a Truncate method.
func (a *Archive) Flush() error {
	if a.mode == Read {
		return errReadOnly
	}
	payloads := make([][]byte, len(a.entries))
	recs := make([]record, len(a.entries))
	off := tableLen(len(a.entries))
	for i, e := range a.entries {
		p, err := e.Raw()
		if err != nil {
			return err
		}
		payloads[i] = p
		recs[i] = record{offset: off, sizeHint: e.sizeHint}
		off += int64(len(p))
	}
	if off > 1<<32-1 {
		return fmt.Errorf("mar: archive size %d exceeds 32-bit offsets",
			off)
	}

	if s, ok := a.w.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return err
		}
	} else if a.flushed {
		return errors.New("mar: stream doesn't support repeated flushes")
	}
	if _, err := a.w.Write(appendTable(nil, recs)); err != nil {
		return err
	}
	for _, p := range payloads {
		if _, err := a.w.Write(p); err != nil {
			return err
		}
	}
	if t, ok := a.w.(truncater); ok {
		if err := t.Truncate(off); err != nil {
			return err
		}
	}
	a.flushed = true

	// the entries are now held in memory
	for i, e := range a.entries {
		e.raw = payloads[i]
		e.offset = recs[i].offset
		e.span = int64(len(payloads[i]))
		e.index = i
	}
	a.size = off
	xlog.Printf(a.Logger, "mar: flushed %d entries, %d bytes",
		len(a.entries), off)
	return nil
}
