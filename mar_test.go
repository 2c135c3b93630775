// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mar

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/kr/pretty"

	"github.com/ulikunitz/mar/codec"
	"github.com/ulikunitz/mar/internal/randtxt"
	"github.com/ulikunitz/mar/internal/tuning"
	"github.com/ulikunitz/mar/mcm"
	"github.com/ulikunitz/zdata"
)

// table builds an archive header with the given offsets and size hints.
func table(offsets []uint32, hints []uint32) []byte {
	p := append([]byte(nil), magic...)
	p = codec.AppendUint32LE(p, uint32(len(offsets)))
	for i, off := range offsets {
		p = codec.AppendUint32LE(p, off)
		p = codec.AppendUint32LE(p, hints[i])
	}
	return p
}

// streamOnly hides all methods except Read.
type streamOnly struct {
	r io.Reader
}

func (s *streamOnly) Read(p []byte) (n int, err error) { return s.r.Read(p) }

func TestSpans(t *testing.T) {
	p := table([]uint32{16, 100}, []uint32{7, 9})
	p = append(p, make([]byte, 250-len(p))...)
	readers := []struct {
		name string
		r    io.Reader
	}{
		{"seekable", bytes.NewReader(p)},
		{"stream", &streamOnly{bytes.NewReader(p)}},
	}
	for _, rc := range readers {
		t.Run(rc.name, func(t *testing.T) {
			a, err := Open(rc.r, Read, nil)
			if err != nil {
				t.Fatalf("Open error %s", err)
			}
			entries := a.Entries()
			if len(entries) != 2 {
				t.Fatalf("got %d entries; want %d",
					len(entries), 2)
			}
			type span struct {
				Offset, Span int64
				SizeHint     uint32
			}
			var got []span
			for _, e := range entries {
				got = append(got, span{e.Offset(), e.Span(),
					e.SizeHint()})
			}
			want := []span{{16, 84, 7}, {100, 150, 9}}
			if diff := pretty.Diff(got, want); len(diff) > 0 {
				t.Fatalf("spans differ: %v", diff)
			}
			raw, err := entries[1].Raw()
			if err != nil {
				t.Fatalf("Raw error %s", err)
			}
			if len(raw) != 150 {
				t.Fatalf("len(raw) is %d; want %d", len(raw), 150)
			}
		})
	}
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name string
		p    []byte
		err  error
	}{
		{"magic", []byte("MCM\x00\x00\x00\x00\x00"), codec.ErrFormat},
		{"short", []byte("MAR"), codec.ErrUnexpectedEOF},
		{"table", table([]uint32{16, 24}, []uint32{0, 0})[:20],
			codec.ErrUnexpectedEOF},
		{"order", append(table([]uint32{30, 24}, []uint32{0, 0}),
			make([]byte, 16)...), codec.ErrCorrupt},
		{"outside", table([]uint32{100}, []uint32{0}),
			codec.ErrCorrupt},
		{"header", table([]uint32{4}, []uint32{0}), codec.ErrCorrupt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Open(bytes.NewReader(tc.p), Read, nil)
			if !errors.Is(err, tc.err) {
				t.Fatalf("Open returned error %v; want %v",
					err, tc.err)
			}
			var e *codec.Error
			if !errors.As(err, &e) || e.Codec != "mar" {
				t.Fatalf("error %v is not a mar codec error", err)
			}
		})
	}
}

func TestOpenModes(t *testing.T) {
	if _, err := Open(nil, Read, nil); err == nil {
		t.Fatalf("Open(nil) returned no error")
	}
	if _, err := Open(new(bytes.Buffer), Update, nil); err == nil {
		t.Fatalf("Open(buffer, Update) returned no error")
	}
	if _, err := Open(new(bytes.Buffer), Mode(7), nil); err == nil {
		t.Fatalf("Open with mode 7 returned no error")
	}
	if _, err := Open(new(bytes.Buffer), Create,
		&Config{CacheSize: -1}); err == nil {
		t.Fatalf("Open with negative cache size returned no error")
	}
	if s := Update.String(); s != "update" {
		t.Fatalf("Update.String() is %q; want %q", s, "update")
	}
}

// writeEntry replaces the data of entry e.
func writeEntry(t *testing.T, e *Entry, data []byte, cfg mcm.WriterConfig) {
	t.Helper()
	w, err := e.Create(cfg)
	if err != nil {
		t.Fatalf("Create error %s", err)
	}
	if _, err = w.Write(data); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
}

var entryConfigs = []mcm.WriterConfig{
	{Type1: mcm.LZSS},
	{Type1: mcm.Huffman, Type2: mcm.LZSS, MaxChunkSize: 5000},
	{Type1: mcm.RLE, MaxChunkSize: 1000},
	{},
}

func TestCreate(t *testing.T) {
	data := [][]byte{
		randtxt.Bytes(1, 20000),
		randtxt.Bytes(2, 12345),
		randtxt.Bytes(3, 3000),
		[]byte("plain"),
	}
	buf := new(bytes.Buffer)
	a, err := Open(buf, Create, nil)
	if err != nil {
		t.Fatalf("Open error %s", err)
	}
	if a.Mode() != Create {
		t.Fatalf("mode %s; want %s", a.Mode(), Create)
	}
	for i, d := range data {
		e, err := a.CreateEntry()
		if err != nil {
			t.Fatalf("CreateEntry error %s", err)
		}
		writeEntry(t, e, d, entryConfigs[i])
	}
	// an entry without data
	if _, err = a.CreateEntry(); err != nil {
		t.Fatalf("CreateEntry error %s", err)
	}
	if err = a.Flush(); err != nil {
		t.Fatalf("Flush error %s", err)
	}

	r, err := Open(bytes.NewReader(buf.Bytes()), Read, nil)
	if err != nil {
		t.Fatalf("Open error %s", err)
	}
	entries := r.Entries()
	if len(entries) != len(data)+1 {
		t.Fatalf("got %d entries; want %d", len(entries), len(data)+1)
	}
	for i, d := range data {
		e := entries[i]
		if e.SizeHint() != uint32(len(d)) {
			t.Errorf("entry %d: size hint %d; want %d",
				i, e.SizeHint(), len(d))
		}
		rd, err := e.Open()
		if err != nil {
			t.Fatalf("entry %d: Open error %s", i, err)
		}
		got, err := io.ReadAll(rd)
		if err != nil {
			t.Fatalf("entry %d: ReadAll error %s", i, err)
		}
		if !bytes.Equal(got, d) {
			t.Fatalf("entry %d: data differs", i)
		}
		h, err := e.Header()
		if err != nil {
			t.Fatalf("entry %d: Header error %s", i, err)
		}
		if h.Type1 != entryConfigs[i].Type1 ||
			h.Type2 != entryConfigs[i].Type2 {
			t.Errorf("entry %d: methods %s/%s", i, h.Type1, h.Type2)
		}
	}
	last := entries[len(data)]
	p, err := last.Bytes()
	if err != nil {
		t.Fatalf("Bytes error %s", err)
	}
	if len(p) != 0 {
		t.Fatalf("empty entry has %d bytes", len(p))
	}
	if last.SizeHint() != 0 {
		t.Fatalf("empty entry has size hint %d", last.SizeHint())
	}
}

// writeOnly supports only Write.
type writeOnly struct {
	w io.Writer
}

func (w *writeOnly) Write(p []byte) (n int, err error) { return w.w.Write(p) }

func TestFlushOnce(t *testing.T) {
	buf := new(bytes.Buffer)
	a, err := NewWriter(&writeOnly{buf}, nil)
	if err != nil {
		t.Fatalf("NewWriter error %s", err)
	}
	if err = a.Flush(); err != nil {
		t.Fatalf("Flush error %s", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte("MAR\x00\x00\x00\x00\x00")) {
		t.Fatalf("empty archive % x", buf.Bytes())
	}
	if err = a.Flush(); err == nil {
		t.Fatalf("second Flush returned no error")
	}
}

func TestReadOnly(t *testing.T) {
	var buf bytes.Buffer
	a, err := NewWriter(&buf, nil)
	if err != nil {
		t.Fatalf("NewWriter error %s", err)
	}
	if err = a.Flush(); err != nil {
		t.Fatalf("Flush error %s", err)
	}
	r, err := NewReader(&buf, nil)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	if _, err = r.CreateEntry(); err == nil {
		t.Fatalf("CreateEntry in read mode returned no error")
	}
	if err = r.Flush(); err == nil {
		t.Fatalf("Flush in read mode returned no error")
	}
	if _, err = r.Entry(0); err == nil {
		t.Fatalf("Entry(0) of empty archive returned no error")
	}
}

// createFile writes an archive with the given entries to a temporary
// file.
func createFile(t *testing.T, data [][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("os.Create error %s", err)
	}
	defer f.Close()
	a, err := Open(f, Create, nil)
	if err != nil {
		t.Fatalf("Open error %s", err)
	}
	for _, d := range data {
		e, err := a.CreateEntry()
		if err != nil {
			t.Fatalf("CreateEntry error %s", err)
		}
		writeEntry(t, e, d, mcm.WriterConfig{Type1: mcm.LZSS})
	}
	if err = a.Flush(); err != nil {
		t.Fatalf("Flush error %s", err)
	}
	if err = f.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	return path
}

func TestUpdate(t *testing.T) {
	data := [][]byte{
		randtxt.Bytes(4, 4000),
		randtxt.Bytes(5, 6000),
		randtxt.Bytes(6, 50000),
	}
	path := createFile(t, data)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("os.OpenFile error %s", err)
	}
	defer f.Close()
	var sb strings.Builder
	cfg := &Config{Logger: log.New(&sb, "", 0)}
	a, err := Open(f, Update, cfg)
	if err != nil {
		t.Fatalf("Open error %s", err)
	}
	entries := a.Entries()
	raw0, err := entries[0].Raw()
	if err != nil {
		t.Fatalf("Raw error %s", err)
	}
	// same data with another method keeps the payload
	writeEntry(t, entries[0], data[0], mcm.WriterConfig{Type1: mcm.RLE})
	if !strings.Contains(sb.String(), "mar: entry 0: unchanged") {
		t.Fatalf("log %q doesn't report unchanged entry", sb.String())
	}
	data[1] = []byte("replaced")
	writeEntry(t, entries[1], data[1], mcm.WriterConfig{})
	data[2] = data[2][:100]
	writeEntry(t, entries[2], data[2], mcm.WriterConfig{Type1: mcm.LZSS})
	e, err := a.CreateEntry()
	if err != nil {
		t.Fatalf("CreateEntry error %s", err)
	}
	data = append(data, randtxt.Bytes(7, 777))
	writeEntry(t, e, data[3], mcm.WriterConfig{Type1: mcm.Huffman})
	if err = a.Flush(); err != nil {
		t.Fatalf("Flush error %s", err)
	}
	if err = f.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}

	p, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile error %s", err)
	}
	r, err := NewReader(bytes.NewReader(p), nil)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	entries = r.Entries()
	if len(entries) != len(data) {
		t.Fatalf("got %d entries; want %d", len(entries), len(data))
	}
	var total int64 = tableLen(len(data))
	for i, e := range entries {
		got, err := e.Bytes()
		if err != nil {
			t.Fatalf("entry %d: Bytes error %s", i, err)
		}
		if !bytes.Equal(got, data[i]) {
			t.Fatalf("entry %d: data differs", i)
		}
		total += e.Span()
	}
	if total != int64(len(p)) {
		t.Fatalf("file has %d bytes; entries cover %d", len(p), total)
	}
	got0, err := entries[0].Raw()
	if err != nil {
		t.Fatalf("Raw error %s", err)
	}
	if !bytes.Equal(got0, raw0) {
		t.Fatalf("unchanged entry has been re-encoded")
	}
}

func TestCache(t *testing.T) {
	data := [][]byte{randtxt.Bytes(8, 3000), randtxt.Bytes(9, 3000)}
	path := createFile(t, data)
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open error %s", err)
	}
	defer f.Close()
	a, err := Open(f, Read, &Config{CacheSize: 1})
	if err != nil {
		t.Fatalf("Open error %s", err)
	}
	e := a.Entries()[0]
	p, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes error %s", err)
	}
	q, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes error %s", err)
	}
	if &p[0] != &q[0] {
		t.Fatalf("second Bytes call didn't use the cache")
	}
	rd, err := e.Open()
	if err != nil {
		t.Fatalf("Open error %s", err)
	}
	if _, ok := rd.(*bytes.Reader); !ok {
		t.Fatalf("Open returned %T; want *bytes.Reader", rd)
	}
	// evicts entry 0
	if _, err = a.Entries()[1].Bytes(); err != nil {
		t.Fatalf("Bytes error %s", err)
	}
	rd, err = e.Open()
	if err != nil {
		t.Fatalf("Open error %s", err)
	}
	if _, ok := rd.(*mcm.Reader); !ok {
		t.Fatalf("Open returned %T; want *mcm.Reader", rd)
	}
}

func TestEntryTrace(t *testing.T) {
	path := createFile(t, [][]byte{{}, randtxt.Bytes(12, 3000)})
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open error %s", err)
	}
	defer f.Close()
	var sb strings.Builder
	a, err := NewReader(f, &Config{Logger: log.New(&sb, "", 0)})
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	e, err := a.Entry(1)
	if err != nil {
		t.Fatalf("Entry(1) error %s", err)
	}
	if _, err = e.Bytes(); err != nil {
		t.Fatalf("Bytes error %s", err)
	}
	if !strings.Contains(sb.String(), "mar: entry 1: mcm: chunk 0: ") {
		t.Fatalf("log %q doesn't contain the entry chunk trace",
			sb.String())
	}
}

func TestDigest(t *testing.T) {
	data := [][]byte{randtxt.Bytes(10, 5000), {}}
	path := createFile(t, data)
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open error %s", err)
	}
	defer f.Close()
	a, err := NewReader(f, nil)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	for i, e := range a.Entries() {
		d, err := e.Digest()
		if err != nil {
			t.Fatalf("entry %d: Digest error %s", i, err)
		}
		if want := xxhash.Sum64(data[i]); d != want {
			t.Fatalf("entry %d: digest %#x; want %#x", i, d, want)
		}
	}
}

func TestCorruptEntry(t *testing.T) {
	path := createFile(t, [][]byte{randtxt.Bytes(11, 5000)})
	p, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile error %s", err)
	}
	// MCM magic of the first payload
	p[tableLen(1)] = 'X'
	a, err := NewReader(bytes.NewReader(p), nil)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	e := a.Entries()[0]
	if _, err = e.Bytes(); !errors.Is(err, codec.ErrFormat) {
		t.Fatalf("Bytes returned error %v; want %v",
			err, codec.ErrFormat)
	}
	var ce *codec.Error
	if !errors.As(err, &ce) || ce.Codec != "mcm" {
		t.Fatalf("error %v doesn't originate from mcm", err)
	}
}

func TestSilesia(t *testing.T) {
	if testing.Short() {
		t.Skip("corpus test skipped in short mode")
	}
	files, err := tuning.Files(zdata.Silesia, 1<<20)
	if err != nil {
		t.Fatalf("Files(zdata.Silesia) error %s", err)
	}
	buf := new(bytes.Buffer)
	a, err := NewWriter(buf, nil)
	if err != nil {
		t.Fatalf("NewWriter error %s", err)
	}
	cfg := mcm.WriterConfig{Type1: mcm.Huffman, Type2: mcm.LZSS}
	for _, f := range files {
		e, err := a.CreateEntry()
		if err != nil {
			t.Fatalf("CreateEntry error %s", err)
		}
		writeEntry(t, e, f.Data, cfg)
	}
	if err = a.Flush(); err != nil {
		t.Fatalf("Flush error %s", err)
	}
	t.Logf("%d bytes -> %d bytes", tuning.Size(files), buf.Len())

	r, err := NewReader(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	for i, e := range r.Entries() {
		h := xxhash.New()
		rd, err := e.Open()
		if err != nil {
			t.Fatalf("%s: Open error %s", files[i].Name, err)
		}
		if _, err = io.Copy(h, rd); err != nil {
			t.Fatalf("%s: io.Copy error %s", files[i].Name, err)
		}
		if got, want := h.Sum64(), xxhash.Sum64(files[i].Data); got != want {
			t.Errorf("%s: digest %#x; want %#x",
				files[i].Name, got, want)
		}
	}
}
