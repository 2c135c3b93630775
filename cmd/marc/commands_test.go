// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/mar/internal/randtxt"
)

func writeFiles(t *testing.T, dir string, data [][]byte) []string {
	t.Helper()
	var paths []string
	for i, d := range data {
		p := filepath.Join(dir, entryName(i)+".in")
		if err := os.WriteFile(p, d, 0644); err != nil {
			t.Fatalf("os.WriteFile error %s", err)
		}
		paths = append(paths, p)
	}
	return paths
}

func defaultOptions(dir string) *options {
	return &options{
		directory: dir,
		type1:     "huffman",
		type2:     "lzss",
	}
}

func TestPackExtract(t *testing.T) {
	dir := t.TempDir()
	data := [][]byte{
		randtxt.Bytes(1, 10000),
		[]byte("short entry"),
		{},
	}
	files := writeFiles(t, dir, data)
	archive := filepath.Join(dir, "test.mar")
	opts := defaultOptions(dir)

	args := append([]string{archive}, files...)
	if failed := packArchive(args, opts); failed {
		t.Fatalf("packArchive failed")
	}
	if _, err := os.Stat(archive + ".pack"); !os.IsNotExist(err) {
		t.Fatalf("temporary file not removed")
	}
	if failed := packArchive(args, opts); !failed {
		t.Fatalf("packArchive overwrote existing archive")
	}

	var buf bytes.Buffer
	opts.long = true
	if ok := listArchive(&buf, archive, opts); !ok {
		t.Fatalf("listArchive failed")
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1+len(data) {
		t.Fatalf("list has %d lines; want %d", len(lines), 1+len(data))
	}
	if !strings.Contains(lines[1], "huffman") {
		t.Fatalf("list line %q doesn't contain method", lines[1])
	}

	if failed := extractArchive([]string{archive}, opts); failed {
		t.Fatalf("extractArchive failed")
	}
	for i, d := range data {
		p, err := os.ReadFile(filepath.Join(dir, entryName(i)))
		if err != nil {
			t.Fatalf("os.ReadFile error %s", err)
		}
		if !bytes.Equal(p, d) {
			t.Fatalf("entry %d: extracted data differs", i)
		}
	}
	// existing files are kept without force
	if failed := extractArchive([]string{archive, "1"}, opts); !failed {
		t.Fatalf("extractArchive overwrote existing file")
	}
	if failed := extractArchive([]string{archive, "9"}, opts); !failed {
		t.Fatalf("extractArchive accepted index 9")
	}
}

func TestListCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	files := writeFiles(t, dir, [][]byte{[]byte("first"),
		[]byte("second")})
	archive := filepath.Join(dir, "test.mar")
	opts := defaultOptions(dir)
	opts.type1, opts.type2 = "none", "none"
	if failed := packArchive(append([]string{archive}, files...),
		opts); failed {
		t.Fatalf("packArchive failed")
	}
	p, err := os.ReadFile(archive)
	if err != nil {
		t.Fatalf("os.ReadFile error %s", err)
	}
	// MCM magic of entry 0 behind the table of two entries
	p[24] = 'X'
	if err = os.WriteFile(archive, p, 0644); err != nil {
		t.Fatalf("os.WriteFile error %s", err)
	}
	var buf bytes.Buffer
	opts.long = true
	if ok := listArchive(&buf, archive, opts); ok {
		t.Fatalf("listArchive succeeded on corrupt entry")
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "   1 ") {
		t.Fatalf("list %q doesn't continue with entry 1", buf.String())
	}
}

func TestUpdateArchive(t *testing.T) {
	dir := t.TempDir()
	data := [][]byte{randtxt.Bytes(2, 3000), randtxt.Bytes(3, 4000)}
	files := writeFiles(t, dir, data)
	archive := filepath.Join(dir, "test.mar")
	opts := defaultOptions(dir)
	if failed := packArchive(append([]string{archive}, files...),
		opts); failed {
		t.Fatalf("packArchive failed")
	}

	repl := filepath.Join(dir, "repl.in")
	if err := os.WriteFile(repl, []byte("replacement"), 0644); err != nil {
		t.Fatalf("os.WriteFile error %s", err)
	}
	opts.type1, opts.type2 = "rle", "none"
	args := []string{archive, "0", repl, "2", repl}
	if failed := updateArchive(args, opts); failed {
		t.Fatalf("updateArchive failed")
	}

	opts.force = true
	if failed := extractArchive([]string{archive}, opts); failed {
		t.Fatalf("extractArchive failed")
	}
	want := [][]byte{[]byte("replacement"), data[1],
		[]byte("replacement")}
	for i, d := range want {
		p, err := os.ReadFile(filepath.Join(dir, entryName(i)))
		if err != nil {
			t.Fatalf("os.ReadFile error %s", err)
		}
		if !bytes.Equal(p, d) {
			t.Fatalf("entry %d: got %q", i, p)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, entryName(3))); err == nil {
		t.Fatalf("unexpected entry 3")
	}

	if failed := updateArchive([]string{archive, "0"}, opts); !failed {
		t.Fatalf("updateArchive accepted missing file argument")
	}
}

func TestWriterConfig(t *testing.T) {
	opts := &options{type1: "lzss", type2: "none", unit: 4}
	cfg, err := opts.writerConfig()
	if err != nil {
		t.Fatalf("writerConfig error %s", err)
	}
	if cfg.MaxChunkSize == 0 {
		t.Fatalf("MaxChunkSize has not been set")
	}
	opts.type2 = "zip"
	if _, err = opts.writerConfig(); err == nil {
		t.Fatalf("writerConfig accepted method zip")
	}
	opts.type2, opts.unit = "none", 5
	if _, err = opts.writerConfig(); err == nil {
		t.Fatalf("writerConfig accepted unit 5")
	}
}
