// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tuning loads test corpora and measures the MCM compression
// achieved for them with different method combinations.
package tuning

import (
	"bytes"
	"io"
	"io/fs"

	"github.com/ulikunitz/mar/mcm"
)

// File is a file of a corpus.
type File struct {
	Name string
	Data []byte
}

// Files reads all regular files of the corpus. Files are truncated to
// limit bytes if limit is positive.
func Files(corpus fs.FS, limit int) (files []File, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			if limit > 0 && len(data) > limit {
				data = data[:limit]
			}
			files = append(files, File{Name: path, Data: data})
			return nil
		})
	return files, err
}

// Size returns the total size of the files.
func Size(files []File) int64 {
	n := int64(0)
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}

type countWriter struct {
	n int64
}

func (w *countWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	w.n += int64(n)
	return n, nil
}

// Compress returns the total size of the MCM streams for the files.
func Compress(files []File, cfg mcm.WriterConfig) (compressedSize int64, err error) {
	for _, f := range files {
		cw := &countWriter{}
		w, err := mcm.NewWriterConfig(cw, cfg)
		if err != nil {
			return compressedSize, err
		}
		if _, err = io.Copy(w, bytes.NewReader(f.Data)); err != nil {
			return compressedSize, err
		}
		err = w.Close()
		compressedSize += cw.n
		if err != nil {
			return compressedSize, err
		}
	}
	return compressedSize, nil
}

// Result is the compressed size of a corpus for a configuration.
type Result struct {
	Type1, Type2   mcm.Method
	Size           int64
	CompressedSize int64
}

// Ratio returns the compressed size relative to the original size.
func (r Result) Ratio() float64 {
	if r.Size == 0 {
		return 1
	}
	return float64(r.CompressedSize) / float64(r.Size)
}

// Methods measures the method combinations used for game assets.
// Huffman is only applied on top of LZSS because it rejects chunks
// consisting of a single byte value.
func Methods(files []File, maxChunkSize int) (results []Result, err error) {
	combos := [][2]mcm.Method{
		{mcm.None, mcm.None},
		{mcm.RLE, mcm.None},
		{mcm.LZSS, mcm.None},
		{mcm.Huffman, mcm.LZSS},
	}
	size := Size(files)
	for _, c := range combos {
		cfg := mcm.WriterConfig{
			MaxChunkSize: maxChunkSize,
			Type1:        c[0],
			Type2:        c[1],
		}
		n, err := Compress(files, cfg)
		if err != nil {
			return results, err
		}
		results = append(results, Result{
			Type1:          c[0],
			Type2:          c[1],
			Size:           size,
			CompressedSize: n,
		})
	}
	return results, nil
}
