// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mar

import (
	"bytes"
	"errors"
	"io"

	"github.com/ulikunitz/mar/codec"
)

const name = "mar"

// magic starts every MAR archive.
var magic = []byte{'M', 'A', 'R', 0}

const (
	fixedHeaderLen = 8
	recordLen      = 8
	// maxEntries limits the entry count read from an archive.
	maxEntries = 1 << 24
)

// record is an entry of the archive table.
type record struct {
	offset   int64
	sizeHint uint32
}

// tableLen returns the length of the header for n entries.
func tableLen(n int) int64 {
	return fixedHeaderLen + recordLen*int64(n)
}

// readTable reads the header and the entry table from ra. The archive
// has the given size. The offsets must increase and lie inside the
// archive.
func readTable(ra io.ReaderAt, size int64) (recs []record, err error) {
	p := make([]byte, fixedHeaderLen)
	if err = readAt(ra, p, 0); err != nil {
		return nil, err
	}
	if !bytes.Equal(p[:4], magic) {
		return nil, codec.Errorf(name, "header", codec.ErrFormat,
			"magic % x", p[:4])
	}
	n := codec.Uint32LE(p[4:])
	if n > maxEntries || tableLen(int(n)) > size {
		return nil, codec.Errorf(name, "header",
			codec.ErrUnexpectedEOF,
			"table of %d entries exceeds archive size %d", n, size)
	}
	p = make([]byte, recordLen*int(n))
	if err = readAt(ra, p, fixedHeaderLen); err != nil {
		return nil, err
	}
	recs = make([]record, n)
	for i := range recs {
		q := p[recordLen*i:]
		recs[i] = record{
			offset:   int64(codec.Uint32LE(q)),
			sizeHint: codec.Uint32LE(q[4:]),
		}
		off := recs[i].offset
		if off < fixedHeaderLen || off > size {
			return nil, codec.Errorf(name, "header",
				codec.ErrCorrupt,
				"entry %d offset %d outside of archive", i, off)
		}
		if i > 0 && off <= recs[i-1].offset {
			return nil, codec.Errorf(name, "header",
				codec.ErrCorrupt,
				"entry %d offset %d not increasing", i, off)
		}
	}
	return recs, nil
}

// appendTable appends the header and the entry table to p.
func appendTable(p []byte, recs []record) []byte {
	p = append(p, magic...)
	p = codec.AppendUint32LE(p, uint32(len(recs)))
	for _, r := range recs {
		p = codec.AppendUint32LE(p, uint32(r.offset))
		p = codec.AppendUint32LE(p, r.sizeHint)
	}
	return p
}

// readAt reads len(p) bytes at offset off. A short read results in an
// error wrapping codec.ErrUnexpectedEOF.
func readAt(ra io.ReaderAt, p []byte, off int64) error {
	n, err := ra.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return codec.Errorf(name, "read", codec.ErrUnexpectedEOF,
			"%d bytes at offset %d; got %d", len(p), off, n)
	}
	return err
}
