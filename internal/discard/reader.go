// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package discard skips bytes of an io.Reader. It uses the Seek or
// Discard method of the reader if available. The MCM reader uses it to
// step over gaps between the offset table and the first chunk.
package discard

import (
	"errors"
	"io"
	"math"
)

// intReader combines an io.Reader with a Discard method. The bufio.Reader
// implements this interface.
type intReader interface {
	io.Reader
	Discard(n int) (discarded int, err error)
}

// errNegative is returned for negative counts.
var errNegative = errors.New("discard: negative count")

// Skip discards n bytes from r. It returns the number of bytes
// discarded. A seekable reader is not checked for the end of the
// stream; the next read will report it.
func Skip(r io.Reader, n int64) (discarded int64, err error) {
	if n <= 0 {
		if n < 0 {
			return 0, errNegative
		}
		return 0, nil
	}
	switch x := r.(type) {
	case io.Seeker:
		if _, err = x.Seek(n, io.SeekCurrent); err != nil {
			return 0, err
		}
		return n, nil
	case intReader:
		for n > math.MaxInt32 {
			d, err := x.Discard(math.MaxInt32)
			discarded += int64(d)
			if err != nil {
				return discarded, err
			}
			n -= int64(d)
		}
		d, err := x.Discard(int(n))
		discarded += int64(d)
		return discarded, err
	}
	return io.CopyN(io.Discard, r, n)
}
