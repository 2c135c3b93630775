// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package discard

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
)

// plainReader hides all methods but Read.
type plainReader struct{ r io.Reader }

func (p plainReader) Read(b []byte) (int, error) { return p.r.Read(b) }

func TestSkip(t *testing.T) {
	const s = "0123456789"
	readers := map[string]func() io.Reader{
		"seeker": func() io.Reader { return strings.NewReader(s) },
		"bufio": func() io.Reader {
			return bufio.NewReader(plainReader{strings.NewReader(s)})
		},
		"plain": func() io.Reader {
			return plainReader{strings.NewReader(s)}
		},
	}
	for name, f := range readers {
		r := f()
		n, err := Skip(r, 4)
		if err != nil {
			t.Fatalf("%s: Skip error %s", name, err)
		}
		if n != 4 {
			t.Fatalf("%s: Skip returned %d; want %d", name, n, 4)
		}
		rest, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("%s: ReadAll error %s", name, err)
		}
		if !bytes.Equal(rest, []byte(s[4:])) {
			t.Fatalf("%s: rest %q; want %q", name, rest, s[4:])
		}
	}
	if _, err := Skip(strings.NewReader(s), -1); err == nil {
		t.Fatalf("Skip(-1) returned no error")
	}
}
