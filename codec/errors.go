// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to test for them.
var (
	// ErrFormat indicates a magic or tag mismatch. The data is
	// probably not of the expected format.
	ErrFormat = errors.New("format not recognized")
	// ErrCorrupt indicates that the internal consistency of a stream
	// is violated.
	ErrCorrupt = errors.New("corrupt stream")
	// ErrUnsupportedCodec indicates a codec type value outside of the
	// known set.
	ErrUnsupportedCodec = errors.New("unsupported codec")
	// ErrDatasetTooSmall is returned by the Huffman compressor for
	// inputs with fewer than two distinct symbols.
	ErrDatasetTooSmall = errors.New("dataset too small")
	// ErrUnexpectedEOF indicates that the input ended inside a length
	// prefixed region.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	// ErrTooLarge indicates that the data to compress exceeds the
	// 24-bit size field of the compression header.
	ErrTooLarge = errors.New("data exceeds size limit")
)

// Error describes a failure of a codec or container. Codec names the
// codec or container ("rle", "lzss", "huffman", "mcm", "mar") and Op
// the stage that failed. Err is one of the error kinds.
type Error struct {
	Codec string
	Op    string
	Err   error
	Msg   string
}

// Error returns the message prefixed by codec and operation.
func (e *Error) Error() string {
	s := e.Codec + ": " + e.Op + ": " + e.Err.Error()
	if e.Msg != "" {
		s += " - " + e.Msg
	}
	return s
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error { return e.Err }

// Errorf creates a new *Error. The message is formatted with
// fmt.Sprintf if args are given.
func Errorf(codec, op string, kind error, format string, args ...interface{}) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Codec: codec, Op: op, Err: kind, Msg: msg}
}

// Is reports whether err is an *Error created by a codec or a container.
// Such errors describe bad data; other errors come from the underlying
// streams.
func Is(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
