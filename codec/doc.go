// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codec contains the definitions shared by the rle, lzss and
// huffman codecs and the mcm and mar containers: the 32-bit compression
// header, the codec tags and the error kinds.
//
// All codecs report failures as *Error values wrapping one of the
// sentinel errors ErrFormat, ErrCorrupt, ErrUnsupportedCodec,
// ErrDatasetTooSmall and ErrUnexpectedEOF. The containers pass these
// errors through unchanged, so
//
//	errors.Is(err, codec.ErrCorrupt)
//
// identifies a corrupt Huffman stream even if it has been found while
// reading a MAR archive.
package codec
