// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mar reads, creates and updates MAR archives.
//
// A MAR archive starts with the magic "MAR\x00" and the entry count,
// followed by one pair of little-endian 32-bit values per entry: the
// absolute offset of the entry payload and a size hint. Every payload is
// a complete MCM stream (see package mcm). An entry extends to the
// offset of the next entry; the last entry extends to the end of the
// archive. The size hint is informational; it usually holds the decoded
// size.
//
// Archives and entries are not safe for concurrent use.
package mar
