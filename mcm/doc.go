// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mcm implements the MCM chunked compression container.
//
// An MCM stream starts with a 20-byte header: the magic "MCM\x00", the
// decoded size, the maximum decoded chunk size, the chunk count N, the
// methods Type1 and Type2 and two padding bytes. N+1 absolute offsets
// follow; chunk i occupies the bytes from offset i to offset i+1. All
// integers are little endian.
//
// Every chunk is decoded independently: first with Type1, then the
// result with Type2. The encoder applies the methods in the opposite
// order. The method None copies the data.
package mcm
