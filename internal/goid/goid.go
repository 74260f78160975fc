// Copyright 2025 The refcell Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package goid extracts the current goroutine ID.
//
// The ID is parsed from the header line of runtime.Stack, which has the
// form "goroutine 123 [running]:". This is slow (~1µs) but needs no
// assembly and no knowledge of the runtime.g layout, so it works on every
// Go version and architecture. Callers use it only on opt-in debug paths.
package goid

import "runtime"

// Current returns the ID of the calling goroutine.
//
// Performance: ~1µs per call, dominated by runtime.Stack. Callers on hot
// paths should look the ID up once and keep it, as WithOwnerCheck does at
// cell creation.
//
// Returns:
//   - int64: goroutine ID (always positive), or 0 if the header could not
//     be parsed
//
// Thread Safety: Safe for concurrent calls; each call reads only its own
// goroutine's stack.
func Current() int64 {
	// Only the first line is needed.
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parse(buf[:n])
}

// parse extracts the ID from a "goroutine N [...]" header without
// converting buf to a string.
//
// Returns:
//   - int64: the parsed ID, or 0 when the prefix is missing or no digits
//     follow it
func parse(buf []byte) int64 {
	const prefix = "goroutine "

	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var id int64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
