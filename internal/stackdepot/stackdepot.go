// Package stackdepot stores deduplicated call stacks of borrow sites.
//
// A RefCell with site tracking enabled records where each outstanding guard
// was obtained, so that a refused borrow or a corrupted release can name the
// code holding the conflicting guard. Recording a full stack per borrow
// would be expensive; instead each stack is stored once in a global depot
// and referenced by its 64-bit FNV-1a hash.
//
// Design:
//   - Fixed-size traces (MaxFrames program counters)
//   - Hash-based deduplication (FNV-1a)
//   - Global sync.Map storage, so cells on different goroutines may share it
//
// Usage:
//
//	hash := stackdepot.Capture(1) // stack of Capture's caller's caller
//	...
//	fmt.Print(stackdepot.Get(hash).Format())
package stackdepot

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
)

// MaxFrames is the number of program counters kept per trace.
const MaxFrames = 8

// Trace is a captured call stack.
type Trace struct {
	PC [MaxFrames]uintptr
}

// depot maps uint64 hash -> *Trace.
var depot sync.Map

// Capture records the calling goroutine's stack and returns its hash.
//
// skip is the number of frames above Capture's caller to omit: 0 starts
// the trace at the function that called Capture, 1 at its caller, and so
// on. Identical stacks return the same hash and are stored once.
//
// Performance: ~500ns (runtime.Callers + hashing + sync.Map.Store).
// Deduplication: a stack already in the depot costs only the hash and a
// sync.Map.Load.
//
// Returns:
//   - uint64 hash: identifier of the stored trace (0 if no frames were available)
//
// Thread Safety: Safe for concurrent calls from multiple goroutines.
func Capture(skip int) uint64 {
	var pcs [MaxFrames]uintptr
	// +2 skips runtime.Callers and Capture itself.
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return 0
	}

	h := hash(pcs[:n])
	if _, ok := depot.Load(h); ok {
		return h
	}
	depot.Store(h, &Trace{PC: pcs})
	return h
}

// Get returns the trace stored under h.
//
// Performance: ~50ns (sync.Map.Load).
//
// Returns:
//   - *Trace: the stored trace, or nil if h is 0 or unknown
//
// Thread Safety: Safe for concurrent calls, including alongside Capture.
func Get(h uint64) *Trace {
	if h == 0 {
		return nil
	}
	v, ok := depot.Load(h)
	if !ok {
		return nil
	}
	return v.(*Trace)
}

// hash computes FNV-1a over the program counters.
func hash(pcs []uintptr) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for _, pc := range pcs {
		binary.LittleEndian.PutUint64(b[:], uint64(pc))
		_, _ = h.Write(b[:]) // hash.Hash.Write never fails.
	}
	return h.Sum64()
}

// Format renders the trace one frame per two lines:
//
//	main.worker()
//	    /path/to/file.go:45
//
// Runtime frames and the methods of RefCell and its guards are omitted, so
// the first line is the user code that performed the operation.
//
// Performance: symbolization via runtime.CallersFrames, ~1µs per frame.
// Intended for reports, not hot paths.
//
// Returns:
//   - string: formatted frames, "  <unknown>\n" for a nil trace, or
//     "  <runtime internal>\n" when every frame was omitted
//
// Thread Safety: Safe for concurrent calls; a Trace is immutable once stored.
func (t *Trace) Format() string {
	if t == nil {
		return "  <unknown>\n"
	}

	n := 0
	for n < MaxFrames && t.PC[n] != 0 {
		n++
	}
	frames := runtime.CallersFrames(t.PC[:n])

	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if !internal(frame.Function) {
			fmt.Fprintf(&buf, "  %s()\n      %s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}

	if buf.Len() == 0 {
		return "  <runtime internal>\n"
	}
	return buf.String()
}

// Top returns "function file:line" of the innermost frame that Format
// would print. Used for one-line log fields.
//
// Returns:
//   - string: the frame, or "" for a nil trace or one with only omitted frames
//
// Thread Safety: Safe for concurrent calls.
func (t *Trace) Top() string {
	if t == nil {
		return ""
	}
	n := 0
	for n < MaxFrames && t.PC[n] != 0 {
		n++
	}
	frames := runtime.CallersFrames(t.PC[:n])
	for {
		frame, more := frames.Next()
		if frame.PC != 0 && !internal(frame.Function) {
			return fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line)
		}
		if !more {
			return ""
		}
	}
}

// internalPrefixes are the function-name prefixes of frames that never name
// a borrow site: the Go runtime and the methods of the cell and its guards.
var internalPrefixes = []string{
	"runtime.",
	"github.com/kolkov/refcell/refcell.(*RefCell[",
	"github.com/kolkov/refcell/refcell.(*Ref[",
	"github.com/kolkov/refcell/refcell.(*RefMut[",
}

// internal reports whether fn is omitted from formatted traces.
func internal(fn string) bool {
	for _, p := range internalPrefixes {
		if strings.HasPrefix(fn, p) {
			return true
		}
	}
	return false
}

// Reset empties the depot.
//
// Thread Safety: NOT safe alongside Capture or Get. For tests only.
func Reset() {
	depot = sync.Map{}
}

// Len returns the number of stored traces.
//
// Performance: O(n), walks the whole depot.
//
// Thread Safety: Safe for concurrent calls; the count is a snapshot.
func Len() int {
	n := 0
	depot.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
