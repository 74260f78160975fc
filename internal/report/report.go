// Package report formats diagnostics for refused borrows and corrupted
// releases.
//
// The layout follows the Go race detector's report:
//
//	==================
//	BORROW VIOLATION: exclusive guard released in state Shared(2)
//	Release of exclusive guard on cell "config" by goroutine 1:
//	  main.update()
//	      /path/to/main.go:42
//
//	Outstanding shared guard obtained by goroutine 1:
//	  main.read()
//	      /path/to/main.go:30
//
//	  [state: Shared(2)]
//	==================
//
// Stacks come from package stackdepot and are present only when the cell
// tracks borrow sites.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kolkov/refcell/internal/borrowstate"
	"github.com/kolkov/refcell/internal/stackdepot"
)

// Kind classifies a report.
type Kind uint8

const (
	// KindConflict is a borrow refused because of an outstanding guard.
	KindConflict Kind = iota
	// KindViolation is a broken invariant: a release the state cannot
	// account for, a released guard used again, or a foreign goroutine.
	KindViolation
)

// String returns the report header for the kind.
func (k Kind) String() string {
	if k == KindViolation {
		return "BORROW VIOLATION"
	}
	return "BORROW CONFLICT"
}

// Op is the operation a site performed.
type Op uint8

const (
	// OpBorrow is a shared borrow request.
	OpBorrow Op = iota
	// OpBorrowMut is an exclusive borrow request.
	OpBorrowMut
	// OpRelease is a guard release.
	OpRelease
	// OpAccess is a read or write through a guard.
	OpAccess
)

// String returns the operation name used in logs.
func (o Op) String() string {
	switch o {
	case OpBorrow:
		return "borrow"
	case OpBorrowMut:
		return "borrow_mut"
	case OpRelease:
		return "release"
	default:
		return "access"
	}
}

// Site is one operation on a cell.
type Site struct {
	Op        Op
	Guard     borrowstate.GuardKind
	Goroutine int64
	Stack     uint64 // stackdepot hash, 0 if not tracked
}

func (s Site) describe() string {
	switch s.Op {
	case OpBorrow:
		return "Shared borrow"
	case OpBorrowMut:
		return "Exclusive borrow"
	case OpRelease:
		return "Release of " + s.Guard.String() + " guard"
	default:
		return "Access through " + s.Guard.String() + " guard"
	}
}

// Report is a single diagnostic.
type Report struct {
	Kind    Kind
	Cell    string
	Message string
	State   borrowstate.State

	// Current is the operation that triggered the report.
	Current Site

	// Outstanding lists the guards recorded as live when Current happened.
	// Empty unless the cell tracks borrow sites.
	Outstanding []Site
}

// Format writes the report to w.
//
//nolint:errcheck // Report output is best effort.
func (r *Report) Format(w io.Writer) {
	fmt.Fprintf(w, "==================\n")
	fmt.Fprintf(w, "%s: %s\n", r.Kind, r.Message)

	fmt.Fprintf(w, "%s on cell %q by goroutine %d:\n", r.Current.describe(), r.Cell, r.Current.Goroutine)
	writeStack(w, r.Current.Stack)

	for _, s := range r.Outstanding {
		fmt.Fprintf(w, "\nOutstanding %s guard obtained by goroutine %d:\n", s.Guard, s.Goroutine)
		writeStack(w, s.Stack)
	}

	fmt.Fprintf(w, "\n  [state: %s]\n", r.State)
	fmt.Fprintf(w, "==================\n")
}

// String returns the formatted report.
func (r *Report) String() string {
	var buf strings.Builder
	r.Format(&buf)
	return buf.String()
}

//nolint:errcheck // Report output is best effort.
func writeStack(w io.Writer, h uint64) {
	if h == 0 {
		fmt.Fprintf(w, "  (borrow site tracking disabled)\n")
		return
	}
	fmt.Fprint(w, stackdepot.Get(h).Format())
}
