package refcell

import (
	"errors"
	"fmt"

	"github.com/kolkov/refcell/internal/borrowstate"
)

// Refusal sentinels. A refused borrow is an expected outcome; TryBorrow,
// TryBorrowMut, With, WithMut and Replace return a *BorrowError wrapping
// one of these.
var (
	// ErrAlreadyMutablyBorrowed means the exclusive guard is outstanding.
	ErrAlreadyMutablyBorrowed = errors.New("already mutably borrowed")

	// ErrAlreadyBorrowed means one or more shared guards are outstanding.
	ErrAlreadyBorrowed = errors.New("already borrowed")
)

// Invariant-violation causes. These are never returned: they are wrapped in
// an *InvariantError and panicked.
var (
	// ErrInvalidRelease means a guard was released in a state that cannot
	// account for it.
	ErrInvalidRelease = borrowstate.ErrInvalidRelease

	// ErrGuardReleased means a guard was used or released again after its
	// first release.
	ErrGuardReleased = errors.New("guard used after release")

	// ErrForeignGoroutine means a cell created with WithOwnerCheck was used
	// from a goroutine other than the one that created it.
	ErrForeignGoroutine = errors.New("cell used from foreign goroutine")
)

// BorrowError reports a refused borrow.
type BorrowError struct {
	// Cell is the cell's diagnostic name; empty when diagnostics are off.
	Cell string

	// State is the borrow state that caused the refusal.
	State State

	// Report is the formatted conflict report naming the outstanding
	// guards. Empty unless the cell tracks borrow sites.
	Report string

	err error
}

func (e *BorrowError) Error() string {
	if e.Cell == "" {
		return fmt.Sprintf("refcell: %v (state %s)", e.err, e.State)
	}
	return fmt.Sprintf("refcell %q: %v (state %s)", e.Cell, e.err, e.State)
}

// Unwrap returns ErrAlreadyBorrowed or ErrAlreadyMutablyBorrowed.
func (e *BorrowError) Unwrap() error {
	return e.err
}

// InvariantError is the panic value for a broken borrow invariant.
//
// A broken invariant means code outside the guard protocol corrupted the
// aliasing model; continuing would hand out conflicting views, so the cell
// panics instead of repairing the state. Recover it only to report and
// exit.
type InvariantError struct {
	// Cell is the cell's diagnostic name; empty when diagnostics are off.
	Cell string

	// State is the borrow state observed when the violation was detected.
	State State

	// Report is the formatted violation report.
	Report string

	err error
}

func (e *InvariantError) Error() string {
	if e.Cell == "" {
		return fmt.Sprintf("refcell: invariant violation: %v", e.err)
	}
	return fmt.Sprintf("refcell %q: invariant violation: %v", e.Cell, e.err)
}

// Unwrap returns the cause: ErrGuardReleased, ErrForeignGoroutine or an
// error wrapping ErrInvalidRelease.
func (e *InvariantError) Unwrap() error {
	return e.err
}

// refusal maps a refusing state to its sentinel.
func refusal(s State) error {
	if s.IsExclusive() {
		return ErrAlreadyMutablyBorrowed
	}
	return ErrAlreadyBorrowed
}
