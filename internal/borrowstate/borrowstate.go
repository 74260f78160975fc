// Package borrowstate implements the borrow-state tag of a RefCell and its
// transitions.
//
// A State is one of three variants:
//
//	Unshared    no outstanding guards
//	Shared(n)   n >= 1 outstanding shared guards
//	Exclusive   exactly one outstanding exclusive guard
//
// Shared(0) is not representable: Shared(0) returns Unshared, and releasing
// the last shared guard lands on Unshared.
//
// State machine:
//
//	Unshared    --borrow-->            Shared(1)
//	Shared(n)   --borrow-->            Shared(n+1)
//	Shared(1)   --release shared-->    Unshared
//	Shared(n>1) --release shared-->    Shared(n-1)
//	Unshared    --borrow mut-->        Exclusive
//	Exclusive   --release exclusive--> Unshared
//	Exclusive   --borrow-->            refused
//	Shared(_)   --borrow mut-->        refused
//	Exclusive   --borrow mut-->        refused
//
// Transitions are pure functions over State values. The caller stores the
// result; this package holds no state of its own.
package borrowstate

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind is the variant of a State.
type Kind uint8

const (
	// KindUnshared means no guard is outstanding.
	KindUnshared Kind = iota
	// KindShared means one or more shared guards are outstanding.
	KindShared
	// KindExclusive means one exclusive guard is outstanding.
	KindExclusive
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindUnshared:
		return "Unshared"
	case KindShared:
		return "Shared"
	case KindExclusive:
		return "Exclusive"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// State is the borrow-state tag. It is a small comparable value, safe to
// store in a cell.Cell.
//
// The zero State is Unshared.
type State struct {
	kind  Kind
	count uint
}

// Unshared returns the state with no outstanding guards.
func Unshared() State {
	return State{kind: KindUnshared}
}

// Shared returns the state with n outstanding shared guards.
// Shared(0) is Unshared.
func Shared(n uint) State {
	if n == 0 {
		return Unshared()
	}
	return State{kind: KindShared, count: n}
}

// Exclusive returns the state with one outstanding exclusive guard.
func Exclusive() State {
	return State{kind: KindExclusive}
}

// Kind returns the variant.
func (s State) Kind() Kind {
	return s.kind
}

// Count returns the number of outstanding shared guards; 0 unless Shared.
func (s State) Count() uint {
	return s.count
}

// IsUnshared reports whether no guard is outstanding.
func (s State) IsUnshared() bool {
	return s.kind == KindUnshared
}

// IsShared reports whether shared guards are outstanding.
func (s State) IsShared() bool {
	return s.kind == KindShared
}

// IsExclusive reports whether the exclusive guard is outstanding.
func (s State) IsExclusive() bool {
	return s.kind == KindExclusive
}

// String formats the state as "Unshared", "Shared(n)" or "Exclusive".
func (s State) String() string {
	if s.kind == KindShared {
		return "Shared(" + strconv.FormatUint(uint64(s.count), 10) + ")"
	}
	return s.kind.String()
}

// Valid reports whether s is one of the three well-formed variants.
// Only a State built outside this package's constructors can be invalid.
func (s State) Valid() bool {
	switch s.kind {
	case KindUnshared, KindExclusive:
		return s.count == 0
	case KindShared:
		return s.count >= 1
	default:
		return false
	}
}

// Borrow returns the state after issuing a shared guard, and false if the
// request must be refused. A refused request leaves the state unchanged.
func Borrow(s State) (State, bool) {
	switch s.kind {
	case KindUnshared:
		return Shared(1), true
	case KindShared:
		return Shared(s.count + 1), true
	default:
		return s, false
	}
}

// BorrowMut returns the state after issuing the exclusive guard, and false
// if the request must be refused.
func BorrowMut(s State) (State, bool) {
	if s.kind == KindUnshared {
		return Exclusive(), true
	}
	return s, false
}

// ErrInvalidRelease is wrapped by every release error. It signals a
// corrupted borrow state, never a recoverable condition.
var ErrInvalidRelease = errors.New("guard released in inconsistent borrow state")

// GuardKind names the guard being released.
type GuardKind uint8

const (
	// GuardShared is a shared (read-only) guard.
	GuardShared GuardKind = iota
	// GuardExclusive is the exclusive (read-write) guard.
	GuardExclusive
)

// String returns "shared" or "exclusive".
func (g GuardKind) String() string {
	if g == GuardExclusive {
		return "exclusive"
	}
	return "shared"
}

// ReleaseError reports a guard released while the state cannot account for
// it.
type ReleaseError struct {
	Guard GuardKind
	State State
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("%s guard released in state %s", e.Guard, e.State)
}

func (e *ReleaseError) Unwrap() error {
	return ErrInvalidRelease
}

// ReleaseShared returns the state after a shared guard is released.
// It fails unless s is Shared(n) with n >= 1.
func ReleaseShared(s State) (State, error) {
	if s.kind != KindShared || s.count == 0 {
		return s, &ReleaseError{Guard: GuardShared, State: s}
	}
	return Shared(s.count - 1), nil
}

// ReleaseExclusive returns the state after the exclusive guard is released.
// It fails unless s is Exclusive.
func ReleaseExclusive(s State) (State, error) {
	if s.kind != KindExclusive {
		return s, &ReleaseError{Guard: GuardExclusive, State: s}
	}
	return Unshared(), nil
}

// Release dispatches to ReleaseShared or ReleaseExclusive.
func Release(g GuardKind, s State) (State, error) {
	if g == GuardExclusive {
		return ReleaseExclusive(s)
	}
	return ReleaseShared(s)
}
