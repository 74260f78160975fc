package refcell

import (
	"github.com/kolkov/refcell/internal/borrowstate"
	"github.com/kolkov/refcell/internal/report"
)

// Ref is a shared guard: a read-only view of a RefCell's value.
//
// A Ref must be released exactly once and must not outlive its cell.
// Using or releasing it after release panics with an *InvariantError
// wrapping ErrGuardReleased.
type Ref[T any] struct {
	cell     *RefCell[T]
	site     uint64 // diagnostic key of the borrow site, 0 if untracked
	released bool
}

// Get returns the value. For reference-typed T (slices, maps, pointers) the
// result shares storage with the cell and must be treated as read-only.
func (r *Ref[T]) Get() T {
	r.check()
	return r.cell.value
}

// Release gives the view back. Releasing a nil *Ref is a no-op, so
//
//	r, ok := c.Borrow()
//	defer r.Release()
//
// is safe even when the borrow was refused.
func (r *Ref[T]) Release() {
	if r == nil {
		return
	}
	if r.released {
		r.cell.violate(report.OpRelease, borrowstate.GuardShared, r.cell.state.Get(), ErrGuardReleased)
	}
	r.released = true
	r.cell.release(borrowstate.GuardShared, r.site)
}

func (r *Ref[T]) check() {
	if r.released {
		r.cell.violate(report.OpAccess, borrowstate.GuardShared, r.cell.state.Get(), ErrGuardReleased)
	}
	r.cell.checkOwner(report.OpAccess, borrowstate.GuardShared)
}

// RefMut is the exclusive guard: a read-write view of a RefCell's value.
//
// A RefMut must be released exactly once and must not outlive its cell.
// Using or releasing it after release panics with an *InvariantError
// wrapping ErrGuardReleased.
type RefMut[T any] struct {
	cell     *RefCell[T]
	site     uint64
	released bool
}

// Get returns the value.
func (m *RefMut[T]) Get() T {
	m.check()
	return m.cell.value
}

// Set overwrites the value.
func (m *RefMut[T]) Set(v T) {
	m.check()
	m.cell.value = v
}

// Ptr returns a pointer to the value for in-place mutation. The pointer is
// valid only until Release.
func (m *RefMut[T]) Ptr() *T {
	m.check()
	return &m.cell.value
}

// Release gives the view back. Releasing a nil *RefMut is a no-op.
func (m *RefMut[T]) Release() {
	if m == nil {
		return
	}
	if m.released {
		m.cell.violate(report.OpRelease, borrowstate.GuardExclusive, m.cell.state.Get(), ErrGuardReleased)
	}
	m.released = true
	m.cell.release(borrowstate.GuardExclusive, m.site)
}

func (m *RefMut[T]) check() {
	if m.released {
		m.cell.violate(report.OpAccess, borrowstate.GuardExclusive, m.cell.state.Get(), ErrGuardReleased)
	}
	m.cell.checkOwner(report.OpAccess, borrowstate.GuardExclusive)
}
