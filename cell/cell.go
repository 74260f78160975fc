// Package cell provides Cell, a single-value container that can be mutated
// through a shared pointer.
//
// A Cell never hands out a pointer into its storage. Get returns a copy and
// Set overwrites in place, so there is nothing an alias could observe
// half-written. That argument only holds when the payload type is itself a
// plain value: New rejects types with reference semantics (pointers, maps,
// slices, channels, functions, interfaces) at construction.
//
// # Example
//
//	c := cell.New(42)
//	fmt.Println(c.Get()) // 42
//	c.Set(43)
//	fmt.Println(c.Get()) // 43
//
// # Thread Safety
//
// None. A Cell must stay on one goroutine. Sharing it across goroutines
// without external synchronisation is a data race.
package cell

import (
	"fmt"

	"github.com/kolkov/refcell/internal/copycheck"
)

// Cell holds one value of a copy-safe type T.
//
// The zero value is a usable Cell holding T's zero value, but it skips the
// copy-safety check that New performs.
type Cell[T any] struct {
	value T
}

// New returns a Cell holding value.
//
// New panics if T is not copy-safe (see package copycheck). The panic value
// is an error wrapping the *copycheck.Error. Use NewUnchecked
// for a type the caller knows to be safe but reflection cannot prove so.
func New[T any](value T) *Cell[T] {
	if err := copycheck.CheckOf[T](); err != nil {
		panic(fmt.Errorf("cell.New: %w", err))
	}
	return &Cell[T]{value: value}
}

// NewUnchecked returns a Cell holding value without checking T.
func NewUnchecked[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// Get returns a copy of the stored value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set overwrites the stored value.
func (c *Cell[T]) Set(value T) {
	c.value = value
}

// Replace stores value and returns the previous one.
func (c *Cell[T]) Replace(value T) T {
	old := c.value
	c.value = value
	return old
}

// Update stores fn applied to the current value and returns the new value.
// fn receives a copy; it cannot reach the storage.
func (c *Cell[T]) Update(fn func(T) T) T {
	v := fn(c.value)
	c.value = v
	return v
}

// Swap exchanges the values of c and other. Swapping a cell with itself is
// a no-op.
func (c *Cell[T]) Swap(other *Cell[T]) {
	if c == other {
		return
	}
	c.value, other.value = other.value, c.value
}

// String implements fmt.Stringer.
func (c *Cell[T]) String() string {
	return fmt.Sprintf("Cell(%v)", c.value)
}
