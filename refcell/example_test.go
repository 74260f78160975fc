package refcell_test

import (
	"errors"
	"fmt"

	"github.com/kolkov/refcell/refcell"
)

// Example reads, writes and reads again.
func Example() {
	c := refcell.New(30)

	if r, ok := c.Borrow(); ok {
		fmt.Println(r.Get())
		r.Release()
	}

	if m, ok := c.BorrowMut(); ok {
		m.Set(66)
		m.Release()
	}

	r, _ := c.Borrow()
	defer r.Release()
	fmt.Println(r.Get())

	// Output:
	// 30
	// 66
}

// Example_refusal shows a shared borrow refused while the value is being
// written.
func Example_refusal() {
	c := refcell.New("draft")

	m, _ := c.BorrowMut()
	_, ok := c.Borrow()
	fmt.Println("borrow while writing:", ok)
	m.Release()

	m, err := c.TryBorrowMut()
	fmt.Println(err)
	m.Release()

	// Output:
	// borrow while writing: false
	// <nil>
}

// ExampleRefCell_TryBorrow distinguishes the refusal reasons.
func ExampleRefCell_TryBorrow() {
	c := refcell.New(1)

	m, _ := c.TryBorrowMut()
	_, err := c.TryBorrow()
	fmt.Println(errors.Is(err, refcell.ErrAlreadyMutablyBorrowed))
	fmt.Println(err)
	m.Release()

	// Output:
	// true
	// refcell: already mutably borrowed (state Exclusive)
}

// ExampleRefCell_WithMut appends under a scoped exclusive borrow.
func ExampleRefCell_WithMut() {
	c := refcell.New([]string{"a"})

	_ = c.WithMut(func(v *[]string) error {
		*v = append(*v, "b")
		return nil
	})
	_ = c.With(func(v []string) error {
		fmt.Println(v, c.State())
		return nil
	})
	fmt.Println(c.State())

	// Output:
	// [a b] Shared(1)
	// Unshared
}
