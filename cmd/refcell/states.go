package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kolkov/refcell/refcell"
)

func newStatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "Walk the borrow-state machine and print each step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.runStates(cmd.OutOrStdout())
			return nil
		},
	}
}

// runStates exercises every edge of the state machine on one cell.
//
//nolint:errcheck // Demo output is best effort.
func (a *app) runStates(w io.Writer) {
	c := refcell.New(a.cfg.Initial, a.cellOptions("states")...)

	step := func(op string, ok bool, from refcell.State) {
		result := c.State().String()
		if !ok {
			result = "refused"
		}
		fmt.Fprintf(w, "%-10s --%s--> %s\n", from, op, result)
	}

	from := c.State()
	r1, ok := c.Borrow()
	step("borrow", ok, from)

	from = c.State()
	r2, ok := c.Borrow()
	step("borrow", ok, from)

	from = c.State()
	_, ok = c.BorrowMut()
	step("borrow_mut", ok, from)

	from = c.State()
	r2.Release()
	step("release shared", true, from)

	from = c.State()
	r1.Release()
	step("release shared", true, from)

	from = c.State()
	m, ok := c.BorrowMut()
	step("borrow_mut", ok, from)

	from = c.State()
	_, ok = c.Borrow()
	step("borrow", ok, from)

	from = c.State()
	_, ok = c.BorrowMut()
	step("borrow_mut", ok, from)

	from = c.State()
	m.Release()
	step("release exclusive", true, from)
}
