package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kolkov/refcell/cell"
	"github.com/kolkov/refcell/refcell"
)

func newDemoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the cell and refcell scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDemo(cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int("initial", defaultInitial, "initial refcell value")
	cmd.Flags().Int("write", defaultWrite, "value written through the exclusive guard")
	_ = a.v.BindPFlag(cfgKeyInitial, cmd.Flags().Lookup("initial"))
	_ = a.v.BindPFlag(cfgKeyWrite, cmd.Flags().Lookup("write"))
	return cmd
}

//nolint:errcheck // Demo output is best effort.
func (a *app) runDemo(w io.Writer) error {
	c := cell.New(42)
	fmt.Fprintln(w, c.Get())
	c.Set(43)
	fmt.Fprintln(w, c.Get())

	rc := refcell.New(a.cfg.Initial, a.cellOptions("demo")...)

	r, err := rc.TryBorrow()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, r.Get())
	r.Release()

	if err := rc.WithMut(func(v *int) error {
		*v = a.cfg.Write
		return nil
	}); err != nil {
		return err
	}

	return rc.With(func(v int) error {
		fmt.Fprintln(w, v)
		return nil
	})
}
