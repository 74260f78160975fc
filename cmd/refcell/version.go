package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolkov/refcell/refcell"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := refcell.GetInfo()
			valid := info.Semver != ""
			fmt.Fprintf(cmd.OutOrStdout(), "refcell version %s (semver %t, major %s)\nmodel: %s\n",
				info.Version, valid, info.Major, info.Model)
		},
	}
}
