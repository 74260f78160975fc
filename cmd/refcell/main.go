// Package main implements the refcell demonstration CLI.
//
// Usage:
//
//	refcell demo                  # read 30, write 66, read 66
//	refcell demo --initial 5 --write 9
//	refcell states                # walk the borrow-state machine
//	refcell version               # show version information
//
// Settings come from flags, REFCELL_* environment variables and an
// optional refcell.yaml, in that order of precedence.
package main

import (
	"fmt"
	"os"
)

// Exit codes.
const (
	exitSuccess = 0
	exitError   = 1
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}
