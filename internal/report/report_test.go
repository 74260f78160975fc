package report

import (
	"strings"
	"testing"

	"github.com/kolkov/refcell/internal/borrowstate"
	"github.com/kolkov/refcell/internal/stackdepot"
)

// TestKind_String tests report headers.
func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindConflict, "BORROW CONFLICT"},
		{KindViolation, "BORROW VIOLATION"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// TestReport_FormatUntracked tests output without stacks.
func TestReport_FormatUntracked(t *testing.T) {
	r := &Report{
		Kind:    KindViolation,
		Cell:    "config",
		Message: "exclusive guard released in state Shared(2)",
		State:   borrowstate.Shared(2),
		Current: Site{Op: OpRelease, Guard: borrowstate.GuardExclusive, Goroutine: 1},
	}

	out := r.String()

	for _, want := range []string{
		"==================\nBORROW VIOLATION: exclusive guard released in state Shared(2)\n",
		`Release of exclusive guard on cell "config" by goroutine 1:`,
		"(borrow site tracking disabled)",
		"[state: Shared(2)]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Outstanding") {
		t.Errorf("report should list no outstanding guards:\n%s", out)
	}
}

// TestReport_FormatTracked tests output with current and outstanding stacks.
func TestReport_FormatTracked(t *testing.T) {
	stackdepot.Reset()

	outstanding := stackdepot.Capture(0)
	current := stackdepot.Capture(0)

	r := &Report{
		Kind:    KindConflict,
		Cell:    "c1",
		Message: "already borrowed",
		State:   borrowstate.Shared(1),
		Current: Site{Op: OpBorrowMut, Guard: borrowstate.GuardExclusive, Goroutine: 7, Stack: current},
		Outstanding: []Site{
			{Op: OpBorrow, Guard: borrowstate.GuardShared, Goroutine: 7, Stack: outstanding},
		},
	}

	out := r.String()

	for _, want := range []string{
		"BORROW CONFLICT: already borrowed",
		`Exclusive borrow on cell "c1" by goroutine 7:`,
		"Outstanding shared guard obtained by goroutine 7:",
		"TestReport_FormatTracked",
		"report_test.go",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "tracking disabled") {
		t.Errorf("tracked report should not mention disabled tracking:\n%s", out)
	}
	if !strings.HasSuffix(out, "\n\n  [state: Shared(1)]\n==================\n") {
		t.Errorf("state line should be set apart from the last stack:\n%s", out)
	}
}

// TestSite_Describe tests the per-op headings.
func TestSite_Describe(t *testing.T) {
	tests := []struct {
		site Site
		want string
	}{
		{Site{Op: OpBorrow}, "Shared borrow"},
		{Site{Op: OpBorrowMut}, "Exclusive borrow"},
		{Site{Op: OpRelease, Guard: borrowstate.GuardShared}, "Release of shared guard"},
		{Site{Op: OpAccess, Guard: borrowstate.GuardExclusive}, "Access through exclusive guard"},
	}
	for _, tt := range tests {
		if got := tt.site.describe(); got != tt.want {
			t.Errorf("describe() = %q, want %q", got, tt.want)
		}
	}
}

// TestOp_String tests operation names.
func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpBorrow, "borrow"},
		{OpBorrowMut, "borrow_mut"},
		{OpRelease, "release"},
		{OpAccess, "access"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}
