// Package refcell provides RefCell, a container that checks aliasing at
// runtime: it hands out any number of read-only views of a value, or exactly
// one read-write view, never both.
//
// # Quick Start
//
//	c := refcell.New(30)
//
//	if r, ok := c.Borrow(); ok {
//		fmt.Println(r.Get()) // 30
//		r.Release()
//	}
//
//	if m, ok := c.BorrowMut(); ok {
//		m.Set(66)
//		m.Release()
//	}
//
// # Borrow State
//
// Each cell tracks one of three states:
//
//	Unshared    no outstanding guards
//	Shared(n)   n >= 1 shared guards (Ref)
//	Exclusive   one exclusive guard (RefMut)
//
// Borrow succeeds unless the state is Exclusive. BorrowMut succeeds only
// from Unshared. A refusal is an expected outcome: Borrow and BorrowMut
// return false, TryBorrow and TryBorrowMut return a *BorrowError. There is
// no queuing and no retry; the caller decides whether to try again later.
//
// Releasing a guard is the only way back. Release is not automatic in Go:
// pair every successful borrow with a Release, usually deferred, or use the
// scoped helpers With and WithMut.
//
// # Invariant Violations
//
// A release the state cannot account for, use of a guard after release, or
// (with WithOwnerCheck) use from a foreign goroutine means the aliasing
// model is already corrupted. The cell panics with an *InvariantError
// rather than repairing the state.
//
// # Diagnostics
//
// Options enable debug aids at a per-operation cost:
//   - [WithLogger]: zap debug tracing of every transition
//   - [WithSiteTracking]: stacks of outstanding borrows in errors and reports
//   - [WithOwnerCheck]: pin the cell to its creating goroutine
//
// # Thread Safety
//
// None. A RefCell and its guards belong to one goroutine. The state tag is
// updated without atomics; sharing a cell across goroutines without external
// synchronisation is a data race. The values inside are stored with
// package cell, which has the same contract.
package refcell
