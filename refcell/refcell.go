package refcell

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/kolkov/refcell/cell"
	"github.com/kolkov/refcell/internal/borrowstate"
	"github.com/kolkov/refcell/internal/goid"
	"github.com/kolkov/refcell/internal/report"
	"github.com/kolkov/refcell/internal/stackdepot"
)

// State is the borrow state of a RefCell: Unshared, Shared(n) or Exclusive.
type State = borrowstate.State

// Unshared returns the state with no outstanding guards.
func Unshared() State { return borrowstate.Unshared() }

// Shared returns the state with n outstanding shared guards. Shared(0) is
// Unshared.
func Shared(n uint) State { return borrowstate.Shared(n) }

// Exclusive returns the state with the exclusive guard outstanding.
func Exclusive() State { return borrowstate.Exclusive() }

// noCopy lets go vet's copylocks check flag copies of a RefCell.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// RefCell owns a value of type T and hands out guarded views of it:
// any number of shared guards (Ref) or a single exclusive guard (RefMut),
// never both.
//
// The zero RefCell holds T's zero value with no diagnostics and is ready to
// use. A RefCell must not be copied after first use.
type RefCell[T any] struct {
	_ noCopy

	value T

	// state is the borrow-state tag. It is only read and written as whole
	// copies; no pointer to it escapes.
	state cell.Cell[State]

	log  *zap.Logger  // nil disables tracing
	diag *diagnostics // nil disables names, site tracking and owner check
}

// New returns a RefCell holding value in state Unshared.
func New[T any](value T, opts ...Option) *RefCell[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &RefCell[T]{
		value: value,
		state: *cell.New(borrowstate.Unshared()),
		log:   o.logger,
		diag:  newDiagnostics(&o),
	}
	if c.log != nil {
		c.log = c.log.With(zap.String("cell", c.diag.name))
		c.log.Debug("refcell created",
			zap.Bool("track_sites", c.diag.trackSites),
			zap.Bool("owner_check", c.diag.owner != 0))
	}
	return c
}

// Borrow returns a shared guard, or nil and false while the exclusive guard
// is outstanding.
//
// Release the guard when done, typically with defer:
//
//	if r, ok := c.Borrow(); ok {
//		defer r.Release()
//		use(r.Get())
//	}
func (c *RefCell[T]) Borrow() (*Ref[T], bool) {
	r, _, ok := c.acquireShared()
	return r, ok
}

// BorrowMut returns the exclusive guard, or nil and false while any guard
// is outstanding.
func (c *RefCell[T]) BorrowMut() (*RefMut[T], bool) {
	m, _, ok := c.acquireExclusive()
	return m, ok
}

// TryBorrow is Borrow with the refusal reported as a *BorrowError wrapping
// ErrAlreadyMutablyBorrowed.
func (c *RefCell[T]) TryBorrow() (*Ref[T], error) {
	r, s, ok := c.acquireShared()
	if !ok {
		return nil, c.conflict(report.OpBorrow, borrowstate.GuardShared, s)
	}
	return r, nil
}

// TryBorrowMut is BorrowMut with the refusal reported as a *BorrowError
// wrapping ErrAlreadyBorrowed or ErrAlreadyMutablyBorrowed.
func (c *RefCell[T]) TryBorrowMut() (*RefMut[T], error) {
	m, s, ok := c.acquireExclusive()
	if !ok {
		return nil, c.conflict(report.OpBorrowMut, borrowstate.GuardExclusive, s)
	}
	return m, nil
}

// With calls fn with the value under a shared guard and releases the guard
// when fn returns or panics. It returns the refusal error if the value is
// mutably borrowed, otherwise fn's error.
func (c *RefCell[T]) With(fn func(v T) error) error {
	r, s, ok := c.acquireShared()
	if !ok {
		return c.conflict(report.OpBorrow, borrowstate.GuardShared, s)
	}
	defer r.Release()
	return fn(r.Get())
}

// WithMut calls fn with a pointer to the value under the exclusive guard and
// releases the guard when fn returns or panics. The pointer must not be
// retained after fn returns.
func (c *RefCell[T]) WithMut(fn func(v *T) error) error {
	m, s, ok := c.acquireExclusive()
	if !ok {
		return c.conflict(report.OpBorrowMut, borrowstate.GuardExclusive, s)
	}
	defer m.Release()
	return fn(m.Ptr())
}

// Replace stores value and returns the previous one. It needs the same
// access as BorrowMut and fails with a *BorrowError, leaving the value
// unchanged, while any guard is outstanding.
func (c *RefCell[T]) Replace(value T) (T, error) {
	c.checkOwner(report.OpBorrowMut, borrowstate.GuardExclusive)

	if s := c.state.Get(); !s.IsUnshared() {
		var zero T
		c.traceRefusal(report.OpBorrowMut, s)
		return zero, c.conflict(report.OpBorrowMut, borrowstate.GuardExclusive, s)
	}
	old := c.value
	c.value = value
	return old, nil
}

// State returns the current borrow state.
func (c *RefCell[T]) State() State {
	return c.state.Get()
}

// String implements fmt.Stringer. The value is shown unless the exclusive
// guard is outstanding.
func (c *RefCell[T]) String() string {
	if c.state.Get().IsExclusive() {
		return "RefCell{<borrowed>}"
	}
	return fmt.Sprintf("RefCell{value: %v}", c.value)
}

func (c *RefCell[T]) acquireShared() (*Ref[T], State, bool) {
	c.checkOwner(report.OpBorrow, borrowstate.GuardShared)

	from := c.state.Get()
	next, ok := borrowstate.Borrow(from)
	if !ok {
		c.traceRefusal(report.OpBorrow, from)
		return nil, from, false
	}
	c.state.Set(next)
	c.traceTransition(report.OpBorrow, from, next)

	return &Ref[T]{cell: c, site: c.recordSite(report.OpBorrow, borrowstate.GuardShared)}, next, true
}

func (c *RefCell[T]) acquireExclusive() (*RefMut[T], State, bool) {
	c.checkOwner(report.OpBorrowMut, borrowstate.GuardExclusive)

	from := c.state.Get()
	next, ok := borrowstate.BorrowMut(from)
	if !ok {
		c.traceRefusal(report.OpBorrowMut, from)
		return nil, from, false
	}
	c.state.Set(next)
	c.traceTransition(report.OpBorrowMut, from, next)

	return &RefMut[T]{cell: c, site: c.recordSite(report.OpBorrowMut, borrowstate.GuardExclusive)}, next, true
}

// release runs the release half of the protocol for guard kind g. A state
// that cannot account for the guard is fatal.
func (c *RefCell[T]) release(g borrowstate.GuardKind, site uint64) {
	c.checkOwner(report.OpRelease, g)

	from := c.state.Get()
	next, err := borrowstate.Release(g, from)
	if err != nil {
		c.violate(report.OpRelease, g, from, err)
	}
	c.state.Set(next)
	c.forgetSite(site)
	c.traceTransition(report.OpRelease, from, next)
}

func (c *RefCell[T]) checkOwner(op report.Op, g borrowstate.GuardKind) {
	if c.diag == nil || c.diag.owner == 0 {
		return
	}
	if id := goid.Current(); id != c.diag.owner {
		c.violate(op, g, c.state.Get(),
			fmt.Errorf("%w: created on goroutine %d, used on goroutine %d", ErrForeignGoroutine, c.diag.owner, id))
	}
}

// recordSite stores the borrow site of a new guard and returns its key,
// or 0 when site tracking is off. It must be called from acquireShared or
// acquireExclusive, which every public borrow entry point calls directly:
// skipping recordSite, the acquire helper and the entry point leaves the
// trace starting at user code.
func (c *RefCell[T]) recordSite(op report.Op, g borrowstate.GuardKind) uint64 {
	if c.diag == nil || !c.diag.trackSites {
		return 0
	}
	c.diag.nextID++
	id := c.diag.nextID
	c.diag.live[id] = report.Site{
		Op:        op,
		Guard:     g,
		Goroutine: goid.Current(),
		Stack:     stackdepot.Capture(3),
	}
	return id
}

func (c *RefCell[T]) forgetSite(id uint64) {
	if id == 0 || c.diag == nil {
		return
	}
	delete(c.diag.live, id)
}

func (c *RefCell[T]) newReport(kind report.Kind, msg string, s State, op report.Op, g borrowstate.GuardKind) *report.Report {
	r := &report.Report{
		Kind:    kind,
		Message: msg,
		State:   s,
		Current: report.Site{Op: op, Guard: g, Goroutine: goid.Current()},
	}
	if c.diag == nil {
		return r
	}
	r.Cell = c.diag.name
	if c.diag.trackSites {
		// From conflict this starts at the caller of the public operation.
		// Violations arrive through deeper paths; the remaining cell frames
		// are omitted by Trace.Format.
		r.Current.Stack = stackdepot.Capture(3)
		for _, id := range slices.Sorted(maps.Keys(c.diag.live)) {
			r.Outstanding = append(r.Outstanding, c.diag.live[id])
		}
	}
	return r
}

// conflict builds the error for a refused request.
func (c *RefCell[T]) conflict(op report.Op, g borrowstate.GuardKind, s State) error {
	err := &BorrowError{State: s, err: refusal(s)}
	if c.diag == nil {
		return err
	}
	err.Cell = c.diag.name
	if c.diag.trackSites {
		err.Report = c.newReport(report.KindConflict, err.err.Error(), s, op, g).String()
	}
	return err
}

// violate logs and panics with an *InvariantError. It never returns.
func (c *RefCell[T]) violate(op report.Op, g borrowstate.GuardKind, s State, cause error) {
	err := &InvariantError{
		State:  s,
		Report: c.newReport(report.KindViolation, cause.Error(), s, op, g).String(),
		err:    cause,
	}
	if c.diag != nil {
		err.Cell = c.diag.name
	}
	if c.log != nil {
		c.log.Error("borrow invariant violated",
			zap.Stringer("op", op),
			zap.Stringer("guard", g),
			zap.Stringer("state", s),
			zap.Error(cause),
			zap.String("report", err.Report))
	}
	panic(err)
}

func (c *RefCell[T]) traceTransition(op report.Op, from, to State) {
	if c.log == nil {
		return
	}
	if ce := c.log.Check(zap.DebugLevel, "borrow state transition"); ce != nil {
		ce.Write(zap.Stringer("op", op), zap.Stringer("from", from), zap.Stringer("to", to))
	}
}

func (c *RefCell[T]) traceRefusal(op report.Op, s State) {
	if c.log == nil {
		return
	}
	if ce := c.log.Check(zap.DebugLevel, "borrow refused"); ce != nil {
		fields := []zap.Field{zap.Stringer("op", op), zap.Stringer("state", s)}
		if c.diag.trackSites {
			var sites []string
			for _, id := range slices.Sorted(maps.Keys(c.diag.live)) {
				sites = append(sites, stackdepot.Get(c.diag.live[id].Stack).Top())
			}
			fields = append(fields, zap.Strings("outstanding", sites))
		}
		ce.Write(fields...)
	}
}
