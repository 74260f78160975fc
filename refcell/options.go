package refcell

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kolkov/refcell/internal/goid"
	"github.com/kolkov/refcell/internal/report"
)

// Option configures a RefCell at construction.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	name       string
	trackSites bool
	ownerCheck bool
}

// WithLogger traces every transition and refusal at debug level and logs
// invariant violations at error level before panicking. The default is no
// logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithName labels the cell in logs, errors and reports. Without a name, a
// cell with any diagnostic option enabled gets a short random label.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithSiteTracking records the call stack of every successful borrow so
// refusals and violations can name the code holding the outstanding guards.
// Each borrow costs a stack capture (~1µs).
func WithSiteTracking(on bool) Option {
	return func(o *options) {
		o.trackSites = on
	}
}

// WithOwnerCheck pins the cell to the goroutine that creates it. Any
// operation from another goroutine, including a guard release, panics with
// an *InvariantError wrapping ErrForeignGoroutine. Each operation costs a
// goroutine ID lookup (~1µs).
func WithOwnerCheck(on bool) Option {
	return func(o *options) {
		o.ownerCheck = on
	}
}

// diagnostics is the opt-in debug state of a cell. A nil *diagnostics means
// every check is off.
type diagnostics struct {
	name       string
	trackSites bool
	owner      int64 // 0 when the owner check is off

	nextID uint64
	live   map[uint64]report.Site
}

func newDiagnostics(o *options) *diagnostics {
	if o.logger == nil && o.name == "" && !o.trackSites && !o.ownerCheck {
		return nil
	}

	d := &diagnostics{
		name:       o.name,
		trackSites: o.trackSites,
	}
	if d.name == "" {
		d.name = "refcell-" + uuid.NewString()[:8]
	}
	if o.ownerCheck {
		d.owner = goid.Current()
	}
	if d.trackSites {
		d.live = make(map[uint64]report.Site)
	}
	return d
}
