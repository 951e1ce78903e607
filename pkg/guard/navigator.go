package guard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/route"
	"github.com/vango-dev/navguard/pkg/scroll"
	"github.com/vango-dev/navguard/pkg/view"
	"go.uber.org/atomic"
)

// DefaultMaxRedirects is the number of middleware redirects a single
// navigation may follow.
const DefaultMaxRedirects = 10

// Status is the final state of a navigation.
type Status string

const (
	// StatusCommitted: the requested location became current.
	StatusCommitted Status = "committed"

	// StatusRedirected: middleware redirected and the redirect target
	// became current.
	StatusRedirected Status = "redirected"

	// StatusAborted: middleware cancelled the navigation.
	StatusAborted Status = "aborted"

	// StatusAbandoned: a newer navigation started before this one settled.
	StatusAbandoned Status = "abandoned"

	// StatusFailed: the navigation returned an error.
	StatusFailed Status = "failed"
)

// Outcome describes a finished navigation.
type Outcome struct {
	Status Status

	// Requested is the location the navigation was started for.
	Requested nav.Location

	// From is the location that was current when the navigation started.
	From nav.Location

	// To is the committed location.
	To nav.Location

	// Redirects lists the redirect targets followed, in order.
	Redirects []string

	// Decision is the last guard decision.
	Decision *Decision

	// Scroll is where the page should scroll after the commit.
	Scroll scroll.Target
}

// Committed reports whether the navigation changed the current location.
func (o *Outcome) Committed() bool {
	return o.Status == StatusCommitted || o.Status == StatusRedirected
}

type entry struct {
	loc   nav.Location
	saved *scroll.Position
}

type moveKind int

const (
	movePush moveKind = iota
	moveReplace
	moveTraverse
)

type move struct {
	kind  moveKind
	index int
	saved *scroll.Position
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithMaxRedirects limits how many redirects one navigation follows.
func WithMaxRedirects(n int) NavigatorOption {
	return func(nv *Navigator) {
		nv.maxRedirects = n
	}
}

// WithNavigatorLogger sets the navigator's logger.
func WithNavigatorLogger(logger *slog.Logger) NavigatorOption {
	return func(nv *Navigator) {
		nv.logger = logger
	}
}

// Navigator drives a Guard the way a router does: it matches targets
// against a route table, follows redirects, keeps history and remembers
// scroll positions.
//
// Navigations may overlap. Starting one cancels the context of the one in
// flight, which then returns StatusAbandoned without committing anything.
type Navigator struct {
	table        *route.Table
	guard        *Guard
	maxRedirects int
	logger       *slog.Logger

	seq *atomic.Uint64

	mu      sync.Mutex
	cancel  context.CancelFunc
	history []entry
	index   int
	page    *Decision
}

// NewNavigator creates a navigator with empty history.
func NewNavigator(table *route.Table, g *Guard, opts ...NavigatorOption) *Navigator {
	nv := &Navigator{
		table:        table,
		guard:        g,
		maxRedirects: DefaultMaxRedirects,
		seq:          atomic.NewUint64(0),
		index:        -1,
	}
	for _, opt := range opts {
		opt(nv)
	}
	if nv.logger == nil {
		nv.logger = g.logger
	}
	return nv
}

// Push navigates to target and adds a history entry.
func (nv *Navigator) Push(ctx context.Context, target string) (*Outcome, error) {
	loc, err := nav.Parse(target)
	if err != nil {
		return &Outcome{Status: StatusFailed, From: nv.Current()}, err
	}
	return nv.navigate(ctx, loc, move{kind: movePush})
}

// Replace navigates to target and replaces the current history entry.
func (nv *Navigator) Replace(ctx context.Context, target string) (*Outcome, error) {
	loc, err := nav.Parse(target)
	if err != nil {
		return &Outcome{Status: StatusFailed, From: nv.Current()}, err
	}
	return nv.navigate(ctx, loc, move{kind: moveReplace})
}

// Back navigates one history entry back.
func (nv *Navigator) Back(ctx context.Context) (*Outcome, error) {
	return nv.Go(ctx, -1)
}

// Forward navigates one history entry forward.
func (nv *Navigator) Forward(ctx context.Context) (*Outcome, error) {
	return nv.Go(ctx, 1)
}

// Go moves delta entries through history. Moving outside the history is
// reported as StatusAborted.
func (nv *Navigator) Go(ctx context.Context, delta int) (*Outcome, error) {
	nv.mu.Lock()
	idx := nv.index + delta
	if delta == 0 || idx < 0 || idx >= len(nv.history) {
		cur := nv.current()
		nv.mu.Unlock()
		return &Outcome{Status: StatusAborted, From: cur, To: cur}, nil
	}
	target := nv.history[idx]
	nv.mu.Unlock()

	return nv.navigate(ctx, target.loc, move{kind: moveTraverse, index: idx, saved: target.saved})
}

// RecordScroll remembers the scroll position of the current entry, to be
// restored when history returns to it.
func (nv *Navigator) RecordScroll(pos scroll.Position) {
	nv.mu.Lock()
	defer nv.mu.Unlock()
	if nv.index < 0 {
		return
	}
	nv.history[nv.index].saved = &pos
}

// Current returns the current location (zero before the first commit).
func (nv *Navigator) Current() nav.Location {
	nv.mu.Lock()
	defer nv.mu.Unlock()
	return nv.current()
}

func (nv *Navigator) current() nav.Location {
	if nv.index < 0 {
		return nav.Location{}
	}
	return nv.history[nv.index].loc
}

// Page returns the decision of the last committed navigation.
func (nv *Navigator) Page() *Decision {
	nv.mu.Lock()
	defer nv.mu.Unlock()
	return nv.page
}

// History returns the history entries and the current index.
func (nv *Navigator) History() ([]nav.Location, int) {
	nv.mu.Lock()
	defer nv.mu.Unlock()
	out := make([]nav.Location, len(nv.history))
	for i, e := range nv.history {
		out[i] = e.loc
	}
	return out, nv.index
}

func (nv *Navigator) begin(cancel context.CancelFunc) uint64 {
	nv.mu.Lock()
	defer nv.mu.Unlock()
	if nv.cancel != nil {
		nv.cancel()
	}
	nv.cancel = cancel
	return nv.seq.Inc()
}

func (nv *Navigator) end(seq uint64) {
	nv.mu.Lock()
	defer nv.mu.Unlock()
	if nv.seq.Load() == seq {
		nv.cancel = nil
	}
}

func (nv *Navigator) superseded(seq uint64) bool {
	return nv.seq.Load() != seq
}

func (nv *Navigator) navigate(parent context.Context, loc nav.Location, m move) (*Outcome, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	seq := nv.begin(cancel)
	defer nv.end(seq)

	from := nv.Current()
	out := &Outcome{Requested: loc, From: from}

	for {
		to, refs := loc, []view.Ref(nil)
		if match, ok := nv.table.Match(loc); ok {
			to, refs = match.Location, match.Views()
		}

		dec, err := nv.guard.BeforeEach(ctx, to, from, refs)
		if nv.superseded(seq) {
			return nv.abandoned(out, to, dec), nil
		}
		if err != nil {
			out.Status = StatusFailed
			return out, err
		}
		out.Decision = dec

		if dec.Proceed() {
			out.To = to
			break
		}

		next, stop, err := nv.redirectTarget(dec.Result.Payload())
		if err != nil {
			out.Status = StatusFailed
			return out, err
		}
		if stop {
			out.Status = StatusAborted
			out.To = from
			nv.logger.Info("navigation aborted",
				"navigation_id", dec.ID,
				"to", to.FullPath,
				"middleware", dec.Result.AbortedBy())
			return out, nil
		}

		if len(out.Redirects) >= nv.maxRedirects {
			out.Status = StatusFailed
			return out, errors.New("N043").
				WithRoute(out.Requested.FullPath).
				WithDetailf("gave up after %d redirects (last: %s)", len(out.Redirects), next.FullPath)
		}
		nv.guard.metrics.redirect()
		out.Redirects = append(out.Redirects, next.FullPath)
		loc = next
		m.saved = nil
	}

	if !nv.commit(seq, out, m) {
		return nv.abandoned(out, out.To, out.Decision), nil
	}

	nv.guard.store.SyncRoute(out.To)
	nv.guard.AfterEach(out.To, from)
	out.Scroll = scroll.Decide(out.To, from, m.saved, out.Decision.Views)

	nv.logger.Debug("navigation committed",
		"navigation_id", out.Decision.ID,
		"to", out.To.FullPath,
		"from", from.FullPath,
		"redirects", len(out.Redirects))
	return out, nil
}

func (nv *Navigator) abandoned(out *Outcome, to nav.Location, dec *Decision) *Outcome {
	dec.Abandon()
	nv.guard.metrics.abandon()
	nv.logger.Debug("navigation abandoned", "to", to.FullPath)
	out.Status = StatusAbandoned
	out.To = nav.Location{}
	return out
}

// redirectTarget interprets a short-circuit payload. stop is true when the
// navigation is cancelled without a redirect.
func (nv *Navigator) redirectTarget(payload any) (next nav.Location, stop bool, err error) {
	switch p := payload.(type) {
	case nil:
		return nav.Location{}, true, nil
	case bool:
		if p {
			return nav.Location{}, false, errors.New("N041").
				WithDetail("redirect payload true is not a location")
		}
		return nav.Location{}, true, nil
	case string:
		next, err = nav.Parse(p)
		return next, false, err
	case nav.Location:
		if p.FullPath == "" {
			next, err = nav.Parse(p.Path)
			return next, false, err
		}
		return p, false, nil
	case error:
		return nav.Location{}, false, p
	default:
		return nav.Location{}, false, errors.New("N041").
			WithDetailf("unsupported redirect payload %T", payload)
	}
}

func (nv *Navigator) commit(seq uint64, out *Outcome, m move) bool {
	nv.mu.Lock()
	defer nv.mu.Unlock()
	if nv.superseded(seq) {
		return false
	}

	e := entry{loc: out.To}
	switch {
	case m.kind == movePush || nv.index < 0:
		nv.history = append(nv.history[:nv.index+1], e)
		nv.index = len(nv.history) - 1
	case m.kind == moveReplace:
		nv.history[nv.index] = e
	case m.kind == moveTraverse:
		// Restored entries keep their saved position until the next
		// RecordScroll.
		e.saved = nv.history[m.index].saved
		if len(out.Redirects) > 0 {
			e.saved = nil
		}
		nv.history[m.index] = e
		nv.index = m.index
	}
	nv.page = out.Decision

	out.Status = StatusCommitted
	if len(out.Redirects) > 0 {
		out.Status = StatusRedirected
	}
	return true
}
