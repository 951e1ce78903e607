// Package guard runs the before/after hooks of a client-side navigation.
//
// For every navigation the guard resolves the matched views, schedules the
// loading indicator, runs the middleware chain and, when the chain lets the
// navigation through, applies the innermost view's layout and fetches its
// data. The collaborators it drives (indicator, layout holder, scheduler,
// store) are injected through Config.
//
// Navigator builds on the guard and plays the part of a router: history,
// redirects, superseded navigations and scroll restoration.
package guard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/middleware"
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/store"
	"github.com/vango-dev/navguard/pkg/view"
)

// Indicator is a global loading indicator.
type Indicator interface {
	Start()
	Finish()
}

// LayoutSetter switches the layout the application shell renders.
type LayoutSetter interface {
	SetLayout(name string)
}

// Scheduler defers a callback until after the UI's next render pass.
type Scheduler interface {
	NextTick(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// NextTick calls f(fn).
func (f SchedulerFunc) NextTick(fn func()) {
	f(fn)
}

// Immediate runs callbacks synchronously.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })

type noopIndicator struct{}

func (noopIndicator) Start()  {}
func (noopIndicator) Finish() {}

type noopLayout struct{}

func (noopLayout) SetLayout(string) {}

// Config configures a Guard. Only Registry is commonly set; every other
// field has a working default.
type Config struct {
	// Registry resolves middleware names. Default: an empty registry.
	Registry *middleware.Registry

	// Global is the middleware run before any view's middleware.
	Global []middleware.Ref

	// Indicator is the loading indicator. Default: no-op.
	Indicator Indicator

	// Layout receives the innermost view's layout. Default: no-op.
	Layout LayoutSetter

	// Scheduler defers indicator calls. Default: Immediate.
	Scheduler Scheduler

	// Store is exposed to data hooks through view.Context.
	Store *store.Store

	// DataKey is the key non-map async data is stored under.
	// Default: view.DefaultDataKey.
	DataKey string

	// Logger is the guard's logger. Default: slog.Default().
	Logger *slog.Logger

	// Metrics records navigation metrics when set.
	Metrics *Metrics

	// Tracing records navigation spans when set.
	Tracing *Tracing
}

// Decision is the result of BeforeEach.
type Decision struct {
	// ID identifies the navigation in logs, spans and dev-server events.
	ID string

	// To is the destination.
	To nav.Location

	// Result is the middleware chain's result, unmodified.
	Result middleware.Result

	// Views are the resolved views, outermost first.
	Views []*view.Definition

	// Layout is the layout applied (only when the navigation proceeds).
	Layout string

	// Data is the innermost view's data (only when the navigation proceeds).
	Data map[string]any

	// Fetched reports whether an async data hook ran.
	Fetched bool

	loading *loading
}

// Proceed reports whether the navigation may be committed.
func (d *Decision) Proceed() bool {
	return !d.Result.Aborted()
}

// Guard runs the navigation hooks.
type Guard struct {
	registry  *middleware.Registry
	global    []middleware.Ref
	indicator Indicator
	layout    LayoutSetter
	scheduler Scheduler
	store     *store.Store
	dataKey   string
	logger    *slog.Logger
	metrics   *Metrics
	tracing   *Tracing
}

// New creates a guard.
func New(cfg Config) *Guard {
	g := &Guard{
		registry:  cfg.Registry,
		global:    cfg.Global,
		indicator: cfg.Indicator,
		layout:    cfg.Layout,
		scheduler: cfg.Scheduler,
		store:     cfg.Store,
		dataKey:   cfg.DataKey,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		tracing:   cfg.Tracing,
	}
	if g.registry == nil {
		g.registry = middleware.Load(nil)
	}
	if g.indicator == nil {
		g.indicator = noopIndicator{}
	}
	if g.layout == nil {
		g.layout = noopLayout{}
	}
	if g.scheduler == nil {
		g.scheduler = Immediate
	}
	if g.store == nil {
		g.store = store.New(nil)
	}
	if g.dataKey == "" {
		g.dataKey = view.DefaultDataKey
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Store returns the store handed to data hooks.
func (g *Guard) Store() *store.Store {
	return g.store
}

// Validate checks that every middleware name in the global list and in
// views is registered.
func (g *Guard) Validate(views ...*view.Definition) error {
	seq := middleware.Collect(g.global, view.MiddlewareOf(views)...)
	return middleware.NewExecutor(g.registry).Validate(seq)
}

// loading tracks the indicator for one navigation. A start scheduled for a
// navigation that already settled is dropped.
type loading struct {
	mu        sync.Mutex
	indicator Indicator
	started   bool
	settled   bool
}

func (l *loading) start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.settled {
		return
	}
	l.started = true
	l.indicator.Start()
}

func (l *loading) settle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.settled {
		return
	}
	l.settled = true
	l.indicator.Finish()
}

// abandon settles a navigation that will never commit. The indicator is
// finished only if this navigation started it; otherwise it may belong to
// a newer navigation.
func (l *loading) abandon() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.settled {
		return
	}
	l.settled = true
	if l.started {
		l.indicator.Finish()
	}
}

// Abandon settles the loading indicator of a navigation that proceeded but
// will not be committed, e.g. because a newer navigation superseded it.
// Its pending indicator start is dropped. Abandon is a no-op for decisions
// that already settled.
func (d *Decision) Abandon() {
	if d != nil {
		d.loading.abandon()
	}
}

// BeforeEach runs before a navigation from -> to is committed. refs are the
// views matched for to, outermost first.
//
// When no view matched, the guard lets the navigation through without
// touching the indicator or running middleware. Otherwise a proceeding
// decision has the innermost view's layout applied and its data injected;
// a short-circuited decision carries the middleware's payload unchanged and
// the indicator is already stopped. Errors stop the indicator too.
func (g *Guard) BeforeEach(ctx context.Context, to, from nav.Location, refs []view.Ref) (*Decision, error) {
	began := time.Now()
	id := ulid.Make().String()

	ctx, span := g.tracing.start(ctx, id, to, from)
	dec, err := g.beforeEach(ctx, id, to, from, refs)
	outcome := outcomeOf(dec, err)

	g.metrics.observe(outcome, time.Since(began))
	g.tracing.end(span, outcome, dec, err)

	log := g.logger.With("navigation_id", id, "to", to.FullPath, "from", from.FullPath)
	switch outcome {
	case OutcomeError:
		g.metrics.failed(err)
		log.Warn("navigation failed", "error", err)
	case OutcomeRedirect:
		log.Info("navigation short-circuited",
			"middleware", dec.Result.AbortedBy(),
			"payload", dec.Result.Payload())
	default:
		log.Debug("navigation allowed", "outcome", outcome, "views", len(refs))
	}
	return dec, err
}

func (g *Guard) beforeEach(ctx context.Context, id string, to, from nav.Location, refs []view.Ref) (*Decision, error) {
	defs, err := view.Resolve(ctx, refs)
	if err != nil {
		if ctx.Err() == nil {
			g.indicator.Finish()
		}
		return nil, withRoute(err, to)
	}

	dec := &Decision{ID: id, To: to, Result: middleware.Continue, Views: defs}
	if len(defs) == 0 {
		return dec, nil
	}

	inner := view.Innermost(defs)
	l := &loading{indicator: g.indicator}
	dec.loading = l
	// A navigation cancelled while it waits on middleware or data must not
	// start the indicator later, even if its handlers ignore ctx.
	stop := context.AfterFunc(ctx, l.abandon)
	defer stop()
	if inner.ShowsLoading() {
		g.scheduler.NextTick(l.start)
	}

	exec := middleware.NewExecutor(g.registry,
		middleware.WithLogger(g.logger),
		middleware.WithAbortHook(func(nav.Location, middleware.Result) {
			l.settle()
		}),
	)
	res, err := exec.Run(ctx, middleware.Collect(g.global, view.MiddlewareOf(defs)...), to, from)
	if err != nil {
		g.fail(ctx, l)
		return nil, err
	}
	dec.Result = res
	if res.Aborted() {
		g.metrics.abortedBy(res.AbortedBy())
		return dec, nil
	}

	if err := ctx.Err(); err != nil {
		l.abandon()
		return nil, errors.New("N071").
			WithRoute(to.FullPath).
			WithDetail("cancelled after the middleware chain").
			Wrap(err)
	}

	g.layout.SetLayout(inner.Layout)
	dec.Layout = inner.Layout

	inj, err := inner.Inject(ctx, view.Context{To: to, From: from, Store: g.store}, g.dataKey)
	if err != nil {
		g.fail(ctx, l)
		return nil, err
	}
	dec.Data = inj.Data
	dec.Fetched = inj.Fetched
	return dec, nil
}

// fail settles l after an error. A cancelled navigation is abandoned
// rather than finished so a newer navigation keeps its indicator.
func (g *Guard) fail(ctx context.Context, l *loading) {
	if ctx.Err() != nil {
		l.abandon()
		return
	}
	l.settle()
}

// AfterEach runs once a navigation has been committed. It stops the
// indicator after the UI rendered the new view.
func (g *Guard) AfterEach(to, from nav.Location) {
	g.scheduler.NextTick(g.indicator.Finish)
}

// withRoute returns err as a NavError stamped with the destination.
func withRoute(err error, to nav.Location) error {
	ne := errors.FromError(err, "N010")
	if ne.Route == "" {
		ne.Route = to.FullPath
	}
	return ne
}
