// Package app wires the demo thumbnails application: its route table, its
// views and its middleware, and builds per-client navigation sessions.
package app

import (
	"context"
	_ "embed"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/vango-dev/navguard/internal/config"
	"github.com/vango-dev/navguard/internal/manifest"
	"github.com/vango-dev/navguard/pkg/guard"
	"github.com/vango-dev/navguard/pkg/middleware"
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/route"
	"github.com/vango-dev/navguard/pkg/store"
	"github.com/vango-dev/navguard/pkg/ui"
	"github.com/vango-dev/navguard/pkg/view"
	"golang.org/x/text/language"
)

//go:embed routes.yaml
var builtinRoutes []byte

// MaintenanceName is the name of the maintenance middleware.
const MaintenanceName = "maintenance"

// MaintenanceKey is the store key that switches the admin area off.
const MaintenanceKey = "maintenance"

// Maintenance returns a middleware that redirects to /maintenance while
// st[MaintenanceKey] is true.
func Maintenance(st *store.Store) middleware.Handler {
	return func(ctx context.Context, to, from nav.Location) (middleware.Result, error) {
		v, _ := st.Get(MaintenanceKey)
		if on, _ := v.(bool); on {
			return middleware.RedirectTo("/maintenance"), nil
		}
		return middleware.Continue, nil
	}
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger handed to every session.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithMetrics records navigation metrics for every session.
func WithMetrics(m *guard.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithTracing traces navigations of every session.
func WithTracing(t *guard.Tracing) Option {
	return func(a *App) {
		a.tracing = t
	}
}

// App is the configured demo application.
type App struct {
	cfg       *config.Config
	table     *route.Table
	supported []language.Tag
	fallback  language.Tag
	logger    *slog.Logger
	metrics   *guard.Metrics
	tracing   *guard.Tracing
}

// New loads the route table (the manifest at cfg.RoutesPath(), or the
// built-in one) and checks every statically known middleware name.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	var err error
	if a.supported, err = cfg.SupportedLocales(); err != nil {
		return nil, err
	}
	if a.fallback, err = cfg.DefaultLocale(); err != nil {
		return nil, err
	}

	catalog := Catalog()
	if path := cfg.RoutesPath(); path != "" {
		a.table, err = manifest.LoadFile(path, catalog)
	} else {
		a.table, err = manifest.Load(builtinRoutes, catalog)
	}
	if err != nil {
		return nil, err
	}

	if err := a.check(catalog); err != nil {
		return nil, err
	}
	return a, nil
}

// check validates the middleware of every view in the catalog. Deferred
// views are loaded for it.
func (a *App) check(catalog manifest.Catalog) error {
	g := guard.New(guard.Config{
		Registry: a.Registry(store.New(nil)),
		Global:   a.Global(),
		Logger:   a.logger,
	})

	refs := make([]view.Ref, 0, len(catalog))
	for _, ref := range catalog {
		refs = append(refs, ref)
	}
	defs, err := view.Resolve(context.Background(), refs)
	if err != nil {
		return err
	}
	return g.Validate(defs...)
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Table returns the route table.
func (a *App) Table() *route.Table {
	return a.table
}

// Global returns the global middleware from the configuration.
func (a *App) Global() []middleware.Ref {
	return middleware.Names(a.cfg.Middleware.Global...)
}

// Registry builds the middleware registry bound to st.
func (a *App) Registry(st *store.Store) *middleware.Registry {
	return middleware.Load([]middleware.Module{
		{ID: "./locale.go", Handler: middleware.Locale(st, a.supported, middleware.WithFallbackLocale(a.fallback))},
		{ID: "./maintenance.go", Handler: Maintenance(st)},
	})
}

// Session is the navigation state of one client.
type Session struct {
	ID        string
	Store     *store.Store
	Bar       *ui.Bar
	Layout    *ui.Layout
	Ticks     *ui.TickQueue
	Guard     *guard.Guard
	Navigator *guard.Navigator
}

// NewSession creates a session with its own store, UI state and history.
func (a *App) NewSession() *Session {
	s := &Session{
		ID:     ulid.Make().String(),
		Store:  store.New(nil),
		Bar:    ui.NewBar(),
		Layout: ui.NewLayout("default"),
		Ticks:  &ui.TickQueue{},
	}
	logger := a.logger.With("session", s.ID)

	s.Guard = guard.New(guard.Config{
		Registry:  a.Registry(s.Store),
		Global:    a.Global(),
		Indicator: s.Bar,
		Layout:    s.Layout,
		Scheduler: s.Ticks,
		Store:     s.Store,
		DataKey:   a.cfg.Data.Key,
		Logger:    logger,
		Metrics:   a.metrics,
		Tracing:   a.tracing,
	})
	s.Navigator = guard.NewNavigator(a.table, s.Guard,
		guard.WithMaxRedirects(a.cfg.Navigation.MaxRedirects),
		guard.WithNavigatorLogger(logger),
	)
	return s
}

// Tick flushes callbacks the guard scheduled for after the next render.
func (s *Session) Tick() {
	s.Ticks.Flush()
}
