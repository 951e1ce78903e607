// Package view describes the pages a route can render and the steps that
// prepare them for a navigation: resolving deferred views and fetching
// their data.
package view

import (
	"context"
	"strings"

	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/middleware"
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/store"
)

// Context is what a view's AsyncData hook sees of the navigation.
type Context struct {
	To    nav.Location
	From  nav.Location
	Store *store.Store
}

// DataFunc produces a view's static data.
type DataFunc func() map[string]any

// AsyncDataFunc fetches per-navigation data. It may return a string-keyed
// map, which is merged key by key, or any other value, which is stored
// under a single key (see Inject).
type AsyncDataFunc func(ctx context.Context, nc Context) (any, error)

// Definition is a page's behavior bundle. Every field is optional; the zero
// value means "use the default".
type Definition struct {
	// Name identifies the view in logs and errors.
	Name string

	// Middleware runs before a navigation to this view is committed.
	Middleware []middleware.Ref

	// Data returns the view's static data baseline.
	Data DataFunc

	// AsyncData fetches data before the view is committed.
	AsyncData AsyncDataFunc

	// Layout is the application layout the view renders in.
	Layout string

	// DisableLoading keeps the loading indicator hidden while navigating
	// to this view.
	DisableLoading bool

	// DisableScrollToTop keeps the scroll position when this view is
	// entered without a saved position or fragment.
	DisableScrollToTop bool
}

// Validate checks the definition once, when it is registered or loaded.
func (d *Definition) Validate() error {
	if d == nil {
		return errors.New("N030").WithDetail("view definition is nil")
	}
	for i, ref := range d.Middleware {
		if !ref.IsInline() && strings.TrimSpace(ref.Name) == "" {
			return errors.New("N030").
				WithDetailf("view %q: middleware entry %d has no name", d.Name, i)
		}
	}
	return nil
}

// ShowsLoading reports whether navigating to d starts the loading indicator.
func (d *Definition) ShowsLoading() bool {
	return !d.DisableLoading
}

// ScrollsToTop reports whether entering d scrolls to the origin.
func (d *Definition) ScrollsToTop() bool {
	return !d.DisableScrollToTop
}

// MiddlewareOf returns the middleware lists of defs in order, ready for
// middleware.Collect.
func MiddlewareOf(defs []*Definition) [][]middleware.Ref {
	out := make([][]middleware.Ref, 0, len(defs))
	for _, d := range defs {
		if d == nil || len(d.Middleware) == 0 {
			continue
		}
		out = append(out, d.Middleware)
	}
	return out
}

// Innermost returns the last (most deeply nested) definition, or nil. For
// a route with several views this is the last one it lists.
func Innermost(defs []*Definition) *Definition {
	if len(defs) == 0 {
		return nil
	}
	return defs[len(defs)-1]
}
