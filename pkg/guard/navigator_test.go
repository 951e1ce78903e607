package guard

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"
	"time"

	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/middleware"
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/route"
	"github.com/vango-dev/navguard/pkg/scroll"
	"github.com/vango-dev/navguard/pkg/store"
	"github.com/vango-dev/navguard/pkg/ui"
	"github.com/vango-dev/navguard/pkg/view"
)

type navFixture struct {
	nav     *Navigator
	store   *store.Store
	entered chan struct{}
}

// newNavFixture builds a small application:
//
//	/            home
//	/login       login
//	/admin       requires store["user"], otherwise redirects to /login
//	/loop        redirects to itself
//	/closed      aborts
//	/broken      redirects with an error payload
//	/slow        blocks until its context is cancelled
//	/long        does not scroll to top
func newNavFixture(t *testing.T, opts ...NavigatorOption) *navFixture {
	t.Helper()
	st := store.New(nil)
	entered := make(chan struct{}, 1)

	modules := []middleware.Module{
		{ID: "./check-auth.js", Handler: func(ctx context.Context, to, from nav.Location) (middleware.Result, error) {
			if st.String("user") == "" {
				return middleware.RedirectTo("/login?next=" + to.Path), nil
			}
			return middleware.Continue, nil
		}},
		{ID: "./loop.js", Handler: func(ctx context.Context, to, from nav.Location) (middleware.Result, error) {
			return middleware.Redirect(nav.Location{Path: "/loop"}), nil
		}},
		{ID: "./closed.js", Handler: func(ctx context.Context, to, from nav.Location) (middleware.Result, error) {
			return middleware.Abort(), nil
		}},
		{ID: "./broken.js", Handler: func(ctx context.Context, to, from nav.Location) (middleware.Result, error) {
			return middleware.Redirect(stderrors.New("session expired")), nil
		}},
		{ID: "./slow.js", Handler: func(ctx context.Context, to, from nav.Location) (middleware.Result, error) {
			entered <- struct{}{}
			<-ctx.Done()
			return middleware.Continue, ctx.Err()
		}},
	}

	page := func(name string, mw ...string) []view.Ref {
		return []view.Ref{view.Static(&view.Definition{Name: name, Middleware: middleware.Names(mw...)})}
	}
	table, err := route.NewTable(
		route.Descriptor{Path: "/", Name: "home", Views: page("home")},
		route.Descriptor{Path: "/login", Name: "login", Views: page("login")},
		route.Descriptor{Path: "/about", Name: "about", Views: page("about")},
		route.Descriptor{Path: "/admin", Name: "admin", Views: page("admin", "check-auth")},
		route.Descriptor{Path: "/loop", Name: "loop", Views: page("loop", "loop")},
		route.Descriptor{Path: "/closed", Name: "closed", Views: page("closed", "closed")},
		route.Descriptor{Path: "/broken", Name: "broken", Views: page("broken", "broken")},
		route.Descriptor{Path: "/slow", Name: "slow", Views: page("slow", "slow")},
		route.Descriptor{Path: "/long", Name: "long", Views: []view.Ref{
			view.Static(&view.Definition{Name: "long", DisableScrollToTop: true}),
		}},
	)
	if err != nil {
		t.Fatal(err)
	}

	g := New(Config{Registry: middleware.Load(modules), Store: st})
	return &navFixture{nav: NewNavigator(table, g, opts...), store: st, entered: entered}
}

func TestNavigatorPush(t *testing.T) {
	f := newNavFixture(t)
	ctx := context.Background()

	out, err := f.nav.Push(ctx, "/about?tab=team")
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if out.Status != StatusCommitted || !out.Committed() {
		t.Errorf("Status = %s, want committed", out.Status)
	}
	if out.To.Name != "about" {
		t.Errorf("To.Name = %q, want about", out.To.Name)
	}
	if !reflect.DeepEqual(out.Scroll, scroll.Origin()) {
		t.Errorf("Scroll = %+v, want origin", out.Scroll)
	}

	loc, ok := f.store.Route()
	if !ok || loc.FullPath != "/about?tab=team" {
		t.Errorf("store route = %+v, %v", loc, ok)
	}
	if f.nav.Page() != out.Decision {
		t.Error("Page() is not the committed decision")
	}
}

func TestNavigatorRedirect(t *testing.T) {
	f := newNavFixture(t)

	out, err := f.nav.Push(context.Background(), "/admin")
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if out.Status != StatusRedirected {
		t.Errorf("Status = %s, want redirected", out.Status)
	}
	if out.To.Name != "login" || out.To.Query.Get("next") != "/admin" {
		t.Errorf("To = %+v, want login with next", out.To)
	}
	if !reflect.DeepEqual(out.Redirects, []string{"/login?next=/admin"}) {
		t.Errorf("Redirects = %v", out.Redirects)
	}

	f.store.Set("user", "ada")
	out, err = f.nav.Push(context.Background(), "/admin")
	if err != nil || out.Status != StatusCommitted {
		t.Errorf("signed in: Status = %s, err = %v", out.Status, err)
	}
}

func TestNavigatorAbort(t *testing.T) {
	f := newNavFixture(t)
	ctx := context.Background()

	if _, err := f.nav.Push(ctx, "/about"); err != nil {
		t.Fatal(err)
	}
	out, err := f.nav.Push(ctx, "/closed")
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if out.Status != StatusAborted || out.Committed() {
		t.Errorf("Status = %s, want aborted", out.Status)
	}
	if f.nav.Current().Path != "/about" {
		t.Errorf("Current() = %q, want /about", f.nav.Current().Path)
	}
}

func TestNavigatorRedirectLimit(t *testing.T) {
	f := newNavFixture(t, WithMaxRedirects(3))

	out, err := f.nav.Push(context.Background(), "/loop")
	if errors.CodeOf(err) != "N043" {
		t.Fatalf("error code = %q, want N043 (err = %v)", errors.CodeOf(err), err)
	}
	if out.Status != StatusFailed || len(out.Redirects) != 3 {
		t.Errorf("Status = %s, Redirects = %v", out.Status, out.Redirects)
	}
	if !f.nav.Current().IsZero() {
		t.Errorf("Current() = %+v, want nothing committed", f.nav.Current())
	}
}

func TestNavigatorErrorPayload(t *testing.T) {
	f := newNavFixture(t)

	out, err := f.nav.Push(context.Background(), "/broken")
	if err == nil || err.Error() != "session expired" {
		t.Errorf("error = %v, want session expired", err)
	}
	if out.Status != StatusFailed {
		t.Errorf("Status = %s, want failed", out.Status)
	}
}

func TestNavigatorInvalidTarget(t *testing.T) {
	f := newNavFixture(t)

	_, err := f.nav.Push(context.Background(), "https://example.com/")
	if errors.CodeOf(err) != "N041" {
		t.Errorf("error code = %q, want N041", errors.CodeOf(err))
	}
}

func TestNavigatorUnmatchedRoute(t *testing.T) {
	f := newNavFixture(t)

	out, err := f.nav.Push(context.Background(), "/nowhere")
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusCommitted || out.To.Name != "" || len(out.Decision.Views) != 0 {
		t.Errorf("out = %+v", out)
	}
}

func TestNavigatorHistory(t *testing.T) {
	f := newNavFixture(t)
	ctx := context.Background()

	for _, p := range []string{"/", "/about", "/login"} {
		if _, err := f.nav.Push(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := f.nav.Back(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := f.nav.Replace(ctx, "/long"); err != nil {
		t.Fatal(err)
	}

	locs, idx := f.nav.History()
	var paths []string
	for _, l := range locs {
		paths = append(paths, l.Path)
	}
	if !reflect.DeepEqual(paths, []string{"/", "/long", "/login"}) || idx != 1 {
		t.Errorf("History() = %v @ %d", paths, idx)
	}

	out, err := f.nav.Forward(ctx)
	if err != nil || out.To.Path != "/login" {
		t.Errorf("Forward() = %+v, %v", out, err)
	}

	out, err = f.nav.Forward(ctx)
	if err != nil || out.Status != StatusAborted {
		t.Errorf("Forward() past the end = %s, %v", out.Status, err)
	}
}

func TestNavigatorScroll(t *testing.T) {
	f := newNavFixture(t)
	ctx := context.Background()

	if _, err := f.nav.Push(ctx, "/about"); err != nil {
		t.Fatal(err)
	}
	f.nav.RecordScroll(scroll.Position{Y: 300})

	out, err := f.nav.Push(ctx, "/login#form")
	if err != nil {
		t.Fatal(err)
	}
	if out.Scroll.Selector != "#form" {
		t.Errorf("hash scroll = %+v, want #form", out.Scroll)
	}

	out, err = f.nav.Back(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out.Scroll.Position == nil || out.Scroll.Position.Y != 300 {
		t.Errorf("restored scroll = %+v, want y=300", out.Scroll)
	}

	out, err = f.nav.Push(ctx, "/long")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Scroll.None() {
		t.Errorf("no-scroll view: Scroll = %+v, want none", out.Scroll)
	}
}

func TestNavigatorAbandon(t *testing.T) {
	f := newNavFixture(t)
	ctx := context.Background()

	type result struct {
		out *Outcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := f.nav.Push(ctx, "/slow")
		done <- result{out, err}
	}()

	select {
	case <-f.entered:
	case <-time.After(time.Second):
		t.Fatal("slow middleware never ran")
	}

	out, err := f.nav.Push(ctx, "/about")
	if err != nil || out.Status != StatusCommitted {
		t.Fatalf("second Push() = %v, %v", out.Status, err)
	}

	select {
	case r := <-done:
		if r.err != nil {
			t.Errorf("abandoned navigation error = %v, want nil", r.err)
		}
		if r.out.Status != StatusAbandoned {
			t.Errorf("Status = %s, want abandoned", r.out.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("superseded navigation did not return")
	}

	if f.nav.Current().Path != "/about" {
		t.Errorf("Current() = %q, want /about", f.nav.Current().Path)
	}
	if locs, _ := f.nav.History(); len(locs) != 1 {
		t.Errorf("History() has %d entries, want 1", len(locs))
	}
}

func TestNavigatorAbandonSettlesIndicator(t *testing.T) {
	tests := []struct {
		name string
		// flushFirst renders a frame while the first navigation is still
		// blocked, so its indicator start has already run.
		flushFirst bool
	}{
		{name: "start pending", flushFirst: false},
		{name: "start flushed", flushFirst: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ui.NewBar()
			layout := ui.NewLayout("default")
			ticks := &ui.TickQueue{}
			entered := make(chan struct{})
			release := make(chan struct{})

			modules := []middleware.Module{
				{ID: "./stubborn.js", Handler: func(ctx context.Context, to, from nav.Location) (middleware.Result, error) {
					close(entered)
					<-release
					return middleware.Continue, nil
				}},
				{ID: "./closed.js", Handler: func(ctx context.Context, to, from nav.Location) (middleware.Result, error) {
					return middleware.Abort(), nil
				}},
			}
			table, err := route.NewTable(
				route.Descriptor{Path: "/stubborn", Name: "stubborn", Views: []view.Ref{view.Static(&view.Definition{
					Name:       "stubborn",
					Layout:     "admin",
					Middleware: middleware.Names("stubborn"),
				})}},
				route.Descriptor{Path: "/closed", Name: "closed", Views: []view.Ref{view.Static(&view.Definition{
					Name:       "closed",
					Middleware: middleware.Names("closed"),
				})}},
			)
			if err != nil {
				t.Fatal(err)
			}
			g := New(Config{Registry: middleware.Load(modules), Indicator: bar, Layout: layout, Scheduler: ticks})
			nv := NewNavigator(table, g)
			ctx := context.Background()

			type result struct {
				out *Outcome
				err error
			}
			done := make(chan result, 1)
			go func() {
				out, err := nv.Push(ctx, "/stubborn")
				done <- result{out, err}
			}()

			select {
			case <-entered:
			case <-time.After(time.Second):
				t.Fatal("stubborn middleware never ran")
			}
			if tt.flushFirst {
				ticks.Flush()
				if !bar.Active() {
					t.Fatal("indicator did not start for the pending navigation")
				}
			}

			out, err := nv.Push(ctx, "/closed")
			if err != nil || out.Status != StatusAborted {
				t.Fatalf("second Push() = %v, %v", out.Status, err)
			}

			close(release)
			select {
			case r := <-done:
				if r.err != nil || r.out.Status != StatusAbandoned {
					t.Errorf("first Push() = %v, %v, want abandoned", r.out.Status, r.err)
				}
			case <-time.After(time.Second):
				t.Fatal("superseded navigation did not return")
			}

			ticks.Flush()
			if bar.Active() {
				t.Error("indicator left running after every navigation settled")
			}
			if got := layout.Name(); got != "default" {
				t.Errorf("layout = %q, want default", got)
			}
			if !nv.Current().IsZero() {
				t.Errorf("Current() = %+v, want nothing committed", nv.Current())
			}
		})
	}
}
