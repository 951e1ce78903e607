package route

import (
	"context"
	"testing"

	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/view"
)

func static(name string) view.Ref {
	return view.Static(&view.Definition{Name: name})
}

func lazy(name string) view.Ref {
	return view.Lazy(func(ctx context.Context) (*view.Definition, error) {
		return &view.Definition{Name: name}, nil
	})
}

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(
		Descriptor{Path: "/", Name: "home", Views: []view.Ref{static("home")}},
		Descriptor{Path: "/login", Name: "login", Views: []view.Ref{lazy("login")}},
		Descriptor{
			Path:  "/admin",
			Name:  "admin",
			Views: []view.Ref{static("admin")},
			Children: []Descriptor{
				{Path: "thumbnails", Name: "adminThumbnails", Views: []view.Ref{lazy("thumbs")}},
				{Path: "thumbnails/create", Name: "adminThumbnailsCreate", Views: []view.Ref{lazy("create")}},
				{Path: "thumbnails/:slug", Name: "adminThumbnailsEdit", Views: []view.Ref{lazy("edit")}},
			},
		},
		Descriptor{Path: "/images/:id:int", Name: "image", Views: []view.Ref{static("image")}},
		Descriptor{Path: "/docs/*rest", Name: "docs", Views: []view.Ref{static("docs")}},
	)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return table
}

func TestMatch(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name      string
		path      string
		wantName  string
		wantViews int
		params    map[string]string
	}{
		{"root", "/", "home", 1, nil},
		{"static", "/login", "login", 1, nil},
		{"parent only", "/admin", "admin", 1, nil},
		{"nested static", "/admin/thumbnails", "adminThumbnails", 2, nil},
		{"static beats param", "/admin/thumbnails/create", "adminThumbnailsCreate", 2, nil},
		{"nested param", "/admin/thumbnails/sunset", "adminThumbnailsEdit", 2, map[string]string{"slug": "sunset"}},
		{"decoded param", "/admin/thumbnails/a%20b", "adminThumbnailsEdit", 2, map[string]string{"slug": "a b"}},
		{"int param", "/images/42", "image", 1, map[string]string{"id": "42"}},
		{"catch-all", "/docs/guide/intro", "docs", 1, map[string]string{"rest": "guide/intro"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := table.Match(nav.MustParse(tt.path))
			if !ok {
				t.Fatalf("Match(%q) found nothing", tt.path)
			}
			if m.Location.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", m.Location.Name, tt.wantName)
			}
			if got := len(m.Views()); got != tt.wantViews {
				t.Errorf("len(Views()) = %d, want %d", got, tt.wantViews)
			}
			for k, v := range tt.params {
				if got := m.Location.Param(k); got != v {
					t.Errorf("Param(%q) = %q, want %q", k, got, v)
				}
			}
			if m.Leaf().Name != tt.wantName {
				t.Errorf("Leaf().Name = %q, want %q", m.Leaf().Name, tt.wantName)
			}
		})
	}
}

func TestMatchMiss(t *testing.T) {
	table := testTable(t)

	for _, path := range []string{"/nope", "/images/abc", "/admin/thumbnails/a/b", "/admin/thumbnails/a%2Fb"} {
		if _, ok := table.Match(nav.MustParse(path)); ok {
			t.Errorf("Match(%q) matched, want miss", path)
		}
	}
}

func TestMatchViewsOrder(t *testing.T) {
	table := testTable(t)

	m, ok := table.Match(nav.MustParse("/admin/thumbnails"))
	if !ok {
		t.Fatal("expected match")
	}
	defs, err := view.Resolve(context.Background(), m.Views())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if defs[0].Name != "admin" || defs[1].Name != "thumbs" {
		t.Errorf("views = [%s %s], want [admin thumbs]", defs[0].Name, defs[1].Name)
	}
}

func TestMatchInnermostIsLastLeafView(t *testing.T) {
	table, err := NewTable(Descriptor{
		Path:  "/shell",
		Views: []view.Ref{view.Static(&view.Definition{Name: "shell"})},
		Children: []Descriptor{{
			Path: "split",
			Views: []view.Ref{
				view.Static(&view.Definition{Name: "main", Layout: "wide"}),
				view.Static(&view.Definition{Name: "sidebar", DisableLoading: true}),
			},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	m, ok := table.Match(nav.MustParse("/shell/split"))
	if !ok {
		t.Fatal("expected match")
	}
	defs, err := view.Resolve(context.Background(), m.Views())
	if err != nil {
		t.Fatal(err)
	}
	inner := view.Innermost(defs)
	if inner.Name != "sidebar" || inner.ShowsLoading() || inner.Layout != "" {
		t.Errorf("innermost = %+v, want the sidebar view", inner)
	}
}

func TestMatchKeepsQueryAndHash(t *testing.T) {
	table := testTable(t)

	m, ok := table.Match(nav.MustParse("/login?next=%2Fadmin#form"))
	if !ok {
		t.Fatal("expected match")
	}
	if m.Location.Hash != "#form" {
		t.Errorf("Hash = %q, want #form", m.Location.Hash)
	}
	if got := m.Location.Query.Get("next"); got != "/admin" {
		t.Errorf("Query[next] = %q, want /admin", got)
	}
}

func TestLookup(t *testing.T) {
	table := testTable(t)

	loc, err := table.Lookup("adminThumbnailsEdit", map[string]string{"slug": "a b"})
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if loc.Path != "/admin/thumbnails/a%20b" {
		t.Errorf("Path = %q", loc.Path)
	}
	if loc.Name != "adminThumbnailsEdit" || loc.Param("slug") != "a b" {
		t.Errorf("Lookup() = %+v, want stamped location", loc)
	}

	_, err = table.Lookup("missing", nil)
	if errors.CodeOf(err) != "N040" {
		t.Errorf("unknown name: code = %q, want N040", errors.CodeOf(err))
	}

	_, err = table.Lookup("adminThumbnailsEdit", nil)
	if errors.CodeOf(err) != "N040" {
		t.Errorf("missing param: code = %q, want N040", errors.CodeOf(err))
	}
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		descs []Descriptor
	}{
		{
			name: "duplicate name",
			descs: []Descriptor{
				{Path: "/a", Name: "x"},
				{Path: "/b", Name: "x"},
			},
		},
		{
			name: "duplicate pattern",
			descs: []Descriptor{
				{Path: "/a"},
				{Path: "/a/"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.descs...)
			if errors.CodeOf(err) != "N042" {
				t.Errorf("NewTable() code = %q, want N042 (err = %v)", errors.CodeOf(err), err)
			}
		})
	}
}

func TestNewTableValidatesStaticViews(t *testing.T) {
	_, err := NewTable(Descriptor{Path: "/", Views: []view.Ref{view.Static(nil)}})
	if errors.CodeOf(err) != "N030" {
		t.Errorf("NewTable() code = %q, want N030", errors.CodeOf(err))
	}
}

func TestRoutes(t *testing.T) {
	table := testTable(t)

	routes := table.Routes()
	if len(routes) != 8 {
		t.Fatalf("len(Routes()) = %d, want 8", len(routes))
	}
	for i := 1; i < len(routes); i++ {
		if routes[i-1].Pattern > routes[i].Pattern {
			t.Errorf("Routes() not sorted: %q before %q", routes[i-1].Pattern, routes[i].Pattern)
		}
	}

	edit := routes[0]
	for _, r := range routes {
		if r.Name == "adminThumbnailsEdit" {
			edit = r
		}
	}
	if edit.Pattern != "/admin/thumbnails/:slug" {
		t.Errorf("Pattern = %q", edit.Pattern)
	}
	if chain := edit.Chain(); len(chain) != 2 || chain[0].Name != "admin" {
		t.Errorf("Chain() = %v", chain)
	}
}
