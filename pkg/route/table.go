// Package route holds the application's route descriptors and matches
// navigation targets against them.
//
// Descriptors nest: a child's views render inside its parent's, so matching
// a child yields the views of every ancestor, outermost first.
//
//	table, err := route.NewTable(
//	    route.Descriptor{Path: "/", Name: "home", Views: []view.Ref{view.Static(home)}},
//	    route.Descriptor{Path: "/admin", Name: "admin", Views: []view.Ref{view.Lazy(loadAdmin)},
//	        Children: []route.Descriptor{
//	            {Path: "images", Name: "adminImages", Views: []view.Ref{view.Lazy(loadImages)}},
//	        }},
//	)
//	m, ok := table.Match(nav.MustParse("/admin/images"))
//	// m.Views() == [admin, images]
//
// Path patterns support ":name" parameters, ":name:int" typed parameters
// and a trailing "*name" catch-all.
package route

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/view"
)

// Descriptor declares a route. Descriptors are defined at start-up and
// never mutated.
type Descriptor struct {
	// Path is the URL pattern. Child paths without a leading "/" are
	// relative to the parent.
	Path string

	// Name is the symbolic route name (optional, unique).
	Name string

	// Views are the views rendered for this route; the first is the
	// default view. Matches flatten the views of every record in order, so
	// the last view listed on the leaf route is the innermost one: its
	// Layout, DisableLoading, DisableScrollToTop and AsyncData drive the
	// navigation, even when it is a secondary view rather than the default.
	Views []view.Ref

	// Children are nested routes.
	Children []Descriptor
}

// Record is a registered route with its full pattern.
type Record struct {
	Pattern string
	Name    string
	Views   []view.Ref
	Parent  *Record
}

// Chain returns the records from the root ancestor down to r.
func (r *Record) Chain() []*Record {
	var chain []*Record
	for cur := r; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Table is an immutable set of routes.
type Table struct {
	root    *node
	records []*Record
	byName  map[string]*Record
}

// NewTable registers descriptors (and their children). Static views are
// validated here; route names and patterns must be unique.
func NewTable(descriptors ...Descriptor) (*Table, error) {
	t := &Table{
		root:   &node{},
		byName: make(map[string]*Record),
	}
	for _, d := range descriptors {
		if err := t.add(d, nil); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) add(d Descriptor, parent *Record) error {
	pattern := joinPattern(parent, d.Path)

	for _, ref := range d.Views {
		if ref.IsLazy() {
			continue
		}
		if err := ref.Definition().Validate(); err != nil {
			return err
		}
	}

	n := t.root.insert(pattern)
	if n.record != nil {
		return errors.New("N042").WithDetailf("pattern %q is registered twice", pattern)
	}

	rec := &Record{Pattern: pattern, Name: d.Name, Views: d.Views, Parent: parent}
	if d.Name != "" {
		if _, dup := t.byName[d.Name]; dup {
			return errors.New("N042").WithDetailf("route name %q is registered twice", d.Name)
		}
		t.byName[d.Name] = rec
	}
	n.record = rec
	t.records = append(t.records, rec)

	for _, child := range d.Children {
		if err := t.add(child, rec); err != nil {
			return err
		}
	}
	return nil
}

func joinPattern(parent *Record, path string) string {
	if parent == nil || strings.HasPrefix(path, "/") {
		return "/" + strings.Trim(path, "/")
	}
	if path == "" {
		return parent.Pattern
	}
	return strings.TrimSuffix(parent.Pattern, "/") + "/" + strings.Trim(path, "/")
}

// Match is the result of matching a location against the table.
type Match struct {
	// Location is the matched location stamped with name and params.
	Location nav.Location

	// Records are the matched routes from the root ancestor to the leaf.
	Records []*Record
}

// Views returns the view refs of every matched record, outermost first.
// Within a record the listed order is kept, so the last ref is the last
// view of the leaf record.
func (m *Match) Views() []view.Ref {
	var refs []view.Ref
	for _, rec := range m.Records {
		refs = append(refs, rec.Views...)
	}
	return refs
}

// Leaf returns the most deeply nested matched record.
func (m *Match) Leaf() *Record {
	return m.Records[len(m.Records)-1]
}

// Match finds the route for loc.
func (t *Table) Match(loc nav.Location) (*Match, bool) {
	params := make(map[string]string)
	n := t.root.match(nav.SplitPath(loc.Path), params)
	if n == nil {
		return nil, false
	}
	return &Match{
		Location: loc.Matched(n.record.Name, params),
		Records:  n.record.Chain(),
	}, true
}

// Lookup builds the location of a named route.
func (t *Table) Lookup(name string, params map[string]string) (nav.Location, error) {
	rec, ok := t.byName[name]
	if !ok {
		return nav.Location{}, errors.New("N040").WithDetailf("route %q", name)
	}

	segments := nav.SplitPath(rec.Pattern)
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") && !strings.HasPrefix(seg, "*") {
			continue
		}
		catchAll := strings.HasPrefix(seg, "*")
		key := seg[1:]
		if !catchAll {
			key, _ = parseParamSegment(seg)
		}
		value, ok := params[key]
		if !ok || value == "" {
			return nav.Location{}, errors.New("N040").
				WithDetailf("route %q needs parameter %q", name, key)
		}
		if !catchAll {
			value = url.PathEscape(value)
		}
		segments[i] = value
	}

	loc, err := nav.Parse("/" + strings.Join(segments, "/"))
	if err != nil {
		return nav.Location{}, err
	}
	if m, ok := t.Match(loc); ok {
		return m.Location, nil
	}
	return loc, nil
}

// Routes returns the registered records sorted by pattern.
func (t *Table) Routes() []*Record {
	out := make([]*Record, len(t.records))
	copy(out, t.records)
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}

// String returns a one-line summary of the record.
func (r *Record) String() string {
	lazy := 0
	for _, ref := range r.Views {
		if ref.IsLazy() {
			lazy++
		}
	}
	return fmt.Sprintf("%s (%s) views=%d lazy=%d", r.Pattern, r.Name, len(r.Views), lazy)
}
