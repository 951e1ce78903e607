// Package scroll decides where the viewport goes after a navigation.
package scroll

import (
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/view"
)

// Position is a scroll offset in CSS pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Target is the result of Decide. The zero Target means "do not scroll".
type Target struct {
	// Position is an absolute offset to scroll to.
	Position *Position `json:"position,omitempty"`

	// Selector is a CSS selector of the element to scroll into view.
	Selector string `json:"selector,omitempty"`
}

// None reports whether t leaves the scroll position alone.
func (t Target) None() bool {
	return t.Position == nil && t.Selector == ""
}

// Origin returns the top-left target.
func Origin() Target {
	return Target{Position: &Position{X: 0, Y: 0}}
}

// Decide returns the scroll target for a navigation from -> to.
//
// In order of precedence: a saved position (history traversal) is returned
// unchanged; a fragment on the destination targets the matching element;
// an innermost matched view that disables scroll-to-top keeps the current
// position; otherwise the viewport goes to the origin.
func Decide(to, from nav.Location, saved *Position, views []*view.Definition) Target {
	if saved != nil {
		p := *saved
		return Target{Position: &p}
	}
	if to.Hash != "" {
		return Target{Selector: to.Hash}
	}
	if inner := view.Innermost(views); inner != nil && !inner.ScrollsToTop() {
		return Target{}
	}
	return Origin()
}
