package ui

import (
	"go.uber.org/atomic"
)

// Layout holds the name of the layout the application shell renders.
type Layout struct {
	name     *atomic.String
	fallback string
}

// NewLayout returns a holder whose empty name resolves to fallback.
func NewLayout(fallback string) *Layout {
	return &Layout{name: atomic.NewString(""), fallback: fallback}
}

// SetLayout switches the active layout. An empty name selects the fallback.
func (l *Layout) SetLayout(name string) {
	l.name.Store(name)
}

// Name returns the active layout.
func (l *Layout) Name() string {
	if name := l.name.Load(); name != "" {
		return name
	}
	return l.fallback
}
