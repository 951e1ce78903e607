package view

import (
	"context"
	"sync"
)

// Loader produces a view definition on demand, e.g. by loading a module
// that is not part of the initial bundle.
type Loader func(ctx context.Context) (*Definition, error)

// Ref is either a concrete Definition or a deferred Loader.
type Ref struct {
	def  *Definition
	load Loader
}

// Static refers to a concrete definition.
func Static(def *Definition) Ref {
	return Ref{def: def}
}

// Lazy refers to a definition produced by load. The loader runs on every
// resolution; wrap it with Memoize to load once.
func Lazy(load Loader) Ref {
	return Ref{load: load}
}

// IsLazy reports whether r is deferred.
func (r Ref) IsLazy() bool {
	return r.load != nil
}

// Definition returns the concrete definition, or nil for deferred refs.
func (r Ref) Definition() *Definition {
	return r.def
}

// Memoize wraps load so that the first successful result is reused. Failed
// loads are retried on the next call.
func Memoize(load Loader) Loader {
	var (
		mu  sync.Mutex
		def *Definition
	)
	return func(ctx context.Context) (*Definition, error) {
		mu.Lock()
		defer mu.Unlock()
		if def != nil {
			return def, nil
		}
		d, err := load(ctx)
		if err != nil {
			return nil, err
		}
		def = d
		return def, nil
	}
}
