package middleware

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/nav"
)

// Ref is one entry of a middleware sequence: either the name of a
// registered middleware or an inline handler.
type Ref struct {
	Name    string
	Handler Handler
}

// Named refers to a registered middleware.
func Named(name string) Ref {
	return Ref{Name: name}
}

// Names refers to several registered middleware, in order.
func Names(names ...string) []Ref {
	refs := make([]Ref, len(names))
	for i, name := range names {
		refs[i] = Named(name)
	}
	return refs
}

// Func wraps an inline handler.
func Func(h Handler) Ref {
	return Ref{Handler: h}
}

// IsInline reports whether r carries its own handler.
func (r Ref) IsInline() bool {
	return r.Handler != nil
}

// String returns the middleware name, or "func" for inline handlers.
func (r Ref) String() string {
	if r.IsInline() {
		return "func"
	}
	return r.Name
}

// Collect builds the effective middleware sequence of a navigation: the
// global defaults followed by each matched view's middleware, outer view
// first, each view's list in declaration order.
func Collect(global []Ref, perView ...[]Ref) []Ref {
	n := len(global)
	for _, refs := range perView {
		n += len(refs)
	}
	seq := make([]Ref, 0, n)
	seq = append(seq, global...)
	for _, refs := range perView {
		seq = append(seq, refs...)
	}
	return seq
}

// Executor runs middleware sequences against a registry.
type Executor struct {
	registry *Registry
	onAbort  func(to nav.Location, r Result)
	logger   *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithAbortHook sets a function called when a middleware short-circuits the
// chain, before Run returns. The guard uses it to stop the loading
// indicator.
func WithAbortHook(fn func(to nav.Location, r Result)) ExecutorOption {
	return func(e *Executor) {
		e.onAbort = fn
	}
}

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an executor for registry.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{registry: registry}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

type step struct {
	name    string
	handler Handler
}

// Validate resolves every entry of seq against the registry without running
// anything. An unknown name fails with N001, a registered module without a
// handler with N002.
func (e *Executor) Validate(seq []Ref) error {
	_, err := e.prepare(seq, "")
	return err
}

func (e *Executor) prepare(seq []Ref, route string) ([]step, error) {
	steps := make([]step, 0, len(seq))
	for i, ref := range seq {
		if ref.IsInline() {
			steps = append(steps, step{name: fmt.Sprintf("func#%d", i), handler: ref.Handler})
			continue
		}
		h, ok := e.registry.Lookup(ref.Name)
		if !ok {
			return nil, errors.New("N001").
				WithRoute(route).
				WithDetailf("Undefined middleware [%s]", ref.Name)
		}
		if h == nil {
			return nil, errors.New("N002").
				WithRoute(route).
				WithDetailf("Middleware [%s] is registered without a handler", ref.Name)
		}
		steps = append(steps, step{name: ref.Name, handler: h})
	}
	return steps, nil
}

// failed wraps a handler error as N070. Coded errors returned by a handler
// are passed through unchanged.
func failed(name string, to nav.Location, err error) error {
	var ne *errors.NavError
	if stderrors.As(err, &ne) {
		return err
	}
	return errors.New("N070").
		WithRoute(to.FullPath).
		WithDetailf("middleware %s returned an error", name).
		Wrap(err)
}

// Run executes seq for the navigation from -> to.
//
// All names are resolved before the first handler runs, so a configuration
// error never leaves a chain half executed. Handlers then run one at a time
// in order. The first Redirect result ends the chain: the abort hook fires
// and the result is returned. When every handler continues, Run returns
// Continue. A handler error (N070) or a cancelled context (N071) also ends
// the chain.
func (e *Executor) Run(ctx context.Context, seq []Ref, to, from nav.Location) (Result, error) {
	steps, err := e.prepare(seq, to.FullPath)
	if err != nil {
		return Continue, err
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return Continue, errors.New("N071").
				WithRoute(to.FullPath).
				WithDetailf("stopped before middleware %s", s.name).
				Wrap(err)
		}

		res, err := s.handler(ctx, to, from)
		if err != nil {
			return Continue, failed(s.name, to, err)
		}
		if res.Aborted() {
			res = res.withSource(s.name)
			e.logger.Debug("middleware short-circuited navigation",
				"middleware", s.name,
				"to", to.FullPath,
				"payload", res.Payload())
			if e.onAbort != nil {
				e.onAbort(to, res)
			}
			return res, nil
		}
	}
	return Continue, nil
}
