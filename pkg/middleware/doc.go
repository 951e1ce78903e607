// Package middleware implements the named interceptors that run before a
// navigation is committed.
//
// # Registry
//
// Middleware is registered once, at start-up, from an explicit table:
//
//	registry := middleware.Load([]middleware.Module{
//	    {ID: "./locale.go", Handler: middleware.Locale(st, tags)},
//	    {ID: "./feature.go", Handler: feature},
//	})
//
// Identifiers are reduced to bare names ("locale", "feature"); views refer
// to middleware by those names.
//
// # Chain
//
// The effective sequence of a navigation is the global defaults followed by
// each matched view's middleware, outer view first:
//
//	seq := middleware.Collect(global, outer.Middleware, inner.Middleware)
//	res, err := middleware.NewExecutor(registry).Run(ctx, seq, to, from)
//
// Handlers run one at a time. Each returns Continue or a Redirect result;
// the first Redirect ends the chain and its payload reaches the router
// unchanged. Every name is looked up before the first handler runs: an
// unregistered name is a configuration error (N001) and nothing executes.
package middleware
