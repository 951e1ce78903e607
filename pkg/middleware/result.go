package middleware

import (
	"context"

	"github.com/vango-dev/navguard/pkg/nav"
)

// Handler inspects a pending navigation and decides whether it may go on.
//
// Returning Continue hands control to the next middleware. Returning a
// Redirect result stops the chain: no later middleware runs and the payload
// is handed to the router unchanged. A non-nil error fails the navigation.
type Handler func(ctx context.Context, to, from nav.Location) (Result, error)

// Result is the outcome of one middleware: continue or redirect.
type Result struct {
	aborted bool
	payload any
	by      string
}

// Continue lets the navigation proceed to the next middleware.
var Continue = Result{}

// Redirect stops the chain and hands payload to the router. The router
// interprets it: a path string or nav.Location redirects, false aborts, an
// error fails the navigation.
func Redirect(payload any) Result {
	return Result{aborted: true, payload: payload}
}

// RedirectTo is Redirect with a path.
func RedirectTo(path string) Result {
	return Redirect(path)
}

// Abort stops the chain and cancels the navigation without redirecting.
func Abort() Result {
	return Redirect(false)
}

// Aborted reports whether the chain was short-circuited.
func (r Result) Aborted() bool {
	return r.aborted
}

// Payload returns the redirect payload (nil for Continue).
func (r Result) Payload() any {
	return r.payload
}

// AbortedBy returns the name of the middleware that short-circuited the
// chain. Inline handlers are reported as "func#<index>".
func (r Result) AbortedBy() string {
	return r.by
}

func (r Result) withSource(name string) Result {
	r.by = name
	return r
}
