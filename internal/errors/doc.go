// Package errors provides structured, coded errors for the navigation pipeline.
//
// Every failure the pipeline can surface is registered under a code that
// maps to a category, a short message, a longer explanation and a
// documentation link:
//
//   - config: a view references a middleware that is not registered, a
//     middleware module has no handler, a view definition is malformed
//   - resolution: a deferred view loader failed
//   - data: a view's async data hook failed
//   - route: unknown route names, invalid paths, redirect loops
//   - manifest: the YAML route manifest is malformed
//
// # Usage
//
//	err := errors.New("N001").
//	    WithRoute("/admin").
//	    WithDetail(`View "admin" references middleware "check-auth".`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR N001: Undefined middleware
//	//
//	//   route /admin
//	//
//	//   View "admin" references middleware "check-auth".
//	//
//	//   Learn more: https://navguard.dev/docs/errors/N001
//
// Codes compare with the standard library:
//
//	if stderrors.Is(err, errors.New("N001")) { ... }
//	if errors.IsCategory(err, errors.CategoryConfig) { ... }
package errors
