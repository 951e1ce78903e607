package middleware

import (
	"sort"
	"strings"
)

// moduleExts are the file extensions stripped from module identifiers.
var moduleExts = []string{".go", ".js", ".mjs", ".ts"}

// Module is one entry of the registration table: an identifier as it was
// discovered at build or start time (e.g. "./check-auth.js") and the
// handler it exports. A nil Handler stands for a module without a callable
// export; its name is still registered.
type Module struct {
	ID      string
	Handler Handler
}

// Registry maps bare middleware names to handlers. It is built once by Load
// and is read-only afterwards, so it is safe for concurrent use.
type Registry struct {
	handlers map[string]Handler
}

// Load builds a registry from a registration table. Identifiers lose a
// leading "./" and their file extension. Later entries with the same name
// replace earlier ones.
func Load(modules []Module) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(modules))}
	for _, m := range modules {
		r.handlers[Name(m.ID)] = m.Handler
	}
	return r
}

// Name strips the path decoration from a module identifier.
func Name(id string) string {
	name := strings.TrimPrefix(id, "./")
	for _, ext := range moduleExts {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// Lookup returns the handler registered under name. ok is false when the
// name is unknown; a registered module without a handler returns (nil, true).
func (r *Registry) Lookup(name string) (h Handler, ok bool) {
	if r == nil {
		return nil, false
	}
	h, ok = r.handlers[name]
	return h, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.handlers)
}
