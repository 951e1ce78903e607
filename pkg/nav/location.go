package nav

import (
	"net/url"
	"strings"

	"github.com/vango-dev/navguard/internal/errors"
)

// Location is the route state of one side of a navigation.
type Location struct {
	// Path is the canonical path, without query or fragment.
	Path string `json:"path"`

	// Name is the symbolic name of the matched route ("" when unmatched).
	Name string `json:"name,omitempty"`

	// Params are the route parameters extracted by the route table.
	Params map[string]string `json:"params,omitempty"`

	// Query holds the parsed query string.
	Query url.Values `json:"query,omitempty"`

	// Hash is the fragment identifier including the leading "#".
	Hash string `json:"hash,omitempty"`

	// FullPath is Path plus the raw query and the fragment.
	FullPath string `json:"fullPath"`
}

// Parse turns a navigation target such as "/admin/images?page=2#grid" into
// a Location. Only relative targets are accepted.
func Parse(raw string) (Location, error) {
	if strings.HasPrefix(raw, "//") || hasScheme(raw) {
		return Location{}, errors.New("N041").WithRoute(raw).Wrap(ErrAbsoluteURL)
	}

	rest, hash, hasHash := strings.Cut(raw, "#")
	path, rawQuery, _ := strings.Cut(rest, "?")

	canon, _, err := CanonicalizePath(path)
	if err != nil {
		return Location{}, errors.New("N041").WithRoute(raw).Wrap(err)
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Location{}, errors.New("N041").WithRoute(raw).Wrap(err)
	}

	loc := Location{Path: canon, Query: query}
	if hasHash && hash != "" {
		loc.Hash = "#" + hash
	}
	loc.FullPath = buildFullPath(canon, rawQuery, loc.Hash)
	return loc, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// static route tables.
func MustParse(raw string) Location {
	loc, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return loc
}

// hasScheme reports whether raw starts with "scheme:" before any path,
// query or fragment delimiter.
func hasScheme(raw string) bool {
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case ':':
			return i > 0
		case '/', '?', '#':
			return false
		}
	}
	return false
}

func buildFullPath(path, rawQuery, hash string) string {
	full := path
	if rawQuery != "" {
		full += "?" + rawQuery
	}
	return full + hash
}

// Param returns the named route parameter, or "".
func (l Location) Param(name string) string {
	return l.Params[name]
}

// IsZero reports whether l is the zero Location (the "from" of the very
// first navigation).
func (l Location) IsZero() bool {
	return l.Path == "" && l.FullPath == ""
}

// Matched returns a copy of l stamped with the route name and parameters.
func (l Location) Matched(name string, params map[string]string) Location {
	out := l
	out.Name = name
	if len(params) > 0 {
		out.Params = make(map[string]string, len(params))
		for k, v := range params {
			out.Params[k] = v
		}
	} else {
		out.Params = nil
	}
	return out
}

// String returns the full path.
func (l Location) String() string {
	return l.FullPath
}
