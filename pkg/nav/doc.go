// Package nav defines the route state that flows through a navigation.
//
// A Location is what the pipeline sees as "to" and "from": the canonical
// path, the matched route's name and parameters, the query and the fragment.
// Locations are values; nothing in the pipeline mutates one after Parse or
// after the route table stamped it with a name and parameters.
//
//	loc, err := nav.Parse("/admin//thumbnails/?page=2#top")
//	// loc.Path     == "/admin/thumbnails"
//	// loc.Hash     == "#top"
//	// loc.FullPath == "/admin/thumbnails?page=2#top"
package nav
