package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/vango-dev/navguard/internal/manifest"
	"github.com/vango-dev/navguard/pkg/middleware"
	"github.com/vango-dev/navguard/pkg/view"
)

// Thumbnail is a sample record served by the admin views.
type Thumbnail struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

var thumbnails = []Thumbnail{
	{Slug: "mountain-sunrise", Title: "Mountain sunrise", Category: "nature"},
	{Slug: "city-lights", Title: "City lights", Category: "urban"},
	{Slug: "retro-arcade", Title: "Retro arcade", Category: "gaming"},
}

func findThumbnail(slug string) (Thumbnail, bool) {
	for _, t := range thumbnails {
		if t.Slug == slug {
			return t, true
		}
	}
	return Thumbnail{}, false
}

func categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range thumbnails {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out
}

// adminMiddleware runs on every admin view.
var adminMiddleware = middleware.Names(MaintenanceName)

// lazy wraps a definition in a memoized loader, the way a split bundle
// is loaded once on first use.
func lazy(def *view.Definition) view.Ref {
	return view.Lazy(view.Memoize(func(ctx context.Context) (*view.Definition, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return def, nil
	}))
}

// Catalog returns the views of the demo application by manifest name.
func Catalog() manifest.Catalog {
	return manifest.Catalog{
		"home": view.Static(&view.Definition{
			Name: "home",
			Data: func() map[string]any {
				return map[string]any{"title": "Thumbnails", "featured": thumbnails[0].Slug}
			},
		}),
		"login": lazy(&view.Definition{
			Name:   "login",
			Layout: "auth",
		}),
		"signup": lazy(&view.Definition{
			Name:   "signup",
			Layout: "auth",
		}),
		"about": lazy(&view.Definition{
			Name:               "about",
			DisableScrollToTop: true,
		}),
		"maintenance": lazy(&view.Definition{
			Name:           "maintenance",
			Layout:         "blank",
			DisableLoading: true,
		}),
		"admin": lazy(&view.Definition{
			Name:       "admin",
			Layout:     "admin",
			Middleware: adminMiddleware,
		}),
		"adminThumbnails": lazy(&view.Definition{
			Name:       "adminThumbnails",
			Layout:     "admin",
			Middleware: adminMiddleware,
			Data: func() map[string]any {
				return map[string]any{"page": 1}
			},
			AsyncData: func(ctx context.Context, nc view.Context) (any, error) {
				return map[string]any{"thumbnails": thumbnails, "total": len(thumbnails)}, nil
			},
		}),
		"thumbnailEditor": lazy(&view.Definition{
			Name:       "thumbnailEditor",
			Layout:     "admin",
			Middleware: adminMiddleware,
			Data: func() map[string]any {
				return map[string]any{"thumbnail": Thumbnail{}, "editing": false}
			},
			AsyncData: func(ctx context.Context, nc view.Context) (any, error) {
				slug := nc.To.Param("slug")
				if slug == "" {
					return nil, nil
				}
				t, ok := findThumbnail(slug)
				if !ok {
					return nil, fmt.Errorf("thumbnail %q not found", slug)
				}
				return map[string]any{"thumbnail": t, "editing": true}, nil
			},
		}),
		"adminCategories": lazy(&view.Definition{
			Name:       "adminCategories",
			Layout:     "admin",
			Middleware: adminMiddleware,
			AsyncData: func(ctx context.Context, nc view.Context) (any, error) {
				return categories(), nil
			},
		}),
		"adminDownloads": lazy(&view.Definition{
			Name:       "adminDownloads",
			Layout:     "admin",
			Middleware: adminMiddleware,
			AsyncData: func(ctx context.Context, nc view.Context) (any, error) {
				return len(thumbnails) * 12, nil
			},
		}),
		"adminImages": lazy(&view.Definition{
			Name:       "adminImages",
			Layout:     "admin",
			Middleware: adminMiddleware,
		}),
	}
}
