package middleware

import (
	"context"

	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/store"
	"golang.org/x/text/language"
)

// LocaleName is the name the locale middleware is usually registered under.
const LocaleName = "locale"

type localeConfig struct {
	param    string
	fallback language.Tag
}

// LocaleOption configures the locale middleware.
type LocaleOption func(*localeConfig)

// WithLocaleParam sets the query parameter that selects a locale
// (default "lang").
func WithLocaleParam(name string) LocaleOption {
	return func(c *localeConfig) {
		c.param = name
	}
}

// WithFallbackLocale sets the locale used when nothing else matches
// (default: the first supported locale).
func WithFallbackLocale(tag language.Tag) LocaleOption {
	return func(c *localeConfig) {
		c.fallback = tag
	}
}

// Locale returns a middleware that selects the active locale for every
// navigation and writes it to st under store.LocaleKey.
//
// Candidates are tried in order: the query parameter of the destination,
// the locale already in the store, the fallback. Each candidate is matched
// against supported; the first confident match wins. The middleware never
// redirects.
func Locale(st *store.Store, supported []language.Tag, opts ...LocaleOption) Handler {
	cfg := localeConfig{param: "lang", fallback: language.Und}
	if len(supported) > 0 {
		cfg.fallback = supported[0]
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	matcher := language.NewMatcher(supported)

	match := func(candidate string) (string, bool) {
		if candidate == "" || len(supported) == 0 {
			return "", false
		}
		tag, err := language.Parse(candidate)
		if err != nil {
			return "", false
		}
		_, idx, conf := matcher.Match(tag)
		if conf == language.No {
			return "", false
		}
		return supported[idx].String(), true
	}

	return func(ctx context.Context, to, from nav.Location) (Result, error) {
		for _, candidate := range []string{to.Query.Get(cfg.param), st.String(store.LocaleKey)} {
			if locale, ok := match(candidate); ok {
				st.Set(store.LocaleKey, locale)
				return Continue, nil
			}
		}
		st.Set(store.LocaleKey, cfg.fallback.String())
		return Continue, nil
	}
}
