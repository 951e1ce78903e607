package view

import (
	"context"
	"reflect"

	"github.com/vango-dev/navguard/internal/errors"
)

// DefaultDataKey is the key a non-map AsyncData result is stored under.
const DefaultDataKey = "data"

// Injection is the data a view is rendered with for one navigation.
type Injection struct {
	// Data is the static baseline with the async result overlaid.
	Data map[string]any

	// Fetched reports whether an AsyncData hook ran.
	Fetched bool
}

// Inject runs d's AsyncData hook and overlays its result on a fresh copy
// of the static data baseline. Async keys win on conflict. The definition
// itself is never modified, so repeated navigations to the same view always
// start from the original baseline.
//
// A result that is not a string-keyed map is stored under key (DefaultDataKey
// when key is empty); a nil result adds nothing. If the hook fails nothing
// is merged and the error is returned as N020.
func (d *Definition) Inject(ctx context.Context, nc Context, key string) (Injection, error) {
	if key == "" {
		key = DefaultDataKey
	}

	if d.AsyncData == nil {
		return Injection{Data: d.baseline()}, nil
	}

	result, err := d.AsyncData(ctx, nc)
	if err != nil {
		return Injection{}, errors.New("N020").
			WithRoute(nc.To.FullPath).
			WithDetailf("view %q", d.Name).
			Wrap(err)
	}

	return Injection{
		Data:    Overlay(d.baseline(), Record(result, key)),
		Fetched: true,
	}, nil
}

func (d *Definition) baseline() map[string]any {
	if d.Data == nil {
		return map[string]any{}
	}
	return copyMap(d.Data())
}

// Overlay returns a new map with base's entries, then top's entries.
func Overlay(base, top map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}

// Record converts an AsyncData result into a key-value record. String-keyed
// maps of any value type are used as they are; nil yields an empty record;
// everything else is wrapped under key.
func Record(result any, key string) map[string]any {
	switch v := result.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	}

	rv := reflect.ValueOf(result)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	}
	return map[string]any{key: result}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
