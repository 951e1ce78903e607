package view

import (
	"context"

	"github.com/vango-dev/navguard/internal/errors"
	"golang.org/x/sync/errgroup"
)

// Resolve turns the matched refs of a route into concrete definitions.
//
// Concrete refs are validated before any loader starts; a nil or invalid
// one fails with N030. Deferred loaders then run concurrently. The result
// has the same order as refs (outermost view first). If any loader fails
// the whole resolution fails and the remaining loaders see a cancelled
// context.
func Resolve(ctx context.Context, refs []Ref) ([]*Definition, error) {
	defs := make([]*Definition, len(refs))
	for i, ref := range refs {
		if ref.IsLazy() {
			continue
		}
		if err := ref.def.Validate(); err != nil {
			return nil, err
		}
		defs[i] = ref.def
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		if !ref.IsLazy() {
			continue
		}

		load := ref.load
		g.Go(func() error {
			def, err := load(gctx)
			if err != nil {
				return errors.New("N010").
					WithDetailf("loader for matched view %d failed", i).
					Wrap(err)
			}
			if def == nil {
				return errors.New("N011").WithDetailf("matched view %d", i)
			}
			if err := def.Validate(); err != nil {
				return err
			}
			defs[i] = def
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return defs, nil
}
