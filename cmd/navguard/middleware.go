package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vango-dev/navguard/internal/app"
	"github.com/vango-dev/navguard/pkg/store"
)

func middlewareCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "middleware",
		Short: "List registered middleware",
		Long: `List the named middleware of the registry. Global middleware runs
before the middleware of every navigation and is marked with its
position in the global list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a, err := app.New(cfg, app.WithLogger(logger))
			if err != nil {
				return err
			}

			global := make(map[string]int)
			for i, name := range cfg.Middleware.Global {
				global[name] = i + 1
			}

			out := cmd.OutOrStdout()
			for _, name := range a.Registry(store.New(nil)).Names() {
				if pos, ok := global[name]; ok {
					fmt.Fprintf(out, "%s (global #%s)\n", name, strconv.Itoa(pos))
					continue
				}
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
