package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/navguard/internal/app"
)

func routesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long: `List every route of the configured route table with the number of
views it renders and how many of them are loaded on demand.`,
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

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATTERN\tNAME\tVIEWS\tLAZY")
			for _, rec := range a.Table().Routes() {
				lazy := 0
				for _, ref := range rec.Views {
					if ref.IsLazy() {
						lazy++
					}
				}
				name := rec.Name
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", rec.Pattern, name, len(rec.Views), lazy)
			}
			return tw.Flush()
		},
	}
}
