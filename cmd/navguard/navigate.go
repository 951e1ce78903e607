package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/navguard/internal/app"
	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/guard"
	"github.com/vango-dev/navguard/pkg/scroll"
)

func navigateCmd(opts *rootOptions) *cobra.Command {
	var (
		from string
		set  []string
	)

	cmd := &cobra.Command{
		Use:   "navigate <path>",
		Short: "Run one navigation and print its outcome",
		Long: `Run one navigation through the guard pipeline in a fresh session and
print where it ended, the redirects it followed, the layout and data of
the target views and the scroll decision.

Store values seen by middleware can be preset with --set.

Examples:
  navguard navigate /admin/images
  navguard navigate /about --from=/login
  navguard navigate /admin --set maintenance=true`,
		Args: cobra.ExactArgs(1),
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

			sess := a.NewSession()
			for _, kv := range set {
				key, value, ok := strings.Cut(kv, "=")
				if !ok || key == "" {
					return errors.New("N052").WithDetailf("--set %q is not key=value", kv)
				}
				sess.Store.Set(key, parseValue(value))
			}

			ctx := cmd.Context()
			if from != "" {
				if _, err := sess.Navigator.Push(ctx, from); err != nil {
					return err
				}
				sess.Tick()
			}

			out, err := sess.Navigator.Push(ctx, args[0])
			sess.Tick()
			if err != nil {
				return err
			}
			return printOutcome(cmd, out)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Commit this path first so the navigation has an origin")
	cmd.Flags().StringArrayVar(&set, "set", nil, "Preset a store value (key=value, repeatable)")

	return cmd
}

// parseValue turns "true" and "false" into booleans so flags such as
// maintenance=true reach middleware with their natural type.
func parseValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func printOutcome(cmd *cobra.Command, out *guard.Outcome) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	row := func(label, value string) {
		fmt.Fprintf(tw, "%s:\t%s\n", label, value)
	}

	row("status", string(out.Status))
	if out.From.FullPath != "" {
		row("from", out.From.FullPath)
	}
	for _, target := range out.Redirects {
		row("redirect", target)
	}

	dec := out.Decision
	if dec != nil {
		row("navigation", dec.ID)
		if by := dec.Result.AbortedBy(); by != "" {
			row("aborted by", by)
		}
	}

	if out.Committed() {
		to := out.To.FullPath
		if out.To.Name != "" {
			to += " (" + out.To.Name + ")"
		}
		row("to", to)
		row("layout", dec.Layout)
		names := make([]string, 0, len(dec.Views))
		for _, v := range dec.Views {
			names = append(names, v.Name)
		}
		row("views", strings.Join(names, " > "))
		if len(dec.Data) > 0 {
			data, err := json.Marshal(dec.Data)
			if err != nil {
				return err
			}
			row("data", string(data))
		}
		row("scroll", describeScroll(out.Scroll))
	}
	return tw.Flush()
}

func describeScroll(t scroll.Target) string {
	switch {
	case t.Selector != "":
		return t.Selector
	case t.Position != nil:
		return fmt.Sprintf("%g,%g", t.Position.X, t.Position.Y)
	default:
		return "none"
	}
}
