// Command navguard inspects and serves the navigation pipeline of the
// thumbnails demo application.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/navguard/internal/config"
	"github.com/vango-dev/navguard/internal/errors"
	"golang.org/x/term"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		errors.DisableColors()
	}

	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "navguard",
		Short: "Navigation guard pipeline for single-page applications",
		Long: `navguard runs the before-navigation pipeline of a single-page
application: it resolves the views of the target route, runs their
middleware chain, injects their data and decides where to scroll.

Configuration is read from navguard.json or navguard.toml in the
working directory or any parent. Without one the built-in defaults
and route table are used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to navguard.json or navguard.toml (default: search from the working directory)")

	rootCmd.AddCommand(
		serveCmd(opts),
		routesCmd(opts),
		navigateCmd(opts),
		middlewareCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// load reads the configuration named by --config, or searches for one.
// A project without a config file runs on the defaults.
func (o *rootOptions) load() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.CodeOf(err) == "N050" {
		return config.New(), nil
	}
	return cfg, err
}

// newLogger builds the logger described by the log section of cfg.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}
