package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

// options holds the persistent flags shared by every command.
type options struct {
	configDir string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "reactive",
		Short: "Explore a synchronous signal/computed/effect runtime",
		Long: `reactive runs small demo graphs on the reactive runtime and
shows how changes propagate through signals, computeds and effects.

  • demo    run a scenario and print what every effect observed
  • graph   print the dependency graph a scenario builds
  • serve   expose a live runtime over HTTP and websocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configDir, "config", "c", ".", "Directory containing reactive.json")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from reactive.json)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (default from reactive.json)")

	rootCmd.AddCommand(
		demoCmd(opts),
		graphCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// load resolves the configuration: reactive.json, then environment, then
// flags.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configDir)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger builds the process logger and installs it as the slog default.
func logger(cfg *config.Config, w io.Writer) *slog.Logger {
	l := cfg.Logger(w)
	slog.SetDefault(l)
	return l
}
