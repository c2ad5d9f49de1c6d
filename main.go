package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"eventx/config"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
)

// rootCmd is the base command for the eventx CLI
var rootCmd = &cobra.Command{
	Use:   "eventx",
	Short: "Event registration and ticketing service",
	Long: `eventx serves the event catalog, account and booking API, and doubles as
a command-line client for it.

Examples:
  eventx migrate --seed
  eventx serve --addr :8080
  eventx login --email mona@example.com --password ...
  eventx book --event 3 --tickets 2`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			loaded.Log.Format = logFormat
		}
		cfg = loaded

		// The server logs to stdout; client commands keep stdout for their output.
		out := os.Stderr
		if cmd == serveCmd {
			out = os.Stdout
		}
		slog.SetDefault(newLogger(cfg.Log, out))
		return nil
	},
}

// underscoreFlags accepts --db_driver as well as --db-driver, matching the
// YAML key spelling.
func underscoreFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(underscoreFlags)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("EVENTX_CONFIG"), "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "Log format (auto|json|text)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger writes JSON, or text when format is auto and w is a terminal.
func newLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(lc.Level)}

	format := lc.Format
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = "text"
		}
	}

	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
