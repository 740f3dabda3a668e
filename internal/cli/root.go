// Package cli implements the tabula command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tabula/internal/canvasop"
	"github.com/roach88/tabula/internal/config"
	"github.com/roach88/tabula/internal/engine"
	"github.com/roach88/tabula/internal/store"
)

// RootOptions holds global flags and shared dependencies for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // config file path

	// Tokens fills in command IDs and idempotency keys the caller omitted.
	Tokens engine.TokenGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tabula CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Tokens: engine.UUIDv7Generator{}}

	cmd := &cobra.Command{
		Use:   "tabula",
		Short: "tabula - shared-canvas revision engine",
		Long:  "A command/revision engine for multi-actor documents: serialized commits, event replay, snapshots, and live subscriptions.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "tabula.yaml", "config file path")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig resolves the effective configuration: file settings overlaid
// on defaults, with a per-command --db flag overriding the database path.
func loadConfig(opts *RootOptions, dbOverride string) (config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, err
	}
	if dbOverride != "" {
		cfg.Database = dbOverride
	}
	return cfg, nil
}

// openEngine opens the store and builds an engine over the canvas
// document type. Callers must Close the returned store.
func openEngine(cfg config.Config) (*store.Store, *engine.Engine, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	eng := engine.New(st, canvasop.NewRegistry(),
		engine.WithSnapshotEvery(cfg.SnapshotEvery),
		engine.WithIdempotencyWindow(cfg.IdempotencyWindow),
	)
	return st, eng, nil
}
