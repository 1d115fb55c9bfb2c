package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/app"
	"github.com/roach88/todoflux/internal/config"
	"github.com/roach88/todoflux/internal/dispatch"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string

	// Config and Logger are resolved before any subcommand runs.
	Config config.Config
	Logger *slog.Logger

	// Tokens overrides the dispatcher's token generator (for testing).
	Tokens dispatch.TokenGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the todoflux CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "todoflux",
		Short: "todoflux - a todo list with one-way data flow",
		Long: `A single todo list built on a Flux dispatcher.

Every change is an action: it goes through the dispatcher to the store,
and the list view re-renders when the store reports a change. With a
journal (--db) actions are persisted and replayed on the next start.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a CUE config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the SQLite action journal")

	// Add subcommands
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve merges the config file, the environment and explicit flags,
// in that order of increasing precedence, and builds the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("db") {
		o.Database = cfg.Database
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Config = cfg
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	return nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// openApp builds the application context, loads the list from the
// journal and applies the configured seed items.
func openApp(ctx context.Context, o *RootOptions) (*app.App, error) {
	appOpts := []app.Option{app.WithLogger(o.logger())}
	if o.Database != "" {
		appOpts = append(appOpts, app.WithJournal(o.Database))
	}
	if o.Tokens != nil {
		appOpts = append(appOpts, app.WithTokenGenerator(o.Tokens))
	}

	a, err := app.New(ctx, appOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}

	n, err := a.Rebuild(ctx)
	if err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "failed to rebuild list", err)
	}
	if _, err := a.Seed(o.Config.Seed); err != nil {
		a.Close()
		return nil, WrapExitError(ExitFailure, "failed to seed list", err)
	}

	o.logger().Debug("list loaded", "db", o.Database, "replayed", n, "items", a.Store.Len())
	return a, nil
}

func closeApp(a *app.App, logger *slog.Logger) {
	if err := a.Close(); err != nil {
		logger.Error("error closing journal", "error", err)
	}
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

// commandContext returns the command's context, or Background when the
// command is executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
