package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/action"
	"github.com/roach88/todoflux/internal/view"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Add items interactively",
		Long: `Start the dispatch loop and add one item per line read from stdin.

The list is printed on start and again after every change. Blank lines
are ignored. End of input (Ctrl-D) or Ctrl-C stops the loop after the
queued items are dispatched.

Example:
  todoflux --db ./todo.db run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(rootOpts, cmd)
		},
	}
}

func runLoop(opts *RootOptions, cmd *cobra.Command) error {
	logger := opts.logger()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer closeApp(a, logger)

	eng := a.NewEngine()
	controller := view.NewController(action.NewEmitter(eng, action.WithLogger(logger)))

	v := view.NewListView(a.Store, view.RendererFor(opts.Format), cmd.OutOrStdout(),
		view.WithLogger(logger))
	if err := v.Mount(); err != nil {
		return WrapExitError(ExitFailure, "failed to render list", err)
	}
	defer v.Unmount()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			eng.Stop()
		case <-ctx.Done():
		}
	}()

	go readItems(cmd.InOrStdin(), controller, eng.Stop, logger)

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	stats := eng.Stats()
	logger.Info("engine stopped", "dispatched", stats.Processed, "failed", stats.Failed, "items", a.Store.Len())
	if stats.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d action(s) failed to dispatch", stats.Failed))
	}
	return nil
}

// readItems adds one item per non-blank line of r and calls stop at end
// of input.
func readItems(r io.Reader, c *view.Controller, stop func(), logger *slog.Logger) {
	defer stop()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := c.Add(text); err != nil {
			logger.Debug("input dropped", "error", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("reading input", "error", err)
	}
}
