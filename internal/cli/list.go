package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/app"
	"github.com/roach88/todoflux/internal/view"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>...",
		Short: "Add items to the list",
		Long: `Dispatch one ADD_ITEM action per argument, in order, then print the list.

Examples:
  todoflux add "buy milk"
  todoflux --db ./todo.db add "buy milk" "walk dog"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app.App) error {
				for _, text := range args {
					if err := a.Emitter.AddItem(text); err != nil {
						return WrapExitError(ExitFailure, "failed to add item", err)
					}
				}
				return renderList(rootOpts, cmd, a)
			})
		},
	}
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "new",
		Short:         `Add a "` + view.NewItemText + `" item`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app.App) error {
				if err := view.NewController(a.Emitter).NewItem(); err != nil {
					return WrapExitError(ExitFailure, "failed to add item", err)
				}
				return renderList(rootOpts, cmd, a)
			})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "Print the list",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app.App) error {
				return renderList(rootOpts, cmd, a)
			})
		},
	}
}

func withApp(opts *RootOptions, cmd *cobra.Command, fn func(*app.App) error) error {
	a, err := openApp(commandContext(cmd), opts)
	if err != nil {
		return err
	}
	defer closeApp(a, opts.logger())
	return fn(a)
}

// renderList prints the list once through a list view.
func renderList(opts *RootOptions, cmd *cobra.Command, a *app.App) error {
	v := view.NewListView(a.Store, view.RendererFor(opts.Format), cmd.OutOrStdout(),
		view.WithLogger(opts.logger()))
	if err := v.Mount(); err != nil {
		return WrapExitError(ExitFailure, "failed to render list", err)
	}
	v.Unmount()
	return nil
}
