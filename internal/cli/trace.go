package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	ActionType string // optional - filter to one action type
}

// TraceResult holds the journal records printed by the trace command.
type TraceResult struct {
	Records []ir.ActionRecord `json:"records"`
	Stats   TraceStats        `json:"stats"`
}

// TraceStats holds summary statistics for a trace.
type TraceStats struct {
	Total   int            `json:"total"`
	ByType  map[string]int `json:"by_type"`
	LastSeq int64          `json:"last_seq"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the action journal",
		Long: `Print every action recorded in the journal, in dispatch order.

Unrecognized action types are recorded too, so the journal shows exactly
what the dispatcher saw.

Examples:
  todoflux --db ./todo.db trace
  todoflux --db ./todo.db trace --type ADD_ITEM
  todoflux --db ./todo.db trace --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ActionType, "type", "", "filter to one action type")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	if opts.Database == "" {
		return NewExitError(ExitCommandError,
			"no journal: set --db, TODOFLUX_DB or database in the config file")
	}
	ctx := commandContext(cmd)

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	var records []ir.ActionRecord
	if opts.ActionType != "" {
		records, err = j.ReadType(ctx, ir.ActionType(opts.ActionType))
	} else {
		records, err = j.Read(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := TraceResult{
		Records: records,
		Stats:   TraceStats{Total: len(records), ByType: make(map[string]int)},
	}
	if result.Records == nil {
		result.Records = []ir.ActionRecord{}
	}
	for _, rec := range records {
		result.Stats.ByType[string(rec.Action.Type)]++
		result.Stats.LastSeq = rec.Seq
	}

	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return f.Success(result)
	}
	return outputTraceText(f, result)
}

func outputTraceText(f *OutputFormatter, result TraceResult) error {
	w := f.Writer
	if len(result.Records) == 0 {
		fmt.Fprintln(w, "No actions recorded.")
		return nil
	}

	for _, rec := range result.Records {
		fmt.Fprintf(w, "[%d] %s %q\n", rec.Seq, rec.Action.Type, rec.Action.Text)
		f.VerboseLog("      id=%s engine=%s ir=%s", rec.ID, rec.EngineVersion, rec.IRVersion)
	}
	fmt.Fprintf(w, "\n%d action(s)\n", result.Stats.Total)
	return nil
}
