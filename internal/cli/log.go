package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pictomat/pictomat/internal/journal"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Database string
	Run      string
}

// LogRun is one run in the log command's payload.
type LogRun struct {
	Token    string               `json:"token"`
	Rules    int                  `json:"rules"`
	Ticks    int                  `json:"ticks"`
	Finished bool                 `json:"finished"`
	Detail   []LogTick            `json:"detail,omitempty"`
	Rewrites []journal.RewriteRow `json:"rewrites,omitempty"`
}

// LogTick is one tick in a run's detail.
type LogTick struct {
	Tick         int `json:"tick"`
	Applications int `json:"applications"`
	Woken        int `json:"woken"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect a recorded run journal",
		Long: `List runs recorded in a journal database, or the ticks and
rewrites of one run.

Examples:
  pictomat log --db ./trace.db
  pictomat log --db ./trace.db --run 0190f6c2-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show ticks and rewrites of this run only")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Run != "" {
		return logOneRun(ctx, st, opts.Run, formatter)
	}

	runs, err := st.Runs(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	if formatter.Format == "json" {
		out := make([]LogRun, 0, len(runs))
		for _, r := range runs {
			out = append(out, LogRun{Token: r.Token, Rules: r.Rules, Ticks: r.Ticks, Finished: r.Finished})
		}
		return formatter.Success(out)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		state := "finished"
		if !r.Finished {
			state = "unfinished"
		}
		fmt.Fprintf(formatter.Writer, "%s  rules=%d ticks=%d %s\n", r.Token, r.Rules, r.Ticks, state)
	}
	return nil
}

func logOneRun(ctx context.Context, st *journal.Store, run string, formatter *OutputFormatter) error {
	ticks, err := st.Ticks(ctx, run)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ticks", err)
	}
	rewrites, err := st.Rewrites(ctx, run)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read rewrites", err)
	}
	if len(ticks) == 0 && len(rewrites) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("run %s not found in journal", run))
	}

	if formatter.Format == "json" {
		out := LogRun{Token: run, Ticks: len(ticks), Rewrites: rewrites}
		for _, t := range ticks {
			out.Detail = append(out.Detail, LogTick{Tick: t.Tick, Applications: t.Applications, Woken: t.Woken})
		}
		return formatter.Success(out)
	}

	fmt.Fprintf(formatter.Writer, "run %s\n", run)
	for _, t := range ticks {
		fmt.Fprintf(formatter.Writer, "  tick %d: applications=%d woken=%d\n", t.Tick, t.Applications, t.Woken)
	}
	for _, rw := range rewrites {
		fmt.Fprintf(formatter.Writer, "  tick %d: rule %s touched %d region(s)\n", rw.Tick, rw.Rule, rw.CellsTouched)
	}
	return nil
}
