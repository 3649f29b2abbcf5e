package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/engine"
	"github.com/pictomat/pictomat/internal/journal"
	"github.com/pictomat/pictomat/internal/manifest"
	"github.com/pictomat/pictomat/internal/rule"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Ticks    int
	Out      string

	// TokenGenerator allows overriding the run token generator (for
	// testing). If nil, defaults to UUIDv7Generator.
	TokenGenerator engine.TokenGenerator
}

// RunReport is the run command's result payload.
type RunReport struct {
	Program      string   `json:"program"`
	Run          string   `json:"run"`
	Ticks        int      `json:"ticks"`
	Applications int      `json:"applications"`
	FixedPoint   bool     `json:"fixed_point"`
	Rejected     []string `json:"rejected_rules,omitempty"`
	Final        string   `json:"final"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <manifest.cue>",
		Short: "Execute a program to its fixed point",
		Long: `Execute a program manifest until its world stops changing.

The manifest names a world image and an ordered list of rule image pairs.
Each tick rewrites the world to a fixpoint of the rule set, then wakes
sleeping regions; the run stops when a tick changes nothing and wakes
nobody, or when the tick limit is reached.

Examples:
  pictomat run ./examples/blinker/program.cue
  pictomat run --db ./trace.db --ticks 50 ./program.cue
  pictomat run --out final.png ./program.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run into a SQLite journal at this path")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "tick limit, overriding the manifest")
	cmd.Flags().StringVar(&opts.Out, "out", "", "write the final world image here (.png or .txt)")

	return cmd
}

func runProgram(opts *RunOptions, path string, cmd *cobra.Command) error {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	m, err := manifest.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}
	log.Info("manifest loaded", "program", m.Name, "rules", len(m.Rules))

	world, rules, rejected, err := m.Build(filepath.Dir(path), rule.NewCache())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build program", err)
	}
	for _, rej := range rejected {
		log.Warn("rule rejected", "rule", rej.Name, "error", rej.Err)
	}
	if len(rules) == 0 {
		return NewExitError(ExitCommandError, "no usable rules in program")
	}

	engineOpts := []engine.EngineOption{engine.WithLogger(log)}
	if m.MatchBudget > 0 {
		engineOpts = append(engineOpts, engine.WithMatchBudget(m.MatchBudget))
	}
	if m.MaxApplications > 0 {
		engineOpts = append(engineOpts, engine.WithMaxApplications(m.MaxApplications))
	}
	if opts.TokenGenerator != nil {
		engineOpts = append(engineOpts, engine.WithTokenGenerator(opts.TokenGenerator))
	}
	if opts.Database != "" {
		st, err := journal.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()
		engineOpts = append(engineOpts, engine.WithJournal(st))
	}

	eng := engine.New(engine.NewWorld(world), rules, engineOpts...)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	ticks := m.Ticks
	if opts.Ticks > 0 {
		ticks = opts.Ticks
	}
	if ticks <= 0 {
		ticks = 100
	}

	res, err := eng.Run(ctx, ticks)
	if err != nil {
		return WrapExitError(ExitFailure, "run failed", err)
	}

	final := eng.World().Pixels()
	if opts.Out != "" {
		if err := writeWorld(opts.Out, final); err != nil {
			return WrapExitError(ExitCommandError, "failed to write final world", err)
		}
	}

	report := RunReport{
		Program:      m.Name,
		Run:          res.Token,
		Ticks:        res.Ticks,
		Applications: res.Applications,
		FixedPoint:   res.FixedPoint,
		Final:        canvas.Render(nil, final),
	}
	for _, rej := range rejected {
		report.Rejected = append(report.Rejected, rej.Name)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "%s: %d tick(s), %d application(s)\n",
		report.Program, report.Ticks, report.Applications)
	if report.FixedPoint {
		fmt.Fprintln(formatter.Writer, "reached fixed point")
	} else {
		fmt.Fprintln(formatter.Writer, "tick limit reached")
	}
	fmt.Fprint(formatter.Writer, report.Final)
	return nil
}

func writeWorld(path string, m *canvas.Pixmap) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := canvas.EncodePNG(f, m); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".txt":
		return os.WriteFile(path, []byte(canvas.Render(nil, m)), 0o644)
	default:
		return fmt.Errorf("unsupported output extension %q", filepath.Ext(path))
	}
}
