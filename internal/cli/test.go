package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pictomat/pictomat/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
}

// ScenarioReport is one scenario's result in the test command's payload.
type ScenarioReport struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

// TestReport is the test command's result payload.
type TestReport struct {
	Scenarios []ScenarioReport `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario files against the engine",
		Long: `Run every scenario file in a directory and check its expectations.

A scenario is a YAML document naming a world, a rule set as ASCII art,
a tick count, and an expect clause over the final world, the number of
applications, and stability.

Exit codes:
  0 - all scenarios passed
  1 - one or more scenarios failed
  2 - command error (directory or scenario unreadable)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args[0], cmd)
		},
	}

	return cmd
}

func runTest(opts *TestOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read scenarios directory", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no scenario files in %s", dir))
	}

	var report TestReport
	for _, p := range paths {
		s, err := harness.LoadScenario(p)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", p), err)
		}
		formatter.VerboseLog("running scenario %s (%d tick(s))", s.Name, s.Ticks)

		sr := ScenarioReport{Name: s.Name, Passed: true}
		out, err := harness.Execute(s)
		if err == nil {
			err = harness.Check(s, out)
		}
		if err != nil {
			sr.Passed = false
			sr.Error = err.Error()
			report.Failed++
		} else {
			report.Passed++
		}
		report.Scenarios = append(report.Scenarios, sr)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		for _, sr := range report.Scenarios {
			if sr.Passed {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", sr.Name)
			} else {
				fmt.Fprintf(formatter.Writer, "✗ %s\n  %s\n", sr.Name, sr.Error)
			}
		}
		fmt.Fprintf(formatter.Writer, "%d passed, %d failed\n", report.Passed, report.Failed)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", report.Failed))
	}
	return nil
}
