package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pictomat/pictomat/internal/manifest"
	"github.com/pictomat/pictomat/internal/rule"
)

// ValidationIssue is one problem found while validating a program.
type ValidationIssue struct {
	Rule    string `json:"rule,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Rules  int               `json:"rules"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest.cue>",
		Short: "Check a program without running it",
		Long: `Load a program manifest, read its images, and compile every rule.

Reports malformed rules without aborting on the first one; a program is
valid when its manifest compiles, all images load, and every rule image
pair compiles to a rule.

Exit codes:
  0 - program is valid
  1 - one or more rules are malformed
  2 - command error (manifest or image unreadable)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, err := manifest.Load(path)
	if err != nil {
		var cerr *manifest.CompileError
		if errors.As(err, &cerr) {
			_ = formatter.Error(ErrCodeManifest, cerr.Error(), cerr.Field)
		} else {
			_ = formatter.Error(ErrCodeManifest, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "manifest failed to compile", err)
	}
	formatter.VerboseLog("manifest %s: %d rule(s)", m.Name, len(m.Rules))

	_, rules, rejected, err := m.Build(filepath.Dir(path), rule.NewCache())
	if err != nil {
		_ = formatter.Error(ErrCodeImage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "program failed to build", err)
	}

	result := ValidationResult{Valid: len(rejected) == 0, Rules: len(rules)}
	for _, rej := range rejected {
		result.Issues = append(result.Issues, ValidationIssue{
			Rule:    rej.Name,
			Code:    ErrCodeRule,
			Message: rej.Err.Error(),
		})
	}

	if result.Valid {
		if formatter.Format == "json" {
			if err := formatter.Success(result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(formatter.Writer, "✓ %s: %d rule(s) valid\n", m.Name, result.Rules)
		}
		return nil
	}

	if formatter.Format == "json" {
		_ = formatter.Success(result)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s: %d malformed rule(s)\n\n", m.Name, len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", issue.Rule, issue.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d malformed rule(s)", len(result.Issues)))
}
