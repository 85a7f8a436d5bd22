package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/partialsql/internal/harness"
	"github.com/roach88/partialsql/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Filter  string // case filter (glob pattern over case names)
	AuditDB string
}

// CheckResult holds the overall conformance result.
type CheckResult struct {
	Cases  []*harness.Result `json:"cases"`
	Passed int               `json:"passed"`
	Failed int               `json:"failed"`
	Total  int               `json:"total"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <cases-dir>",
		Short: "Run conformance cases",
		Long: `Run YAML conformance cases, each pairing a compile API response with
the WHERE clause or failure kind it must produce.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (invalid paths, malformed cases, etc.)

Examples:
  partialsql check ./cases
  partialsql check ./cases --filter "set-*"
  partialsql check ./cases --format json --audit-db audit.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter cases by glob pattern")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "record every run in this SQLite audit log")

	return cmd
}

func runCheck(opts *CheckOptions, casesDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(casesDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("cases directory not found: %s", casesDir))
	}
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}
	}

	cases, err := harness.LoadCases(casesDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load cases", err)
	}
	cases = filterCases(cases, opts.Filter)

	if len(cases) == 0 {
		if opts.Format == "json" {
			return outputCheckJSON(cmd, CheckResult{Cases: []*harness.Result{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No cases found.")
		return nil
	}

	var harnessOpts []harness.Option
	if auditDB := firstNonEmpty(opts.AuditDB, opts.config().AuditDB); auditDB != "" {
		st, err := store.Open(auditDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open audit log", err)
		}
		defer st.Close()
		harnessOpts = append(harnessOpts, harness.WithStore(st))
	}
	if opts.Verbose {
		harnessOpts = append(harnessOpts, harness.WithLogger(slog.Default()))
	}

	results, err := harness.New(harnessOpts...).RunAll(cmd.Context(), cases)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run cases", err)
	}

	passed, failed := harness.Summary(results)
	result := CheckResult{
		Cases:  results,
		Passed: passed,
		Failed: failed,
		Total:  len(results),
	}

	if opts.Format == "json" {
		return outputCheckJSON(cmd, result)
	}
	return outputCheckText(cmd, result)
}

// filterCases keeps cases whose name matches pattern. An empty pattern
// keeps every case.
func filterCases(cases []*harness.Case, pattern string) []*harness.Case {
	if pattern == "" {
		return cases
	}
	var kept []*harness.Case
	for _, c := range cases {
		if ok, _ := filepath.Match(pattern, c.Name); ok {
			kept = append(kept, c)
		}
	}
	return kept
}

// outputCheckJSON outputs the result as JSON.
func outputCheckJSON(cmd *cobra.Command, result CheckResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "E_CHECK_FAILED",
			Message: fmt.Sprintf("%d case(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", result.Failed))
	}
	return nil
}

// outputCheckText outputs one line per case and a summary.
func outputCheckText(cmd *cobra.Command, result CheckResult) error {
	w := cmd.OutOrStdout()

	for _, r := range result.Cases {
		if r.Pass {
			fmt.Fprintf(w, "✓ %s\n", r.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All cases passed")
	return nil
}
