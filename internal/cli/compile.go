package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/partialsql/internal/opa"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Query   string        // policy query, e.g. data.partial.goals.allow == true
	Input   string        // security context JSON file
	OPAURL  string        // base URL of the policy engine
	Timeout time.Duration // request timeout
	Params  bool
	AuditDB string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Ask OPA for a residual and translate it",
		Long: `Send a partial evaluation request to the OPA compile API, with the row
under authorization marked unknown, and translate the residual into a
PostgreSQL WHERE-clause fragment.

Exit codes:
  0 - Translation succeeded
  1 - The residual is outside the supported subset
  2 - Command error (missing flags, unreachable server, etc.)

Examples:
  partialsql compile --query 'data.partial.goals.allow == true' --input user.json
  partialsql compile --config partialsql.cue --input user.json --params`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "policy query to partially evaluate")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "security context JSON file (required)")
	cmd.Flags().StringVar(&opts.OPAURL, "opa-url", "", "OPA base URL (default "+opa.DefaultBaseURL+")")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "request timeout (default 10s)")
	cmd.Flags().BoolVar(&opts.Params, "params", false, "emit $n placeholders with bound values")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "record the translation in this SQLite audit log")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.config()

	query := firstNonEmpty(opts.Query, cfg.Query)
	if query == "" {
		return commandError(formatter, ErrCodeGeneric, "a query is required (--query or config query)", nil)
	}

	input, err := opa.LoadSecurityContext(opts.Input)
	if err != nil {
		return commandError(formatter, ErrCodeInput, "reading security context", err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = cfg.Timeout()
	}
	var clientOpts []opa.Option
	if timeout > 0 {
		clientOpts = append(clientOpts, opa.WithTimeout(timeout))
	}
	baseURL := firstNonEmpty(opts.OPAURL, cfg.OPAURL, opa.DefaultBaseURL)
	client := opa.New(baseURL, clientOpts...)

	formatter.VerboseLog("Compiling %q against %s", query, baseURL)
	payload, err := client.Compile(cmd.Context(), query, input)
	if err != nil {
		var statusErr *opa.StatusError
		if errors.As(err, &statusErr) {
			return commandError(formatter, ErrCodeRequest, "compile API rejected the request", err)
		}
		return commandError(formatter, ErrCodeRequest, "compile request failed", err)
	}

	auditDB := firstNonEmpty(opts.AuditDB, cfg.AuditDB)
	return finishTranslation(cmd.Context(), formatter, payload, query, opts.Params, auditDB)
}
