package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/partialsql/internal/store"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	AuditDB    string
	Digest     string
	FailedOnly bool
	Latest     bool
	Limit      int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recorded translations",
		Long: `List translations recorded in the SQLite audit log, oldest first.

Examples:
  partialsql log --audit-db audit.db
  partialsql log --audit-db audit.db --failed --format json
  partialsql log --audit-db audit.db --digest 3f1c...
  partialsql log --audit-db audit.db --digest 3f1c... --latest`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "path to the SQLite audit log")
	cmd.Flags().StringVar(&opts.Digest, "digest", "", "only translations of this payload digest")
	cmd.Flags().BoolVar(&opts.FailedOnly, "failed", false, "only failed translations")
	cmd.Flags().BoolVar(&opts.Latest, "latest", false, "only the most recent successful translation of --digest")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of records")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	path := firstNonEmpty(opts.AuditDB, opts.config().AuditDB)
	if path == "" {
		return commandError(formatter, ErrCodeGeneric, "an audit log is required (--audit-db or config audit_db)", nil)
	}

	if opts.Latest && opts.Digest == "" {
		return commandError(formatter, ErrCodeGeneric, "--latest requires --digest", nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return commandError(formatter, ErrCodeDatabase, "opening audit log", err)
	}
	defer st.Close()

	var records []store.Translation
	if opts.Latest {
		rec, err := st.LatestByDigest(cmd.Context(), opts.Digest)
		if errors.Is(err, store.ErrNotFound) {
			return commandError(formatter, ErrCodeNotFound, "no successful translation recorded", err)
		}
		if err != nil {
			return commandError(formatter, ErrCodeDatabase, "reading translation", err)
		}
		records = []store.Translation{rec}
	} else {
		records, err = st.List(cmd.Context(), store.ListOptions{
			Digest:     opts.Digest,
			FailedOnly: opts.FailedOnly,
			Limit:      opts.Limit,
		})
		if err != nil {
			return commandError(formatter, ErrCodeDatabase, "listing translations", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(records)
	}

	w := formatter.Writer
	if len(records) == 0 {
		fmt.Fprintln(w, "No translations recorded.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(w, "#%d %s %s\n", r.Seq, r.CreatedAt.Format(time.RFC3339), r.ID)
		if r.Query != "" {
			fmt.Fprintf(w, "  query:  %s\n", r.Query)
		}
		fmt.Fprintf(w, "  digest: %s\n", r.PayloadDigest)
		if r.Failed() {
			fmt.Fprintf(w, "  ✗ %s: %s\n", r.ErrorKind, r.ErrorMessage)
		} else {
			fmt.Fprintf(w, "  ✓ %s\n", r.WhereClause)
		}
	}
	return nil
}
