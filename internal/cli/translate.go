package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/partialsql/internal/ast"
	"github.com/roach88/partialsql/internal/queryir"
	"github.com/roach88/partialsql/internal/querysql"
	"github.com/roach88/partialsql/internal/store"
	"github.com/roach88/partialsql/internal/translate"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Params  bool   // emit $n placeholders and bound values
	AuditDB string // path to the SQLite audit log
}

// TranslationOutput is the result of a successful translation.
type TranslationOutput struct {
	SQL      string `json:"sql"`
	Params   []any  `json:"params,omitempty"`
	Digest   string `json:"digest"`
	RecordID string `json:"record_id,omitempty"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate [payload-file]",
		Short: "Translate a compile API response to a WHERE clause",
		Long: `Translate the JSON response of the OPA compile API into a PostgreSQL
WHERE-clause fragment.

The payload is read from the named file, or from stdin when the file is
omitted or "-".

Exit codes:
  0 - Translation succeeded
  1 - The residual is outside the supported subset
  2 - Command error (unreadable input, audit log failure, etc.)

Examples:
  partialsql translate response.json
  opa eval ... | partialsql translate --params --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runTranslate(opts, path, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Params, "params", false, "emit $n placeholders with bound values")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "record the translation in this SQLite audit log")

	return cmd
}

func runTranslate(opts *TranslateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	payload, err := readPayload(path, cmd.InOrStdin())
	if err != nil {
		return commandError(formatter, ErrCodeInput, "reading payload", err)
	}
	formatter.VerboseLog("Read %d byte(s) from %s", len(payload), path)

	auditDB := firstNonEmpty(opts.AuditDB, opts.config().AuditDB)
	return finishTranslation(cmd.Context(), formatter, payload, "", opts.Params, auditDB)
}

// finishTranslation translates payload, records the outcome when auditDB is
// set, and writes the result.
func finishTranslation(ctx context.Context, formatter *OutputFormatter, payload []byte, query string, params bool, auditDB string) error {
	out, terr := translatePayload(payload, params)

	if auditDB != "" {
		id, err := recordTranslation(ctx, auditDB, query, out, terr)
		if err != nil {
			return commandError(formatter, ErrCodeDatabase, "recording translation", err)
		}
		out.RecordID = id
		formatter.VerboseLog("Recorded translation %s", id)
	}

	if terr != nil {
		return translationError(formatter, terr)
	}
	return outputTranslation(formatter, out)
}

// translatePayload runs decode, translate and render. Digest is set even
// on failure.
func translatePayload(payload []byte, params bool) (TranslationOutput, error) {
	out := TranslationOutput{Digest: ast.PayloadDigest(payload)}

	or, err := criteria(payload)
	if err != nil {
		return out, err
	}

	if !params {
		out.SQL = querysql.Render(or)
		return out, nil
	}

	sql, args, err := querysql.NewSQLCompiler().Compile(or)
	if err != nil {
		return out, err
	}
	out.SQL = sql
	out.Params = args
	return out, nil
}

// criteria decodes and translates a compile API response.
func criteria(payload []byte) (queryir.OrCriteria, error) {
	decision, err := translate.Decode(payload)
	if err != nil {
		return nil, err
	}
	return translate.Translate(decision)
}

// recordTranslation appends one audit record and returns its id.
func recordTranslation(ctx context.Context, path, query string, out TranslationOutput, terr error) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	rec := store.Translation{
		Query:         query,
		PayloadDigest: out.Digest,
		WhereClause:   out.SQL,
	}
	if terr != nil {
		kind, ok := translate.KindOf(terr)
		if !ok {
			// parameter binding failed after a successful translation
			kind = "BIND_ERROR"
		}
		rec.ErrorKind = string(kind)
		rec.ErrorMessage = terr.Error()
		rec.WhereClause = ""
	}

	saved, err := st.Record(ctx, rec)
	if err != nil {
		return "", err
	}
	slog.Debug("translation recorded", "id", saved.ID, "seq", saved.Seq, "failed", saved.Failed())
	return saved.ID, nil
}

func outputTranslation(formatter *OutputFormatter, out TranslationOutput) error {
	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	fmt.Fprintln(formatter.Writer, out.SQL)
	for i, p := range out.Params {
		fmt.Fprintf(formatter.Writer, "  $%d = %v\n", i+1, p)
	}
	return nil
}

// readPayload reads a file, or stdin for "-".
func readPayload(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
