package cli

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	_ "github.com/lib/pq" // registers the "postgres" driver
	"github.com/spf13/cobra"

	"github.com/roach88/partialsql/internal/rowquery"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DSN     string
	Table   string
	Columns []string
	Alias   string
	OrderBy string
	Limit   int

	// OpenDB allows overriding how the database is opened (for testing).
	// If nil, defaults to sql.Open("postgres", dsn).
	OpenDB func(dsn string) (*sql.DB, error)
}

// QueryResult holds the rows a query returned.
type QueryResult struct {
	Table string         `json:"table"`
	Rows  []rowquery.Row `json:"rows"`
	Count int            `json:"count"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return newQueryCommand(&QueryOptions{RootOptions: rootOpts})
}

func newQueryCommand(opts *QueryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [payload-file]",
		Short: "Read the rows a residual allows from PostgreSQL",
		Long: `Translate a compile API response and use it to filter a PostgreSQL table.

Constants are bound as parameters. A residual with no bodies admits no rows;
a residual with an unconditional body admits every row.

Examples:
  partialsql query response.json --dsn postgres://localhost/app --table goals
  partialsql query response.json --config partialsql.cue --columns id,title --limit 10`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runQuery(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "PostgreSQL connection string")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table to read")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "columns to select (default all)")
	cmd.Flags().StringVar(&opts.Alias, "alias", "", "table alias field references use (default "+rowquery.DefaultAlias+")")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", "column to order rows by")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rows")

	return cmd
}

func runQuery(opts *QueryOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.config()

	dsn := firstNonEmpty(opts.DSN, cfg.PostgresDSN)
	if dsn == "" {
		return commandError(formatter, ErrCodeGeneric, "a connection string is required (--dsn or config postgres_dsn)", nil)
	}
	columns := opts.Columns
	if len(columns) == 0 {
		columns = cfg.Columns
	}
	q := rowquery.Query{
		Table:   firstNonEmpty(opts.Table, cfg.Table),
		Columns: columns,
		Alias:   firstNonEmpty(opts.Alias, cfg.EntityAlias),
		OrderBy: opts.OrderBy,
		Limit:   opts.Limit,
	}

	payload, err := readPayload(path, cmd.InOrStdin())
	if err != nil {
		return commandError(formatter, ErrCodeInput, "reading payload", err)
	}
	q.Where, err = criteria(payload)
	if err != nil {
		return translationError(formatter, err)
	}

	open := opts.OpenDB
	if open == nil {
		open = func(dsn string) (*sql.DB, error) { return sql.Open("postgres", dsn) }
	}
	db, err := open(dsn)
	if err != nil {
		return commandError(formatter, ErrCodeDatabase, "opening database", err)
	}
	defer db.Close()

	rows, err := rowquery.NewRunner(db).Run(cmd.Context(), q)
	if err != nil {
		return commandError(formatter, ErrCodeDatabase, "running query", err)
	}
	if rows == nil {
		rows = []rowquery.Row{}
	}
	formatter.VerboseLog("Read %d row(s) from %s", len(rows), q.Table)

	result := QueryResult{Table: q.Table, Rows: rows, Count: len(rows)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputRowsText(formatter, q.Columns, rows)
}

// outputRowsText writes rows as an aligned table. Without explicit columns
// the header is the sorted union of row keys.
func outputRowsText(formatter *OutputFormatter, columns []string, rows []rowquery.Row) error {
	if len(columns) == 0 {
		seen := map[string]bool{}
		for _, row := range rows {
			for k := range row {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
		sort.Strings(columns)
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	if len(columns) > 0 {
		fmt.Fprintln(w, strings.Join(columns, "\t"))
	}
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = fmt.Sprint(row[c])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "(%d row(s))\n", len(rows))
	return nil
}
