// Package rowquery runs an authorization filter against a PostgreSQL table.
//
// The filter comes from translated criteria. Constants are bound as
// parameters, never spliced into the statement:
//
//	SELECT "id", "title" FROM "goals" AS entity WHERE ((entity.account_id = $1)) ORDER BY "id"
package rowquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/roach88/partialsql/internal/queryir"
	"github.com/roach88/partialsql/internal/querysql"
)

// DefaultAlias is the table alias field references are qualified with.
const DefaultAlias = "entity"

// ErrInvalidQuery is wrapped by every Build failure.
var ErrInvalidQuery = errors.New("invalid row query")

var aliasPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Query describes a filtered read of one table.
type Query struct {
	// Table is the table name. It is quoted as an identifier.
	Table string

	// Columns are the selected columns. Empty selects every column.
	Columns []string

	// Alias qualifies field references in Where. Empty means DefaultAlias.
	Alias string

	// Where is the authorization filter.
	Where queryir.OrCriteria

	// OrderBy is an optional column for deterministic ordering.
	OrderBy string

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// Row is one result row keyed by column name.
type Row map[string]any

// Build renders q as a parameterized statement.
//
// An empty disjunction admits no rows and becomes FALSE. A disjunction with
// an empty conjunction admits every row and becomes TRUE.
func Build(q Query) (string, []any, error) {
	if q.Table == "" {
		return "", nil, fmt.Errorf("%w: table is required", ErrInvalidQuery)
	}
	alias := q.Alias
	if alias == "" {
		alias = DefaultAlias
	}
	if !aliasPattern.MatchString(alias) {
		return "", nil, fmt.Errorf("%w: alias %q is not a plain identifier", ErrInvalidQuery, alias)
	}
	if err := checkEntities(q.Where, alias); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		sb.WriteString(alias + ".*")
	} else {
		cols := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			if c == "" {
				return "", nil, fmt.Errorf("%w: empty column name at %d", ErrInvalidQuery, i)
			}
			cols[i] = pq.QuoteIdentifier(c)
		}
		sb.WriteString(strings.Join(cols, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(pq.QuoteIdentifier(q.Table))
	sb.WriteString(" AS ")
	sb.WriteString(alias)

	where, args, err := whereClause(q.Where)
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(where)

	if q.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(pq.QuoteIdentifier(q.OrderBy))
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(q.Limit))
	}
	return sb.String(), args, nil
}

func whereClause(or queryir.OrCriteria) (string, []any, error) {
	if len(or) == 0 {
		return "FALSE", nil, nil
	}
	for _, and := range or {
		if len(and) == 0 {
			return "TRUE", nil, nil
		}
	}
	sql, args, err := querysql.NewSQLCompiler().Compile(or)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return sql, args, nil
}

// checkEntities requires every field reference to use the table alias, so
// the fragment cannot reach another relation.
func checkEntities(or queryir.OrCriteria, alias string) error {
	var check func(op queryir.Operand) error
	check = func(op queryir.Operand) error {
		switch o := op.(type) {
		case queryir.EntityFieldReference:
			if o.Entity != alias {
				return fmt.Errorf("%w: field %s.%s does not reference %s", ErrInvalidQuery, o.Entity, o.Field, alias)
			}
			if !aliasPattern.MatchString(o.Field) {
				return fmt.Errorf("%w: field %q is not a plain identifier", ErrInvalidQuery, o.Field)
			}
		case queryir.FunctionCallOnFieldReference:
			return check(o.Field)
		case queryir.InfixFunctionCallOnOperands:
			if err := check(o.Left); err != nil {
				return err
			}
			return check(o.Right)
		}
		return nil
	}

	for _, and := range or {
		for _, c := range and {
			if err := check(c.Left); err != nil {
				return err
			}
			if err := check(c.Right); err != nil {
				return err
			}
		}
	}
	return nil
}

// Runner executes row queries.
type Runner struct {
	db *sql.DB
}

// NewRunner creates a Runner over an open database handle.
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

// Run builds and executes q, returning every matching row.
func (r *Runner) Run(ctx context.Context, q Query) ([]Row, error) {
	stmt, args, err := Build(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
