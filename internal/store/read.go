package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("translation not found")

const selectColumns = `id, seq, created_at, query, payload_digest, where_clause, error_kind, error_message`

// ListOptions filters List.
type ListOptions struct {
	// Digest restricts results to one payload digest.
	Digest string

	// FailedOnly restricts results to failed translations.
	FailedOnly bool

	// Limit caps the number of records. Zero means no limit.
	Limit int
}

// List returns records ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no records match.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Translation, error) {
	query := `SELECT ` + selectColumns + ` FROM translations WHERE 1 = 1`
	var args []any
	if opts.Digest != "" {
		query += ` AND payload_digest = ?`
		args = append(args, opts.Digest)
	}
	if opts.FailedOnly {
		query += ` AND error_kind != ''`
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	out := []Translation{}
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return out, nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (Translation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM translations WHERE id = ?`, id)
	t, err := scanTranslation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Translation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, err
}

// LatestByDigest returns the most recent successful translation of a payload.
func (s *Store) LatestByDigest(ctx context.Context, digest string) (Translation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM translations
		WHERE payload_digest = ? AND error_kind = ''
		ORDER BY seq DESC
		LIMIT 1
	`, digest)
	t, err := scanTranslation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Translation{}, fmt.Errorf("%w: digest %s", ErrNotFound, digest)
	}
	return t, err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTranslation(row scanner) (Translation, error) {
	var t Translation
	var createdAt string
	err := row.Scan(&t.ID, &t.Seq, &createdAt, &t.Query, &t.PayloadDigest, &t.WhereClause, &t.ErrorKind, &t.ErrorMessage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Translation{}, err
		}
		return Translation{}, fmt.Errorf("scan translation: %w", err)
	}
	t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Translation{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return t, nil
}
