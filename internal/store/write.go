package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Translation is one audit record.
type Translation struct {
	ID            string    `json:"id"`
	Seq           int64     `json:"seq"`
	CreatedAt     time.Time `json:"created_at"`
	Query         string    `json:"query,omitempty"`
	PayloadDigest string    `json:"payload_digest"`
	WhereClause   string    `json:"where_clause,omitempty"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// Failed reports whether the translation produced no WHERE clause.
func (t Translation) Failed() bool {
	return t.ErrorKind != ""
}

// Record appends a translation and returns it with ID, Seq and CreatedAt
// filled in.
//
// An empty ID is generated. Seq is always assigned by the store as one past
// the highest existing seq. Uses ON CONFLICT(id) DO NOTHING for idempotency:
// recording a known id returns the stored record unchanged.
func (s *Store) Record(ctx context.Context, t Translation) (Translation, error) {
	if t.PayloadDigest == "" {
		return Translation{}, fmt.Errorf("record translation: payload digest is required")
	}
	if t.ID == "" {
		t.ID = s.newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	t.CreatedAt = t.CreatedAt.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Translation{}, fmt.Errorf("record translation: %w", err)
	}
	defer tx.Rollback()

	var maxSeq sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM translations`).Scan(&maxSeq); err != nil {
		return Translation{}, fmt.Errorf("record translation: read seq: %w", err)
	}
	t.Seq = maxSeq.Int64 + 1

	res, err := tx.ExecContext(ctx, `
		INSERT INTO translations
		(id, seq, created_at, query, payload_digest, where_clause, error_kind, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		t.ID,
		t.Seq,
		t.CreatedAt.Format(time.RFC3339Nano),
		t.Query,
		t.PayloadDigest,
		t.WhereClause,
		t.ErrorKind,
		t.ErrorMessage,
	)
	if err != nil {
		return Translation{}, fmt.Errorf("record translation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Translation{}, fmt.Errorf("record translation: commit: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Translation{}, fmt.Errorf("record translation: %w", err)
	}
	if n == 0 {
		return s.Get(ctx, t.ID)
	}
	return t, nil
}
