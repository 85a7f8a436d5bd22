package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/partialsql/internal/ast"
	"github.com/roach88/partialsql/internal/store"
	"github.com/roach88/partialsql/internal/translate"
)

// Harness runs cases and optionally records each run in an audit store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithStore records every run in s.
func WithStore(s *store.Store) Option {
	return func(h *Harness) {
		h.store = s
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes one case and compares the outcome with its expectations.
//
// Mismatches are reported in the Result, not as an error. The error return is
// reserved for cases that cannot run at all, such as an unreadable payload
// or a failed audit write.
func (h *Harness) Run(ctx context.Context, c *Case) (*Result, error) {
	payload, err := c.PayloadBytes()
	if err != nil {
		return nil, err
	}

	result := NewResult(c.Name)
	result.Digest = ast.PayloadDigest(payload)

	sql, err := translate.ToSQL(payload)
	if err != nil {
		kind, ok := translate.KindOf(err)
		if !ok {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		result.ErrorKind = string(kind)
	} else {
		result.SQL = sql
	}

	switch {
	case c.Expect.SQL != "":
		if result.ErrorKind != "" {
			result.AddError(fmt.Sprintf("expected sql %q, got error %s: %v", c.Expect.SQL, result.ErrorKind, err))
		} else if result.SQL != c.Expect.SQL {
			result.AddError(fmt.Sprintf("sql mismatch:\n  expected: %s\n  actual:   %s", c.Expect.SQL, result.SQL))
		}
	case c.Expect.Error != "":
		if result.ErrorKind == "" {
			result.AddError(fmt.Sprintf("expected error %s, got sql %q", c.Expect.Error, result.SQL))
		} else if result.ErrorKind != c.Expect.Error {
			result.AddError(fmt.Sprintf("expected error %s, got %s: %v", c.Expect.Error, result.ErrorKind, err))
		}
	}

	h.logger.Debug("case complete", "name", c.Name, "pass", result.Pass, "digest", result.Digest)

	if h.store != nil {
		rec := store.Translation{
			Query:         c.Query,
			PayloadDigest: result.Digest,
			WhereClause:   result.SQL,
			ErrorKind:     result.ErrorKind,
		}
		if err != nil {
			rec.ErrorMessage = err.Error()
		}
		if _, werr := h.store.Record(ctx, rec); werr != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, werr)
		}
	}

	return result, nil
}

// RunAll executes cases in order. It stops at the first case that cannot
// run; mismatches do not stop it.
func (h *Harness) RunAll(ctx context.Context, cases []*Case) ([]*Result, error) {
	results := make([]*Result, 0, len(cases))
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := h.Run(ctx, c)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Summary counts passing and failing results.
func Summary(results []*Result) (passed, failed int) {
	for _, r := range results {
		if r.Pass {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
