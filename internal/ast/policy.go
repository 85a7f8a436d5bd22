package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Terms is a one-or-more sequence of terms.
//
// The engine emits some fields either as a single term node or as a list of
// term nodes. Terms accepts both and always holds a slice.
type Terms []Term

// UnmarshalJSON implements json.Unmarshaler for Terms.
func (ts *Terms) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return decodeErrorf("terms: empty JSON value")
	}

	if trimmed[0] != '[' {
		t, err := UnmarshalTerm(trimmed)
		if err != nil {
			return err
		}
		*ts = Terms{t}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return decodeErrorf("terms: %v", err)
	}
	out := make(Terms, len(raw))
	for i, r := range raw {
		t, err := UnmarshalTerm(r)
		if err != nil {
			return fmt.Errorf("terms[%d]: %w", i, err)
		}
		out[i] = t
	}
	*ts = out
	return nil
}

// MarshalJSON implements json.Marshaler for Terms.
// Terms always encode as a list.
func (ts Terms) MarshalJSON() ([]byte, error) {
	if ts == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Term(ts))
}

// Expr is one expression of a body: an operator or builtin designator
// followed by its operands, or a single bare reference.
type Expr struct {
	Index int   `json:"index"`
	Terms Terms `json:"terms"`
}

// Body is a conjunction of expressions.
type Body []Expr

// PartialQueries is the residual of a partial evaluation: a disjunction of
// bodies, plus optional support modules.
type PartialQueries struct {
	Queries []Body   `json:"queries"`
	Support []Module `json:"support,omitempty"`
}

// CompileResult is the decoded response of the compile API.
type CompileResult struct {
	Result PartialQueries `json:"result"`
}

// Module is a compiled support module.
type Module struct {
	Package Package `json:"package"`
	Rules   []Rule  `json:"rules"`
}

// Package is the package clause of a support module.
type Package struct {
	Path Terms `json:"path"`
}

// Rule is a rule inside a support module.
// Default is nil when the rule carries no default value.
type Rule struct {
	Body    Body  `json:"body"`
	Default *bool `json:"default,omitempty"`
	Head    Head  `json:"head"`
}

// Head is the head of a support rule.
type Head struct {
	Name  string `json:"name"`
	Value Terms  `json:"value,omitempty"`
	Ref   Terms  `json:"ref,omitempty"`
}
