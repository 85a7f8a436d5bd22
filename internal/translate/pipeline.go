package translate

import (
	"github.com/roach88/partialsql/internal/ast"
	"github.com/roach88/partialsql/internal/querysql"
)

// Decode parses a compile-API response. Every failure is a KindDecode error.
func Decode(payload []byte) (*ast.CompileResult, error) {
	decision, err := ast.DecodeCompileResult(payload)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Message: "cannot decode compile result", Err: err}
	}
	return decision, nil
}

// ToSQL runs the whole pipeline: decode, translate, render.
//
// On failure the returned string is empty; a fragment is never produced for
// a residual that was only partly understood.
func ToSQL(payload []byte) (string, error) {
	decision, err := Decode(payload)
	if err != nil {
		return "", err
	}
	or, err := Translate(decision)
	if err != nil {
		return "", err
	}
	return querysql.Render(or), nil
}
