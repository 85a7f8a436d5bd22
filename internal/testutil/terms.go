package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/partialsql/internal/ast"
)

// Op builds an operator or function designator such as eq or count.
func Op(name string) ast.Ref {
	return ast.Ref{ast.Var(name)}
}

// Internal builds an internal.<name> designator.
func Internal(name string) ast.Ref {
	return ast.Ref{ast.Var("internal"), ast.String(name)}
}

// Field builds input.<entity>.<field>.
func Field(entity, field string) ast.Ref {
	return ast.Ref{ast.Var("input"), ast.String(entity), ast.String(field)}
}

// Entity builds input.entity.<field>.
func Entity(field string) ast.Ref {
	return Field("entity", field)
}

// PolicyRef builds data.<pkg>.<module>.<rule>.
func PolicyRef(pkg, module, rule string) ast.Ref {
	return ast.Ref{ast.Var("data"), ast.String(pkg), ast.String(module), ast.String(rule)}
}

// Num builds a number term from its literal text.
func Num(literal string) ast.Number {
	return ast.Number(literal)
}

// Strs builds a list of string terms.
func Strs(values ...string) []ast.Term {
	terms := make([]ast.Term, len(values))
	for i, v := range values {
		terms[i] = ast.String(v)
	}
	return terms
}

// Nums builds a list of number terms.
func Nums(literals ...string) []ast.Term {
	terms := make([]ast.Term, len(literals))
	for i, v := range literals {
		terms[i] = ast.Number(v)
	}
	return terms
}

// Expr builds an expression. Index is assigned by Body.
func Expr(terms ...ast.Term) ast.Expr {
	return ast.Expr{Terms: ast.Terms(terms)}
}

// Body builds a conjunction, numbering its expressions.
func Body(exprs ...ast.Expr) ast.Body {
	body := make(ast.Body, len(exprs))
	for i, e := range exprs {
		e.Index = i
		body[i] = e
	}
	return body
}

// Result builds a compile result from bodies.
func Result(bodies ...ast.Body) *ast.CompileResult {
	queries := make([]ast.Body, len(bodies))
	copy(queries, bodies)
	return &ast.CompileResult{Result: ast.PartialQueries{Queries: queries}}
}

// Payload encodes a compile result as the compile API would send it.
func Payload(t testing.TB, result *ast.CompileResult) []byte {
	t.Helper()
	data, err := json.Marshal(normalize(result))
	require.NoError(t, err)
	return data
}

// normalize replaces nil slices that would encode as null where the wire
// format expects arrays.
func normalize(result *ast.CompileResult) *ast.CompileResult {
	out := *result
	out.Result.Queries = make([]ast.Body, len(result.Result.Queries))
	for i, body := range result.Result.Queries {
		if body == nil {
			body = ast.Body{}
		}
		out.Result.Queries[i] = body
	}
	if result.Result.Support != nil {
		out.Result.Support = make([]ast.Module, len(result.Result.Support))
		for i, m := range result.Result.Support {
			rules := make([]ast.Rule, len(m.Rules))
			for j, r := range m.Rules {
				if r.Body == nil {
					r.Body = ast.Body{}
				}
				rules[j] = r
			}
			m.Rules = rules
			if len(m.Package.Path) == 0 {
				m.Package.Path = ast.Terms{ast.Var("data"), ast.String("partial")}
			}
			out.Result.Support[i] = m
		}
	}
	return &out
}
