// Package querysql lowers row-filter criteria to PostgreSQL WHERE-clause
// fragments.
package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/roach88/partialsql/internal/queryir"
)

// Render converts row-filter criteria to a PostgreSQL WHERE-clause fragment
// with constants written inline.
//
// The result is always parenthesized at both levels, even for a single
// group or an empty one:
//
//	OrCriteria{AndCriteria{c1, c2}}  →  ((c1 AND c2))
//	OrCriteria{AndCriteria{}}        →  (())
//	OrCriteria{}                     →  ()
//
// Render has no failure modes: the translator only produces IR that passes
// queryir.Validate.
func Render(or queryir.OrCriteria) string {
	r := &renderer{bind: literal}
	return r.or(or)
}

// SQLCompiler compiles criteria to a fragment with $n placeholders for
// PostgreSQL drivers.
//
// CRITICAL: Constants are NEVER interpolated - always bound as parameters.
// Arrays and sets are bound through pq.Array.
type SQLCompiler struct {
	// Offset is the number of placeholders already used by the enclosing
	// statement. The first constant binds to $(Offset+1).
	Offset int
}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts criteria to a parameterized fragment.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(or queryir.OrCriteria) (string, []any, error) {
	if err := queryir.Validate(or); err != nil {
		return "", nil, fmt.Errorf("invalid criteria: %w", err)
	}

	p := &parameters{next: c.Offset + 1}
	r := &renderer{bind: p.bind}
	sql := r.or(or)
	if p.err != nil {
		return "", nil, fmt.Errorf("bind parameter: %w", p.err)
	}
	return sql, p.args, nil
}

// renderer walks the IR. bind turns a constant into SQL text: either the
// literal itself or a placeholder.
type renderer struct {
	bind func(queryir.Constant) string
}

func (r *renderer) or(or queryir.OrCriteria) string {
	parts := make([]string, len(or))
	for i, and := range or {
		parts[i] = r.and(and)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func (r *renderer) and(and queryir.AndCriteria) string {
	parts := make([]string, len(and))
	for i, c := range and {
		parts[i] = r.criterion(c)
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

func (r *renderer) criterion(c queryir.Criterion) string {
	switch c.Operator {
	case queryir.Equals:
		// Set equality is symmetric containment, never array equality.
		if queryir.IsSet(c.Right) {
			return containment(r.operand(c.Left), r.operand(c.Right))
		}
		if queryir.IsSet(c.Left) {
			return containment(r.operand(c.Right), r.operand(c.Left))
		}
		return r.operand(c.Left) + " = " + r.operand(c.Right)
	case queryir.NotEquals:
		return r.operand(c.Left) + " != " + r.operand(c.Right)
	case queryir.InList:
		return r.operand(c.Left) + " = ANY(" + r.operand(c.Right) + ")"
	case queryir.GreaterThan:
		return r.operand(c.Left) + " > " + r.operand(c.Right)
	case queryir.LessThan:
		return r.operand(c.Left) + " < " + r.operand(c.Right)
	default:
		panic(fmt.Sprintf("querysql: unknown comparison operator %s", c.Operator))
	}
}

// containment renders set once, so a bound set appears as one placeholder
// used twice.
func containment(field, set string) string {
	return field + " @> " + set + " AND " + field + " <@ " + set
}

func (r *renderer) operand(op queryir.Operand) string {
	switch o := op.(type) {
	case queryir.EntityFieldReference:
		return fieldSQL(o)
	case queryir.FunctionCallOnFieldReference:
		return unarySQL(o.Function, fieldSQL(o.Field))
	case queryir.InfixFunctionCallOnOperands:
		return binarySQL(o.Function, r.nested(o.Left), r.nested(o.Right))
	case queryir.Constant:
		return r.bind(o)
	default:
		panic(fmt.Sprintf("querysql: unknown operand type %T", op))
	}
}

// nested renders an argument of a binary function. Nested arithmetic is
// parenthesized so that a - (b + c) keeps its grouping.
func (r *renderer) nested(op queryir.Operand) string {
	inner, ok := op.(queryir.InfixFunctionCallOnOperands)
	if !ok || inner.Function == queryir.StartsWith {
		return r.operand(op)
	}
	return "(" + r.operand(op) + ")"
}

func fieldSQL(f queryir.EntityFieldReference) string {
	return f.Entity + "." + f.Field
}

func unarySQL(fn queryir.UnaryFunction, field string) string {
	switch fn {
	case queryir.Max:
		return "(SELECT MAX(val) FROM unnest(" + field + ") AS t(val))"
	case queryir.Sum:
		return "(SELECT SUM(val) FROM unnest(" + field + ") AS t(val))"
	case queryir.Sort:
		return "ARRAY(SELECT val FROM unnest(" + field + ") AS t(val) ORDER BY val)"
	case queryir.Count:
		return "cardinality(" + field + ")"
	case queryir.Abs:
		return "abs(" + field + ")"
	case queryir.Ceil:
		return "ceil(" + field + ")"
	default:
		panic(fmt.Sprintf("querysql: unknown unary function %s", fn))
	}
}

func binarySQL(fn queryir.BinaryFunction, left, right string) string {
	switch fn {
	case queryir.Plus:
		return left + " + " + right
	case queryir.Minus:
		return left + " - " + right
	case queryir.Mod:
		return left + " % " + right
	case queryir.StartsWith:
		// left is the tested string, right the prefix
		return "starts_with(" + left + ", " + right + ")"
	default:
		panic(fmt.Sprintf("querysql: unknown binary function %s", fn))
	}
}

// literal writes a constant inline.
func literal(c queryir.Constant) string {
	switch v := c.(type) {
	case queryir.StringValue:
		return quote(string(v))
	case queryir.NumberValue:
		return string(v)
	case queryir.BooleanValue:
		return strings.ToUpper(strconv.FormatBool(bool(v)))
	case queryir.StringArrayValue:
		return stringArray(v)
	case queryir.StringSetValue:
		return stringArray(v)
	case queryir.NumberArrayValue:
		return numberArray(v)
	case queryir.NumberSetValue:
		return numberArray(v)
	default:
		panic(fmt.Sprintf("querysql: unknown constant type %T", c))
	}
}

// quote single-quotes s, doubling embedded quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func stringArray(values []string) string {
	parts := make([]string, len(values))
	for i, s := range values {
		parts[i] = quote(s)
	}
	return "ARRAY[" + strings.Join(parts, ", ") + "]"
}

func numberArray(values []queryir.NumberValue) string {
	parts := make([]string, len(values))
	for i, n := range values {
		parts[i] = string(n)
	}
	return "ARRAY[" + strings.Join(parts, ", ") + "]"
}

// parameters collects bound values in placeholder order.
type parameters struct {
	next int
	args []any
	err  error
}

func (p *parameters) bind(c queryir.Constant) string {
	value, err := constantToParam(c)
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return "NULL"
	}
	p.args = append(p.args, value)
	placeholder := "$" + strconv.Itoa(p.next)
	p.next++
	return placeholder
}

// constantToParam converts a constant to a database/sql parameter value.
// Numbers bind as int64 when every value is integral, float64 otherwise.
func constantToParam(c queryir.Constant) (any, error) {
	switch v := c.(type) {
	case queryir.StringValue:
		return string(v), nil
	case queryir.NumberValue:
		return numberParam(v)
	case queryir.BooleanValue:
		return bool(v), nil
	case queryir.StringArrayValue:
		return pq.Array([]string(v)), nil
	case queryir.StringSetValue:
		return pq.Array([]string(v)), nil
	case queryir.NumberArrayValue:
		return numberArrayParam(v)
	case queryir.NumberSetValue:
		return numberArrayParam(v)
	default:
		return nil, fmt.Errorf("unsupported constant type for SQL parameter: %T", c)
	}
}

func isIntegral(n queryir.NumberValue) bool {
	return !strings.ContainsAny(string(n), ".eE")
}

func numberParam(n queryir.NumberValue) (any, error) {
	if isIntegral(n) {
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("number %s out of int64 range: %w", n, err)
		}
		return i, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return nil, fmt.Errorf("number %s: %w", n, err)
	}
	return f, nil
}

func numberArrayParam(values []queryir.NumberValue) (any, error) {
	integral := true
	for _, n := range values {
		if !isIntegral(n) {
			integral = false
			break
		}
	}

	if integral {
		ints := make([]int64, len(values))
		for i, n := range values {
			v, err := strconv.ParseInt(string(n), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: number %s out of int64 range: %w", i, n, err)
			}
			ints[i] = v
		}
		return pq.Array(ints), nil
	}

	floats := make([]float64, len(values))
	for i, n := range values {
		v, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: number %s: %w", i, n, err)
		}
		floats[i] = v
	}
	return pq.Array(floats), nil
}
