package translate

import (
	"github.com/roach88/partialsql/internal/ast"
	"github.com/roach88/partialsql/internal/queryir"
)

// pendingUnary is a unary function found in operator position. It is carried
// into operand parsing and applied to the left operand once that is known.
type pendingUnary struct {
	fn  queryir.UnaryFunction
	set bool
}

var noPending = pendingUnary{}

// dataSourceInput is the root of every entity field reference.
const dataSourceInput = "input"

// parseOperator resolves the first term of a three-term expression.
func parseOperator(t ast.Term) (queryir.ComparisonOperator, pendingUnary, error) {
	name, err := designatorName(t, false)
	if err != nil {
		return 0, noPending, err
	}

	if op, ok := queryir.LookupComparisonOperator(name); ok {
		return op, noPending, nil
	}
	if fn, ok := queryir.LookupUnaryFunction(name); ok {
		return queryir.Equals, pendingUnary{fn: fn, set: true}, nil
	}
	return 0, noPending, errorf(KindUnknownIdentifier, name, "unrecognized operator or unary function %q", name)
}

func parseUnaryFunction(t ast.Term) (queryir.UnaryFunction, error) {
	name, err := designatorName(t, true)
	if err != nil {
		return 0, err
	}
	fn, ok := queryir.LookupUnaryFunction(name)
	if !ok {
		return 0, errorf(KindUnknownIdentifier, name, "unrecognized unary function %q", name)
	}
	return fn, nil
}

func parseBinaryFunction(t ast.Term) (queryir.BinaryFunction, error) {
	name, err := designatorName(t, true)
	if err != nil {
		return 0, err
	}
	fn, ok := queryir.LookupBinaryFunction(name)
	if !ok {
		return 0, errorf(KindUnknownIdentifier, name, "unrecognized binary function %q", name)
	}
	return fn, nil
}

// designatorName extracts the name from a ref designator such as eq or
// internal.member_2. Function designators must be a single var.
func designatorName(t ast.Term, single bool) (string, error) {
	ref, ok := t.(ast.Ref)
	if !ok {
		return "", errorf(KindMalformedExpr, ast.Format(t), "operators and functions must be ref terms, found %s", ast.Kind(t))
	}
	if len(ref) == 0 || (single && len(ref) != 1) {
		return "", errorf(KindMalformedExpr, ast.Format(t), "unexpected designator shape of %d elements", len(ref))
	}
	head, ok := ref[0].(ast.Var)
	if !ok {
		return "", errorf(KindMalformedExpr, ast.Format(t), "designator must start with a var, found %s", ast.Kind(ref[0]))
	}
	return string(head), nil
}

// parseOperand classifies a term as an IR operand. A pending unary function
// may only be applied to a field reference.
func parseOperand(t ast.Term, pending pendingUnary) (queryir.Operand, error) {
	switch v := t.(type) {
	case ast.Ref:
		field, err := parseFieldReference(v)
		if err != nil {
			return nil, err
		}
		if pending.set {
			return queryir.FunctionCallOnFieldReference{Field: field, Function: pending.fn}, nil
		}
		return field, nil

	case ast.Call:
		return parseCall(v, pending)

	case ast.String:
		if err := rejectPending(t, pending); err != nil {
			return nil, err
		}
		return queryir.StringValue(v), nil

	case ast.Number:
		if err := rejectPending(t, pending); err != nil {
			return nil, err
		}
		return queryir.NumberValue(v), nil

	case ast.Boolean:
		if err := rejectPending(t, pending); err != nil {
			return nil, err
		}
		return queryir.BooleanValue(v), nil

	case ast.Array:
		if err := rejectPending(t, pending); err != nil {
			return nil, err
		}
		return parseCollection(v, []ast.Term(v), false)

	case ast.Set:
		if err := rejectPending(t, pending); err != nil {
			return nil, err
		}
		return parseCollection(v, []ast.Term(v), true)

	case ast.Var:
		return nil, errorf(KindUnsupportedConstruct, ast.Format(t), "operand cannot be a var term")

	default:
		return nil, errorf(KindMalformedExpr, ast.Format(t), "unexpected operand term %T", t)
	}
}

func rejectPending(t ast.Term, pending pendingUnary) error {
	if !pending.set {
		return nil
	}
	return errorf(KindUnsupportedConstruct, ast.Format(t),
		"unary function %s can only apply to a field reference, found %s", pending.fn, ast.Kind(t))
}

// parseCall handles the two call shapes: [unary, field] and
// [binary, left, right]. Binary calls nest to any depth.
func parseCall(call ast.Call, pending pendingUnary) (queryir.Operand, error) {
	switch len(call) {
	case 2:
		if pending.set {
			return nil, errorf(KindInvalidOperandPairing, ast.Format(call),
				"unary function %s supplied both in operator position and as a call", pending.fn)
		}
		fn, err := parseUnaryFunction(call[0])
		if err != nil {
			return nil, err
		}
		ref, ok := call[1].(ast.Ref)
		if !ok {
			return nil, errorf(KindUnsupportedConstruct, ast.Format(call),
				"unary function argument must be a field reference, found %s", ast.Kind(call[1]))
		}
		field, err := parseFieldReference(ref)
		if err != nil {
			return nil, err
		}
		return queryir.FunctionCallOnFieldReference{Field: field, Function: fn}, nil

	case 3:
		if pending.set {
			return nil, errorf(KindUnsupportedConstruct, ast.Format(call),
				"unary function %s can only apply to a field reference, found a binary call", pending.fn)
		}
		fn, err := parseBinaryFunction(call[0])
		if err != nil {
			return nil, err
		}
		left, err := parseOperand(call[1], noPending)
		if err != nil {
			return nil, err
		}
		right, err := parseOperand(call[2], noPending)
		if err != nil {
			return nil, err
		}
		return queryir.InfixFunctionCallOnOperands{Function: fn, Left: left, Right: right}, nil

	default:
		return nil, errorf(KindMalformedExpr, ast.Format(call), "unexpected call of %d terms", len(call))
	}
}

// parseFieldReference accepts exactly input.<entity>.<field>.
func parseFieldReference(ref ast.Ref) (queryir.EntityFieldReference, error) {
	if len(ref) != 3 {
		return queryir.EntityFieldReference{}, errorf(KindMalformedExpr, ast.Format(ref),
			"field reference must have 3 elements, has %d", len(ref))
	}
	source, ok := ref[0].(ast.Var)
	if !ok || source != dataSourceInput {
		return queryir.EntityFieldReference{}, errorf(KindUnsupportedConstruct, ast.Format(ref),
			"unknown data source %s", ast.Format(ref[0]))
	}
	entity, ok := ref[1].(ast.String)
	if !ok {
		return queryir.EntityFieldReference{}, errorf(KindMalformedExpr, ast.Format(ref),
			"entity must be a string, found %s", ast.Kind(ref[1]))
	}
	field, ok := ref[2].(ast.String)
	if !ok {
		return queryir.EntityFieldReference{}, errorf(KindMalformedExpr, ast.Format(ref),
			"field must be a string, found %s", ast.Kind(ref[2]))
	}
	return queryir.EntityFieldReference{Entity: string(entity), Field: string(field)}, nil
}

// parseCollection types an array or set constant by its first element.
func parseCollection(t ast.Term, elems []ast.Term, set bool) (queryir.Operand, error) {
	kind := ast.KindArray
	if set {
		kind = ast.KindSet
	}
	if len(elems) == 0 {
		return nil, errorf(KindUnsupportedConstruct, ast.Format(t), "cannot determine element type of an empty %s", kind)
	}

	switch elems[0].(type) {
	case ast.String:
		values := make([]string, len(elems))
		for i, e := range elems {
			s, ok := e.(ast.String)
			if !ok {
				return nil, errorf(KindUnsupportedConstruct, ast.Format(t), "mixed element kinds in %s", kind)
			}
			values[i] = string(s)
		}
		if set {
			return queryir.StringSetValue(values), nil
		}
		return queryir.StringArrayValue(values), nil

	case ast.Number:
		values := make([]queryir.NumberValue, len(elems))
		for i, e := range elems {
			n, ok := e.(ast.Number)
			if !ok {
				return nil, errorf(KindUnsupportedConstruct, ast.Format(t), "mixed element kinds in %s", kind)
			}
			values[i] = queryir.NumberValue(n)
		}
		if set {
			return queryir.NumberSetValue(values), nil
		}
		return queryir.NumberArrayValue(values), nil

	case ast.Boolean:
		return nil, errorf(KindUnsupportedConstruct, ast.Format(t), "no valid scenario for a %s of booleans", kind)
	case ast.Ref:
		return nil, errorf(KindUnsupportedConstruct, ast.Format(t), "cannot match on a %s of references", kind)
	case ast.Array, ast.Set:
		return nil, errorf(KindUnsupportedConstruct, ast.Format(t), "nested collections are not supported")
	case ast.Var:
		return nil, errorf(KindUnsupportedConstruct, ast.Format(t), "cannot support a %s of vars", kind)
	case ast.Call:
		return nil, errorf(KindUnsupportedConstruct, ast.Format(t), "cannot support a %s of calls", kind)
	default:
		return nil, errorf(KindMalformedExpr, ast.Format(t), "unexpected element term %T", elems[0])
	}
}
