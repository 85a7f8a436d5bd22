package queryir

import (
	"errors"
	"fmt"
)

// ValidationCode categorizes IR validation failures.
type ValidationCode string

const (
	// CodeFieldPair: both operands of a Criterion are field references.
	CodeFieldPair ValidationCode = "FIELD_PAIR"

	// CodeConstantPair: both operands of a Criterion are constants.
	CodeConstantPair ValidationCode = "CONSTANT_PAIR"

	// CodeInvalidNode: a node is nil or carries an unknown catalogue value.
	CodeInvalidNode ValidationCode = "INVALID_NODE"
)

// ValidationError reports the first invariant violation found in the IR.
type ValidationError struct {
	Code    ValidationCode
	Path    string // e.g. "or[1].and[0].left"
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPairingError reports whether err is a field-pair or constant-pair
// violation. Uses errors.As to handle wrapped errors.
func IsPairingError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == CodeFieldPair || ve.Code == CodeConstantPair
	}
	return false
}

// Validate checks every Criterion of an OrCriteria.
//
// Validate is a pure function with no side effects.
func Validate(or OrCriteria) error {
	v := &validator{}
	for i, and := range or {
		for j, c := range and {
			v.path = fmt.Sprintf("or[%d].and[%d]", i, j)
			v.validateCriterion(c)
			if v.err != nil {
				return v.err
			}
		}
	}
	return nil
}

// ValidateCriterion checks a single Criterion.
func ValidateCriterion(c Criterion) error {
	v := &validator{}
	v.validateCriterion(c)
	if v.err != nil {
		return v.err
	}
	return nil
}

// validator stops at the first violation.
type validator struct {
	path string
	err  *ValidationError
}

func (v *validator) fail(code ValidationCode, at, format string, args ...any) {
	if v.err != nil {
		return
	}
	path := v.path
	if at != "" {
		if path != "" {
			path += "."
		}
		path += at
	}
	v.err = &ValidationError{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

func (v *validator) validateCriterion(c Criterion) {
	switch c.Operator {
	case Equals, NotEquals, InList, GreaterThan, LessThan:
	default:
		v.fail(CodeInvalidNode, "operator", "unknown comparison operator %s", c.Operator)
		return
	}

	v.validateOperand(c.Left, "left")
	v.validateOperand(c.Right, "right")
	if v.err != nil {
		return
	}

	_, leftField := c.Left.(EntityFieldReference)
	_, rightField := c.Right.(EntityFieldReference)
	if leftField && rightField {
		v.fail(CodeFieldPair, "", "cannot compare two field references: %v, %v", c.Left, c.Right)
		return
	}

	_, leftConst := c.Left.(Constant)
	_, rightConst := c.Right.(Constant)
	if leftConst && rightConst {
		v.fail(CodeConstantPair, "", "cannot compare two constants, the policy engine should have evaluated them: %v, %v", c.Left, c.Right)
	}
}

// validateOperand recursively validates an operand node.
func (v *validator) validateOperand(op Operand, at string) {
	switch o := op.(type) {
	case nil:
		v.fail(CodeInvalidNode, at, "nil operand")
	case EntityFieldReference:
		if o.Entity == "" || o.Field == "" {
			v.fail(CodeInvalidNode, at, "incomplete field reference %+v", o)
		}
	case FunctionCallOnFieldReference:
		switch o.Function {
		case Max, Sum, Sort, Count, Abs, Ceil:
		default:
			v.fail(CodeInvalidNode, at, "unknown unary function %s", o.Function)
			return
		}
		v.validateOperand(o.Field, at+".field")
	case InfixFunctionCallOnOperands:
		switch o.Function {
		case Plus, Minus, Mod, StartsWith:
		default:
			v.fail(CodeInvalidNode, at, "unknown binary function %s", o.Function)
			return
		}
		v.validateOperand(o.Left, at+".left")
		v.validateOperand(o.Right, at+".right")
	case StringValue, NumberValue, BooleanValue,
		StringArrayValue, NumberArrayValue, StringSetValue, NumberSetValue:
		// Constants carry no nested structure
	default:
		v.fail(CodeInvalidNode, at, "unknown operand type %T", op)
	}
}
