package queryir

// Operand is one side of a Criterion, or an argument of a function call.
//
// This is a sealed interface - only types in this package implement it.
//
// Operand types:
//   - EntityFieldReference: a column of the entity row
//   - FunctionCallOnFieldReference: a unary builtin applied to a column
//   - InfixFunctionCallOnOperands: a binary builtin over two operands
//   - Constant values (see Constant)
type Operand interface {
	operandNode() // Marker method - seals interface to this package
}

// Constant is an Operand whose value is known at translation time.
//
// Constant types:
//   - StringValue, NumberValue, BooleanValue
//   - StringArrayValue, NumberArrayValue
//   - StringSetValue, NumberSetValue
type Constant interface {
	Operand
	constantNode()
}

// EntityFieldReference names a column of the row being filtered.
//
// Translates to SQL:
//
//	entity.account_id
type EntityFieldReference struct {
	Entity string // Relation or alias name (e.g., "entity")
	Field  string // Column name (e.g., "account_id")
}

func (EntityFieldReference) operandNode() {}

// FunctionCallOnFieldReference applies a unary builtin to a column.
//
// Example:
//
//	FunctionCallOnFieldReference{
//	  Field:    EntityFieldReference{Entity: "entity", Field: "tags"},
//	  Function: Count,
//	}
//
// Translates to SQL:
//
//	cardinality(entity.tags)
type FunctionCallOnFieldReference struct {
	Field    EntityFieldReference
	Function UnaryFunction
}

func (FunctionCallOnFieldReference) operandNode() {}

// InfixFunctionCallOnOperands applies a binary builtin to two operands.
// Either operand may itself be an InfixFunctionCallOnOperands, which is how
// chained arithmetic such as (a + b) - c is represented.
type InfixFunctionCallOnOperands struct {
	Function BinaryFunction
	Left     Operand
	Right    Operand
}

func (InfixFunctionCallOnOperands) operandNode() {}

// StringValue is a string constant.
type StringValue string

func (StringValue) operandNode()  {}
func (StringValue) constantNode() {}

// NumberValue is a numeric constant, kept as the literal text the policy
// engine supplied (e.g., "456" or "4.50").
type NumberValue string

func (NumberValue) operandNode()  {}
func (NumberValue) constantNode() {}

// BooleanValue is a boolean constant.
type BooleanValue bool

func (BooleanValue) operandNode()  {}
func (BooleanValue) constantNode() {}

// StringArrayValue is an ordered list of string constants.
type StringArrayValue []string

func (StringArrayValue) operandNode()  {}
func (StringArrayValue) constantNode() {}

// NumberArrayValue is an ordered list of numeric constants (literal text).
type NumberArrayValue []NumberValue

func (NumberArrayValue) operandNode()  {}
func (NumberArrayValue) constantNode() {}

// StringSetValue is a duplicate-free collection of string constants.
// Equality against a set compares membership, not order.
type StringSetValue []string

func (StringSetValue) operandNode()  {}
func (StringSetValue) constantNode() {}

// NumberSetValue is a duplicate-free collection of numeric constants.
type NumberSetValue []NumberValue

func (NumberSetValue) operandNode()  {}
func (NumberSetValue) constantNode() {}

// IsSet reports whether op is a set-typed constant.
func IsSet(op Operand) bool {
	switch op.(type) {
	case StringSetValue, NumberSetValue:
		return true
	default:
		return false
	}
}

// Criterion compares two operands.
//
// Semantics:
//
//	<left> <operator> <right>
//
// Invariant: Left and Right are never both EntityFieldReference and never
// both Constant.
type Criterion struct {
	Operator ComparisonOperator
	Left     Operand
	Right    Operand
}

// AndCriteria is a conjunction of criteria. An empty AndCriteria is still a
// group: it renders as "()".
type AndCriteria []Criterion

// OrCriteria is a disjunction of AndCriteria. It is the final value the
// translator produces.
type OrCriteria []AndCriteria
