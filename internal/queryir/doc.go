// Package queryir provides the row-filter intermediate representation that
// sits between decoded policy residuals and SQL.
//
// ARCHITECTURE:
//
//	[compile result] → [ast terms] → [Query IR] → [SQL fragment]
//
// The IR is deliberately small. A filter is an OrCriteria: a disjunction of
// AndCriteria, each a conjunction of Criterion values. A Criterion compares
// two operands with one ComparisonOperator.
//
// SEALED INTERFACES:
//
// Operand and Constant are sealed interfaces using the marker method pattern.
// Only types in this package implement them, so backends can switch
// exhaustively:
//
//	switch op := operand.(type) {
//	case EntityFieldReference:
//	case FunctionCallOnFieldReference:
//	case InfixFunctionCallOnOperands:
//	case StringValue, NumberValue, BooleanValue:
//	case StringArrayValue, NumberArrayValue:
//	case StringSetValue, NumberSetValue:
//	}
//
// CATALOGUE:
//
// ComparisonOperator, UnaryFunction and BinaryFunction are closed sets. Their
// wire names are held in package-level tables that are never written after
// initialization, so lookups are safe from any goroutine.
//
// PAIRING RULES:
//
// A Criterion never compares two entity field references (no column-to-column
// predicates) and never compares two constants (the policy engine folds
// those itself; seeing one means the residual was not understood).
// ValidateCriterion and Validate enforce both.
package queryir
