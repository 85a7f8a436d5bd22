package queryir

import "fmt"

// ComparisonOperator is the operator of a Criterion.
type ComparisonOperator int

const (
	Equals ComparisonOperator = iota + 1
	NotEquals
	InList
	GreaterThan
	LessThan
)

func (o ComparisonOperator) String() string {
	switch o {
	case Equals:
		return "EQUALS"
	case NotEquals:
		return "NOT_EQUALS"
	case InList:
		return "IN_LIST"
	case GreaterThan:
		return "GREATER_THAN"
	case LessThan:
		return "LESS_THAN"
	default:
		return fmt.Sprintf("ComparisonOperator(%d)", int(o))
	}
}

// UnaryFunction is a builtin taking one column argument.
type UnaryFunction int

const (
	Max UnaryFunction = iota + 1
	Sum
	Sort
	Count
	Abs
	Ceil
)

func (f UnaryFunction) String() string {
	switch f {
	case Max:
		return "MAX"
	case Sum:
		return "SUM"
	case Sort:
		return "SORT"
	case Count:
		return "COUNT"
	case Abs:
		return "ABS"
	case Ceil:
		return "CEIL"
	default:
		return fmt.Sprintf("UnaryFunction(%d)", int(f))
	}
}

// BinaryFunction is a builtin taking two operands.
type BinaryFunction int

const (
	Plus BinaryFunction = iota + 1
	Minus
	Mod
	StartsWith
)

func (f BinaryFunction) String() string {
	switch f {
	case Plus:
		return "PLUS"
	case Minus:
		return "MINUS"
	case Mod:
		return "MOD"
	case StartsWith:
		return "STARTS_WITH"
	default:
		return fmt.Sprintf("BinaryFunction(%d)", int(f))
	}
}

// Wire names used by the policy engine. Read-only after init.
var (
	comparisonOperators = map[string]ComparisonOperator{
		"internal": InList,
		"eq":       Equals,
		"neq":      NotEquals,
		"gt":       GreaterThan,
		"lt":       LessThan,
	}

	unaryFunctions = map[string]UnaryFunction{
		"max":   Max,
		"sum":   Sum,
		"sort":  Sort,
		"count": Count,
		"abs":   Abs,
		"ceil":  Ceil,
	}

	binaryFunctions = map[string]BinaryFunction{
		"plus":       Plus,
		"minus":      Minus,
		"rem":        Mod,
		"startswith": StartsWith,
	}
)

// LookupComparisonOperator resolves a wire name such as "eq".
func LookupComparisonOperator(name string) (ComparisonOperator, bool) {
	op, ok := comparisonOperators[name]
	return op, ok
}

// LookupUnaryFunction resolves a wire name such as "count".
func LookupUnaryFunction(name string) (UnaryFunction, bool) {
	fn, ok := unaryFunctions[name]
	return fn, ok
}

// LookupBinaryFunction resolves a wire name such as "plus".
func LookupBinaryFunction(name string) (BinaryFunction, bool) {
	fn, ok := binaryFunctions[name]
	return fn, ok
}
