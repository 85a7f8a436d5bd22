package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperand_SealedSwitch(t *testing.T) {
	field := EntityFieldReference{Entity: "entity", Field: "tags"}
	operands := []Operand{
		field,
		FunctionCallOnFieldReference{Field: field, Function: Count},
		InfixFunctionCallOnOperands{Function: Plus, Left: field, Right: NumberValue("1")},
		StringValue("a"),
		NumberValue("1"),
		BooleanValue(true),
		StringArrayValue{"a"},
		NumberArrayValue{"1"},
		StringSetValue{"a"},
		NumberSetValue{"1"},
	}

	for _, op := range operands {
		switch op.(type) {
		case EntityFieldReference, FunctionCallOnFieldReference, InfixFunctionCallOnOperands:
		case StringValue, NumberValue, BooleanValue:
		case StringArrayValue, NumberArrayValue, StringSetValue, NumberSetValue:
		default:
			t.Fatalf("unexpected operand type %T", op)
		}
	}
}

func TestConstant_Membership(t *testing.T) {
	constants := []Operand{
		StringValue("a"), NumberValue("1"), BooleanValue(false),
		StringArrayValue{}, NumberArrayValue{}, StringSetValue{}, NumberSetValue{},
	}
	for _, c := range constants {
		_, ok := c.(Constant)
		assert.True(t, ok, "%T should be a Constant", c)
	}

	nonConstants := []Operand{
		EntityFieldReference{Entity: "entity", Field: "f"},
		FunctionCallOnFieldReference{},
		InfixFunctionCallOnOperands{},
	}
	for _, op := range nonConstants {
		_, ok := op.(Constant)
		assert.False(t, ok, "%T should not be a Constant", op)
	}
}

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(StringSetValue{"a"}))
	assert.True(t, IsSet(NumberSetValue{"1"}))
	assert.False(t, IsSet(StringArrayValue{"a"}))
	assert.False(t, IsSet(NumberArrayValue{"1"}))
	assert.False(t, IsSet(EntityFieldReference{Entity: "entity", Field: "f"}))
}

func TestAndCriteria_EmptyIsGroup(t *testing.T) {
	or := OrCriteria{AndCriteria{}}
	assert.Len(t, or, 1)
	assert.Empty(t, or[0])
}
