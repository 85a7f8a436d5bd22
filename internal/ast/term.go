package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Term is a sealed interface representing one node of the engine's term
// grammar. Only Ref, Var, String, Number, Boolean, Array, Set and Call
// implement it.
type Term interface {
	term() // Sealed - only these types implement it
}

// Term kind discriminators as they appear in the "type" field.
const (
	KindRef     = "ref"
	KindVar     = "var"
	KindString  = "string"
	KindNumber  = "number"
	KindBoolean = "boolean"
	KindArray   = "array"
	KindSet     = "set"
	KindCall    = "call"
)

// Ref is a reference: a path such as input.entity.owner_id, or the
// designator of a builtin such as eq.
type Ref []Term

func (Ref) term() {}

// Var is a variable name. The head of a reference is usually a Var.
type Var string

func (Var) term() {}

// String is a string literal.
type String string

func (String) term() {}

// Number is a numeric literal. The literal text is kept as supplied so that
// integers and fractional values survive decoding unchanged.
type Number json.Number

func (Number) term() {}

// IsIntegral reports whether the literal has no fraction or exponent part.
func (n Number) IsIntegral() bool {
	return !bytes.ContainsAny([]byte(n), ".eE")
}

// Boolean is a boolean literal.
type Boolean bool

func (Boolean) term() {}

// Array is an ordered collection of terms of one kind.
type Array []Term

func (Array) term() {}

// Set is an unordered collection of unique terms of one kind.
// Decoding keeps the first occurrence of each element in wire order.
type Set []Term

func (Set) term() {}

// Call is a function call: the designator followed by its operands.
type Call []Term

func (Call) term() {}

// Kind returns the wire discriminator for t.
func Kind(t Term) string {
	switch t.(type) {
	case Ref:
		return KindRef
	case Var:
		return KindVar
	case String:
		return KindString
	case Number:
		return KindNumber
	case Boolean:
		return KindBoolean
	case Array:
		return KindArray
	case Set:
		return KindSet
	case Call:
		return KindCall
	default:
		return fmt.Sprintf("%T", t)
	}
}

// envelope is the wire shape of every term node.
type envelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// UnmarshalTerm decodes a single term node.
// The "type" field is read first and selects the payload shape.
func UnmarshalTerm(data []byte) (Term, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, decodeErrorf("term: %v", err)
	}
	if len(env.Value) == 0 {
		return nil, decodeErrorf("term %q: missing value", env.Type)
	}
	if bytes.Equal(bytes.TrimSpace(env.Value), []byte("null")) {
		return nil, decodeErrorf("term %q: null value", env.Type)
	}

	switch env.Type {
	case KindRef:
		elems, err := unmarshalTermList(env.Value, KindRef)
		if err != nil {
			return nil, err
		}
		return Ref(elems), nil

	case KindVar:
		var s string
		if err := json.Unmarshal(env.Value, &s); err != nil {
			return nil, decodeErrorf("var value: %v", err)
		}
		return Var(s), nil

	case KindString:
		var s string
		if err := json.Unmarshal(env.Value, &s); err != nil {
			return nil, decodeErrorf("string value: %v", err)
		}
		return String(s), nil

	case KindNumber:
		return unmarshalNumber(env.Value)

	case KindBoolean:
		var b bool
		if err := json.Unmarshal(env.Value, &b); err != nil {
			return nil, decodeErrorf("boolean value: %v", err)
		}
		return Boolean(b), nil

	case KindArray:
		elems, err := unmarshalTermList(env.Value, KindArray)
		if err != nil {
			return nil, err
		}
		return Array(elems), nil

	case KindSet:
		elems, err := unmarshalTermList(env.Value, KindSet)
		if err != nil {
			return nil, err
		}
		return Set(dedupe(elems)), nil

	case KindCall:
		elems, err := unmarshalTermList(env.Value, KindCall)
		if err != nil {
			return nil, err
		}
		return Call(elems), nil

	default:
		return nil, decodeErrorf("unrecognized term type %q", env.Type)
	}
}

// unmarshalNumber keeps the literal text of a JSON number.
func unmarshalNumber(data []byte) (Term, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, decodeErrorf("number value: %v", err)
	}
	n, ok := raw.(json.Number)
	if !ok {
		return nil, decodeErrorf("number value: expected JSON number, got %s", string(data))
	}
	return Number(n), nil
}

// unmarshalTermList decodes the list payload of ref, array, set and call.
func unmarshalTermList(data []byte, kind string) ([]Term, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, decodeErrorf("%s value: %v", kind, err)
	}

	elems := make([]Term, len(raw))
	for i, r := range raw {
		t, err := UnmarshalTerm(r)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		elems[i] = t
	}
	return elems, nil
}

// dedupe drops repeated set elements, keeping wire order.
func dedupe(elems []Term) []Term {
	seen := make(map[string]bool, len(elems))
	out := make([]Term, 0, len(elems))
	for _, e := range elems {
		key := Kind(e) + ":" + fmt.Sprint(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

// MarshalJSON implements json.Marshaler for Ref.
func (r Ref) MarshalJSON() ([]byte, error) { return marshalEnvelope(KindRef, []Term(r)) }

// MarshalJSON implements json.Marshaler for Var.
func (v Var) MarshalJSON() ([]byte, error) { return marshalEnvelope(KindVar, string(v)) }

// MarshalJSON implements json.Marshaler for String.
func (s String) MarshalJSON() ([]byte, error) { return marshalEnvelope(KindString, string(s)) }

// MarshalJSON implements json.Marshaler for Number.
func (n Number) MarshalJSON() ([]byte, error) { return marshalEnvelope(KindNumber, json.Number(n)) }

// MarshalJSON implements json.Marshaler for Boolean.
func (b Boolean) MarshalJSON() ([]byte, error) { return marshalEnvelope(KindBoolean, bool(b)) }

// MarshalJSON implements json.Marshaler for Array.
func (a Array) MarshalJSON() ([]byte, error) { return marshalEnvelope(KindArray, []Term(a)) }

// MarshalJSON implements json.Marshaler for Set.
func (s Set) MarshalJSON() ([]byte, error) { return marshalEnvelope(KindSet, []Term(s)) }

// MarshalJSON implements json.Marshaler for Call.
func (c Call) MarshalJSON() ([]byte, error) { return marshalEnvelope(KindCall, []Term(c)) }

func marshalEnvelope(kind string, value any) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal %s value: %w", kind, err)
	}
	return json.Marshal(envelope{Type: kind, Value: payload})
}
