package translate

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes translation failures.
type ErrorKind string

const (
	// KindDecode: the payload does not match the compile result shape, or a
	// term carries an unrecognized discriminator.
	KindDecode ErrorKind = "DECODE_ERROR"

	// KindUnsupportedConstruct: a support block, an unsupported collection
	// element kind, or a var used as an operand.
	KindUnsupportedConstruct ErrorKind = "UNSUPPORTED_CONSTRUCT"

	// KindUnknownIdentifier: an operator or function name missing from the
	// catalogue.
	KindUnknownIdentifier ErrorKind = "UNKNOWN_IDENTIFIER"

	// KindInvalidOperandPairing: two field references, two constants, or a
	// unary function supplied in two positions.
	KindInvalidOperandPairing ErrorKind = "INVALID_OPERAND_PAIRING"

	// KindMalformedExpr: an expression whose term count or shape matches no
	// recognized pattern.
	KindMalformedExpr ErrorKind = "MALFORMED_EXPR"
)

// Error is returned for every failed translation. No partial output is ever
// produced alongside it.
type Error struct {
	// Kind identifies the failure category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Term is the offending term or identifier in policy notation, if any.
	Term string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Term != "" {
		msg += fmt.Sprintf(" (term: %s)", e.Term)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a translation error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) (ErrorKind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a translation error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func errorf(kind ErrorKind, term string, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Term: term}
}
