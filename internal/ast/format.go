package ast

import (
	"regexp"
	"strconv"
	"strings"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Format renders a term in policy-language notation for diagnostics,
// e.g. input.entity.account_id, count(input.entity.tags) or {"a", "b"}.
func Format(t Term) string {
	var sb strings.Builder
	writeTerm(&sb, t)
	return sb.String()
}

// FormatTerms renders a term sequence separated by spaces.
func FormatTerms(ts []Term) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = Format(t)
	}
	return strings.Join(parts, " ")
}

func writeTerm(sb *strings.Builder, t Term) {
	switch v := t.(type) {
	case Ref:
		for i, elem := range v {
			if i == 0 {
				writeTerm(sb, elem)
				continue
			}
			if s, ok := elem.(String); ok && identifier.MatchString(string(s)) {
				sb.WriteByte('.')
				sb.WriteString(string(s))
				continue
			}
			sb.WriteByte('[')
			writeTerm(sb, elem)
			sb.WriteByte(']')
		}
	case Var:
		sb.WriteString(string(v))
	case String:
		sb.WriteString(strconv.Quote(string(v)))
	case Number:
		sb.WriteString(string(v))
	case Boolean:
		sb.WriteString(strconv.FormatBool(bool(v)))
	case Array:
		writeList(sb, "[", "]", v)
	case Set:
		writeList(sb, "{", "}", v)
	case Call:
		if len(v) == 0 {
			sb.WriteString("call()")
			return
		}
		writeTerm(sb, v[0])
		writeList(sb, "(", ")", v[1:])
	case nil:
		sb.WriteString("<nil>")
	}
}

func writeList(sb *strings.Builder, open, close string, elems []Term) {
	sb.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeTerm(sb, e)
	}
	sb.WriteString(close)
}
