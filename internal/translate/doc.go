// Package translate lowers the residual of a partial evaluation into
// row-filter criteria.
//
// A compile result is a disjunction of bodies; each body is a conjunction of
// expressions. Every expression is one of three shapes:
//
//	[operator, left, right]          comparison, e.g. eq input.entity.id 5
//	[function, input1, input2, out]  binary function, function(input1, input2) == out
//	[ref]                            reference into another rule, dropped
//
// A comparison whose operator is a unary function name such as count is read
// as count(left) == right.
//
// ERRORS:
//
// Every failure is a *Error carrying an ErrorKind. Translation is
// all-or-nothing: if any expression is outside the supported subset, no
// criteria are returned.
//
//	_, err := translate.ToSQL(payload)
//	if translate.IsKind(err, translate.KindUnsupportedConstruct) {
//	    ...
//	}
package translate
