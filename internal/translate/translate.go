package translate

import (
	"fmt"
	"log/slog"

	"github.com/roach88/partialsql/internal/ast"
	"github.com/roach88/partialsql/internal/queryir"
)

// Translate lowers a decoded compile result to row-filter criteria.
//
// Each body of the residual becomes one AndCriteria, in order; each
// expression of a body becomes at most one Criterion. Any expression outside
// the supported subset fails the whole translation.
//
// Translate is a pure function with no side effects beyond debug logging.
func Translate(decision *ast.CompileResult) (queryir.OrCriteria, error) {
	if decision == nil {
		return nil, errorf(KindDecode, "", "nil compile result")
	}
	if err := checkSupport(decision.Result.Support); err != nil {
		return nil, err
	}

	or := make(queryir.OrCriteria, 0, len(decision.Result.Queries))
	for i, body := range decision.Result.Queries {
		and := make(queryir.AndCriteria, 0, len(body))
		for j, expr := range body {
			c, ok, err := translateExpr(expr)
			if err != nil {
				return nil, fmt.Errorf("queries[%d][%d]: %w", i, j, err)
			}
			if ok {
				and = append(and, c)
			}
		}
		or = append(or, and)
	}
	return or, nil
}

// checkSupport rejects any support block. A rule declaring a default other
// than false is named in the error.
func checkSupport(support []ast.Module) error {
	if support == nil {
		return nil
	}
	for _, module := range support {
		for _, rule := range module.Rules {
			if rule.Default != nil && *rule.Default {
				return errorf(KindUnsupportedConstruct, rule.Head.Name,
					"support rule declares default value %t", *rule.Default)
			}
		}
	}
	return errorf(KindUnsupportedConstruct, "", "support modules are not supported (%d present)", len(support))
}

// translateExpr dispatches on the term count of an expression.
// ok is false when the expression contributes no Criterion.
func translateExpr(expr ast.Expr) (queryir.Criterion, bool, error) {
	switch len(expr.Terms) {
	case 3:
		c, err := translateComparison(expr.Terms)
		return c, err == nil, err
	case 4:
		c, err := translateInfixFunction(expr.Terms)
		return c, err == nil, err
	case 1:
		return queryir.Criterion{}, false, checkPolicyReference(expr.Terms[0])
	default:
		return queryir.Criterion{}, false, errorf(KindMalformedExpr, ast.FormatTerms(expr.Terms),
			"unexpected expression of %d terms", len(expr.Terms))
	}
}

// translateComparison handles [operator, left, right].
//
// An operator name outside the comparison table is read as a unary function
// applied to the left operand, compared for equality with the right operand:
// [count, input.entity.f, 4] means count(input.entity.f) == 4.
func translateComparison(terms []ast.Term) (queryir.Criterion, error) {
	operator, pending, err := parseOperator(terms[0])
	if err != nil {
		return queryir.Criterion{}, err
	}

	left, err := parseOperand(terms[1], pending)
	if err != nil {
		return queryir.Criterion{}, err
	}
	right, err := parseOperand(terms[2], noPending)
	if err != nil {
		return queryir.Criterion{}, err
	}

	c := queryir.Criterion{Operator: operator, Left: left, Right: right}
	if err := checkCriterion(c, terms); err != nil {
		return queryir.Criterion{}, err
	}
	return c, nil
}

// translateInfixFunction handles [function, input1, input2, output], which
// means function(input1, input2) == output.
func translateInfixFunction(terms []ast.Term) (queryir.Criterion, error) {
	fn, err := parseBinaryFunction(terms[0])
	if err != nil {
		return queryir.Criterion{}, err
	}

	first, err := parseOperand(terms[1], noPending)
	if err != nil {
		return queryir.Criterion{}, err
	}
	second, err := parseOperand(terms[2], noPending)
	if err != nil {
		return queryir.Criterion{}, err
	}
	output, err := parseOperand(terms[3], noPending)
	if err != nil {
		return queryir.Criterion{}, err
	}

	_, outputField := output.(queryir.EntityFieldReference)
	_, firstField := first.(queryir.EntityFieldReference)
	_, secondField := second.(queryir.EntityFieldReference)
	if outputField && (firstField || secondField) {
		return queryir.Criterion{}, errorf(KindInvalidOperandPairing, ast.FormatTerms(terms),
			"cannot have field references on both sides of a function call")
	}

	c := queryir.Criterion{
		Operator: queryir.Equals,
		Left:     queryir.InfixFunctionCallOnOperands{Function: fn, Left: first, Right: second},
		Right:    output,
	}
	if err := checkCriterion(c, terms); err != nil {
		return queryir.Criterion{}, err
	}
	return c, nil
}

// checkCriterion applies the IR pairing rules.
func checkCriterion(c queryir.Criterion, terms []ast.Term) error {
	err := queryir.ValidateCriterion(c)
	if err == nil {
		return nil
	}
	kind := KindMalformedExpr
	if queryir.IsPairingError(err) {
		kind = KindInvalidOperandPairing
	}
	return &Error{Kind: kind, Message: "invalid criterion", Term: ast.FormatTerms(terms), Err: err}
}

// checkPolicyReference accepts a bare reference into another rule, such as
// data.partial.goals.allow. Such an expression is assumed true in context and
// contributes nothing to the conjunction.
func checkPolicyReference(t ast.Term) error {
	ref, ok := t.(ast.Ref)
	if !ok {
		return errorf(KindMalformedExpr, ast.Format(t), "expected policy reference, found %s term", ast.Kind(t))
	}
	if len(ref) != 4 {
		return errorf(KindMalformedExpr, ast.Format(t), "policy reference must have 4 elements, has %d", len(ref))
	}
	if head, ok := ref[0].(ast.Var); !ok || head != "data" {
		return errorf(KindMalformedExpr, ast.Format(t), "policy reference must be rooted at data")
	}

	slog.Debug("dropping policy reference", "ref", ast.Format(t))
	return nil
}
