package condition

import (
	"fmt"
	"strings"
)

// EvalContext resolves field paths for evaluation. catalog.Item is the
// production implementation.
type EvalContext interface {
	Resolve(path []string) (interface{}, bool)
}

// Filter is a compiled expression. The zero source compiles to a Filter
// that matches everything.
type Filter struct {
	src  string
	expr Expr
}

// Compile parses src into a reusable Filter.
func Compile(src string) (*Filter, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return &Filter{}, nil
	}
	e, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return &Filter{src: src, expr: e}, nil
}

// String returns the source the filter was compiled from.
func (f *Filter) String() string { return f.src }

// Match reports whether ctx satisfies the filter.
func (f *Filter) Match(ctx EvalContext) (bool, error) {
	if f == nil || f.expr == nil {
		return true, nil
	}
	return Evaluate(f.expr, ctx)
}

// Evaluate walks the AST and returns true/false or an error.
func Evaluate(expr Expr, ctx EvalContext) (bool, error) {
	switch e := expr.(type) {
	case *BinaryExpr:
		left, err := Evaluate(e.Left, ctx)
		if err != nil {
			return false, err
		}
		// short-circuit
		if (e.Op == "AND" && !left) || (e.Op == "OR" && left) {
			return left, nil
		}
		return Evaluate(e.Right, ctx)
	case *NotExpr:
		v, err := Evaluate(e.Expr, ctx)
		return !v && err == nil, err
	case *ComparisonExpr:
		left, err := operandValue(e.Left, ctx)
		if err != nil {
			return false, err
		}
		right, err := operandValue(e.Right, ctx)
		if err != nil {
			return false, err
		}
		if e.re != nil {
			s, ok := left.(string)
			if !ok {
				return false, fmt.Errorf("matches: left operand must be a string, got %T", left)
			}
			return e.re.MatchString(s), nil
		}
		return compare(e.Op, left, right)
	}
	return false, fmt.Errorf("unknown expr type %T", expr)
}

func operandValue(op Operand, ctx EvalContext) (interface{}, error) {
	switch o := op.(type) {
	case *LiteralOperand:
		return o.Value, nil
	case *FieldOperand:
		val, ok := ctx.Resolve(o.Path)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, strings.Join(o.Path, "."))
		}
		return val, nil
	}
	return nil, fmt.Errorf("unknown operand type %T", op)
}
