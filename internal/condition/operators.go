package condition

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// ErrUnknownField is returned when an expression names a field the
// context cannot resolve.
var ErrUnknownField = errors.New("unknown field")

// Operator represents a comparison operator.
type Operator string

const (
	OpEq       Operator = "=="
	OpNeq      Operator = "!="
	OpGt       Operator = ">"
	OpGte      Operator = ">="
	OpLt       Operator = "<"
	OpLte      Operator = "<="
	OpContains Operator = "contains" // case-insensitive substring
	OpMatches  Operator = "matches"
)

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func compare(op Operator, left, right interface{}) (bool, error) {
	switch op {
	case OpEq:
		return equal(left, right), nil
	case OpNeq:
		return !equal(left, right), nil
	case OpGt, OpGte, OpLt, OpLte:
		lf, lok := asNumber(left)
		rf, rok := asNumber(right)
		if !lok || !rok {
			return false, fmt.Errorf("operator %s requires numeric operands, got %T and %T", op, left, right)
		}
		switch op {
		case OpGt:
			return lf > rf, nil
		case OpGte:
			return lf >= rf, nil
		case OpLt:
			return lf < rf, nil
		}
		return lf <= rf, nil
	case OpContains:
		ls, ok := left.(string)
		if !ok {
			return false, fmt.Errorf("contains: left operand must be a string, got %T", left)
		}
		return strings.Contains(strings.ToLower(ls), strings.ToLower(fmt.Sprint(right))), nil
	case OpMatches:
		// Pattern taken from a field; literal patterns are compiled by the parser.
		ls, lok := left.(string)
		pattern, rok := right.(string)
		if !lok || !rok {
			return false, fmt.Errorf("matches: operands must be strings, got %T and %T", left, right)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("matches: invalid regex %q: %w", pattern, err)
		}
		return re.MatchString(ls), nil
	}
	return false, fmt.Errorf("unknown operator: %s", op)
}

// equal compares numbers by value and everything else by exact string form.
func equal(left, right interface{}) bool {
	lf, lok := asNumber(left)
	rf, rok := asNumber(right)
	if lok && rok {
		return math.Abs(lf-rf) < 1e-9
	}
	lb, lIsBool := left.(bool)
	rb, rIsBool := right.(bool)
	if lIsBool || rIsBool {
		return lIsBool && rIsBool && lb == rb
	}
	return fmt.Sprint(left) == fmt.Sprint(right)
}
