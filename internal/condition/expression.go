// Package condition implements the small boolean expression language used
// to filter the product catalog, e.g.
//
//	price < 20 AND (title contains "mascara" OR category == "beauty")
//
// Expressions are parsed once into an AST and evaluated against anything
// that can resolve a dotted field path.
package condition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// -----------------------------------------------------------------------
// AST
// -----------------------------------------------------------------------

// Expr is the common interface for all AST nodes.
type Expr interface {
	exprNode()
}

// BinaryExpr is AND / OR.
type BinaryExpr struct {
	Op    string // "AND" | "OR"
	Left  Expr
	Right Expr
}

// NotExpr is NOT <expr>.
type NotExpr struct {
	Expr Expr
}

// ComparisonExpr is <operand> <operator> <operand>.
type ComparisonExpr struct {
	Left  Operand
	Op    Operator
	Right Operand

	re *regexp.Regexp // compiled at parse time for OpMatches with a literal pattern
}

func (*BinaryExpr) exprNode()     {}
func (*NotExpr) exprNode()        {}
func (*ComparisonExpr) exprNode() {}

// Operand is either a literal value or a field path.
type Operand interface {
	operandNode()
}

// LiteralOperand holds a constant: string, float64 or bool.
type LiteralOperand struct {
	Value interface{}
}

// FieldOperand holds a dotted path like "price".
type FieldOperand struct {
	Path []string
}

func (*LiteralOperand) operandNode() {}
func (*FieldOperand) operandNode()   {}

// SyntaxError reports where an expression failed to parse.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// -----------------------------------------------------------------------
// Lexer
// -----------------------------------------------------------------------

type tokenKind int

const (
	tokWord tokenKind = iota
	tokOp
	tokString
	tokNumber
	tokBool
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	val  string
	pos  int
}

func isWordByte(b byte, first bool) bool {
	r := rune(b)
	if unicode.IsLetter(r) || b == '_' {
		return true
	}
	return !first && (unicode.IsDigit(r) || b == '.')
}

func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		ch := src[i]
		switch {
		case unicode.IsSpace(rune(ch)):
			i++
		case ch == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case ch == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case strings.IndexByte("=!<>", ch) >= 0:
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokOp, src[i : i+2], i})
				i += 2
				continue
			}
			if ch == '=' || ch == '!' {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("lone %q", ch)}
			}
			toks = append(toks, token{tokOp, string(ch), i})
			i++
		case ch == '"' || ch == '\'':
			s, next, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokString, s, i})
			i = next
		case unicode.IsDigit(rune(ch)) || (ch == '-' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1]))):
			j := i + 1
			for j < len(src) && (unicode.IsDigit(rune(src[j])) || src[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j], i})
			i = j
		case isWordByte(ch, true):
			j := i + 1
			for j < len(src) && isWordByte(src[j], false) {
				j++
			}
			word := src[i:j]
			if lw := strings.ToLower(word); lw == "true" || lw == "false" {
				toks = append(toks, token{tokBool, lw, i})
			} else {
				toks = append(toks, token{tokWord, word, i})
			}
			i = j
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", ch)}
		}
	}
	return append(toks, token{tokEOF, "", len(src)}), nil
}

// lexString reads a quoted literal starting at src[start] and returns the
// unescaped text and the index just past the closing quote.
func lexString(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	for j := start + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			if j+1 < len(src) {
				j++
				b.WriteByte(src[j])
			}
		case quote:
			return b.String(), j + 1, nil
		default:
			b.WriteByte(src[j])
		}
	}
	return "", 0, &SyntaxError{Pos: start, Msg: "unterminated string"}
}

// -----------------------------------------------------------------------
// Parser
// -----------------------------------------------------------------------

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) keyword(kw string) bool {
	t := p.peek()
	return t.kind == tokWord && strings.EqualFold(t.val, kw)
}

// Parse parses src into an AST.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q after expression", t.val)}
	}
	return e, nil
}

// or = and ( OR and )*
func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

// and = unary ( AND unary )*
func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

// unary = NOT unary | "(" or ")" | comparison
func (p *parser) parseUnary() (Expr, error) {
	switch {
	case p.keyword("NOT"):
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: inner}, nil
	case p.peek().kind == tokLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t := p.next(); t.kind != tokRParen {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("expected \")\" but got %q", t.val)}
		}
		return inner, nil
	}
	return p.parseComparison()
}

// comparison = operand operator operand
func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	t := p.next()
	var op Operator
	switch {
	case t.kind == tokOp:
		op = Operator(t.val)
	case t.kind == tokWord && strings.EqualFold(t.val, string(OpContains)):
		op = OpContains
	case t.kind == tokWord && strings.EqualFold(t.val, string(OpMatches)):
		op = OpMatches
	default:
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("expected comparison operator, got %q", t.val)}
	}

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	cmp := &ComparisonExpr{Left: left, Op: op, Right: right}
	if op == OpMatches {
		if lit, ok := right.(*LiteralOperand); ok {
			pattern, _ := lit.Value.(string)
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("invalid regex %q: %v", pattern, err)}
			}
			cmp.re = re
		}
	}
	return cmp, nil
}

// operand = field | literal
func (p *parser) parseOperand() (Operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return &LiteralOperand{Value: t.val}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.val, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("invalid number %q", t.val)}
		}
		return &LiteralOperand{Value: f}, nil
	case tokBool:
		return &LiteralOperand{Value: t.val == "true"}, nil
	case tokWord:
		return &FieldOperand{Path: strings.Split(t.val, ".")}, nil
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("expected operand, got %q", t.val)}
}
