package expression

import (
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

// MaxDepth bounds how deeply a formula expression may nest.
const MaxDepth = 1000

var ErrStackOverflow = errors.New("formula nested too deeply")

// goParserNestingError is the message go/parser reports when an expression
// nests beyond its own limit. The parser exposes no sentinel for it.
const goParserNestingError = "exceeded max nesting depth"

type ParseError struct {
	Formula string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse formula %q: %s", e.Formula, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type UnsupportedError struct {
	ast.Expr
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported expression type: %T", e.Expr)
}

// New parses formula text. Text starting with "=" is an expression,
// anything else is a number or text literal.
func New(in string) (Node, error) {
	source, isExpression := strings.CutPrefix(in, "=")
	if !isExpression {
		return literal(in), nil
	}
	expr, err := parser.ParseExpr(source)
	if err != nil {
		if strings.Contains(err.Error(), goParserNestingError) {
			err = fmt.Errorf("%w: %s", ErrStackOverflow, err)
		}
		return nil, &ParseError{Formula: in, Err: err}
	}
	node, err := convert(expr, 0)
	if err != nil {
		return nil, &ParseError{Formula: in, Err: err}
	}
	return node, nil
}

func literal(in string) Node {
	trimmed := strings.TrimSpace(in)
	if prefix := numberPrefix(trimmed); prefix != "" && prefix == trimmed {
		if v, err := strconv.ParseFloat(prefix, 64); err == nil {
			return NumberNode{Value: v}
		}
	}
	return TextNode{Value: in}
}

func convert(expr ast.Expr, depth int) (Node, error) {
	if depth > MaxDepth {
		return nil, ErrStackOverflow
	}
	switch e := expr.(type) {
	case *ast.BasicLit:
		return convertBasicLiteral(e)
	case *ast.Ident:
		if !IsAddress(e.Name) {
			return IdentifierNode{Name: e.Name}, nil
		}
		address, err := ParseAddress(e.Name)
		if err != nil {
			return nil, err
		}
		return AddressNode{Address: address}, nil
	case *ast.ParenExpr:
		return convert(e.X, depth+1)
	case *ast.UnaryExpr:
		x, err := convert(e.X, depth+1)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case token.ADD:
			return x, nil
		case token.SUB:
			return BinaryNode{Op: Subtract, Left: NumberNode{Value: 0}, Right: x}, nil
		}
	case *ast.BinaryExpr:
		var op Op
		switch e.Op {
		case token.ADD:
			op = Add
		case token.SUB:
			op = Subtract
		case token.MUL:
			op = Multiply
		case token.QUO:
			op = Divide
		default:
			return nil, &UnsupportedError{Expr: expr}
		}
		left, err := convert(e.X, depth+1)
		if err != nil {
			return nil, err
		}
		right, err := convert(e.Y, depth+1)
		if err != nil {
			return nil, err
		}
		return BinaryNode{Op: op, Left: left, Right: right}, nil
	case *ast.CallExpr:
		fn, ok := e.Fun.(*ast.Ident)
		if !ok || e.Ellipsis.IsValid() {
			return nil, &UnsupportedError{Expr: expr}
		}
		call := CallNode{Name: fn.Name}
		for _, arg := range e.Args {
			param, err := convert(arg, depth+1)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, param)
		}
		return call, nil
	}
	return nil, &UnsupportedError{Expr: expr}
}

func convertBasicLiteral(lit *ast.BasicLit) (Node, error) {
	switch lit.Kind {
	case token.INT, token.FLOAT:
		cv := constant.MakeFromLiteral(lit.Value, lit.Kind, 0)
		if cv.Kind() == constant.Unknown {
			return nil, fmt.Errorf("failed to parse number %s", lit.Value)
		}
		v, _ := constant.Float64Val(constant.ToFloat(cv))
		return NumberNode{Value: v}, nil
	case token.STRING:
		v, err := strconv.Unquote(lit.Value)
		if err != nil {
			return nil, err
		}
		return TextNode{Value: v}, nil
	default:
		return nil, &UnsupportedError{Expr: lit}
	}
}

// Formula is a parsed cell formula.
type Formula struct {
	text string
	root Node
}

func NewFormula(text string) (*Formula, error) {
	root, err := New(text)
	if err != nil {
		return nil, err
	}
	return &Formula{text: text, root: root}, nil
}

func (formula *Formula) Evaluate(scope Scope) (string, error) {
	return Evaluate(scope, formula.root)
}

func (formula *Formula) Root() Node     { return formula.root }
func (formula *Formula) Text() string   { return formula.text }
func (formula *Formula) String() string { return formula.root.String() }
