package expression

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorText is the value of a subtract, multiply or divide with a non-numeric operand.
const ErrorText = "ERROR"

// Scope resolves the parts of a formula that live outside of it.
type Scope interface {
	// ResolveAddress returns the value of the cell at address or an empty string when there is no such cell.
	ResolveAddress(address Address) (string, error)
	CallFunction(name string, args []string) (string, error)
}

type UnsupportedFunctionError struct {
	Name string
}

func (e *UnsupportedFunctionError) Error() string {
	return fmt.Sprintf("unsupported function: %s", e.Name)
}

func Evaluate(scope Scope, node Node) (string, error) {
	switch n := node.(type) {
	case NumberNode:
		return FormatNumber(n.Value), nil
	case TextNode:
		return n.Value, nil
	case IdentifierNode:
		return n.Name, nil
	case AddressNode:
		return scope.ResolveAddress(n.Address)
	case CallNode:
		args := make([]string, 0, len(n.Args))
		for _, param := range n.Args {
			v, err := Evaluate(scope, param)
			if err != nil {
				return "", err
			}
			args = append(args, v)
		}
		return scope.CallFunction(n.Name, args)
	case BinaryNode:
		left, err := Evaluate(scope, n.Left)
		if err != nil {
			return "", err
		}
		right, err := Evaluate(scope, n.Right)
		if err != nil {
			return "", err
		}
		return binaryOp(n.Op, left, right), nil
	default:
		return "", fmt.Errorf("unsupported node type: %T", node)
	}
}

func binaryOp(op Op, left, right string) string {
	l, leftOK := ParseNumber(left)
	r, rightOK := ParseNumber(right)
	if leftOK && rightOK {
		switch op {
		case Add:
			return FormatNumber(l + r)
		case Subtract:
			return FormatNumber(l - r)
		case Multiply:
			return FormatNumber(l * r)
		case Divide:
			return FormatNumber(l / r)
		}
	}
	if op == Add {
		return left + right
	}
	return ErrorText
}

// FormatNumber renders v with the fewest digits that parse back to v.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseNumber reads a decimal number from the start of s, skipping leading
// white space. Anything after the number is ignored.
func ParseNumber(s string) (float64, bool) {
	prefix := numberPrefix(strings.TrimLeft(s, " \t\n\v\f\r"))
	if prefix == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func numberPrefix(s string) string {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for ; end < len(s) && isDigit(s[end]); end++ {
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for ; end < len(s) && isDigit(s[end]); end++ {
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		expEnd := exp
		for expEnd < len(s) && isDigit(s[expEnd]) {
			expEnd++
		}
		if expEnd > exp {
			end = expEnd
		}
	}
	return s[:end]
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
