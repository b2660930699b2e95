package expression_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crhntr/inspect/expression"
)

func TestEvaluate_Numbers(t *testing.T) {
	for _, tt := range []struct {
		Name       string
		Expression string
		Result     string
	}{
		{Name: "just 1", Expression: "=1", Result: "1"},
		{Name: "add", Expression: "=1+1", Result: "2"},
		{Name: "float left", Expression: "=1.5 + 1", Result: "2.5"},
		{Name: "float right", Expression: "=1 + 1.5", Result: "2.5"},
		{Name: "subtract", Expression: "=1 - 2", Result: "-1"},
		{Name: "multiply", Expression: "=2 * 3", Result: "6"},
		{Name: "divide", Expression: "=6 / 4", Result: "1.5"},
		{Name: "space around", Expression: "= 8/2 ", Result: "4"},
		{Name: "unary minus", Expression: "=-A1", Result: "-100"},
		{Name: "unary plus", Expression: "=+A1", Result: "100"},
		{Name: "cell reference", Expression: "=A1", Result: "100"},
		{Name: "precedence order", Expression: "=1 * 2 + 3", Result: "5"},
		{Name: "non precedence order", Expression: "=1 + 2 * 3", Result: "7"},
		{Name: "two sets of parens", Expression: "=(1 + 2) * (3 + 4)", Result: "21"},
		{Name: "division before subtraction", Expression: "=100 - 6 / 3", Result: "98"},
		{Name: "divide by zero", Expression: "=1 / 0", Result: "+Inf"},
		{Name: "negative divide by zero", Expression: "=-1 / 0", Result: "-Inf"},
		{Name: "zero divided by zero", Expression: "=0 / 0", Result: "NaN"},
		{Name: "numeric text", Expression: `="2" * "3"`, Result: "6"},
		{Name: "numeric prefix", Expression: `="2 apples" * 3`, Result: "6"},
		{Name: "leading space", Expression: `=" 2" + 1`, Result: "3"},
		{Name: "exponent", Expression: "=1e3 + 1", Result: "1001"},
		{Name: "inexact sum", Expression: "=0.1 + 0.2", Result: "0.30000000000000004"},
		{Name: "repeating fraction", Expression: "=1 / 3", Result: "0.3333333333333333"},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			node, err := expression.New(tt.Expression)
			require.NoError(t, err)

			scope := fakeScope{
				addresses: map[expression.Address]string{{Column: 1, Row: 1}: "100"},
			}

			value, err := expression.Evaluate(scope, node)
			require.NoError(t, err)
			assert.Equal(t, tt.Result, value)
		})
	}
}

func TestEvaluate_Text(t *testing.T) {
	for _, tt := range []struct {
		Name       string
		Expression string
		Result     string
	}{
		{Name: "text literal", Expression: `="Hello"`, Result: "Hello"},
		{Name: "concatenation", Expression: `="Hello"+" "+"World"`, Result: "Hello World"},
		{Name: "text plus number", Expression: `="Hello"+3.25`, Result: "Hello3.25"},
		{Name: "number plus text", Expression: `=3.25+"Hello"`, Result: "3.25Hello"},
		{Name: "subtract text", Expression: `="Hello"-1`, Result: "ERROR"},
		{Name: "multiply text", Expression: `=2*"Hello"`, Result: "ERROR"},
		{Name: "divide text", Expression: `="a"/"b"`, Result: "ERROR"},
		{Name: "identifier echo", Expression: "=total", Result: "total"},
		{Name: "identifier plus number", Expression: "=total + 1", Result: "total1"},
		{Name: "empty reference concatenates", Expression: "=J9 + 1", Result: "1"},
		{Name: "empty reference subtract", Expression: "=J9 - 1", Result: "ERROR"},
		{Name: "plain text", Expression: "Hello", Result: "Hello"},
		{Name: "plain number", Expression: "42", Result: "42"},
		{Name: "plain float", Expression: " 2.50 ", Result: "2.5"},
		{Name: "empty", Expression: "", Result: ""},
		{Name: "number with suffix is text", Expression: "3 apples", Result: "3 apples"},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			node, err := expression.New(tt.Expression)
			require.NoError(t, err)

			value, err := expression.Evaluate(fakeScope{}, node)
			require.NoError(t, err)
			assert.Equal(t, tt.Result, value)
		})
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("address resolution error", func(t *testing.T) {
		node, err := expression.New("=-J9")
		require.NoError(t, err)

		scope := fakeScopeFunc(func(expression.Address) (string, error) {
			return "", fmt.Errorf("banana")
		})

		_, err = expression.Evaluate(scope, node)
		assert.ErrorContains(t, err, "banana")
	})

	t.Run("either side of a binary expression fails", func(t *testing.T) {
		a := expression.Address{Column: 1, Row: 1}
		b := expression.Address{Column: 2, Row: 1}

		t.Run("right side fails", func(t *testing.T) {
			scope := fakeScopeFunc(func(address expression.Address) (string, error) {
				switch address {
				case a:
					return "2", nil
				case b:
					return "", fmt.Errorf("banana")
				default:
					t.Fatal("unexpected cell reference")
					return "", nil
				}
			})
			_, err := expression.Evaluate(scope, mustParse(t, "=A1 + B1"))
			assert.ErrorContains(t, err, "banana")
		})

		t.Run("left side fails before the right is evaluated", func(t *testing.T) {
			var visited []expression.Address
			scope := fakeScopeFunc(func(address expression.Address) (string, error) {
				visited = append(visited, address)
				return "", fmt.Errorf("banana")
			})
			_, err := expression.Evaluate(scope, mustParse(t, "=A1 + B1"))
			assert.ErrorContains(t, err, "banana")
			assert.Equal(t, []expression.Address{a}, visited)
		})
	})

	t.Run("function call arguments are evaluated left to right", func(t *testing.T) {
		var (
			calledName string
			calledArgs []string
		)
		scope := fakeScope{
			addresses: map[expression.Address]string{{Column: 2, Row: 2}: "7"},
			call: func(name string, args []string) (string, error) {
				calledName, calledArgs = name, args
				return "result", nil
			},
		}
		value, err := expression.Evaluate(scope, mustParse(t, `=SUM(1+1, B2, "x", name)`))
		require.NoError(t, err)
		assert.Equal(t, "result", value)
		assert.Equal(t, "SUM", calledName)
		assert.Equal(t, []string{"2", "7", "x", "name"}, calledArgs)
	})

	t.Run("function call failure", func(t *testing.T) {
		_, err := expression.Evaluate(fakeScope{}, mustParse(t, "=SUM(1)"))
		var fnErr *expression.UnsupportedFunctionError
		require.True(t, errors.As(err, &fnErr))
		assert.Equal(t, "SUM", fnErr.Name)
		assert.EqualError(t, err, "unsupported function: SUM")
	})

	t.Run("formula", func(t *testing.T) {
		formula, err := expression.NewFormula("=A1+12")
		require.NoError(t, err)
		assert.Equal(t, "=A1+12", formula.Text())

		value, err := formula.Evaluate(fakeScope{
			addresses: map[expression.Address]string{{Column: 1, Row: 1}: "13.5"},
		})
		require.NoError(t, err)
		assert.Equal(t, "25.5", value)
	})
}

func TestNode_String(t *testing.T) {
	for _, tt := range []struct {
		Expression string
		Debug      string
	}{
		{Expression: "=1+2*3", Debug: "(1 + (2 * 3))"},
		{Expression: `="a"-b`, Debug: "(str{a} - id{b})"},
		{Expression: "=AA11/2.5", Debug: "(addr{27,11} / 2.5)"},
		{Expression: "=F(A1, 2)", Debug: "fn{F}(addr{1,1},2)"},
		{Expression: "=F()", Debug: "fn{F}()"},
		{Expression: "=-1", Debug: "(0 - 1)"},
		{Expression: "hello", Debug: "str{hello}"},
	} {
		t.Run(tt.Expression, func(t *testing.T) {
			formula, err := expression.NewFormula(tt.Expression)
			require.NoError(t, err)
			assert.Equal(t, tt.Debug, formula.String())
		})
	}
}

func TestParseNumber(t *testing.T) {
	for _, tt := range []struct {
		Input string
		Value float64
		OK    bool
	}{
		{Input: "1", Value: 1, OK: true},
		{Input: "  -2.5", Value: -2.5, OK: true},
		{Input: "+3", Value: 3, OK: true},
		{Input: ".5", Value: 0.5, OK: true},
		{Input: "5.", Value: 5, OK: true},
		{Input: "3.25Hello", Value: 3.25, OK: true},
		{Input: "1e3", Value: 1000, OK: true},
		{Input: "1e", Value: 1, OK: true},
		{Input: "2E-2x", Value: 0.02, OK: true},
		{Input: "\t\n7", Value: 7, OK: true},
		{Input: "", OK: false},
		{Input: " ", OK: false},
		{Input: "Hello", OK: false},
		{Input: ".", OK: false},
		{Input: "-", OK: false},
		{Input: "+Inf", OK: false},
		{Input: "NaN", OK: false},
		{Input: "1e400", OK: false},
	} {
		t.Run(fmt.Sprintf("%q", tt.Input), func(t *testing.T) {
			v, ok := expression.ParseNumber(tt.Input)
			assert.Equal(t, tt.OK, ok)
			if tt.OK {
				assert.Equal(t, tt.Value, v)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "2", expression.FormatNumber(2))
	assert.Equal(t, "2.5", expression.FormatNumber(2.5))
	assert.Equal(t, "25.5", expression.FormatNumber(13.5+12))
	assert.Equal(t, "-0.125", expression.FormatNumber(-0.125))
	assert.Equal(t, "+Inf", expression.FormatNumber(math.Inf(1)))
	assert.Equal(t, "0.30000000000000004", expression.FormatNumber(0.1+0.2))
	assert.Equal(t, "1e+21", expression.FormatNumber(1e21))
}

func mustParse(t *testing.T, in string) expression.Node {
	t.Helper()
	node, err := expression.New(in)
	require.NoError(t, err)
	return node
}

type fakeScope struct {
	addresses map[expression.Address]string
	call      func(name string, args []string) (string, error)
}

func (s fakeScope) ResolveAddress(address expression.Address) (string, error) {
	return s.addresses[address], nil
}

func (s fakeScope) CallFunction(name string, args []string) (string, error) {
	if s.call == nil {
		return "", &expression.UnsupportedFunctionError{Name: name}
	}
	return s.call(name, args)
}

type fakeScopeFunc func(expression.Address) (string, error)

func (f fakeScopeFunc) ResolveAddress(address expression.Address) (string, error) {
	return f(address)
}

func (f fakeScopeFunc) CallFunction(name string, _ []string) (string, error) {
	return "", &expression.UnsupportedFunctionError{Name: name}
}
