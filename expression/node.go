package expression

import (
	"fmt"
	"strings"
)

// Node is one element of a formula tree. The set of node types is closed.
type Node interface {
	fmt.Stringer
	node()
}

type Op int

const (
	Add Op = iota
	Subtract
	Multiply
	Divide
)

func (op Op) String() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

type NumberNode struct {
	Value float64
}

type TextNode struct {
	Value string
}

type IdentifierNode struct {
	Name string
}

type AddressNode struct {
	Address Address
}

type BinaryNode struct {
	Op          Op
	Left, Right Node
}

type CallNode struct {
	Name string
	Args []Node
}

func (NumberNode) node()     {}
func (TextNode) node()       {}
func (IdentifierNode) node() {}
func (AddressNode) node()    {}
func (BinaryNode) node()     {}
func (CallNode) node()       {}

func (n NumberNode) String() string     { return FormatNumber(n.Value) }
func (n TextNode) String() string       { return "str{" + n.Value + "}" }
func (n IdentifierNode) String() string { return "id{" + n.Name + "}" }

func (n AddressNode) String() string {
	return fmt.Sprintf("addr{%d,%d}", n.Address.Column, n.Address.Row)
}

func (n BinaryNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

func (n CallNode) String() string {
	var sb strings.Builder
	sb.WriteString("fn{" + n.Name + "}(")
	for i, arg := range n.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
