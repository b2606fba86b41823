package parse

import (
	"github.com/midbel/sheetcalc/formula/op"
	"github.com/midbel/sheetcalc/layout"
)

// Node is an element of a formula tree. The set of nodes is closed: every
// consumer switches over the concrete types below.
type Node interface {
	node()
	Breakpoint() bool
}

// Flags is embedded in every node. Break is set when the node is preceded by
// the debug marker.
type Flags struct {
	Break bool
}

func (f Flags) Breakpoint() bool {
	return f.Break
}

// Number, String and Reference either carry their value inline (Slot < 0)
// or refer to the Slot-th dependency of a normalized formula.
type Number struct {
	Flags
	Slot  int
	Value float64
	Raw   string
}

type String struct {
	Flags
	Slot  int
	Value string
}

type Reference struct {
	Flags
	Slot int
	Ref  layout.Reference
}

type Boolean struct {
	Flags
	Value bool
}

// InvalidRef is the #REF! literal left in a formula after the cell it was
// pointing to has been deleted.
type InvalidRef struct {
	Flags
}

// Empty stands for an omitted argument of a function call.
type Empty struct {
	Flags
}

// Unknown is a bare symbol. It is only valid when the function registry
// declares a symbol with that name.
type Unknown struct {
	Flags
	Name   string
	Quoted bool
}

type Call struct {
	Flags
	Name  string
	Args  []Node
	Async bool
}

type Unary struct {
	Flags
	Op      op.Op
	Expr    Node
	Postfix bool
}

type Binary struct {
	Flags
	Op    op.Op
	Left  Node
	Right Node
}

type Array struct {
	Flags
	Rows [][]Node
}

func (Number) node()     {}
func (String) node()     {}
func (Reference) node()  {}
func (Boolean) node()    {}
func (InvalidRef) node() {}
func (Empty) node()      {}
func (Unknown) node()    {}
func (Call) node()       {}
func (Unary) node()      {}
func (Binary) node()     {}
func (Array) node()      {}

// IsLiteral reports whether n is a number, string or boolean literal.
func IsLiteral(n Node) bool {
	switch n.(type) {
	case Number, String, Boolean:
		return true
	default:
		return false
	}
}

func withBreak(n Node) Node {
	f := Flags{Break: true}
	switch n := n.(type) {
	case Number:
		n.Flags = f
		return n
	case String:
		n.Flags = f
		return n
	case Reference:
		n.Flags = f
		return n
	case Boolean:
		n.Flags = f
		return n
	case InvalidRef:
		n.Flags = f
		return n
	case Empty:
		n.Flags = f
		return n
	case Unknown:
		n.Flags = f
		return n
	case Call:
		n.Flags = f
		return n
	case Unary:
		n.Flags = f
		return n
	case Binary:
		n.Flags = f
		return n
	case Array:
		n.Flags = f
		return n
	default:
		return n
	}
}

// Walk calls do for n and all its descendants, parents first. It stops
// descending into a node when do returns false.
func Walk(n Node, do func(Node) bool) {
	if !do(n) {
		return
	}
	switch n := n.(type) {
	case Call:
		for _, a := range n.Args {
			Walk(a, do)
		}
	case Unary:
		Walk(n.Expr, do)
	case Binary:
		Walk(n.Left, do)
		Walk(n.Right, do)
	case Array:
		for _, row := range n.Rows {
			for _, c := range row {
				Walk(c, do)
			}
		}
	}
}
