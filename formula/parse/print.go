package parse

import (
	"fmt"
	"strings"

	"github.com/midbel/sheetcalc/formula/op"
)

// Format writes n back as formula text, without the leading =. Nodes bound
// to a dependency slot are written as placeholders so that the output of
// formatting a normalized tree is itself a normalized formula.
func Format(n Node) string {
	var w writer
	w.write(n, true)
	return w.buf.String()
}

// ToFormula writes n with the values of deps in place of the placeholders.
func ToFormula(n Node, deps []Dependency) (string, error) {
	return Substitute(Format(n), deps)
}

type writer struct {
	buf     strings.Builder
	numbers int
	strs    int
	refs    int
}

func (w *writer) write(n Node, top bool) {
	if !n.Breakpoint() {
		w.node(n)
		return
	}
	if !top {
		w.buf.WriteByte('(')
	}
	w.buf.WriteByte(question)
	w.node(n)
	if !top {
		w.buf.WriteByte(')')
	}
}

func (w *writer) operand(n Node, parens bool) {
	if !parens || n.Breakpoint() {
		w.write(n, false)
		return
	}
	w.buf.WriteByte('(')
	w.node(n)
	w.buf.WriteByte(')')
}

func (w *writer) node(n Node) {
	switch n := n.(type) {
	case Number:
		if n.Slot >= 0 {
			fmt.Fprintf(&w.buf, "|N %d|", w.numbers)
			w.numbers++
			break
		}
		w.buf.WriteString(NumberDep(n.Value).Text)
	case String:
		if n.Slot >= 0 {
			fmt.Fprintf(&w.buf, "|S %d|", w.strs)
			w.strs++
			break
		}
		w.buf.WriteString(quoteString(n.Value))
	case Reference:
		if n.Slot >= 0 {
			fmt.Fprintf(&w.buf, "|%d|", w.refs)
			w.refs++
			break
		}
		w.buf.WriteString(n.Ref.String())
	case Boolean:
		if n.Value {
			w.buf.WriteString("TRUE")
		} else {
			w.buf.WriteString("FALSE")
		}
	case InvalidRef:
		w.buf.WriteString("#REF!")
	case Empty:
	case Unknown:
		if n.Quoted {
			w.buf.WriteString("'" + strings.ReplaceAll(n.Name, "'", "''") + "'")
		} else {
			w.buf.WriteString(n.Name)
		}
	case Call:
		w.buf.WriteString(n.Name)
		w.buf.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.write(a, true)
		}
		w.buf.WriteByte(')')
	case Array:
		w.buf.WriteByte('{')
		for i, row := range n.Rows {
			if i > 0 {
				w.buf.WriteByte(';')
			}
			for j, c := range row {
				if j > 0 {
					w.buf.WriteByte(',')
				}
				w.write(c, true)
			}
		}
		w.buf.WriteByte('}')
	case Unary:
		if n.Postfix {
			w.operand(n.Expr, postfixParens(n.Expr))
			w.buf.WriteString(op.Symbol(n.Op))
			break
		}
		w.buf.WriteString(op.Symbol(n.Op))
		w.operand(n.Expr, prefixParens(n.Expr))
	case Binary:
		pow := precedence(n.Op)
		w.operand(n.Left, binaryParens(n.Left, n.Op, pow, false))
		w.buf.WriteString(op.Symbol(n.Op))
		w.operand(n.Right, binaryParens(n.Right, n.Op, pow, true))
	}
}

func binaryParens(child Node, oper op.Op, pow int, right bool) bool {
	switch c := child.(type) {
	case Binary:
		cp := precedence(c.Op)
		if cp != pow {
			return cp < pow
		}
		if oper == op.Pow {
			return !right
		}
		return right
	case Unary:
		if c.Postfix {
			return pow > powPercent
		}
		return pow > powUnary
	default:
		return false
	}
}

func prefixParens(child Node) bool {
	switch c := child.(type) {
	case Binary:
		return precedence(c.Op) <= powUnary
	case Number:
		return c.Slot < 0
	default:
		return false
	}
}

func postfixParens(child Node) bool {
	switch c := child.(type) {
	case Binary:
		return precedence(c.Op) <= powPercent
	case Unary:
		return !c.Postfix
	default:
		return false
	}
}
