package parse

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/midbel/sheetcalc/formula/op"
)

// Dump returns a one line description of the tree, showing the kind of
// every node.
func Dump(n Node) string {
	var buf bytes.Buffer
	dumpNode(&buf, n)
	return buf.String()
}

func dumpNode(w io.Writer, n Node) {
	if n.Breakpoint() {
		io.WriteString(w, "break:")
	}
	switch n := n.(type) {
	case Number:
		io.WriteString(w, "number(")
		if n.Slot >= 0 {
			fmt.Fprintf(w, "$%d", n.Slot)
		} else {
			io.WriteString(w, strconv.FormatFloat(n.Value, 'f', -1, 64))
		}
		io.WriteString(w, ")")
	case String:
		io.WriteString(w, "string(")
		if n.Slot >= 0 {
			fmt.Fprintf(w, "$%d", n.Slot)
		} else {
			io.WriteString(w, strconv.Quote(n.Value))
		}
		io.WriteString(w, ")")
	case Reference:
		io.WriteString(w, "reference(")
		if n.Slot >= 0 {
			fmt.Fprintf(w, "$%d", n.Slot)
		} else {
			io.WriteString(w, n.Ref.String())
		}
		io.WriteString(w, ")")
	case Boolean:
		fmt.Fprintf(w, "boolean(%t)", n.Value)
	case InvalidRef:
		io.WriteString(w, "invalid-reference")
	case Empty:
		io.WriteString(w, "empty")
	case Unknown:
		fmt.Fprintf(w, "unknown(%s)", n.Name)
	case Call:
		io.WriteString(w, "call(")
		io.WriteString(w, n.Name)
		for _, a := range n.Args {
			io.WriteString(w, ", ")
			dumpNode(w, a)
		}
		if n.Async {
			io.WriteString(w, ", async")
		}
		io.WriteString(w, ")")
	case Unary:
		io.WriteString(w, "unary(")
		dumpNode(w, n.Expr)
		io.WriteString(w, ", ")
		io.WriteString(w, op.Symbol(n.Op))
		if n.Postfix {
			io.WriteString(w, ", postfix")
		}
		io.WriteString(w, ")")
	case Binary:
		io.WriteString(w, "binary(")
		dumpNode(w, n.Left)
		io.WriteString(w, ", ")
		dumpNode(w, n.Right)
		io.WriteString(w, ", ")
		io.WriteString(w, op.Symbol(n.Op))
		io.WriteString(w, ")")
	case Array:
		io.WriteString(w, "array(")
		for i, row := range n.Rows {
			if i > 0 {
				io.WriteString(w, "; ")
			}
			for j, c := range row {
				if j > 0 {
					io.WriteString(w, ", ")
				}
				dumpNode(w, c)
			}
		}
		io.WriteString(w, ")")
	default:
		io.WriteString(w, "?")
	}
}
