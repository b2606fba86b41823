package compile

import (
	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/formula/op"
	"github.com/midbel/sheetcalc/formula/parse"
)

// formatPlan gives the formats a formula result can take. A reference gives
// the format of its cell. A call follows the policy of its function. A binary
// operator takes the plan of its left operand unless that operand is a
// literal, in which case it takes the plan of the right one. Concatenation
// and comparisons produce text and booleans and have no format.
func formatPlan(n parse.Node, fns env.Table) []FormatSlot {
	switch n := n.(type) {
	case parse.Reference:
		if n.Slot < 0 {
			return nil
		}
		return []FormatSlot{{Dep: n.Slot}}
	case parse.Unary:
		return formatPlan(n.Expr, fns)
	case parse.Binary:
		if n.Op == op.Concat || n.Op.IsComparison() {
			return nil
		}
		if n.Op != op.Range && parse.IsLiteral(n.Left) {
			return formatPlan(n.Right, fns)
		}
		return formatPlan(n.Left, fns)
	case parse.Call:
		fn, ok := fns.Lookup(n.Name)
		if !ok {
			return nil
		}
		switch fn.Policy.Kind {
		case env.PolicyFixed:
			return []FormatSlot{{Format: fn.Policy.Format, Dep: -1}}
		case env.PolicyFirstArgument:
			if len(n.Args) > 0 {
				return formatPlan(n.Args[0], fns)
			}
		}
		return nil
	default:
		return nil
	}
}
