package compile

import (
	"errors"
	"fmt"

	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/formula/op"
	"github.com/midbel/sheetcalc/formula/parse"
)

var ErrInvalid = errors.New("invalid expression")

// ValidationError reports the node that makes a formula a bad expression.
type ValidationError struct {
	Node   parse.Node
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", parse.Format(e.Node), e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validate checks the calls of a tree against the signatures of fns: arity,
// kind of arguments and arguments bound to reference parameters. The tree is
// not modified.
func Validate(n parse.Node, fns env.Table, syms env.Symbols) error {
	_, err := validate(n, fns, syms)
	return err
}

// validate also returns the slots of the references found where only a
// single value is accepted.
func validate(n parse.Node, fns env.Table, syms env.Symbols) ([]int, error) {
	v := validator{
		fns:  fns,
		syms: syms,
	}
	err := v.validate(n, env.TypeAny)
	return v.scalars, err
}

type validator struct {
	fns  env.Table
	syms env.Symbols

	scalars []int
}

func (v *validator) validate(n parse.Node, expect env.Type) error {
	if ref, ok := n.(parse.Reference); ok && expect&(env.TypeRange|env.TypeMeta) == 0 {
		v.scalars = append(v.scalars, ref.Slot)
	}
	kind, err := v.infer(n)
	if err != nil {
		return err
	}
	if !expect.Accepts(kind) {
		return invalid(n, fmt.Sprintf("%s given where %s is expected", kindName(kind), expect))
	}
	return nil
}

// infer checks the children of n and returns the kind of value n produces.
func (v *validator) infer(n parse.Node) (env.Type, error) {
	switch n := n.(type) {
	case parse.Number:
		return env.TypeNumber, nil
	case parse.String:
		return env.TypeString, nil
	case parse.Boolean:
		return env.TypeBoolean, nil
	case parse.Empty, parse.Reference, parse.InvalidRef:
		return env.TypeAny | env.TypeMeta, nil
	case parse.Unknown:
		if v.syms != nil && v.syms.IsSymbol(n.Name) {
			return env.TypeScalar, nil
		}
		return 0, invalid(n, "unknown symbol "+n.Name)
	case parse.Array:
		for _, row := range n.Rows {
			for _, c := range row {
				if err := v.validate(c, env.TypeScalar); err != nil {
					return 0, err
				}
			}
		}
		return env.TypeScalar, nil
	case parse.Unary:
		if err := v.validate(n.Expr, env.TypeScalar); err != nil {
			return 0, err
		}
		return env.TypeNumber, nil
	case parse.Binary:
		return v.inferBinary(n)
	case parse.Call:
		return v.inferCall(n)
	default:
		return 0, invalid(n, "unsupported expression")
	}
}

func (v *validator) inferBinary(n parse.Binary) (env.Type, error) {
	if n.Op == op.Range {
		for _, c := range []parse.Node{n.Left, n.Right} {
			if !isReference(c, v.fns) {
				return 0, invalid(c, "reference expected in range")
			}
			if err := v.validate(c, env.TypeMeta); err != nil {
				return 0, err
			}
		}
		return env.TypeRange | env.TypeMeta, nil
	}
	if err := v.validate(n.Left, env.TypeScalar); err != nil {
		return 0, err
	}
	if err := v.validate(n.Right, env.TypeScalar); err != nil {
		return 0, err
	}
	switch {
	case n.Op == op.Concat:
		return env.TypeString, nil
	case n.Op.IsComparison():
		return env.TypeBoolean, nil
	default:
		return env.TypeNumber, nil
	}
}

func (v *validator) inferCall(n parse.Call) (env.Type, error) {
	fn, ok := v.fns.Lookup(n.Name)
	if !ok {
		return 0, invalid(n, "unknown function "+n.Name)
	}
	var (
		params = fn.Params
		pi     int
		ai     int
	)
	for ai < len(n.Args) {
		if pi >= len(params) {
			return 0, invalid(n, fmt.Sprintf("too many arguments for %s", fn.Signature()))
		}
		p := params[pi]
		if p.Repeating {
			for ; ai < len(n.Args); ai++ {
				if err := v.argument(n.Args[ai], p); err != nil {
					return 0, err
				}
			}
			pi++
			break
		}
		if err := v.argument(n.Args[ai], p); err != nil {
			return 0, err
		}
		ai++
		pi++
	}
	for ; pi < len(params); pi++ {
		p := params[pi]
		if p.Optional {
			continue
		}
		if p.Repeating {
			return 0, invalid(n, fmt.Sprintf("at least one %s expected for %s", p.Name, fn.Signature()))
		}
		return 0, invalid(n, fmt.Sprintf("missing %s for %s", p.Name, fn.Signature()))
	}
	if fn.Returns&env.TypeMeta != 0 {
		return env.TypeAny | env.TypeMeta, nil
	}
	return fn.Returns, nil
}

func (v *validator) argument(arg parse.Node, p env.Param) error {
	if _, ok := arg.(parse.Empty); ok {
		return nil
	}
	if p.Meta() && !isReference(arg, v.fns) {
		return invalid(arg, fmt.Sprintf("reference expected for %s", p.Name))
	}
	return v.validate(arg, p.Types)
}

// isReference reports whether n gives a reference rather than a value.
func isReference(n parse.Node, fns env.Table) bool {
	switch n := n.(type) {
	case parse.Reference, parse.InvalidRef:
		return true
	case parse.Binary:
		return n.Op == op.Range
	case parse.Call:
		fn, ok := fns.Lookup(n.Name)
		return ok && fn.Returns&env.TypeMeta != 0
	default:
		return false
	}
}

func invalid(n parse.Node, reason string) error {
	return &ValidationError{
		Node:   n,
		Reason: reason,
	}
}

func kindName(t env.Type) string {
	switch {
	case t&env.TypeRange != 0 && t&env.TypeScalar == 0:
		return "range"
	case t == env.TypeNumber:
		return "number"
	case t == env.TypeString:
		return "string"
	case t == env.TypeBoolean:
		return "boolean"
	default:
		return "value"
	}
}
