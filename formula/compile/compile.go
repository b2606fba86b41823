package compile

import (
	"slices"

	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/formula/op"
	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

type (
	evalFunc func(*frame) value.Value
	refFunc  func(*frame) layout.Reference
)

// Compile builds the procedure of a normalized formula. Parse and validation
// failures do not give an error: the returned procedure is flagged as a bad
// expression and evaluates to value.ErrBadExpr.
func Compile(text string, fns env.Table, syms env.Symbols) *Procedure {
	p := Procedure{
		Text: text,
	}
	async := func(name string) bool {
		fn, ok := fns.Lookup(name)
		return ok && fn.Async
	}
	n, err := parse.ParseNormalized(text, parse.WithAsync(async))
	if err != nil {
		p.Err = err
		return &p
	}
	scalars, err := validate(n, fns, syms)
	if err != nil {
		p.Err = err
		return &p
	}
	p.Scalars = scalars
	c := compiler{
		fns: fns,
	}
	p.root = c.compile(n, true)
	p.Deps = c.slots
	p.Async = c.async
	p.Volatile = c.volatile
	p.Symbols = c.symbols
	p.Formats = formatPlan(n, fns)
	return &p
}

type compiler struct {
	fns env.Table

	slots    int
	async    bool
	volatile bool
	symbols  []string
}

func (c *compiler) use(slot int) {
	c.slots = max(c.slots, slot+1)
}

func (c *compiler) compile(n parse.Node, allowRange bool) evalFunc {
	fn := c.compileNode(n, allowRange)
	if !n.Breakpoint() {
		return fn
	}
	return func(fr *frame) value.Value {
		v := fn(fr)
		if fr.Break != nil {
			fr.Break(n, v)
		}
		return v
	}
}

func (c *compiler) compileNode(n parse.Node, allowRange bool) evalFunc {
	switch n := n.(type) {
	case parse.Number:
		if n.Slot < 0 {
			return constant(value.Float(n.Value))
		}
		c.use(n.Slot)
		slot := n.Slot
		return func(fr *frame) value.Value {
			return fr.number(slot)
		}
	case parse.String:
		if n.Slot < 0 {
			return constant(value.Text(n.Value))
		}
		c.use(n.Slot)
		slot := n.Slot
		return func(fr *frame) value.Value {
			return fr.text(slot)
		}
	case parse.Boolean:
		return constant(value.Boolean(n.Value))
	case parse.InvalidRef:
		return constant(value.ErrRef)
	case parse.Empty:
		return constant(value.None)
	case parse.Unknown:
		return c.compileSymbol(n)
	case parse.Reference:
		return c.deref(c.compileRef(n), allowRange)
	case parse.Array:
		return c.compileArray(n)
	case parse.Unary:
		return c.compileUnary(n)
	case parse.Binary:
		if n.Op == op.Range {
			return c.deref(c.compileRef(n), allowRange)
		}
		return c.compileBinary(n)
	case parse.Call:
		if fn, ok := c.fns.Lookup(n.Name); ok && fn.Returns&env.TypeMeta != 0 {
			return c.deref(c.compileRef(n), allowRange)
		}
		return c.compileCall(n)
	default:
		return constant(value.ErrBadExpr)
	}
}

func (c *compiler) compileSymbol(n parse.Unknown) evalFunc {
	name := n.Name
	if !slices.Contains(c.symbols, name) {
		c.symbols = append(c.symbols, name)
	}
	return func(fr *frame) value.Value {
		if fr.Resolver == nil {
			return value.ErrName
		}
		return fr.Resolver.Symbol(name)
	}
}

func (c *compiler) compileRef(n parse.Node) refFunc {
	switch n := n.(type) {
	case parse.Reference:
		if n.Slot < 0 {
			ref := n.Ref
			return func(_ *frame) layout.Reference {
				return ref
			}
		}
		c.use(n.Slot)
		slot := n.Slot
		return func(fr *frame) layout.Reference {
			return fr.reference(slot)
		}
	case parse.Binary:
		if n.Op != op.Range {
			break
		}
		var (
			left  = c.compileRef(n.Left)
			right = c.compileRef(n.Right)
		)
		return func(fr *frame) layout.Reference {
			return joinReferences(left(fr), right(fr))
		}
	case parse.Call:
		call := c.compileCall(n)
		return func(fr *frame) layout.Reference {
			if r, ok := call(fr).(value.Reference); ok {
				return r.Reference
			}
			return layout.InvalidReference()
		}
	}
	return func(_ *frame) layout.Reference {
		return layout.InvalidReference()
	}
}

func joinReferences(left, right layout.Reference) layout.Reference {
	if left.Invalid || right.Invalid {
		return layout.InvalidReference()
	}
	if left.Sheet != "" && right.Sheet != "" && left.Sheet != right.Sheet {
		return layout.InvalidReference()
	}
	sheet := left.Sheet
	if sheet == "" {
		sheet = right.Sheet
	}
	rg := left.Range().Union(right.Range())
	rg.Starts.Sheet = sheet
	return layout.RangeReference(rg)
}

func (c *compiler) deref(get refFunc, allowRange bool) evalFunc {
	return func(fr *frame) value.Value {
		ref := get(fr)
		if ref.Invalid || fr.Resolver == nil {
			return value.ErrRef
		}
		if !ref.IsRange() {
			return fr.Resolver.Cell(ref)
		}
		if !allowRange {
			return value.ErrValue
		}
		return fr.Resolver.Range(ref)
	}
}

func (c *compiler) compileArray(n parse.Array) evalFunc {
	cells := make([][]evalFunc, len(n.Rows))
	for i, row := range n.Rows {
		for _, e := range row {
			cells[i] = append(cells[i], c.compile(e, false))
		}
	}
	return func(fr *frame) value.Value {
		data := make([][]value.ScalarValue, len(cells))
		for i := range cells {
			data[i] = make([]value.ScalarValue, len(cells[i]))
			for j := range cells[i] {
				data[i][j] = scalarOf(cells[i][j](fr))
			}
		}
		return value.NewArray(data)
	}
}

func (c *compiler) compileUnary(n parse.Unary) evalFunc {
	var (
		oper  = n.Op
		inner = c.compile(n.Expr, false)
	)
	return func(fr *frame) value.Value {
		return evalUnary(oper, inner(fr))
	}
}

func (c *compiler) compileBinary(n parse.Binary) evalFunc {
	var (
		oper  = n.Op
		left  = c.compile(n.Left, false)
		right = c.compile(n.Right, false)
	)
	return func(fr *frame) value.Value {
		return evalBinary(oper, left(fr), right(fr))
	}
}

type binder struct {
	eval      evalFunc
	propagate bool
}

func (c *compiler) compileCall(n parse.Call) evalFunc {
	fn, ok := c.fns.Lookup(n.Name)
	if !ok {
		return constant(value.ErrName)
	}
	c.async = c.async || fn.Async
	c.volatile = c.volatile || fn.Volatile

	var (
		name = fn.Name
		args []binder
	)
	for i, a := range n.Args {
		p, ok := paramAt(fn.Params, i)
		if !ok {
			return constant(value.ErrBadExpr)
		}
		args = append(args, c.bind(a, p))
	}
	for i := len(n.Args); i < len(fn.Params); i++ {
		p := fn.Params[i]
		if p.Repeating {
			break
		}
		args = append(args, binder{
			eval: constant(p.DefaultValue()),
		})
	}
	return func(fr *frame) value.Value {
		if fr.Functions == nil {
			return value.ErrName
		}
		impl, ok := fr.Functions.Lookup(name)
		if !ok {
			return value.ErrName
		}
		values := make([]value.Value, len(args))
		for i, a := range args {
			v := a.eval(fr)
			if a.propagate && value.IsError(v) {
				return v
			}
			values[i] = v
		}
		if fr.ctx.Err() != nil {
			return value.ErrNA
		}
		return impl.Impl(fr.ctx, values)
	}
}

func (c *compiler) bind(arg parse.Node, p env.Param) binder {
	if _, ok := arg.(parse.Empty); ok {
		return binder{
			eval: constant(p.DefaultValue()),
		}
	}
	if p.Meta() {
		get := c.compileRef(arg)
		return binder{
			eval: func(fr *frame) value.Value {
				ref := get(fr)
				if ref.Invalid {
					return value.ErrRef
				}
				return value.NewReference(ref)
			},
			propagate: !p.AllowError,
		}
	}
	eval := c.compile(arg, p.AcceptRange())
	if p.Lazy {
		return binder{
			eval: func(fr *frame) value.Value {
				return value.NewLazy(func() value.Value {
					return eval(fr)
				})
			},
		}
	}
	return binder{
		eval:      eval,
		propagate: !p.AllowError,
	}
}

func paramAt(params []env.Param, i int) (env.Param, bool) {
	if i < len(params) {
		return params[i], true
	}
	if n := len(params); n > 0 && params[n-1].Repeating {
		return params[n-1], true
	}
	return env.Param{}, false
}

func constant(v value.Value) evalFunc {
	return func(_ *frame) value.Value {
		return v
	}
}

func scalarOf(v value.Value) value.ScalarValue {
	v = value.Single(v)
	if s, ok := v.(value.ScalarValue); ok {
		return s
	}
	return value.ErrValue
}
