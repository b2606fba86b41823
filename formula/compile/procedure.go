package compile

import (
	"context"
	"fmt"

	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

// Resolver gives a procedure access to the values outside of its formula.
// References without a sheet are relative to the sheet of the formula being
// evaluated.
type Resolver interface {
	// Cell returns the value of a single cell.
	Cell(layout.Reference) value.Value
	// Range returns the values of a range as an array.
	Range(layout.Reference) value.Value
	// Symbol returns the value of a bare name.
	Symbol(string) value.Value
}

// Binding holds everything a procedure needs for one evaluation.
type Binding struct {
	Deps      []parse.Dependency
	Resolver  Resolver
	Functions env.Table
	// Break is called with the value of every node marked with the debug
	// marker.
	Break func(parse.Node, value.Value)
}

// FormatSlot is one entry of the format plan of a procedure: either a
// literal format or the index of a dependency whose own format is used.
type FormatSlot struct {
	Format string
	Dep    int
}

func (f FormatSlot) String() string {
	if f.Dep < 0 {
		return fmt.Sprintf("format(%s)", f.Format)
	}
	return fmt.Sprintf("dep(%d)", f.Dep)
}

// Procedure is the compiled form of a normalized formula. It is shared by
// every cell having the same normalized formula and is never modified once
// built.
type Procedure struct {
	Text     string
	Deps     int
	Formats  []FormatSlot
	Async    bool
	Volatile bool
	Symbols  []string
	// Scalars are the reference slots bound where a range is not accepted.
	// A placeholder does not tell a cell from a range so the check is left
	// to the caller that knows the dependencies.
	Scalars []int
	// Err is set when the formula is a bad expression. Such a procedure
	// always evaluates to value.ErrBadExpr.
	Err error

	root evalFunc
}

// Bad returns a procedure for a formula that could not be read at all.
func Bad(text string, err error) *Procedure {
	return &Procedure{
		Text: text,
		Err:  err,
	}
}

func (p *Procedure) BadExpression() bool {
	return p.Err != nil
}

// Format resolves the format plan: the first non empty format wins. depFormat
// gives the format of the cell pointed to by a reference dependency.
func (p *Procedure) Format(depFormat func(int) string) string {
	for _, f := range p.Formats {
		str := f.Format
		if f.Dep >= 0 {
			str = depFormat(f.Dep)
		}
		if str != "" {
			return str
		}
	}
	return ""
}

// Execute evaluates the procedure on the calling goroutine. Asynchronous
// functions block until their result is available or ctx is done.
func (p *Procedure) Execute(ctx context.Context, b Binding) (val value.Value) {
	if p.root == nil {
		return value.ErrBadExpr
	}
	defer func() {
		if r := recover(); r != nil {
			val = value.ErrValue
		}
	}()
	fr := frame{
		ctx:     ctx,
		Binding: b,
	}
	return p.root(&fr)
}

// Start evaluates the procedure on its own goroutine. The binding should not
// share mutable state with the caller.
func (p *Procedure) Start(ctx context.Context, b Binding) *Future {
	f := Future{
		done: make(chan struct{}),
	}
	go func() {
		defer close(f.done)
		f.val = p.Execute(ctx, b)
	}()
	return &f
}

// Future is the pending result of an asynchronous evaluation.
type Future struct {
	done chan struct{}
	val  value.Value
}

func Resolved(val value.Value) *Future {
	f := Future{
		done: make(chan struct{}),
		val:  val,
	}
	close(f.done)
	return &f
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Value returns the result, or nil if the evaluation is not finished.
func (f *Future) Value() value.Value {
	select {
	case <-f.done:
		return f.val
	default:
		return nil
	}
}

func (f *Future) Wait(ctx context.Context) (value.Value, error) {
	select {
	case <-f.done:
		return f.val, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type frame struct {
	ctx context.Context
	Binding
}

func (f *frame) reference(slot int) layout.Reference {
	if slot < 0 || slot >= len(f.Deps) {
		return layout.InvalidReference()
	}
	ref, err := f.Deps[slot].Reference()
	if err != nil {
		return layout.InvalidReference()
	}
	return ref
}

func (f *frame) number(slot int) value.Value {
	if slot < 0 || slot >= len(f.Deps) || f.Deps[slot].Kind != parse.DepNumber {
		return value.ErrRef
	}
	return value.Float(f.Deps[slot].Number)
}

func (f *frame) text(slot int) value.Value {
	if slot < 0 || slot >= len(f.Deps) || f.Deps[slot].Kind != parse.DepString {
		return value.ErrRef
	}
	return value.Text(f.Deps[slot].Text)
}
