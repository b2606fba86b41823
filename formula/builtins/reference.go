package builtins

import (
	"context"

	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

var referenceFunctions = []env.Function{
	{
		Name:    "ROW",
		Params:  []env.Param{optional(reference("ref"), nil)},
		Returns: env.TypeNumber,
		Impl:    Row,
	},
	{
		Name:    "COLUMN",
		Params:  []env.Param{optional(reference("ref"), nil)},
		Returns: env.TypeNumber,
		Impl:    Column,
	},
	{
		Name:    "ROWS",
		Params:  []env.Param{reference("ref")},
		Returns: env.TypeNumber,
		Impl:    Rows,
	},
	{
		Name:    "COLUMNS",
		Params:  []env.Param{reference("ref")},
		Returns: env.TypeNumber,
		Impl:    Columns,
	},
	{
		Name: "OFFSET",
		Params: []env.Param{
			reference("ref"),
			number("rows"),
			number("cols"),
			optional(number("height"), nil),
			optional(number("width"), nil),
		},
		Returns:  env.TypeMeta | env.TypeRange,
		Volatile: true,
		Impl:     Offset,
	},
}

func Row(ctx context.Context, args []value.Value) value.Value {
	rg, err := rangeOf(ctx, args[0])
	if err != nil {
		return err
	}
	return value.Float(rg.Starts.Line)
}

func Column(ctx context.Context, args []value.Value) value.Value {
	rg, err := rangeOf(ctx, args[0])
	if err != nil {
		return err
	}
	return value.Float(rg.Starts.Column)
}

func Rows(ctx context.Context, args []value.Value) value.Value {
	rg, err := rangeOf(ctx, args[0])
	if err != nil {
		return err
	}
	return value.Float(rg.Height())
}

func Columns(ctx context.Context, args []value.Value) value.Value {
	rg, err := rangeOf(ctx, args[0])
	if err != nil {
		return err
	}
	return value.Float(rg.Width())
}

// Offset moves a reference by rows and cols, ignoring the "$" markers, and
// optionally resizes it.
func Offset(_ context.Context, args []value.Value) value.Value {
	ref, ok := args[0].(value.Reference)
	if !ok {
		return value.ErrRef
	}
	rows, err1 := value.CastToFloat(args[1])
	cols, err2 := value.CastToFloat(args[2])
	if err1 != nil || err2 != nil {
		return value.ErrValue
	}
	var (
		rg     = ref.Range()
		height = rg.Height()
		width  = rg.Width()
	)
	if !value.IsNone(args[3]) {
		h, err := value.CastToFloat(args[3])
		if err != nil || h < 1 {
			return value.ErrValue
		}
		height = int64(h)
	}
	if !value.IsNone(args[4]) {
		w, err := value.CastToFloat(args[4])
		if err != nil || w < 1 {
			return value.ErrValue
		}
		width = int64(w)
	}
	starts := rg.Starts.Offset(int64(rows), int64(cols))
	if !starts.Valid() {
		return value.ErrRef
	}
	ends := starts.Offset(height-1, width-1)
	return value.NewReference(layout.RangeReference(layout.NewRange(starts, ends)))
}

func rangeOf(ctx context.Context, arg value.Value) (layout.Range, value.Value) {
	if value.IsNone(arg) {
		pos, ok := env.PositionFrom(ctx)
		if !ok {
			return layout.Range{}, value.ErrValue
		}
		return layout.SingleCell(pos), nil
	}
	ref, ok := arg.(value.Reference)
	if !ok || ref.Invalid {
		return layout.Range{}, value.ErrRef
	}
	return ref.Range(), nil
}
