package builtins

import (
	"context"
	"math"

	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/value"
)

var mathFunctions = []env.Function{
	{
		Name:   "SUM",
		Params: []env.Param{numbers("number")},
		Policy: env.FromFirstArgument(),
		Impl:   Sum,
	},
	{
		Name:   "MIN",
		Params: []env.Param{numbers("number")},
		Policy: env.FromFirstArgument(),
		Impl:   Min,
	},
	{
		Name:   "MAX",
		Params: []env.Param{numbers("number")},
		Policy: env.FromFirstArgument(),
		Impl:   Max,
	},
	{
		Name:   "AVERAGE",
		Params: []env.Param{numbers("number")},
		Policy: env.FromFirstArgument(),
		Impl:   Average,
	},
	{
		Name: "COUNT",
		Params: []env.Param{
			{Name: "value", Types: env.TypeAny, Repeating: true},
		},
		Returns: env.TypeNumber,
		Impl:    Count,
	},
	{
		Name:   "ABS",
		Params: []env.Param{number("number")},
		Policy: env.FromFirstArgument(),
		Impl:   Abs,
	},
	{
		Name: "ROUND",
		Params: []env.Param{
			number("number"),
			optional(number("digits"), 0),
		},
		Policy: env.FromFirstArgument(),
		Impl:   Round,
	},
	{
		Name: "CEILING.MATH",
		Params: []env.Param{
			number("number"),
			optional(number("significance"), 1),
		},
		Policy: env.FromFirstArgument(),
		Impl:   Ceil,
	},
	{
		Name:    "DOLLAR",
		Params:  []env.Param{number("number")},
		Policy:  env.Fixed("$#,##0.00"),
		Returns: env.TypeNumber,
		Impl:    asNumber,
	},
	{
		Name:    "PERCENT",
		Params:  []env.Param{number("number")},
		Policy:  env.Fixed("0.00%"),
		Returns: env.TypeNumber,
		Impl:    asNumber,
	},
}

func Sum(_ context.Context, args []value.Value) value.Value {
	var total float64
	err := eachNumber(args, func(f float64) {
		total += f
	})
	if err != nil {
		return err
	}
	return value.Float(total)
}

func Min(_ context.Context, args []value.Value) value.Value {
	var (
		res  float64
		seen bool
	)
	err := eachNumber(args, func(f float64) {
		if !seen {
			res, seen = f, true
			return
		}
		res = min(res, f)
	})
	if err != nil {
		return err
	}
	return value.Float(res)
}

func Max(_ context.Context, args []value.Value) value.Value {
	var (
		res  float64
		seen bool
	)
	err := eachNumber(args, func(f float64) {
		if !seen {
			res, seen = f, true
			return
		}
		res = max(res, f)
	})
	if err != nil {
		return err
	}
	return value.Float(res)
}

func Average(_ context.Context, args []value.Value) value.Value {
	var (
		total float64
		count int
	)
	err := eachNumber(args, func(f float64) {
		total += f
		count++
	})
	if err != nil {
		return err
	}
	if count == 0 {
		return value.ErrDiv0
	}
	return value.Float(total / float64(count))
}

func Count(_ context.Context, args []value.Value) value.Value {
	var count int
	value.Scalars(args, func(v value.ScalarValue) bool {
		if value.IsNumber(v) {
			count++
		}
		return true
	})
	return value.Float(count)
}

func Abs(_ context.Context, args []value.Value) value.Value {
	f, err := value.CastToFloat(args[0])
	if err != nil {
		return value.ErrValue
	}
	return value.Float(math.Abs(float64(f)))
}

func Round(_ context.Context, args []value.Value) value.Value {
	f, err := value.CastToFloat(args[0])
	if err != nil {
		return value.ErrValue
	}
	d, err := value.CastToFloat(args[1])
	if err != nil {
		return value.ErrValue
	}
	digits := math.Trunc(float64(d))
	if digits < 0 {
		pow := math.Pow(10, -digits)
		return value.Float(math.Round(float64(f)/pow) * pow)
	}
	pow := math.Pow(10, digits)
	return value.Float(math.Round(float64(f)*pow) / pow)
}

func Ceil(_ context.Context, args []value.Value) value.Value {
	f, err := value.CastToFloat(args[0])
	if err != nil {
		return value.ErrValue
	}
	s, err := value.CastToFloat(args[1])
	if err != nil {
		return value.ErrValue
	}
	if s == 0 {
		return value.Float(0)
	}
	return value.Float(math.Ceil(float64(f/s)) * float64(s))
}

// asNumber returns its argument as a number: only the format of the result
// differs.
func asNumber(_ context.Context, args []value.Value) value.Value {
	f, err := value.CastToFloat(args[0])
	if err != nil {
		return value.ErrValue
	}
	return f
}

// eachNumber calls do with every number of args. Text and booleans found in
// ranges are skipped while an error stops the iteration and is returned.
func eachNumber(args []value.Value, do func(float64)) value.Value {
	var res value.Value
	for _, a := range args {
		if arr, ok := a.(value.ArrayValue); ok {
			value.Scalars([]value.Value{arr}, func(v value.ScalarValue) bool {
				switch v := v.(type) {
				case value.Float:
					do(float64(v))
				case value.Error:
					res = v
					return false
				}
				return true
			})
			if res != nil {
				return res
			}
			continue
		}
		switch {
		case value.IsError(a):
			return a
		case value.IsNone(a), value.IsBlank(a):
			continue
		}
		f, err := value.CastToFloat(a)
		if err != nil {
			return value.ErrValue
		}
		do(float64(f))
	}
	return nil
}

func toValue(v any) value.Value {
	switch v := v.(type) {
	case int:
		return value.Float(v)
	case float64:
		return value.Float(v)
	case string:
		return value.Text(v)
	case bool:
		return value.Boolean(v)
	case value.Value:
		return v
	default:
		return value.None
	}
}
