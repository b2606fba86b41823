package builtins

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/value"
)

var textFunctions = []env.Function{
	{
		Name: "CONCAT",
		Params: []env.Param{
			{Name: "text", Types: env.TypeScalar | env.TypeRange, Repeating: true},
		},
		Returns: env.TypeString,
		Impl:    Concat,
	},
	{
		Name:    "LEN",
		Params:  []env.Param{scalar("text")},
		Returns: env.TypeNumber,
		Impl:    Len,
	},
	{
		Name:    "UPPER",
		Params:  []env.Param{scalar("text")},
		Returns: env.TypeString,
		Impl:    Upper,
	},
	{
		Name:    "LOWER",
		Params:  []env.Param{scalar("text")},
		Returns: env.TypeString,
		Impl:    Lower,
	},
}

func Concat(_ context.Context, args []value.Value) value.Value {
	var (
		str strings.Builder
		res value.Value
	)
	value.Scalars(args, func(v value.ScalarValue) bool {
		if value.IsError(v) {
			res = v
			return false
		}
		if value.IsNone(v) {
			return true
		}
		t, err := value.CastToText(v)
		if err != nil {
			res = value.ErrValue
			return false
		}
		str.WriteString(string(t))
		return true
	})
	if res != nil {
		return res
	}
	return value.Text(str.String())
}

func Len(_ context.Context, args []value.Value) value.Value {
	t, err := value.CastToText(args[0])
	if err != nil {
		return value.ErrValue
	}
	return value.Float(utf8.RuneCountInString(string(t)))
}

func Upper(_ context.Context, args []value.Value) value.Value {
	t, err := value.CastToText(args[0])
	if err != nil {
		return value.ErrValue
	}
	return value.Text(strings.ToUpper(string(t)))
}

func Lower(_ context.Context, args []value.Value) value.Value {
	t, err := value.CastToText(args[0])
	if err != nil {
		return value.ErrValue
	}
	return value.Text(strings.ToLower(string(t)))
}
