package builtins

import (
	"context"

	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/value"
)

var logicFunctions = []env.Function{
	{
		Name: "IF",
		Params: []env.Param{
			scalar("test"),
			lazy(env.Param{Name: "then", Types: env.TypeAny}),
			optional(lazy(env.Param{Name: "else", Types: env.TypeAny}), false),
		},
		Returns: env.TypeAny,
		Impl:    If,
	},
	{
		Name: "IFERROR",
		Params: []env.Param{
			{Name: "value", Types: env.TypeAny, AllowError: true},
			lazy(env.Param{Name: "fallback", Types: env.TypeAny}),
		},
		Policy:  env.FromFirstArgument(),
		Returns: env.TypeAny,
		Impl:    IfError,
	},
	{
		Name: "AND",
		Params: []env.Param{
			{Name: "logical", Types: env.TypeScalar | env.TypeRange, Repeating: true},
		},
		Returns: env.TypeBoolean,
		Impl:    And,
	},
	{
		Name: "OR",
		Params: []env.Param{
			{Name: "logical", Types: env.TypeScalar | env.TypeRange, Repeating: true},
		},
		Returns: env.TypeBoolean,
		Impl:    Or,
	},
	{
		Name:    "NOT",
		Params:  []env.Param{scalar("logical")},
		Returns: env.TypeBoolean,
		Impl:    Not,
	},
	{
		Name: "ISBLANK",
		Params: []env.Param{
			{Name: "value", Types: env.TypeScalar, AllowError: true},
		},
		Returns: env.TypeBoolean,
		Impl:    IsBlank,
	},
	{
		Name: "ISERROR",
		Params: []env.Param{
			{Name: "value", Types: env.TypeScalar, AllowError: true},
		},
		Returns: env.TypeBoolean,
		Impl:    IsError,
	},
}

func If(_ context.Context, args []value.Value) value.Value {
	ok, err := value.CastToBool(args[0])
	if err != nil {
		return value.ErrValue
	}
	if ok {
		return value.Force(args[1])
	}
	return value.Force(args[2])
}

func IfError(_ context.Context, args []value.Value) value.Value {
	if value.IsError(args[0]) {
		return value.Force(args[1])
	}
	return args[0]
}

func And(_ context.Context, args []value.Value) value.Value {
	return reduceBool(args, true, func(acc, b bool) bool {
		return acc && b
	})
}

func Or(_ context.Context, args []value.Value) value.Value {
	return reduceBool(args, false, func(acc, b bool) bool {
		return acc || b
	})
}

func Not(_ context.Context, args []value.Value) value.Value {
	b, err := value.CastToBool(args[0])
	if err != nil {
		return value.ErrValue
	}
	return !b
}

func IsBlank(_ context.Context, args []value.Value) value.Value {
	return value.Boolean(value.IsBlank(value.Single(args[0])))
}

func IsError(_ context.Context, args []value.Value) value.Value {
	return value.Boolean(value.IsError(value.Single(args[0])))
}

func reduceBool(args []value.Value, acc bool, do func(bool, bool) bool) value.Value {
	var (
		res  value.Value
		seen bool
	)
	value.Scalars(args, func(v value.ScalarValue) bool {
		if value.IsError(v) {
			res = v
			return false
		}
		if value.IsBlank(v) || value.IsNone(v) {
			return true
		}
		b, err := value.CastToBool(v)
		if err != nil {
			return true
		}
		acc = do(acc, bool(b))
		seen = true
		return true
	})
	if res != nil {
		return res
	}
	if !seen {
		return value.ErrValue
	}
	return value.Boolean(acc)
}
