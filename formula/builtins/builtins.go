package builtins

import (
	"github.com/midbel/sheetcalc/formula/env"
)

var all = [][]env.Function{
	mathFunctions,
	logicFunctions,
	textFunctions,
	referenceFunctions,
	asyncFunctions,
}

// Registry returns a frozen registry holding every builtin function.
func Registry() *env.Registry {
	reg := Builder()
	return reg.Freeze()
}

// Builder returns a registry holding every builtin function that can still
// receive user declarations.
func Builder() *env.Registry {
	reg := env.New()
	for _, set := range all {
		for _, fn := range set {
			if err := reg.Register(fn); err != nil {
				panic(err)
			}
		}
	}
	return reg
}

func number(name string) env.Param {
	return env.Param{
		Name:  name,
		Types: env.TypeNumber,
	}
}

func numbers(name string) env.Param {
	return env.Param{
		Name:      name,
		Types:     env.TypeNumber | env.TypeRange,
		Repeating: true,
	}
}

func scalar(name string) env.Param {
	return env.Param{
		Name:  name,
		Types: env.TypeScalar,
	}
}

func reference(name string) env.Param {
	return env.Param{
		Name:  name,
		Types: env.TypeMeta,
	}
}

func optional(p env.Param, def any) env.Param {
	p.Optional = true
	if def != nil {
		p.Default = toValue(def)
	}
	return p
}

func lazy(p env.Param) env.Param {
	p.Lazy = true
	return p
}
