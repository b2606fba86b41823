package formula

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/midbel/sheetcalc/formula/cache"
	"github.com/midbel/sheetcalc/formula/compile"
	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/value"
)

// Compiled is a formula ready to be evaluated: the procedure shared by every
// formula of the same shape and the dependencies of this one.
type Compiled struct {
	Formula    string
	Normalized parse.Normalized
	Procedure  *compile.Procedure
}

func (c Compiled) Deps() []parse.Dependency {
	return c.Normalized.Deps
}

func (c Compiled) BadExpression() bool {
	return c.Procedure == nil || c.Procedure.BadExpression()
}

// References returns the reference dependencies of the formula, in order.
func (c Compiled) References() []parse.Dependency {
	var list []parse.Dependency
	for _, d := range c.Normalized.Deps {
		if d.Kind == parse.DepReference {
			list = append(list, d)
		}
	}
	return list
}

// Binding returns the binding to execute the procedure with.
func (c Compiled) Binding(r compile.Resolver, fns env.Table) compile.Binding {
	return compile.Binding{
		Deps:      c.Normalized.Deps,
		Resolver:  r,
		Functions: fns,
	}
}

type Engine struct {
	funcs  env.Table
	syms   env.Symbols
	logger *slog.Logger
	shards int

	procs *cache.Cache
}

type Option func(*Engine)

// WithSymbols sets the names accepted as bare symbols. The registry is used
// when not set.
func WithSymbols(syms env.Symbols) Option {
	return func(e *Engine) {
		e.syms = syms
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithShards(n int) Option {
	return func(e *Engine) {
		e.shards = n
	}
}

func NewEngine(fns *env.Registry, options ...Option) *Engine {
	e := Engine{
		funcs:  fns,
		syms:   fns,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range options {
		o(&e)
	}
	e.procs = cache.New(e.funcs, e.syms, cache.WithShards(e.shards), cache.WithLogger(e.logger))
	return &e
}

func (e *Engine) Functions() env.Table {
	return e.funcs
}

// Compile normalizes the formula and gets its procedure from the cache. A
// formula that can not be read gives a bad expression, never an error.
func (e *Engine) Compile(formula string) Compiled {
	c := Compiled{
		Formula: formula,
	}
	norm, err := parse.NormalizeString(formula)
	if err != nil {
		c.Procedure = compile.Bad(formula, err)
		return c
	}
	c.Normalized = norm
	c.Procedure = e.procs.GetOrCompile(norm.Text)
	if err := checkScalars(c.Procedure, norm.Deps); err != nil {
		c.Procedure = compile.Bad(formula, err)
	}
	return c
}

func checkScalars(proc *compile.Procedure, deps []parse.Dependency) error {
	for _, slot := range proc.Scalars {
		if slot < 0 || slot >= len(deps) || deps[slot].Kind != parse.DepReference {
			continue
		}
		ref, err := deps[slot].Reference()
		if err == nil && ref.IsRange() {
			return fmt.Errorf("%s: range given where a value is expected: %w", deps[slot], compile.ErrInvalid)
		}
	}
	return nil
}

// Evaluate compiles and runs a formula outside of any cell.
func (e *Engine) Evaluate(ctx context.Context, formula string, r compile.Resolver) value.Value {
	c := e.Compile(formula)
	return c.Procedure.Execute(ctx, c.Binding(r, e.funcs))
}

// Reset drops every compiled procedure. It must be called when the set of
// symbols changes since validation depends on it.
func (e *Engine) Reset() {
	e.procs.Reset()
}

func (e *Engine) Cached() int {
	return e.procs.Len()
}
