package env

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/midbel/sheetcalc/value"
)

var (
	ErrUndefined = errors.New("undefined identifier")
	ErrDefined   = errors.New("identifier already defined")
	ErrFrozen    = errors.New("registry is frozen")
	ErrSignature = errors.New("invalid signature")
)

// Type is the set of kinds of value a parameter accepts.
type Type uint8

const (
	TypeNumber Type = 1 << iota
	TypeString
	TypeBoolean
	TypeRange
	// TypeMeta parameters receive the reference itself instead of the
	// values it points to.
	TypeMeta
)

const (
	TypeScalar = TypeNumber | TypeString | TypeBoolean
	TypeAny    = TypeScalar | TypeRange
)

func (t Type) Accepts(other Type) bool {
	if other&TypeScalar != 0 && t&TypeScalar != 0 {
		return true
	}
	return t&other&(TypeRange|TypeMeta) != 0
}

func (t Type) String() string {
	var parts []string
	if t&TypeNumber != 0 {
		parts = append(parts, "number")
	}
	if t&TypeString != 0 {
		parts = append(parts, "string")
	}
	if t&TypeBoolean != 0 {
		parts = append(parts, "boolean")
	}
	if t&TypeRange != 0 {
		parts = append(parts, "range")
	}
	if t&TypeMeta != 0 {
		parts = append(parts, "reference")
	}
	return strings.Join(parts, "|")
}

type Param struct {
	Name      string
	Types     Type
	Optional  bool
	Repeating bool
	// Default is bound to the parameter when its argument is omitted. A nil
	// Default gives value.None.
	Default value.Value
	// Lazy parameters receive a value.Lazy: the function decides when the
	// argument is evaluated.
	Lazy bool
	// AllowError parameters receive error values instead of having the call
	// short-circuit to the error.
	AllowError bool
}

func (p Param) Meta() bool {
	return p.Types&TypeMeta != 0
}

func (p Param) AcceptRange() bool {
	return p.Types&(TypeRange|TypeMeta) != 0
}

func (p Param) DefaultValue() value.Value {
	if p.Default == nil {
		return value.None
	}
	return p.Default
}

type PolicyKind int8

const (
	PolicyNone PolicyKind = iota
	PolicyFixed
	PolicyFirstArgument
)

// FormatPolicy tells which number format the result of a function takes.
type FormatPolicy struct {
	Kind   PolicyKind
	Format string
}

func NoFormat() FormatPolicy {
	return FormatPolicy{}
}

func Fixed(format string) FormatPolicy {
	return FormatPolicy{
		Kind:   PolicyFixed,
		Format: format,
	}
}

func FromFirstArgument() FormatPolicy {
	return FormatPolicy{
		Kind: PolicyFirstArgument,
	}
}

type Impl func(ctx context.Context, args []value.Value) value.Value

type Function struct {
	Name   string
	Params []Param
	Policy FormatPolicy
	// Returns is the kind of value produced. Functions returning TypeMeta
	// give a value.Reference.
	Returns Type
	Async   bool
	// Volatile functions are recomputed on every evaluation pass.
	Volatile bool
	Impl     Impl
}

func (f Function) Signature() string {
	var args []string
	for _, p := range f.Params {
		str := p.Name
		if p.Repeating {
			str += "..."
		}
		if p.Optional {
			str = "[" + str + "]"
		}
		args = append(args, str)
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(args, ", "))
}

func (f Function) check() error {
	if f.Name == "" || f.Impl == nil {
		return fmt.Errorf("%w: function without name or implementation", ErrSignature)
	}
	for i, p := range f.Params {
		if p.Repeating && i != len(f.Params)-1 {
			return fmt.Errorf("%w: %s: repeating parameter %s must be last", ErrSignature, f.Name, p.Name)
		}
		if p.Meta() && p.Lazy {
			return fmt.Errorf("%w: %s: parameter %s can not be lazy and meta", ErrSignature, f.Name, p.Name)
		}
	}
	return nil
}

// Table gives access to the functions available to formulas.
type Table interface {
	Lookup(string) (Function, bool)
}

// Symbols tells which bare names can be used in formulas.
type Symbols interface {
	IsSymbol(string) bool
}

// Registry holds the functions and the static names known to formulas. It
// is built once and then frozen: every reader shares it without locking.
type Registry struct {
	funcs   map[string]Function
	symbols map[string]value.Value
	frozen  bool
}

func New() *Registry {
	return &Registry{
		funcs:   make(map[string]Function),
		symbols: make(map[string]value.Value),
	}
}

func (r *Registry) Register(fn Function) error {
	if r.frozen {
		return ErrFrozen
	}
	if err := fn.check(); err != nil {
		return err
	}
	fn.Name = strings.ToUpper(fn.Name)
	if _, ok := r.funcs[fn.Name]; ok {
		return fmt.Errorf("%s: %w", fn.Name, ErrDefined)
	}
	if fn.Returns == 0 {
		fn.Returns = TypeScalar
	}
	r.funcs[fn.Name] = fn
	return nil
}

func (r *Registry) Declare(name string, val value.Value) error {
	if r.frozen {
		return ErrFrozen
	}
	name = strings.ToUpper(name)
	if _, ok := r.symbols[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDefined)
	}
	r.symbols[name] = val
	return nil
}

func (r *Registry) Freeze() *Registry {
	r.frozen = true
	return r
}

func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.funcs[strings.ToUpper(name)]
	return fn, ok
}

func (r *Registry) IsAsync(name string) bool {
	fn, ok := r.Lookup(name)
	return ok && fn.Async
}

func (r *Registry) IsSymbol(name string) bool {
	_, ok := r.symbols[strings.ToUpper(name)]
	return ok
}

func (r *Registry) Symbol(name string) (value.Value, error) {
	v, ok := r.symbols[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUndefined)
	}
	return v, nil
}

func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.funcs))
}
