package value

import (
	"github.com/midbel/sheetcalc/layout"
)

// Reference is the descriptor bound to a meta parameter: the function
// receives where the data lives rather than the data itself.
type Reference struct {
	layout.Reference
}

func NewReference(ref layout.Reference) Reference {
	return Reference{
		Reference: ref,
	}
}

func (Reference) Kind() ValueKind {
	return KindReference
}

func (r Reference) String() string {
	return r.Reference.String()
}

// Lazy is an argument bound as a thunk. The function body decides if and
// when the underlying expression is evaluated; it is evaluated at most once.
type Lazy struct {
	get func() Value
}

func NewLazy(get func() Value) Lazy {
	var (
		val  Value
		done bool
	)
	return Lazy{
		get: func() Value {
			if !done {
				val, done = get(), true
			}
			return val
		},
	}
}

func (Lazy) Kind() ValueKind {
	return KindLazy
}

func (Lazy) String() string {
	return "<lazy>"
}

func (l Lazy) Value() Value {
	if l.get == nil {
		return None
	}
	return l.get()
}

// Force evaluates v when it is a lazy argument.
func Force(v Value) Value {
	if l, ok := v.(Lazy); ok {
		return l.Value()
	}
	return v
}
