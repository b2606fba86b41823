package value

import (
	"errors"
	"fmt"

	"github.com/midbel/sheetcalc/layout"
)

var (
	ErrCast       = errors.New("value can not be cast to target type")
	ErrCompatible = errors.New("incompatible type")
)

const (
	TypeNumber = "number"
	TypeText   = "text"
	TypeBool   = "boolean"
	TypeBlank  = "blank"
	TypeError  = "error"
)

type ValueKind int8

const (
	KindScalar ValueKind = 1 << iota
	KindError
	KindArray
	KindReference
	KindLazy
)

type Value interface {
	Kind() ValueKind
	fmt.Stringer
}

type ScalarValue interface {
	Value
	Type() string
	Scalar() any
}

type ArrayValue interface {
	Value
	Dimension() layout.Dimension
	At(int, int) ScalarValue
}

type Comparable interface {
	Equal(Value) (bool, error)
	Less(Value) (bool, error)
}

func IsScalar(v Value) bool {
	return v != nil && v.Kind() == KindScalar
}

func IsError(v Value) bool {
	return v != nil && v.Kind() == KindError
}

func IsArray(v Value) bool {
	return v != nil && v.Kind() == KindArray
}

func IsNumber(v Value) bool {
	_, ok := v.(Float)
	return ok
}

func IsBlank(v Value) bool {
	_, ok := v.(Blank)
	return ok
}

// Single returns the only cell of a one by one array, or v itself.
func Single(v Value) Value {
	arr, ok := v.(ArrayValue)
	if !ok {
		return v
	}
	dim := arr.Dimension()
	if dim.Lines != 1 || dim.Columns != 1 {
		return v
	}
	return arr.At(0, 0)
}

// Scalars calls do for each scalar found in values, flattening arrays
// line by line.
func Scalars(values []Value, do func(ScalarValue) bool) {
	for _, v := range values {
		switch v := v.(type) {
		case ArrayValue:
			dim := v.Dimension()
			for i := range dim.Lines {
				for j := range dim.Columns {
					if !do(v.At(int(i), int(j))) {
						return
					}
				}
			}
		case ScalarValue:
			if !do(v) {
				return
			}
		}
	}
}
