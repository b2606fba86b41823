package value

import (
	"math"
	"strconv"
	"strings"
)

type Blank struct{}

func Empty() ScalarValue {
	return Blank{}
}

func (Blank) Type() string {
	return TypeBlank
}

func (Blank) Kind() ValueKind {
	return KindScalar
}

func (Blank) String() string {
	return ""
}

func (Blank) Scalar() any {
	return nil
}

func (Blank) ToText() (ScalarValue, error) {
	return Text(""), nil
}

func (Blank) ToBool() (ScalarValue, error) {
	return Boolean(false), nil
}

func (Blank) ToFloat() (ScalarValue, error) {
	return Float(0), nil
}

type noValue struct{}

// None is the value bound to an omitted argument that has no declared
// default. It is neither zero nor the empty string.
var None ScalarValue = noValue{}

func IsNone(v Value) bool {
	_, ok := v.(noValue)
	return ok
}

func (noValue) Type() string {
	return "none"
}

func (noValue) Kind() ValueKind {
	return KindScalar
}

func (noValue) String() string {
	return ""
}

func (noValue) Scalar() any {
	return nil
}

type Float float64

func (Float) Type() string {
	return TypeNumber
}

func (Float) Kind() ValueKind {
	return KindScalar
}

func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

func (f Float) Scalar() any {
	return float64(f)
}

func (f Float) ToText() (ScalarValue, error) {
	return Text(f.String()), nil
}

func (f Float) ToBool() (ScalarValue, error) {
	return Boolean(float64(f) != 0), nil
}

func (f Float) ToFloat() (ScalarValue, error) {
	return f, nil
}

func (f Float) Equal(other Value) (bool, error) {
	x, ok := other.(Float)
	if !ok {
		return false, ErrCompatible
	}
	return float64(f) == float64(x), nil
}

func (f Float) Less(other Value) (bool, error) {
	x, ok := other.(Float)
	if !ok {
		return false, ErrCompatible
	}
	return float64(f) < float64(x), nil
}

func (f Float) Valid() bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

type Text string

func (Text) Type() string {
	return TypeText
}

func (Text) Kind() ValueKind {
	return KindScalar
}

func (t Text) String() string {
	return string(t)
}

func (t Text) Scalar() any {
	return string(t)
}

func (t Text) ToText() (ScalarValue, error) {
	return t, nil
}

func (t Text) ToBool() (ScalarValue, error) {
	switch strings.ToUpper(strings.TrimSpace(string(t))) {
	case "TRUE":
		return Boolean(true), nil
	case "FALSE":
		return Boolean(false), nil
	default:
		return ErrValue, ErrCast
	}
}

func (t Text) ToFloat() (ScalarValue, error) {
	str := strings.TrimSpace(string(t))
	if str == "" {
		return Float(0), nil
	}
	var percent bool
	if strings.HasSuffix(str, "%") {
		str, percent = str[:len(str)-1], true
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return ErrValue, ErrCast
	}
	if percent {
		f /= 100
	}
	return Float(f), nil
}

func (t Text) Equal(other Value) (bool, error) {
	x, ok := other.(Text)
	if !ok {
		return false, ErrCompatible
	}
	return strings.EqualFold(string(t), string(x)), nil
}

func (t Text) Less(other Value) (bool, error) {
	x, ok := other.(Text)
	if !ok {
		return false, ErrCompatible
	}
	return strings.ToLower(string(t)) < strings.ToLower(string(x)), nil
}

type Boolean bool

func (Boolean) Type() string {
	return TypeBool
}

func (Boolean) Kind() ValueKind {
	return KindScalar
}

func (b Boolean) String() string {
	return strings.ToUpper(strconv.FormatBool(bool(b)))
}

func (b Boolean) Scalar() any {
	return bool(b)
}

func (b Boolean) ToText() (ScalarValue, error) {
	return Text(b.String()), nil
}

func (b Boolean) ToBool() (ScalarValue, error) {
	return b, nil
}

func (b Boolean) ToFloat() (ScalarValue, error) {
	if !bool(b) {
		return Float(0), nil
	}
	return Float(1), nil
}

func (b Boolean) Equal(other Value) (bool, error) {
	x, ok := other.(Boolean)
	if !ok {
		return false, ErrCompatible
	}
	return bool(b) == bool(x), nil
}

func (b Boolean) Less(other Value) (bool, error) {
	x, ok := other.(Boolean)
	if !ok {
		return false, ErrCompatible
	}
	return !bool(b) && bool(x), nil
}
