package format

import (
	"strings"
	"sync"

	"github.com/midbel/sheetcalc/value"
)

type Formatter interface {
	Format(value.Value) (string, error)
}

// Parse returns the formatter of a pattern: a date pattern when it holds a
// date field, a number pattern otherwise.
func Parse(pattern string) (Formatter, error) {
	if isDatePattern(pattern) {
		return ParseDateFormatter(pattern)
	}
	return ParseNumberFormatter(pattern)
}

func isDatePattern(pattern string) bool {
	return strings.ContainsAny(pattern, "YDJhms")
}

var patterns sync.Map

// Apply formats v with pattern. Values that can not be formatted, and
// invalid patterns, give the plain text of v.
func Apply(v value.Value, pattern string) string {
	if pattern == "" || !value.IsNumber(v) {
		return v.String()
	}
	var f Formatter
	if x, ok := patterns.Load(pattern); ok {
		f = x.(Formatter)
	} else {
		p, err := Parse(pattern)
		if err != nil {
			return v.String()
		}
		patterns.Store(pattern, p)
		f = p
	}
	str, err := f.Format(v)
	if err != nil {
		return v.String()
	}
	return str
}

type ValueFormatter struct {
	formatters map[string]Formatter
}

func FormatValue() *ValueFormatter {
	vf := ValueFormatter{
		formatters: make(map[string]Formatter),
	}
	return &vf
}

func (vf *ValueFormatter) Set(kind string, formatter Formatter) {
	vf.formatters[kind] = formatter
}

func (vf *ValueFormatter) Number(pattern string) error {
	f, err := ParseNumberFormatter(pattern)
	if err == nil {
		vf.Set(value.TypeNumber, f)
	}
	return err
}

func (vf *ValueFormatter) Bool(pattern string) error {
	f, err := ParseBoolFormatter(pattern)
	if err == nil {
		vf.Set(value.TypeBool, f)
	}
	return err
}

// Format uses the formatter registered for the type of v when the value has
// no format of its own.
func (vf *ValueFormatter) Format(v value.Value) (string, error) {
	s, ok := v.(value.ScalarValue)
	if !ok {
		return v.String(), nil
	}
	f, ok := vf.formatters[s.Type()]
	if ok {
		return f.Format(v)
	}
	return v.String(), nil
}

// Display formats v with pattern when given, or with the default formatter
// of its type.
func (vf *ValueFormatter) Display(v value.Value, pattern string) string {
	if pattern != "" && value.IsNumber(v) {
		return Apply(v, pattern)
	}
	str, err := vf.Format(v)
	if err != nil {
		return v.String()
	}
	return str
}

type strFormatter struct{}

func FormatString() Formatter {
	return strFormatter{}
}

func (strFormatter) Format(v value.Value) (string, error) {
	return v.String(), nil
}

type boolFormatter struct {
	True  string
	False string
}

// ParseBoolFormatter accepts a pattern like "yes/no".
func ParseBoolFormatter(pattern string) (Formatter, error) {
	t, f, ok := strings.Cut(pattern, "/")
	if !ok {
		t, f = "TRUE", "FALSE"
	}
	return boolFormatter{True: t, False: f}, nil
}

func FormatBool() Formatter {
	return boolFormatter{True: "true", False: "false"}
}

func (f boolFormatter) Format(v value.Value) (string, error) {
	if value.True(v) {
		return f.True, nil
	}
	return f.False, nil
}
