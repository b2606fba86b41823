package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/midbel/sheetcalc/value"
)

var errPattern = errors.New("invalid number pattern")

// numberFormatter renders a number from a pattern like "+#,##0.00":
// 0 is a mandatory digit, # an optional one.
type numberFormatter struct {
	minInt   int
	minDec   int
	maxDec   int
	sign     bool
	grouping bool
	percent  bool

	decimalSep  byte
	thousandSep byte

	prefix string
	suffix string
}

func ParseNumberFormatter(pattern string) (Formatter, error) {
	nf := numberFormatter{
		decimalSep:  '.',
		thousandSep: ',',
	}
	pattern, nf.prefix, nf.suffix = splitLiterals(pattern)
	nf.percent = strings.HasSuffix(nf.suffix, "%")

	left, right, _ := strings.Cut(pattern, ".")
	if str, ok := strings.CutPrefix(left, "+"); ok {
		nf.sign, left = true, str
	}
	if left == "" {
		return nil, fmt.Errorf("%w: missing integral part", errPattern)
	}
	optional := false
	for i := range len(right) {
		switch right[i] {
		case '0':
			if optional {
				return nil, fmt.Errorf("%w: mandatory digit after optional one", errPattern)
			}
			nf.minDec++
		case '#':
			optional = true
		default:
			return nil, fmt.Errorf("%w: unexpected %c in fractional part", errPattern, right[i])
		}
		nf.maxDec++
	}
	for i := len(left) - 1; i >= 0; i-- {
		switch left[i] {
		case ',':
			nf.grouping = true
		case '0':
			nf.minInt++
		case '#':
		default:
			return nil, fmt.Errorf("%w: unexpected %c in integral part", errPattern, left[i])
		}
	}
	return nf, nil
}

func (nf numberFormatter) Format(v value.Value) (string, error) {
	f, ok := v.(value.Float)
	if !ok {
		return "", fmt.Errorf("%s: value is not a number", v)
	}
	n := float64(f)
	if nf.percent {
		n *= 100
	}
	var (
		negative = math.Signbit(n)
		str      = strconv.FormatFloat(math.Abs(n), 'f', nf.maxDec, 64)
	)
	integral, fractional, _ := strings.Cut(str, ".")
	fractional = strings.TrimRight(fractional, "0")
	if len(fractional) < nf.minDec {
		fractional += strings.Repeat("0", nf.minDec-len(fractional))
	}
	if len(integral) < nf.minInt {
		integral = strings.Repeat("0", nf.minInt-len(integral)) + integral
	}
	if nf.minInt == 0 && integral == "0" && fractional != "" {
		integral = ""
	}
	if nf.grouping {
		integral = nf.group(integral)
	}

	var buf strings.Builder
	buf.WriteString(nf.prefix)
	switch {
	case negative && strings.Trim(integral+fractional, "0,") != "":
		buf.WriteByte('-')
	case nf.sign:
		buf.WriteByte('+')
	}
	buf.WriteString(integral)
	if fractional != "" {
		buf.WriteByte(nf.decimalSep)
		buf.WriteString(fractional)
	}
	buf.WriteString(nf.suffix)
	return buf.String(), nil
}

func (nf numberFormatter) group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var (
		buf  strings.Builder
		head = len(digits) % 3
	)
	if head > 0 {
		buf.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if buf.Len() > 0 {
			buf.WriteByte(nf.thousandSep)
		}
		buf.WriteString(digits[i : i+3])
	}
	return buf.String()
}

// splitLiterals separates the digit placeholders of a pattern from the
// literal text around them, like the currency sign of "$#,##0.00".
func splitLiterals(pattern string) (string, string, string) {
	isDigit := func(r rune) bool {
		return r == '#' || r == '0' || r == ',' || r == '.' || r == '+'
	}
	first := strings.IndexFunc(pattern, isDigit)
	if first < 0 {
		return pattern, "", ""
	}
	last := strings.LastIndexFunc(pattern, isDigit)
	return pattern[first : last+1], pattern[:first], pattern[last+1:]
}
