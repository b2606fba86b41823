package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/midbel/sheetcalc/value"
)

// epoch is the day zero of date serial numbers.
var epoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// DateFromSerial converts a serial number, days since the epoch with the
// time as fraction, to a time.
func DateFromSerial(serial float64) time.Time {
	ms := math.Round(serial * 24 * 60 * 60 * 1000)
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

// SerialFromDate is the inverse of DateFromSerial.
func SerialFromDate(t time.Time) float64 {
	return float64(t.Sub(epoch)) / float64(24*time.Hour)
}

type dateField func(time.Time) string

func number(get func(time.Time) int, width int) dateField {
	return func(t time.Time) string {
		str := strconv.Itoa(get(t))
		if n := width - len(str); n > 0 {
			str = strings.Repeat("0", n) + str
		}
		return str
	}
}

func month(t time.Time) int   { return int(t.Month()) }
func day(t time.Time) int     { return t.Day() }
func yearDay(t time.Time) int { return t.YearDay() }
func hour(t time.Time) int    { return t.Hour() }
func minute(t time.Time) int  { return t.Minute() }
func second(t time.Time) int  { return t.Second() }

// longer fields come first so that the scan of a pattern is greedy.
var dateFields = []struct {
	Pattern string
	Field   dateField
}{
	{"YYYY", number(time.Time.Year, 0)},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"DDDD", func(t time.Time) string { return t.Weekday().String() }},
	{"0JJJ", number(yearDay, 3)},
	{"MMM", func(t time.Time) string { return t.Month().String()[:3] }},
	{"DDD", func(t time.Time) string { return t.Weekday().String()[:3] }},
	{"JJJ", number(yearDay, 0)},
	{"0MM", number(month, 2)},
	{"0DD", number(day, 2)},
	{"0hh", number(hour, 2)},
	{"0mm", number(minute, 2)},
	{"0ss", number(second, 2)},
	{"YY", number(func(t time.Time) int { return t.Year() % 100 }, 2)},
	{"MM", number(month, 0)},
	{"DD", number(day, 0)},
	{"hh", number(hour, 0)},
	{"mm", number(minute, 0)},
	{"ss", number(second, 0)},
}

type dateFormatter struct {
	fields []dateField
}

func ParseDateFormatter(pattern string) (Formatter, error) {
	var (
		df      dateFormatter
		literal strings.Builder
	)
	flush := func() {
		if literal.Len() == 0 {
			return
		}
		str := literal.String()
		df.fields = append(df.fields, func(time.Time) string { return str })
		literal.Reset()
	}
	for len(pattern) > 0 {
		i := matchField(pattern)
		if i < 0 {
			literal.WriteByte(pattern[0])
			pattern = pattern[1:]
			continue
		}
		flush()
		df.fields = append(df.fields, dateFields[i].Field)
		pattern = pattern[len(dateFields[i].Pattern):]
	}
	flush()
	return df, nil
}

func matchField(pattern string) int {
	for i, f := range dateFields {
		if strings.HasPrefix(pattern, f.Pattern) {
			return i
		}
	}
	return -1
}

func (f dateFormatter) Format(v value.Value) (string, error) {
	serial, ok := v.(value.Float)
	if !ok {
		return "", fmt.Errorf("%s: value is not a date", v)
	}
	if len(f.fields) == 0 {
		return v.String(), nil
	}
	var (
		str strings.Builder
		tv  = DateFromSerial(float64(serial))
	)
	for _, fn := range f.fields {
		str.WriteString(fn(tv))
	}
	return str.String(), nil
}
