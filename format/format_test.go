package format

import (
	"testing"
	"time"

	"github.com/midbel/sheetcalc/value"
)

func TestFormatter(t *testing.T) {
	tests := []struct {
		Input value.Value
		Want  string
	}{
		{
			Input: value.Float(42),
			Want:  "42",
		},
		{
			Input: value.Float(123),
			Want:  "123",
		},

		{
			Input: value.Float(3.14),
			Want:  "3.14",
		},
		{
			Input: value.Text("foobar"),
			Want:  "foobar",
		},
		{
			Input: value.Boolean(true),
			Want:  "true",
		},
		{
			Input: value.ErrDiv0,
			Want:  "#DIV/0!",
		},
	}
	vf := FormatValue()
	vf.Number("###.##")
	vf.Set(value.TypeText, FormatString())
	vf.Set(value.TypeBool, FormatBool())
	for _, c := range tests {
		got, err := vf.Format(c.Input)
		if err != nil {
			t.Errorf("fail to format value (%v): %s", c.Input, err)
			continue
		}
		if got != c.Want {
			t.Errorf("%v: results mismatched! want %s - got %s", c.Input, c.Want, got)
		}
	}
}

func TestApply(t *testing.T) {
	serial := SerialFromDate(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))
	tests := []struct {
		Input   value.Value
		Pattern string
		Want    string
	}{
		{
			Input:   value.Float(1234.5),
			Pattern: "$#,##0.00",
			Want:    "$1,234.50",
		},
		{
			Input:   value.Float(0.125),
			Pattern: "0.00%",
			Want:    "12.50%",
		},
		{
			Input:   value.Float(7),
			Pattern: "000",
			Want:    "007",
		},
		{
			Input:   value.Float(serial),
			Pattern: "YYYY-0MM-0DD",
			Want:    "2026-02-20",
		},
		{
			Input:   value.Text("foo"),
			Pattern: "$#,##0.00",
			Want:    "foo",
		},
		{
			Input:   value.Float(1.5),
			Pattern: "",
			Want:    "1.5",
		},
		{
			Input:   value.Float(1.5),
			Pattern: "abc",
			Want:    "1.5",
		},
	}
	for _, c := range tests {
		got := Apply(c.Input, c.Pattern)
		if got != c.Want {
			t.Errorf("%v (%s): results mismatched! want %s - got %s", c.Input, c.Pattern, c.Want, got)
		}
	}
}

func TestBoolPattern(t *testing.T) {
	vf := FormatValue()
	if err := vf.Bool("yes/no"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := vf.Display(value.Boolean(false), ""); got != "no" {
		t.Errorf("results mismatched! want no - got %s", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		Input   float64
		Pattern string
		Want    string
	}{
		{Input: -1234567.891, Pattern: "#,##0.00", Want: "-1,234,567.89"},
		{Input: 12, Pattern: "+0", Want: "+12"},
		{Input: -12, Pattern: "+0", Want: "-12"},
		{Input: 0.5, Pattern: "#.##", Want: ".5"},
		{Input: 2.5, Pattern: "0.0#", Want: "2.5"},
		{Input: 2.126, Pattern: "0.0#", Want: "2.13"},
		{Input: -0.001, Pattern: "0", Want: "0"},
		{Input: 999, Pattern: "#,##0", Want: "999"},
		{Input: 12, Pattern: "0 EUR", Want: "12 EUR"},
	}
	for _, c := range tests {
		f, err := ParseNumberFormatter(c.Pattern)
		if err != nil {
			t.Errorf("%s: error parsing pattern: %s", c.Pattern, err)
			continue
		}
		got, err := f.Format(value.Float(c.Input))
		if err != nil {
			t.Errorf("%s: fail to format number: %s", c.Pattern, err)
			continue
		}
		if got != c.Want {
			t.Errorf("%s (%f): results mismatched! want %s - got %s", c.Pattern, c.Input, c.Want, got)
		}
	}
	for _, pattern := range []string{"", "+", ".00", "0.#0", "0a0"} {
		if _, err := ParseNumberFormatter(pattern); err == nil {
			t.Errorf("%s: expected error", pattern)
		}
	}
}
