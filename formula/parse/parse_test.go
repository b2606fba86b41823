package parse

import (
	"errors"
	"reflect"
	"testing"

	"github.com/midbel/sheetcalc/formula/op"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		Input string
		Want  []op.Op
	}{
		{
			Input: "=1+2",
			Want:  []op.Op{op.Number, op.Add, op.Number},
		},
		{
			Input: "-1.5e3*-A1",
			Want:  []op.Op{op.Number, op.Mul, op.Sub, op.Reference},
		},
		{
			Input: "A1-1",
			Want:  []op.Op{op.Reference, op.Sub, op.Number},
		},
		{
			Input: "SUM(A1:B2, 'My sheet'!$C$3)",
			Want:  []op.Op{op.Function, op.BegGrp, op.Reference, op.Comma, op.Space, op.Reference, op.EndGrp},
		},
		{
			Input: "T.TEST(Sheet1!A1:B2,TRUE)",
			Want:  []op.Op{op.Function, op.BegGrp, op.Reference, op.Comma, op.Ident, op.EndGrp},
		},
		{
			Input: "?#REF!+'name'",
			Want:  []op.Op{op.Debug, op.InvalidRef, op.Add, op.Ident},
		},
		{
			Input: "\"abc\\\"def\"&\"open",
			Want:  []op.Op{op.String, op.Concat, op.String},
		},
		{
			Input: "{1,2;3,4}",
			Want:  []op.Op{op.BegArr, op.Number, op.Comma, op.Number, op.Semi, op.Number, op.Comma, op.Number, op.EndArr},
		},
		{
			Input: "1<>2<=3>=4",
			Want:  []op.Op{op.Number, op.Ne, op.Number, op.Le, op.Number, op.Ge, op.Number},
		},
		{
			Input: "A$1 : $b2 @",
			Want:  []op.Op{op.Reference, op.Space, op.Range, op.Space, op.Reference, op.Space, op.Unknown},
		},
		{
			Input: "A$$1",
			Want:  []op.Op{op.Unknown},
		},
	}
	for _, c := range tests {
		tokens, err := Tokenize(c.Input, ModeFormula)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		var got []op.Op
		for _, tok := range tokens {
			got = append(got, tok.Type)
		}
		if !reflect.DeepEqual(got, c.Want) {
			t.Errorf("%s: tokens mismatched! want %v - got %v", c.Input, c.Want, got)
		}
	}
}

func TestTokenizeInvalidInput(t *testing.T) {
	_, err := Tokenize("1+\xff", ModeFormula)
	var lex *LexError
	if !errors.As(err, &lex) {
		t.Fatalf("expected lexical error but got %v", err)
	}
	if lex.Pos != 2 {
		t.Errorf("position mismatched! want 2 - got %d", lex.Pos)
	}
}

func TestStringLiteral(t *testing.T) {
	tests := []struct {
		Input string
		Want  string
	}{
		{Input: `"abc"`, Want: "abc"},
		{Input: `"a\"b"`, Want: `a"b`},
		{Input: `"unterminated`, Want: "unterminated"},
		{Input: `"a\\"`, Want: `a\`},
	}
	for _, c := range tests {
		tokens, err := Tokenize(c.Input, ModeFormula)
		if err != nil || len(tokens) != 1 {
			t.Errorf("%s: expected a single token", c.Input)
			continue
		}
		if got := tokens[0].Text(); got != c.Want {
			t.Errorf("%s: text mismatched! want %s - got %s", c.Input, c.Want, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		Input string
		Text  string
		Deps  int
	}{
		{
			Input: "=A1+B1",
			Text:  "|0|+|1|",
			Deps:  2,
		},
		{
			Input: "=SUM(A1:A10, 2, \"x\") * 3",
			Text:  "SUM(|0|,|N 0|,|S 0|)*|N 1|",
			Deps:  4,
		},
		{
			Input: "='|N 0|'&\"|S 0|\"",
			Text:  "'|N 0|'&|S 0|",
			Deps:  1,
		},
		{
			Input: "=IF(TRUE, 1)",
			Text:  "IF(TRUE,|N 0|)",
			Deps:  1,
		},
	}
	for _, c := range tests {
		norm, err := NormalizeString(c.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		if norm.Text != c.Text {
			t.Errorf("%s: text mismatched! want %s - got %s", c.Input, c.Text, norm.Text)
		}
		if len(norm.Deps) != c.Deps {
			t.Errorf("%s: dependencies mismatched! want %d - got %d", c.Input, c.Deps, len(norm.Deps))
		}
	}
}

func TestNormalizeSameShape(t *testing.T) {
	tests := [][]string{
		{"=A1+B1*2", "=A2+B2*10", "=Sheet2!C5+'Other sheet'!D1:D10*-4"},
		{"=CONCAT(\"a\", A1)", "=CONCAT(\"something else\", $Z$100)"},
	}
	for _, group := range tests {
		var text string
		for i, str := range group {
			norm, err := NormalizeString(str)
			if err != nil {
				t.Errorf("%s: unexpected error: %s", str, err)
				break
			}
			if i == 0 {
				text = norm.Text
				continue
			}
			if norm.Text != text {
				t.Errorf("%s: text mismatched! want %s - got %s", str, text, norm.Text)
			}
		}
	}
}

func TestSubstitute(t *testing.T) {
	tests := []string{
		"A1+B1",
		"SUM(A1:A10,2,\"x\\\"y\")*3",
		"'|N 0|'&\"|S 0|\"",
		"Sheet1!A1&'My sheet'!$B$2",
	}
	for _, str := range tests {
		norm, err := NormalizeString(str)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", str, err)
			continue
		}
		got, err := norm.Formula()
		if err != nil {
			t.Errorf("%s: unexpected error: %s", str, err)
			continue
		}
		if got != str {
			t.Errorf("substitution mismatched! want %s - got %s", str, got)
		}
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		Input string
		Want  string
	}{
		{Input: "2+3*4", Want: "2+3*4"},
		{Input: "(2+3)*4", Want: "(2+3)*4"},
		{Input: "2^3^2", Want: "2^3^2"},
		{Input: "(2^3)^2", Want: "(2^3)^2"},
		{Input: "1-(2-3)", Want: "1-(2-3)"},
		{Input: "(1-2)-3", Want: "1-2-3"},
		{Input: "1&2=3&4", Want: "1&2=3&4"},
		{Input: "-(A1+1)", Want: "-(A1+1)"},
		{Input: "(-A1)%", Want: "(-A1)%"},
		{Input: "- 2", Want: "-(2)"},
		{Input: "SUM( 1 , , 2 )", Want: "SUM(1,,2)"},
		{Input: "{1,2;3,4}", Want: "{1,2;3,4}"},
		{Input: "IF(a1>0,\"yes\",#REF!)", Want: "IF(A1>0,\"yes\",#REF!)"},
		{Input: "?A1+1", Want: "?A1+1"},
		{Input: "1+?A1*2+3", Want: "1+(?A1*2)+3"},
	}
	for _, c := range tests {
		n, err := ParseString(c.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		got := Format(n)
		if got != c.Want {
			t.Errorf("%s: formula mismatched! want %s - got %s", c.Input, c.Want, got)
			continue
		}
		again, err := ParseString(got)
		if err != nil {
			t.Errorf("%s: fail to parse formatted formula: %s", got, err)
			continue
		}
		if !reflect.DeepEqual(clearRaw(n), clearRaw(again)) {
			t.Errorf("%s: round trip gives a different tree", c.Input)
		}
	}
}

func clearRaw(n Node) Node {
	switch x := n.(type) {
	case Number:
		x.Raw = ""
		return x
	case Unary:
		x.Expr = clearRaw(x.Expr)
		return x
	case Binary:
		x.Left = clearRaw(x.Left)
		x.Right = clearRaw(x.Right)
		return x
	case Call:
		args := make([]Node, len(x.Args))
		for i := range x.Args {
			args[i] = clearRaw(x.Args[i])
		}
		x.Args = args
		return x
	case Array:
		rows := make([][]Node, len(x.Rows))
		for i := range x.Rows {
			for _, c := range x.Rows[i] {
				rows[i] = append(rows[i], clearRaw(c))
			}
		}
		x.Rows = rows
		return x
	default:
		return n
	}
}

func TestParseStructure(t *testing.T) {
	n, err := ParseString("SUM(1,,2)")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	call, ok := n.(Call)
	if !ok {
		t.Fatalf("expected call but got %T", n)
	}
	if len(call.Args) != 3 {
		t.Fatalf("arguments mismatched! want 3 - got %d", len(call.Args))
	}
	if _, ok := call.Args[1].(Empty); !ok {
		t.Errorf("expected empty argument but got %T", call.Args[1])
	}

	n, _ = ParseString("2^3^2")
	b := n.(Binary)
	if _, ok := b.Right.(Binary); !ok {
		t.Errorf("power should be right associative")
	}

	n, _ = ParseString("?A1+B1")
	if !n.Breakpoint() {
		t.Errorf("expected breakpoint on root")
	}

	n, _ = ParseString("foo+'bar baz'")
	b = n.(Binary)
	if u, ok := b.Left.(Unknown); !ok || u.Name != "foo" {
		t.Errorf("expected unknown symbol foo but got %#v", b.Left)
	}
	if u, ok := b.Right.(Unknown); !ok || u.Name != "bar baz" || !u.Quoted {
		t.Errorf("expected quoted symbol but got %#v", b.Right)
	}
}

func TestParseNormalized(t *testing.T) {
	norm, err := NormalizeString("=A1+SUM(2,\"x\",B1:B3)")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	n, err := ParseNormalized(norm.Text)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var slots []int
	Walk(n, func(n Node) bool {
		switch n := n.(type) {
		case Number:
			slots = append(slots, n.Slot)
		case String:
			slots = append(slots, n.Slot)
		case Reference:
			slots = append(slots, n.Slot)
		}
		return true
	})
	if want := []int{0, 1, 2, 3}; !reflect.DeepEqual(slots, want) {
		t.Errorf("slots mismatched! want %v - got %v", want, slots)
	}
	if got := Format(n); got != norm.Text {
		t.Errorf("normalized text mismatched! want %s - got %s", norm.Text, got)
	}
	str, err := ToFormula(n, norm.Deps)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if want := "A1+SUM(2,\"x\",B1:B3)"; str != want {
		t.Errorf("formula mismatched! want %s - got %s", want, str)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"1+",
		"SUM(1,2",
		"(1+2",
		"1 2",
		"{1,2;3}",
		"{}",
		"1+@",
		"SUM 1",
	}
	for _, str := range tests {
		_, err := ParseString(str)
		if err == nil {
			t.Errorf("%s: expected error but got none", str)
			continue
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("%s: expected parse error but got %T", str, err)
		}
	}
}

func TestDump(t *testing.T) {
	tests := []struct {
		Input string
		Want  string
	}{
		{
			Input: "2+3*4",
			Want:  "binary(number(2), binary(number(3), number(4), *), +)",
		},
		{
			Input: "?SUM(1,,A1)%",
			Want:  "break:unary(call(SUM, number(1), empty, reference(A1)), %, postfix)",
		},
	}
	for _, c := range tests {
		n, err := ParseString(c.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Input, err)
			continue
		}
		if got := Dump(n); got != c.Want {
			t.Errorf("%s: dump mismatched! want %s - got %s", c.Input, c.Want, got)
		}
	}
}
