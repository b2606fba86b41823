package formula

import (
	"context"
	"testing"

	"github.com/midbel/sheetcalc/formula/builtins"
	"github.com/midbel/sheetcalc/formula/compile"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

type fakeResolver struct {
	cells map[string]value.Value
}

func (r fakeResolver) Cell(ref layout.Reference) value.Value {
	val, ok := r.cells[ref.Start.Position("").String()]
	if !ok {
		return value.Blank{}
	}
	return val
}

func (r fakeResolver) Range(ref layout.Reference) value.Value {
	var (
		rg   = ref.Range()
		rows [][]value.ScalarValue
	)
	for i := rg.Starts.Line; i <= rg.Ends.Line; i++ {
		var row []value.ScalarValue
		for j := rg.Starts.Column; j <= rg.Ends.Column; j++ {
			pos := layout.Position{Line: i, Column: j}
			v, _ := r.Cell(layout.CellReference(pos)).(value.ScalarValue)
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return value.NewArray(rows)
}

func (r fakeResolver) Symbol(string) value.Value {
	return value.ErrName
}

func fake() compile.Resolver {
	cells := map[string]value.Value{
		"A1": value.Float(0),
		"B1": value.Text("foo"),
		"C1": value.Float(11),
		"A2": value.Float(0),
		"B2": value.Text("bar"),
		"C2": value.Float(42),
		"A3": value.Float(0),
		"B3": value.Text("qux"),
		"C3": value.Float(67),
	}
	return fakeResolver{cells: cells}
}

func TestBasicFormula(t *testing.T) {
	var (
		eng = NewEngine(builtins.Registry())
		res = fake()
	)
	tests := []struct {
		Expr string
		Want string
	}{
		{
			Expr: "1+1",
			Want: "2",
		},
		{
			Expr: "\"foo\" & \"bar\"",
			Want: "foobar",
		},
		{
			Expr: "=$B$1",
			Want: "foo",
		},
		{
			Expr: "=SUM(C1:C3)",
			Want: "120",
		},
		{
			Expr: "=C1:C3",
			Want: "{11;42;67}",
		},
		{
			Expr: "=C1+C2*2",
			Want: "95",
		},
		{
			Expr: "=B1&B2&B3",
			Want: "foobarqux",
		},
		{
			Expr: "=C1/A1",
			Want: "#DIV/0!",
		},
		{
			Expr: "=SUM(C1",
			Want: "#BAD_EXPR",
		},
		{
			Expr: "=NOPE(C1)",
			Want: "#BAD_EXPR",
		},
	}
	for _, c := range tests {
		got := eng.Evaluate(context.Background(), c.Expr, res)
		if got.String() != c.Want {
			t.Errorf("%s: results mismatched! want %s - got %s", c.Expr, c.Want, got)
		}
	}
}

func TestCompile(t *testing.T) {
	eng := NewEngine(builtins.Registry())

	first := eng.Compile("=A1+B1*2")
	second := eng.Compile("=A2 + B2 * 3")
	if first.BadExpression() || second.BadExpression() {
		t.Fatalf("unexpected bad expression")
	}
	if first.Procedure != second.Procedure {
		t.Errorf("formulas of the same shape should share their procedure")
	}
	if n := len(first.References()); n != 2 {
		t.Errorf("references mismatched! want 2 - got %d", n)
	}
	if eng.Cached() != 1 {
		t.Errorf("cache size mismatched! want 1 - got %d", eng.Cached())
	}

	bad := eng.Compile("=A1+\xff")
	if !bad.BadExpression() {
		t.Errorf("invalid input should give a bad expression")
	}
	eng.Reset()
	if eng.Cached() != 0 {
		t.Errorf("cache should be empty after reset")
	}
}

func TestCompileRangeWhereValueExpected(t *testing.T) {
	eng := NewEngine(builtins.Registry())
	tests := []struct {
		Formula string
		Bad     bool
	}{
		{Formula: "=NOT(A1:B1)", Bad: true},
		{Formula: "=1+A1:B1", Bad: true},
		{Formula: "=UPPER(B1:B3)", Bad: true},
		{Formula: "=IF(A1:A3, 1, 2)", Bad: true},
		{Formula: "=NOT(A1)", Bad: false},
		{Formula: "=1+A1", Bad: false},
		{Formula: "=SUM(A1:B1)", Bad: false},
		{Formula: "=CONCAT(B1:B3)", Bad: false},
		{Formula: "=ROWS(A1:C3)", Bad: false},
		{Formula: "=A1:B1", Bad: false},
	}
	for _, c := range tests {
		got := eng.Compile(c.Formula)
		if got.BadExpression() != c.Bad {
			t.Errorf("%s: bad expression mismatched! want %t - got %t", c.Formula, c.Bad, got.BadExpression())
			continue
		}
		if !c.Bad {
			continue
		}
		res := eng.Evaluate(context.Background(), c.Formula, fake())
		if res != value.ErrBadExpr {
			t.Errorf("%s: results mismatched! want %s - got %s", c.Formula, value.ErrBadExpr, res)
		}
	}
	if eng.Compile("=NOT(A1)").Procedure != eng.Compile("=NOT(B2)").Procedure {
		t.Errorf("formulas of the same shape should still share their procedure")
	}
}
