package grid

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/midbel/sheetcalc/formula/builtins"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

func at(addr string) layout.Position {
	pos := layout.ParsePosition(addr)
	pos.Sheet = "Sheet1"
	return pos
}

func document(t *testing.T, contents map[string]string) *Document {
	t.Helper()
	doc := New(builtins.Registry(), WithAsyncTimeout(time.Second))
	if _, err := doc.AddSheet("Sheet1", layout.Dimension{Lines: 20, Columns: 10}); err != nil {
		t.Fatalf("fail to add sheet: %s", err)
	}
	for addr, raw := range contents {
		if err := doc.SetContent(at(addr), raw); err != nil {
			t.Fatalf("%s: fail to set content: %s", addr, err)
		}
	}
	return doc
}

func recompute(t *testing.T, doc *Document) Report {
	t.Helper()
	rep, err := doc.Recompute(context.Background())
	if err != nil {
		t.Fatalf("recompute failed: %s", err)
	}
	return rep
}

func checkValues(t *testing.T, doc *Document, want map[string]string) {
	t.Helper()
	for addr, str := range want {
		got, err := doc.Value(at(addr))
		if err != nil {
			t.Errorf("%s: unexpected error: %s", addr, err)
			continue
		}
		if got.String() != str {
			t.Errorf("%s: results mismatched! want %s - got %s", addr, str, got)
		}
	}
}

func TestRecompute(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "1",
		"B1": "=A1*2",
		"C1": "=SUM(A1:B1)",
		"D1": "hello",
		"E1": "=UPPER(D1)",
		"F1": "=1/0",
	})
	rep := recompute(t, doc)
	if rep.Computed != 4 {
		t.Errorf("computed mismatched! want 4 - got %d", rep.Computed)
	}
	checkValues(t, doc, map[string]string{
		"A1": "1",
		"B1": "2",
		"C1": "3",
		"E1": "HELLO",
		"F1": "#DIV/0!",
	})
	if c, _ := doc.Cell(at("F1")); c.State != StateError {
		t.Errorf("state mismatched! want %s - got %s", StateError, c.State)
	}

	doc.SetContent(at("A1"), "5")
	rep = recompute(t, doc)
	if rep.Computed != 2 {
		t.Errorf("computed mismatched! want 2 - got %d", rep.Computed)
	}
	checkValues(t, doc, map[string]string{
		"B1": "10",
		"C1": "15",
	})

	doc.Clear(at("A1"))
	recompute(t, doc)
	checkValues(t, doc, map[string]string{
		"B1": "0",
		"C1": "0",
	})
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		Input string
		Want  value.ScalarValue
	}{
		{Input: "", Want: value.Blank{}},
		{Input: "42", Want: value.Float(42)},
		{Input: " 1.5 ", Want: value.Float(1.5)},
		{Input: "true", Want: value.Boolean(true)},
		{Input: "#N/A", Want: value.ErrNA},
		{Input: "'42", Want: value.Text("42")},
		{Input: "foo", Want: value.Text("foo")},
	}
	for _, c := range tests {
		got := parseLiteral(c.Input)
		if got != c.Want {
			t.Errorf("%q: results mismatched! want %v - got %v", c.Input, c.Want, got)
		}
		if back := parseLiteral(literalOf(got)); back != got {
			t.Errorf("%q: literal mismatched! want %v - got %v", c.Input, got, back)
		}
	}
}

func TestCycle(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "=A1",
		"A2": "=B2",
		"B2": "=A2",
		"C2": "=A2+1",
		"D2": "=10",
	})
	rep := recompute(t, doc)
	if rep.Cycles != 3 {
		t.Errorf("cycles mismatched! want 3 - got %d", rep.Cycles)
	}
	checkValues(t, doc, map[string]string{
		"A1": "#CYCLE!",
		"A2": "#CYCLE!",
		"B2": "#CYCLE!",
		"C2": "#CYCLE!",
		"D2": "10",
	})

	doc.SetContent(at("B2"), "1")
	rep = recompute(t, doc)
	if rep.Cycles != 0 {
		t.Errorf("cycles mismatched! want 0 - got %d", rep.Cycles)
	}
	checkValues(t, doc, map[string]string{
		"A2": "1",
		"B2": "1",
		"C2": "2",
	})
}

func TestDependencyOrder(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "=A2+1",
		"A2": "=A3+1",
		"A3": "=A4+1",
		"A4": "1",
	})
	recompute(t, doc)
	checkValues(t, doc, map[string]string{
		"A1": "4",
		"A2": "3",
		"A3": "2",
	})
}

func TestInsertColumns(t *testing.T) {
	doc := document(t, map[string]string{
		"B2": "10",
		"A1": "=B2",
		"A2": "=$B2",
		"A3": "=SUM(B2:C2)",
	})
	recompute(t, doc)
	if err := doc.InsertColumns("Sheet1", 2, 1); err != nil {
		t.Fatalf("insert columns failed: %s", err)
	}
	tests := map[string]string{
		"A1": "=C2",
		"A2": "=$B2",
		"A3": "=SUM(C2:D2)",
		"C2": "10",
	}
	for addr, want := range tests {
		c, err := doc.Cell(at(addr))
		if err != nil {
			t.Errorf("%s: cell not found", addr)
			continue
		}
		if c.Raw != want {
			t.Errorf("%s: raw mismatched! want %s - got %s", addr, want, c.Raw)
		}
	}
	recompute(t, doc)
	checkValues(t, doc, map[string]string{
		"A1": "10",
		"A3": "10",
	})

	if err := doc.DeleteColumns("Sheet1", 3, 1); err != nil {
		t.Fatalf("delete columns failed: %s", err)
	}
	recompute(t, doc)
	checkValues(t, doc, map[string]string{
		"A1": "#REF!",
		"A3": "0",
	})
	if c, _ := doc.Cell(at("A1")); c.Raw != "=#REF!" {
		t.Errorf("raw mismatched! want =#REF! - got %s", c.Raw)
	}
}

func TestInsertRows(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "1",
		"A2": "2",
		"B1": "=SUM(A1:A2)",
		"B2": "=A$2",
	})
	recompute(t, doc)
	if err := doc.InsertRows("Sheet1", 2, 2); err != nil {
		t.Fatalf("insert rows failed: %s", err)
	}
	for addr, want := range map[string]string{"B1": "=SUM(A1:A4)", "B4": "=A$2"} {
		c, err := doc.Cell(at(addr))
		if err != nil {
			t.Errorf("%s: cell not found", addr)
			continue
		}
		if c.Raw != want {
			t.Errorf("%s: raw mismatched! want %s - got %s", addr, want, c.Raw)
		}
	}
	doc.SetContent(at("A2"), "40")
	recompute(t, doc)
	checkValues(t, doc, map[string]string{
		"B1": "43",
		"B4": "40",
	})
	if err := doc.DeleteRows("Sheet1", 30, 1); err == nil {
		t.Errorf("expected error when deleting lines out of the sheet")
	}
}

func TestFormatPropagation(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "12.5",
		"B1": "=ROUND(A1, 1)",
		"C1": "=ROUND(3.14159, 2)",
		"D1": "=DOLLAR(A1)",
		"E1": "=A1&\"\"",
	})
	doc.SetFormat(at("A1"), "$#,##0.00")
	recompute(t, doc)

	tests := []struct {
		Addr    string
		Format  string
		Display string
	}{
		{Addr: "B1", Format: "$#,##0.00", Display: "$12.50"},
		{Addr: "C1", Format: "", Display: "3.14"},
		{Addr: "D1", Format: "$#,##0.00", Display: "$12.50"},
		{Addr: "E1", Format: "", Display: "12.5"},
	}
	for _, c := range tests {
		cell, err := doc.Cell(at(c.Addr))
		if err != nil {
			t.Errorf("%s: cell not found", c.Addr)
			continue
		}
		if got := cell.NumberFormat(); got != c.Format {
			t.Errorf("%s: format mismatched! want %q - got %q", c.Addr, c.Format, got)
		}
		if got, _ := doc.Display(at(c.Addr)); got != c.Display {
			t.Errorf("%s: display mismatched! want %q - got %q", c.Addr, c.Display, got)
		}
	}

	doc.SetFormat(at("A1"), "0.0%")
	recompute(t, doc)
	if c, _ := doc.Cell(at("B1")); c.Computed != "0.0%" {
		t.Errorf("format mismatched! want 0.0%% - got %q", c.Computed)
	}
}

func TestAsync(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "5",
		"B1": "=WAIT(A1, 1)",
		"C1": "=B1*2",
	})
	rep := recompute(t, doc)
	if rep.Pending != 1 {
		t.Errorf("pending mismatched! want 1 - got %d", rep.Pending)
	}
	if c, _ := doc.Cell(at("B1")); c.State != StatePending {
		t.Errorf("state mismatched! want %s - got %s", StatePending, c.State)
	}
	if c, _ := doc.Cell(at("C1")); c.State != StateDirty {
		t.Errorf("state mismatched! want %s - got %s", StateDirty, c.State)
	}
	if _, err := doc.Settle(context.Background()); err != nil {
		t.Fatalf("settle failed: %s", err)
	}
	checkValues(t, doc, map[string]string{
		"B1": "5",
		"C1": "10",
	})
	if doc.Pending() {
		t.Errorf("no evaluation should be pending")
	}
}

func TestAsyncMany(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "1",
		"A2": "2",
		"B1": "=WAIT(A1, 30)",
		"B2": "=WAIT(A2, 1)",
		"B3": "=WAIT(B1+B2, 1)",
		"C1": "=A1+A2",
	})
	rep := recompute(t, doc)
	if rep.Pending != 2 {
		t.Errorf("pending mismatched! want 2 - got %d", rep.Pending)
	}
	checkValues(t, doc, map[string]string{
		"C1": "3",
	})
	if _, err := doc.Settle(context.Background()); err != nil {
		t.Fatalf("settle failed: %s", err)
	}
	checkValues(t, doc, map[string]string{
		"B1": "1",
		"B2": "2",
		"B3": "3",
	})
	if doc.Pending() {
		t.Errorf("no evaluation should be pending")
	}
}

func TestAsyncStale(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "5",
		"B1": "=WAIT(A1, 200)",
		"C1": "=B1*2",
	})
	recompute(t, doc)
	doc.SetContent(at("B1"), "=A1+1")
	recompute(t, doc)
	checkValues(t, doc, map[string]string{
		"B1": "6",
		"C1": "12",
	})
	if _, err := doc.Settle(context.Background()); err != nil {
		t.Fatalf("settle failed: %s", err)
	}
	checkValues(t, doc, map[string]string{
		"B1": "6",
		"C1": "12",
	})
}

func TestDefineName(t *testing.T) {
	doc := document(t, map[string]string{
		"B1": "0.5",
		"A1": "=rate*10",
	})
	recompute(t, doc)
	checkValues(t, doc, map[string]string{
		"A1": "#BAD_EXPR",
	})
	if err := doc.DefineName("rate", "Sheet1!B1"); err != nil {
		t.Fatalf("fail to define name: %s", err)
	}
	recompute(t, doc)
	checkValues(t, doc, map[string]string{
		"A1": "5",
	})
	doc.SetContent(at("B1"), "2")
	recompute(t, doc)
	checkValues(t, doc, map[string]string{
		"A1": "20",
	})
	for _, name := range []string{"", "A1", "SUM", "1abc", "true"} {
		if err := doc.DefineName(name, "B1"); err == nil {
			t.Errorf("%q: expected error", name)
		}
	}
}

func TestEvaluateFormula(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "1",
		"A2": "2",
		"A3": "3",
	})
	recompute(t, doc)
	tests := []struct {
		Formula string
		Want    string
	}{
		{Formula: "=SUM(A1:A3)", Want: "6"},
		{Formula: "=A1:A3", Want: "{1;2;3}"},
		{Formula: "=Sheet1!A2*10", Want: "20"},
		{Formula: "=Other!A1", Want: "#REF!"},
		{Formula: "=Z100", Want: "#REF!"},
		{Formula: "=SUM(", Want: "#BAD_EXPR"},
	}
	for _, c := range tests {
		got, err := doc.EvaluateFormula(context.Background(), "Sheet1", c.Formula)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", c.Formula, err)
			continue
		}
		if got.String() != c.Want {
			t.Errorf("%s: results mismatched! want %s - got %s", c.Formula, c.Want, got)
		}
	}
	if _, err := doc.EvaluateFormula(context.Background(), "Other", "=1"); err == nil {
		t.Errorf("expected error for unknown sheet")
	}
}

func TestCopy(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "1",
		"A2": "2",
		"B1": "=A1*$A$1",
	})
	doc.SetFormat(at("B1"), "0.00")
	recompute(t, doc)

	if err := doc.Copy(layout.NewRange(at("B1"), at("B1")), at("B2"), CopyAll); err != nil {
		t.Fatalf("copy failed: %s", err)
	}
	if err := doc.Copy(layout.NewRange(at("B1"), at("B1")), at("C1"), CopyValue); err != nil {
		t.Fatalf("copy failed: %s", err)
	}
	recompute(t, doc)
	c, _ := doc.Cell(at("B2"))
	if c.Raw != "=A2*$A$1" {
		t.Errorf("raw mismatched! want =A2*$A$1 - got %s", c.Raw)
	}
	if c.Format != "0.00" {
		t.Errorf("format mismatched! want 0.00 - got %s", c.Format)
	}
	c, _ = doc.Cell(at("C1"))
	if c.IsFormula() || c.Format != "" {
		t.Errorf("value copy should not copy formula nor format")
	}
	checkValues(t, doc, map[string]string{
		"B2": "2",
		"C1": "1",
	})
}

func TestArtifacts(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "kind",
		"B1": "amount",
		"A2": "x",
		"B2": "1",
		"A3": "y",
		"B3": "=B2*2",
		"A4": "x",
		"B4": "3",
	})
	recompute(t, doc)

	chart := Chart{
		Type: ChartBar,
		Series: []Series{
			{
				Name:       "amount",
				Categories: layout.NewRange(at("A2"), at("A4")),
				Values:     layout.NewRange(at("B2"), at("B4")),
			},
		},
	}
	pivot := Pivot{
		Source:  layout.NewRange(at("A1"), at("B4")),
		GroupBy: 0,
		Values:  1,
	}
	cid, err := doc.AddArtifact(&chart)
	if err != nil {
		t.Fatalf("fail to add chart: %s", err)
	}
	pid, _ := doc.AddArtifact(&pivot)
	if !doc.OutOfDate(cid) || !doc.OutOfDate(pid) {
		t.Fatalf("new artifacts should be out of date")
	}
	doc.Artifact(cid)
	doc.Artifact(pid)
	if doc.OutOfDate(cid) {
		t.Errorf("chart should be refreshed")
	}
	if pts := chart.Series[0].Points; len(pts) != 3 || pts[1] != 2 {
		t.Errorf("points mismatched! got %v", pts)
	}
	if len(pivot.Rows) != 2 || pivot.Rows[0].Key != "x" || pivot.Rows[0].Sum != 4 {
		t.Errorf("pivot mismatched! got %v", pivot.Rows)
	}

	doc.SetContent(at("E10"), "1")
	recompute(t, doc)
	if doc.OutOfDate(cid) {
		t.Errorf("chart should not be out of date")
	}

	doc.SetContent(at("B2"), "10")
	recompute(t, doc)
	if !doc.OutOfDate(cid) || !doc.OutOfDate(pid) {
		t.Errorf("artifacts should be out of date")
	}
	doc.Artifact(cid)
	if pts := chart.Series[0].Points; pts[1] != 20 {
		t.Errorf("points mismatched! got %v", pts)
	}

	doc.InsertColumns("Sheet1", 1, 1)
	if want := layout.NewRange(at("C2"), at("C4")); chart.Series[0].Values != want {
		t.Errorf("series not moved! want %s - got %s", want, chart.Series[0].Values)
	}
	if err := doc.DeleteColumns("Sheet1", 3, 1); err != nil {
		t.Fatalf("fail to delete column: %s", err)
	}
	if _, err := doc.Artifact(cid); !errors.Is(err, ErrDeleted) {
		t.Errorf("chart with deleted values: want %v - got %v", ErrDeleted, err)
	}
	if _, err := doc.Artifact(pid); err != nil {
		t.Errorf("pivot should still be readable: %s", err)
	}
}

func TestSheets(t *testing.T) {
	doc := document(t, nil)
	sh, _ := doc.AddSheet("Sheet1", layout.Dimension{})
	if sh.Name() != "Sheet1_001" {
		t.Errorf("name mismatched! want Sheet1_001 - got %s", sh.Name())
	}
	doc.SetContent(layout.Position{Sheet: "Sheet1_001", Line: 1, Column: 1}, "3")
	doc.SetContent(at("A1"), "=Sheet1_001!A1*2")
	recompute(t, doc)
	checkValues(t, doc, map[string]string{"A1": "6"})

	if err := doc.RemoveSheet("Sheet1_001"); err != nil {
		t.Fatalf("fail to remove sheet: %s", err)
	}
	recompute(t, doc)
	checkValues(t, doc, map[string]string{"A1": "#REF!"})
	if err := doc.SetContent(at("Z100"), "1"); err == nil {
		t.Errorf("expected error for position out of bounds")
	}
}

func TestRecords(t *testing.T) {
	doc := document(t, map[string]string{
		"A1": "name",
		"B1": "=1+1",
		"A3": "last",
	})
	recompute(t, doc)
	rows, err := doc.Records("Sheet1")
	if err != nil {
		t.Fatalf("records failed: %s", err)
	}
	if len(rows) != 3 {
		t.Fatalf("lines mismatched! want 3 - got %d", len(rows))
	}
	if rows[0][0] != "name" || rows[0][1] != "2" || rows[2][0] != "last" {
		t.Errorf("records mismatched! got %v", rows)
	}
}

func TestComponents(t *testing.T) {
	var (
		a = at("A1")
		b = at("B1")
		c = at("C1")
		d = at("D1")
	)
	depends := map[layout.Position][]layout.Position{
		a: {b},
		b: {a},
		c: {b},
		d: {d},
	}
	list := components([]layout.Position{c, a, b, d}, depends)
	if len(list) != 3 {
		t.Fatalf("components mismatched! want 3 - got %d", len(list))
	}
	if len(list[0]) != 2 {
		t.Errorf("first component should be the cycle, got %v", list[0])
	}
	if list[1][0] != c || list[2][0] != d {
		t.Errorf("order mismatched! got %v", list)
	}
}
