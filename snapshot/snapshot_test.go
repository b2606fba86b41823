package snapshot

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/midbel/sheetcalc/formula/builtins"
	"github.com/midbel/sheetcalc/grid"
	"github.com/midbel/sheetcalc/layout"
)

func at(sheet, addr string) layout.Position {
	pos := layout.ParsePosition(addr)
	pos.Sheet = sheet
	return pos
}

func sample(t *testing.T) *grid.Document {
	t.Helper()
	doc := grid.New(builtins.Registry())
	doc.AddSheet("data", layout.Dimension{Lines: 10, Columns: 5})
	doc.AddSheet("report", layout.Dimension{Lines: 5, Columns: 5})
	contents := []struct {
		Pos layout.Position
		Raw string
	}{
		{Pos: at("data", "A1"), Raw: "12.5"},
		{Pos: at("data", "A2"), Raw: "'007"},
		{Pos: at("data", "A3"), Raw: "abc"},
		{Pos: at("report", "B1"), Raw: "=SUM(data!A1:A3) * rate"},
		{Pos: at("report", "B2"), Raw: "=CONCAT(data!A2, UPPER(data!A3))"},
	}
	for _, c := range contents {
		if err := doc.SetContent(c.Pos, c.Raw); err != nil {
			t.Fatalf("%s: fail to set content: %s", c.Pos, err)
		}
	}
	doc.SetFormat(at("data", "A1"), "$#,##0.00")
	doc.SetFormat(at("data", "B5"), "0.0%")
	if err := doc.DefineName("rate", "data!A1"); err != nil {
		t.Fatalf("fail to define name: %s", err)
	}
	return doc
}

func TestRoundTrip(t *testing.T) {
	var (
		doc = sample(t)
		buf bytes.Buffer
	)
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("fail to write snapshot: %s", err)
	}
	other, err := Read(&buf, builtins.Registry())
	if err != nil {
		t.Fatalf("fail to read snapshot: %s", err)
	}
	if other.ID != doc.ID {
		t.Errorf("id mismatched! want %s - got %s", doc.ID, other.ID)
	}
	sheets := other.Sheets()
	if len(sheets) != 2 || sheets[0].Name() != "data" || sheets[1].Name() != "report" {
		t.Fatalf("sheets mismatched!")
	}
	if sheets[0].Size != (layout.Dimension{Lines: 10, Columns: 5}) {
		t.Errorf("size mismatched! got %v", sheets[0].Size)
	}
	for _, sh := range doc.Sheets() {
		for c := range sh.Cells() {
			got, err := other.Cell(c.Position)
			if err != nil {
				t.Errorf("%s: cell not found", c.Position)
				continue
			}
			if got.Raw != c.Raw || got.Format != c.Format {
				t.Errorf("%s: cell mismatched! want %q/%q - got %q/%q", c.Position, c.Raw, c.Format, got.Raw, got.Format)
			}
		}
	}
	if _, err := other.Recompute(context.Background()); err != nil {
		t.Fatalf("recompute failed: %s", err)
	}
	v, _ := other.Value(at("report", "B1"))
	if v.String() != "156.25" {
		t.Errorf("value mismatched! want 156.25 - got %s", v)
	}
	v, _ = other.Value(at("report", "B2"))
	if v.String() != "007ABC" {
		t.Errorf("value mismatched! want 007ABC - got %s", v)
	}
}

func TestEncode(t *testing.T) {
	var (
		doc = sample(t)
		buf bytes.Buffer
	)
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("fail to encode: %s", err)
	}
	str := buf.String()
	for _, want := range []string{
		`<sheet name="data" ref="A1:E10">`,
		`<f>SUM(data!A1:A3) * rate</f>`,
		`<name id="RATE" ref="data!A1">`,
	} {
		if !strings.Contains(str, want) {
			t.Errorf("%s: not found in snapshot", want)
		}
	}
	if strings.Contains(str, "156.25") {
		t.Errorf("computed values should not be written")
	}
}

func TestFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sample"+Extension)
	if err := WriteFile(file, sample(t)); err != nil {
		t.Fatalf("fail to write file: %s", err)
	}
	doc, err := ReadFile(file, builtins.Registry())
	if err != nil {
		t.Fatalf("fail to read file: %s", err)
	}
	if len(doc.Sheets()) != 2 {
		t.Errorf("sheets mismatched! want 2 - got %d", len(doc.Sheets()))
	}
}

func TestInvalid(t *testing.T) {
	tests := []string{
		`<workbook><c r="A1"><v>1</v></c></workbook>`,
		`<workbook><sheet name="a" ref="A1:B2"><c r="??"><v>1</v></c></sheet></workbook>`,
		`<workbook><sheet name="a" ref="A1:B2"></sheet><sheet name="a" ref="A1:B2"></sheet></workbook>`,
	}
	for _, str := range tests {
		if _, err := Decode(strings.NewReader(str), builtins.Registry()); err == nil {
			t.Errorf("%s: expected error", str)
		}
	}
}
