package main

import (
	"context"
	"strings"
	"testing"

	"github.com/midbel/sheetcalc/formula/builtins"
	"github.com/midbel/sheetcalc/grid"
	"github.com/midbel/sheetcalc/layout"
)

func TestPack(t *testing.T) {
	listing := `
# prices
A1 10
A2 32.5
%A2 $#,##0.00
B1 =SUM(A1:A2) * vat
report!C3 =Sheet1!B1
@vat Sheet1!D1
D1 2
`
	doc := grid.New(builtins.Registry())
	if err := pack(doc, strings.NewReader(listing)); err != nil {
		t.Fatalf("fail to pack listing: %s", err)
	}
	sheets := doc.Sheets()
	if len(sheets) != 2 || sheets[0].Name() != defaultSheet || sheets[1].Name() != "report" {
		t.Fatalf("sheets mismatched!")
	}
	if _, err := doc.Recompute(context.Background()); err != nil {
		t.Fatalf("recompute failed: %s", err)
	}
	pos := layout.Position{Sheet: "report", Line: 3, Column: 3}
	v, err := doc.Value(pos)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if v.String() != "85" {
		t.Errorf("value mismatched! want 85 - got %s", v)
	}
}

func TestPackInvalid(t *testing.T) {
	tests := []string{
		"??? 1",
		"A1:B2 1",
		"@1x A1",
	}
	for _, str := range tests {
		doc := grid.New(builtins.Registry())
		if err := pack(doc, strings.NewReader(str)); err == nil {
			t.Errorf("%q: expected error", str)
		}
	}
}

func TestWidth(t *testing.T) {
	rows := [][]string{
		{"a", "", "", ""},
		{"", "", "c", ""},
	}
	if got := width(rows); got != 3 {
		t.Errorf("width mismatched! want 3 - got %d", got)
	}
}
