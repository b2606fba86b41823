package grid

import (
	"cmp"
	"iter"
	"maps"
	"slices"

	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

// View gives read access to the values of a sheet.
type View interface {
	Name() string
	Bounds() layout.Range
	Rows() iter.Seq[[]value.ScalarValue]
}

type Sheet struct {
	name  string
	Size  layout.Dimension
	cells map[layout.Position]*Cell
}

func newSheet(name string, size layout.Dimension) *Sheet {
	return &Sheet{
		name:  name,
		Size:  size,
		cells: make(map[layout.Position]*Cell),
	}
}

func (s *Sheet) Name() string {
	return s.name
}

func (s *Sheet) Bounds() layout.Range {
	var (
		start = layout.Position{Sheet: s.name, Line: 1, Column: 1}
		end   = layout.Position{Sheet: s.name, Line: s.Size.Lines, Column: s.Size.Columns}
	)
	return layout.NewRange(start, end)
}

func (s *Sheet) Len() int {
	return len(s.cells)
}

// Cell returns the cell at pos, nil when empty.
func (s *Sheet) Cell(pos layout.Position) *Cell {
	pos.Sheet = s.name
	return s.cells[pos]
}

func (s *Sheet) Value(pos layout.Position) value.ScalarValue {
	if c := s.Cell(pos); c != nil {
		return c.Value
	}
	return value.Blank{}
}

// Cells yields the cells of the sheet line by line.
func (s *Sheet) Cells() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		list := slices.SortedFunc(maps.Values(s.cells), func(a, b *Cell) int {
			return comparePositions(a.Position, b.Position)
		})
		for _, c := range list {
			if !yield(c) {
				return
			}
		}
	}
}

// Rows yields the values of each line of the sheet, empty cells included.
func (s *Sheet) Rows() iter.Seq[[]value.ScalarValue] {
	it := func(yield func([]value.ScalarValue) bool) {
		for line := int64(1); line <= s.Size.Lines; line++ {
			row := make([]value.ScalarValue, s.Size.Columns)
			for col := range row {
				row[col] = s.Value(layout.Position{Line: line, Column: int64(col) + 1})
			}
			if !yield(row) {
				return
			}
		}
	}
	return it
}

func comparePositions(a, b layout.Position) int {
	if c := cmp.Compare(a.Line, b.Line); c != 0 {
		return c
	}
	return cmp.Compare(a.Column, b.Column)
}
