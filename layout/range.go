package layout

import (
	"fmt"
	"iter"
	"strings"
)

// Range is an inclusive rectangle of cells.
type Range struct {
	Starts Position
	Ends   Position
}

func NewRange(starts, ends Position) Range {
	return Range{
		Starts: starts,
		Ends:   ends,
	}.Normalize()
}

func SingleCell(pos Position) Range {
	return NewRange(pos, pos)
}

func RangeFromString(str string) Range {
	fst, lst, ok := strings.Cut(str, ":")
	var (
		starts = ParsePosition(fst)
		ends   = starts
	)
	if ok {
		ends = ParsePosition(lst)
	}
	return NewRange(starts, ends)
}

func (r Range) Contains(pos Position) bool {
	ok := pos.Line >= r.Starts.Line && pos.Line <= r.Ends.Line
	if !ok {
		return false
	}
	return pos.Column >= r.Starts.Column && pos.Column <= r.Ends.Column
}

func (r Range) Intersects(other Range) bool {
	return r.Starts.Line <= other.Ends.Line && other.Starts.Line <= r.Ends.Line &&
		r.Starts.Column <= other.Ends.Column && other.Starts.Column <= r.Ends.Column
}

func (r Range) Single() bool {
	return r.Starts.Equal(r.Ends)
}

func (r Range) Width() int64 {
	return r.Ends.Column - r.Starts.Column + 1
}

func (r Range) Height() int64 {
	return r.Ends.Line - r.Starts.Line + 1
}

func (r Range) Cells() int64 {
	return r.Width() * r.Height()
}

func (r Range) Dimension() Dimension {
	return Dimension{
		Lines:   r.Height(),
		Columns: r.Width(),
	}
}

func (r Range) String() string {
	if r.Single() {
		return r.Starts.Addr()
	}
	ends := r.Ends
	ends.Sheet = ""
	return fmt.Sprintf("%s:%s", r.Starts.Addr(), ends.Addr())
}

func (r Range) Normalize() Range {
	x := r
	x.Starts.Line = min(r.Starts.Line, r.Ends.Line)
	x.Starts.Column = min(r.Starts.Column, r.Ends.Column)
	x.Ends.Line = max(r.Starts.Line, r.Ends.Line)
	x.Ends.Column = max(r.Starts.Column, r.Ends.Column)
	return x
}

// Union returns the smallest range covering both r and other.
func (r Range) Union(other Range) Range {
	x := r
	x.Starts.Line = min(r.Starts.Line, other.Starts.Line)
	x.Starts.Column = min(r.Starts.Column, other.Starts.Column)
	x.Ends.Line = max(r.Ends.Line, other.Ends.Line)
	x.Ends.Column = max(r.Ends.Column, other.Ends.Column)
	return x
}

// Positions yields every cell of the range, line by line.
func (r Range) Positions() iter.Seq[Position] {
	return func(do func(Position) bool) {
		r.positions(do)
	}
}

func (r Range) positions(do func(Position) bool) {
	for line := r.Starts.Line; line <= r.Ends.Line; line++ {
		for col := r.Starts.Column; col <= r.Ends.Column; col++ {
			pos := Position{
				Sheet:  r.Starts.Sheet,
				Line:   line,
				Column: col,
			}
			if !do(pos) {
				return
			}
		}
	}
}
