package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrReference = errors.New("invalid reference")

// Anchor is one endpoint of a reference. AbsColumn and AbsLine record the
// "$" markers: a frozen axis does not move when the reference is shifted or
// offset.
type Anchor struct {
	Line      int64
	Column    int64
	AbsLine   bool
	AbsColumn bool
}

func (a Anchor) Position(sheet string) Position {
	return Position{
		Sheet:  sheet,
		Line:   a.Line,
		Column: a.Column,
	}
}

func (a Anchor) String() string {
	var str strings.Builder
	if a.AbsColumn {
		str.WriteByte('$')
	}
	str.WriteString(IndexToString(a.Column))
	if a.AbsLine {
		str.WriteByte('$')
	}
	str.WriteString(strconv.FormatInt(a.Line, 10))
	return str.String()
}

// Reference is a cell or a range reference as written in a formula.
type Reference struct {
	Sheet   string
	Start   Anchor
	End     Anchor
	Invalid bool
}

func InvalidReference() Reference {
	return Reference{Invalid: true}
}

func CellReference(pos Position) Reference {
	a := Anchor{
		Line:   pos.Line,
		Column: pos.Column,
	}
	return Reference{
		Sheet: pos.Sheet,
		Start: a,
		End:   a,
	}
}

func RangeReference(rg Range) Reference {
	rg = rg.Normalize()
	return Reference{
		Sheet: rg.Starts.Sheet,
		Start: Anchor{Line: rg.Starts.Line, Column: rg.Starts.Column},
		End:   Anchor{Line: rg.Ends.Line, Column: rg.Ends.Column},
	}
}

// ParseReference parses text like A1, $B$2, Sheet1!A1:C3 or 'My sheet'!B2.
// The special text #REF! gives an invalid reference.
func ParseReference(str string) (Reference, error) {
	var ref Reference
	if strings.EqualFold(str, "#REF!") {
		return InvalidReference(), nil
	}
	if ix := strings.LastIndexByte(str, '!'); ix >= 0 {
		sheet, err := unquoteSheet(str[:ix])
		if err != nil {
			return ref, err
		}
		ref.Sheet = sheet
		str = str[ix+1:]
	}
	fst, lst, ok := strings.Cut(str, ":")
	start, err := parseAnchor(fst)
	if err != nil {
		return ref, err
	}
	ref.Start, ref.End = start, start
	if ok {
		if ref.End, err = parseAnchor(lst); err != nil {
			return ref, err
		}
	}
	return ref, nil
}

func unquoteSheet(str string) (string, error) {
	if str == "" {
		return "", fmt.Errorf("%w: empty sheet name", ErrReference)
	}
	if str[0] != '\'' {
		return str, nil
	}
	if len(str) < 2 || str[len(str)-1] != '\'' {
		return "", fmt.Errorf("%w: unterminated sheet name %s", ErrReference, str)
	}
	return strings.ReplaceAll(str[1:len(str)-1], "''", "'"), nil
}

func parseAnchor(str string) (Anchor, error) {
	var a Anchor
	if strings.HasPrefix(str, "$") {
		a.AbsColumn = true
		str = str[1:]
	}
	col, offset := ParseIndex(str)
	if offset == 0 || offset > maxColumnLetters {
		return a, fmt.Errorf("%w: %s", ErrReference, str)
	}
	a.Column = col
	str = str[offset:]
	if strings.HasPrefix(str, "$") {
		a.AbsLine = true
		str = str[1:]
	}
	line, err := strconv.ParseInt(str, 10, 64)
	if err != nil || line < 1 {
		return a, fmt.Errorf("%w: bad line %q", ErrReference, str)
	}
	a.Line = line
	return a, nil
}

func (r Reference) IsRange() bool {
	return r.Start.Line != r.End.Line || r.Start.Column != r.End.Column
}

// Qualify returns r with its sheet set to sheet when r is not already
// qualified.
func (r Reference) Qualify(sheet string) Reference {
	if r.Sheet == "" {
		r.Sheet = sheet
	}
	return r
}

func (r Reference) Position() Position {
	return r.Start.Position(r.Sheet)
}

func (r Reference) Range() Range {
	return NewRange(r.Start.Position(r.Sheet), r.End.Position(r.Sheet))
}

func (r Reference) String() string {
	if r.Invalid {
		return "#REF!"
	}
	var str strings.Builder
	if r.Sheet != "" {
		str.WriteString(QuoteSheet(r.Sheet))
		str.WriteByte('!')
	}
	str.WriteString(r.Start.String())
	if r.IsRange() {
		str.WriteByte(':')
		str.WriteString(r.End.String())
	}
	return str.String()
}

// ShiftColumns applies a column insertion (count > 0) or deletion
// (count < 0) at column at. Inserted columns are placed before at; deleted
// columns are at..at-count-1. Frozen columns never move. A reference whose
// cells are all deleted becomes invalid.
func (r Reference) ShiftColumns(at, count int64) Reference {
	if r.Invalid || count == 0 {
		return r
	}
	start, end, ok := shiftAxis(r.Start.Column, r.End.Column, r.Start.AbsColumn, r.End.AbsColumn, at, count)
	if !ok {
		return InvalidReference()
	}
	r.Start.Column, r.End.Column = start, end
	return r
}

// ShiftRows is ShiftColumns for lines.
func (r Reference) ShiftRows(at, count int64) Reference {
	if r.Invalid || count == 0 {
		return r
	}
	start, end, ok := shiftAxis(r.Start.Line, r.End.Line, r.Start.AbsLine, r.End.AbsLine, at, count)
	if !ok {
		return InvalidReference()
	}
	r.Start.Line, r.End.Line = start, end
	return r
}

func shiftAxis(start, end int64, absStart, absEnd bool, at, count int64) (int64, int64, bool) {
	if count > 0 {
		if !absStart && start >= at {
			start += count
		}
		if !absEnd && end >= at {
			end += count
		}
		return start, end, true
	}
	var (
		last   = at - count - 1
		single = start == end && absStart == absEnd
	)
	if single {
		if absStart {
			return start, end, true
		}
		if start >= at && start <= last {
			return 0, 0, false
		}
		if start > last {
			start += count
		}
		return start, start, true
	}
	if !absStart {
		switch {
		case start > last:
			start += count
		case start >= at:
			start = at
		}
	}
	if !absEnd {
		switch {
		case end > last:
			end += count
		case end >= at:
			end = at - 1
		}
	}
	if end < start || start < 1 {
		return 0, 0, false
	}
	return start, end, true
}

// Offset moves the relative axes of r by the given amounts, as done when a
// formula is copied from one cell to another. Moving a relative axis before
// the first line or column gives an invalid reference.
func (r Reference) Offset(lines, columns int64) Reference {
	if r.Invalid {
		return r
	}
	move := func(a Anchor) Anchor {
		if !a.AbsLine {
			a.Line += lines
		}
		if !a.AbsColumn {
			a.Column += columns
		}
		return a
	}
	r.Start = move(r.Start)
	r.End = move(r.End)
	if r.Start.Line < 1 || r.Start.Column < 1 || r.End.Line < 1 || r.End.Column < 1 {
		return InvalidReference()
	}
	return r
}
