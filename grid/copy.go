package grid

import (
	"fmt"

	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/layout"
)

type CopyMode int

const (
	CopyValue CopyMode = 1 << iota
	CopyFormula
	CopyStyle
	CopyAll = CopyValue | CopyFormula | CopyStyle
)

func CopyModeFromString(str string) (CopyMode, error) {
	var mode CopyMode
	switch str {
	case "value":
		mode |= CopyValue
	case "formula":
		mode |= CopyFormula
	case "style":
		mode |= CopyStyle
	case "", "all":
		mode |= CopyAll
	default:
		return mode, fmt.Errorf("%s invalid value for copy mode", str)
	}
	return mode, nil
}

type copied struct {
	raw    string
	format string
}

// Copy copies the cells of src to the zone starting at dst. Relative
// references of copied formulas move with them.
func (d *Document) Copy(src layout.Range, dst layout.Position, mode CopyMode) error {
	from, err := d.Sheet(src.Starts.Sheet)
	if err != nil {
		return err
	}
	src.Starts.Sheet, src.Ends.Sheet = from.name, from.name
	to, dst, err := d.locate(dst)
	if err != nil {
		return err
	}
	last := dst.Offset(src.Height()-1, src.Width()-1)
	if !to.Size.Contains(last) {
		return fmt.Errorf("%s: %w", last, ErrBounds)
	}
	var (
		lines   = dst.Line - src.Starts.Line
		columns = dst.Column - src.Starts.Column
		cells   = make(map[layout.Position]copied)
	)
	for pos := range src.Positions() {
		pos.Sheet = from.name
		cell := from.cells[pos]
		if cell == nil {
			cells[pos] = copied{}
			continue
		}
		var c copied
		c.format = cell.Format
		switch {
		case cell.IsFormula() && mode&CopyFormula != 0:
			c.raw = d.offsetFormula(cell, lines, columns)
		case cell.IsFormula() && mode&CopyValue != 0:
			c.raw = literalOf(cell.Value)
		case !cell.IsFormula() && mode&(CopyValue|CopyFormula) != 0:
			c.raw = cell.Raw
		default:
			c.raw = ""
		}
		cells[pos] = c
	}
	for pos, c := range cells {
		target := pos.Offset(lines, columns)
		target.Sheet = to.name
		if mode&(CopyValue|CopyFormula) != 0 {
			if err := d.SetContent(target, c.raw); err != nil {
				return err
			}
		}
		if mode&CopyStyle != 0 {
			if err := d.SetFormat(target, c.format); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Document) offsetFormula(cell *Cell, lines, columns int64) string {
	deps := make([]parse.Dependency, len(cell.Formula.Deps()))
	copy(deps, cell.Formula.Deps())
	for i, dep := range deps {
		if dep.Kind != parse.DepReference {
			continue
		}
		ref, err := dep.Reference()
		if err != nil {
			continue
		}
		deps[i] = parse.ReferenceDep(ref.Offset(lines, columns))
	}
	text, err := parse.Substitute(cell.Formula.Normalized.Text, deps)
	if err != nil {
		return cell.Raw
	}
	return "=" + text
}
