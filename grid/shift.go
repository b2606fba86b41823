package grid

import (
	"fmt"
	"slices"

	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/layout"
)

type axis int8

const (
	axisColumns axis = iota
	axisLines
)

// InsertColumns inserts count columns before column at.
func (d *Document) InsertColumns(sheet string, at, count int64) error {
	return d.shift(sheet, axisColumns, at, count)
}

// DeleteColumns deletes the columns at to at+count-1. References to deleted
// cells become #REF!.
func (d *Document) DeleteColumns(sheet string, at, count int64) error {
	return d.shift(sheet, axisColumns, at, -count)
}

func (d *Document) InsertRows(sheet string, at, count int64) error {
	return d.shift(sheet, axisLines, at, count)
}

func (d *Document) DeleteRows(sheet string, at, count int64) error {
	return d.shift(sheet, axisLines, at, -count)
}

func (d *Document) shift(name string, ax axis, at, count int64) error {
	sh, err := d.Sheet(name)
	if err != nil {
		return err
	}
	limit := sh.Size.Columns
	if ax == axisLines {
		limit = sh.Size.Lines
	}
	if at < 1 || count == 0 || at > limit+1 || (count < 0 && at-count-1 > limit) {
		return fmt.Errorf("%s: %d/%d: %w", sh.name, at, count, ErrBounds)
	}
	d.touch(sh.Bounds())

	moved := make(map[layout.Position]*Cell, len(sh.cells))
	for pos, cell := range sh.cells {
		d.forget(pos)
		next, ok := shiftPosition(pos, ax, at, count)
		if !ok {
			continue
		}
		cell.Position = next
		moved[next] = cell
	}
	sh.cells = moved
	if ax == axisColumns {
		sh.Size.Columns = max(1, sh.Size.Columns+count)
	} else {
		sh.Size.Lines = max(1, sh.Size.Lines+count)
	}

	move := func(ref layout.Reference) layout.Reference {
		if ref.Sheet != sh.name {
			return ref
		}
		if ax == axisColumns {
			return ref.ShiftColumns(at, count)
		}
		return ref.ShiftRows(at, count)
	}
	d.deps.reset()
	for _, s := range d.sheets {
		for pos, cell := range s.cells {
			if !cell.IsFormula() {
				continue
			}
			if d.rewrite(cell, move) || s == sh {
				d.cancel(pos)
				cell.State = StateDirty
				d.queue[pos] = struct{}{}
			}
			d.index(cell)
		}
	}
	for n, ref := range d.names {
		d.names[n] = move(ref)
	}
	for _, a := range d.artifacts {
		a.artifact.Rebase(func(rg layout.Range) layout.Range {
			ref := move(layout.RangeReference(rg))
			if ref.Invalid {
				a.deleted = true
				return rg
			}
			return ref.Range()
		})
		a.stale = true
	}
	d.touch(sh.Bounds())
	d.logger.Debug("sheet shifted", "sheet", sh.name, "at", at, "count", count, "columns", ax == axisColumns)
	return nil
}

// rewrite applies move to the references of a formula. The formula is
// compiled again when one of them changed.
func (d *Document) rewrite(cell *Cell, move func(layout.Reference) layout.Reference) bool {
	var (
		deps    = slices.Clone(cell.Formula.Deps())
		changed bool
	)
	for i, dep := range deps {
		if dep.Kind != parse.DepReference {
			continue
		}
		ref, err := dep.Reference()
		if err != nil || ref.Invalid {
			continue
		}
		var (
			qualified = ref.Qualify(cell.Sheet)
			next      = move(qualified)
		)
		if next == qualified {
			continue
		}
		if !next.Invalid && ref.Sheet == "" {
			next.Sheet = ""
		}
		deps[i] = parse.ReferenceDep(next)
		changed = true
	}
	if !changed {
		return false
	}
	text, err := parse.Substitute(cell.Formula.Normalized.Text, deps)
	if err != nil {
		return false
	}
	cell.Raw = "=" + text
	c := d.engine.Compile(cell.Raw)
	cell.Formula = &c
	return true
}

func shiftPosition(pos layout.Position, ax axis, at, count int64) (layout.Position, bool) {
	v := &pos.Column
	if ax == axisLines {
		v = &pos.Line
	}
	if count > 0 {
		if *v >= at {
			*v += count
		}
		return pos, true
	}
	last := at - count - 1
	if *v >= at && *v <= last {
		return pos, false
	}
	if *v > last {
		*v += count
	}
	return pos, true
}
