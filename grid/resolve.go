package grid

import (
	"strings"

	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

// resolver reads the document on behalf of a formula located on sheet.
type resolver struct {
	doc   *Document
	sheet string
}

func (r resolver) Cell(ref layout.Reference) value.Value {
	if ref.Invalid {
		return value.ErrRef
	}
	ref = ref.Qualify(r.sheet)
	sh, err := r.doc.Sheet(ref.Sheet)
	if err != nil {
		return value.ErrRef
	}
	pos := ref.Position()
	if !sh.Size.Contains(pos) {
		return value.ErrRef
	}
	return sh.Value(pos)
}

func (r resolver) Range(ref layout.Reference) value.Value {
	if ref.Invalid {
		return value.ErrRef
	}
	ref = ref.Qualify(r.sheet)
	sh, err := r.doc.Sheet(ref.Sheet)
	if err != nil {
		return value.ErrRef
	}
	rg := ref.Range()
	if !sh.Size.Contains(rg.Starts) || !sh.Size.Contains(rg.Ends) {
		return value.ErrRef
	}
	var rows [][]value.ScalarValue
	for line := rg.Starts.Line; line <= rg.Ends.Line; line++ {
		row := make([]value.ScalarValue, 0, rg.Width())
		for col := rg.Starts.Column; col <= rg.Ends.Column; col++ {
			row = append(row, sh.Value(layout.Position{Line: line, Column: col}))
		}
		rows = append(rows, row)
	}
	return value.NewArray(rows)
}

func (r resolver) Symbol(name string) value.Value {
	if target, ok := r.doc.names[strings.ToUpper(name)]; ok {
		if target.IsRange() {
			return r.Range(target)
		}
		return r.Cell(target)
	}
	v, err := r.doc.registry.Symbol(name)
	if err != nil {
		return value.ErrName
	}
	return v
}

// frozenResolver holds the values read by an asynchronous formula, taken
// when the evaluation is started. Anything not captured gives #N/A.
type frozenResolver struct {
	sheet   string
	cells   map[layout.Reference]value.Value
	symbols map[string]value.Value
}

func freeze(r resolver, deps []parse.Dependency, symbols []string) frozenResolver {
	fr := frozenResolver{
		sheet:   r.sheet,
		cells:   make(map[layout.Reference]value.Value),
		symbols: make(map[string]value.Value),
	}
	for _, d := range deps {
		if d.Kind != parse.DepReference {
			continue
		}
		ref, err := d.Reference()
		if err != nil {
			continue
		}
		ref = ref.Qualify(r.sheet)
		if ref.IsRange() {
			fr.cells[ref] = r.Range(ref)
		} else {
			fr.cells[ref] = r.Cell(ref)
		}
	}
	for _, s := range symbols {
		fr.symbols[strings.ToUpper(s)] = r.Symbol(s)
	}
	return fr
}

func (r frozenResolver) Cell(ref layout.Reference) value.Value {
	return r.lookup(ref)
}

func (r frozenResolver) Range(ref layout.Reference) value.Value {
	return r.lookup(ref)
}

func (r frozenResolver) lookup(ref layout.Reference) value.Value {
	if ref.Invalid {
		return value.ErrRef
	}
	v, ok := r.cells[ref.Qualify(r.sheet)]
	if !ok {
		return value.ErrNA
	}
	return v
}

func (r frozenResolver) Symbol(name string) value.Value {
	v, ok := r.symbols[strings.ToUpper(name)]
	if !ok {
		return value.ErrName
	}
	return v
}
