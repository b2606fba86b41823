package grid

import (
	"slices"

	"github.com/midbel/sheetcalc/formula/op"
	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/layout"
)

const blockSize = 256

type blockKey struct {
	sheet string
	block int64
}

// dependencies is the reverse index of the zones read by formulas. Single
// cells are indexed by position; ranges are bucketed by blocks of lines.
type dependencies struct {
	uses   map[layout.Position][]layout.Range
	single map[layout.Position]map[layout.Position]struct{}
	blocks map[blockKey]map[layout.Position]struct{}
}

func newDependencies() *dependencies {
	return &dependencies{
		uses:   make(map[layout.Position][]layout.Range),
		single: make(map[layout.Position]map[layout.Position]struct{}),
		blocks: make(map[blockKey]map[layout.Position]struct{}),
	}
}

func (d *dependencies) set(pos layout.Position, zones []layout.Range) {
	d.remove(pos)
	if len(zones) == 0 {
		return
	}
	d.uses[pos] = zones
	for _, rg := range zones {
		if rg.Single() {
			key := rg.Starts
			if d.single[key] == nil {
				d.single[key] = make(map[layout.Position]struct{})
			}
			d.single[key][pos] = struct{}{}
			continue
		}
		for b := blockOf(rg.Starts.Line); b <= blockOf(rg.Ends.Line); b++ {
			key := blockKey{sheet: rg.Starts.Sheet, block: b}
			if d.blocks[key] == nil {
				d.blocks[key] = make(map[layout.Position]struct{})
			}
			d.blocks[key][pos] = struct{}{}
		}
	}
}

func (d *dependencies) remove(pos layout.Position) {
	zones, ok := d.uses[pos]
	if !ok {
		return
	}
	delete(d.uses, pos)
	for _, rg := range zones {
		if rg.Single() {
			delete(d.single[rg.Starts], pos)
			if len(d.single[rg.Starts]) == 0 {
				delete(d.single, rg.Starts)
			}
			continue
		}
		for b := blockOf(rg.Starts.Line); b <= blockOf(rg.Ends.Line); b++ {
			key := blockKey{sheet: rg.Starts.Sheet, block: b}
			delete(d.blocks[key], pos)
			if len(d.blocks[key]) == 0 {
				delete(d.blocks, key)
			}
		}
	}
}

func (d *dependencies) zones(pos layout.Position) []layout.Range {
	return d.uses[pos]
}

// readers returns the formulas reading at least one cell of zone.
func (d *dependencies) readers(zone layout.Range) []layout.Position {
	found := make(map[layout.Position]struct{})
	if zone.Cells() <= int64(len(d.single)) {
		for pos := range zone.Positions() {
			pos.Sheet = zone.Starts.Sheet
			for p := range d.single[pos] {
				found[p] = struct{}{}
			}
		}
	} else {
		for at, list := range d.single {
			if at.Sheet != zone.Starts.Sheet || !zone.Contains(at) {
				continue
			}
			for p := range list {
				found[p] = struct{}{}
			}
		}
	}
	for b := blockOf(zone.Starts.Line); b <= blockOf(zone.Ends.Line); b++ {
		key := blockKey{sheet: zone.Starts.Sheet, block: b}
		for p := range d.blocks[key] {
			if d.reads(p, zone) {
				found[p] = struct{}{}
			}
		}
	}
	list := make([]layout.Position, 0, len(found))
	for p := range found {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b layout.Position) int {
		if a.Sheet != b.Sheet {
			if a.Sheet < b.Sheet {
				return -1
			}
			return 1
		}
		return comparePositions(a, b)
	})
	return list
}

func (d *dependencies) reads(pos layout.Position, zone layout.Range) bool {
	for _, rg := range d.uses[pos] {
		if rg.Starts.Sheet == zone.Starts.Sheet && rg.Intersects(zone) {
			return true
		}
	}
	return false
}

func (d *dependencies) reset() {
	clear(d.uses)
	clear(d.single)
	clear(d.blocks)
}

func blockOf(line int64) int64 {
	return (line - 1) / blockSize
}

// zonesOf returns the zones read by a formula located on sheet. Two
// references joined by the range operator also give the rectangle between
// them.
func zonesOf(sheet string, text string, deps []parse.Dependency) []layout.Range {
	var (
		list []layout.Range
		refs = make(map[int]layout.Reference)
	)
	for i, d := range deps {
		if d.Kind != parse.DepReference {
			continue
		}
		ref, err := d.Reference()
		if err != nil || ref.Invalid {
			continue
		}
		ref = ref.Qualify(sheet)
		refs[i] = ref
		list = append(list, ref.Range())
	}
	tokens, err := parse.Tokenize(text, parse.ModeNormalized)
	if err != nil {
		return list
	}
	var (
		slot  int
		left  = -1
		joint bool
	)
	for _, tok := range tokens {
		switch {
		case tok.Placeholder:
			if joint && left >= 0 {
				if rg, ok := joinZones(refs, left, slot); ok {
					list = append(list, rg)
				}
			}
			left, joint = slot, false
			slot++
		case tok.Type == op.Range:
			joint = true
		case tok.Type == op.Space:
		default:
			left, joint = -1, false
		}
	}
	return list
}

func joinZones(refs map[int]layout.Reference, left, right int) (layout.Range, bool) {
	fst, ok1 := refs[left]
	lst, ok2 := refs[right]
	if !ok1 || !ok2 || fst.Sheet != lst.Sheet {
		return layout.Range{}, false
	}
	rg := fst.Range().Union(lst.Range())
	rg.Starts.Sheet = fst.Sheet
	rg.Ends.Sheet = fst.Sheet
	return rg, true
}
