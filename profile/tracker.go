package profile

import (
	"iter"
	"maps"
	"slices"

	"github.com/midbel/sheetcalc/layout"
)

// Tracker holds one set per sheet. The sheet of a range is the sheet of its
// first position.
type Tracker struct {
	sheets map[string]*Set
}

func NewTracker() *Tracker {
	return &Tracker{
		sheets: make(map[string]*Set),
	}
}

func (t *Tracker) Add(rg layout.Range) {
	s, ok := t.sheets[rg.Starts.Sheet]
	if !ok {
		s = New()
		t.sheets[rg.Starts.Sheet] = s
	}
	s.Add(rg)
}

func (t *Tracker) Remove(rg layout.Range) {
	s, ok := t.sheets[rg.Starts.Sheet]
	if !ok {
		return
	}
	s.Remove(rg)
	if s.Empty() {
		delete(t.sheets, rg.Starts.Sheet)
	}
}

func (t *Tracker) Contains(rg layout.Range) bool {
	s, ok := t.sheets[rg.Starts.Sheet]
	return ok && s.Contains(rg)
}

func (t *Tracker) Intersects(rg layout.Range) bool {
	s, ok := t.sheets[rg.Starts.Sheet]
	return ok && s.Intersects(rg)
}

func (t *Tracker) Empty() bool {
	return len(t.sheets) == 0
}

func (t *Tracker) Size() int64 {
	var n int64
	for _, s := range t.sheets {
		n += s.Size()
	}
	return n
}

// Rectangles yields the rectangles of every sheet, sheets sorted by name.
func (t *Tracker) Rectangles() iter.Seq[layout.Range] {
	return func(yield func(layout.Range) bool) {
		for _, name := range slices.Sorted(maps.Keys(t.sheets)) {
			for rg := range t.sheets[name].Rectangles() {
				rg.Starts.Sheet = name
				rg.Ends.Sheet = name
				if !yield(rg) {
					return
				}
			}
		}
	}
}

func (t *Tracker) Reset() {
	clear(t.sheets)
}
