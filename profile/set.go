package profile

import (
	"iter"
	"slices"

	"github.com/midbel/sheetcalc/layout"
)

// Set is a set of cells of one sheet stored as sorted column boundaries,
// each starting a run of columns sharing the same profile of lines.
//
// The profile of bounds[i] applies to the columns [bounds[i], bounds[i+1]).
// Columns before the first boundary are empty and the last profile is always
// empty. Two consecutive profiles are never equal so the same set of cells
// always has the same representation.
type Set struct {
	bounds   []int64
	profiles []Profile
}

func New() *Set {
	return &Set{}
}

func (s *Set) Clone() *Set {
	c := Set{
		bounds:   slices.Clone(s.bounds),
		profiles: make([]Profile, len(s.profiles)),
	}
	for i := range s.profiles {
		c.profiles[i] = s.profiles[i].Clone()
	}
	return &c
}

func (s *Set) Empty() bool {
	return len(s.bounds) == 0
}

// Add inserts the cells of rg.
func (s *Set) Add(rg layout.Range) {
	cols, lines := split(rg)
	s.update(cols, func(p Profile) Profile {
		return p.Add(lines)
	})
}

// Remove deletes the cells of rg.
func (s *Set) Remove(rg layout.Range) {
	cols, lines := split(rg)
	s.update(cols, func(p Profile) Profile {
		return p.Remove(lines)
	})
}

// Contains reports whether every cell of rg belongs to s.
func (s *Set) Contains(rg layout.Range) bool {
	cols, lines := split(rg)
	if len(s.bounds) == 0 || cols.Start < s.bounds[0] {
		return false
	}
	for i := s.segment(cols.Start); i < len(s.bounds) && s.bounds[i] < cols.End; i++ {
		if !s.profiles[i].Covers(lines) {
			return false
		}
	}
	return true
}

// Intersects reports whether at least one cell of rg belongs to s.
func (s *Set) Intersects(rg layout.Range) bool {
	cols, lines := split(rg)
	i := max(s.segment(cols.Start), 0)
	for ; i < len(s.bounds) && s.bounds[i] < cols.End; i++ {
		if s.end(i) <= cols.Start {
			continue
		}
		if s.profiles[i].Overlaps(lines) {
			return true
		}
	}
	return false
}

func (s *Set) ContainsPosition(pos layout.Position) bool {
	return s.Contains(layout.SingleCell(pos))
}

// Difference returns the cells of s that are not in other.
func (s *Set) Difference(other *Set) *Set {
	res := s.Clone()
	for rg := range other.Rectangles() {
		res.Remove(rg)
	}
	return res
}

// Union returns the cells found in s or other.
func (s *Set) Union(other *Set) *Set {
	res := s.Clone()
	for rg := range other.Rectangles() {
		res.Add(rg)
	}
	return res
}

// Size returns the number of cells in s.
func (s *Set) Size() int64 {
	var n int64
	for i := range s.profiles {
		if i+1 >= len(s.bounds) {
			break
		}
		n += (s.bounds[i+1] - s.bounds[i]) * s.profiles[i].Len()
	}
	return n
}

// Equal reports whether s and other have the same representation.
func (s *Set) Equal(other *Set) bool {
	if !slices.Equal(s.bounds, other.bounds) {
		return false
	}
	return slices.EqualFunc(s.profiles, other.profiles, Profile.Equal)
}

// Rectangles yields the rectangles covering s. An interval shared by
// consecutive column runs is reported once, spanning all of them.
func (s *Set) Rectangles() iter.Seq[layout.Range] {
	return func(yield func(layout.Range) bool) {
		for i := range s.profiles {
			for _, in := range s.profiles[i] {
				if i > 0 && slices.Contains(s.profiles[i-1], in) {
					continue
				}
				j := i + 1
				for j < len(s.profiles) && slices.Contains(s.profiles[j], in) {
					j++
				}
				rg := layout.NewRange(
					layout.Position{Line: in.Start, Column: s.bounds[i]},
					layout.Position{Line: in.End - 1, Column: s.bounds[j] - 1},
				)
				if !yield(rg) {
					return
				}
			}
		}
	}
}

// Positions yields every cell of s, column run by column run.
func (s *Set) Positions() iter.Seq[layout.Position] {
	return func(yield func(layout.Position) bool) {
		for rg := range s.Rectangles() {
			for pos := range rg.Positions() {
				if !yield(pos) {
					return
				}
			}
		}
	}
}

func (s *Set) Reset() {
	s.bounds = s.bounds[:0]
	s.profiles = s.profiles[:0]
}

func (s *Set) update(cols Interval, do func(Profile) Profile) {
	if cols.Empty() {
		return
	}
	first := s.split(cols.Start)
	last := s.split(cols.End)
	for i := first; i < last; i++ {
		s.profiles[i] = do(s.profiles[i])
	}
	s.compact()
}

// split makes sure a boundary exists at col and returns its index.
func (s *Set) split(col int64) int {
	i, ok := slices.BinarySearch(s.bounds, col)
	if ok {
		return i
	}
	var p Profile
	if i > 0 {
		p = s.profiles[i-1].Clone()
	}
	s.bounds = slices.Insert(s.bounds, i, col)
	s.profiles = slices.Insert(s.profiles, i, p)
	return i
}

func (s *Set) compact() {
	var (
		bounds   = s.bounds[:0]
		profiles = s.profiles[:0]
		prev     Profile
	)
	for i := range s.bounds {
		if prev.Equal(s.profiles[i]) {
			continue
		}
		bounds = append(bounds, s.bounds[i])
		profiles = append(profiles, s.profiles[i])
		prev = s.profiles[i]
	}
	s.bounds, s.profiles = bounds, profiles
}

// segment returns the index of the run holding col, -1 if col is before the
// first boundary.
func (s *Set) segment(col int64) int {
	i, ok := slices.BinarySearch(s.bounds, col)
	if ok {
		return i
	}
	return i - 1
}

func (s *Set) end(i int) int64 {
	if i+1 < len(s.bounds) {
		return s.bounds[i+1]
	}
	return 1<<63 - 1
}

func split(rg layout.Range) (Interval, Interval) {
	rg = rg.Normalize()
	cols := Interval{
		Start: rg.Starts.Column,
		End:   rg.Ends.Column + 1,
	}
	lines := Interval{
		Start: rg.Starts.Line,
		End:   rg.Ends.Line + 1,
	}
	return cols, lines
}
