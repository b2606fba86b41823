package profile

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/midbel/sheetcalc/layout"
)

func zone(str string) layout.Range {
	return layout.RangeFromString(str)
}

func TestProfile(t *testing.T) {
	var p Profile
	p = p.Add(Interval{1, 3})
	p = p.Add(Interval{5, 7})
	p = p.Add(Interval{3, 5})
	want := Profile{{1, 7}}
	if !p.Equal(want) {
		t.Fatalf("profile mismatched! want %v - got %v", want, p)
	}
	p = p.Remove(Interval{2, 4})
	want = Profile{{1, 2}, {4, 7}}
	if !p.Equal(want) {
		t.Fatalf("profile mismatched! want %v - got %v", want, p)
	}
	if !p.Covers(Interval{4, 6}) || p.Covers(Interval{1, 3}) {
		t.Errorf("covers gives wrong results for %v", p)
	}
	if !p.Overlaps(Interval{0, 2}) || p.Overlaps(Interval{2, 4}) {
		t.Errorf("overlaps gives wrong results for %v", p)
	}
}

func TestSetContains(t *testing.T) {
	s := New()
	s.Add(zone("A1:C3"))
	s.Add(zone("B2:D5"))
	s.Remove(zone("B2:B2"))

	tests := []struct {
		Zone string
		Want bool
	}{
		{Zone: "A1:C1", Want: true},
		{Zone: "A1:C3", Want: false},
		{Zone: "B2", Want: false},
		{Zone: "C2:D5", Want: true},
		{Zone: "D1", Want: false},
		{Zone: "E5", Want: false},
		{Zone: "A3:D3", Want: true},
		{Zone: "C4:D5", Want: true},
		{Zone: "B4:D5", Want: true},
		{Zone: "A4", Want: false},
	}
	for _, c := range tests {
		got := s.Contains(zone(c.Zone))
		if got != c.Want {
			t.Errorf("%s: results mismatched! want %t - got %t", c.Zone, c.Want, got)
		}
	}
	if got := s.Size(); got != 9+12-4-1 {
		t.Errorf("size mismatched! want %d - got %d", 9+12-4-1, got)
	}
}

func TestSetIntersects(t *testing.T) {
	s := New()
	s.Add(zone("C3:D4"))
	tests := []struct {
		Zone string
		Want bool
	}{
		{Zone: "A1:B2", Want: false},
		{Zone: "A1:C3", Want: true},
		{Zone: "D4:F9", Want: true},
		{Zone: "E1:E9", Want: false},
		{Zone: "A5:Z9", Want: false},
	}
	for _, c := range tests {
		got := s.Intersects(zone(c.Zone))
		if got != c.Want {
			t.Errorf("%s: results mismatched! want %t - got %t", c.Zone, c.Want, got)
		}
	}
}

func TestSetCanonical(t *testing.T) {
	var (
		s1 = New()
		s2 = New()
	)
	s1.Add(zone("A1:D4"))

	s2.Add(zone("A1:B4"))
	s2.Add(zone("C1:D2"))
	s2.Add(zone("B3:F6"))
	s2.Remove(zone("E1:F9"))
	s2.Remove(zone("A5:D6"))

	if !s1.Equal(s2) {
		t.Fatalf("sets should have the same representation: %v - %v", s1, s2)
	}
	if s1.Size() != s2.Size() {
		t.Errorf("size mismatched! want %d - got %d", s1.Size(), s2.Size())
	}
	r1 := slices.Collect(s1.Rectangles())
	r2 := slices.Collect(s2.Rectangles())
	if !slices.Equal(r1, r2) {
		t.Errorf("rectangles mismatched! want %v - got %v", r1, r2)
	}
}

func TestSetInsertRemove(t *testing.T) {
	s := New()
	zones := []string{"A1:C3", "B2:E8", "D1:D10", "A5"}
	for _, z := range zones {
		s.Add(zone(z))
	}
	for _, z := range zones {
		s.Remove(zone(z))
	}
	if !s.Empty() || s.Size() != 0 {
		t.Errorf("set should be empty - got %d cells", s.Size())
	}
	if !s.Equal(New()) {
		t.Errorf("set should be equal to a new set")
	}
}

func TestSetRectangles(t *testing.T) {
	s := New()
	s.Add(zone("A1:B2"))
	s.Add(zone("C1:C5"))
	s.Add(zone("D1:E2"))
	want := []layout.Range{
		zone("A1:B2"),
		zone("C1:C5"),
		zone("D1:E2"),
	}
	got := slices.Collect(s.Rectangles())
	if !slices.Equal(got, want) {
		t.Errorf("rectangles mismatched! want %v - got %v", want, got)
	}
	var cells int
	for range s.Positions() {
		cells++
	}
	if int64(cells) != s.Size() {
		t.Errorf("positions mismatched! want %d - got %d", s.Size(), cells)
	}
}

func TestSetDifference(t *testing.T) {
	var (
		s1 = New()
		s2 = New()
	)
	s1.Add(zone("A1:D4"))
	s2.Add(zone("B2:C3"))
	s2.Add(zone("F1:F2"))

	diff := s1.Difference(s2)
	if diff.Size() != 12 {
		t.Errorf("size mismatched! want 12 - got %d", diff.Size())
	}
	if diff.Intersects(zone("B2:C3")) {
		t.Errorf("difference should not hold removed cells")
	}
	if s1.Size() != 16 {
		t.Errorf("difference should not modify its receiver")
	}
	union := diff.Union(s2)
	if !union.Contains(zone("A1:D4")) || !union.Contains(zone("F1:F2")) {
		t.Errorf("union should hold both sets")
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	rg := zone("A1:B2")
	rg.Starts.Sheet, rg.Ends.Sheet = "data", "data"
	tr.Add(rg)
	tr.Add(zone("C3"))

	if !tr.Contains(rg) {
		t.Errorf("tracker should contain %s", rg)
	}
	if tr.Contains(zone("A1")) {
		t.Errorf("tracker should not mix sheets")
	}
	if tr.Size() != 5 {
		t.Errorf("size mismatched! want 5 - got %d", tr.Size())
	}
	tr.Remove(rg)
	tr.Remove(zone("C3"))
	if !tr.Empty() {
		t.Errorf("tracker should be empty")
	}
}

type cellSet map[layout.Position]bool

func (c cellSet) apply(rg layout.Range, on bool) {
	for pos := range rg.Positions() {
		if on {
			c[pos] = true
		} else {
			delete(c, pos)
		}
	}
}

func (c cellSet) covers(rg layout.Range) bool {
	for pos := range rg.Positions() {
		if !c[pos] {
			return false
		}
	}
	return true
}

func randomZone(rd *rand.Rand, size int64) layout.Range {
	var (
		l1, l2 = 1 + rd.Int64N(size), 1 + rd.Int64N(size)
		c1, c2 = 1 + rd.Int64N(size), 1 + rd.Int64N(size)
	)
	return layout.NewRange(
		layout.Position{Line: min(l1, l2), Column: min(c1, c2)},
		layout.Position{Line: max(l1, l2), Column: max(c1, c2)},
	)
}

func randomSet(rd *rand.Rand, size int64, steps int) (*Set, cellSet) {
	var (
		set   = New()
		cells = make(cellSet)
	)
	for range steps {
		rg := randomZone(rd, size)
		add := rd.IntN(3) > 0
		if add {
			set.Add(rg)
		} else {
			set.Remove(rg)
		}
		cells.apply(rg, add)
	}
	return set, cells
}

func TestSetRandom(t *testing.T) {
	const size = 12
	rd := rand.New(rand.NewPCG(42, 1024))
	for round := range 500 {
		set, cells := randomSet(rd, size, 1+rd.IntN(12))
		if set.Size() != int64(len(cells)) {
			t.Fatalf("round %d: size mismatched! want %d - got %d", round, len(cells), set.Size())
		}
		for range 20 {
			rg := randomZone(rd, size)
			if got, want := set.Contains(rg), cells.covers(rg); got != want {
				t.Fatalf("round %d: contains %s mismatched! want %t - got %t", round, rg, want, got)
			}
		}

		var (
			seen    = make(cellSet)
			rebuilt = New()
		)
		for rg := range set.Rectangles() {
			for pos := range rg.Positions() {
				if !cells[pos] {
					t.Fatalf("round %d: rectangle %s covers unset cell %s", round, rg, pos)
				}
				if seen[pos] {
					t.Fatalf("round %d: cell %s covered twice", round, pos)
				}
				seen[pos] = true
			}
			rebuilt.Add(rg)
		}
		if len(seen) != len(cells) {
			t.Fatalf("round %d: rectangles cover %d cells - want %d", round, len(seen), len(cells))
		}
		if !rebuilt.Equal(set) {
			t.Fatalf("round %d: same cells should give the same internal state", round)
		}

		other, others := randomSet(rd, size, 1+rd.IntN(6))
		diff := set.Difference(other)
		var want int64
		for pos := range cells {
			in := !others[pos]
			if in {
				want++
			}
			if diff.ContainsPosition(pos) != in {
				t.Fatalf("round %d: difference mismatched at %s", round, pos)
			}
		}
		if diff.Size() != want {
			t.Fatalf("round %d: difference size mismatched! want %d - got %d", round, want, diff.Size())
		}
	}
}
