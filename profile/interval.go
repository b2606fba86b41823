package profile

import (
	"slices"
)

// Interval is a half-open interval of lines [Start, End).
type Interval struct {
	Start, End int64
}

func (in Interval) Empty() bool {
	return in.Start >= in.End
}

func (in Interval) Len() int64 {
	if in.Empty() {
		return 0
	}
	return in.End - in.Start
}

// Profile is a sorted list of disjoint, non-adjacent intervals.
type Profile []Interval

func (p Profile) Len() int64 {
	var n int64
	for i := range p {
		n += p[i].Len()
	}
	return n
}

func (p Profile) Equal(other Profile) bool {
	return slices.Equal(p, other)
}

// Covers reports whether every line of in belongs to p.
func (p Profile) Covers(in Interval) bool {
	if in.Empty() {
		return true
	}
	for i := range p {
		if p[i].End <= in.Start {
			continue
		}
		return p[i].Start <= in.Start && p[i].End >= in.End
	}
	return false
}

// Overlaps reports whether at least one line of in belongs to p.
func (p Profile) Overlaps(in Interval) bool {
	for i := range p {
		if p[i].End <= in.Start {
			continue
		}
		if p[i].Start >= in.End {
			break
		}
		return true
	}
	return false
}

// Add returns a new profile with in merged into it.
func (p Profile) Add(in Interval) Profile {
	if in.Empty() {
		return p
	}
	res := make(Profile, 0, len(p)+1)
	for _, x := range p {
		switch {
		case x.End < in.Start:
			res = append(res, x)
		case x.Start > in.End:
			if !in.Empty() {
				res = append(res, in)
				in = Interval{}
			}
			res = append(res, x)
		default:
			in.Start = min(in.Start, x.Start)
			in.End = max(in.End, x.End)
		}
	}
	if !in.Empty() {
		res = append(res, in)
	}
	return res
}

// Remove returns a new profile without the lines of in.
func (p Profile) Remove(in Interval) Profile {
	if in.Empty() {
		return p
	}
	res := make(Profile, 0, len(p)+1)
	for _, x := range p {
		if x.End <= in.Start || x.Start >= in.End {
			res = append(res, x)
			continue
		}
		if x.Start < in.Start {
			res = append(res, Interval{Start: x.Start, End: in.Start})
		}
		if x.End > in.End {
			res = append(res, Interval{Start: in.End, End: x.End})
		}
	}
	return res
}

func (p Profile) Clone() Profile {
	return slices.Clone(p)
}
