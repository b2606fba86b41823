package grid

import (
	"cmp"
	"math"
	"slices"

	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/value"
)

type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
	ChartArea    ChartType = "area"
)

type Chart struct {
	Title  string
	Type   ChartType
	Legend Legend
	Anchor Anchor

	Series []Series
	XAxis  *Axis
	YAxis  *Axis

	Options ChartOptions
}

type MarkerType string

const (
	MarkerNone     MarkerType = "none"
	MarkerCircle   MarkerType = "circle"
	MarkerSquare   MarkerType = "square"
	MarkerTriangle MarkerType = "triangle"
)

type SeriesStyle struct {
	Color string // "#RRGGBB"
	Width float64
	MarkerType
}

// Series is one set of points of a chart. Labels and Points are filled when
// the chart is refreshed; a point that is not a number is NaN.
type Series struct {
	Name       string
	Categories layout.Range
	Values     layout.Range
	Style      *SeriesStyle

	Labels []string
	Points []float64
}

type Axis struct {
	Title string

	Min float64
	Max float64

	MajorUnit float64
	MinorUnit float64

	LogScale bool
	Reverse  bool
}

type LegendPosition string

const (
	LegendRight  LegendPosition = "right"
	LegendLeft   LegendPosition = "left"
	LegendTop    LegendPosition = "top"
	LegendBottom LegendPosition = "bottom"
)

type Legend struct {
	Visible  bool
	Position LegendPosition
}

type Anchor struct {
	From layout.Position
	To   layout.Position
}

type DataLabel struct {
	ShowValue bool
	ShowName  bool
	ShowPct   bool
}

type ChartOptions struct {
	Stacked     bool
	SmoothLines bool
	DataLabels  DataLabel
}

func (c *Chart) Sources() []layout.Range {
	var list []layout.Range
	for _, s := range c.Series {
		for _, rg := range []layout.Range{s.Categories, s.Values} {
			if rg.Starts.Valid() {
				list = append(list, rg)
			}
		}
	}
	return list
}

func (c *Chart) Refresh(r Reader) error {
	for i := range c.Series {
		s := &c.Series[i]
		s.Labels, s.Points = nil, nil
		if s.Values.Starts.Valid() {
			rows, err := r.Values(s.Values)
			if err != nil {
				return err
			}
			for v := range flatten(rows) {
				f, ok := v.(value.Float)
				if !ok {
					s.Points = append(s.Points, math.NaN())
					continue
				}
				s.Points = append(s.Points, float64(f))
			}
		}
		if s.Categories.Starts.Valid() {
			rows, err := r.Values(s.Categories)
			if err != nil {
				return err
			}
			for v := range flatten(rows) {
				s.Labels = append(s.Labels, v.String())
			}
		}
	}
	return nil
}

func (c *Chart) Rebase(move func(layout.Range) layout.Range) {
	for i := range c.Series {
		s := &c.Series[i]
		if s.Values.Starts.Valid() {
			s.Values = move(s.Values)
		}
		if s.Categories.Starts.Valid() {
			s.Categories = move(s.Categories)
		}
	}
}

// Pivot groups the lines of a zone by the value of one of its columns and
// sums another one. The first line of Source is the header.
type Pivot struct {
	Title   string
	Source  layout.Range
	GroupBy int
	Values  int

	Header []string
	Rows   []PivotRow
}

type PivotRow struct {
	Key   string
	Sum   float64
	Count int
}

func (p *Pivot) Sources() []layout.Range {
	if !p.Source.Starts.Valid() {
		return nil
	}
	return []layout.Range{p.Source}
}

func (p *Pivot) Refresh(r Reader) error {
	p.Header, p.Rows = nil, nil
	if !p.Source.Starts.Valid() {
		return nil
	}
	rows, err := r.Values(p.Source)
	if err != nil || len(rows) == 0 {
		return err
	}
	for _, v := range rows[0] {
		p.Header = append(p.Header, v.String())
	}
	groups := make(map[string]*PivotRow)
	for _, row := range rows[1:] {
		if p.GroupBy >= len(row) || p.Values >= len(row) {
			continue
		}
		key := row[p.GroupBy].String()
		g, ok := groups[key]
		if !ok {
			g = &PivotRow{Key: key}
			groups[key] = g
		}
		if f, ok := row[p.Values].(value.Float); ok {
			g.Sum += float64(f)
			g.Count++
		}
	}
	for _, g := range groups {
		p.Rows = append(p.Rows, *g)
	}
	slices.SortFunc(p.Rows, func(a, b PivotRow) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return nil
}

func (p *Pivot) Rebase(move func(layout.Range) layout.Range) {
	if p.Source.Starts.Valid() {
		p.Source = move(p.Source)
	}
}

func flatten(rows [][]value.ScalarValue) func(func(value.ScalarValue) bool) {
	return func(yield func(value.ScalarValue) bool) {
		for _, row := range rows {
			for _, v := range row {
				if !yield(v) {
					return
				}
			}
		}
	}
}
