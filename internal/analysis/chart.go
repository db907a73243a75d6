package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/dataloom/internal/dataset"
)

// ChartKind selects how chart data is prepared.
type ChartKind string

const (
	ChartScatter ChartKind = "scatter"
	ChartLine    ChartKind = "line"
	ChartBar     ChartKind = "bar"
)

// ParseChartKind resolves a chart kind name, case-insensitively.
func ParseChartKind(s string) (ChartKind, error) {
	switch k := ChartKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ChartScatter, ChartLine, ChartBar:
		return k, nil
	}
	return "", &dataset.InvalidParameterError{Param: "chart kind", Value: s, Reason: "use scatter, line or bar"}
}

// sorted reports whether the kind needs rows ordered by X.
func (k ChartKind) sorted() bool { return k == ChartLine || k == ChartBar }

// Series is one column of chart data in render order.
type Series struct {
	Name string
	Kind dataset.Kind
	// Values holds parsed numbers, NaN for missing cells and categorical columns.
	Values []float64
	// Labels holds the raw cell text, "" for missing cells.
	Labels []string
}

// ChartData is the minimal column subset handed to a chart renderer.
type ChartData struct {
	Kind  ChartKind
	X, Y  Series
	Hue   *Series
	Index []int // source row position of each point
}

// Len returns the number of points.
func (c ChartData) Len() int { return len(c.Index) }

// Frame returns the chart data as a table (X, Y and hue when present).
func (c ChartData) Frame() Frame {
	f := Frame{
		Columns: []string{c.X.Name, c.Y.Name},
		Kinds:   []dataset.Kind{c.X.Kind, c.Y.Kind},
		Index:   append([]int(nil), c.Index...),
		Rows:    make([][]string, len(c.Index)),
	}
	if c.Hue != nil {
		f.Columns = append(f.Columns, c.Hue.Name)
		f.Kinds = append(f.Kinds, c.Hue.Kind)
	}
	for i := range c.Index {
		row := []string{c.X.Labels[i], c.Y.Labels[i]}
		if c.Hue != nil {
			row = append(row, c.Hue.Labels[i])
		}
		f.Rows[i] = row
	}
	return f
}

// PrepareChart selects the columns for a chart. Scatter keeps source row order and
// adds the hue column when one is named; line and bar require numeric X and Y and
// order rows ascending by X with ties kept in source order and missing X last.
func PrepareChart(ds *dataset.Dataset, x, y string, kind ChartKind, hue string) (ChartData, error) {
	if kind != ChartScatter && !kind.sorted() {
		return ChartData{}, &dataset.InvalidParameterError{Param: "chart kind", Value: string(kind), Reason: "use scatter, line or bar"}
	}
	xc, err := ds.Column(x)
	if err != nil {
		return ChartData{}, err
	}
	yc, err := ds.Column(y)
	if err != nil {
		return ChartData{}, err
	}
	var hc *dataset.Column
	if kind == ChartScatter && hue != "" {
		if hc, err = ds.Column(hue); err != nil {
			return ChartData{}, err
		}
	}
	if kind.sorted() {
		for _, c := range []*dataset.Column{xc, yc} {
			if !c.IsNumeric() {
				return ChartData{}, &dataset.TypeMismatchError{Column: c.Name(), Kind: c.Kind(), Want: dataset.KindNumeric}
			}
		}
	}

	order := make([]int, ds.NumRows())
	for i := range order {
		order[i] = i
	}
	if kind.sorted() {
		sort.SliceStable(order, func(a, b int) bool {
			va, oka := xc.Float(order[a])
			vb, okb := xc.Float(order[b])
			if !oka {
				return false
			}
			if !okb {
				return true
			}
			return va < vb
		})
	}

	cd := ChartData{
		Kind:  kind,
		X:     series(xc, order),
		Y:     series(yc, order),
		Index: order,
	}
	if hc != nil {
		h := series(hc, order)
		cd.Hue = &h
	}
	return cd, nil
}

func series(c *dataset.Column, order []int) Series {
	s := Series{
		Name:   c.Name(),
		Kind:   c.Kind(),
		Values: make([]float64, len(order)),
		Labels: make([]string, len(order)),
	}
	for i, row := range order {
		v, ok := c.Float(row)
		if !ok {
			v = math.NaN()
		}
		s.Values[i] = v
		s.Labels[i] = c.Value(row)
	}
	return s
}

// Title returns the default chart title, "<x> vs <y>".
func (c ChartData) Title() string { return fmt.Sprintf("%s vs %s", c.X.Name, c.Y.Name) }
