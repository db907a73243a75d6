package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/dataloom/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Frame is a read-only row view derived from a Dataset.
type Frame struct {
	Columns []string
	Kinds   []dataset.Kind
	// Index holds the source row position of each row.
	Index []int
	Rows  [][]string
}

// Len returns the number of rows in the frame.
func (f Frame) Len() int { return len(f.Rows) }

// Head returns the first n rows. n is clamped to [1, rows]; an empty dataset has no head.
func Head(ds *dataset.Dataset, n int) (Frame, error) {
	rows := ds.NumRows()
	if rows == 0 {
		return Frame{}, &dataset.InvalidParameterError{Param: "rows", Value: n, Reason: "dataset has no rows"}
	}
	if n < 1 {
		n = 1
	}
	if n > rows {
		n = rows
	}
	f := Frame{
		Columns: ds.Columns(),
		Kinds:   ds.Kinds(),
		Index:   make([]int, n),
		Rows:    make([][]string, n),
	}
	for i := 0; i < n; i++ {
		f.Index[i] = i
		f.Rows[i] = ds.Row(i)
	}
	return f, nil
}

// MissingCount is the number of absent cells in one column.
type MissingCount struct {
	Column string
	Count  int
}

// MissingReport lists missing counts in dataset column order.
type MissingReport struct {
	Rows   int
	Counts []MissingCount
}

// Total returns the number of missing cells across all columns.
func (m MissingReport) Total() int {
	var n int
	for _, c := range m.Counts {
		n += c.Count
	}
	return n
}

// HasMissing reports whether any column has an absent cell.
func (m MissingReport) HasMissing() bool { return m.Total() > 0 }

// Count returns the missing count for a column.
func (m MissingReport) Count(column string) (int, bool) {
	for _, c := range m.Counts {
		if c.Column == column {
			return c.Count, true
		}
	}
	return 0, false
}

// MissingValues counts absent cells per column.
func MissingValues(ds *dataset.Dataset) MissingReport {
	rep := MissingReport{Rows: ds.NumRows(), Counts: make([]MissingCount, ds.NumCols())}
	for i := 0; i < ds.NumCols(); i++ {
		c := ds.ColumnAt(i)
		rep.Counts[i] = MissingCount{Column: c.Name(), Count: c.MissingCount()}
	}
	return rep
}

// DescribeStats names the statistics of a describe table, in display order.
var DescribeStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// ColumnStats holds descriptive statistics for one numeric column.
type ColumnStats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// Values returns the statistics in DescribeStats order.
func (s ColumnStats) Values() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max}
}

// DescribeTable holds statistics for every numeric column, in dataset order.
type DescribeTable struct {
	Columns []ColumnStats
}

// Stats returns the statistics of a column.
func (t DescribeTable) Stats(column string) (ColumnStats, bool) {
	for _, s := range t.Columns {
		if s.Column == column {
			return s, true
		}
	}
	return ColumnStats{}, false
}

// Describe computes descriptive statistics over the numeric columns. Non-numeric
// columns are left out.
func Describe(ds *dataset.Dataset) DescribeTable {
	var t DescribeTable
	for i := 0; i < ds.NumCols(); i++ {
		c := ds.ColumnAt(i)
		if !c.IsNumeric() {
			continue
		}
		t.Columns = append(t.Columns, describeColumn(c.Name(), c.Present()))
	}
	return t
}

func describeColumn(name string, vals []float64) ColumnStats {
	s := ColumnStats{Column: name, Count: len(vals)}
	nan := math.NaN()
	if len(vals) == 0 {
		s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(vals, nil)
	if len(vals) < 2 {
		s.Std = nan
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Q50 = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

// quantile interpolates linearly between the closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
