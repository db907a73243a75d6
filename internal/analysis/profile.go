package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/dataloom/internal/dataset"
)

// CategoryCount is one value of a categorical column with its frequency.
type CategoryCount struct {
	Value string
	Count int
}

// ColumnProfile captures per-column facts used by the profiling report.
type ColumnProfile struct {
	Name     string
	Kind     dataset.Kind
	NonNull  int
	Missing  int
	Distinct int
	// Numeric columns
	Stats            ColumnStats
	Zeros            int
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical columns
	TopValues []CategoryCount
}

// DefaultOutlierThreshold is the robust |z| limit used when none is given.
const DefaultOutlierThreshold = 3.5

// ProfileColumn summarizes one column. Outliers are counted with the robust
// (median/MAD) z-score against threshold; thresholds <= 0 use the default.
func ProfileColumn(c *dataset.Column, topN int, threshold float64) ColumnProfile {
	p := ColumnProfile{
		Name:    c.Name(),
		Kind:    c.Kind(),
		Missing: c.MissingCount(),
		NonNull: c.Len() - c.MissingCount(),
	}
	counts := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			counts[c.Value(i)]++
		}
	}
	p.Distinct = len(counts)
	if c.IsNumeric() {
		vals := c.Present()
		p.Stats = describeColumn(c.Name(), vals)
		for _, v := range vals {
			if v == 0 {
				p.Zeros++
			}
		}
		if threshold <= 0 {
			threshold = DefaultOutlierThreshold
		}
		p.OutlierThreshold = threshold
		if len(vals) >= 8 {
			median, mad := medianMAD(vals)
			if mad > 0 {
				for _, v := range vals {
					az := math.Abs(0.6745 * (v - median) / mad)
					if az > threshold {
						p.OutliersCount++
					}
					if az > p.OutliersMaxAbsZ {
						p.OutliersMaxAbsZ = az
					}
				}
			}
		}
		return p
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if topN > 0 && len(tops) > topN {
		tops = tops[:topN]
	}
	p.TopValues = tops
	return p
}

// DuplicateRows counts rows identical to an earlier row.
func DuplicateRows(ds *dataset.Dataset) int {
	seen := make(map[string]struct{}, ds.NumRows())
	var dup int
	for i := 0; i < ds.NumRows(); i++ {
		key := rowKey(ds.Row(i))
		if _, ok := seen[key]; ok {
			dup++
			continue
		}
		seen[key] = struct{}{}
	}
	return dup
}

func rowKey(row []string) string {
	n := 0
	for _, v := range row {
		n += len(v) + 1
	}
	b := make([]byte, 0, n)
	for _, v := range row {
		b = append(b, v...)
		b = append(b, 0x1f)
	}
	return string(b)
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}
