package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/dataloom/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// At returns the correlation between two named columns.
func (m CorrMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// TopPairs returns up to n off-diagonal pairs ordered by |r| descending.
func (m CorrMatrix) TopPairs(n int) []PairCorr {
	var pairs []PairCorr
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if n >= 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// Correlate computes pairwise Pearson correlations over rows where both values are
// present. Self-pairs are 1; pairs whose correlation is undefined (zero variance or
// fewer than two shared rows) are 0.
func Correlate(p NumericProjection) (CorrMatrix, error) {
	if p.Len() < 2 {
		return CorrMatrix{}, &dataset.InsufficientDataError{Reason: "correlation needs at least 2 numeric columns"}
	}
	for _, c := range p.Columns {
		if c.Len()-c.MissingCount() < 2 {
			return CorrMatrix{}, &dataset.InsufficientDataError{Column: c.Name(), Reason: "fewer than 2 non-missing values"}
		}
	}

	n := p.Len()
	cols := make([][]float64, n)
	for i, c := range p.Columns {
		cols[i] = c.Floats()
	}
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r := pearson(cols[a], cols[b])
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return CorrMatrix{Columns: p.Names(), Values: mat}, nil
}

// pearson correlates the rows where both x and y are present.
func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
