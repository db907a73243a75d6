package analysis

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/KaramelBytes/dataloom/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareChartScatterKeepsOrder(t *testing.T) {
	ds := mustDataset(t, diabetesHeader, diabetesRows)
	cd, err := PrepareChart(ds, "Glucose", "BMI", ChartScatter, "Outcome")
	require.NoError(t, err)

	require.Equal(t, ds.NumRows(), cd.Len())
	for i := range cd.Index {
		assert.Equal(t, i, cd.Index[i])
	}
	require.NotNil(t, cd.Hue)
	assert.Equal(t, "Outcome", cd.Hue.Name)
	assert.Equal(t, []string{"1", "0", "1", "0", "1", "0", "1", "0"}, cd.Hue.Labels)
	assert.Equal(t, "Glucose vs BMI", cd.Title())
	assert.Equal(t, []string{"Glucose", "BMI", "Outcome"}, cd.Frame().Columns)
}

func TestPrepareChartScatterWithoutHue(t *testing.T) {
	ds := mustDataset(t, diabetesHeader, diabetesRows)
	cd, err := PrepareChart(ds, "Group", "BMI", ChartScatter, "")
	require.NoError(t, err)
	assert.Nil(t, cd.Hue)
	assert.Equal(t, dataset.KindCategorical, cd.X.Kind)
	assert.True(t, math.IsNaN(cd.X.Values[0]))
}

func TestPrepareChartLineSortedAndStable(t *testing.T) {
	ds := mustDataset(t, diabetesHeader, diabetesRows)
	for _, kind := range []ChartKind{ChartLine, ChartBar} {
		t.Run(string(kind), func(t *testing.T) {
			cd, err := PrepareChart(ds, "BloodPressure", "Glucose", kind, "Outcome")
			require.NoError(t, err)
			assert.Nil(t, cd.Hue, "hue applies to scatter only")

			// non-decreasing X, missing X last
			prev := math.Inf(-1)
			for i, v := range cd.X.Values {
				if math.IsNaN(v) {
					assert.Equal(t, cd.Len()-1, i, "missing X must sort last")
					continue
				}
				assert.GreaterOrEqual(t, v, prev)
				prev = v
			}
			// ties (66 at rows 1 and 3) keep source order
			assert.Equal(t, []int{4, 6, 2, 1, 3, 0, 5, 7}, cd.Index)
			assert.Equal(t, "85", cd.Y.Labels[3])
		})
	}
}

func TestPrepareChartIdempotent(t *testing.T) {
	ds := mustDataset(t, diabetesHeader, diabetesRows)
	a, err := PrepareChart(ds, "Pregnancies", "BMI", ChartLine, "")
	require.NoError(t, err)
	b, err := PrepareChart(ds, "Pregnancies", "BMI", ChartLine, "")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
	assert.Equal(t, a.Frame(), b.Frame())
}

func TestPrepareChartColumnNotFound(t *testing.T) {
	ds := mustDataset(t, diabetesHeader, diabetesRows)
	before := ds.Row(0)

	_, err := PrepareChart(ds, "Insulin", "BMI", ChartLine, "")
	var cnf *dataset.ColumnNotFoundError
	require.True(t, errors.As(err, &cnf), "err = %v", err)
	assert.Equal(t, "Insulin", cnf.Column)

	_, err = PrepareChart(ds, "Glucose", "BMI", ChartScatter, "Label")
	require.True(t, errors.As(err, &cnf))
	assert.Equal(t, "Label", cnf.Column)

	assert.Equal(t, before, ds.Row(0))
	assert.Equal(t, diabetesHeader, ds.Columns())
}

func TestPrepareChartTypeMismatch(t *testing.T) {
	ds := mustDataset(t, diabetesHeader, diabetesRows)
	_, err := PrepareChart(ds, "Group", "BMI", ChartBar, "")
	var tme *dataset.TypeMismatchError
	require.True(t, errors.As(err, &tme), "err = %v", err)
	assert.Equal(t, "Group", tme.Column)
	assert.Equal(t, dataset.KindNumeric, tme.Want)
}

func TestParseChartKind(t *testing.T) {
	k, err := ParseChartKind(" Line ")
	require.NoError(t, err)
	assert.Equal(t, ChartLine, k)

	_, err = ParseChartKind("pie")
	var ipe *dataset.InvalidParameterError
	assert.True(t, errors.As(err, &ipe))

	_, err = PrepareChart(mustDataset(t, diabetesHeader, diabetesRows), "BMI", "Glucose", ChartKind("pie"), "")
	assert.True(t, errors.As(err, &ipe))
}
