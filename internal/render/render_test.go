package render

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataloom/internal/analysis"
	"github.com/KaramelBytes/dataloom/internal/dataset"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("diabetes.csv",
		[]string{"Pregnancies", "Glucose", "BMI", "Outcome", "Group"},
		[][]string{
			{"6", "148", "33.6", "1", "a"},
			{"1", "85", "26.6", "0", "b"},
			{"8", "183", "23.3", "1", "a"},
			{"1", "89", "", "0", "c"},
			{"0", "137", "43.1", "1", "a"},
		})
	require.NoError(t, err)
	return ds
}

func TestChartsEncodePNG(t *testing.T) {
	ds := fixture(t)
	cases := []struct{ kind, x, y, hue string }{
		{"scatter", "Glucose", "BMI", "Outcome"},
		{"scatter", "Group", "Glucose", ""},
		{"line", "Pregnancies", "Glucose", ""},
		{"bar", "Pregnancies", "BMI", ""},
		{"heatmap", "", "", ""},
	}
	for _, c := range cases {
		t.Run(c.kind+"_"+c.x, func(t *testing.T) {
			p, err := Chart(ds, c.kind, c.x, c.y, c.hue)
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NoError(t, WritePNG(&buf, p, DefaultWidth, DefaultHeight))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestChartTitles(t *testing.T) {
	ds := fixture(t)
	p, err := Chart(ds, "scatter", "Glucose", "BMI", "Outcome")
	require.NoError(t, err)
	assert.Equal(t, "Glucose vs BMI", p.Title.Text)
	assert.Equal(t, "Glucose", p.X.Label.Text)

	p, err = Chart(ds, "heatmap", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Correlation Matrix", p.Title.Text)
}

func TestChartErrors(t *testing.T) {
	ds := fixture(t)
	_, err := Chart(ds, "pie", "Glucose", "BMI", "")
	var ipe *dataset.InvalidParameterError
	assert.True(t, errors.As(err, &ipe))

	_, err = Chart(ds, "line", "Group", "BMI", "")
	var tme *dataset.TypeMismatchError
	assert.True(t, errors.As(err, &tme))

	_, err = Chart(ds, "scatter", "Insulin", "BMI", "")
	var cnf *dataset.ColumnNotFoundError
	assert.True(t, errors.As(err, &cnf))
}

func TestSavePNG(t *testing.T) {
	p, err := Chart(fixture(t), "line", "Glucose", "BMI", "")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "out", "line.png")
	require.NoError(t, SavePNG(p, DefaultWidth, DefaultHeight, path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestCorrGridFlipsRows(t *testing.T) {
	g := corrGrid{m: analysis.CorrMatrix{
		Columns: []string{"a", "b"},
		Values:  [][]float64{{1, 0.5}, {0.5, 1}},
	}}
	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, 0.5, g.Z(0, 0), "bottom-left is the last matrix row")
	assert.Equal(t, 1.0, g.Z(0, 1))
}

func TestSortLevels(t *testing.T) {
	l := []string{"10", "2", "1"}
	sortLevels(l)
	assert.Equal(t, []string{"1", "2", "10"}, l)
	l = []string{"b", "10", "a"}
	sortLevels(l)
	assert.Equal(t, []string{"10", "a", "b"}, l)
}

func TestTables(t *testing.T) {
	ds := fixture(t)
	head, err := analysis.Head(ds, 2)
	require.NoError(t, err)

	out := Render(FrameTable(head), FormatTable)
	assert.Contains(t, out, "Glucose")
	assert.Contains(t, out, "148")
	assert.NotContains(t, out, "183")

	md := Render(MissingTable(analysis.MissingValues(ds)), FormatMarkdown)
	assert.Contains(t, md, "| BMI | 1 |")

	csv := Render(DescribeTable(analysis.Describe(ds)), FormatCSV)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 1+len(analysis.DescribeStats))
	assert.Equal(t, ",Pregnancies,Glucose,BMI,Outcome", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "count,5.000000,5.000000,4.000000,5.000000"), lines[1])

	proj, err := analysis.ProjectNumeric(ds)
	require.NoError(t, err)
	m, err := analysis.Correlate(proj)
	require.NoError(t, err)
	html := Render(CorrTable(m), FormatHTML)
	assert.Contains(t, html, "<table")
	assert.Contains(t, html, "1.00")

	pairs := Render(PairsTable(m.TopPairs(3)), FormatTable)
	assert.Contains(t, pairs, "Top Correlations")
}

func TestTableKeepsColumnCase(t *testing.T) {
	ds := fixture(t)
	head, err := analysis.Head(ds, 1)
	require.NoError(t, err)
	out := Render(FrameTable(head), FormatTable)
	assert.Contains(t, out, "Pregnancies")
	assert.NotContains(t, out, "PREGNANCIES")

	miss := Render(MissingTable(analysis.MissingValues(ds)), FormatTable)
	assert.Contains(t, miss, "BMI")
	assert.Contains(t, miss, "Total")
	assert.NotContains(t, miss, "TOTAL")
}

func TestFrameTableMissingCell(t *testing.T) {
	ds := fixture(t)
	head, err := analysis.Head(ds, 4)
	require.NoError(t, err)
	assert.Contains(t, Render(FrameTable(head), FormatCSV), "3,1,89,NaN,0,c")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MD")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1.500000", FormatFloat(1.5))
	assert.Equal(t, "NaN", FormatFloat(math.NaN()))
}
