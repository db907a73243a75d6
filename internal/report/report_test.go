package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataloom/internal/dataset"
)

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("data/diabetes.csv",
		[]string{"Pregnancies", "Glucose", "Glucose2", "Insulin", "Site", "Const"},
		[][]string{
			{"6", "148", "296", "0", "north", "x"},
			{"1", "85", "170", "0", "south", "x"},
			{"8", "183", "366", "94", "north", "x"},
			{"1", "89", "178", "168", "north", "x"},
			{"0", "137", "274", "", "east", "x"},
			{"6", "148", "296", "0", "north", "x"},
		})
	require.NoError(t, err)
	return ds
}

var fixed = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestBuildOverviewAndAlerts(t *testing.T) {
	p, err := Build(fixture(t), WithClock(func() time.Time { return fixed }), WithoutHeatmap())
	require.NoError(t, err)

	_, err = uuid.Parse(p.ID)
	assert.NoError(t, err)
	assert.Equal(t, fixed, p.Generated)
	assert.Equal(t, 6, p.Rows)
	assert.Equal(t, 6, p.Cols)
	assert.Equal(t, 1, p.MissingCells)
	assert.Equal(t, 1, p.Duplicates)
	assert.Equal(t, 4, p.NumericCount)
	assert.Equal(t, 2, p.CategoricalCount)
	assert.Len(t, p.Variables, 6)
	assert.Equal(t, 6, p.Head.Len())

	kinds := map[AlertKind][]string{}
	for _, a := range p.Alerts {
		kinds[a.Kind] = append(kinds[a.Kind], a.Column)
	}
	assert.Equal(t, []string{"Const"}, kinds[AlertConstant])
	assert.Equal(t, []string{"Insulin"}, kinds[AlertMissing])
	assert.ElementsMatch(t, []string{"Pregnancies", "Insulin"}, kinds[AlertZeros])
	assert.Contains(t, kinds[AlertHighCorrelation], "Glucose")

	require.NotEmpty(t, p.Correlations)
	assert.Equal(t, "Glucose", p.Correlations[0].A)
	assert.Equal(t, "Glucose2", p.Correlations[0].B)
	assert.InDelta(t, 1.0, p.Correlations[0].R, 1e-9)
	assert.Nil(t, p.Heatmap)
}

func TestBuildEmbedsHeatmap(t *testing.T) {
	p, err := Build(fixture(t))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(p.Heatmap, []byte("\x89PNG")))

	html, err := p.HTML()
	require.NoError(t, err)
	s := string(html)
	assert.Contains(t, s, "data:image/png;base64,")
	assert.Contains(t, s, p.ID)
	assert.Contains(t, s, "<h3>Site <small>(categorical)</small></h3>")
}

func TestBuildWithoutNumericColumns(t *testing.T) {
	ds, err := dataset.New("letters.csv", []string{"a", "b"}, [][]string{{"x", "y"}, {"z", "w"}})
	require.NoError(t, err)
	p, err := Build(ds)
	require.NoError(t, err)
	assert.Empty(t, p.Correlations)
	assert.Nil(t, p.Heatmap)
	require.Len(t, p.Notes, 1)
	assert.True(t, strings.HasPrefix(p.Notes[0], "Correlations skipped"))
}

func TestBuildNilDataset(t *testing.T) {
	_, err := Build(nil)
	assert.Error(t, err)
}

func TestMarkdownSections(t *testing.T) {
	p, err := Build(fixture(t), WithTitle("Diabetes"), WithHeadRows(2), WithoutHeatmap())
	require.NoError(t, err)
	md := p.Markdown()
	for _, section := range []string{"# Diabetes", "[DATASET SUMMARY]", "[SCHEMA]", "[CORRELATIONS]", "[ALERTS]", "[HEAD]"} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "- Site: categorical (non-null 6, missing 0.0%, distinct 3): top north(4), east(1), south(1)")
	assert.Contains(t, md, "Duplicate rows: 1")
	assert.NotContains(t, md, "[NOTES]")
}

func TestHTMLEscapesValues(t *testing.T) {
	ds, err := dataset.New("x.csv", []string{"name", "v"}, [][]string{{"<script>", "1"}, {"b", "2"}})
	require.NoError(t, err)
	p, err := Build(ds, WithoutHeatmap())
	require.NoError(t, err)
	html, err := p.HTML()
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
	assert.Contains(t, string(html), "&lt;script&gt;")
}

func TestFilename(t *testing.T) {
	p := &Profile{Dataset: "data/diabetes.csv"}
	assert.Equal(t, "diabetes_report.html", p.Filename("html"))
	p.Dataset = ""
	assert.Equal(t, "dataset_report.md", p.Filename("md"))
}
