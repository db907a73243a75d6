package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/dataloom/internal/analysis"
	"github.com/KaramelBytes/dataloom/internal/dataset"
)

// Format selects how a table is rendered.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
)

// ParseFormat resolves a table format name; "" means FormatTable.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatMarkdown, FormatHTML, FormatCSV:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", &dataset.InvalidParameterError{Param: "format", Value: s, Reason: "use table, markdown, html or csv"}
}

// Render renders t in the given format.
func Render(t table.Writer, f Format) string {
	switch f {
	case FormatMarkdown:
		return t.RenderMarkdown()
	case FormatHTML:
		return t.RenderHTML()
	case FormatCSV:
		return t.RenderCSV()
	default:
		return t.Render()
	}
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	// column names are references; print them as given
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.Style().Title.Format = text.FormatDefault
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

// FormatFloat prints a statistic with pandas-like precision; NaN prints as "NaN".
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// FrameTable lays out a frame with its row index as the first column. Missing
// cells print as NaN.
func FrameTable(f analysis.Frame) table.Writer {
	t := newTable("")
	header := table.Row{""}
	for _, c := range f.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)
	for i, row := range f.Rows {
		r := table.Row{f.Index[i]}
		for _, cell := range row {
			if cell == "" {
				cell = "NaN"
			}
			r = append(r, cell)
		}
		t.AppendRow(r)
	}
	cfgs := []table.ColumnConfig{{Number: 1, Align: text.AlignRight}}
	for i, k := range f.Kinds {
		if k == dataset.KindNumeric {
			cfgs = append(cfgs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
		}
	}
	t.SetColumnConfigs(cfgs)
	return t
}

// MissingTable lists the missing count of every column.
func MissingTable(m analysis.MissingReport) table.Writer {
	t := newTable("Missing Values")
	t.AppendHeader(table.Row{"Column", "Missing"})
	for _, c := range m.Counts {
		t.AppendRow(table.Row{c.Column, c.Count})
	}
	t.AppendFooter(table.Row{"Total", m.Total()})
	return t
}

// DescribeTable lays out descriptive statistics with one column per numeric
// variable and one row per statistic.
func DescribeTable(d analysis.DescribeTable) table.Writer {
	t := newTable("")
	header := table.Row{""}
	for _, c := range d.Columns {
		header = append(header, c.Column)
	}
	t.AppendHeader(header)
	for i, name := range analysis.DescribeStats {
		r := table.Row{name}
		for _, c := range d.Columns {
			r = append(r, FormatFloat(c.Values()[i]))
		}
		t.AppendRow(r)
	}
	return t
}

// CorrTable lays out the full correlation matrix with two-decimal coefficients.
func CorrTable(m analysis.CorrMatrix) table.Writer {
	t := newTable("Correlation Matrix")
	header := table.Row{""}
	for _, c := range m.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)
	for i, c := range m.Columns {
		r := table.Row{c}
		for _, v := range m.Values[i] {
			r = append(r, strconv.FormatFloat(v, 'f', 2, 64))
		}
		t.AppendRow(r)
	}
	return t
}

// PairsTable lists correlation pairs, strongest first.
func PairsTable(pairs []analysis.PairCorr) table.Writer {
	t := newTable("Top Correlations")
	t.AppendHeader(table.Row{"A", "B", "r"})
	for _, p := range pairs {
		t.AppendRow(table.Row{p.A, p.B, strconv.FormatFloat(p.R, 'f', 3, 64)})
	}
	return t
}
