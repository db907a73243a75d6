package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/KaramelBytes/dataloom/internal/dataset"
	"github.com/KaramelBytes/dataloom/internal/render"
)

var funcs = template.FuncMap{
	"num": func(v float64) string {
		if math.IsNaN(v) {
			return "NaN"
		}
		return fmt.Sprintf("%.4g", v)
	},
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"cell": func(s string) string {
		if s == "" {
			return "NaN"
		}
		return s
	},
	"numeric": func(k dataset.Kind) bool { return k == dataset.KindNumeric },
	"ts":      func(t time.Time) string { return t.Format(time.RFC3339) },
}

var htmlTmpl = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Dataset}}</title>
<style>
body{font-family:sans-serif;margin:2em;color:#222}
table{border-collapse:collapse;margin:1em 0}
th,td{border:1px solid #ccc;padding:4px 8px;text-align:right}
th:first-child,td:first-child{text-align:left}
.alert{color:#a40000}
.meta{color:#666;font-size:0.9em}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Report {{.ID}} generated {{ts .Generated}}</p>

<h2>Overview</h2>
<table>
<tr><th>Dataset</th><td>{{.Dataset}}</td></tr>
<tr><th>Rows</th><td>{{.Rows}}</td></tr>
<tr><th>Variables</th><td>{{.Cols}} ({{.NumericCount}} numeric, {{.CategoricalCount}} categorical)</td></tr>
<tr><th>Missing cells</th><td>{{.MissingCells}} ({{pct .MissingPct}})</td></tr>
<tr><th>Duplicate rows</th><td>{{.Duplicates}}</td></tr>
</table>

{{if .Alerts}}<h2>Alerts</h2>
<ul>{{range .Alerts}}
<li class="alert">[{{.Kind}}] {{.Message}}</li>{{end}}
</ul>
{{end}}
<h2>Variables</h2>
{{range .Variables}}<h3>{{.Name}} <small>({{.Kind}})</small></h3>
<table>
<tr><th>Distinct</th><td>{{.Distinct}}</td></tr>
<tr><th>Missing</th><td>{{.Missing}}</td></tr>
{{if numeric .Kind}}<tr><th>Mean</th><td>{{num .Stats.Mean}}</td></tr>
<tr><th>Std</th><td>{{num .Stats.Std}}</td></tr>
<tr><th>Min</th><td>{{num .Stats.Min}}</td></tr>
<tr><th>Median</th><td>{{num .Stats.Q50}}</td></tr>
<tr><th>Max</th><td>{{num .Stats.Max}}</td></tr>
<tr><th>Zeros</th><td>{{.Zeros}}</td></tr>
<tr><th>Outliers (|z| &gt; {{num .OutlierThreshold}})</th><td>{{.OutliersCount}}</td></tr>
{{else}}{{range .TopValues}}<tr><th>{{.Value}}</th><td>{{.Count}}</td></tr>
{{end}}{{end}}</table>
{{end}}
{{if .Correlations}}<h2>Correlations</h2>
<table>
<tr><th>A</th><th>B</th><th>r</th></tr>
{{range .Correlations}}<tr><td>{{.A}}</td><td>{{.B}}</td><td>{{printf "%.3f" .R}}</td></tr>
{{end}}</table>
{{end}}{{with .HeatmapURI}}<img alt="Correlation Matrix" src="{{.}}">
{{end}}{{range .Notes}}<p class="meta">{{.}}</p>
{{end}}
{{if .Head.Rows}}<h2>Sample</h2>
<table>
<tr><th></th>{{range .Head.Columns}}<th>{{.}}</th>{{end}}</tr>
{{range $i, $row := .Head.Rows}}<tr><td>{{index $.Head.Index $i}}</td>{{range $row}}<td>{{cell .}}</td>{{end}}</tr>
{{end}}</table>
{{end}}</body>
</html>
`))

type htmlView struct {
	*Profile
	HeatmapURI template.URL
}

// HTML renders the profile as a standalone HTML page with the heatmap embedded.
func (p *Profile) HTML() ([]byte, error) {
	v := htmlView{Profile: p}
	if len(p.Heatmap) > 0 {
		v.HeatmapURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(p.Heatmap))
	}
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}

// Markdown renders a compact text report.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", p.Title))
	b.WriteString(fmt.Sprintf("Report: %s (generated %s)\n\n", p.ID, p.Generated.Format(time.RFC3339)))

	b.WriteString("[DATASET SUMMARY]\n")
	b.WriteString(fmt.Sprintf("File: %s\n", p.Dataset))
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d (%d numeric, %d categorical)\n", p.Cols, p.NumericCount, p.CategoricalCount))
	b.WriteString(fmt.Sprintf("Missing cells: %d (%.1f%%)\n", p.MissingCells, p.MissingPct))
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n\n", p.Duplicates))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Variables {
		missPct := 0.0
		if p.Rows > 0 {
			missPct = 100 * float64(c.Missing) / float64(p.Rows)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, distinct %d)", c.Name, c.Kind, c.NonNull, missPct, c.Distinct))
		if c.Kind == dataset.KindNumeric {
			if c.Stats.Count > 0 {
				b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, std %s", c.Stats.Min, c.Stats.Max, c.Stats.Mean, render.FormatFloat(c.Stats.Std)))
			}
			if c.Zeros > 0 {
				b.WriteString(fmt.Sprintf("; zeros: %d", c.Zeros))
			}
			if c.OutliersCount > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f (max |z|≈%.2f)", c.OutliersCount, c.OutlierThreshold, c.OutliersMaxAbsZ))
			}
		} else if len(c.TopValues) > 0 {
			b.WriteString(": top ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
		}
		b.WriteString("\n")
	}

	if len(p.Correlations) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, pair := range p.Correlations {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pair.A, pair.B, pair.R))
		}
	}

	if len(p.Alerts) > 0 {
		b.WriteString("\n[ALERTS]\n")
		for _, a := range p.Alerts {
			b.WriteString(fmt.Sprintf("- %s: %s\n", a.Kind, a.Message))
		}
	}

	if len(p.Head.Rows) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString(render.Render(render.FrameTable(p.Head), render.FormatMarkdown))
		b.WriteString("\n")
	}

	if len(p.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range p.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
