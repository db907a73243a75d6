package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/dataloom/internal/analysis"
	"github.com/KaramelBytes/dataloom/internal/config"
	"github.com/KaramelBytes/dataloom/internal/dataset"
	"github.com/KaramelBytes/dataloom/internal/logger"
	"github.com/KaramelBytes/dataloom/internal/render"
	"github.com/KaramelBytes/dataloom/internal/report"
)

// Page is one view of the dashboard.
type Page string

const (
	PageIntroduction  Page = "Introduction"
	PageVisualization Page = "Visualization"
	PageReport        Page = "Automated Report"
)

// Pages lists the pages in navigation order.
var Pages = []Page{PageIntroduction, PageVisualization, PageReport}

// ParsePage resolves a page name case-insensitively. Short forms "intro",
// "visualize" and "report" are accepted.
func ParsePage(s string) (Page, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "introduction", "intro":
		return PageIntroduction, nil
	case "visualization", "visualize", "viz":
		return PageVisualization, nil
	case "automated report", "report":
		return PageReport, nil
	}
	return "", &dataset.InvalidParameterError{Param: "page", Value: s, Reason: "use Introduction, Visualization or Automated Report"}
}

// Status messages of the missing-value check.
const (
	StatusNoMissing  = "No missing values found"
	StatusHasMissing = "You have missing values"
)

// Dashboard composes the pages from a lazily loaded dataset.
type Dashboard struct {
	loader *dataset.Loader
	cfg    config.Global
	log    *logger.Logger
	fs     afero.Fs
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithFs sets the filesystem used for the header image.
func WithFs(fs afero.Fs) Option { return func(d *Dashboard) { d.fs = fs } }

// New builds a dashboard over loader. A nil logger discards output.
func New(loader *dataset.Loader, cfg *config.Global, log *logger.Logger, opts ...Option) *Dashboard {
	if log == nil {
		log = logger.Nop()
	}
	d := &Dashboard{loader: loader, cfg: *cfg, log: log, fs: afero.NewOsFs()}
	for _, fn := range opts {
		fn(d)
	}
	return d
}

// Title returns the configured page title.
func (d *Dashboard) Title() string { return d.cfg.PageTitle }

// Dataset returns the memoized dataset.
func (d *Dashboard) Dataset() (*dataset.Dataset, error) {
	ds, err := d.loader.Load()
	if err != nil {
		d.log.WithError(err).WithField("path", d.loader.Path()).Error("dataset load failed")
		return nil, err
	}
	return ds, nil
}

// RowBounds returns the allowed range and default of the preview row count.
func (d *Dashboard) RowBounds() (lo, hi, def int) {
	return d.cfg.RowsMin, d.cfg.RowsMax, d.cfg.RowsDefault
}

// IntroView is the content of the Introduction page.
type IntroView struct {
	Rows     int
	Head     analysis.Frame
	Missing  analysis.MissingReport
	Status   string
	Describe *analysis.DescribeTable
}

// Intro builds the Introduction page for a preview of rows rows. rows == 0
// selects the default; other values outside the configured bounds are rejected.
func (d *Dashboard) Intro(rows int, describe bool) (IntroView, error) {
	lo, hi, def := d.RowBounds()
	if rows == 0 {
		rows = def
	}
	if rows < lo || rows > hi {
		return IntroView{}, &dataset.InvalidParameterError{
			Param:  "rows",
			Value:  rows,
			Reason: fmt.Sprintf("must be between %d and %d", lo, hi),
		}
	}
	ds, err := d.Dataset()
	if err != nil {
		return IntroView{}, err
	}
	head, err := analysis.Head(ds, rows)
	if err != nil {
		return IntroView{}, err
	}
	v := IntroView{Rows: rows, Head: head, Missing: analysis.MissingValues(ds)}
	v.Status = StatusNoMissing
	if v.Missing.HasMissing() {
		v.Status = StatusHasMissing
	}
	if describe {
		t := analysis.Describe(ds)
		v.Describe = &t
	}
	d.log.WithFields(map[string]interface{}{"rows": rows, "describe": describe}).Debug("intro page built")
	return v, nil
}

// VisualView is the content of the Visualization page.
type VisualView struct {
	Columns []string // numeric columns offered for X and Y
	X, Y    string
	Hue     string // empty when the hue column is absent
	Title   string
}

// Visualize resolves the axis selection. Empty x or y default to the first and
// second numeric column.
func (d *Dashboard) Visualize(x, y string) (VisualView, error) {
	ds, err := d.Dataset()
	if err != nil {
		return VisualView{}, err
	}
	proj, err := analysis.ProjectNumeric(ds)
	if err != nil {
		return VisualView{}, err
	}
	names := proj.Names()
	if len(names) < 2 {
		return VisualView{}, &dataset.InsufficientDataError{Column: names[0], Reason: "visualization needs at least two numeric columns"}
	}
	if x == "" {
		x = names[0]
	}
	if y == "" {
		y = names[1]
	}
	for _, name := range []string{x, y} {
		c, err := ds.Column(name)
		if err != nil {
			return VisualView{}, err
		}
		if !c.IsNumeric() {
			return VisualView{}, &dataset.TypeMismatchError{Column: name, Kind: c.Kind(), Want: dataset.KindNumeric}
		}
	}
	return VisualView{
		Columns: names,
		X:       x,
		Y:       y,
		Hue:     d.hue(ds),
		Title:   fmt.Sprintf("%s vs %s", x, y),
	}, nil
}

func (d *Dashboard) hue(ds *dataset.Dataset) string {
	if d.cfg.HueColumn == "" {
		return ""
	}
	if !ds.Has(d.cfg.HueColumn) {
		d.log.Warnf("hue column %q not in %s, plotting without hue", d.cfg.HueColumn, ds.Name())
		return ""
	}
	return d.cfg.HueColumn
}

// Correlation computes the matrix behind the heatmap.
func (d *Dashboard) Correlation() (analysis.CorrMatrix, error) {
	ds, err := d.Dataset()
	if err != nil {
		return analysis.CorrMatrix{}, err
	}
	proj, err := analysis.ProjectNumeric(ds)
	if err != nil {
		return analysis.CorrMatrix{}, err
	}
	return analysis.Correlate(proj)
}

// Chart draws one chart of the Visualization page. The heatmap ignores x and y.
func (d *Dashboard) Chart(kind, x, y string) (*plot.Plot, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "heatmap" {
		m, err := d.Correlation()
		if err != nil {
			return nil, err
		}
		return render.Heatmap(m)
	}
	v, err := d.Visualize(x, y)
	if err != nil {
		return nil, err
	}
	ds, err := d.Dataset()
	if err != nil {
		return nil, err
	}
	p, err := render.Chart(ds, kind, v.X, v.Y, v.Hue)
	if err != nil {
		return nil, err
	}
	d.log.WithFields(map[string]interface{}{"kind": kind, "x": v.X, "y": v.Y, "hue": v.Hue}).Debug("chart drawn")
	return p, nil
}

// ChartSize returns the configured chart size.
func (d *Dashboard) ChartSize() (w, h vg.Length) {
	return vg.Length(d.cfg.ChartWidthIn) * vg.Inch, vg.Length(d.cfg.ChartHeightIn) * vg.Inch
}

// WriteChart draws a chart and writes it to w as PNG.
func (d *Dashboard) WriteChart(w io.Writer, kind, x, y string) error {
	p, err := d.Chart(kind, x, y)
	if err != nil {
		return err
	}
	width, height := d.ChartSize()
	return render.WritePNG(w, p, width, height)
}

// ReportView is the content of the Automated Report page. Err is set instead
// of Profile when the report engine failed.
type ReportView struct {
	Profile *report.Profile
	Err     error
}

// Message describes the outcome for display.
func (v ReportView) Message() string {
	if v.Err != nil {
		return "Report generation failed: " + v.Err.Error()
	}
	return fmt.Sprintf("Report %s ready (%d variables, %d alerts)", v.Profile.ID, len(v.Profile.Variables), len(v.Profile.Alerts))
}

// Report runs the report engine. Engine failures, panics included, are returned
// in the view rather than as an error so the session can continue.
func (d *Dashboard) Report() (v ReportView) {
	defer func() {
		if r := recover(); r != nil {
			v = ReportView{Err: fmt.Errorf("report engine panic: %v", r)}
			d.log.Errorf("report engine panicked: %v", r)
		}
	}()
	ds, err := d.Dataset()
	if err != nil {
		return ReportView{Err: err}
	}
	p, err := report.Build(ds, report.WithTitle(d.cfg.PageTitle))
	if err != nil {
		d.log.WithError(err).Error("report generation failed")
		return ReportView{Err: err}
	}
	d.log.WithFields(map[string]interface{}{"report": p.ID, "alerts": len(p.Alerts)}).Info("report generated")
	return ReportView{Profile: p}
}

// HeaderImage returns the optional header image. ok is false when none is configured or present.
func (d *Dashboard) HeaderImage() (data []byte, ok bool, err error) {
	if d.cfg.HeaderImage == "" {
		return nil, false, nil
	}
	data, err = afero.ReadFile(d.fs, d.cfg.HeaderImage)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read header image: %w", err)
	}
	return data, true, nil
}
