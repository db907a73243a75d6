package report

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/dataloom/internal/analysis"
	"github.com/KaramelBytes/dataloom/internal/dataset"
	"github.com/KaramelBytes/dataloom/internal/render"
)

// Alert thresholds.
const (
	HighCorrelation = 0.9
	MissingPercent  = 5.0
	ZerosPercent    = 10.0
)

// AlertKind classifies a data-quality alert.
type AlertKind string

const (
	AlertHighCorrelation AlertKind = "high_correlation"
	AlertMissing         AlertKind = "missing"
	AlertZeros           AlertKind = "zeros"
	AlertConstant        AlertKind = "constant"
)

// Alert flags one data-quality issue.
type Alert struct {
	Kind    AlertKind
	Column  string
	Message string
}

// Profile is the automated report of a whole dataset.
type Profile struct {
	ID        string
	Title     string
	Generated time.Time

	Dataset          string
	Rows             int
	Cols             int
	MissingCells     int
	MissingPct       float64
	Duplicates       int
	NumericCount     int
	CategoricalCount int

	Variables    []analysis.ColumnProfile
	Correlations []analysis.PairCorr
	Alerts       []Alert
	Head         analysis.Frame
	Notes        []string

	// Heatmap is the PNG-encoded correlation heatmap, nil when there is no
	// correlation matrix.
	Heatmap []byte
}

type options struct {
	title     string
	headRows  int
	topValues int
	topPairs  int
	threshold float64
	now       func() time.Time
	heatmapW  vg.Length
	heatmapH  vg.Length
	noHeatmap bool
}

// Option configures Build.
type Option func(*options)

// WithTitle sets the report title.
func WithTitle(title string) Option { return func(o *options) { o.title = title } }

// WithHeadRows sets how many leading rows the sample section shows.
func WithHeadRows(n int) Option { return func(o *options) { o.headRows = n } }

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithoutHeatmap skips rendering the embedded heatmap.
func WithoutHeatmap() Option { return func(o *options) { o.noHeatmap = true } }

// Build profiles every column of ds and collects alerts, correlations and a head sample.
func Build(ds *dataset.Dataset, opts ...Option) (*Profile, error) {
	if ds == nil {
		return nil, errors.New("report: nil dataset")
	}
	o := options{
		title:     "Profiling Report",
		headRows:  10,
		topValues: 5,
		topPairs:  10,
		threshold: analysis.DefaultOutlierThreshold,
		now:       time.Now,
		heatmapW:  12 * vg.Inch,
		heatmapH:  8 * vg.Inch,
	}
	for _, fn := range opts {
		fn(&o)
	}

	p := &Profile{
		ID:         uuid.NewString(),
		Title:      o.title,
		Generated:  o.now().UTC(),
		Dataset:    ds.Name(),
		Rows:       ds.NumRows(),
		Cols:       ds.NumCols(),
		Duplicates: analysis.DuplicateRows(ds),
	}
	p.MissingCells = analysis.MissingValues(ds).Total()
	if cells := p.Rows * p.Cols; cells > 0 {
		p.MissingPct = 100 * float64(p.MissingCells) / float64(cells)
	}

	for i := 0; i < ds.NumCols(); i++ {
		c := ds.ColumnAt(i)
		cp := analysis.ProfileColumn(c, o.topValues, o.threshold)
		if c.IsNumeric() {
			p.NumericCount++
		} else {
			p.CategoricalCount++
		}
		p.Variables = append(p.Variables, cp)
		p.Alerts = append(p.Alerts, columnAlerts(cp, p.Rows)...)
	}

	if p.Rows > 0 {
		head, err := analysis.Head(ds, o.headRows)
		if err != nil {
			return nil, fmt.Errorf("report head: %w", err)
		}
		p.Head = head
	}

	if err := p.correlate(ds, o); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) correlate(ds *dataset.Dataset, o options) error {
	proj, err := analysis.ProjectNumeric(ds)
	if err == nil {
		var m analysis.CorrMatrix
		if m, err = analysis.Correlate(proj); err == nil {
			p.Correlations = m.TopPairs(o.topPairs)
			for _, pair := range m.TopPairs(-1) {
				if math.Abs(pair.R) >= HighCorrelation {
					p.Alerts = append(p.Alerts, Alert{
						Kind:    AlertHighCorrelation,
						Column:  pair.A,
						Message: fmt.Sprintf("%s is highly correlated with %s (r=%.2f)", pair.A, pair.B, pair.R),
					})
				}
			}
			if o.noHeatmap {
				return nil
			}
			plt, err := render.Heatmap(m)
			if err != nil {
				return fmt.Errorf("report heatmap: %w", err)
			}
			if p.Heatmap, err = render.PNG(plt, o.heatmapW, o.heatmapH); err != nil {
				return fmt.Errorf("report heatmap: %w", err)
			}
			return nil
		}
	}
	var nn *dataset.NoNumericColumnsError
	var ide *dataset.InsufficientDataError
	if errors.As(err, &nn) || errors.As(err, &ide) {
		p.Notes = append(p.Notes, "Correlations skipped: "+err.Error())
		return nil
	}
	return fmt.Errorf("report correlations: %w", err)
}

func columnAlerts(c analysis.ColumnProfile, rows int) []Alert {
	var out []Alert
	if c.NonNull > 0 && c.Distinct == 1 {
		out = append(out, Alert{Kind: AlertConstant, Column: c.Name, Message: fmt.Sprintf("%s has a constant value", c.Name)})
	}
	if rows == 0 {
		return out
	}
	if pct := 100 * float64(c.Missing) / float64(rows); pct > MissingPercent {
		out = append(out, Alert{Kind: AlertMissing, Column: c.Name, Message: fmt.Sprintf("%s has %d (%.1f%%) missing values", c.Name, c.Missing, pct)})
	}
	if pct := 100 * float64(c.Zeros) / float64(rows); c.Kind == dataset.KindNumeric && pct > ZerosPercent {
		out = append(out, Alert{Kind: AlertZeros, Column: c.Name, Message: fmt.Sprintf("%s has %d (%.1f%%) zeros", c.Name, c.Zeros, pct)})
	}
	return out
}

// Filename returns the download name of the report, e.g. "diabetes_report.html".
func (p *Profile) Filename(ext string) string {
	base := filepath.Base(p.Dataset)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "dataset"
	}
	return base + "_report." + ext
}
