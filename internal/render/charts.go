package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/dataloom/internal/analysis"
	"github.com/KaramelBytes/dataloom/internal/dataset"
	"github.com/KaramelBytes/dataloom/internal/utils"
)

// Default chart size, matching a 10x6 inch figure.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// maxTickLabels caps how many ordinal tick labels an axis shows.
const maxTickLabels = 25

// axis maps one series onto plot coordinates. Numeric series map to their values;
// categorical series map to the ordinal position of their sorted distinct labels.
type axis struct {
	pos    func(i int) (float64, bool)
	levels []string
}

func newAxis(s analysis.Series) axis {
	if s.Kind == dataset.KindNumeric {
		return axis{pos: func(i int) (float64, bool) {
			v := s.Values[i]
			return v, !math.IsNaN(v)
		}}
	}
	seen := map[string]bool{}
	for _, l := range s.Labels {
		if l != "" && !seen[l] {
			seen[l] = true
		}
	}
	levels := make([]string, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	sort.Strings(levels)
	idx := make(map[string]int, len(levels))
	for i, l := range levels {
		idx[l] = i
	}
	return axis{
		levels: levels,
		pos: func(i int) (float64, bool) {
			p, ok := idx[s.Labels[i]]
			return float64(p), ok
		},
	}
}

func (a axis) ticks() plot.Ticker {
	if a.levels == nil {
		return plot.DefaultTicks{}
	}
	return ordinalTicks(a.levels)
}

func ordinalTicks(labels []string) plot.ConstantTicks {
	step := 1
	if len(labels) > maxTickLabels {
		step = (len(labels) + maxTickLabels - 1) / maxTickLabels
	}
	ticks := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i)}
		if i%step == 0 {
			ticks[i].Label = l
		}
	}
	return ticks
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

// Scatter plots Y against X. With a hue series every hue level becomes its own
// coloured series with a legend entry; points with a missing hue are dropped.
func Scatter(cd analysis.ChartData) (*plot.Plot, error) {
	p := newPlot(cd.Title(), cd.X.Name, cd.Y.Name)
	xa, ya := newAxis(cd.X), newAxis(cd.Y)
	p.X.Tick.Marker = xa.ticks()
	p.Y.Tick.Marker = ya.ticks()

	groups := map[string]plotter.XYs{}
	var order []string
	for i := 0; i < cd.Len(); i++ {
		x, okx := xa.pos(i)
		y, oky := ya.pos(i)
		if !okx || !oky {
			continue
		}
		key := ""
		if cd.Hue != nil {
			if key = cd.Hue.Labels[i]; key == "" {
				continue
			}
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], plotter.XY{X: x, Y: y})
	}
	if len(order) == 0 {
		return nil, &dataset.InsufficientDataError{Column: cd.X.Name, Reason: "no complete (x, y) points to plot"}
	}
	sortLevels(order)

	for i, key := range order {
		s, err := plotter.NewScatter(groups[key])
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", key, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		if cd.Hue != nil {
			p.Legend.Add(fmt.Sprintf("%s=%s", cd.Hue.Name, key), s)
		}
	}
	p.Legend.Top = true
	return p, nil
}

// sortLevels orders hue levels numerically when every level is a number.
func sortLevels(levels []string) {
	nums := make(map[string]float64, len(levels))
	for _, l := range levels {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			sort.Strings(levels)
			return
		}
		nums[l] = v
	}
	sort.Slice(levels, func(a, b int) bool { return nums[levels[a]] < nums[levels[b]] })
}

// Line draws Y against X following the prepared row order. Rows with a missing
// x or y are skipped.
func Line(cd analysis.ChartData) (*plot.Plot, error) {
	pts := make(plotter.XYs, 0, cd.Len())
	for i := 0; i < cd.Len(); i++ {
		x, y := cd.X.Values[i], cd.Y.Values[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	if len(pts) == 0 {
		return nil, &dataset.InsufficientDataError{Column: cd.X.Name, Reason: "no complete (x, y) points to plot"}
	}
	p := newPlot(cd.Title(), cd.X.Name, cd.Y.Name)
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("line: %w", err)
	}
	l.LineStyle.Width = vg.Points(1.5)
	l.LineStyle.Color = plotutil.Color(0)
	p.Add(l)
	return p, nil
}

// Bar draws one bar per row in the prepared order, labelled with its X value.
func Bar(cd analysis.ChartData) (*plot.Plot, error) {
	var vals plotter.Values
	var labels []string
	for i := 0; i < cd.Len(); i++ {
		if math.IsNaN(cd.X.Values[i]) || math.IsNaN(cd.Y.Values[i]) {
			continue
		}
		vals = append(vals, cd.Y.Values[i])
		labels = append(labels, cd.X.Labels[i])
	}
	if len(vals) == 0 {
		return nil, &dataset.InsufficientDataError{Column: cd.Y.Name, Reason: "no complete (x, y) points to plot"}
	}
	p := newPlot(cd.Title(), cd.X.Name, cd.Y.Name)
	bars, err := plotter.NewBarChart(vals, vg.Points(math.Max(1, 500/float64(len(vals)))))
	if err != nil {
		return nil, fmt.Errorf("bar: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.X.Tick.Marker = ordinalTicks(labels)
	return p, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row 0 of the matrix
// is drawn at the top.
type corrGrid struct {
	m analysis.CorrMatrix
}

func (g corrGrid) Dims() (c, r int)   { n := len(g.m.Columns); return n, n }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
func (g corrGrid) Z(c, r int) float64 { return g.m.Values[len(g.m.Columns)-1-r][c] }

// Heatmap draws the correlation matrix on a diverging blue-red palette fixed to
// [-1, 1], every cell annotated with its coefficient.
func Heatmap(m analysis.CorrMatrix) (*plot.Plot, error) {
	n := len(m.Columns)
	if n == 0 {
		return nil, &dataset.InsufficientDataError{Reason: "empty correlation matrix"}
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	g := corrGrid{m: m}
	h := plotter.NewHeatMap(g, cm.Palette(255))
	h.Min, h.Max = -1, 1

	p := plot.New()
	p.Title.Text = "Correlation Matrix"
	p.Add(h)

	var annot plotter.XYLabels
	for c := 0; c < n; c++ {
		for r := 0; r < n; r++ {
			annot.XYs = append(annot.XYs, plotter.XY{X: g.X(c), Y: g.Y(r)})
			annot.Labels = append(annot.Labels, fmt.Sprintf("%.2f", g.Z(c, r)))
		}
	}
	labels, err := plotter.NewLabels(annot)
	if err != nil {
		return nil, fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	rows := make([]string, n)
	for i, c := range m.Columns {
		rows[n-1-i] = c
	}
	p.X.Tick.Marker = ordinalTicks(m.Columns)
	p.Y.Tick.Marker = ordinalTicks(rows)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Min, p.X.Max = -0.5, float64(n)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5
	return p, nil
}

// Chart prepares and draws the chart of the given kind. Heatmap ignores x, y and hue.
func Chart(ds *dataset.Dataset, kind, x, y, hue string) (*plot.Plot, error) {
	if kind == "heatmap" {
		proj, err := analysis.ProjectNumeric(ds)
		if err != nil {
			return nil, err
		}
		m, err := analysis.Correlate(proj)
		if err != nil {
			return nil, err
		}
		return Heatmap(m)
	}
	k, err := analysis.ParseChartKind(kind)
	if err != nil {
		return nil, err
	}
	cd, err := analysis.PrepareChart(ds, x, y, k, hue)
	if err != nil {
		return nil, err
	}
	switch k {
	case analysis.ChartLine:
		return Line(cd)
	case analysis.ChartBar:
		return Bar(cd)
	default:
		return Scatter(cd)
	}
}

// WritePNG encodes p as a PNG image of the given size.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// PNG returns p encoded as PNG bytes.
func PNG(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, p, width, height); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes p to path atomically.
func SavePNG(p *plot.Plot, width, height vg.Length, path string) error {
	b, err := PNG(p, width, height)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}
