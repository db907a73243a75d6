package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/KaramelBytes/dataloom/internal/dashboard"
	"github.com/KaramelBytes/dataloom/internal/dataset"
	"github.com/KaramelBytes/dataloom/internal/logger"
	"github.com/KaramelBytes/dataloom/internal/render"
)

type handler struct {
	dash *dashboard.Dashboard
	log  *logger.Logger
}

// StatusFor maps a dashboard error to an HTTP status code.
func StatusFor(err error) int {
	var (
		ipe *dataset.InvalidParameterError
		cnf *dataset.ColumnNotFoundError
		tme *dataset.TypeMismatchError
		nne *dataset.NoNumericColumnsError
		ide *dataset.InsufficientDataError
	)
	switch {
	case errors.As(err, &ipe), errors.As(err, &cnf), errors.As(err, &tme):
		return http.StatusBadRequest
	case errors.As(err, &nne), errors.As(err, &ide):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	h.log.WithError(err).WithFields(map[string]interface{}{
		"path":       r.URL.Path,
		"status":     status,
		"request_id": RequestID(r.Context()),
	}).Warn("request failed")
	respondError(w, status, err.Error())
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<nav>{{range .Nav}}<a href="{{.Href}}">{{.Name}}</a> {{end}}</nav>
{{if .HeaderImage}}<img src="/header-image" width="400" alt="">{{end}}
<h2>{{.Heading}}</h2>
{{.Body}}
</body>
</html>
`))

type navLink struct{ Name, Href string }

type pageData struct {
	Title       string
	Heading     string
	Nav         []navLink
	HeaderImage bool
	Body        template.HTML
}

var navHrefs = map[dashboard.Page]string{
	dashboard.PageIntroduction:  "/intro",
	dashboard.PageVisualization: "/visualize",
	dashboard.PageReport:        "/report",
}

func (h *handler) writePage(w http.ResponseWriter, heading string, body template.HTML) {
	data := pageData{Title: h.dash.Title(), Heading: heading, Body: body}
	for _, p := range dashboard.Pages {
		data.Nav = append(data.Nav, navLink{Name: string(p), Href: navHrefs[p]})
	}
	_, ok, _ := h.dash.HeaderImage()
	data.HeaderImage = ok

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// GET /?page=name redirects to the named page, Introduction by default.
func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	page := dashboard.PageIntroduction
	if s := r.URL.Query().Get("page"); s != "" {
		p, err := dashboard.ParsePage(s)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		page = p
	}
	http.Redirect(w, r, navHrefs[page], http.StatusFound)
}

var introTmpl = template.Must(template.New("intro").Parse(`<h5>Data Preview</h5>
<form method="get" action="/intro">
<input type="range" name="rows" min="{{.Min}}" max="{{.Max}}" value="{{.Rows}}">
<button type="submit">Show {{.Rows}} rows</button>
</form>
{{.Head}}
<h5>Missing Values</h5>
{{.Missing}}
<p>{{.Status}}</p>
<h5>Summary Statistics</h5>
{{if .Describe}}{{.Describe}}{{else}}<a href="/intro?rows={{.Rows}}&amp;describe=1">Show Describe Table</a>{{end}}
`))

// GET /intro?rows=N&describe=1
func (h *handler) intro(w http.ResponseWriter, r *http.Request) {
	rows := 0
	if s := r.URL.Query().Get("rows"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.fail(w, r, &dataset.InvalidParameterError{Param: "rows", Value: s, Reason: "not an integer"})
			return
		}
		rows = n
	}
	describe := r.URL.Query().Get("describe") != ""

	v, err := h.dash.Intro(rows, describe)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lo, hi, _ := h.dash.RowBounds()
	data := struct {
		Min, Max, Rows int
		Head, Missing  template.HTML
		Describe       template.HTML
		Status         string
	}{
		Min:     lo,
		Max:     hi,
		Rows:    v.Rows,
		Head:    template.HTML(render.Render(render.FrameTable(v.Head), render.FormatHTML)),
		Missing: template.HTML(render.Render(render.MissingTable(v.Missing), render.FormatHTML)),
		Status:  v.Status,
	}
	if v.Describe != nil {
		data.Describe = template.HTML(render.Render(render.DescribeTable(*v.Describe), render.FormatHTML))
	}
	h.writeSection(w, "01 Introduction", introTmpl, data)
}

var visualTmpl = template.Must(template.New("visualize").Parse(`<form method="get" action="/visualize">
<select name="x">{{range .Columns}}<option{{if eq . $.X}} selected{{end}}>{{.}}</option>{{end}}</select>
<select name="y">{{range .Columns}}<option{{if eq . $.Y}} selected{{end}}>{{.}}</option>{{end}}</select>
<button type="submit">Plot</button>
</form>
<h3>Scatter Plot</h3>
<img alt="{{.Title}}" src="/charts/scatter.png?{{.Query}}">
<h3>Line Chart</h3>
<img alt="{{.Title}}" src="/charts/line.png?{{.Query}}">
<h3>Bar Chart</h3>
<img alt="{{.Title}}" src="/charts/bar.png?{{.Query}}">
<h3>Correlation Matrix</h3>
<img alt="Correlation Matrix" src="/charts/heatmap.png">
`))

// GET /visualize?x=&y=
func (h *handler) visualize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v, err := h.dash.Visualize(q.Get("x"), q.Get("y"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := struct {
		dashboard.VisualView
		Query template.URL
	}{VisualView: v}
	data.Query = template.URL(fmt.Sprintf("x=%s&y=%s", template.URLQueryEscaper(v.X), template.URLQueryEscaper(v.Y)))
	h.writeSection(w, "02 Data Visualization", visualTmpl, data)
}

// GET /charts/{kind}.png?x=&y=
func (h *handler) chart(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	q := r.URL.Query()
	var buf bytes.Buffer
	if err := h.dash.WriteChart(&buf, kind, q.Get("x"), q.Get("y")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

var reportTmpl = template.Must(template.New("report").Parse(`<p>{{.Message}}</p>
{{if .OK}}<a href="/report/download">Download HTML report</a> | <a href="/report/download?format=md">Download Markdown report</a>{{end}}
`))

// GET /report
func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	v := h.dash.Report()
	h.writeSection(w, "03 Automated Report", reportTmpl, struct {
		Message string
		OK      bool
	}{v.Message(), v.Err == nil})
}

// GET /report/download?format=html|md
func (h *handler) download(w http.ResponseWriter, r *http.Request) {
	v := h.dash.Report()
	if v.Err != nil {
		h.fail(w, r, v.Err)
		return
	}
	var (
		body  []byte
		ctype string
		name  string
	)
	switch r.URL.Query().Get("format") {
	case "", "html":
		b, err := v.Profile.HTML()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		body, ctype, name = b, "text/html; charset=utf-8", v.Profile.Filename("html")
	case "md", "markdown":
		body, ctype, name = []byte(v.Profile.Markdown()), "text/markdown; charset=utf-8", v.Profile.Filename("md")
	default:
		h.fail(w, r, &dataset.InvalidParameterError{Param: "format", Value: r.URL.Query().Get("format"), Reason: "use html or md"})
		return
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(body)
}

// GET /header-image
func (h *handler) headerImage(w http.ResponseWriter, r *http.Request) {
	b, ok, err := h.dash.HeaderImage()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(b))
	_, _ = w.Write(b)
}

func (h *handler) writeSection(w http.ResponseWriter, heading string, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writePage(w, heading, template.HTML(buf.String()))
}
