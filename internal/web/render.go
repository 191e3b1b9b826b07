package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/wxdash/internal/dashboard"
	"github.com/hpungsan/wxdash/internal/district"
	"github.com/hpungsan/wxdash/internal/errors"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "home", "result"
	Offline bool
}

// HomePageData is the template data for the selection view.
type HomePageData struct {
	PageData
	Value  string
	Panel  dashboard.Panel
	Notice string
}

// ResultPageData is the template data for the dashboard view.
type ResultPageData struct {
	PageData
	District string
	Loaded   bool
	Readouts dashboard.Readouts
	Icon     dashboard.IconTreatment
	Chart    ChartData
	History  []dashboard.HistoryItem
	Outlook  template.HTML
	Notice   string
}

// ChartData is the template data for the chart block.
type ChartData struct {
	Tabs []dashboard.Tab
	SVG  template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"segments": renderSegments,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"home":   "home.html",
		"result": "result.html",
		"error":  "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For fragment requests (HX-Request), only the "content" block is rendered.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if req != nil && isFragment(req) {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock renders a specific named block from a page template.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("template not found", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution error", "page", page, "block", block, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	wxErr := errors.As(err)
	if wxErr == nil {
		wxErr = errors.NewInternal(err)
	}
	if wxErr.Status >= 500 {
		r.logger.Error("request failed", "path", req.URL.Path, "error", err)
	}

	status := wxErr.Status
	message := wxErr.Message
	if wxErr.Code == errors.ErrInternal {
		message = "internal error"
	}

	if isFragment(req) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		renderJSONError(w, wxErr, message)
		return
	}

	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

func renderJSONError(w http.ResponseWriter, wxErr *errors.WxError, message string) {
	renderJSON(w, wxErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(wxErr.Code),
			"message": message,
			"status":  wxErr.Status,
		},
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// renderSegments renders a suggestion's segments with highlighted runs
// wrapped in a span. Text is escaped here, never concatenated raw.
func renderSegments(segs []district.Segment) template.HTML {
	var b strings.Builder
	for _, s := range segs {
		text := template.HTMLEscapeString(s.Text)
		if s.Highlight {
			b.WriteString(`<span class="match-highlight">` + text + `</span>`)
			continue
		}
		b.WriteString(text)
	}
	return template.HTML(b.String())
}

func isFragment(req *http.Request) bool {
	return req.Header.Get("HX-Request") == "true"
}

func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}
