// Package web serves the server-rendered dashboard pages.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/api/job"
	"github.com/lrchart/chartai/internal/app"
	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/report"
	"github.com/lrchart/chartai/internal/ui"
)

//go:embed templates/*
var templateFS embed.FS

// App is the part of app.App the pages need.
type App interface {
	Pairs(term string) []string
	DefaultPair() string
	Timeframes() []string
	DefaultTimeframe() string
	Labels() report.Labels
	NextSignal(ctx context.Context, pair, timeframe string) (core.Batch, error)
	FutureList(ctx context.Context) (core.Batch, error)
	AnalyzeChart(ctx context.Context, image []byte, mimeType string) (*app.ChartVerdict, string, error)
	Forecast(ctx context.Context, image []byte, mimeType, pair string) (*app.Forecast, string, error)
	Job(id string) (*job.Job, error)
}

// Options configures the pages.
type Options struct {
	// TemplatesDir overrides the embedded templates when set.
	TemplatesDir    string
	NextSignalDelay time.Duration
	FutureListDelay time.Duration
	MaxUploadBytes  int64
	CommunityURL    string
	Logger          *zap.Logger
}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds one template set per page: layout.html plus the
	// page's own file.
	pageTemplates map[ui.Page]*template.Template
	app           App
	opts          Options
}

func templateName(p ui.Page) string { return p.Slug() + ".html" }

// NewHandler creates a new web handler. Templates come from
// opts.TemplatesDir, or from the embedded set when it is empty.
func NewHandler(a App, opts Options) (*Handler, error) {
	if opts.TemplatesDir != "" {
		return newHandler(a, opts, func(page string) (*template.Template, error) {
			return template.ParseFiles(
				filepath.Join(opts.TemplatesDir, "layout.html"),
				filepath.Join(opts.TemplatesDir, page))
		})
	}
	return NewHandlerWithFS(TemplateFS(), a, opts)
}

// NewHandlerWithFS creates a new web handler using a custom filesystem.
func NewHandlerWithFS(fsys fs.FS, a App, opts Options) (*Handler, error) {
	return newHandler(a, opts, func(page string) (*template.Template, error) {
		return template.ParseFS(fsys, "layout.html", page)
	})
}

func newHandler(a App, opts Options, parse func(page string) (*template.Template, error)) (*Handler, error) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CommunityURL == "" {
		opts.CommunityURL = ui.DefaultCommunityURL
	}

	pageTemplates := make(map[ui.Page]*template.Template)
	for _, p := range ui.AllPages() {
		tmpl, err := parse(templateName(p))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", templateName(p), err)
		}
		pageTemplates[p] = tmpl
	}

	return &Handler{pageTemplates: pageTemplates, app: a, opts: opts}, nil
}

// Register mounts every page on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.DashboardPage)
	mux.HandleFunc("GET "+ui.HowToUse.Path(), h.static(ui.HowToUse))
	mux.HandleFunc("GET "+ui.MoneyManagement.Path(), h.static(ui.MoneyManagement))
	mux.HandleFunc("GET "+ui.Community.Path(), h.static(ui.Community))
	mux.HandleFunc("GET "+ui.AboutUs.Path(), h.static(ui.AboutUs))

	mux.HandleFunc("GET "+ui.ChartAnalyzer.Path(), h.ChartPage)
	mux.HandleFunc("POST "+ui.ChartAnalyzer.Path(), h.AnalyzeChart)
	mux.HandleFunc("GET "+ui.FutureAI.Path(), h.ForecastPage)
	mux.HandleFunc("POST "+ui.FutureAI.Path(), h.Forecast)
	mux.HandleFunc("GET "+ui.Generator1M.Path(), h.GeneratorPage)
	mux.HandleFunc("POST "+ui.Generator1M.Path(), h.Generate)
	mux.HandleFunc("GET "+ui.FutureList1M.Path(), h.FutureListPage)
	mux.HandleFunc("POST "+ui.FutureList1M.Path(), h.GenerateList)
}

// PageData is what layout.html renders. Content holds the page view.
type PageData struct {
	Page         ui.Page
	Nav          []ui.Page
	More         []ui.Page
	Disclaimer   [2]string
	Copied       string
	CopyFailed   string
	Loading      string
	CopyStatusMS int64
	Content      any
}

// render executes the page template with the layout around it
func (h *Handler) render(w http.ResponseWriter, page ui.Page, content any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+templateName(page), http.StatusInternalServerError)
		return
	}

	data := PageData{
		Page:         page,
		Nav:          ui.NavItems,
		More:         ui.MoreItems,
		Disclaimer:   [2]string{ui.DisclaimerTitle, ui.DisclaimerText},
		Copied:       ui.MsgCopied,
		CopyFailed:   ui.MsgCopyFailed,
		Loading:      ui.MsgLoading,
		CopyStatusMS: ui.CopyStatusDuration.Milliseconds(),
		Content:      content,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		h.opts.Logger.Error("rendering page", zap.String("page", page.Slug()), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StaticView is the content of the informational pages.
type StaticView struct {
	CommunityURL string
}

// DashboardPage renders the dashboard. ?page= names another page by slug or
// title and redirects to it.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("page"); name != "" {
		if p := ui.ParsePage(name); p != ui.Dashboard {
			http.Redirect(w, r, p.Path(), http.StatusSeeOther)
			return
		}
	}
	h.static(ui.Dashboard)(w, r)
}

func (h *Handler) static(p ui.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, p, StaticView{CommunityURL: h.opts.CommunityURL})
	}
}

// pause waits d, returning early when the request goes away.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// This should never happen with valid embed directive
		return templateFS
	}
	return subFS
}
