// Package web serves the server-rendered chart pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/newthinker/protrade/internal/core"
	"github.com/newthinker/protrade/internal/viewer"
)

//go:embed templates/*
var templateFS embed.FS

// pages lists the page templates, each parsed together with layout.html.
var pages = []string{"chart.html", "strategy.html"}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds separate template instances for each page
	// Each instance contains layout.html + the specific page template
	pageTemplates map[string]*template.Template
	factory       *viewer.Factory
	defaultSymbol string
	defaultTF     core.Timeframe
}

// Option configures a Handler.
type Option func(*Handler)

// WithDefaults sets the inputs used when a request carries none.
func WithDefaults(symbol string, tf core.Timeframe) Option {
	return func(h *Handler) {
		h.defaultSymbol = symbol
		h.defaultTF = tf
	}
}

// NewHandler creates a new web handler with templates loaded from the given directory.
// If templatesDir is empty, it falls back to embedded templates.
func NewHandler(templatesDir string, factory *viewer.Factory, opts ...Option) (*Handler, error) {
	pageTemplates := make(map[string]*template.Template)

	for _, page := range pages {
		var tmpl *template.Template
		var err error

		if templatesDir != "" {
			layoutPath := filepath.Join(templatesDir, "layout.html")
			pagePath := filepath.Join(templatesDir, page)
			tmpl, err = template.ParseFiles(layoutPath, pagePath)
			if err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", page, err)
			}
		} else {
			tmpl, err = template.ParseFS(TemplateFS(), "layout.html", page)
			if err != nil {
				return nil, fmt.Errorf("parsing embedded template %s: %w", page, err)
			}
		}

		pageTemplates[page] = tmpl
	}

	return newHandler(pageTemplates, factory, opts), nil
}

// NewHandlerWithFS creates a new web handler using a custom filesystem.
// This is useful for testing or custom template sources.
func NewHandlerWithFS(fsys fs.FS, factory *viewer.Factory, opts ...Option) (*Handler, error) {
	pageTemplates := make(map[string]*template.Template)

	for _, page := range pages {
		tmpl, err := template.ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s from fs: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	return newHandler(pageTemplates, factory, opts), nil
}

func newHandler(pageTemplates map[string]*template.Template, factory *viewer.Factory, opts []Option) *Handler {
	h := &Handler{
		pageTemplates: pageTemplates,
		factory:       factory,
		defaultSymbol: viewer.DefaultSymbol,
		defaultTF:     viewer.DefaultTimeframe,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		// Headers are already out; the partial page is all we can do.
		fmt.Fprintf(w, "<!-- template error: %s -->", template.HTMLEscapeString(err.Error()))
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
