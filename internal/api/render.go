package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/bookbazaar/bookbazaar-server/internal/color"
	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/richtext"
)

//go:embed templates
var templateFS embed.FS

// PageData is what every page template receives.
type PageData struct {
	Title   string
	Viewer  *domain.Viewer
	Lang    language.Tag
	Path    string
	Flash   *Flash
	Status  int
	Message string            // page-level message key, translated by the template
	Form    any               // submitted or pre-filled form values
	Errors  map[string]string // field errors keyed by form field name
	Data    any
}

// T translates key into the page language.
func (p *PageData) T(key string, args ...any) string {
	return i18n.T(p.Lang, key, args...)
}

// FieldError returns the translated error for a form field, or "".
func (p *PageData) FieldError(field string) string {
	msg, ok := p.Errors[field]
	if !ok {
		return ""
	}
	return p.T(msg)
}

// Renderer writes a named page.
type Renderer interface {
	Render(w io.Writer, name string, data *PageData) error
}

// TemplateRenderer renders the embedded html/template pages. Each page is
// parsed together with layout.html into its own set.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"media": func(ref string) string {
		if ref == "" {
			return ""
		}
		return "/media/" + ref
	},
	"excerpt":     richtext.Excerpt,
	"avatarColor": color.ForUser,
	"date": func(t time.Time) string {
		return t.Local().Format("02.01.2006 15:04")
	},
	"contains": func(list []string, v string) bool {
		return slices.Contains(list, v)
	},
}

// NewTemplateRenderer parses every embedded page.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	files, err := fs.Glob(templateFS, "templates/*/*.html")
	if err != nil {
		return nil, err
	}
	files = append(files, "templates/error.html")

	r := &TemplateRenderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[strings.TrimPrefix(file, "templates/")] = t
	}
	return r, nil
}

// MustTemplateRenderer is NewTemplateRenderer that panics on error. The
// templates are embedded, so a failure is a build defect.
func MustTemplateRenderer() *TemplateRenderer {
	r, err := NewTemplateRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the layout with the named page.
func (r *TemplateRenderer) Render(w io.Writer, name string, data *PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// render fills the request-scoped fields and writes the page. The page is
// buffered so a template error can still become a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	if data == nil {
		data = &PageData{}
	}
	data.Viewer = ViewerFrom(r.Context())
	data.Lang = languageOf(r)
	data.Path = r.URL.RequestURI()
	data.Status = status
	if data.Flash == nil {
		data.Flash = s.popFlash(w, r)
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, name, data); err != nil {
		s.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, i18n.T(data.Lang, i18n.MsgInternal), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError turns a service error into a page. UNAUTHORIZED redirects to
// the login form instead. API clients get the JSON error body.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		s.writeJSONError(w, r, err)
		return
	}

	code := domainerrors.CodeOf(err)
	status := code.HTTPStatus()
	message := domainerrors.Message(err)

	switch code {
	case domainerrors.CodeUnauthorized:
		s.redirectToLogin(w, r)
		return
	case domainerrors.CodeInternal:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = i18n.MsgInternal
	}

	s.render(w, r, status, "error.html", &PageData{Title: http.StatusText(status), Message: message})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, domainerrors.NotFound(i18n.MsgPageNotFound))
}
