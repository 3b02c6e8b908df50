package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
	"github.com/messageinabottle/golang_services/internal/web_service/forms"
	"github.com/messageinabottle/golang_services/internal/web_service/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFiles serves the stylesheet and the default profile picture.
func StaticFiles() http.Handler {
	sub, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// page is the value every template receives.
type page struct {
	User    *domain.User
	Content any
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"safeURL": func(s string) template.URL {
		if strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "/static/") {
			return template.URL(s)
		}
		return ""
	},
	"fieldError": func(errs forms.ValidationErrors, field string) string {
		return errs.For(field)
	},
}

func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	rd := &Renderer{pages: make(map[string]*template.Template), logger: logger.With("component", "renderer")}
	for _, name := range names {
		if strings.HasSuffix(name, "/layout.html") {
			continue
		}
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		rd.pages[strings.TrimSuffix(strings.TrimPrefix(name, "templates/"), ".html")] = tmpl
	}
	return rd, nil
}

// HTML renders the named page. Output is buffered so a template failure
// still produces a clean 500.
func (rd *Renderer) HTML(w http.ResponseWriter, r *http.Request, status int, name string, content any) {
	tmpl, ok := rd.pages[name]
	if !ok {
		rd.logger.ErrorContext(r.Context(), "Unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page{User: middleware.CurrentUser(r.Context()), Content: content}); err != nil {
		rd.logger.ErrorContext(r.Context(), "Failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorPage struct {
	Status  int
	Message string
}

// Error renders the error page with the status err maps to.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		rd.logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	} else {
		rd.logger.InfoContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	rd.HTML(w, r, status, "error", errorPage{Status: status, Message: msg})
}

func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "The upload is too large."
	case errors.Is(err, forms.ErrBadForm):
		return http.StatusBadRequest, "The submitted form could not be read."
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, domain.ErrOperationNotAllowed):
		return http.StatusForbidden, "This operation is not allowed."
	default:
		return http.StatusInternalServerError, "Something went wrong, please try again later."
	}
}

// JSON writes payload as a JSON response.
func (rd *Renderer) JSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			rd.logger.ErrorContext(r.Context(), "Failed to write JSON response", "error", err)
		}
	}
}
