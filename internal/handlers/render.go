package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"readyset/internal/auth"
	"readyset/internal/models"
)

// views renders page templates with the shared page fields filled in
type views struct {
	templates  *template.Template
	middleware *Middleware
}

func newViews(templates *template.Template, middleware *Middleware) views {
	return views{templates: templates, middleware: middleware}
}

// page builds the common fields for a page titled title
func (v views) page(r *http.Request, title string) Page {
	p := Page{
		Title:     title + " - ReadySet",
		CSRFToken: v.middleware.CSRFToken(r),
	}
	if ac := auth.FromContext(r.Context()); ac != nil && ac.Await(r.Context()) == auth.StateAuthenticated {
		p.User = ac.User()
	}
	return p
}

func (v views) render(w http.ResponseWriter, name string, data any) {
	v.renderStatus(w, http.StatusOK, name, data)
}

// renderStatus executes into a buffer so a template error never leaves a half-written page
func (v views) renderStatus(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := v.templates.ExecuteTemplate(&buf, name, data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// sessionFrom returns the request's auth context; the Provide middleware guarantees one
func sessionFrom(r *http.Request) *auth.Context {
	return auth.FromContext(r.Context())
}

func disasterDisplays() []models.Display {
	types := models.AllDisasterTypes()
	out := make([]models.Display, len(types))
	for i, t := range types {
		out[i] = t.Display()
	}
	return out
}
