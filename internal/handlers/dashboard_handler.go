package handlers

import (
	"html/template"
	"log"
	"net/http"

	"readyset/internal/alerts"
	"readyset/internal/models"
	"readyset/internal/service"
)

const (
	dashboardAlerts  = 3
	dashboardQuizzes = 5
)

// DashboardHandler handles the signed-in user's home and profile
type DashboardHandler struct {
	views
	kitService  *service.KitService
	authService *service.AuthService
	poller      *alerts.Poller
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(kitService *service.KitService, authService *service.AuthService, poller *alerts.Poller, templates *template.Template, middleware *Middleware) *DashboardHandler {
	return &DashboardHandler{
		views:       newViews(templates, middleware),
		kitService:  kitService,
		authService: authService,
		poller:      poller,
	}
}

// recentAttempts returns up to n attempts, newest first
func recentAttempts(history []models.QuizAttempt, n int) []models.QuizAttempt {
	out := make([]models.QuizAttempt, 0, n)
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, history[i])
	}
	return out
}

// Dashboard shows kits, current alerts and quiz progress
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardViewData{Page: h.page(r, "Dashboard")}

	kits, err := h.kitService.List(r.Context(), sessionFrom(r))
	if err != nil {
		if redirectIfExpired(w, r, err) {
			return
		}
		log.Printf("Error fetching kits for dashboard: %v", err)
		data.Error = userMessage(err)
	}
	data.Kits = kits

	if h.poller != nil {
		current := h.poller.Current()
		if len(current) > dashboardAlerts {
			current = current[:dashboardAlerts]
		}
		data.Alerts = current
	}
	if data.User != nil {
		data.RecentQuizzes = recentAttempts(data.User.QuizHistory, dashboardQuizzes)
	}

	h.render(w, "dashboard.tmpl", data)
}

// ShowProfile reloads the account from the backend and renders the profile form.
// A failed reload falls back to the cached user.
func (h *DashboardHandler) ShowProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Refresh(r.Context(), sessionFrom(r)); err != nil {
		if redirectIfExpired(w, r, err) {
			return
		}
		log.Printf("Error refreshing profile: %v", err)
	}

	data := ProfileViewData{Page: h.page(r, "Profile")}
	if data.User != nil {
		data.Name = data.User.Name
		data.Email = data.User.Email
	}
	if r.URL.Query().Get("status") == "saved" {
		data.Success = "Profile updated."
	}
	h.render(w, "profile.tmpl", data)
}

// UpdateProfile saves the profile and merges it into the session
func (h *DashboardHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	if err := h.authService.UpdateProfile(r.Context(), sessionFrom(r), name, email); err != nil {
		if redirectIfExpired(w, r, err) {
			return
		}
		data := ProfileViewData{Page: h.page(r, "Profile"), Name: name, Email: email}
		data.Error = userMessage(err)
		h.renderStatus(w, http.StatusUnprocessableEntity, "profile.tmpl", data)
		return
	}
	http.Redirect(w, r, "/profile?status=saved", http.StatusSeeOther)
}
