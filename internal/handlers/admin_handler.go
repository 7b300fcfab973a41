package handlers

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"strings"

	"readyset/internal/alerts"
	"readyset/internal/api"
	"readyset/internal/models"
	"readyset/internal/repository"
	"readyset/internal/validation"
)

// AdminHandler handles admin-specific routes
type AdminHandler struct {
	views
	client         *api.Client
	settingsRepo   *repository.SettingsRepository
	poller         *alerts.Poller
	hub            *alerts.Hub
	defaultFeedURL string
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(client *api.Client, settingsRepo *repository.SettingsRepository, poller *alerts.Poller, hub *alerts.Hub, defaultFeedURL string, templates *template.Template, middleware *Middleware) *AdminHandler {
	return &AdminHandler{
		views:          newViews(templates, middleware),
		client:         client,
		settingsRepo:   settingsRepo,
		poller:         poller,
		hub:            hub,
		defaultFeedURL: defaultFeedURL,
	}
}

// ShowAdminDashboard shows counts for each managed collection
func (h *AdminHandler) ShowAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ac := sessionFrom(r)
	data := AdminDashboardViewData{Page: h.page(r, "Admin Dashboard")}

	var failed error
	if users, err := h.client.ListUsers(ctx, ac); err != nil {
		failed = err
	} else {
		data.UserCount = len(users)
	}
	if kits, err := h.client.ListAllKits(ctx, ac); err != nil {
		failed = err
	} else {
		data.KitCount = len(kits)
	}
	if contents, err := h.client.ListContent(ctx, ac); err != nil {
		failed = err
	} else {
		data.ContentCount = len(contents)
	}
	if failed != nil {
		if redirectIfExpired(w, r, failed) {
			return
		}
		log.Printf("Error loading admin dashboard counts: %v", failed)
		data.Error = userMessage(failed)
	}

	if h.hub != nil {
		data.AlertSubscribers = h.hub.Subscribers()
	}
	if h.poller != nil {
		data.AlertsUpdatedAt, _ = h.poller.Status()
	}

	h.render(w, "admin_dashboard.tmpl", data)
}

// ShowManageUsers lists every account
func (h *AdminHandler) ShowManageUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.client.ListUsers(r.Context(), sessionFrom(r))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching users")
		return
	}

	data := AdminUsersViewData{
		Page:  h.page(r, "Manage Users"),
		Users: users,
		Roles: []models.Role{models.RoleUser, models.RoleAdmin},
	}
	switch r.URL.Query().Get("status") {
	case "self":
		data.Error = "You cannot change or delete your own account here."
	case "updated":
		data.Success = "User updated."
	case "deleted":
		data.Success = "User deleted."
	}
	h.render(w, "admin_users.tmpl", data)
}

// isSelf reports whether id is the signed-in admin
func isSelf(r *http.Request, id string) bool {
	u := sessionFrom(r).User()
	return u != nil && u.ID == id
}

// UpdateUserRole changes a user's role
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if isSelf(r, id) {
		http.Redirect(w, r, "/admin/users?status=self", http.StatusSeeOther)
		return
	}

	role := r.FormValue("role")
	if err := validation.ValidateOneOf("role", role, []string{string(models.RoleUser), string(models.RoleAdmin)}); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	if err := h.client.UpdateUserRole(r.Context(), sessionFrom(r), id, models.Role(role)); err != nil {
		handleAPIError(w, r, err, "Error updating user role")
		return
	}
	http.Redirect(w, r, "/admin/users?status=updated", http.StatusSeeOther)
}

// DeleteUser removes an account
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if isSelf(r, id) {
		http.Redirect(w, r, "/admin/users?status=self", http.StatusSeeOther)
		return
	}

	if err := h.client.DeleteUser(r.Context(), sessionFrom(r), id); err != nil {
		handleAPIError(w, r, err, "Error deleting user")
		return
	}
	http.Redirect(w, r, "/admin/users?status=deleted", http.StatusSeeOther)
}

// ShowManageContent lists the educational content
func (h *AdminHandler) ShowManageContent(w http.ResponseWriter, r *http.Request) {
	contents, err := h.client.ListContent(r.Context(), sessionFrom(r))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching content")
		return
	}
	data := AdminContentListViewData{
		Page:  h.page(r, "Manage Content"),
		Cards: cardsFor(contents, models.DisasterOther, false),
	}
	h.render(w, "admin_content.tmpl", data)
}

func (h *AdminHandler) contentForm(r *http.Request, c models.Content, action string) AdminContentFormViewData {
	return AdminContentFormViewData{
		Page:          h.page(r, "Edit Content"),
		Content:       c,
		DisasterTypes: disasterDisplays(),
		BeforeTips:    strings.Join(c.BeforeTips, "\n"),
		DuringTips:    strings.Join(c.DuringTips, "\n"),
		AfterTips:     strings.Join(c.AfterTips, "\n"),
		Action:        action,
	}
}

// splitLines turns a textarea into trimmed, non-empty lines
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func parseContentForm(r *http.Request) (models.Content, error) {
	c := models.Content{
		ID:           r.PathValue("id"),
		Title:        strings.TrimSpace(r.FormValue("title")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		DisasterType: models.ParseDisasterType(r.FormValue("disaster_type")),
		VideoURL:     strings.TrimSpace(r.FormValue("video_url")),
		BeforeTips:   splitLines(r.FormValue("before_tips")),
		DuringTips:   splitLines(r.FormValue("during_tips")),
		AfterTips:    splitLines(r.FormValue("after_tips")),
	}
	if err := validation.ValidateRequired("title", c.Title); err != nil {
		return c, err
	}
	return c, validation.ValidateHTTPURL("video_url", c.VideoURL)
}

// NewContent renders an empty content form
func (h *AdminHandler) NewContent(w http.ResponseWriter, r *http.Request) {
	h.render(w, "admin_content_form.tmpl", h.contentForm(r, models.Content{}, "/admin/content"))
}

// CreateContent saves a new article
func (h *AdminHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	h.saveContent(w, r, "/admin/content", func(ctx context.Context, c models.Content) error {
		_, err := h.client.CreateContent(ctx, sessionFrom(r), c)
		return err
	})
}

// EditContent renders the form for an existing article
func (h *AdminHandler) EditContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	content, err := h.client.GetContent(r.Context(), sessionFrom(r), id)
	if err != nil {
		handleAPIError(w, r, err, "Error fetching content")
		return
	}
	h.render(w, "admin_content_form.tmpl", h.contentForm(r, *content, "/admin/content/"+id))
}

// UpdateContent saves an edited article
func (h *AdminHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	h.saveContent(w, r, "/admin/content/"+r.PathValue("id"), func(ctx context.Context, c models.Content) error {
		return h.client.UpdateContent(ctx, sessionFrom(r), c)
	})
}

func (h *AdminHandler) saveContent(w http.ResponseWriter, r *http.Request, action string, save func(context.Context, models.Content) error) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	content, err := parseContentForm(r)
	if err == nil {
		err = save(r.Context(), content)
	}
	if err != nil {
		if redirectIfExpired(w, r, err) {
			return
		}
		data := h.contentForm(r, content, action)
		data.Error = userMessage(err)
		h.renderStatus(w, http.StatusUnprocessableEntity, "admin_content_form.tmpl", data)
		return
	}
	http.Redirect(w, r, "/admin/content", http.StatusSeeOther)
}

// DeleteContent removes an article
func (h *AdminHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DeleteContent(r.Context(), sessionFrom(r), r.PathValue("id")); err != nil {
		handleAPIError(w, r, err, "Error deleting content")
		return
	}
	http.Redirect(w, r, "/admin/content", http.StatusSeeOther)
}

// ShowManageKits lists every user's kits
func (h *AdminHandler) ShowManageKits(w http.ResponseWriter, r *http.Request) {
	kits, err := h.client.ListAllKits(r.Context(), sessionFrom(r))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching kits")
		return
	}
	h.render(w, "admin_kits.tmpl", AdminKitsViewData{Page: h.page(r, "Manage Kits"), Kits: kits})
}

// DeleteKit removes any user's kit
func (h *AdminHandler) DeleteKit(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DeleteKit(r.Context(), sessionFrom(r), r.PathValue("id")); err != nil {
		handleAPIError(w, r, err, "Error deleting kit")
		return
	}
	http.Redirect(w, r, "/admin/kits", http.StatusSeeOther)
}

// ShowSettings renders the application settings
func (h *AdminHandler) ShowSettings(w http.ResponseWriter, r *http.Request) {
	data := AdminSettingsViewData{
		Page:           h.page(r, "Settings"),
		AlertFeedURL:   h.settingsRepo.AlertFeedURL(r.Context(), h.defaultFeedURL),
		DefaultFeedURL: h.defaultFeedURL,
	}
	if r.URL.Query().Get("status") == "saved" {
		data.Success = "Settings saved."
	}
	h.render(w, "admin_settings.tmpl", data)
}

// UpdateSettings stores the alert feed URL and refreshes the feed
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	feedURL := strings.TrimSpace(r.FormValue("alert_feed_url"))
	if err := validation.ValidateHTTPURL("alert_feed_url", feedURL); err != nil {
		data := AdminSettingsViewData{
			Page:           h.page(r, "Settings"),
			AlertFeedURL:   feedURL,
			DefaultFeedURL: h.defaultFeedURL,
		}
		data.Error = userMessage(err)
		h.renderStatus(w, http.StatusUnprocessableEntity, "admin_settings.tmpl", data)
		return
	}

	if err := h.settingsRepo.SetAlertFeedURL(r.Context(), feedURL); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save settings", "Error saving alert feed URL", err)
		return
	}

	if h.poller != nil {
		go func(ctx context.Context) {
			if err := h.poller.Refresh(ctx); err != nil {
				log.Printf("Error refreshing alerts after settings change: %v", err)
			}
		}(context.WithoutCancel(r.Context()))
	}
	http.Redirect(w, r, "/admin/settings?status=saved", http.StatusSeeOther)
}
