package handlers

import (
	"html/template"
	"net/http"

	"readyset/internal/alerts"
)

// AlertHandler serves the alert page and its live feed
type AlertHandler struct {
	views
	poller *alerts.Poller
	hub    *alerts.Hub
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(poller *alerts.Poller, hub *alerts.Hub, templates *template.Template, middleware *Middleware) *AlertHandler {
	return &AlertHandler{views: newViews(templates, middleware), poller: poller, hub: hub}
}

// Page lists the active and upcoming alerts
func (h *AlertHandler) Page(w http.ResponseWriter, r *http.Request) {
	data := AlertsViewData{
		Page:   h.page(r, "Alerts"),
		Alerts: h.poller.Current(),
	}
	updated, err := h.poller.Status()
	data.UpdatedAt = updated
	if err != nil {
		data.FeedError = "The alert feed could not be refreshed. Showing the last known alerts."
	}
	h.render(w, "alerts.tmpl", data)
}

// Live upgrades to a websocket that receives the alert list on every refresh
func (h *AlertHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeHTTP(w, r)
}
