package handlers

import (
	"html/template"
	"net/http"

	"readyset/internal/api"
	"readyset/internal/models"
)

// ContentHandler serves the public disaster education pages
type ContentHandler struct {
	views
	client *api.Client
}

// NewContentHandler creates a new content handler
func NewContentHandler(client *api.Client, templates *template.Template, middleware *Middleware) *ContentHandler {
	return &ContentHandler{views: newViews(templates, middleware), client: client}
}

func cardsFor(contents []models.Content, filter models.DisasterType, filtered bool) []ContentCard {
	cards := make([]ContentCard, 0, len(contents))
	for _, c := range contents {
		if filtered && c.DisasterType != filter {
			continue
		}
		cards = append(cards, ContentCard{Content: c, Display: c.DisasterType.Display()})
	}
	return cards
}

// List shows all content, optionally filtered by ?type=
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	contents, err := h.client.ListContent(r.Context(), sessionFrom(r))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching content")
		return
	}

	filter := r.URL.Query().Get("type")
	data := LearnViewData{
		Page:      h.page(r, "Learn"),
		Disasters: disasterDisplays(),
		Filter:    filter,
	}
	data.Cards = cardsFor(contents, models.ParseDisasterType(filter), filter != "")
	h.render(w, "learn.tmpl", data)
}

// Show renders one article
func (h *ContentHandler) Show(w http.ResponseWriter, r *http.Request) {
	content, err := h.client.GetContent(r.Context(), sessionFrom(r), r.PathValue("id"))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching content")
		return
	}

	data := ContentDetailViewData{
		Page: h.page(r, content.Title),
		Card: ContentCard{Content: *content, Display: content.DisasterType.Display()},
	}
	h.render(w, "content_detail.tmpl", data)
}
