package handlers

import (
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"readyset/internal/models"
	"readyset/internal/service"
	"readyset/internal/validation"
)

// KitHandler handles the emergency kit pages
type KitHandler struct {
	views
	kitService *service.KitService
}

// NewKitHandler creates a new kit handler
func NewKitHandler(kitService *service.KitService, templates *template.Template, middleware *Middleware) *KitHandler {
	return &KitHandler{views: newViews(templates, middleware), kitService: kitService}
}

func kitPath(id string) string {
	return "/kits/" + url.PathEscape(id)
}

// parseKitForm reads the questionnaire fields shared by the create and edit forms
func parseKitForm(r *http.Request) (service.KitForm, error) {
	form := service.KitForm{
		HouseType:   r.FormValue("house_type"),
		Region:      strings.TrimSpace(r.FormValue("region")),
		HasChildren: r.FormValue("has_children") == "on",
		HasElderly:  r.FormValue("has_elderly") == "on",
		HasPets:     r.FormValue("has_pets") == "on",
	}
	n, err := strconv.Atoi(strings.TrimSpace(r.FormValue("num_residents")))
	if err != nil {
		return form, validation.ValidationError{Field: "num_residents", Message: "number of residents must be a whole number"}
	}
	form.NumResidents = n
	return form, nil
}

func parseQuantity(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	q, err := strconv.Atoi(s)
	if err != nil {
		return nil, validation.ValidationError{Field: "quantity", Message: "quantity must be a whole number"}
	}
	return &q, nil
}

func parseExpiration(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, validation.ValidationError{Field: "expiration_date", Message: "expiration must be a date (YYYY-MM-DD)"}
	}
	return &d, nil
}

// itemFromForm reads one item's fields, each name prefixed with prefix
func itemFromForm(r *http.Request, prefix string) (models.Item, error) {
	it := models.Item{
		Name:        strings.TrimSpace(r.FormValue(prefix + "name")),
		Description: strings.TrimSpace(r.FormValue(prefix + "description")),
		Category:    strings.TrimSpace(r.FormValue(prefix + "category")),
		Unit:        strings.TrimSpace(r.FormValue(prefix + "unit")),
	}
	var err error
	if it.Quantity, err = parseQuantity(r.FormValue(prefix + "quantity")); err != nil {
		return it, err
	}
	if it.ExpirationDate, err = parseExpiration(r.FormValue(prefix + "expiration_date")); err != nil {
		return it, err
	}
	if err := validation.ValidateRequired("name", it.Name); err != nil {
		return it, err
	}
	return it, validation.ValidateQuantity(it.Quantity)
}

// editFromItem turns a fully submitted row into an edit that replaces every field
func editFromItem(it models.Item) service.ItemEdit {
	return service.ItemEdit{
		Name:            &it.Name,
		Description:     &it.Description,
		Category:        &it.Category,
		Unit:            &it.Unit,
		Quantity:        it.Quantity,
		ClearQuantity:   it.Quantity == nil,
		ExpirationDate:  it.ExpirationDate,
		ClearExpiration: it.ExpirationDate == nil,
	}
}

// List shows the user's kits
func (h *KitHandler) List(w http.ResponseWriter, r *http.Request) {
	kits, err := h.kitService.List(r.Context(), sessionFrom(r))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching kits")
		return
	}
	h.render(w, "kits.tmpl", KitListViewData{Page: h.page(r, "My Kits"), Kits: kits})
}

func (h *KitHandler) formView(r *http.Request, form service.KitForm) KitFormViewData {
	return KitFormViewData{
		Page:         h.page(r, "Build a Kit"),
		Form:         form,
		HouseTypes:   models.HouseTypes,
		MinResidents: validation.MinResidents,
		MaxResidents: validation.MaxResidents,
	}
}

// New renders the kit questionnaire
func (h *KitHandler) New(w http.ResponseWriter, r *http.Request) {
	h.render(w, "kit_new.tmpl", h.formView(r, service.KitForm{NumResidents: 1}))
}

// Create submits the questionnaire and shows the generated kit
func (h *KitHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	form, err := parseKitForm(r)
	var kit *models.Kit
	if err == nil {
		kit, err = h.kitService.Create(r.Context(), sessionFrom(r), form)
	}
	if err != nil {
		if redirectIfExpired(w, r, err) {
			return
		}
		data := h.formView(r, form)
		data.Error = userMessage(err)
		h.renderStatus(w, http.StatusUnprocessableEntity, "kit_new.tmpl", data)
		return
	}

	if kit.ID == "" {
		http.Redirect(w, r, "/kits", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, kitPath(kit.ID), http.StatusSeeOther)
}

// Show renders one kit and its checklist
func (h *KitHandler) Show(w http.ResponseWriter, r *http.Request) {
	kit, err := h.kitService.Get(r.Context(), sessionFrom(r), r.PathValue("id"))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching kit")
		return
	}

	data := KitDetailViewData{
		Page:         h.page(r, "Kit"),
		Kit:          *kit,
		EmailEnabled: h.kitService.EmailEnabled(),
	}
	switch r.URL.Query().Get("status") {
	case "saved":
		data.Success = "Kit saved."
	case "sent":
		data.Success = "Checklist sent to your email."
	}
	h.render(w, "kit_detail.tmpl", data)
}

func (h *KitHandler) editView(r *http.Request, kit models.Kit) KitEditViewData {
	return KitEditViewData{
		Page:       h.page(r, "Edit Kit"),
		Kit:        kit,
		Encoded:    service.EncodeItems(kit.RecommendedItems),
		HouseTypes: models.HouseTypes,
	}
}

// Edit opens the item editor for a kit
func (h *KitHandler) Edit(w http.ResponseWriter, r *http.Request) {
	kit, err := h.kitService.Get(r.Context(), sessionFrom(r), r.PathValue("id"))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching kit")
		return
	}
	h.render(w, "kit_edit.tmpl", h.editView(r, *kit))
}

// kitFromEditForm rebuilds the kit being edited from the editor's fields.
// Item edits stay in the form until the kit is saved. An unreadable item list
// is reported as itemsErr; questionnaire problems as formErr.
func kitFromEditForm(r *http.Request) (kit models.Kit, formErr, itemsErr error) {
	kit = models.Kit{ID: r.PathValue("id")}
	form, formErr := parseKitForm(r)
	kit.HouseType = form.HouseType
	kit.Region = form.Region
	kit.NumResidents = form.NumResidents
	kit.HasChildren = form.HasChildren
	kit.HasElderly = form.HasElderly
	kit.HasPets = form.HasPets
	kit.IsCustom = r.FormValue("is_custom") == "true"

	items, err := service.DecodeItems(r.FormValue("items"))
	if err != nil {
		return kit, formErr, validation.ValidationError{Field: "items", Message: "the item list could not be read: " + err.Error()}
	}
	kit.RecommendedItems = items
	return kit, formErr, nil
}

// EditAction applies one editor action: add, edit, update, remove or save
func (h *KitHandler) EditAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	kit, formErr, itemsErr := kitFromEditForm(r)
	if itemsErr != nil {
		data := h.editView(r, kit)
		data.Encoded = r.FormValue("items")
		data.Error = userMessage(itemsErr)
		h.renderStatus(w, http.StatusUnprocessableEntity, "kit_edit.tmpl", data)
		return
	}
	action, itemID, _ := strings.Cut(r.FormValue("action"), ":")
	if formErr != nil && action == "save" {
		h.editFailed(w, r, kit, "", formErr)
		return
	}

	editing := ""
	switch action {
	case "add":
		item, err := itemFromForm(r, "new_")
		if err != nil {
			h.editFailed(w, r, kit, "", err)
			return
		}
		kit.RecommendedItems = service.AddItem(kit.RecommendedItems, item)
	case "edit":
		editing = itemID
	case "update":
		item, err := itemFromForm(r, "edit_")
		if err != nil {
			h.editFailed(w, r, kit, itemID, err)
			return
		}
		kit.RecommendedItems = service.UpdateItem(kit.RecommendedItems, itemID, editFromItem(item))
	case "remove":
		kit.RecommendedItems = service.RemoveItem(kit.RecommendedItems, itemID)
	case "save":
		if err := h.kitService.Save(r.Context(), sessionFrom(r), kit); err != nil {
			if redirectIfExpired(w, r, err) {
				return
			}
			h.editFailed(w, r, kit, "", err)
			return
		}
		http.Redirect(w, r, kitPath(kit.ID)+"?status=saved", http.StatusSeeOther)
		return
	default:
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	data := h.editView(r, kit)
	data.EditingID = editing
	h.render(w, "kit_edit.tmpl", data)
}

func (h *KitHandler) editFailed(w http.ResponseWriter, r *http.Request, kit models.Kit, editing string, err error) {
	data := h.editView(r, kit)
	data.EditingID = editing
	data.Error = userMessage(err)
	h.renderStatus(w, http.StatusUnprocessableEntity, "kit_edit.tmpl", data)
}

// ConfirmDelete asks before deleting a kit
func (h *KitHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	kit, err := h.kitService.Get(r.Context(), sessionFrom(r), r.PathValue("id"))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching kit")
		return
	}
	h.render(w, "kit_delete.tmpl", KitDeleteViewData{Page: h.page(r, "Delete Kit"), Kit: *kit})
}

// Delete removes a kit after confirmation
func (h *KitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.kitService.Delete(r.Context(), sessionFrom(r), r.PathValue("id")); err != nil {
		handleAPIError(w, r, err, "Error deleting kit")
		return
	}
	http.Redirect(w, r, "/kits", http.StatusSeeOther)
}

// Email sends the kit checklist to the signed-in user
func (h *KitHandler) Email(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.kitService.EmailEnabled() {
		http.Error(w, "Email is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := h.kitService.EmailChecklist(r.Context(), sessionFrom(r), id); err != nil {
		if redirectIfExpired(w, r, err) {
			return
		}
		log.Printf("Error emailing kit %s: %v", id, err)
		kit, getErr := h.kitService.Get(r.Context(), sessionFrom(r), id)
		if getErr != nil {
			handleAPIError(w, r, getErr, "Error fetching kit")
			return
		}
		data := KitDetailViewData{Page: h.page(r, "Kit"), Kit: *kit, EmailEnabled: true}
		data.Error = userMessage(err)
		h.renderStatus(w, http.StatusUnprocessableEntity, "kit_detail.tmpl", data)
		return
	}
	http.Redirect(w, r, kitPath(id)+"?status=sent", http.StatusSeeOther)
}
