package service

import (
	"context"
	"fmt"
	"strings"

	"readyset/internal/api"
	"readyset/internal/models"
	"readyset/internal/validation"
)

// KitForm is the kit questionnaire as submitted
type KitForm struct {
	HouseType    string
	Region       string
	NumResidents int
	HasChildren  bool
	HasElderly   bool
	HasPets      bool
}

// KitService validates kit forms and talks to the backend
type KitService struct {
	client *api.Client
	email  *EmailService
}

// NewKitService creates a new kit service
func NewKitService(client *api.Client, email *EmailService) *KitService {
	return &KitService{client: client, email: email}
}

// ValidateForm checks the questionnaire before any request is made
func ValidateForm(form KitForm) error {
	if err := validation.ValidateOneOf("house_type", form.HouseType, models.HouseTypes); err != nil {
		return err
	}
	if err := validation.ValidateRequired("region", form.Region); err != nil {
		return err
	}
	return validation.ValidateResidents(form.NumResidents)
}

// ValidateItems checks every item of an edited kit
func ValidateItems(items []models.Item) error {
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return validation.ValidationError{Field: "name", Message: "every item needs a name"}
		}
		if err := validation.ValidateQuantity(it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Create submits the questionnaire; the backend returns the kit with recommended items
func (s *KitService) Create(ctx context.Context, sess Session, form KitForm) (*models.Kit, error) {
	if err := ValidateForm(form); err != nil {
		return nil, err
	}
	return s.client.CreateKit(ctx, sess, models.Kit{
		HouseType:    form.HouseType,
		Region:       strings.TrimSpace(form.Region),
		NumResidents: form.NumResidents,
		HasChildren:  form.HasChildren,
		HasElderly:   form.HasElderly,
		HasPets:      form.HasPets,
	})
}

// Get fetches one kit
func (s *KitService) Get(ctx context.Context, sess Session, id string) (*models.Kit, error) {
	return s.client.GetKit(ctx, sess, id)
}

// List fetches the user's kits
func (s *KitService) List(ctx context.Context, sess Session) ([]models.Kit, error) {
	return s.client.ListKits(ctx, sess)
}

// Save writes an edited kit. Edited kits are marked custom.
func (s *KitService) Save(ctx context.Context, sess Session, kit models.Kit) error {
	if err := ValidateForm(KitForm{HouseType: kit.HouseType, Region: kit.Region, NumResidents: kit.NumResidents}); err != nil {
		return err
	}
	if err := ValidateItems(kit.RecommendedItems); err != nil {
		return err
	}
	kit.IsCustom = true
	return s.client.UpdateKit(ctx, sess, kit)
}

// Delete removes a kit
func (s *KitService) Delete(ctx context.Context, sess Session, id string) error {
	return s.client.DeleteKit(ctx, sess, id)
}

// EmailChecklist sends the kit's items to the signed-in user
func (s *KitService) EmailChecklist(ctx context.Context, sess Session, kitID string) error {
	user := sess.User()
	if user == nil {
		return fmt.Errorf("no signed-in user")
	}
	if user.Email == "" {
		return validation.ValidationError{Field: "email", Message: "your profile has no email address"}
	}
	kit, err := s.client.GetKit(ctx, sess, kitID)
	if err != nil {
		return err
	}
	return s.email.SendKitChecklist(ctx, user.Email, user.Name, *kit)
}

// EmailEnabled reports whether checklists can be emailed
func (s *KitService) EmailEnabled() bool {
	return s.email != nil && s.email.IsEnabled()
}
