package models

import "time"

// Kit is an emergency kit built for a household
type Kit struct {
	ID               string
	HouseType        string
	Region           string
	NumResidents     int
	HasChildren      bool
	HasElderly       bool
	HasPets          bool
	IsCustom         bool
	RecommendedItems []Item
}

// Item is a single supply in a kit
type Item struct {
	ID             string
	Name           string
	Description    string
	Category       string
	Quantity       *int
	Unit           string
	ExpirationDate *time.Time
}

// HouseTypes are the household options offered by the kit form
var HouseTypes = []string{"apartment", "house", "mobile home", "condo", "other"}
