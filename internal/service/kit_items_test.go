package service

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"readyset/internal/models"
)

func intPtr(n int) *int { return &n }

func sampleItems() []models.Item {
	exp := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	return []models.Item{
		{ID: "1", Name: "Water", Description: "1 gallon | person | day", Category: "food", Quantity: intPtr(12), Unit: "gal", ExpirationDate: &exp},
		{ID: "2", Name: "First aid kit", Description: `bandages\gauze`},
		{ID: "3", Name: "Radio ", Description: "hand crank\nwith NOAA bands", Category: " tools", Quantity: intPtr(0)},
	}
}

func TestAddItem(t *testing.T) {
	items := sampleItems()

	out := AddItem(items, models.Item{Name: "Flashlight"})
	if len(out) != 4 || out[3].ID == "" || out[3].Name != "Flashlight" {
		t.Fatalf("AddItem() = %+v", out)
	}
	if len(items) != 3 {
		t.Error("AddItem modified its input")
	}

	again := AddItem(out, out[3])
	if len(again) != 4 {
		t.Errorf("adding an existing id duplicated it: %d items", len(again))
	}
}

func TestUpdateItemPreservesOtherFields(t *testing.T) {
	items := sampleItems()
	name := "Bottled water"

	out := UpdateItem(items, "1", ItemEdit{Name: &name})
	got := out[0]
	want := items[0]
	want.Name = name
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UpdateItem() = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(out[1:], items[1:]) {
		t.Error("unrelated items changed")
	}
	if items[0].Name != "Water" {
		t.Error("UpdateItem modified its input")
	}

	cleared := UpdateItem(items, "1", ItemEdit{ClearQuantity: true, ClearExpiration: true})
	if cleared[0].Quantity != nil || cleared[0].ExpirationDate != nil || cleared[0].Unit != "gal" {
		t.Errorf("clear flags = %+v", cleared[0])
	}

	if unknown := UpdateItem(items, "nope", ItemEdit{Name: &name}); !reflect.DeepEqual(unknown, items) {
		t.Error("editing an unknown id changed the list")
	}
}

func TestRemoveItem(t *testing.T) {
	items := sampleItems()

	out := RemoveItem(items, "2")
	if len(out) != 2 || out[0].ID != "1" || out[1].ID != "3" {
		t.Errorf("RemoveItem() = %+v", out)
	}
	if twice := RemoveItem(out, "2"); !reflect.DeepEqual(twice, out) {
		t.Error("removing twice is not a no-op")
	}
	if unknown := RemoveItem(items, "missing"); !reflect.DeepEqual(unknown, items) {
		t.Error("removing an unknown id changed the list")
	}
}

func TestItemCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []models.Item
	}{
		{"empty", nil},
		{"sample", sampleItems()},
		{"blank fields", []models.Item{{ID: "x", Name: "Tarp"}}},
		{"separator lookalikes", []models.Item{{ID: "a|b", Name: " | ", Description: `\|\n`}}},
		{"timestamp expiration", []models.Item{{ID: "t", Name: "Meds", ExpirationDate: timePtr(time.Date(2027, 1, 2, 15, 4, 5, 0, time.UTC))}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeItems(tt.items)
			decoded, err := DecodeItems(encoded)
			if err != nil {
				t.Fatalf("DecodeItems(%q): %v", encoded, err)
			}
			if len(decoded) != len(tt.items) {
				t.Fatalf("got %d items, want %d\n%s", len(decoded), len(tt.items), encoded)
			}
			for i := range tt.items {
				assertItemEqual(t, decoded[i], tt.items[i])
			}
		})
	}
}

func assertItemEqual(t *testing.T, got, want models.Item) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Description != want.Description ||
		got.Category != want.Category || got.Unit != want.Unit {
		t.Errorf("item = %+v, want %+v", got, want)
	}
	if (got.Quantity == nil) != (want.Quantity == nil) || (got.Quantity != nil && *got.Quantity != *want.Quantity) {
		t.Errorf("quantity = %v, want %v", got.Quantity, want.Quantity)
	}
	if (got.ExpirationDate == nil) != (want.ExpirationDate == nil) ||
		(got.ExpirationDate != nil && !got.ExpirationDate.Equal(*want.ExpirationDate)) {
		t.Errorf("expiration = %v, want %v", got.ExpirationDate, want.ExpirationDate)
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestEncodeOneLinePerItem(t *testing.T) {
	encoded := EncodeItems(sampleItems())
	if n := strings.Count(encoded, "\n"); n != 2 {
		t.Errorf("encoded %d newlines, want 2:\n%s", n, encoded)
	}
}

func TestDecodeItemsErrors(t *testing.T) {
	tests := map[string]string{
		"too few fields":    "1 | Water",
		"bad quantity":      "1 | Water | | | lots | | ",
		"bad expiration":    "1 | Water | | | 1 | | soon",
		"dangling escape":   `1 | Water | | | 1 | | \`,
		"too many fields":   "1 | a | b | c | 1 | d | 2026-01-01 | extra",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeItems(input); err == nil {
				t.Errorf("DecodeItems(%q) succeeded", input)
			}
		})
	}

	items, err := DecodeItems("\n\n")
	if err != nil || len(items) != 0 {
		t.Errorf("blank input = %v, %v", items, err)
	}
}
