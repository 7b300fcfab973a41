package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"readyset/internal/models"
)

// ItemEdit lists the fields changed by an edit. Nil fields keep their value.
type ItemEdit struct {
	Name            *string
	Description     *string
	Category        *string
	Unit            *string
	Quantity        *int
	ClearQuantity   bool
	ExpirationDate  *time.Time
	ClearExpiration bool
}

// AddItem appends item, assigning an id when it has none.
// An item whose id is already present replaces it in place.
func AddItem(items []models.Item, item models.Item) []models.Item {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	out := cloneItems(items)
	for i := range out {
		if out[i].ID == item.ID {
			out[i] = item
			return out
		}
	}
	return append(out, item)
}

// UpdateItem applies edit to the item with id. Unknown ids leave the list unchanged.
func UpdateItem(items []models.Item, id string, edit ItemEdit) []models.Item {
	out := cloneItems(items)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		it := &out[i]
		if edit.Name != nil {
			it.Name = *edit.Name
		}
		if edit.Description != nil {
			it.Description = *edit.Description
		}
		if edit.Category != nil {
			it.Category = *edit.Category
		}
		if edit.Unit != nil {
			it.Unit = *edit.Unit
		}
		if edit.ClearQuantity {
			it.Quantity = nil
		} else if edit.Quantity != nil {
			q := *edit.Quantity
			it.Quantity = &q
		}
		if edit.ClearExpiration {
			it.ExpirationDate = nil
		} else if edit.ExpirationDate != nil {
			d := *edit.ExpirationDate
			it.ExpirationDate = &d
		}
	}
	return out
}

// RemoveItem drops the item with id. Removing an unknown id is a no-op.
func RemoveItem(items []models.Item, id string) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func cloneItems(items []models.Item) []models.Item {
	return append(make([]models.Item, 0, len(items)+1), items...)
}

// Items travel through the edit form as text, one per line:
//   id | name | description | category | quantity | unit | expiration
// Backslash escapes \, | and newlines inside fields.

const itemFields = 7

// EncodeItems serializes items in order
func EncodeItems(items []models.Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		quantity := ""
		if it.Quantity != nil {
			quantity = strconv.Itoa(*it.Quantity)
		}
		expiration := ""
		if it.ExpirationDate != nil {
			expiration = formatExpiration(*it.ExpirationDate)
		}
		fields := []string{it.ID, it.Name, it.Description, it.Category, quantity, it.Unit, expiration}
		for i := range fields {
			fields[i] = escapeField(fields[i])
		}
		lines = append(lines, strings.Join(fields, " | "))
	}
	return strings.Join(lines, "\n")
}

// DecodeItems parses the output of EncodeItems
func DecodeItems(s string) ([]models.Item, error) {
	var items []models.Item
	for n, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitFields(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		if len(fields) != itemFields {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", n+1, itemFields, len(fields))
		}

		it := models.Item{
			ID:          fields[0],
			Name:        fields[1],
			Description: fields[2],
			Category:    fields[3],
			Unit:        fields[5],
		}
		if fields[4] != "" {
			q, err := strconv.Atoi(fields[4])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid quantity %q", n+1, fields[4])
			}
			it.Quantity = &q
		}
		if fields[6] != "" {
			d, err := parseExpiration(fields[6])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid expiration %q", n+1, fields[6])
			}
			it.ExpirationDate = &d
		}
		items = append(items, it)
	}
	return items, nil
}

func escapeField(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '|':
			b.WriteString(`\|`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitFields splits on unescaped " | " separators and unescapes each field
func splitFields(line string) ([]string, error) {
	var raw []string
	var cur strings.Builder
	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			if i+1 >= len(rs) {
				return nil, fmt.Errorf("dangling escape")
			}
			i++
			switch rs[i] {
			case 'n':
				cur.WriteRune('\n')
			case 'r':
				cur.WriteRune('\r')
			default:
				cur.WriteRune(rs[i])
			}
		case '|':
			raw = append(raw, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(rs[i])
		}
	}
	raw = append(raw, cur.String())

	// each separator is " | ": one space belongs to it on either side
	for i := range raw {
		if i < len(raw)-1 {
			raw[i] = strings.TrimSuffix(raw[i], " ")
		}
		if i > 0 {
			raw[i] = strings.TrimPrefix(raw[i], " ")
		}
	}
	return raw, nil
}

func formatExpiration(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}

func parseExpiration(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
