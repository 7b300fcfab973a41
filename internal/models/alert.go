package models

import "time"

// Alert is one item of the public alert feed
type Alert struct {
	Title       string
	Description string
	Link        string
	Published   *time.Time
	Start       *time.Time
	End         *time.Time
}
