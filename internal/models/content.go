package models

// Content is an educational article about a disaster type
type Content struct {
	ID           string
	Title        string
	Description  string
	DisasterType DisasterType
	VideoURL     string
	BeforeTips   []string
	DuringTips   []string
	AfterTips    []string
}
