// Package alerts reads the public RSS alert feed and keeps the active items current.
package alerts

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"readyset/internal/models"
)

// Fetcher loads alerts from a feed URL
type Fetcher struct {
	parser *gofeed.Parser
}

// NewFetcher creates a fetcher using hc for requests
func NewFetcher(hc *http.Client) *Fetcher {
	p := gofeed.NewParser()
	p.Client = hc
	p.UserAgent = "ReadySet/1.0"
	return &Fetcher{parser: p}
}

// Fetch downloads and parses the feed at url
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]models.Alert, error) {
	if url == "" {
		return nil, fmt.Errorf("no alert feed configured")
	}
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alert feed: %w", err)
	}
	return FromFeed(feed), nil
}

// Parse reads alerts from a feed document
func Parse(doc string) ([]models.Alert, error) {
	feed, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse alert feed: %w", err)
	}
	return FromFeed(feed), nil
}

// FromFeed maps feed items to alerts, keeping feed order
func FromFeed(feed *gofeed.Feed) []models.Alert {
	out := make([]models.Alert, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.Alert{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			Link:        item.Link,
			Published:   item.PublishedParsed,
		}
		if a.Published == nil {
			a.Published = parseDate(item.Published)
		}
		a.Start = firstDate(item.Custom, item.Extensions, "startDate", "start", "effective", "onset")
		a.End = firstDate(item.Custom, item.Extensions, "endDate", "end", "expires")
		out = append(out, a)
	}
	return out
}

// firstDate looks for a window date in custom elements, then in namespaced extensions (cap:effective)
func firstDate(custom map[string]string, exts ext.Extensions, names ...string) *time.Time {
	for _, name := range names {
		if v, ok := custom[name]; ok {
			if t := parseDate(v); t != nil {
				return t
			}
		}
	}
	for _, prefix := range extensionOrder(exts) {
		for _, name := range names {
			for _, e := range exts[prefix][name] {
				if t := parseDate(e.Value); t != nil {
					return t
				}
			}
		}
	}
	return nil
}

// extensionOrder lists namespace prefixes with cap first, the rest sorted
func extensionOrder(exts ext.Extensions) []string {
	prefixes := slices.Sorted(maps.Keys(exts))
	if i := slices.Index(prefixes, "cap"); i > 0 {
		prefixes = append(append([]string{"cap"}, prefixes[:i]...), prefixes[i+1:]...)
	}
	return prefixes
}

var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
