package alerts

import (
	"context"
	"log"
	"sync"
	"time"

	"readyset/internal/models"
)

// URLSource resolves the feed URL at fetch time so admin changes apply on the next refresh
type URLSource func(ctx context.Context) string

// Poller refreshes the feed on an interval and publishes the active alerts
type Poller struct {
	fetcher  *Fetcher
	source   URLSource
	interval time.Duration
	hub      *Hub
	now      func() time.Time

	mu        sync.RWMutex
	items     []models.Alert
	fetchedAt time.Time
	lastErr   error
}

// DefaultRefreshInterval is used when NewPoller gets a non-positive interval
const DefaultRefreshInterval = 15 * time.Minute

// NewPoller creates a poller. hub may be nil.
func NewPoller(fetcher *Fetcher, source URLSource, interval time.Duration, hub *Hub) *Poller {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Poller{
		fetcher:  fetcher,
		source:   source,
		interval: interval,
		hub:      hub,
		now:      time.Now,
	}
}

// Run refreshes immediately and then every interval until ctx is done
func (p *Poller) Run(ctx context.Context) {
	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh fetches the feed once. On failure the previous items are kept.
func (p *Poller) Refresh(ctx context.Context) error {
	url := p.source(ctx)
	items, err := p.fetcher.Fetch(ctx, url)

	p.mu.Lock()
	p.lastErr = err
	if err == nil {
		p.items = items
		p.fetchedAt = p.now()
	}
	p.mu.Unlock()

	if err != nil {
		log.Printf("Error refreshing alerts from %q: %v", url, err)
		return err
	}

	if p.hub != nil {
		p.hub.Broadcast(p.Current())
	}
	return nil
}

// Current returns the active alerts as of now
func (p *Poller) Current() []models.Alert {
	p.mu.RLock()
	items := p.items
	p.mu.RUnlock()
	return Active(items, p.now())
}

// Status reports when the feed was last fetched and the last error, if any
func (p *Poller) Status() (time.Time, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fetchedAt, p.lastErr
}
