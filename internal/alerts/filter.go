package alerts

import (
	"sort"
	"time"

	"readyset/internal/models"
)

// Active keeps alerts that are current or upcoming on the day of now.
// Items without a start date come first in feed order, then by start ascending.
func Active(items []models.Alert, now time.Time) []models.Alert {
	today := startOfDay(now)

	out := make([]models.Alert, 0, len(items))
	for _, a := range items {
		if isActive(a, today) {
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Start, out[j].Start
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	return out
}

func isActive(a models.Alert, today time.Time) bool {
	if a.End != nil && dayOf(*a.End, today.Location()).Before(today) {
		return false
	}
	if a.Start != nil || a.End != nil {
		return true
	}
	// no publication window: keep today's and future items, and undated ones
	return a.Published == nil || !dayOf(*a.Published, today.Location()).Before(today)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	return startOfDay(t.In(loc))
}
