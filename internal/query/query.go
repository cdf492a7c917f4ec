// Package query derives the displayed event list from a loaded collection.
// Nothing here touches the store: the same (events, text, sort key) triple
// always yields the same sequence.
package query

import (
	"errors"
	"sort"
	"strings"

	"github.com/Eursukkul/bitboletos/internal/models"
)

type SortKey string

const (
	SortDate       SortKey = "date"
	SortPrice      SortKey = "price"
	SortPriceDesc  SortKey = "price_desc"
	SortPopularity SortKey = "popularity"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// ParseSortKey accepts the keys used by the explore screen. An empty value
// means date order.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "date":
		return SortDate, nil
	case "price", "price_asc":
		return SortPrice, nil
	case "price_desc":
		return SortPriceDesc, nil
	case "popularity":
		return SortPopularity, nil
	}
	return "", ErrUnknownSortKey
}

// Matches reports whether q is a case-insensitive substring of the title or
// the description.
func Matches(e *models.Event, q string) bool {
	needle := strings.ToLower(q)
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle)
}

// Filter keeps the events matching q. An empty q returns events unchanged.
func Filter(events []models.Event, q string) []models.Event {
	if q == "" {
		return events
	}
	out := make([]models.Event, 0, len(events))
	for i := range events {
		if Matches(&events[i], q) {
			out = append(out, events[i])
		}
	}
	return out
}

// Sort returns a sorted copy. Ties are broken by event id so the result does
// not depend on the order rows arrived in.
func Sort(events []models.Event, key SortKey) []models.Event {
	out := make([]models.Event, len(events))
	copy(out, events)

	var less func(a, b *models.Event) int
	switch key {
	case SortPrice:
		less = func(a, b *models.Event) int { return compareFloat(a.MinPrice(), b.MinPrice()) }
	case SortPriceDesc:
		less = func(a, b *models.Event) int { return compareFloat(b.MinPrice(), a.MinPrice()) }
	case SortPopularity:
		less = func(a, b *models.Event) int { return b.Favorites() - a.Favorites() }
	default:
		less = func(a, b *models.Event) int { return a.ShowingAt().Compare(b.ShowingAt()) }
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := less(&out[i], &out[j]); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Apply filters then sorts. The input slice is never modified.
func Apply(events []models.Event, q string, key SortKey) []models.Event {
	return Sort(Filter(events, q), key)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
