package report

import (
	"sort"
	"strings"

	"go-scraper/internal/storage"
)

// DefaultResultLimit caps search responses the way the original dashboard
// capped its result table.
const DefaultResultLimit = 50

// Filter is a conjunction of search predicates; zero values match everything.
type Filter struct {
	Query     string
	Brand     string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
}

// Apply filters entries, orders them by rating descending and truncates to
// limit (DefaultResultLimit when limit <= 0).
func Apply(entries []storage.Entry, f Filter, limit int) []storage.Entry {
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	brand := strings.ToLower(strings.TrimSpace(f.Brand))

	matched := make([]storage.Entry, 0, len(entries))
	for _, e := range entries {
		if query != "" && !strings.Contains(strings.ToLower(e.Title), query) {
			continue
		}
		if brand != "" && !strings.Contains(strings.ToLower(Brand(e.Title)), brand) {
			continue
		}
		if f.MinPrice != nil && (e.Price == nil || *e.Price < *f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && (e.Price == nil || *e.Price > *f.MaxPrice) {
			continue
		}
		if f.MinRating != nil && (e.Rating == nil || *e.Rating < *f.MinRating) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return ratingOf(matched[i]) > ratingOf(matched[j])
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func ratingOf(e storage.Entry) float64 {
	if e.Rating == nil {
		return 0
	}
	return *e.Rating
}
