package ranking

import (
	"cmp"
	"slices"
	"strings"

	"smart_places/internal/domain"
)

// Apply filters, scores and sorts catalog with the default policy.
func Apply(catalog []domain.Venue, f domain.SearchFilters) []domain.RankedVenue {
	return std.Apply(catalog, f)
}

// Apply keeps the venues matching f's category and query, scores each of them
// against f and stable-sorts the result by f.SortBy. catalog is left untouched;
// an empty category is treated like CategoryAll and an empty sort key keeps
// catalog order.
func (e *Engine) Apply(catalog []domain.Venue, f domain.SearchFilters) []domain.RankedVenue {
	q := strings.ToLower(f.Query)
	out := make([]domain.RankedVenue, 0, len(catalog))
	for _, v := range catalog {
		if f.Category != domain.CategoryAll && f.Category != "" && v.Category != f.Category {
			continue
		}
		if q != "" && !matchesQuery(v, q) {
			continue
		}
		out = append(out, domain.RankedVenue{Venue: v, SmartScore: e.Score(v, f)})
	}
	SortRanked(out, f.SortBy)
	return out
}

// matchesQuery expects q already lower-cased.
func matchesQuery(v domain.Venue, q string) bool {
	if strings.Contains(strings.ToLower(v.Name), q) {
		return true
	}
	if v.Cuisine != "" && strings.Contains(strings.ToLower(v.Cuisine), q) {
		return true
	}
	for _, kw := range v.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

// SortRanked stable-sorts rs in place; equal keys keep their relative order.
func SortRanked(rs []domain.RankedVenue, key domain.SortKey) {
	var byKey func(a, b domain.RankedVenue) int
	switch key {
	case domain.SortSmartScore:
		byKey = func(a, b domain.RankedVenue) int { return cmp.Compare(b.SmartScore, a.SmartScore) }
	case domain.SortRating:
		byKey = func(a, b domain.RankedVenue) int { return cmp.Compare(b.Rating, a.Rating) }
	case domain.SortPriceLow:
		byKey = func(a, b domain.RankedVenue) int { return cmp.Compare(a.AveragePrice, b.AveragePrice) }
	case domain.SortPriceHigh:
		byKey = func(a, b domain.RankedVenue) int { return cmp.Compare(b.AveragePrice, a.AveragePrice) }
	case domain.SortReviews:
		byKey = func(a, b domain.RankedVenue) int { return cmp.Compare(b.ReviewCount, a.ReviewCount) }
	default:
		return
	}
	slices.SortStableFunc(rs, byKey)
}
