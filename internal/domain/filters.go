package domain

import "fmt"

type SortKey string

const (
	SortSmartScore SortKey = "smart-score"
	SortRating     SortKey = "rating"
	SortPriceLow   SortKey = "price-low"
	SortPriceHigh  SortKey = "price-high"
	SortReviews    SortKey = "reviews"
)

var SortKeys = []SortKey{SortSmartScore, SortRating, SortReviews, SortPriceLow, SortPriceHigh}

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortSmartScore, SortRating, SortPriceLow, SortPriceHigh, SortReviews:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Budget slider domain used when a search carries no budget.
const (
	BudgetFloor   = 1
	BudgetCeiling = 50
)

// SearchFilters is one snapshot of the user's query state.
// BudgetMin <= BudgetMax by convention only; nothing enforces it.
type SearchFilters struct {
	Query       string   `json:"query"`
	Category    Category `json:"category"`
	BudgetMin   float64  `json:"budgetMin"`
	BudgetMax   float64  `json:"budgetMax"`
	Preferences []string `json:"preferences"`
	SortBy      SortKey  `json:"sortBy"`
}

func DefaultFilters() SearchFilters {
	return SearchFilters{
		Category:  CategoryAll,
		BudgetMin: BudgetFloor,
		BudgetMax: BudgetCeiling,
		SortBy:    SortSmartScore,
	}
}
