package domain

import "fmt"

type Category string

const (
	CategoryRestaurant Category = "restaurant"
	CategoryCafe       Category = "cafe"
	CategoryStreetFood Category = "street-food"
	CategoryBakery     Category = "bakery"
	CategoryBar        Category = "bar"
	CategorySalon      Category = "salon"
	CategoryGym        Category = "gym"
	CategorySpa        Category = "spa"

	// CategoryAll is the filter wildcard; it is never a venue's category.
	CategoryAll Category = "all"
)

// Categories lists venue categories in display order.
var Categories = []Category{
	CategoryRestaurant, CategoryCafe, CategoryStreetFood, CategoryBakery,
	CategoryBar, CategorySalon, CategoryGym, CategorySpa,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryRestaurant, CategoryCafe, CategoryStreetFood, CategoryBakery,
		CategoryBar, CategorySalon, CategoryGym, CategorySpa:
		return true
	}
	return false
}

// ParseCategory accepts a venue category or the "all" wildcard.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c == CategoryAll || c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type PriceTier string

const (
	PriceBudget  PriceTier = "$"
	PriceMid     PriceTier = "$$"
	PriceUpscale PriceTier = "$$$"
	PriceFine    PriceTier = "$$$$"
)

var PriceTiers = []PriceTier{PriceBudget, PriceMid, PriceUpscale, PriceFine}

type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Venue is a catalog entry. The smart score is not part of it; see RankedVenue.
type Venue struct {
	ID             string    `json:"id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	LocalName      string    `json:"nameKhmer,omitempty"`
	Category       Category  `json:"category" validate:"required,oneof=restaurant cafe street-food bakery bar salon gym spa"`
	Cuisine        string    `json:"cuisine,omitempty"`
	Address        string    `json:"address"`
	PriceTier      PriceTier `json:"priceRange" validate:"omitempty,oneof=$ $$ $$$ $$$$"`
	AveragePrice   float64   `json:"averagePrice"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"reviewCount"`
	SentimentScore float64   `json:"sentimentScore" validate:"gte=0,lte=1"`
	ImageURL       string    `json:"imageUrl"`
	Coords         Coords    `json:"coordinates"`
	Reviews        []Review  `json:"reviews"`
	Insight        string    `json:"aiInsight"`
	Keywords       []string  `json:"keywords"`
	OpenNow        *bool     `json:"openNow,omitempty"`
	Distance       *float64  `json:"distance,omitempty"`

	// Position is the venue's index in the source listing. Repositories list
	// venues by it; a negative value keeps whatever position is stored.
	Position int `json:"-"`
}

// RankedVenue is a venue scored against one SearchFilters snapshot.
type RankedVenue struct {
	Venue
	SmartScore int `json:"smartScore"`
}
