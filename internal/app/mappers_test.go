package app

import (
	"testing"

	"smart_places/internal/domain"
)

func TestMapVenue_Aliases(t *testing.T) {
	v := mapVenue(map[string]any{
		"venue_id":           "x1",
		"title":              "Street Noodles",
		"type":               "Street Food",
		"price_level":        2.0,
		"avg_price":          "4,5",
		"rating":             map[string]any{"value": 4.1},
		"location":           map[string]any{"lat": "11.5", "lng": 104.9},
		"tags":               []any{"noodles", map[string]any{"name": "late night"}, ""},
		"open_now":           "true",
		"photos":             []any{"https://img/1.jpg"},
		"address":            map[string]any{"street": "St. 19", "city": "Phnom Penh"},
		"user_ratings_total": 30.0,
	})
	if v.ID != "x1" || v.Name != "Street Noodles" || v.Category != domain.CategoryStreetFood {
		t.Fatalf("identity: %+v", v)
	}
	if v.PriceTier != domain.PriceMid || v.AveragePrice != 4.5 || v.Rating != 4.1 || v.ReviewCount != 30 {
		t.Fatalf("numbers: %+v", v)
	}
	if v.Coords.Lat != 11.5 || v.Coords.Lng != 104.9 {
		t.Fatalf("coords: %+v", v.Coords)
	}
	if len(v.Keywords) != 2 || v.Keywords[1] != "late night" {
		t.Fatalf("keywords: %v", v.Keywords)
	}
	if v.OpenNow == nil || !*v.OpenNow || v.ImageURL != "https://img/1.jpg" {
		t.Fatalf("extras: %+v", v)
	}
	if v.Address != "St. 19, Phnom Penh" {
		t.Fatalf("address: %q", v.Address)
	}
}

func TestMapVenue_SynthesizesStableID(t *testing.T) {
	a := mapVenue(map[string]any{"name": "Nameless", "address": "Somewhere"})
	b := mapVenue(map[string]any{"name": "Nameless", "address": "Somewhere"})
	if a.ID == "" || a.ID != b.ID {
		t.Fatalf("expected stable synthesized id, got %q and %q", a.ID, b.ID)
	}
	if a.Keywords == nil {
		t.Fatalf("keywords should default to an empty list")
	}
}

func TestMapReviews(t *testing.T) {
	rs := mapReviews("v1", []map[string]any{
		{"review_id": 9.0, "comment": "Loved it", "reviewer": map[string]any{"name": "Ana"}, "label": "POSITIVE"},
		{"body": "meh", "stars": "2"},
		{"text": "no keywords"},
	})
	if len(rs) != 3 {
		t.Fatalf("len: %d", len(rs))
	}
	if rs[0].ID != "9" || rs[0].Author != "Ana" || rs[0].Sentiment != domain.SentimentPositive || rs[0].VenueID != "v1" {
		t.Fatalf("first: %+v", rs[0])
	}
	if rs[1].Sentiment != domain.SentimentNegative || rs[1].ID == "" {
		t.Fatalf("second: %+v", rs[1])
	}
	if rs[2].Sentiment != "" || rs[2].Keywords != nil {
		t.Fatalf("third: %+v", rs[2])
	}
}
