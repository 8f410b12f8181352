package app

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"smart_places/internal/domain"
)

/********** alias registries **********/

var venueAliases = map[string][]string{
	"id":        {"id", "venue_id", "place_id", "venueId"},
	"name":      {"name", "title", "venue_name", "display_name"},
	"localName": {"nameKhmer", "name_km", "local_name", "localName", "names.km"},
	"category":  {"category", "category.slug", "type", "kind"},
	"cuisine":   {"cuisine", "cuisine_type", "food_type"},
	"address":   {"address", "address.line", "full_address", "formatted_address", "location.address"},
	"priceTier": {"priceRange", "price_range", "price_tier", "price.tier"},
	"image":     {"imageUrl", "image_url", "image", "photo", "cover.url"},
	"insight":   {"aiInsight", "ai_insight", "insight", "summary"},
}

var reviewAliases = map[string][]string{
	"id":        {"id", "review_id", "reviewId"},
	"text":      {"text", "review_text", "review", "comment", "content", "body"},
	"author":    {"author", "name", "userName", "reviewer", "reviewer.name", "user.name"},
	"date":      {"date", "relative_date", "created_at", "createdAt", "time"},
	"sentiment": {"sentiment", "sentiment.label", "label", "polarity"},
	"rating":    {"rating", "rate", "score", "rating.value", "stars"},
}

// category spellings seen in feeds that differ from ours
var categoryAliases = map[string]domain.Category{
	"café":        domain.CategoryCafe,
	"coffee":      domain.CategoryCafe,
	"coffee shop": domain.CategoryCafe,
	"street food": domain.CategoryStreetFood,
	"street_food": domain.CategoryStreetFood,
	"streetfood":  domain.CategoryStreetFood,
	"hawker":      domain.CategoryStreetFood,
	"pub":         domain.CategoryBar,
	"beauty":      domain.CategorySalon,
	"fitness":     domain.CategoryGym,
	"massage":     domain.CategorySpa,
}

// idSpace namespaces ids synthesized for records that arrive without one.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("smart-places/catalog"))

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path; numbers are formatted, anything else is "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// floatFlexible: number from several paths (float64/int/string like "4,5").
func floatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func boolFlexible(m map[string]any, paths ...string) *bool {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case bool:
			b := v
			return &b
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return &b
			}
		}
	}
	return nil
}

// sliceStrings accepts []any holding strings or {name/label/text} objects.
// A present but empty list yields an empty, non-nil slice.
func sliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t = strings.TrimSpace(t); t != "" {
					out = append(out, t)
				}
			case map[string]any:
				for _, f := range []string{"name", "label", "text"} {
					if s, ok := t[f].(string); ok && s != "" {
						out = append(out, s)
						break
					}
				}
			}
		}
		return out
	}
	return nil
}

func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

/********** venue mapper **********/

func normalizeCategory(s string) domain.Category {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := categoryAliases[s]; ok {
		return c
	}
	return domain.Category(strings.ReplaceAll(s, " ", "-"))
}

// normalizePriceTier accepts "$$", a numeric level 1..4 or a word.
func normalizePriceTier(m map[string]any) domain.PriceTier {
	s := firstAlias(m, venueAliases, "priceTier")
	if s == "" {
		if lvl := floatFlexible(m, "price_level", "priceLevel"); lvl != nil {
			s = strconv.Itoa(int(*lvl))
		}
	}
	switch strings.ToLower(s) {
	case "1", "budget", "cheap", "inexpensive":
		return domain.PriceBudget
	case "2", "mid", "moderate":
		return domain.PriceMid
	case "3", "upscale", "expensive":
		return domain.PriceUpscale
	case "4", "fine", "very expensive":
		return domain.PriceFine
	}
	return domain.PriceTier(s)
}

func mapVenue(p map[string]any) domain.Venue {
	v := domain.Venue{
		ID:           firstAlias(p, venueAliases, "id"),
		Name:         firstAlias(p, venueAliases, "name"),
		LocalName:    firstAlias(p, venueAliases, "localName"),
		Category:     normalizeCategory(firstAlias(p, venueAliases, "category")),
		Cuisine:      firstAlias(p, venueAliases, "cuisine"),
		Address:      firstAlias(p, venueAliases, "address"),
		PriceTier:    normalizePriceTier(p),
		AveragePrice: orZero(floatFlexible(p, "averagePrice", "average_price", "avg_price", "price.average")),
		Rating:       orZero(floatFlexible(p, "rating", "rating.value", "stars")),
		ImageURL:     firstAlias(p, venueAliases, "image"),
		Insight:      firstAlias(p, venueAliases, "insight"),
		Keywords:     sliceStrings(p, "keywords", "tags", "features"),
		OpenNow:      boolFlexible(p, "openNow", "open_now", "opening_hours.open_now"),
		Distance:     floatFlexible(p, "distance", "distance_km"),
		Coords: domain.Coords{
			Lat: orZero(floatFlexible(p, "coordinates.lat", "lat", "latitude", "location.lat")),
			Lng: orZero(floatFlexible(p, "coordinates.lng", "lng", "lon", "longitude", "location.lng", "location.lon")),
		},
	}
	if n := floatFlexible(p, "reviewCount", "review_count", "reviews_count", "user_ratings_total"); n != nil {
		v.ReviewCount = int(*n)
	}
	if s := floatFlexible(p, "sentimentScore", "sentiment_score"); s != nil {
		v.SentimentScore = *s
	}
	if v.Address == "" {
		var parts []string
		for _, k := range []string{"address.street", "address.district", "address.city", "street", "city"} {
			if s := lookupStr(p, k); s != "" {
				parts = append(parts, s)
			}
		}
		v.Address = strings.Join(parts, ", ")
	}
	if v.ImageURL == "" {
		if imgs := sliceStrings(p, "images", "photos"); len(imgs) > 0 {
			v.ImageURL = imgs[0]
		}
	}
	if v.Keywords == nil {
		v.Keywords = []string{}
	}
	if v.ID == "" && v.Name != "" {
		v.ID = uuid.NewSHA1(idSpace, []byte(v.Name+"|"+v.Address)).String()
	}
	return v
}

/********** reviews mapper **********/

// sentimentFromRating labels unlabelled reviews: 4+ positive, 3 neutral, else negative.
func sentimentFromRating(r float64) domain.Sentiment {
	switch {
	case r >= 4:
		return domain.SentimentPositive
	case r >= 3:
		return domain.SentimentNeutral
	default:
		return domain.SentimentNegative
	}
}

func mapReviews(venueID string, in []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		rv := domain.Review{
			ID:       firstAlias(r, reviewAliases, "id"),
			VenueID:  venueID,
			Text:     firstAlias(r, reviewAliases, "text"),
			Author:   firstAlias(r, reviewAliases, "author"),
			Date:     firstAlias(r, reviewAliases, "date"),
			Rating:   orZero(floatFlexible(r, reviewAliases["rating"]...)),
			Keywords: sliceStrings(r, "keywords", "tags"),
		}

		if s, err := domain.ParseSentiment(strings.ToLower(firstAlias(r, reviewAliases, "sentiment"))); err == nil {
			rv.Sentiment = s
		} else if rv.Rating > 0 {
			rv.Sentiment = sentimentFromRating(rv.Rating)
		}

		if rv.ID == "" {
			sig := strings.Join([]string{venueID, rv.Author, rv.Text, rv.Date}, "|")
			rv.ID = uuid.NewSHA1(idSpace, []byte(sig)).String()
		}
		out = append(out, rv)
	}
	return out
}
