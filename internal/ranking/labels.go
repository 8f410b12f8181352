package ranking

import (
	"fmt"
	"net/url"

	"smart_places/internal/domain"
)

func PriceTierLabel(t domain.PriceTier) string {
	switch t {
	case domain.PriceBudget:
		return "Budget-friendly"
	case domain.PriceMid:
		return "Mid-range"
	case domain.PriceUpscale:
		return "Upscale"
	case domain.PriceFine:
		return "Fine Dining"
	}
	return string(t)
}

// ScoreBand is the colour band a smart score is rendered with.
func ScoreBand(score int) string {
	switch {
	case score >= 90:
		return "score-excellent"
	case score >= 75:
		return "score-good"
	}
	return "score-average"
}

func MatchLabel(score int) string {
	switch {
	case score >= 90:
		return "Excellent Match"
	case score >= 80:
		return "Great Match"
	case score >= 70:
		return "Good Match"
	}
	return "Fair Match"
}

type SentimentLabel struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

func LabelFor(s domain.Sentiment) SentimentLabel {
	switch s {
	case domain.SentimentPositive:
		return SentimentLabel{Label: "Excellent", Color: "sentiment-positive"}
	case domain.SentimentNeutral:
		return SentimentLabel{Label: "Good", Color: "sentiment-neutral"}
	case domain.SentimentNegative:
		return SentimentLabel{Label: "Mixed", Color: "sentiment-negative"}
	}
	return SentimentLabel{Label: "N/A", Color: "muted"}
}

// SentimentBadge buckets a 0-1 sentiment score.
func SentimentBadge(score float64) domain.Sentiment {
	switch {
	case score >= 0.8:
		return domain.SentimentPositive
	case score >= 0.6:
		return domain.SentimentNeutral
	}
	return domain.SentimentNegative
}

func MapsURL(v domain.Venue) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%v,%v&query_place_id=%s",
		v.Coords.Lat, v.Coords.Lng, url.QueryEscape(v.Name))
}
