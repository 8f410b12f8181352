package domain

import "fmt"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func ParseSentiment(s string) (Sentiment, error) {
	switch v := Sentiment(s); v {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return v, nil
	}
	return "", fmt.Errorf("unknown sentiment %q", s)
}

type Review struct {
	ID        string    `json:"id"`
	VenueID   string    `json:"venueId,omitempty"`
	Text      string    `json:"text"`
	Rating    float64   `json:"rating"`
	Author    string    `json:"author"`
	Date      string    `json:"date"`
	Sentiment Sentiment `json:"sentiment" validate:"required,oneof=positive neutral negative"`
	// Keywords is nil when the source carried no keyword list.
	Keywords []string `json:"keywords,omitempty"`
}

// SentimentAnalysis aggregates the sentiment of a set of reviews.
type SentimentAnalysis struct {
	Overall       Sentiment `json:"overall"`
	Score         float64   `json:"score"`
	PositiveCount int       `json:"positiveCount"`
	NeutralCount  int       `json:"neutralCount"`
	NegativeCount int       `json:"negativeCount"`
	TopKeywords   []string  `json:"topKeywords"`
}
