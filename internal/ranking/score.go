package ranking

import (
	"math"
	"strings"

	"smart_places/internal/domain"
)

// Score computes the smart score with the default policy.
func Score(v domain.Venue, f domain.SearchFilters) int { return std.Score(v, f) }

// Breakdown is the per-term contribution to a smart score, before rounding.
type Breakdown struct {
	Rating     float64 `json:"rating"`
	Sentiment  float64 `json:"sentiment"`
	Volume     float64 `json:"volume"`
	Budget     float64 `json:"budget"`
	Preference float64 `json:"preference"`
}

func (b Breakdown) Sum() float64 {
	return b.Rating + b.Sentiment + b.Volume + b.Budget + b.Preference
}

// Score returns the venue's smart score for f, an integer in [0, MaxScore].
// Out-of-range ratings or prices are not rejected; they only pull the score down.
func (e *Engine) Score(v domain.Venue, f domain.SearchFilters) int {
	total := math.Min(e.p.MaxScore, e.Breakdown(v, f).Sum())
	if total < 0 || math.IsNaN(total) {
		return 0
	}
	// round half up
	return int(math.Floor(total + 0.5))
}

func (e *Engine) Breakdown(v domain.Venue, f domain.SearchFilters) Breakdown {
	return Breakdown{
		Rating:     v.Rating / e.p.RatingScale * e.p.RatingWeight,
		Sentiment:  v.SentimentScore * e.p.SentimentWeight,
		Volume:     math.Min(e.p.VolumeCap, math.Log10(float64(v.ReviewCount)+1)*e.p.VolumeCoefficient),
		Budget:     e.budgetFit(v.AveragePrice, f.BudgetMin, f.BudgetMax),
		Preference: e.preferenceMatch(v.Keywords, f.Preferences),
	}
}

func (e *Engine) budgetFit(price, lo, hi float64) float64 {
	if price >= lo && price <= hi {
		return e.p.BudgetFit
	}
	dist := math.Min(math.Abs(price-lo), math.Abs(price-hi))
	return math.Max(0, e.p.BudgetFit-dist*e.p.BudgetPenalty)
}

// preferenceMatch counts preferences found as a case-insensitive substring of
// any keyword, so "spa" matches "spacious".
func (e *Engine) preferenceMatch(keywords, prefs []string) float64 {
	if len(prefs) == 0 {
		return 0
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	matched := 0
	for _, p := range prefs {
		p = strings.ToLower(p)
		for _, kw := range lowered {
			if strings.Contains(kw, p) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(prefs)) * e.p.PreferenceWeight
}
