package ranking

import (
	"cmp"
	"slices"

	"smart_places/internal/domain"
)

// Analyze aggregates review sentiment with the default policy.
func Analyze(reviews []domain.Review) domain.SentimentAnalysis { return std.Analyze(reviews) }

// Analyze tallies the sentiment labels of reviews and collects their most
// frequent keywords. Neutral reviews weigh zero, negative ones count against
// positive ones. An empty input is neutral with score 0.5.
func (e *Engine) Analyze(reviews []domain.Review) domain.SentimentAnalysis {
	var out domain.SentimentAnalysis

	counts := make(map[string]int)
	var seen []string // first-encounter order
	for _, r := range reviews {
		switch r.Sentiment {
		case domain.SentimentPositive:
			out.PositiveCount++
		case domain.SentimentNeutral:
			out.NeutralCount++
		case domain.SentimentNegative:
			out.NegativeCount++
		}
		for _, kw := range r.Keywords {
			if _, ok := counts[kw]; !ok {
				seen = append(seen, kw)
			}
			counts[kw]++
		}
	}

	total := max(len(reviews), 1)
	raw := (float64(out.PositiveCount) - e.p.NegativeWeight*float64(out.NegativeCount)) / float64(total)

	switch {
	case raw > e.p.PositiveThreshold:
		out.Overall = domain.SentimentPositive
	case raw < e.p.NegativeThreshold:
		out.Overall = domain.SentimentNegative
	default:
		out.Overall = domain.SentimentNeutral
	}
	out.Score = clamp((raw+1)/2, 0, 1)

	slices.SortStableFunc(seen, func(a, b string) int { return cmp.Compare(counts[b], counts[a]) })
	out.TopKeywords = make([]string, 0, min(len(seen), e.p.TopKeywords))
	out.TopKeywords = append(out.TopKeywords, seen[:min(len(seen), e.p.TopKeywords)]...)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
