// Package ranking turns a venue catalog and a SearchFilters snapshot into a
// ranked list. Everything here is pure: no I/O, no shared state, inputs are
// never modified.
package ranking

// Policy holds the constants of the sentiment and smart score formulas.
// DefaultPolicy reproduces the shipped ranking; the coefficients are tunable,
// not derived.
type Policy struct {
	// Sentiment analyzer
	NegativeWeight    float64 `koanf:"negative_weight"`
	PositiveThreshold float64 `koanf:"positive_threshold"`
	NegativeThreshold float64 `koanf:"negative_threshold"`
	TopKeywords       int     `koanf:"top_keywords"`

	// Smart score terms
	RatingWeight      float64 `koanf:"rating_weight"`
	RatingScale       float64 `koanf:"rating_scale"`
	SentimentWeight   float64 `koanf:"sentiment_weight"`
	VolumeCap         float64 `koanf:"volume_cap"`
	VolumeCoefficient float64 `koanf:"volume_coefficient"`
	BudgetFit         float64 `koanf:"budget_fit"`
	BudgetPenalty     float64 `koanf:"budget_penalty"`
	PreferenceWeight  float64 `koanf:"preference_weight"`
	MaxScore          float64 `koanf:"max_score"`
}

func DefaultPolicy() Policy {
	return Policy{
		NegativeWeight:    0.5,
		PositiveThreshold: 0.3,
		NegativeThreshold: -0.1,
		TopKeywords:       5,

		RatingWeight:      40,
		RatingScale:       5,
		SentimentWeight:   30,
		VolumeCap:         15,
		VolumeCoefficient: 5,
		BudgetFit:         15,
		BudgetPenalty:     2,
		PreferenceWeight:  10,
		MaxScore:          100,
	}
}

// Engine applies one Policy. The zero value is not usable; use New.
type Engine struct{ p Policy }

func New(p Policy) *Engine {
	if p.RatingScale <= 0 {
		p.RatingScale = 5
	}
	if p.TopKeywords < 0 {
		p.TopKeywords = 0
	}
	return &Engine{p: p}
}

func (e *Engine) Policy() Policy { return e.p }

var std = New(DefaultPolicy())
