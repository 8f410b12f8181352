package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"smart_places/internal/app"
	"smart_places/internal/domain"
	"smart_places/internal/ranking"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// placeView is a ranked venue plus everything the list card renders.
type placeView struct {
	domain.RankedVenue
	PriceLabel     string           `json:"priceLabel"`
	MatchLabel     string           `json:"matchLabel"`
	ScoreBand      string           `json:"scoreBand"`
	SentimentBadge domain.Sentiment `json:"sentimentBadge"`
	MapsURL        string           `json:"mapsUrl"`
}

type searchResponse struct {
	Filters domain.SearchFilters `json:"filters"`
	Share   string               `json:"share"` // canonical query string for these filters
	Total   int                  `json:"total"`
	Items   []placeView          `json:"items"`
}

type detailResponse struct {
	placeView
	Sentiment domain.SentimentAnalysis `json:"sentiment"`
}

type sentimentResponse struct {
	domain.SentimentAnalysis
	Display ranking.SentimentLabel `json:"display"`
}

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type metaResponse struct {
	Categories []option             `json:"categories"`
	SortKeys   []option             `json:"sortKeys"`
	PriceTiers []option             `json:"priceTiers"`
	Budget     budgetRange          `json:"budget"`
	Defaults   domain.SearchFilters `json:"defaults"`
}

type budgetRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var categoryLabels = map[domain.Category]string{
	domain.CategoryAll:        "All",
	domain.CategoryRestaurant: "Restaurants",
	domain.CategoryCafe:       "Cafés",
	domain.CategoryStreetFood: "Street Food",
	domain.CategoryBakery:     "Bakeries",
	domain.CategoryBar:        "Bars",
	domain.CategorySalon:      "Salons",
	domain.CategoryGym:        "Gyms",
	domain.CategorySpa:        "Spas",
}

var sortLabels = map[domain.SortKey]string{
	domain.SortSmartScore: "Smart Score",
	domain.SortRating:     "Highest Rated",
	domain.SortReviews:    "Most Reviewed",
	domain.SortPriceLow:   "Price: Low to High",
	domain.SortPriceHigh:  "Price: High to Low",
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/meta", h.meta)
	s.mux.Get("/v1/places", h.search)
	s.mux.Get("/v1/places/{id}", h.getPlace)
	s.mux.Get("/v1/places/{id}/sentiment", h.sentiment)
}

const problemContentType = "application/problem+json"

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeJSON sends v with a weak ETag, answering 304 when the client has it.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func viewOf(rv domain.RankedVenue) placeView {
	return placeView{
		RankedVenue:    rv,
		PriceLabel:     ranking.PriceTierLabel(rv.PriceTier),
		MatchLabel:     ranking.MatchLabel(rv.SmartScore),
		ScoreBand:      ranking.ScoreBand(rv.SmartScore),
		SentimentBadge: ranking.SentimentBadge(rv.SentimentScore),
		MapsURL:        ranking.MapsURL(rv.Venue),
	}
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilters(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filters", err.Error())
		return
	}
	res, err := h.Q.Search(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := searchResponse{
		Filters: res.Filters,
		Share:   FiltersQuery(res.Filters).Encode(),
		Total:   res.Total,
		Items:   make([]placeView, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		out.Items = append(out.Items, viewOf(it))
	}
	writeJSON(w, r, out)
}

// getPlace scores one venue against the filters in the query string, so a
// detail page opened from a search shows the same smart score.
func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilters(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filters", err.Error())
		return
	}
	v, err := h.Q.GetVenue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := h.Q.Engine()
	writeJSON(w, r, detailResponse{
		placeView: viewOf(domain.RankedVenue{Venue: v, SmartScore: e.Score(v, f)}),
		Sentiment: e.Analyze(v.Reviews),
	})
}

func (h *Handlers) sentiment(w http.ResponseWriter, r *http.Request) {
	sa, err := h.Q.VenueSentiment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, sentimentResponse{SentimentAnalysis: sa, Display: ranking.LabelFor(sa.Overall)})
}

func (h *Handlers) meta(w http.ResponseWriter, r *http.Request) {
	out := metaResponse{
		Categories: []option{{Value: string(domain.CategoryAll), Label: categoryLabels[domain.CategoryAll]}},
		Budget:     budgetRange{Min: domain.BudgetFloor, Max: domain.BudgetCeiling},
		Defaults:   domain.DefaultFilters(),
	}
	for _, c := range domain.Categories {
		out.Categories = append(out.Categories, option{Value: string(c), Label: categoryLabels[c]})
	}
	for _, k := range domain.SortKeys {
		out.SortKeys = append(out.SortKeys, option{Value: string(k), Label: sortLabels[k]})
	}
	for _, t := range domain.PriceTiers {
		out.PriceTiers = append(out.PriceTiers, option{Value: string(t), Label: ranking.PriceTierLabel(t)})
	}
	writeJSON(w, r, out)
}
