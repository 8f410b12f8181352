package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"smart_places/internal/adapters/observability"
	"smart_places/internal/domain"
	"smart_places/internal/ranking"
)

const (
	searchPrefix = "search:"
	venuePrefix  = "venue:"
)

func venueKey(id string) string { return venuePrefix + id }

// searchKey hashes the canonical JSON of f, so equal filters share a page.
func searchKey(f domain.SearchFilters) string {
	b, _ := json.Marshal(f)
	sum := sha1.Sum(b)
	return searchPrefix + hex.EncodeToString(sum[:])
}

type QueryService struct {
	repo     domain.VenueRepository
	cache    domain.Cache
	cacheTTL time.Duration
	engine   *ranking.Engine
}

// NewQueryService builds the read side. c may be nil to disable caching;
// a nil engine uses the default ranking policy.
func NewQueryService(r domain.VenueRepository, c domain.Cache, ttl time.Duration, e *ranking.Engine) *QueryService {
	if e == nil {
		e = ranking.New(ranking.DefaultPolicy())
	}
	return &QueryService{repo: r, cache: c, cacheTTL: ttl, engine: e}
}

func (s *QueryService) Engine() *ranking.Engine { return s.engine }

// Search ranks the whole catalog against f.
func (s *QueryService) Search(ctx context.Context, f domain.SearchFilters) (domain.SearchResult, error) {
	key := searchKey(f)
	var out domain.SearchResult
	if s.cached(ctx, key, &out) {
		return out, nil
	}

	vs, err := s.repo.ListVenues(ctx)
	if err != nil {
		return domain.SearchResult{}, err
	}

	start := time.Now()
	items := s.engine.Apply(vs, f)
	observability.ObserveRanking(string(f.SortBy), len(items), time.Since(start))

	out = domain.SearchResult{Filters: f, Total: len(items), Items: items}
	s.store(ctx, key, out)
	return out, nil
}

func (s *QueryService) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	key := venueKey(id)
	var v domain.Venue
	if s.cached(ctx, key, &v) {
		return v, nil
	}
	v, err := s.repo.GetVenue(ctx, id)
	if err != nil {
		return domain.Venue{}, err
	}
	s.store(ctx, key, v)
	return v, nil
}

// VenueSentiment aggregates the stored reviews of one venue.
func (s *QueryService) VenueSentiment(ctx context.Context, id string) (domain.SentimentAnalysis, error) {
	v, err := s.GetVenue(ctx, id)
	if err != nil {
		return domain.SentimentAnalysis{}, err
	}
	return s.engine.Analyze(v.Reviews), nil
}

func (s *QueryService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	return ok
}

func (s *QueryService) store(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}
