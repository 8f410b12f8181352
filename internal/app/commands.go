package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"smart_places/internal/adapters/observability"
	"smart_places/internal/domain"
	"smart_places/internal/ranking"
)

var validate = validator.New()

type IngestionService struct {
	src    domain.CatalogSource
	repo   domain.VenueRepository
	cache  domain.Cache
	engine *ranking.Engine
}

// NewIngestionService wires a catalog source to a repository. cache may be nil;
// a nil engine uses the default ranking policy.
func NewIngestionService(src domain.CatalogSource, r domain.VenueRepository, cache domain.Cache, e *ranking.Engine) *IngestionService {
	if e == nil {
		e = ranking.New(ranking.DefaultPolicy())
	}
	return &IngestionService{src: src, repo: r, cache: cache, engine: e}
}

// IngestStats counts venue outcomes of one IngestAll run.
type IngestStats struct {
	OK      int
	Missed  int
	Invalid int
	Failed  int
}

// IngestAll ingests every venue the source lists, at most workers at a time.
// Per-venue failures are logged and counted; only listing or ctx errors are returned.
func (s *IngestionService) IngestAll(ctx context.Context, workers, reviewCount int) (IngestStats, error) {
	ids, err := s.src.ListVenueIDs(ctx)
	if err != nil {
		return IngestStats{}, fmt.Errorf("list venues: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		stats IngestStats
	)
	for pos, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return stats, err
		}
		wg.Add(1)
		go func(pos int, id string) {
			defer wg.Done()
			defer sem.Release(1)

			outcome, err := s.ingest(ctx, id, pos, reviewCount)
			mu.Lock()
			switch outcome {
			case "ok":
				stats.OK++
			case "miss":
				stats.Missed++
			case "invalid":
				stats.Invalid++
			default:
				stats.Failed++
			}
			mu.Unlock()
			if err != nil {
				log.Warn().Str("id", id).Err(err).Msg("ingest failed")
				return
			}
			log.Debug().Str("id", id).Str("outcome", outcome).Msg("ingest done")
		}(pos, id)
	}
	wg.Wait()
	return stats, nil
}

// IngestVenue pulls one venue and its reviews into the repository, keeping
// the venue's stored catalog position. Unknown or forbidden venues are
// recorded as misses, and any stored copy is removed; neither is an error.
func (s *IngestionService) IngestVenue(ctx context.Context, id string, reviewCount int) error {
	_, err := s.ingest(ctx, id, -1, reviewCount)
	return err
}

func (s *IngestionService) ingest(ctx context.Context, id string, pos, reviewCount int) (outcome string, err error) {
	defer func() { observability.ObserveIngest(outcome) }()

	raw, err := s.src.GetVenue(ctx, id)
	if err != nil {
		if status, reason, ok := missOf(err); ok {
			_ = s.repo.LogMiss(ctx, id, status, reason)
			if err := s.repo.DeleteVenue(ctx, id); err != nil {
				return "error", fmt.Errorf("drop venue %s: %w", id, err)
			}
			s.invalidate(ctx, id)
			return "miss", nil
		}
		return "error", fmt.Errorf("fetch venue %s: %w", id, err)
	}

	v := mapVenue(raw)
	if v.ID == "" {
		v.ID = id
	}
	v.Position = pos

	// Reviews are best-effort: a missing review list still ingests the venue.
	var reviews []domain.Review
	if rs, rerr := s.src.GetReviews(ctx, id, reviewCount); rerr != nil {
		status, _, ok := missOf(rerr)
		if !ok {
			return "error", fmt.Errorf("fetch reviews %s: %w", id, rerr)
		}
		_ = s.repo.LogMiss(ctx, id, status, "reviews")
	} else {
		reviews = s.validReviews(v.ID, mapReviews(v.ID, rs))
	}

	if len(reviews) > 0 {
		v.SentimentScore = s.engine.Analyze(reviews).Score
		if v.ReviewCount < len(reviews) {
			v.ReviewCount = len(reviews)
		}
	}
	v.Reviews = reviews

	if err := validate.Struct(v); err != nil {
		_ = s.repo.LogMiss(ctx, id, http.StatusUnprocessableEntity, "invalid: "+err.Error())
		return "invalid", fmt.Errorf("venue %s: %w: %v", id, domain.ErrInvalidRecord, err)
	}

	if err := s.repo.UpsertVenue(ctx, v); err != nil {
		return "error", fmt.Errorf("upsert venue %s: %w", v.ID, err)
	}
	if err := s.repo.UpsertReviews(ctx, v.ID, reviews); err != nil {
		return "error", fmt.Errorf("upsert reviews %s: %w", v.ID, err)
	}
	s.invalidate(ctx, v.ID)
	return "ok", nil
}

func (s *IngestionService) validReviews(venueID string, in []domain.Review) []domain.Review {
	out := in[:0]
	for _, r := range in {
		if err := validate.Struct(r); err != nil {
			log.Debug().Str("venue", venueID).Str("review", r.ID).Err(err).Msg("review dropped")
			continue
		}
		out = append(out, r)
	}
	return out
}

// missOf classifies source errors that mean "this venue is not available".
func missOf(err error) (status int, reason string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", true
	}
	return 0, "", false
}

// invalidate drops the venue entry and every cached search page, since any
// venue change can reorder rankings.
func (s *IngestionService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, venueKey(id)); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("cache del failed")
	}
	if err := s.cache.DelPrefix(ctx, searchPrefix); err != nil {
		log.Warn().Err(err).Msg("cache prefix del failed")
	}
}
