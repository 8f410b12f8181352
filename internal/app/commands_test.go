package app_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"smart_places/internal/app"
	"smart_places/internal/domain"
	"smart_places/internal/storage/memory"
)

func source() *fakeSource {
	return &fakeSource{
		ids: []string{"1", "2", "3", "4"},
		venues: map[string]map[string]any{
			"1": {"id": "1", "name": "Golden Spoon Café", "category": "Café", "cuisine": "Khmer",
				"price_range": "$", "average_price": "6", "rating": 4.7, "review_count": 12.0,
				"coordinates": map[string]any{"lat": 11.56, "lng": 104.93}, "keywords": []any{"coffee", "wifi"}},
			"2": {"id": "2", "name": "Nowhere", "category": "spaceship"},
			"4": {"id": "4", "name": "Quiet Spa", "category": "spa"},
		},
		reviews: map[string][]map[string]any{
			"1": {
				{"id": "r1", "text": "great", "sentiment": "positive", "keywords": []any{"coffee"}},
				{"id": "r2", "text": "fine", "rating": 3.0},
				{"id": "r3", "text": "no label, no rating"},
			},
		},
		reviewErr: map[string]error{"4": domain.ErrForbidden},
	}
}

func TestIngestVenue_MapsValidatesAndRecomputesSentiment(t *testing.T) {
	repo := newFakeRepo()
	ing := app.NewIngestionService(source(), repo, nil, nil)

	if err := ing.IngestVenue(context.Background(), "1", 50); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	v, err := repo.GetVenue(context.Background(), "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.Category != domain.CategoryCafe || v.PriceTier != domain.PriceBudget || v.AveragePrice != 6 {
		t.Fatalf("unexpected mapping: %+v", v)
	}
	if v.Coords.Lat != 11.56 || len(v.Keywords) != 2 || v.ReviewCount != 12 {
		t.Fatalf("unexpected mapping: %+v", v)
	}
	// r3 has neither label nor rating and is dropped; r2 is neutral from its rating
	if len(v.Reviews) != 2 || v.Reviews[1].Sentiment != domain.SentimentNeutral {
		t.Fatalf("unexpected reviews: %+v", v.Reviews)
	}
	// one positive, one neutral: raw 0.5 -> score 0.75
	if v.SentimentScore != 0.75 {
		t.Fatalf("sentiment not recomputed: %v", v.SentimentScore)
	}
}

func TestIngestVenue_NotFoundIsAMiss(t *testing.T) {
	repo := newFakeRepo()
	ing := app.NewIngestionService(source(), repo, nil, nil)

	if err := ing.IngestVenue(context.Background(), "3", 50); err != nil {
		t.Fatalf("miss should not be an error: %v", err)
	}
	if len(repo.misses) != 1 || repo.misses[0].status != http.StatusNotFound {
		t.Fatalf("expected a 404 miss, got %+v", repo.misses)
	}
}

func TestIngestVenue_MissDropsStoredVenue(t *testing.T) {
	src := source()
	repo := newFakeRepo()
	cache := newFakeCache()
	q := app.NewQueryService(repo, cache, time.Minute, nil)
	ing := app.NewIngestionService(src, repo, cache, nil)
	ctx := context.Background()

	if err := ing.IngestVenue(ctx, "1", 50); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res, _ := q.Search(ctx, domain.DefaultFilters()); res.Total != 1 {
		t.Fatalf("expected the venue to be searchable, got %+v", res)
	}

	// the feed now hides the venue
	src.venueErr = map[string]error{"1": domain.ErrForbidden}
	if err := ing.IngestVenue(ctx, "1", 50); err != nil {
		t.Fatalf("miss should not be an error: %v", err)
	}
	if _, err := repo.GetVenue(ctx, "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("venue should be gone, got %v", err)
	}
	if res, _ := q.Search(ctx, domain.DefaultFilters()); res.Total != 0 {
		t.Fatalf("venue still listed: %+v", res)
	}
	if n := len(repo.misses); n == 0 || repo.misses[n-1].status != http.StatusForbidden {
		t.Fatalf("expected a 403 miss, got %+v", repo.misses)
	}
}

func TestIngestVenue_InvalidRecord(t *testing.T) {
	repo := newFakeRepo()
	ing := app.NewIngestionService(source(), repo, nil, nil)

	err := ing.IngestVenue(context.Background(), "2", 50)
	if !errors.Is(err, domain.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if _, err := repo.GetVenue(context.Background(), "2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("invalid venue must not be stored")
	}
	if len(repo.misses) != 1 || repo.misses[0].status != http.StatusUnprocessableEntity {
		t.Fatalf("expected a 422 miss, got %+v", repo.misses)
	}
}

func TestIngestVenue_ForbiddenReviewsStillStoresVenue(t *testing.T) {
	repo := newFakeRepo()
	ing := app.NewIngestionService(source(), repo, nil, nil)

	if err := ing.IngestVenue(context.Background(), "4", 50); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := repo.GetVenue(context.Background(), "4"); err != nil {
		t.Fatalf("venue should be stored: %v", err)
	}
	if len(repo.misses) != 1 || repo.misses[0].reason != "reviews" {
		t.Fatalf("expected reviews miss, got %+v", repo.misses)
	}
}

func TestIngestVenue_SourceErrorSurfaces(t *testing.T) {
	src := source()
	src.venueErr = map[string]error{"1": errors.New("connection reset")}
	ing := app.NewIngestionService(src, newFakeRepo(), nil, nil)

	if err := ing.IngestVenue(context.Background(), "1", 50); err == nil {
		t.Fatalf("expected error")
	}
}

func TestIngestVenue_InvalidatesCache(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	q := app.NewQueryService(repo, cache, time.Minute, nil)
	ing := app.NewIngestionService(source(), repo, cache, nil)
	ctx := context.Background()

	if _, err := q.Search(ctx, domain.DefaultFilters()); err != nil {
		t.Fatalf("search: %v", err)
	}
	if cache.keys("search:") != 1 {
		t.Fatalf("expected a cached search page")
	}
	if err := ing.IngestVenue(ctx, "1", 50); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if cache.keys("search:") != 0 {
		t.Fatalf("search pages should be invalidated")
	}
	res, _ := q.Search(ctx, domain.DefaultFilters())
	if res.Total != 1 {
		t.Fatalf("expected fresh result with the new venue, got %+v", res)
	}
}

func TestIngestAll_CountsOutcomes(t *testing.T) {
	repo := newFakeRepo()
	ing := app.NewIngestionService(source(), repo, nil, nil)

	stats, err := ing.IngestAll(context.Background(), 2, 50)
	if err != nil {
		t.Fatalf("ingest all: %v", err)
	}
	want := app.IngestStats{OK: 2, Missed: 1, Invalid: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
	vs, _ := repo.ListVenues(context.Background())
	if len(vs) != 2 {
		t.Fatalf("expected 2 stored venues, got %d", len(vs))
	}
}

func TestIngestAll_KeepsSourceOrderAcrossWorkers(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	src := &slowSource{
		fakeSource: &fakeSource{ids: ids, venues: map[string]map[string]any{}},
		// earlier ids take longer, so they finish last
		delay: map[string]time.Duration{"a": 60 * time.Millisecond, "b": 40 * time.Millisecond, "c": 20 * time.Millisecond},
	}
	for _, id := range ids {
		src.venues[id] = map[string]any{"id": id, "name": "Venue " + id, "category": "cafe"}
	}
	repo := memory.New()
	ing := app.NewIngestionService(src, repo, nil, nil)
	ctx := context.Background()

	stats, err := ing.IngestAll(ctx, len(ids), 0)
	if err != nil || stats.OK != len(ids) {
		t.Fatalf("ingest all: stats=%+v err=%v", stats, err)
	}
	vs, _ := repo.ListVenues(ctx)
	var got []string
	for _, v := range vs {
		got = append(got, v.ID)
	}
	if len(got) != len(ids) || got[0] != "a" || got[1] != "b" || got[2] != "c" || got[3] != "d" {
		t.Fatalf("catalog order = %v, want %v", got, ids)
	}

	// a single-venue refresh keeps its slot
	if err := ing.IngestVenue(ctx, "a", 0); err != nil {
		t.Fatalf("ingest venue: %v", err)
	}
	vs, _ = repo.ListVenues(ctx)
	if vs[0].ID != "a" {
		t.Fatalf("refreshed venue moved: first is %s", vs[0].ID)
	}
}
