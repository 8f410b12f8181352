package app_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"smart_places/internal/domain"
)

// ---- fakes ----

type miss struct {
	id     string
	status int
	reason string
}

type fakeRepo struct {
	mu       sync.Mutex
	venues   map[string]domain.Venue
	order    []string
	reviews  map[string][]domain.Review
	misses   []miss
	listHits int
}

func newFakeRepo(vs ...domain.Venue) *fakeRepo {
	r := &fakeRepo{venues: map[string]domain.Venue{}, reviews: map[string][]domain.Review{}}
	for _, v := range vs {
		_ = r.UpsertVenue(context.Background(), v)
		_ = r.UpsertReviews(context.Background(), v.ID, v.Reviews)
	}
	return r
}

func (f *fakeRepo) UpsertVenue(ctx context.Context, v domain.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.venues[v.ID]; !ok {
		f.order = append(f.order, v.ID)
	}
	v.Reviews = nil
	f.venues[v.ID] = v
	return nil
}

func (f *fakeRepo) UpsertReviews(ctx context.Context, id string, rs []domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews[id] = append([]domain.Review(nil), rs...)
	return nil
}

func (f *fakeRepo) LogMiss(ctx context.Context, id string, status int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.misses = append(f.misses, miss{id, status, reason})
	return nil
}

func (f *fakeRepo) DeleteVenue(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.venues, id)
	delete(f.reviews, id)
	f.order = slices.DeleteFunc(f.order, func(s string) bool { return s == id })
	return nil
}

func (f *fakeRepo) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[id]
	if !ok {
		return domain.Venue{}, domain.ErrNotFound
	}
	v.Reviews = f.reviews[id]
	return v, nil
}

func (f *fakeRepo) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listHits++
	out := make([]domain.Venue, 0, len(f.order))
	for _, id := range f.order {
		v := f.venues[id]
		v.Reviews = f.reviews[id]
		out = append(out, v)
	}
	return out, nil
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) DelPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
		}
	}
	return nil
}

func (c *fakeCache) keys(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

type fakeSource struct {
	ids       []string
	venues    map[string]map[string]any
	reviews   map[string][]map[string]any
	venueErr  map[string]error
	reviewErr map[string]error
}

func (s *fakeSource) ListVenueIDs(ctx context.Context) ([]string, error) { return s.ids, nil }

func (s *fakeSource) GetVenue(ctx context.Context, id string) (map[string]any, error) {
	if err := s.venueErr[id]; err != nil {
		return nil, err
	}
	v, ok := s.venues[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (s *fakeSource) GetReviews(ctx context.Context, id string, count int) ([]map[string]any, error) {
	if err := s.reviewErr[id]; err != nil {
		return nil, err
	}
	return s.reviews[id], nil
}

// slowSource delays GetVenue per id, so concurrent fetches finish out of order.
type slowSource struct {
	*fakeSource
	delay map[string]time.Duration
}

func (s *slowSource) GetVenue(ctx context.Context, id string) (map[string]any, error) {
	select {
	case <-time.After(s.delay[id]):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.fakeSource.GetVenue(ctx, id)
}
