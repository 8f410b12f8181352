// Package memory is a process-local VenueRepository used when no database is
// configured. Venues list by catalog position, then first-insert order.
package memory

import (
	"cmp"
	"context"
	"maps"
	"math"
	"slices"
	"sync"

	"smart_places/internal/domain"
)

type Miss struct {
	ID     string
	Status int
	Reason string
}

// slot is where a venue lists: by pos (unset when negative), then by seq.
type slot struct {
	pos int
	seq int
}

func (s slot) compare(o slot) int {
	return cmp.Or(cmp.Compare(s.rank(), o.rank()), cmp.Compare(s.seq, o.seq))
}

func (s slot) rank() int {
	if s.pos < 0 {
		return math.MaxInt
	}
	return s.pos
}

type Repo struct {
	mu      sync.RWMutex
	seq     int
	slots   map[string]slot
	venues  map[string]domain.Venue
	reviews map[string][]domain.Review
	misses  map[string]Miss
}

func New() *Repo {
	return &Repo{
		slots:   make(map[string]slot),
		venues:  make(map[string]domain.Venue),
		reviews: make(map[string][]domain.Review),
		misses:  make(map[string]Miss),
	}
}

func (r *Repo) UpsertVenue(ctx context.Context, v domain.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sl, ok := r.slots[v.ID]
	if !ok {
		r.seq++
		sl = slot{pos: -1, seq: r.seq}
	}
	if v.Position >= 0 {
		sl.pos = v.Position
	}
	r.slots[v.ID] = sl
	v.Position = sl.pos
	v.Reviews = nil
	v.Keywords = slices.Clone(v.Keywords)
	r.venues[v.ID] = v
	return nil
}

// UpsertReviews replaces the stored reviews of a venue.
func (r *Repo) UpsertReviews(ctx context.Context, venueID string, rs []domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]domain.Review, len(rs))
	for i, rv := range rs {
		rv.VenueID = venueID
		rv.Keywords = slices.Clone(rv.Keywords)
		cp[i] = rv
	}
	r.reviews[venueID] = cp
	return nil
}

func (r *Repo) LogMiss(ctx context.Context, id string, status int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses[id] = Miss{ID: id, Status: status, Reason: reason}
	return nil
}

func (r *Repo) DeleteVenue(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, id)
	delete(r.venues, id)
	delete(r.reviews, id)
	return nil
}

func (r *Repo) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.venues[id]; !ok {
		return domain.Venue{}, domain.ErrNotFound
	}
	return r.assemble(id), nil
}

func (r *Repo) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := slices.SortedFunc(maps.Keys(r.slots), func(a, b string) int {
		return r.slots[a].compare(r.slots[b])
	})
	out := make([]domain.Venue, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.assemble(id))
	}
	return out, nil
}

// Misses returns the recorded misses keyed by venue id.
func (r *Repo) Misses() map[string]Miss {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.misses)
}

// assemble returns a copy the caller may modify freely.
func (r *Repo) assemble(id string) domain.Venue {
	v := r.venues[id]
	v.Keywords = slices.Clone(v.Keywords)
	if v.Keywords == nil {
		v.Keywords = []string{}
	}
	rs := r.reviews[id]
	v.Reviews = make([]domain.Review, len(rs))
	for i, rv := range rs {
		rv.Keywords = slices.Clone(rv.Keywords)
		v.Reviews[i] = rv
	}
	return v
}
