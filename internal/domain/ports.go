package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidRecord = errors.New("invalid record")
)

type VenueRepository interface {
	// Write paths
	UpsertVenue(ctx context.Context, v Venue) error
	UpsertReviews(ctx context.Context, venueID string, rs []Review) error
	LogMiss(ctx context.Context, id string, status int, reason string) error
	DeleteVenue(ctx context.Context, id string) error // no error when absent

	// Read paths
	GetVenue(ctx context.Context, id string) (Venue, error)
	ListVenues(ctx context.Context) ([]Venue, error)
}

// CatalogSource yields raw venue records from wherever the catalog lives
// (embedded seed file, remote feed).
type CatalogSource interface {
	ListVenueIDs(ctx context.Context) ([]string, error)
	GetVenue(ctx context.Context, id string) (map[string]any, error)
	GetReviews(ctx context.Context, id string, count int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	DelPrefix(ctx context.Context, prefix string) error
}

// Read models
type SearchResult struct {
	Filters SearchFilters `json:"filters"`
	Total   int           `json:"total"`
	Items   []RankedVenue `json:"items"`
}
