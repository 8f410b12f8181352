package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"smart_places/internal/domain"
)

//go:embed seed/places.json
var embedded []byte

// Seed serves a static catalog document: a JSON array of venue objects, each
// optionally carrying its reviews inline under "reviews".
type Seed struct {
	ids     []string
	records map[string]map[string]any
}

// NewSeed loads path, or the embedded Phnom Penh catalog when path is empty.
func NewSeed(path string) (*Seed, error) {
	b := embedded
	if path != "" {
		var err error
		if b, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}
	return ParseSeed(b)
}

func ParseSeed(b []byte) (*Seed, error) {
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	s := &Seed{records: make(map[string]map[string]any, len(raw))}
	for i, r := range raw {
		id := recordID(r)
		if id == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if _, dup := s.records[id]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, id)
		}
		s.ids = append(s.ids, id)
		s.records[id] = r
	}
	return s, nil
}

func (s *Seed) ListVenueIDs(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.ids...), nil
}

func (s *Seed) GetVenue(ctx context.Context, id string) (map[string]any, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make(map[string]any, len(r))
	for k, v := range r {
		if k != "reviews" {
			out[k] = v
		}
	}
	return out, nil
}

// GetReviews returns up to count inline reviews; count <= 0 means all.
func (s *Seed) GetReviews(ctx context.Context, id string, count int) ([]map[string]any, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	raw, _ := r["reviews"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
		if count > 0 && len(out) == count {
			break
		}
	}
	return out, nil
}

func recordID(r map[string]any) string {
	switch v := r["id"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	}
	return ""
}
