package catalog

import (
	"fmt"

	"smart_places/internal/domain"
)

// Open returns the configured catalog source: "seed" (embedded or file) or "feed".
func Open(kind, file, feedBase, feedKey string, rps int) (domain.CatalogSource, error) {
	switch kind {
	case "", "seed":
		return NewSeed(file)
	case "feed":
		return New(feedBase, feedKey, rps)
	}
	return nil, fmt.Errorf("unknown catalog source %q", kind)
}
