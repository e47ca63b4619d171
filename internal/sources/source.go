package sources

import (
	"context"
	"encoding/json"

	"github.com/user/catalogs/internal/catalog"
)

// Options carries catalog-specific search parameters.
type Options struct {
	// Radius limits event searches around the queried city. Ignored by other catalogs.
	Radius string
}

// Source defines the interface for a remote catalog
type Source interface {
	// Kind returns the catalog this source searches
	Kind() catalog.Kind
	// Fetch performs one remote search and returns the raw records in response order
	Fetch(ctx context.Context, query string, opts Options) ([]json.RawMessage, error)
	// Map converts one raw record into an Item without identity
	Map(raw json.RawMessage) (catalog.Item, error)
}
