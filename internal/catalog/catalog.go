// apps/go-server/internal/catalog/catalog.go
//
// Creature catalog lookup.
// Defines:
//   - Creature: display record for a single catalog entry.
//   - Client: the lookup capability used by team selection and round reveals.
//   - ErrUnavailable: every failed lookup, whatever the cause, wraps this.

package catalog

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a lookup cannot be completed.
var ErrUnavailable = errors.New("catalog unavailable")

// Creature is the display metadata for a catalog entry.
type Creature struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Client resolves a numeric creature identifier into its display record.
type Client interface {
	Fetch(ctx context.Context, id int) (Creature, error)
}
