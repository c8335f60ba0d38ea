// apps/go-server/internal/team/team.go
//
// Team selection for new games.
// Responsibilities:
//   - Draw a fixed number of independent creature ids (with replacement).
//   - Resolve every id through the catalog concurrently.
//   - Fail the whole selection if any lookup fails (no partial teams).

package team

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/pokesimon/apps/go-server/internal/catalog"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/random"
)

// DefaultSize is the number of creatures in a starting team.
const DefaultSize = 6

// Range is the inclusive id range draws are taken from.
type Range struct {
	Min int
	Max int
}

// Selector picks random teams.
type Selector struct {
	catalog catalog.Client
	src     random.Source
	ids     Range
}

// NewSelector wires a Selector. src defaults to random.Crypto().
func NewSelector(c catalog.Client, src random.Source, ids Range) *Selector {
	if src == nil {
		src = random.Crypto()
	}
	return &Selector{catalog: c, src: src, ids: ids}
}

// Select draws size ids and resolves them in draw order.
// size <= 0 falls back to DefaultSize.
func (s *Selector) Select(ctx context.Context, size int) ([]catalog.Creature, error) {
	if size <= 0 {
		size = DefaultSize
	}

	// Draw everything up front so a bad range fails before any lookup.
	ids := make([]int, size)
	for i := range ids {
		id, err := random.Draw(s.src, s.ids.Min, s.ids.Max)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return s.Resolve(ctx, ids)
}

// Resolve looks up ids concurrently. The first failure cancels the
// remaining lookups and is returned as-is.
func (s *Selector) Resolve(ctx context.Context, ids []int) ([]catalog.Creature, error) {
	out := make([]catalog.Creature, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			cr, err := s.catalog.Fetch(gctx, id)
			if err != nil {
				return fmt.Errorf("resolve team slot %d: %w", i, err)
			}
			out[i] = cr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
