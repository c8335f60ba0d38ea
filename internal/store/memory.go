// apps/go-server/internal/store/memory.go
//
// In-memory implementation of the game.Store interface.
// Used when DB_PATH is empty (development/testing) or durability is not required.
//
// Characteristics:
//   - Stores *game.Session values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Hands out copies, so callers never alias stored state.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/pokesimon/apps/go-server/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex             // guards sessions map
	sessions map[string]*game.Session // keyed by Session.ID
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() game.Store {
	return &memory{sessions: make(map[string]*game.Session), now: utcNow}
}

// Create assigns an id and stores a copy of s. A caller-chosen id that is
// already taken is rejected, matching the SQLite primary key.
func (m *memory) Create(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.sessions[s.ID]; s.ID != "" && taken {
		return fmt.Errorf("%w: session %s already exists", game.ErrPersistence, s.ID)
	}
	stamp(s, m.now())
	m.sessions[s.ID] = s.Clone()
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s.Clone(), nil
	}
	return nil, game.ErrNotFound
}

// Append grows the sequence under the write lock.
func (m *memory) Append(ctx context.Context, id string, pick int) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, game.ErrNotFound
	}
	next := s.Appended(pick, m.now())
	m.sessions[id] = next
	return next.Clone(), nil
}

// Finish records a terminal outcome under the write lock.
func (m *memory) Finish(ctx context.Context, id string, out game.Outcome) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, game.ErrNotFound
	}
	next := s.Finished(out, m.now())
	m.sessions[id] = next
	return next.Clone(), nil
}

// stamp fills in identity and timestamps for a new session.
func stamp(s *game.Session, now time.Time) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Sequence == nil {
		s.Sequence = []int{}
	}
	if s.Status == "" {
		s.Status = game.OutcomeContinue
	}
	s.CreatedAt = now
	s.UpdatedAt = now
}

func utcNow() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
