// apps/go-server/internal/game/types.go
//
// Core type definitions for the memory game engine.
// Defines:
//   - Outcome: result of a single round (continue/win/lose).
//   - Session: state for a single in-progress or finished game.
//   - Rules: team size, sequence cap and id range for draws.
//   - RoundResult: what a round hands back to the caller.

package game

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/robalobadob/pokesimon/apps/go-server/internal/catalog"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/random"
)

// Outcome represents the evaluation result of one round.
//   - "continue": pick matched, the sequence grew by one.
//   - "win":      pick matched and the sequence is at its cap.
//   - "lose":     pick did not match the last revealed creature.
type Outcome string

const (
	OutcomeContinue Outcome = "continue"
	OutcomeWin      Outcome = "win"
	OutcomeLose     Outcome = "lose"
)

// Terminal reports whether no further rounds change the session.
func (o Outcome) Terminal() bool { return o == OutcomeWin || o == OutcomeLose }

var (
	// ErrNotFound is returned when a session id does not resolve.
	ErrNotFound = errors.New("session not found")
	// ErrPersistence is returned when the store rejects a read or write.
	ErrPersistence = errors.New("persistence error")
	// ErrInvalidTeam is returned when a starting team has the wrong size.
	ErrInvalidTeam = errors.New("invalid team")
)

// Session holds the state of a single game.
type Session struct {
	ID          string             `json:"id"`              // Assigned by the store on Create.
	InitialTeam []catalog.Creature `json:"initialTeam"`     // Fixed at creation.
	Sequence    []int              `json:"pokemonSequence"` // Append-only target sequence.
	Status      Outcome            `json:"status"`          // continue while playing; win/lose once finished.
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.InitialTeam = slices.Clone(s.InitialTeam)
	c.Sequence = slices.Clone(s.Sequence)
	if c.Sequence == nil {
		c.Sequence = []int{}
	}
	return &c
}

// Finished returns a copy of s with its terminal outcome recorded.
func (s *Session) Finished(out Outcome, at time.Time) *Session {
	c := s.Clone()
	c.Status = out
	c.UpdatedAt = at
	return c
}

// Appended returns a copy of s with pick added to the end of the sequence.
func (s *Session) Appended(pick int, at time.Time) *Session {
	c := s.Clone()
	c.Sequence = append(c.Sequence, pick)
	c.UpdatedAt = at
	return c
}

// Rules parameterize an Engine.
type Rules struct {
	TeamSize    int `json:"teamSize"`    // Creatures in the starting team (6).
	MaxSequence int `json:"maxSequence"` // Sequence length at which a correct pick wins (10).
	MinID       int `json:"minId"`       // Inclusive catalog id range for sequence draws.
	MaxID       int `json:"maxId"`
}

// DefaultRules matches the classic game: six creatures, ten rounds, gens 1-8.
func DefaultRules() Rules {
	return Rules{TeamSize: 6, MaxSequence: 10, MinID: 1, MaxID: 898}
}

// Validate checks that the rules can drive a game.
func (r Rules) Validate() error {
	if r.TeamSize <= 0 {
		return fmt.Errorf("team size must be positive, got %d", r.TeamSize)
	}
	if r.MaxSequence <= 0 {
		return fmt.Errorf("max sequence must be positive, got %d", r.MaxSequence)
	}
	if r.MinID < 1 {
		return fmt.Errorf("%w: catalog ids start at 1, got %d", random.ErrInvalidRange, r.MinID)
	}
	if r.MinID > r.MaxID {
		return fmt.Errorf("%w (%d > %d)", random.ErrInvalidRange, r.MinID, r.MaxID)
	}
	return nil
}

// RoundResult is returned by round evaluation.
type RoundResult struct {
	Outcome  Outcome           `json:"result"`
	Sequence []int             `json:"pokemonSequence"`
	Revealed *catalog.Creature `json:"revealed,omitempty"` // Set on continue when a catalog is wired.
}
