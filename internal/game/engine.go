// apps/go-server/internal/game/engine.go
//
// Game engine orchestrating sessions on top of a Store.
// Responsibilities:
//   - Create sessions from a resolved starting team (empty sequence).
//   - Start games end to end via a TeamSelector.
//   - Evaluate rounds: load, judge, draw + reveal + append on continue,
//     record the outcome on win/lose.
//   - Finished sessions answer every later round with their stored outcome.
//
// Notes:
//   - The engine holds no locks; store operations are the atomic units.
//   - Nothing is written unless every step before the write succeeded.
//   - Failures are returned, never logged and swallowed.

package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pokesimon/apps/go-server/internal/catalog"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/random"
)

// Store defines the persistence interface for sessions.
// Implementations live in the store package (memory, SQLite).
type Store interface {
	// Create assigns an id and timestamps to s and persists it.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by id. Missing ids return ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Append adds pick to the end of the sequence and returns the updated
	// session. Missing ids return ErrNotFound.
	Append(ctx context.Context, id string, pick int) (*Session, error)

	// Finish records a terminal outcome and returns the updated session.
	// Missing ids return ErrNotFound.
	Finish(ctx context.Context, id string, out Outcome) (*Session, error)
}

// TeamSelector picks a starting team.
type TeamSelector interface {
	Select(ctx context.Context, size int) ([]catalog.Creature, error)
}

// Engine runs games.
type Engine struct {
	store   Store
	team    TeamSelector
	catalog catalog.Client
	src     random.Source
	rules   Rules
}

// Option customizes an Engine.
type Option func(*Engine)

// WithTeamSelector enables Start.
func WithTeamSelector(t TeamSelector) Option { return func(e *Engine) { e.team = t } }

// WithCatalog resolves each newly revealed creature for display.
func WithCatalog(c catalog.Client) Option { return func(e *Engine) { e.catalog = c } }

// WithSource overrides the random source used for sequence draws.
func WithSource(src random.Source) Option { return func(e *Engine) { e.src = src } }

// NewEngine constructs an Engine over st.
func NewEngine(st Store, rules Rules, opts ...Option) *Engine {
	e := &Engine{store: st, rules: rules, src: random.Crypto()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Rules returns the engine's configured rules.
func (e *Engine) Rules() Rules { return e.rules }

// Create persists a new session with the given starting team.
func (e *Engine) Create(ctx context.Context, team []catalog.Creature) (*Session, error) {
	if len(team) != e.rules.TeamSize {
		return nil, fmt.Errorf("%w: got %d creatures, want %d", ErrInvalidTeam, len(team), e.rules.TeamSize)
	}
	s := &Session{InitialTeam: slices.Clone(team), Sequence: []int{}, Status: OutcomeContinue}
	if err := e.store.Create(ctx, s); err != nil {
		return nil, storeErr("create session", err)
	}
	log.Debug().Str("gameId", s.ID).Msg("session created")
	return s, nil
}

// Start selects a team and creates a session for it.
func (e *Engine) Start(ctx context.Context) (*Session, error) {
	if e.team == nil {
		return nil, errors.New("game: no team selector configured")
	}
	team, err := e.team.Select(ctx, e.rules.TeamSize)
	if err != nil {
		return nil, err
	}
	return e.Create(ctx, team)
}

// Get loads a session by id.
func (e *Engine) Get(ctx context.Context, id string) (*Session, error) {
	s, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, storeErr("get session", err)
	}
	return s, nil
}

// EvaluateRound judges a single pick against the last revealed creature.
func (e *Engine) EvaluateRound(ctx context.Context, id string, pick int) (RoundResult, error) {
	s, err := e.Get(ctx, id)
	if err != nil {
		return RoundResult{}, err
	}
	if s.Status.Terminal() {
		return RoundResult{Outcome: s.Status, Sequence: s.Sequence}, nil
	}
	return e.settle(ctx, s, Judge(s.Sequence, pick, e.rules.MaxSequence))
}

// EvaluateReplay judges a full replay of the sequence in one request.
func (e *Engine) EvaluateReplay(ctx context.Context, id string, picks []int) (RoundResult, error) {
	s, err := e.Get(ctx, id)
	if err != nil {
		return RoundResult{}, err
	}
	if s.Status.Terminal() {
		return RoundResult{Outcome: s.Status, Sequence: s.Sequence}, nil
	}
	return e.settle(ctx, s, JudgeReplay(s.Sequence, picks, e.rules.MaxSequence))
}

// settle applies an outcome: win/lose are recorded, continue grows the sequence.
func (e *Engine) settle(ctx context.Context, s *Session, out Outcome) (RoundResult, error) {
	if out.Terminal() {
		done, err := e.store.Finish(ctx, s.ID, out)
		if err != nil {
			return RoundResult{}, storeErr("finish session", err)
		}
		log.Debug().Str("gameId", s.ID).Str("result", string(out)).Int("length", len(done.Sequence)).Msg("game finished")
		return RoundResult{Outcome: out, Sequence: done.Sequence}, nil
	}

	next, err := random.Draw(e.src, e.rules.MinID, e.rules.MaxID)
	if err != nil {
		return RoundResult{}, err
	}
	var revealed *catalog.Creature
	if e.catalog != nil {
		cr, err := e.catalog.Fetch(ctx, next)
		if err != nil {
			return RoundResult{}, err
		}
		revealed = &cr
	}

	updated, err := e.store.Append(ctx, s.ID, next)
	if err != nil {
		return RoundResult{}, storeErr("append sequence", err)
	}
	log.Debug().Str("gameId", s.ID).Int("length", len(updated.Sequence)).Msg("sequence grew")
	return RoundResult{Outcome: OutcomeContinue, Sequence: updated.Sequence, Revealed: revealed}, nil
}

// storeErr keeps ErrNotFound and ErrPersistence as-is and classifies
// anything else a Store returns as ErrPersistence.
func storeErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
