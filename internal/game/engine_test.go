package game_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/pokesimon/apps/go-server/internal/catalog"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/game"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/random"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/store"
)

// idSource yields queued ids for draws starting at 1.
type idSource struct {
	mu  sync.Mutex
	ids []int
}

func (s *idSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.ids[0]
	s.ids = s.ids[1:]
	return (v - 1) % n
}

type fakeCatalog struct{ err error }

func (f fakeCatalog) Fetch(ctx context.Context, id int) (catalog.Creature, error) {
	if f.err != nil {
		return catalog.Creature{}, f.err
	}
	return catalog.Creature{ID: id, Name: fmt.Sprintf("mon-%d", id)}, nil
}

type fakeSelector struct {
	team []catalog.Creature
	err  error
}

func (f fakeSelector) Select(ctx context.Context, size int) ([]catalog.Creature, error) {
	return f.team, f.err
}

// failingStore wraps a real store and injects errors per operation.
type failingStore struct {
	game.Store
	createErr, appendErr, finishErr error
}

func (f *failingStore) Create(ctx context.Context, s *game.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.Store.Create(ctx, s)
}

func (f *failingStore) Append(ctx context.Context, id string, pick int) (*game.Session, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	return f.Store.Append(ctx, id, pick)
}

func (f *failingStore) Finish(ctx context.Context, id string, out game.Outcome) (*game.Session, error) {
	if f.finishErr != nil {
		return nil, f.finishErr
	}
	return f.Store.Finish(ctx, id, out)
}

func team(ids ...int) []catalog.Creature {
	out := make([]catalog.Creature, len(ids))
	for i, id := range ids {
		out[i] = catalog.Creature{ID: id, Name: fmt.Sprintf("mon-%d", id)}
	}
	return out
}

func newEngine(st game.Store, draws ...int) *game.Engine {
	return game.NewEngine(st, game.DefaultRules(),
		game.WithSource(&idSource{ids: draws}),
		game.WithCatalog(fakeCatalog{}),
	)
}

func TestCreateStartsEmpty(t *testing.T) {
	e := newEngine(store.NewMemoryStore())

	s, err := e.Create(context.Background(), team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Len(t, s.InitialTeam, 6)
	assert.Len(t, s.Sequence, 0)
	assert.Equal(t, game.OutcomeContinue, s.Status)
}

func TestCreateRejectsWrongTeamSize(t *testing.T) {
	e := newEngine(store.NewMemoryStore())

	_, err := e.Create(context.Background(), team(1, 2, 3))
	require.ErrorIs(t, err, game.ErrInvalidTeam)
}

func TestCreatePersistenceError(t *testing.T) {
	st := &failingStore{Store: store.NewMemoryStore(), createErr: errors.New("disk full")}
	e := newEngine(st)

	_, err := e.Create(context.Background(), team(1, 2, 3, 4, 5, 6))
	require.ErrorIs(t, err, game.ErrPersistence)
	assert.NotErrorIs(t, err, game.ErrNotFound)
}

func TestStartUsesSelector(t *testing.T) {
	e := game.NewEngine(store.NewMemoryStore(), game.DefaultRules(),
		game.WithTeamSelector(fakeSelector{team: team(7, 7, 8, 9, 10, 11)}))

	s, err := e.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, team(7, 7, 8, 9, 10, 11), s.InitialTeam)
}

func TestStartPropagatesCatalogFailure(t *testing.T) {
	st := store.NewMemoryStore()
	e := game.NewEngine(st, game.DefaultRules(),
		game.WithTeamSelector(fakeSelector{err: fmt.Errorf("%w: down", catalog.ErrUnavailable)}))

	_, err := e.Start(context.Background())
	require.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestFullGameWins(t *testing.T) {
	draws := []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	e := newEngine(store.NewMemoryStore(), draws...)
	ctx := context.Background()

	s, err := e.Create(ctx, team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)

	res, err := e.EvaluateRound(ctx, s.ID, 999)
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeContinue, res.Outcome)
	assert.Equal(t, []int{11}, res.Sequence)
	require.NotNil(t, res.Revealed)
	assert.Equal(t, 11, res.Revealed.ID)

	for k := 0; k < 9; k++ {
		res, err = e.EvaluateRound(ctx, s.ID, draws[k])
		require.NoError(t, err)
		require.Equal(t, game.OutcomeContinue, res.Outcome, "round %d", k)
		assert.Len(t, res.Sequence, k+2)
	}

	res, err = e.EvaluateRound(ctx, s.ID, draws[9])
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeWin, res.Outcome)
	assert.Equal(t, draws, res.Sequence)
	assert.Nil(t, res.Revealed)

	// Won sessions never grow.
	res, err = e.EvaluateRound(ctx, s.ID, draws[9])
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeWin, res.Outcome)
	got, err := e.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Sequence, 10)
}

func TestWrongPickLosesWithoutAppending(t *testing.T) {
	e := newEngine(store.NewMemoryStore(), 5, 6, 7)
	ctx := context.Background()

	s, err := e.Create(ctx, team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	_, err = e.EvaluateRound(ctx, s.ID, 0)
	require.NoError(t, err)
	_, err = e.EvaluateRound(ctx, s.ID, 5)
	require.NoError(t, err)

	res, err := e.EvaluateRound(ctx, s.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeLose, res.Outcome)
	assert.Equal(t, []int{5, 6}, res.Sequence)

	got, err := e.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, got.Sequence)
}

func TestEvaluateReplay(t *testing.T) {
	e := newEngine(store.NewMemoryStore(), 5, 6, 7)
	ctx := context.Background()

	s, err := e.Create(ctx, team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)

	res, err := e.EvaluateReplay(ctx, s.ID, []int{1})
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeContinue, res.Outcome)
	assert.Equal(t, []int{5}, res.Sequence)

	res, err = e.EvaluateReplay(ctx, s.ID, []int{5})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, res.Sequence)

	res, err = e.EvaluateReplay(ctx, s.ID, []int{5, 7})
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeLose, res.Outcome)
	assert.Equal(t, []int{5, 6}, res.Sequence)
}

func TestEvaluateRoundNotFound(t *testing.T) {
	e := newEngine(store.NewMemoryStore(), 1)

	_, err := e.EvaluateRound(context.Background(), "missing", 1)
	require.ErrorIs(t, err, game.ErrNotFound)
	assert.NotErrorIs(t, err, game.ErrPersistence)
}

func TestEvaluateRoundVanishedBeforeAppend(t *testing.T) {
	st := &failingStore{Store: store.NewMemoryStore()}
	e := newEngine(st, 1)
	ctx := context.Background()

	s, err := e.Create(ctx, team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	st.appendErr = game.ErrNotFound

	_, err = e.EvaluateRound(ctx, s.ID, 0)
	require.ErrorIs(t, err, game.ErrNotFound)
}

func TestEvaluateRoundCatalogFailureWritesNothing(t *testing.T) {
	st := store.NewMemoryStore()
	e := game.NewEngine(st, game.DefaultRules(),
		game.WithSource(&idSource{ids: []int{3}}),
		game.WithCatalog(fakeCatalog{err: fmt.Errorf("%w: timeout", catalog.ErrUnavailable)}))
	ctx := context.Background()

	s, err := e.Create(ctx, team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)

	_, err = e.EvaluateRound(ctx, s.ID, 0)
	require.ErrorIs(t, err, catalog.ErrUnavailable)

	got, err := e.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Sequence)
}

func TestEvaluateRoundInvalidRange(t *testing.T) {
	rules := game.DefaultRules()
	rules.MinID, rules.MaxID = 5, 1
	e := game.NewEngine(store.NewMemoryStore(), rules)
	ctx := context.Background()

	s, err := e.Create(ctx, team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)

	_, err = e.EvaluateRound(ctx, s.ID, 0)
	require.ErrorIs(t, err, random.ErrInvalidRange)
}

func TestLostSessionStaysLost(t *testing.T) {
	e := newEngine(store.NewMemoryStore(), 5, 6, 7)
	ctx := context.Background()

	s, err := e.Create(ctx, team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	res, err := e.EvaluateRound(ctx, s.ID, 0)
	require.NoError(t, err)
	require.Equal(t, []int{5}, res.Sequence)

	res, err = e.EvaluateRound(ctx, s.ID, 99)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeLose, res.Outcome)

	// The correct pick no longer revives the game.
	res, err = e.EvaluateRound(ctx, s.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeLose, res.Outcome)
	assert.Equal(t, []int{5}, res.Sequence)

	res, err = e.EvaluateReplay(ctx, s.ID, []int{5})
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeLose, res.Outcome)
	assert.Equal(t, []int{5}, res.Sequence)

	got, err := e.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeLose, got.Status)
	assert.Equal(t, []int{5}, got.Sequence)
}

func TestWonSessionStaysWon(t *testing.T) {
	rules := game.DefaultRules()
	rules.MaxSequence = 2
	e := game.NewEngine(store.NewMemoryStore(), rules, game.WithSource(&idSource{ids: []int{5, 6}}))
	ctx := context.Background()

	s, err := e.Create(ctx, team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	for _, pick := range []int{0, 5} {
		res, err := e.EvaluateRound(ctx, s.ID, pick)
		require.NoError(t, err)
		require.Equal(t, game.OutcomeContinue, res.Outcome)
	}
	res, err := e.EvaluateRound(ctx, s.ID, 6)
	require.NoError(t, err)
	require.Equal(t, game.OutcomeWin, res.Outcome)

	res, err = e.EvaluateRound(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeWin, res.Outcome)
	assert.Equal(t, []int{5, 6}, res.Sequence)

	got, err := e.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeWin, got.Status)
}

func TestFinishFailureIsPersistenceError(t *testing.T) {
	st := &failingStore{Store: store.NewMemoryStore()}
	e := newEngine(st, 5)
	ctx := context.Background()

	s, err := e.Create(ctx, team(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	_, err = e.EvaluateRound(ctx, s.ID, 0)
	require.NoError(t, err)

	st.finishErr = errors.New("disk full")
	_, err = e.EvaluateRound(ctx, s.ID, 99)
	require.ErrorIs(t, err, game.ErrPersistence)
}

func TestEngineRules(t *testing.T) {
	rules := game.DefaultRules()
	rules.MaxSequence = 4
	assert.Equal(t, rules, game.NewEngine(store.NewMemoryStore(), rules).Rules())
}
