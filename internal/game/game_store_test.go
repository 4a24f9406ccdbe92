// internal/game/game_store_test.go
package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStoreCreateAndGet(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var ended []models.GameResult
	store := NewGameStore(
		WithStoreLogger(logger),
		WithStoreOnGameEnd(func(r models.GameResult) { ended = append(ended, r) }),
		WithSessionOptions(WithSeed(7)),
	)

	host := uuid.New()
	g := store.CreateGame(host, "host")
	require.NotNil(t, g)
	assert.Equal(t, 1, store.Len())
	assert.True(t, g.HasPlayer(host))

	got, err := store.GetGame(g.ID())
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = store.GetGame(uuid.New())
	assert.ErrorIs(t, err, ErrRoomNotFound)

	// the seed option reaches the session, so two stores agree on the deck
	other := NewGameStore(WithStoreLogger(logger), WithSessionOptions(WithSeed(7)))
	twin := other.CreateGame(uuid.New(), "twin")
	assert.Equal(t, values(g.Snapshot().Deck), values(twin.Snapshot().Deck))

	store.DeleteGame(g.ID())
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, ended)
}

func TestGameStoreEvictIdle(t *testing.T) {
	logger, hook := test.NewNullLogger()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := NewGameStore(WithStoreLogger(logger), WithSessionOptions(WithClock(clock)))

	stale := store.CreateGame(uuid.New(), "stale")
	now = now.Add(20 * time.Minute)
	fresh := store.CreateGame(uuid.New(), "fresh")

	evicted := store.EvictIdle(now.Add(15*time.Minute), 30*time.Minute)
	assert.Equal(t, []uuid.UUID{stale.ID()}, evicted)
	assert.Equal(t, 1, store.Len())

	_, err := store.GetGame(fresh.ID())
	assert.NoError(t, err)
	_, err = store.GetGame(stale.ID())
	assert.ErrorIs(t, err, ErrRoomNotFound)

	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "Evicted 1 idle room")
}

func TestGameStoreActivityKeepsRoomAlive(t *testing.T) {
	logger, _ := test.NewNullLogger()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewGameStore(WithStoreLogger(logger), WithSessionOptions(WithClock(func() time.Time { return now })))

	g := store.CreateGame(uuid.New(), "host")
	now = now.Add(25 * time.Minute)
	require.NoError(t, g.Join(models.NewPlayer(uuid.New(), "guest")))

	assert.Empty(t, store.EvictIdle(now.Add(10*time.Minute), 30*time.Minute))
	assert.Equal(t, 1, store.Len())
}

func values(cards []*models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Value()
	}
	return out
}
