// internal/game/game_store.go
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/models"
	"github.com/sirupsen/logrus"
)

// GameStore is the process-wide table of rooms. It owns session creation so every
// session gets the same logger, action sink and end-of-game hook.
type GameStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*Session

	logger    *logrus.Logger
	sink      ActionSink
	onGameEnd OnGameEndFunc
	opts      []Option
}

// StoreOption configures a GameStore.
type StoreOption func(*GameStore)

func WithStoreLogger(l *logrus.Logger) StoreOption {
	return func(s *GameStore) { s.logger = l }
}

func WithStoreActionSink(sink ActionSink) StoreOption {
	return func(s *GameStore) { s.sink = sink }
}

func WithStoreOnGameEnd(fn OnGameEndFunc) StoreOption {
	return func(s *GameStore) { s.onGameEnd = fn }
}

// WithSessionOptions appends options applied to every session the store creates.
func WithSessionOptions(opts ...Option) StoreOption {
	return func(s *GameStore) { s.opts = append(s.opts, opts...) }
}

func NewGameStore(opts ...StoreOption) *GameStore {
	s := &GameStore{
		games:  make(map[uuid.UUID]*Session),
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGame opens a new room seated by (playerID, name).
func (s *GameStore) CreateGame(playerID uuid.UUID, name string) *Session {
	opts := []Option{WithLogger(logrus.NewEntry(s.logger))}
	if s.sink != nil {
		opts = append(opts, WithActionSink(s.sink))
	}
	if s.onGameEnd != nil {
		opts = append(opts, WithOnGameEnd(s.onGameEnd))
	}
	opts = append(opts, s.opts...)

	g := NewSession(uuid.New(), models.NewPlayer(playerID, name), opts...)
	s.AddGame(g)
	return g
}

func (s *GameStore) AddGame(g *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID()] = g
}

// GetGame returns the room or ErrRoomNotFound.
func (s *GameStore) GetGame(id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.games[id]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return g, nil
}

func (s *GameStore) DeleteGame(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

func (s *GameStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// EvictIdle drops every room whose last mutation is older than maxIdle and
// returns the evicted ids.
func (s *GameStore) EvictIdle(now time.Time, maxIdle time.Duration) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []uuid.UUID
	for id, g := range s.games {
		if now.Sub(g.LastActive()) > maxIdle {
			delete(s.games, id)
			evicted = append(evicted, id)
		}
	}
	if len(evicted) > 0 {
		s.logger.WithField("remaining", len(s.games)).Infof("Evicted %d idle room(s).", len(evicted))
	}
	return evicted
}
