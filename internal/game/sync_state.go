// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/models"
)

// State is the full, serializable snapshot broadcast to every participant after
// each accepted mutation. Nothing is hidden: the game has no private information.
type State struct {
	RoomID          uuid.UUID       `json:"id"`
	Round           int             `json:"round"`
	Players         []models.Player `json:"players"`
	CurrentPlayer   int             `json:"currentPlayer"`
	CurrentPlayerID uuid.UUID       `json:"currentPlayerId"`
	Deck            []*models.Card  `json:"deck"`
	DiscardPile     []*models.Card  `json:"discardPile"`
	Direction       int             `json:"direction"`
	FlipCount       int             `json:"flipCount"` // forced draws remaining, 1 when none
	Status          Phase           `json:"status"`
	Winner          *uuid.UUID      `json:"winner,omitempty"`
}

// Snapshot copies the session state. The returned value shares only immutable
// cards with the session.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	st := State{
		RoomID:          s.id,
		Round:           s.round,
		Players:         make([]models.Player, 0, len(s.players)),
		CurrentPlayer:   s.activeSeat,
		CurrentPlayerID: s.players[s.activeSeat].ID,
		Deck:            s.deck.Cards(),
		DiscardPile:     make([]*models.Card, len(s.discard)),
		Direction:       s.direction,
		FlipCount:       s.forcedDraws,
		Status:          s.phase,
	}
	copy(st.DiscardPile, s.discard)
	for _, p := range s.players {
		st.Players = append(st.Players, p.Clone())
	}
	if s.phase == PhaseFinished {
		w := s.winner
		st.Winner = &w
	}
	return st
}

// TopDiscard is the most recently discarded card, or nil.
func (st State) TopDiscard() *models.Card {
	if len(st.DiscardPile) == 0 {
		return nil
	}
	return st.DiscardPile[len(st.DiscardPile)-1]
}

// Player finds a seated player by id.
func (st State) Player(id uuid.UUID) (models.Player, bool) {
	for _, p := range st.Players {
		if p.ID == id {
			return p, true
		}
	}
	return models.Player{}, false
}
