package models

import (
	"github.com/google/uuid"
)

// PlayerStatus tracks where a player is within the current round.
type PlayerStatus string

const (
	StatusStart   PlayerStatus = "start"   // waiting for first draw of the round
	StatusDealing PlayerStatus = "dealing" // has drawn at least once this round
	StatusStopped PlayerStatus = "stop"    // banked, busted, frozen or full-flipped
)

// Active reports whether the player can still take a turn this round.
func (s PlayerStatus) Active() bool {
	return s == StatusStart || s == StatusDealing
}

type Player struct {
	ID     uuid.UUID    `json:"id"`
	Name   string       `json:"name"`
	Hand   []*Card      `json:"cards"`
	Status PlayerStatus `json:"status"`
	Shield bool         `json:"secondChance"`
	Score  int          `json:"score"`

	// LastDrawn is the most recent draw. A special card here is pending resolution.
	LastDrawn *Card `json:"lastDrawnCard"`
}

// NewPlayer seats a fresh player at StatusStart with no points.
func NewPlayer(id uuid.UUID, name string) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Hand:   []*Card{},
		Status: StatusStart,
	}
}

// PendingSpecial returns the drawn special card awaiting a target, or nil.
func (p *Player) PendingSpecial() *Card {
	if p.LastDrawn != nil && p.LastDrawn.Kind == KindSpecial {
		return p.LastDrawn
	}
	return nil
}

// HasRank reports whether a number card of rank is already in hand.
func (p *Player) HasRank(rank int) bool {
	for _, c := range p.Hand {
		if c.Kind == KindNumber && c.Rank == rank {
			return true
		}
	}
	return false
}

// NumberCount is how many number cards are in hand.
func (p *Player) NumberCount() int {
	n := 0
	for _, c := range p.Hand {
		if c.Kind == KindNumber {
			n++
		}
	}
	return n
}

// RemoveCard takes the card with id out of the hand, preserving order.
func (p *Player) RemoveCard(id uuid.UUID) (*Card, bool) {
	for i, c := range p.Hand {
		if c.ID == id {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return nil, false
}

// Clone returns a copy whose hand slice is independent of p's.
func (p *Player) Clone() Player {
	cp := *p
	cp.Hand = make([]*Card, len(p.Hand))
	copy(cp.Hand, p.Hand)
	return cp
}
