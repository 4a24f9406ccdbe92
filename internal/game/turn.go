package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/models"
)

// activeSeats lists, in seat order, the players still able to act this round.
func activeSeats(players []*models.Player) []int {
	seats := make([]int, 0, len(players))
	for i, p := range players {
		if p.Status.Active() {
			seats = append(seats, i)
		}
	}
	return seats
}

// nextSeat picks the seat after current in direction among the active players.
// If current has already stopped, it walks the table from current until it meets
// an active seat. With no active seats it returns current unchanged; callers roll
// the round over before asking so that case only arises with an empty table.
func nextSeat(players []*models.Player, current, direction int) int {
	active := activeSeats(players)
	n := len(active)
	if n == 0 {
		return current
	}
	for i, seat := range active {
		if seat == current {
			return active[mod(i+direction, n)]
		}
	}
	total := len(players)
	for step := 1; step <= total; step++ {
		seat := mod(current+step*direction, total)
		if players[seat].Status.Active() {
			return seat
		}
	}
	return active[0]
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// advanceTurn moves the active seat via the turn order, rolling the round over
// first when every player has stopped. A finished game always parks on seat 0.
// Assumes lock is held.
func (s *Session) advanceTurn() {
	if s.phase == PhaseFinished {
		s.activeSeat = 0
		return
	}
	if len(activeSeats(s.players)) == 0 {
		s.rollover()
	}
	s.activeSeat = nextSeat(s.players, s.activeSeat, s.direction)
}

// stepTurn ends one draw: inside a forced-draw chain the same seat keeps drawing
// and the chain shrinks by one, otherwise the turn advances.
// Assumes lock is held.
func (s *Session) stepTurn() {
	if s.forcedDraws > 1 && s.phase != PhaseFinished {
		s.forcedDraws--
		return
	}
	s.advanceTurn()
}

// rollover ends the round: hands go to the discard pile, everyone returns to
// StatusStart, the forced-draw counter resets and the round counter advances.
// Assumes lock is held.
func (s *Session) rollover() {
	moved := 0
	for _, p := range s.players {
		moved += len(p.Hand)
		s.discard = append(s.discard, p.Hand...)
		p.Hand = []*models.Card{}
		p.LastDrawn = nil
		p.Status = models.StatusStart
	}
	s.forcedDraws = 1
	s.round++
	s.log.WithField("round", s.round).Debugf("Round rollover, %d card(s) discarded.", moved)
	s.logAction(uuid.Nil, models.ActionTypeRoundRollover, map[string]interface{}{"round": s.round, "discarded": moved})
}
