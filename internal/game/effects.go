// internal/game/effects.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/flipseven/internal/models"
)

// resolveDraw applies the freshly drawn card c to p and moves the turn along.
// Assumes lock is held.
func (s *Session) resolveDraw(p *models.Player, c *models.Card) Outcome {
	switch c.Kind {
	case models.KindNumber:
		return s.resolveNumber(p, c)
	case models.KindModifier:
		p.Hand = append(p.Hand, c)
		s.stepTurn()
		return OutcomeNormal
	case models.KindSpecial:
		// waits in hand for PlaySpecial; the turn does not move
		p.Hand = append(p.Hand, c)
		return OutcomeSpecialPending
	}
	panic(fmt.Sprintf("game: unhandled card kind %v", c.Kind))
}

// resolveNumber handles duplicate ranks (shield or bust) and the full flip.
// Assumes lock is held.
func (s *Session) resolveNumber(p *models.Player, c *models.Card) Outcome {
	if p.HasRank(c.Rank) {
		if p.Shield {
			p.Shield = false
			s.discard = append(s.discard, c)
			s.stepTurn()
			return OutcomeRecovered
		}
		p.Hand = append(p.Hand, c)
		p.Status = models.StatusStopped
		s.forcedDraws = 1
		s.advanceTurn()
		return OutcomeBusted
	}

	p.Hand = append(p.Hand, c)
	if p.NumberCount() == FullFlipSize {
		p.Status = models.StatusStopped
		p.Score += Score(p.Hand)
		s.forcedDraws = 1
		s.checkFinish(p)
		s.advanceTurn()
		return OutcomeFullFlip
	}
	s.stepTurn()
	return OutcomeNormal
}

// validateTarget rejects stopped victims and redundant shields. A shield may be
// granted to a holder only when every player still in the round already has one.
// Assumes lock is held.
func (s *Session) validateTarget(action models.SpecialAction, victim *models.Player) error {
	if victim.Status == models.StatusStopped {
		return fmt.Errorf("%w: %s has already stopped", ErrInvalidSpecialTarget, victim.Name)
	}
	if action == models.ActionShieldGrant && victim.Shield && !s.allActiveShielded() {
		return fmt.Errorf("%w: %s already holds a second chance", ErrInvalidSpecialTarget, victim.Name)
	}
	return nil
}

func (s *Session) allActiveShielded() bool {
	for _, p := range s.players {
		if p.Status.Active() && !p.Shield {
			return false
		}
	}
	return true
}

// resolveSpecial applies a played action card to the player at victimSeat.
// Assumes lock is held.
func (s *Session) resolveSpecial(action models.SpecialAction, victimSeat int) {
	victim := s.players[victimSeat]
	switch action {
	case models.ActionFreeze:
		self := victimSeat == s.activeSeat
		victim.Status = models.StatusStopped
		victim.Shield = false
		victim.Score += Score(victim.Hand)
		if self {
			s.forcedDraws = 1
		}
		s.checkFinish(victim)
		if self {
			s.advanceTurn()
		} else {
			s.stepTurn()
		}
	case models.ActionForceDrawThree:
		s.forcedDraws += 3
		s.activeSeat = victimSeat
	case models.ActionShieldGrant:
		victim.Shield = true
		s.stepTurn()
	default:
		panic(fmt.Sprintf("game: unhandled special action %q", action))
	}
}
