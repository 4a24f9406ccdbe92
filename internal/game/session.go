// internal/game/session.go
package game

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/models"
	"github.com/sirupsen/logrus"
)

// Phase is the session lifecycle. It only ever moves forward.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Outcome classifies a draw for the caller to relay.
type Outcome string

const (
	OutcomeNormal         Outcome = "normal"
	OutcomeBusted         Outcome = "busted"
	OutcomeRecovered      Outcome = "recovered"
	OutcomeFullFlip       Outcome = "full-flip"
	OutcomeSpecialPending Outcome = "special-pending"
)

// ActionSink receives every logged action. Publishing happens off the session lock.
type ActionSink interface {
	PublishGameAction(ctx context.Context, action models.GameAction) error
}

// OnGameEndFunc is called once when a session finishes. It runs while the session
// lock is held and must not call back into the session.
type OnGameEndFunc func(result models.GameResult)

// Session is the authoritative state of one room. Every exported method takes the
// session lock for its whole duration, so operations on one room are serialized
// while different rooms proceed independently.
type Session struct {
	mu sync.Mutex

	id          uuid.UUID
	round       int
	players     []*models.Player
	activeSeat  int
	deck        *Deck
	discard     []*models.Card
	direction   int
	forcedDraws int
	phase       Phase
	winner      uuid.UUID

	fault       error
	actionIndex int
	lastActive  time.Time

	seed      int64
	now       func() time.Time
	log       *logrus.Entry
	sink      ActionSink
	onGameEnd OnGameEndFunc
	onChange  func(State)
}

// Option configures a Session at creation.
type Option func(*Session)

// WithSeed fixes the shuffle seed, making the deck order reproducible.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.seed = seed }
}

func WithLogger(entry *logrus.Entry) Option {
	return func(s *Session) { s.log = entry }
}

func WithActionSink(sink ActionSink) Option {
	return func(s *Session) { s.sink = sink }
}

func WithOnGameEnd(fn OnGameEndFunc) Option {
	return func(s *Session) { s.onGameEnd = fn }
}

// WithStateListener registers fn to receive a snapshot after every accepted
// mutation. fn runs under the session lock, in mutation order, and must not block.
func WithStateListener(fn func(State)) Option {
	return func(s *Session) { s.onChange = fn }
}

// WithClock replaces time.Now for activity tracking and action timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession seats first in a Waiting session with a freshly shuffled deck.
func NewSession(id uuid.UUID, first *models.Player, opts ...Option) *Session {
	s := &Session{
		id:          id,
		round:       1,
		players:     []*models.Player{first},
		discard:     []*models.Card{},
		direction:   1,
		forcedDraws: 1,
		phase:       PhaseWaiting,
		seed:        newSeed(),
		now:         time.Now,
		log:         logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("room", id)
	s.deck = NewDeck(s.seed)
	s.lastActive = s.now()

	s.log.Debugf("Created session with %d cards for player %s.", s.deck.Len(), first.ID)
	s.logAction(first.ID, models.ActionTypeGameCreate, map[string]interface{}{"name": first.Name})
	return s
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// ID returns the room identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// LastActive is the time of the last accepted mutation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// HasPlayer reports whether id holds a seat.
func (s *Session) HasPlayer(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seatOf(id) >= 0
}

// Join seats p at the end of the table. Only allowed while Waiting.
func (s *Session) Join(p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseWaiting {
		return ErrGameAlreadyStarted
	}
	if s.seatOf(p.ID) >= 0 {
		return ErrPlayerAlreadySeated
	}
	s.players = append(s.players, p)
	s.touch()
	s.log.Debugf("Player %s (%s) joined at seat %d.", p.ID, p.Name, len(s.players)-1)
	s.logAction(p.ID, models.ActionTypePlayerJoin, map[string]interface{}{"name": p.Name, "seat": len(s.players) - 1})
	s.notify()
	return nil
}

// Start seeds the discard pile with one card and begins play. Calling it on a
// session that already left Waiting is a no-op and reports false.
func (s *Session) Start(actorID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseWaiting {
		return false, nil
	}
	card, err := s.deck.Draw()
	if err != nil {
		return false, s.faultWith(err)
	}
	s.discard = append(s.discard, card)
	s.phase = PhasePlaying
	s.touch()
	s.log.Infof("Game started with %d player(s).", len(s.players))
	s.logAction(actorID, models.ActionTypeGameStart, map[string]interface{}{"players": len(s.players), "discardTop": card.Value()})
	s.notify()
	return true, nil
}

// Draw takes the next card for the active player and resolves it.
func (s *Session) Draw(actorID uuid.UUID) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.checkTurn(actorID)
	if err != nil {
		return "", err
	}
	if p.Status == models.StatusStopped {
		return "", ErrAlreadyStopped
	}
	if p.PendingSpecial() != nil {
		return "", ErrSpecialPending
	}

	// the new round's hand joins the discard pile before any reshuffle happens
	available := len(s.discard)
	if p.Status == models.StatusStart {
		available += len(p.Hand)
	}
	if s.deck.Len() == 0 && available < 2 {
		return "", s.faultWith(ErrEmptyDeck)
	}

	if p.Status == models.StatusStart {
		s.discard = append(s.discard, p.Hand...)
		p.Hand = []*models.Card{}
		p.Status = models.StatusDealing
	}

	card, err := s.drawCard()
	if err != nil {
		return "", s.faultWith(err)
	}
	p.LastDrawn = card
	outcome := s.resolveDraw(p, card)

	s.touch()
	s.log.WithFields(logrus.Fields{"player": p.ID, "card": card.Value(), "outcome": outcome}).Debug("Card drawn.")
	s.logAction(actorID, models.ActionTypeDraw, map[string]interface{}{
		"cardId":  card.ID,
		"card":    card.Value(),
		"outcome": string(outcome),
	})
	s.notify()
	return outcome, nil
}

// PlaySpecial resolves the actor's pending special card against victimID. An
// empty action accepts whichever special is pending.
func (s *Session) PlaySpecial(actorID, victimID uuid.UUID, action models.SpecialAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.checkTurn(actorID)
	if err != nil {
		return err
	}
	card := p.PendingSpecial()
	if card == nil {
		return ErrNoPendingSpecial
	}
	if action != "" && action != card.Action {
		return fmt.Errorf("%w: pending %q, got %q", ErrSpecialMismatch, card.Action, action)
	}
	victimSeat := s.seatOf(victimID)
	if victimSeat < 0 {
		return fmt.Errorf("%w: player %s is not seated", ErrInvalidSpecialTarget, victimID)
	}
	if err := s.validateTarget(card.Action, s.players[victimSeat]); err != nil {
		return err
	}

	p.RemoveCard(card.ID)
	s.discard = append(s.discard, card)
	p.LastDrawn = nil
	s.resolveSpecial(card.Action, victimSeat)

	s.touch()
	s.log.WithFields(logrus.Fields{"player": actorID, "victim": victimID, "special": card.Action}).Debug("Special card resolved.")
	s.logAction(actorID, models.ActionTypePlaySpecial, map[string]interface{}{
		"cardId": card.ID,
		"card":   card.Value(),
		"victim": victimID,
	})
	s.notify()
	return nil
}

// Stop banks the active player's hand and ends their round.
func (s *Session) Stop(actorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.checkTurn(actorID)
	if err != nil {
		return err
	}
	if p.Status == models.StatusStopped {
		return ErrAlreadyStopped
	}
	if p.PendingSpecial() != nil {
		return ErrSpecialPending
	}
	if s.forcedDraws > 1 {
		return fmt.Errorf("%w: %d", ErrForcedDrawPending, s.forcedDraws-1)
	}

	banked := Score(p.Hand)
	p.Score += banked
	p.Status = models.StatusStopped
	s.checkFinish(p)
	s.advanceTurn()

	s.touch()
	s.log.WithFields(logrus.Fields{"player": p.ID, "banked": banked, "score": p.Score}).Debug("Player stopped.")
	s.logAction(actorID, models.ActionTypeStop, map[string]interface{}{"banked": banked, "score": p.Score})
	s.notify()
	return nil
}

// Result returns the final standing once the session has finished.
func (s *Session) Result() (models.GameResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseFinished {
		return models.GameResult{}, false
	}
	return s.result(), true
}

// checkTurn validates that actorID may act now and returns the active player.
// Assumes lock is held.
func (s *Session) checkTurn(actorID uuid.UUID) (*models.Player, error) {
	if s.fault != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionFaulted, s.fault)
	}
	switch s.phase {
	case PhaseWaiting:
		return nil, ErrGameNotStarted
	case PhaseFinished:
		return nil, ErrGameFinished
	}
	p := s.players[s.activeSeat]
	if p.ID != actorID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// drawCard pops the deck, reshuffling the discard pile into it when empty.
// Assumes lock is held.
func (s *Session) drawCard() (*models.Card, error) {
	if s.deck.Len() == 0 {
		discard, err := s.deck.Reshuffle(s.discard)
		if err != nil {
			return nil, err
		}
		s.discard = discard
		s.log.Debugf("Deck empty. Reshuffled discard pile into %d card(s).", s.deck.Len())
		s.logAction(uuid.Nil, models.ActionTypeReshuffle, map[string]interface{}{"deckSize": s.deck.Len()})
	}
	return s.deck.Draw()
}

// faultWith records an invariant breach. Every later mutation is refused.
// Assumes lock is held.
func (s *Session) faultWith(cause error) error {
	s.fault = cause
	s.log.WithFields(logrus.Fields{
		"deck":    s.deck.Len(),
		"discard": len(s.discard),
		"inHands": s.cardsInHands(),
		"round":   s.round,
	}).WithError(cause).Error("Session faulted: no card available to draw.")
	return fmt.Errorf("%w: %w", ErrSessionFaulted, cause)
}

// checkFinish ends the game once p has banked the target score.
// Assumes lock is held.
func (s *Session) checkFinish(p *models.Player) {
	if s.phase == PhaseFinished || p.Score < TargetScore {
		return
	}
	s.phase = PhaseFinished
	s.winner = s.leader()

	result := s.result()
	scores := make(map[string]int, len(result.Scores))
	for id, sc := range result.Scores {
		scores[id.String()] = sc
	}
	s.log.WithFields(logrus.Fields{"winner": s.winner, "round": s.round}).Info("Game finished.")
	s.logAction(uuid.Nil, models.ActionTypeGameEnd, map[string]interface{}{"winner": s.winner, "scores": scores})
	if s.onGameEnd != nil {
		s.onGameEnd(result)
	}
}

// leader is the highest banked score, ties going to the lower seat.
func (s *Session) leader() uuid.UUID {
	best := s.players[0]
	for _, p := range s.players[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best.ID
}

func (s *Session) result() models.GameResult {
	res := models.GameResult{
		RoomID:   s.id,
		Rounds:   s.round,
		WinnerID: s.winner,
		Scores:   make(map[uuid.UUID]int, len(s.players)),
		Players:  make([]models.Player, 0, len(s.players)),
	}
	for _, p := range s.players {
		res.Scores[p.ID] = p.Score
		res.Players = append(res.Players, p.Clone())
	}
	return res
}

func (s *Session) seatOf(id uuid.UUID) int {
	for i, p := range s.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) cardsInHands() int {
	n := 0
	for _, p := range s.players {
		n += len(p.Hand)
	}
	return n
}

// notify hands the listener a fresh snapshot. Assumes lock is held.
func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange(s.snapshot())
	}
}

func (s *Session) touch() {
	s.lastActive = s.now()
}

// logAction hands an action record to the sink without blocking the session.
// Assumes lock is held.
func (s *Session) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if s.sink == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := models.GameAction{
		RoomID:      s.id,
		ActionIndex: s.actionIndex,
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   s.now().UnixMilli(),
	}
	sink, log := s.sink, s.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := sink.PublishGameAction(ctx, rec); err != nil {
			log.WithError(err).Warnf("Failed to publish action %d (%s).", rec.ActionIndex, rec.ActionType)
		}
	}()
}
