// internal/game/errors.go
package game

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrGameAlreadyStarted   = errors.New("game already started")
	ErrGameNotStarted       = errors.New("game has not started")
	ErrGameFinished         = errors.New("game is finished")
	ErrNotYourTurn          = errors.New("not your turn")
	ErrAlreadyStopped       = errors.New("player already stopped")
	ErrInvalidSpecialTarget = errors.New("invalid special card target")
	ErrNoPendingSpecial     = errors.New("no special card pending")
	ErrSpecialMismatch      = errors.New("named card is not the pending special")
	ErrSpecialPending       = errors.New("resolve the pending special card first")
	ErrForcedDrawPending    = errors.New("forced draws remaining")
	ErrPlayerAlreadySeated  = errors.New("player already seated")

	// ErrEmptyDeck means neither the deck nor the discard pile could supply a card.
	// It only happens if card conservation was broken and faults the session.
	ErrEmptyDeck = errors.New("deck is empty")
	// ErrSessionFaulted is returned by every mutation after an invariant breach.
	ErrSessionFaulted = errors.New("session faulted")
)

// Code is a machine-readable error code sent to clients.
type Code string

const (
	CodeUnknown              Code = "UNKNOWN"
	CodeRoomNotFound         Code = "ROOM_NOT_FOUND"
	CodeGameAlreadyStarted   Code = "GAME_ALREADY_STARTED"
	CodeGameNotStarted       Code = "GAME_NOT_STARTED"
	CodeGameFinished         Code = "GAME_FINISHED"
	CodeNotYourTurn          Code = "NOT_YOUR_TURN"
	CodeAlreadyStopped       Code = "ALREADY_STOPPED"
	CodeInvalidSpecialTarget Code = "INVALID_SPECIAL_TARGET"
	CodeNoPendingSpecial     Code = "NO_PENDING_SPECIAL"
	CodeSpecialMismatch      Code = "SPECIAL_MISMATCH"
	CodeSpecialPending       Code = "SPECIAL_PENDING"
	CodeForcedDrawPending    Code = "FORCED_DRAW_PENDING"
	CodePlayerAlreadySeated  Code = "PLAYER_ALREADY_SEATED"
	CodeSessionFaulted       Code = "SESSION_FAULTED"
)

var codes = []struct {
	err  error
	code Code
}{
	// faulted first: a faulted error also wraps its cause
	{ErrSessionFaulted, CodeSessionFaulted},
	{ErrEmptyDeck, CodeSessionFaulted},
	{ErrRoomNotFound, CodeRoomNotFound},
	{ErrGameAlreadyStarted, CodeGameAlreadyStarted},
	{ErrGameNotStarted, CodeGameNotStarted},
	{ErrGameFinished, CodeGameFinished},
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrAlreadyStopped, CodeAlreadyStopped},
	{ErrInvalidSpecialTarget, CodeInvalidSpecialTarget},
	{ErrNoPendingSpecial, CodeNoPendingSpecial},
	{ErrSpecialMismatch, CodeSpecialMismatch},
	{ErrSpecialPending, CodeSpecialPending},
	{ErrForcedDrawPending, CodeForcedDrawPending},
	{ErrPlayerAlreadySeated, CodePlayerAlreadySeated},
}

// CodeOf maps an engine error to its client-facing code.
func CodeOf(err error) Code {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}
