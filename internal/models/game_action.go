package models

import "github.com/google/uuid"

// Action types recorded in the action log.
const (
	ActionTypeGameCreate    = "game_create"
	ActionTypePlayerJoin    = "player_join"
	ActionTypeGameStart     = "game_start"
	ActionTypeDraw          = "draw"
	ActionTypePlaySpecial   = "play_special"
	ActionTypeStop          = "stop"
	ActionTypeRoundRollover = "round_rollover"
	ActionTypeReshuffle     = "reshuffle"
	ActionTypeGameEnd       = "game_end"
)

// GameAction is one entry of a room's action log, as shipped to the historian.
type GameAction struct {
	RoomID      uuid.UUID              `json:"room_id"`
	ActionIndex int                    `json:"action_index"`
	ActorID     uuid.UUID              `json:"actor_id"`
	ActionType  string                 `json:"action_type"`
	Payload     map[string]interface{} `json:"action_payload"`
	Timestamp   int64                  `json:"timestamp"` // epoch millis
}

// GameResult is the final standing of a finished room.
type GameResult struct {
	RoomID   uuid.UUID         `json:"room_id"`
	Rounds   int               `json:"rounds"`
	WinnerID uuid.UUID         `json:"winner_id"`
	Scores   map[uuid.UUID]int `json:"scores"`
	Players  []Player          `json:"players"`
}
