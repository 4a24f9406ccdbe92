// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Identity could not be established for the connection.
)

// Subprotocol is the only WebSocket subprotocol the game endpoint speaks.
const Subprotocol = "flipseven"

// Inbound message types.
const (
	MsgCreateGame  = "createGame"
	MsgJoinGame    = "joinGame"
	MsgStartGame   = "startGame"
	MsgDrawCard    = "drawCard"
	MsgPlaySpecial = "playSpecial"
	MsgStopDrawing = "stopDrawing"
	MsgPing        = "ping"
)

// Outbound message types.
const (
	MsgGameCreated      = "gameCreated"
	MsgDrawResult       = "drawResult"
	MsgGameStateUpdated = "gameStateUpdated"
	MsgGameOver         = "gameOver"
	MsgError            = "error"
	MsgPong             = "pong"
)

// Error codes produced by the transport itself rather than the engine.
const (
	CodeInvalidMessage = "INVALID_MESSAGE"
	CodeUnknownType    = "UNKNOWN_TYPE"
	CodeNotSeated      = "NOT_SEATED"
)
