// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/game"
	"github.com/jason-s-yu/flipseven/internal/middleware"
	"github.com/jason-s-yu/flipseven/internal/models"
	"github.com/sirupsen/logrus"
)

// GameMessage is an inbound intent. Only the fields its Type needs are read.
type GameMessage struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	VictimID   string `json:"victimId,omitempty"`
	// Card optionally names the special being played ("freeze", "flip three", "second chance").
	Card string `json:"card,omitempty"`
}

// OutboundMessage is every server-to-client frame.
type OutboundMessage struct {
	Type           string       `json:"type"`
	RoomID         string       `json:"roomId,omitempty"`
	State          *game.State  `json:"state,omitempty"`
	Classification string       `json:"classification,omitempty"`
	Card           *models.Card `json:"card,omitempty"`
	Winner         string       `json:"winner,omitempty"`
	Code           string       `json:"code,omitempty"`
	Message        string       `json:"message,omitempty"`
}

// errBadMessage marks intents that are malformed rather than illegal.
var errBadMessage = errors.New("invalid message")

// GameWSHandler establishes the caller's identity, upgrades the connection and
// runs the read loop until the peer goes away.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// the cookie has to be set before the upgrade response is written
		playerID, err := EnsureGuest(w, r)
		if err != nil {
			logger.Warnf("Guest identity failed for %s: %v", r.RemoteAddr, err)
			http.Error(w, "unable to establish identity", http.StatusInternalServerError)
			return
		}

		origins := gs.OriginPatterns
		if origins == nil {
			origins = []string{"*"}
		}
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: origins,
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			logger.Warnf("Client %s connected with invalid subprotocol: %q", r.RemoteAddr, c.Subprotocol())
			c.Close(BadSubprotocolError, "client must speak the flipseven subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		cl := newClient(playerID, c, logger.WithField("player", playerID))
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			cl.writeLoop(ctx)
		}()

		err = gs.readGameMessages(ctx, cl)

		gs.Hub.Disconnect(cl)
		<-writerDone
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readGameMessages reads intents until the connection fails. Normal closures
// return nil.
func (gs *GameServer) readGameMessages(ctx context.Context, cl *client) error {
	for {
		msgType, data, err := cl.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			cl.log.Warnf("Received non-text message type %d. Ignoring.", msgType)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			cl.log.Debugf("Invalid JSON received: %v", err)
			gs.sendError(cl, CodeInvalidMessage, "Invalid JSON format.")
			continue
		}
		gs.route(cl, msg)
	}
}

// route dispatches one intent. Engine rejections are reported to the sender only;
// accepted mutations reach the room through the session's state listener.
func (gs *GameServer) route(cl *client, msg GameMessage) {
	cl.log.Debugf("Received intent '%s' for room %q.", msg.Type, msg.RoomID)

	switch msg.Type {
	case MsgPing:
		gs.send(cl, OutboundMessage{Type: MsgPong})

	case MsgCreateGame:
		g := gs.Store.CreateGame(cl.playerID, playerName(msg.PlayerName))
		gs.Hub.Subscribe(g.ID(), cl)
		st := g.Snapshot()
		gs.send(cl, OutboundMessage{Type: MsgGameCreated, RoomID: g.ID().String(), State: &st})

	case MsgJoinGame:
		g, err := gs.lookup(msg.RoomID)
		if err != nil {
			gs.reject(cl, msg, err)
			return
		}
		if err := g.Join(models.NewPlayer(cl.playerID, playerName(msg.PlayerName))); err != nil {
			gs.reject(cl, msg, err)
			return
		}
		gs.Hub.Subscribe(g.ID(), cl)
		st := g.Snapshot()
		gs.send(cl, OutboundMessage{Type: MsgGameStateUpdated, RoomID: g.ID().String(), State: &st})

	case MsgStartGame, MsgDrawCard, MsgPlaySpecial, MsgStopDrawing:
		g, err := gs.seatedRoom(cl, msg.RoomID)
		if err != nil {
			gs.reject(cl, msg, err)
			return
		}
		if err := gs.apply(cl, g, msg); err != nil {
			gs.reject(cl, msg, err)
		}

	default:
		gs.sendError(cl, CodeUnknownType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

// apply runs a turn intent against g for the sender.
func (gs *GameServer) apply(cl *client, g *game.Session, msg GameMessage) error {
	switch msg.Type {
	case MsgStartGame:
		started, err := g.Start(cl.playerID)
		if err != nil {
			return err
		}
		if !started {
			// already under way; resend the state to the requester
			st := g.Snapshot()
			gs.send(cl, OutboundMessage{Type: MsgGameStateUpdated, RoomID: g.ID().String(), State: &st})
		}
		return nil

	case MsgDrawCard:
		outcome, err := g.Draw(cl.playerID)
		if err != nil {
			return err
		}
		out := OutboundMessage{Type: MsgDrawResult, RoomID: g.ID().String(), Classification: string(outcome)}
		if p, ok := g.Snapshot().Player(cl.playerID); ok {
			out.Card = p.LastDrawn
		}
		gs.send(cl, out)
		return nil

	case MsgPlaySpecial:
		victim, err := uuid.Parse(msg.VictimID)
		if err != nil {
			return fmt.Errorf("%w: victimId %q", errBadMessage, msg.VictimID)
		}
		action := models.SpecialAction(msg.Card)
		if action != "" && !action.Valid() {
			return fmt.Errorf("%w: unknown special card %q", errBadMessage, msg.Card)
		}
		return g.PlaySpecial(cl.playerID, victim, action)

	case MsgStopDrawing:
		return g.Stop(cl.playerID)
	}
	return fmt.Errorf("%w: %s", errBadMessage, msg.Type)
}

func (gs *GameServer) lookup(roomID string) (*game.Session, error) {
	id, err := uuid.Parse(roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: roomId %q", errBadMessage, roomID)
	}
	return gs.Store.GetGame(id)
}

var errNotSeated = errors.New("you are not seated in this room")

// seatedRoom finds the room and makes sure the sender follows it, which also
// covers players reconnecting on a new socket.
func (gs *GameServer) seatedRoom(cl *client, roomID string) (*game.Session, error) {
	g, err := gs.lookup(roomID)
	if err != nil {
		return nil, err
	}
	if !g.HasPlayer(cl.playerID) {
		return nil, errNotSeated
	}
	gs.Hub.Subscribe(g.ID(), cl)
	return g, nil
}

func (gs *GameServer) reject(cl *client, msg GameMessage, err error) {
	code := string(game.CodeOf(err))
	switch {
	case errors.Is(err, errBadMessage):
		code = CodeInvalidMessage
	case errors.Is(err, errNotSeated):
		code = CodeNotSeated
	}
	cl.log.WithError(err).Debugf("Rejected intent '%s' for room %q.", msg.Type, msg.RoomID)
	gs.sendError(cl, code, err.Error())
}

func (gs *GameServer) send(cl *client, msg OutboundMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		cl.log.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	cl.enqueue(data)
}

// sendError sends a structured error message to the client.
func (gs *GameServer) sendError(cl *client, code, message string) {
	gs.send(cl, OutboundMessage{Type: MsgError, Code: code, Message: message})
}

func playerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Guest"
	}
	if runes := []rune(name); len(runes) > 32 {
		name = string(runes[:32])
	}
	return name
}
