// internal/handlers/hub.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/game"
	"github.com/sirupsen/logrus"
)

const (
	sendBuffer   = 64
	writeTimeout = 3 * time.Second
	pingInterval = 15 * time.Second
)

// client is one WebSocket connection. Writes go through send so that messages
// reach the peer in the order they were queued.
type client struct {
	playerID uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
	rooms    map[uuid.UUID]struct{} // guarded by Hub.mu
	log      *logrus.Entry
}

func newClient(playerID uuid.UUID, conn *websocket.Conn, log *logrus.Entry) *client {
	return &client{
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		rooms:    make(map[uuid.UUID]struct{}),
		log:      log,
	}
}

// enqueue never blocks. A client too slow to drain its buffer loses the message.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.log.Warn("Send buffer full, dropping message.")
	}
}

// writeLoop drains send until it is closed, pinging the peer while idle.
func (c *client) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.WithError(err).Debug("Failed to write message.")
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			_ = c.conn.Ping(pctx)
			cancel()
		case <-ctx.Done():
			return
		}
	}
}

// Hub tracks which connections follow which room and fans messages out to them.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*client]struct{}
	logger *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]map[*client]struct{}),
		logger: logger,
	}
}

// Subscribe adds c to room's audience. Subscribing twice is harmless.
func (h *Hub) Subscribe(room uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// Disconnect removes c from every room and closes its send queue.
func (h *Hub) Disconnect(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	c.rooms = nil
	close(c.send)
}

// DropRoom forgets a room, typically after it was evicted from the store.
func (h *Hub) DropRoom(room uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[room] {
		delete(c.rooms, room)
	}
	delete(h.rooms, room)
}

// Audience is the number of connections following room.
func (h *Hub) Audience(room uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast queues msg for every connection following room.
func (h *Hub) Broadcast(room uuid.UUID, msg OutboundMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorf("Failed to marshal broadcast event (%s) for room %s: %v", msg.Type, room, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.enqueue(data)
	}
}

// PublishState is installed as every session's state listener. It is called while
// the session lock is held, so broadcasts are queued in mutation order.
func (h *Hub) PublishState(st game.State) {
	h.Broadcast(st.RoomID, OutboundMessage{Type: MsgGameStateUpdated, RoomID: st.RoomID.String(), State: &st})
	if st.Status == game.PhaseFinished && st.Winner != nil {
		h.Broadcast(st.RoomID, OutboundMessage{
			Type:   MsgGameOver,
			RoomID: st.RoomID.String(),
			Winner: st.Winner.String(),
			State:  &st,
		})
	}
}
