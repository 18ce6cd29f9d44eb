// internal/notify/hub.go
//
// Real-time guess notifications for multiplayer matches.
//
// Responsibilities:
//   - Upgrade GET /multiplayer/ws/{matchId}/{playerId} to a WebSocket.
//   - Keep a registry of connected clients per match.
//   - Fan out each published Event to the match's clients.
//
// Delivery is best effort: every client has a bounded send buffer and a
// full buffer drops the event for that client. Publish never blocks the
// request that produced the event. Clients that need the truth read state.

package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	pongWait     = 2 * pingInterval
)

// Event describes one applied guess in a match.
type Event struct {
	MatchID     string           `json:"matchId"`
	PlayerID    string           `json:"playerId"`
	Letter      string           `json:"letter"`
	Code        game.Outcome     `json:"code"`
	MatchStatus game.MatchStatus `json:"matchStatus"`
}

// Notifier receives match events.
type Notifier interface {
	Publish(ev Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}

type client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
}

// Hub is a WebSocket Notifier.
type Hub struct {
	mu       sync.Mutex
	matches  map[string]map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub builds a hub. checkOrigin may be nil to allow any origin.
func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		matches:  make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

// Publish queues ev for every client subscribed to ev.MatchID.
func (h *Hub) Publish(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Warn().Err(err).Str("matchId", ev.MatchID).Msg("encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.matches[ev.MatchID] {
		select {
		case c.send <- b:
		default:
			log.Warn().Str("matchId", ev.MatchID).Str("playerId", c.playerID).Msg("ws send buffer full, dropping event")
		}
	}
}

// Subscribers reports how many clients are connected to a match.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.matches[matchID])
}

// ServeWS upgrades the request and blocks until the client disconnects.
// The caller has already checked that playerID belongs to matchID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, matchID, playerID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("matchId", matchID).Msg("ws upgrade")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), playerID: playerID}
	h.register(matchID, c)
	log.Debug().Str("matchId", matchID).Str("playerId", playerID).Msg("ws connected")

	go writePump(c)
	readPump(c)

	h.unregister(matchID, c)
	log.Debug().Str("matchId", matchID).Str("playerId", playerID).Msg("ws disconnected")
}

func (h *Hub) register(matchID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.matches[matchID] == nil {
		h.matches[matchID] = make(map[*client]struct{})
	}
	h.matches[matchID][c] = struct{}{}
}

// unregister removes c and closes its send channel, which stops writePump.
func (h *Hub) unregister(matchID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.matches[matchID]
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	close(c.send)
	if len(subs) == 0 {
		delete(h.matches, matchID)
	}
}

// readPump drains client frames; clients never send anything meaningful.
func readPump(c *client) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
