package service

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/benbeisheim/chess-backend/internal/ws"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// client serializes writes to one connection.
type client struct {
	conn Conn
	mu   sync.Mutex
}

func (c *client) send(msg ws.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub tracks the live connections watching each game.
type Hub struct {
	mu    sync.RWMutex
	games map[string]map[string]*client // gameID -> playerID -> client
	log   zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		games: make(map[string]map[string]*client),
		log:   log.With().Str("component", "hub").Logger(),
	}
}

// Register adds conn for playerID in gameID. A second connection for the same
// player is rejected and false is returned.
func (h *Hub) Register(gameID, playerID string, conn Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.games[gameID]
	if !ok {
		conns = make(map[string]*client)
		h.games[gameID] = conns
	}
	if _, exists := conns[playerID]; exists {
		return false
	}
	conns[playerID] = &client{conn: conn}
	h.log.Debug().Str("game", gameID).Str("player", playerID).Msg("connection registered")
	return true
}

// Unregister removes the connection for playerID if it is still conn.
func (h *Hub) Unregister(gameID, playerID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.games[gameID]
	if !ok {
		return
	}
	if c, exists := conns[playerID]; exists && c.conn == conn {
		delete(conns, playerID)
		h.log.Debug().Str("game", gameID).Str("player", playerID).Msg("connection unregistered")
	}
	if len(conns) == 0 {
		delete(h.games, gameID)
	}
}

// Send writes msg to one player's connection.
func (h *Hub) Send(gameID, playerID string, msg ws.Message) error {
	h.mu.RLock()
	c, ok := h.games[gameID][playerID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return c.send(msg)
}

// Broadcast writes msg to every connection on gameID. Connections that fail
// are closed and dropped.
func (h *Hub) Broadcast(gameID string, msg ws.Message) {
	h.mu.RLock()
	targets := make(map[string]*client, len(h.games[gameID]))
	for playerID, c := range h.games[gameID] {
		targets[playerID] = c
	}
	h.mu.RUnlock()

	for playerID, c := range targets {
		if err := c.send(msg); err != nil {
			h.log.Warn().Err(err).Str("game", gameID).Str("player", playerID).Msg("dropping connection")
			_ = c.conn.Close()
			h.Unregister(gameID, playerID, c.conn)
		}
	}
}

// Watchers returns how many connections are registered on gameID.
func (h *Hub) Watchers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
