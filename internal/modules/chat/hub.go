package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"caradmin/internal/backend"
	"caradmin/internal/domain"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxFrameSize  = 4 * 1024
	sendBuffer    = 64
	subscribeWait = 10 * time.Second
)

// RoomListener is told when a chat session gets its first viewer and when
// the last one leaves.
type RoomListener interface {
	RoomOpened(sessionID string, c *Client)
	RoomClosed(sessionID string)
}

// Authorizer decides whether a viewer may follow a chat session.
type Authorizer func(ctx context.Context, c *Client, sessionID string) error

// Client is one browser websocket
type Client struct {
	Principal domain.Principal
	API       *backend.Client

	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]bool
}

// Hub keeps browser websockets and the chat sessions (rooms) they follow.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]bool
	clients map[*Client]bool

	listener  RoomListener
	authorize Authorizer
	log       *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]bool),
		clients: make(map[*Client]bool),
		log:     log,
	}
}

// Listen sets the room listener. Call before serving clients.
func (h *Hub) Listen(l RoomListener) { h.listener = l }

// Authorize sets the subscribe check. Call before serving clients.
func (h *Hub) Authorize(a Authorizer) { h.authorize = a }

// Serve runs the connection until it closes.
func (h *Hub) Serve(conn *websocket.Conn, p domain.Principal, api *backend.Client) {
	c := &Client{
		Principal: p,
		API:       api,
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		rooms:     make(map[string]bool),
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

// Broadcast sends ev to every viewer of sessionID and returns how many got it.
func (h *Hub) Broadcast(sessionID string, ev Event) int {
	data, err := json.Marshal(ev)
	if err != nil {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.rooms[sessionID] {
		select {
		case c.send <- data:
			n++
		default:
			// медленный клиент, пропускаем
		}
	}
	return n
}

// Viewers returns the number of clients following sessionID.
func (h *Hub) Viewers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// Clients returns the number of open websockets.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) join(c *Client, sessionID string) {
	h.mu.Lock()
	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[sessionID] = room
	}
	first := len(room) == 0
	room[c] = true
	c.rooms[sessionID] = true
	h.mu.Unlock()

	if first && h.listener != nil {
		h.listener.RoomOpened(sessionID, c)
	}
}

func (h *Hub) leave(c *Client, sessionID string) {
	h.mu.Lock()
	last := h.leaveLocked(c, sessionID)
	h.mu.Unlock()

	if last && h.listener != nil {
		h.listener.RoomClosed(sessionID)
	}
}

func (h *Hub) leaveLocked(c *Client, sessionID string) bool {
	room, ok := h.rooms[sessionID]
	if !ok || !room[c] {
		return false
	}
	delete(room, c)
	delete(c.rooms, sessionID)
	if len(room) == 0 {
		delete(h.rooms, sessionID)
		return true
	}
	return false
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	var closed []string
	for sessionID := range c.rooms {
		if h.leaveLocked(c, sessionID) {
			closed = append(closed, sessionID)
		}
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	if h.listener != nil {
		for _, sessionID := range closed {
			h.listener.RoomClosed(sessionID)
		}
	}
}

func (h *Hub) reply(c *Client, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("chat websocket closed", "admin_id", c.Principal.AdminID, "error", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.reply(c, Event{Type: EventError, Code: "INVALID_JSON", Error: "Failed to parse message"})
			continue
		}

		switch frame.Type {
		case "subscribe":
			h.subscribe(c, frame.SessionID)
		case "unsubscribe":
			h.leave(c, frame.SessionID)
			h.reply(c, Event{Type: EventUnsubscribed, SessionID: frame.SessionID})
		case "ping":
			h.reply(c, Event{Type: EventPong})
		default:
			h.reply(c, Event{Type: EventError, Code: "UNKNOWN_TYPE", Error: "Unknown message type: " + frame.Type})
		}
	}
}

func (h *Hub) subscribe(c *Client, sessionID string) {
	if sessionID == "" {
		h.reply(c, Event{Type: EventError, Code: "INVALID_SESSION", Error: "sessionId is required"})
		return
	}
	if h.authorize != nil {
		ctx, cancel := context.WithTimeout(context.Background(), subscribeWait)
		err := h.authorize(ctx, c, sessionID)
		cancel()
		if err != nil {
			h.reply(c, Event{Type: EventError, SessionID: sessionID, Code: "FORBIDDEN", Error: err.Error()})
			return
		}
	}
	h.join(c, sessionID)
	h.reply(c, Event{Type: EventSubscribed, SessionID: sessionID})
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
