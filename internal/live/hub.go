package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"liveqa/lib/sl"
)

const (
	EventQuestionCreated = "question.created"
	EventQuestionUpvoted = "question.upvoted"
	EventQuestionUpdated = "question.updated"
	EventQuestionDeleted = "question.deleted"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Event is pushed to every listener of a session.
type Event struct {
	Type      string      `json:"type"`
	SessionId string      `json:"sessionId"`
	Data      interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans question events out to websocket listeners grouped by session.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*client]struct{}
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the feed is public and read-only
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.With(sl.Module("live")),
	}
}

// Publish queues the event for every listener of the session. Listeners
// whose buffer is full are disconnected.
func (h *Hub) Publish(sessionID string, event Event) {
	event.SessionId = sessionID
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal event", slog.String("type", event.Type), sl.Err(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.sessions[sessionID] {
		select {
		case c.send <- data:
		default:
			h.log.Debug("dropping slow listener", sl.Session(sessionID))
			h.removeLocked(sessionID, c)
		}
	}
}

// Serve upgrades the request and streams session events until the peer leaves.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(sessionID, c)

	go h.writePump(c)
	h.readPump(sessionID, c)
	return nil
}

// Count returns the number of listeners of a session.
func (h *Hub) Count(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

// Close disconnects every listener.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, clients := range h.sessions {
		for c := range clients {
			h.removeLocked(sessionID, c)
		}
	}
}

func (h *Hub) add(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*client]struct{})
	}
	h.sessions[sessionID][c] = struct{}{}
	h.log.Debug("listener connected", sl.Session(sessionID), slog.Int("total", len(h.sessions[sessionID])))
}

func (h *Hub) remove(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sessionID, c)
}

// removeLocked closes the send channel exactly once; writePump then closes the connection.
func (h *Hub) removeLocked(sessionID string, c *client) {
	clients, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	if _, ok = clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.sessions, sessionID)
	}
}

// readPump discards incoming messages and keeps the read deadline fresh.
func (h *Hub) readPump(sessionID string, c *client) {
	defer h.remove(sessionID, c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("listener read", sl.Session(sessionID), sl.Err(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
