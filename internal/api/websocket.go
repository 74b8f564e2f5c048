package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/gyaneshwarpardhi/productflow/internal/editor"
	"github.com/gyaneshwarpardhi/productflow/internal/input"
	"github.com/gyaneshwarpardhi/productflow/internal/session"
	"github.com/gyaneshwarpardhi/productflow/internal/surface"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	sendBufferSize = 64
)

// Outbound message types.
const (
	msgState  = "state"
	msgResult = "result"
	msgError  = "error"
)

// wsMessage is every frame the server sends.
type wsMessage struct {
	Type   string        `json:"type"`
	State  *editor.State `json:"state,omitempty"`
	Result *wsResult     `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// wsResult acknowledges one inbound event. The resulting scene arrives
// separately as a state message.
type wsResult struct {
	EventID string          `json:"event_id"`
	Outcome surface.Outcome `json:"outcome"`
	Error   string          `json:"error,omitempty"`
	Status  int             `json:"status"`
}

// wsClient bridges one WebSocket connection to one session: input events
// in, results and scenes out.
type wsClient struct {
	conn   *websocket.Conn
	sess   *session.Session
	states <-chan editor.State
	send   chan wsMessage
	done   chan struct{}
	log    *slog.Logger
}

// GET /v1/sessions/{id}/ws: stream scenes, accept input events.
func (h *Handler) streamSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn("websocket upgrade failed", "session", s.ID(), "err", err)
		return
	}
	states, cancel, err := s.Subscribe()
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error()), time.Now().Add(writeWait))
		conn.Close()
		return
	}

	c := &wsClient{
		conn:   conn,
		sess:   s,
		states: states,
		send:   make(chan wsMessage, sendBufferSize),
		done:   make(chan struct{}),
		log:    h.log.With("session", s.ID(), "remote", r.RemoteAddr),
	}
	c.log.Info("websocket connected")
	go c.writePump()
	c.readPump(cancel)
}

// readPump decodes inbound events and dispatches them on the session.
func (c *wsClient) readPump(unsubscribe func()) {
	defer func() {
		unsubscribe()
		c.conn.Close()
		c.log.Info("websocket disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read error", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			c.enqueue(wsMessage{Type: msgError, Error: "binary messages are not supported"})
			continue
		}
		c.enqueue(c.handle(data))
	}
}

func (c *wsClient) handle(data []byte) wsMessage {
	var ev input.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return wsMessage{Type: msgError, Error: "invalid JSON: " + err.Error()}
	}
	if err := validateRequest(&ev); err != nil {
		return wsMessage{Type: msgError, Error: err.Error()}
	}
	ev.ReceivedAt = time.Now()

	res, err := c.sess.Dispatch(context.Background(), &ev)
	if err != nil {
		return wsMessage{Type: msgError, Error: err.Error()}
	}
	out := &wsResult{EventID: res.EventID, Outcome: res.Outcome, Status: http.StatusOK}
	if res.Err() != nil {
		out.Error = res.Error
		out.Status = statusFor(res.Err())
	}
	return wsMessage{Type: msgResult, Result: out}
}

// enqueue hands m to the write pump unless it has already stopped.
func (c *wsClient) enqueue(m wsMessage) {
	select {
	case c.send <- m:
	case <-c.done:
	}
}

// writePump is the only goroutine that writes to the connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.conn.Close()
	}()

	for {
		select {
		case st, ok := <-c.states:
			if !ok {
				// Session closed or reader gone.
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if !c.write(wsMessage{Type: msgState, State: &st}) {
				return
			}
		case m := <-c.send:
			if !c.write(m) {
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

func (c *wsClient) write(m wsMessage) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(m); err != nil {
		c.log.Warn("websocket write failed", "type", m.Type, "err", err)
		return false
	}
	return true
}

// originChecker allows requests whose Origin is in allowed. "*" allows all;
// requests without an Origin header (non-browser clients) are allowed.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}
