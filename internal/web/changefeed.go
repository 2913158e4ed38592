package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/repository"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize = 512
)

// feedClient streams one user's change events over a WebSocket
type feedClient struct {
	conn   *websocket.Conn
	events <-chan entity.ChangeEvent
	log    *slog.Logger
	userID string
}

// NewChangeFeedHandler upgrades to a WebSocket and pushes every change event
// of the authenticated user as {eventType, table, new, old} JSON.
func NewChangeFeedHandler(log *slog.Logger, feed repository.ChangeFeed, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserFromContext(r.Context())

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", slog.Any("error", err))
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		events, err := feed.Subscribe(ctx, userID)
		if err != nil {
			log.Error("subscribe failed", slog.String("user", userID), slog.Any("error", err))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"))
			return
		}

		client := &feedClient{conn: conn, events: events, log: log, userID: userID}
		log.Debug("websocket client registered", slog.String("user", userID))

		go client.readPump(cancel)
		client.writePump(ctx)
	}
}

// readPump drains control frames and cancels the stream when the peer leaves
func (c *feedClient) readPump(cancel context.CancelFunc) {
	defer cancel()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket error", slog.String("user", c.userID), slog.Any("error", err))
			}
			return
		}
	}
}

// writePump forwards change events and keeps the connection alive
func (c *feedClient) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-c.events:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The broker dropped us
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				c.log.Error("failed to encode change event", slog.Any("error", err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
