package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/finvex/fxorders/internal/relay"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// handleOrderFeed upgrades the connection and streams every subsequently
// published order event to it as a text message. No past events are
// replayed. The subscription is removed when the connection ends.
func (s *Server) handleOrderFeed(c *gin.Context) {
	// Subscribing before the handshake completes guarantees the client
	// misses no event published after the connection is established.
	sub, err := s.relay.Subscribe()
	if err != nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.relay.Unsubscribe(sub)
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.logger.Debug("order feed connected", zap.String("subscriber", sub.ID().String()))
	go s.feedWriter(conn, sub)
	go s.feedReader(conn, sub)
}

// feedReader consumes control frames and detects disconnect. Client data
// frames are ignored; the feed is one-way.
func (s *Server) feedReader(conn *websocket.Conn, sub *relay.Subscriber) {
	defer func() {
		s.relay.Unsubscribe(sub)
		conn.Close()
	}()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// feedWriter drains the subscriber queue onto the connection and keeps it
// alive with pings. Exits when the queue closes (unsubscribe or relay
// shutdown) or a write fails.
func (s *Server) feedWriter(conn *websocket.Conn, sub *relay.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case evt, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, evt.Encode()); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
