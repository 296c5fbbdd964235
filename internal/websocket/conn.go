// Package websocket adapts gorilla/websocket connections to the hub's
// Connection contract.
package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536
	sendBuffer     = 256

	// Inbound frame rate limit per connection; frames beyond the burst are
	// dropped before they reach the router.
	frameRate  = 20
	frameBurst = 40
)

// Conn wraps one gorilla connection with a buffered write pump and a read
// pump that feeds the message handler. Frames from one connection are
// processed in receipt order; no ordering holds across connections.
type Conn struct {
	id      string
	ws      *websocket.Conn
	send    chan []byte
	reg     domain.Registry
	handler domain.MessageHandler
	limiter *rate.Limiter

	closeOnce sync.Once
}

func NewConn(id string, ws *websocket.Conn, reg domain.Registry, handler domain.MessageHandler) *Conn {
	return &Conn{
		id:      id,
		ws:      ws,
		send:    make(chan []byte, sendBuffer),
		reg:     reg,
		handler: handler,
		limiter: rate.NewLimiter(rate.Limit(frameRate), frameBurst),
	}
}

func (c *Conn) ID() string { return c.id }

// Send queues a text frame for delivery. Returns an error when the write
// buffer is full, which the hub treats as a failed delivery.
func (c *Conn) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return websocket.ErrCloseSent
	}
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close()
	})
	return err
}

// Start registers the connection and runs its pumps. The read pump owns
// unregistration: it fires exactly once, on normal or error close.
func (c *Conn) Start() {
	c.reg.Register(c)
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.reg.Unregister(c)
		c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "connection_id", c.id, "error", err)
			}
			return
		}

		if !c.limiter.Allow() {
			metrics.FramesDroppedTotal.WithLabelValues("rate_limited").Inc()
			slog.Warn("frame rate limit exceeded", "connection_id", c.id)
			continue
		}

		c.handler.Handle(c, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ domain.Connection = (*Conn)(nil)
