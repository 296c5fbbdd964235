// Package hub tracks live connections and fans messages out to them.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/metrics"
)

// Hub is the connection registry and broadcast sink. All state is guarded
// by the mutex; handlers for different connections run on their own
// goroutines.
type Hub struct {
	mu    sync.RWMutex
	conns map[domain.Connection]bool
	bots  map[domain.Connection]bool
}

func New() *Hub {
	return &Hub{
		conns: make(map[domain.Connection]bool),
		bots:  make(map[domain.Connection]bool),
	}
}

// Register adds a connection to the live set. Callers invoke this exactly
// once per connection, before the read loop starts.
func (h *Hub) Register(conn domain.Connection) {
	h.mu.Lock()
	h.conns[conn] = true
	count := len(h.conns)
	h.mu.Unlock()

	metrics.ConnectionsCurrent.Set(float64(count))
	metrics.ConnectionsTotal.Inc()
	slog.Info("client connected", "connection_id", conn.ID(), "total", count)
}

// Unregister removes a connection from the live set. Safe to call while
// sends to the connection are in flight; those simply fail and are logged.
func (h *Hub) Unregister(conn domain.Connection) {
	h.mu.Lock()
	delete(h.conns, conn)
	delete(h.bots, conn)
	count := len(h.conns)
	h.mu.Unlock()

	metrics.ConnectionsCurrent.Set(float64(count))
	slog.Info("client disconnected", "connection_id", conn.ID(), "remaining", count)
}

// MarkBot flags the connection as the privileged game-server control channel.
func (h *Hub) MarkBot(conn domain.Connection) {
	h.mu.Lock()
	if h.conns[conn] {
		h.bots[conn] = true
	}
	h.mu.Unlock()

	slog.Info("bot identified", "connection_id", conn.ID())
}

// BotConnections returns the (possibly empty) subset of live connections
// flagged as the bot.
func (h *Hub) BotConnections() []domain.Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	bots := make([]domain.Connection, 0, len(h.bots))
	for conn := range h.bots {
		bots = append(bots, conn)
	}
	return bots
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast serializes v once and delivers it to every registered connection.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal broadcast message", "error", err)
		return
	}
	h.BroadcastRaw(data)
}

// BroadcastRaw delivers a pre-serialized frame to every registered
// connection. Best-effort: a failed send is logged per recipient and does
// not abort delivery to the others. Send failures alone never unregister a
// connection; that happens via the connection's own closure detection.
func (h *Hub) BroadcastRaw(data []byte) {
	h.mu.RLock()
	recipients := make([]domain.Connection, 0, len(h.conns))
	for conn := range h.conns {
		recipients = append(recipients, conn)
	}
	h.mu.RUnlock()

	metrics.BroadcastsTotal.Inc()
	for _, conn := range recipients {
		if err := conn.Send(data); err != nil {
			metrics.SendFailuresTotal.Inc()
			slog.Warn("failed to deliver broadcast", "connection_id", conn.ID(), "error", err)
		}
	}
}

var _ domain.Registry = (*Hub)(nil)
