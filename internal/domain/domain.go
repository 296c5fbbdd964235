package domain

import (
	"context"
	"encoding/json"
	"errors"
)

// --- Connections ---

// Connection is a single live client as seen by the hub. The registry owns
// a connection for its lifetime; no other component stores one.
type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// Broadcaster fans messages out to registered connections. Delivery is
// best-effort: a failed send to one recipient never aborts the others.
type Broadcaster interface {
	Broadcast(v any)
	BroadcastRaw(data []byte)
	BotConnections() []Connection
}

// Registry tracks live connections and the privileged bot channel.
type Registry interface {
	Broadcaster
	Register(conn Connection)
	Unregister(conn Connection)
	MarkBot(conn Connection)
}

// MessageHandler processes one inbound frame from a connection.
type MessageHandler interface {
	Handle(conn Connection, data []byte)
}

// --- Wire envelope ---

// Envelope is the top-level shape of every inbound frame. Only the fields
// the router inspects are decoded; the raw frame is kept for verbatim
// pass-through broadcast.
type Envelope struct {
	Action   string          `json:"action"`
	Source   string          `json:"source,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
	Message  json.RawMessage `json:"message,omitempty"`
}

// ExtMessage is the nested message object carried by ext_command frames.
type ExtMessage struct {
	Content json.RawMessage `json:"content"`
}

// ExtContent is the nested content object of an ext_command frame. Which
// fields are meaningful depends on Action. UserID and OpaqueID are opaque
// pass-through identity values; clients send them as strings or numbers, so
// they decode as any and are re-emitted as received.
type ExtContent struct {
	Action    string          `json:"action"`
	CacheKey  string          `json:"cache_key"`
	Text      string          `json:"text"`
	MessageID string          `json:"message_id"`
	Settings  json.RawMessage `json:"settings"`
	Username  string          `json:"username"`
	UserID    any             `json:"user_id"`
	OpaqueID  any             `json:"opaque_id"`
	Timestamp float64         `json:"timestamp"`
}

// --- Persistence boundary ---

// Record names use the basenames of the JSON files the original deployment
// kept next to the server process.
const (
	RecordChatHistory = "console"
	RecordServerState = "serverstate"
	RecordSettings    = "current_settings"
)

// ErrRecordNotFound is returned by StateStore.Get for an absent record.
var ErrRecordNotFound = errors.New("record not found")

// StateStore is the persistence boundary: get/set of raw JSON by named
// record. Implementations are best-effort; callers log and continue on error.
type StateStore interface {
	Get(ctx context.Context, record string) ([]byte, error)
	Set(ctx context.Context, record string, data []byte) error
}

// --- Translation boundary ---

// Translator is the outbound translation boundary. The target language is
// fixed by the implementation's configuration.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}
