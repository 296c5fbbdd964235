// Package protocol routes inbound frames to the hub's subsystems.
package protocol

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/iancoleman/orderedmap"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/metrics"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/settings"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/store"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/translate"
)

// passthroughActions is the allow-list of actions relayed verbatim to all
// connections.
var passthroughActions = map[string]bool{
	"message":                   true,
	"command":                   true,
	"ext_command":               true,
	"serverstate":               true,
	"afk_notification":          true,
	"afk_help":                  true,
	"server_record_celebration": true,
	"connect_error":             true,
	"connect_success":           true,
	"translation_result":        true,
	"settings_applied":          true,
	"current_settings":          true,
}

// chatActions is the subset of passthrough actions recorded in chat history.
var chatActions = map[string]bool{
	"message":                   true,
	"command":                   true,
	"ext_command":               true,
	"afk_notification":          true,
	"afk_help":                  true,
	"server_record_celebration": true,
}

// Router dispatches each inbound frame to the registry, the translation
// gate, the settings store, or the broadcast/persist sink. It keeps no state
// of its own across frames.
type Router struct {
	reg          domain.Registry
	translations *translate.Service
	settings     *settings.Store
	journal      *store.Journal
}

func NewRouter(reg domain.Registry, translations *translate.Service, settingsStore *settings.Store, journal *store.Journal) *Router {
	return &Router{
		reg:          reg,
		translations: translations,
		settings:     settingsStore,
		journal:      journal,
	}
}

// Handle processes one inbound frame. A malformed or unrecognized frame is
// logged and dropped; the connection stays open and gets no error reply.
// Operations started here outlive the connection that issued them, so they
// run on a background context rather than the connection's.
func (r *Router) Handle(conn domain.Connection, frame []byte) {
	ctx := context.Background()

	var env domain.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		metrics.FramesDroppedTotal.WithLabelValues("malformed").Inc()
		slog.Error("failed to parse frame", "connection_id", conn.ID(), "error", err)
		return
	}

	metrics.FramesTotal.WithLabelValues(env.Action).Inc()
	slog.Debug("received frame", "connection_id", conn.ID(), "action", env.Action)

	switch {
	case env.Action == "identify_bot":
		r.reg.MarkBot(conn)
		return

	case env.Action == "sync_settings" && env.Source == "defrag_bot":
		raw := env.Settings
		if len(raw) == 0 {
			raw = json.RawMessage(`{}`)
		}
		r.settings.SyncFromBot(ctx, raw)
		return
	}

	if env.Action == "ext_command" && len(env.Message) > 0 {
		if handled := r.handleExtCommand(ctx, conn, env.Message); handled {
			return
		}
	}

	if !passthroughActions[env.Action] {
		metrics.FramesDroppedTotal.WithLabelValues("unknown_action").Inc()
		slog.Warn("unsupported message action", "connection_id", conn.ID(), "action", env.Action)
		return
	}

	r.reg.BroadcastRaw(frame)

	if chatActions[env.Action] {
		r.journal.AppendChat(ctx, frame)
	}
	if env.Action == "serverstate" {
		if len(env.Message) == 0 {
			slog.Error("serverstate frame missing message payload", "connection_id", conn.ID())
			return
		}
		r.journal.SaveServerState(ctx, env.Message)
	}
}

// handleExtCommand dispatches the nested content of an ext_command frame.
// Returns false when the content is absent or carries no recognized nested
// action, in which case the frame falls through to the outer allow-list.
func (r *Router) handleExtCommand(ctx context.Context, conn domain.Connection, message json.RawMessage) bool {
	var msg domain.ExtMessage
	if err := json.Unmarshal(message, &msg); err != nil || len(msg.Content) == 0 {
		return false
	}

	var content domain.ExtContent
	if err := json.Unmarshal(msg.Content, &content); err != nil {
		// Content is not an object; fall through to the outer action.
		return false
	}

	switch content.Action {
	case "translate_message":
		if content.CacheKey == "" {
			metrics.FramesDroppedTotal.WithLabelValues("malformed").Inc()
			slog.Error("translation request missing cache_key", "connection_id", conn.ID())
			return true
		}
		if content.Text == "" {
			metrics.FramesDroppedTotal.WithLabelValues("malformed").Inc()
			slog.Error("translation request missing text", "connection_id", conn.ID(), "cache_key", content.CacheKey)
			return true
		}
		slog.Info("translation request", "connection_id", conn.ID(), "cache_key", content.CacheKey)
		r.translations.Request(ctx, content.CacheKey, content.Text)
		return true

	case "settings_batch":
		batch := orderedmap.New()
		if len(content.Settings) > 0 {
			if err := json.Unmarshal(content.Settings, batch); err != nil {
				metrics.FramesDroppedTotal.WithLabelValues("malformed").Inc()
				slog.Error("malformed settings batch", "connection_id", conn.ID(), "error", err)
				return true
			}
		}
		r.settings.ApplyBatch(ctx, batch, content.Username, content.UserID, content.OpaqueID, content.Timestamp)
		return true

	case "get_current_settings":
		r.sendCurrentSettings(conn)
		return true
	}

	return false
}

// sendCurrentSettings replies to the requesting connection only.
func (r *Router) sendCurrentSettings(conn domain.Connection) {
	response, err := json.Marshal(map[string]any{
		"action":   "current_settings",
		"settings": r.settings.Current(),
	})
	if err != nil {
		slog.Error("failed to marshal current settings", "error", err)
		return
	}
	if err := conn.Send(response); err != nil {
		slog.Warn("failed to send current settings", "connection_id", conn.ID(), "error", err)
	}
}

var _ domain.MessageHandler = (*Router)(nil)
