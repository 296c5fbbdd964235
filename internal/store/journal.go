package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/metrics"
)

const maxChatHistory = 100

// Journal persists chat history and the server-state snapshot. Failures are
// logged and never escalate; persistence is decoupled from delivery.
type Journal struct {
	store domain.StateStore
}

func NewJournal(store domain.StateStore) *Journal {
	return &Journal{store: store}
}

// AppendChat appends a message envelope to the chat history, keeping only
// the most recent entries. A corrupt or missing history record is treated
// as empty.
func (j *Journal) AppendChat(ctx context.Context, envelope json.RawMessage) {
	var history []json.RawMessage

	data, err := j.store.Get(ctx, domain.RecordChatHistory)
	if err == nil {
		if err := json.Unmarshal(data, &history); err != nil {
			slog.Warn("corrupt chat history, starting empty", "error", err)
			history = nil
		}
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		slog.Warn("failed to read chat history", "error", err)
	}

	history = append(history, envelope)
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	out, err := json.Marshal(history)
	if err != nil {
		slog.Error("failed to marshal chat history", "error", err)
		return
	}
	if err := j.store.Set(ctx, domain.RecordChatHistory, out); err != nil {
		metrics.PersistenceFailuresTotal.WithLabelValues(domain.RecordChatHistory).Inc()
		slog.Error("failed to persist chat history", "error", err)
	}
}

// SaveServerState overwrites the server-state snapshot with the most recent
// state payload. No history is kept.
func (j *Journal) SaveServerState(ctx context.Context, state json.RawMessage) {
	if err := j.store.Set(ctx, domain.RecordServerState, state); err != nil {
		metrics.PersistenceFailuresTotal.WithLabelValues(domain.RecordServerState).Inc()
		slog.Error("failed to persist server state", "error", err)
	}
}
