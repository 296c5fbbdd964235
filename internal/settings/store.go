package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/iancoleman/orderedmap"
	"github.com/jonboulle/clockwork"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/metrics"
)

const fallbackUsername = "Unknown User"

type appliedMessage struct {
	Action    string                 `json:"action"`
	Settings  *orderedmap.OrderedMap `json:"settings"`
	Timestamp float64                `json:"timestamp"`
	Username  string                 `json:"username"`
	UserID    any                    `json:"user_id"`
	OpaqueID  any                    `json:"opaque_id"`
}

type currentMessage struct {
	Action   string          `json:"action"`
	Settings json.RawMessage `json:"settings"`
}

type commandFrame struct {
	Action    string  `json:"action"`
	Command   string  `json:"command"`
	Timestamp float64 `json:"timestamp"`
}

// Store holds the last-known UI settings. Viewer batches merge into the map
// (last write wins); bot syncs overwrite it with the game's ground truth.
// The snapshot is persisted best-effort; a write failure keeps the in-memory
// state authoritative.
type Store struct {
	mu       sync.Mutex
	snapshot map[string]any
	loaded   bool

	persist domain.StateStore
	reg     domain.Broadcaster
	clock   clockwork.Clock
}

func NewStore(ctx context.Context, persist domain.StateStore, reg domain.Broadcaster, clock clockwork.Clock) *Store {
	s := &Store{
		persist: persist,
		reg:     reg,
		clock:   clock,
	}

	data, err := persist.Get(ctx, domain.RecordSettings)
	if err == nil {
		var snapshot map[string]any
		if err := json.Unmarshal(data, &snapshot); err != nil {
			slog.Warn("corrupt settings snapshot, starting empty", "error", err)
		} else {
			s.snapshot = snapshot
			s.loaded = true
		}
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		slog.Warn("failed to load settings snapshot", "error", err)
	}

	return s
}

// ApplyBatch merges a viewer-submitted batch into the stored map, compiles
// the submitted subset into console commands for the bot, and broadcasts a
// settings_applied event naming the submitting user.
func (s *Store) ApplyBatch(ctx context.Context, batch *orderedmap.OrderedMap, username string, userID, opaqueID any, timestamp float64) {
	if username == "" {
		username = fallbackUsername
	}
	if timestamp == 0 {
		timestamp = s.now()
	}

	s.mu.Lock()
	if s.snapshot == nil {
		s.snapshot = make(map[string]any)
	}
	for _, name := range batch.Keys() {
		value, _ := batch.Get(name)
		s.snapshot[name] = value
	}
	s.loaded = true
	s.save(ctx)
	s.mu.Unlock()

	slog.Info("settings batch applied", "username", username, "settings", len(batch.Keys()))

	s.sendToBot(Compile(batch))

	s.reg.Broadcast(appliedMessage{
		Action:    "settings_applied",
		Settings:  batch,
		Timestamp: timestamp,
		Username:  username,
		UserID:    userID,
		OpaqueID:  opaqueID,
	})
}

// SyncFromBot overwrites the stored map with the bot-reported ground truth
// and broadcasts current_settings so viewer UIs reconcile to it.
func (s *Store) SyncFromBot(ctx context.Context, raw json.RawMessage) {
	var snapshot map[string]any
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		slog.Error("malformed settings sync from bot", "error", err)
		return
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.loaded = true
	s.save(ctx)
	s.mu.Unlock()

	slog.Info("settings synchronized from bot", "settings", len(snapshot))

	s.reg.Broadcast(currentMessage{
		Action:   "current_settings",
		Settings: raw,
	})
}

// Current returns the stored settings map, or the built-in defaults when
// nothing has been persisted yet.
func (s *Store) Current() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return Defaults()
	}

	out := make(map[string]any, len(s.snapshot))
	for name, value := range s.snapshot {
		out[name] = value
	}
	return out
}

// save persists the snapshot best-effort. Callers hold the mutex.
func (s *Store) save(ctx context.Context) {
	data, err := json.Marshal(s.snapshot)
	if err != nil {
		slog.Error("failed to marshal settings snapshot", "error", err)
		return
	}
	if err := s.persist.Set(ctx, domain.RecordSettings, data); err != nil {
		metrics.PersistenceFailuresTotal.WithLabelValues(domain.RecordSettings).Inc()
		slog.Error("failed to persist settings snapshot", "error", err)
	}
}

// sendToBot forwards compiled console commands to all bot connections, one
// execute_command frame per command.
func (s *Store) sendToBot(commands []string) {
	bots := s.reg.BotConnections()
	if len(bots) == 0 {
		slog.Warn("bot not connected, cannot forward commands", "commands", len(commands))
		return
	}

	for _, command := range commands {
		frame, err := json.Marshal(commandFrame{
			Action:    "execute_command",
			Command:   command,
			Timestamp: s.now(),
		})
		if err != nil {
			slog.Error("failed to marshal command frame", "error", err)
			continue
		}

		for _, bot := range bots {
			if err := bot.Send(frame); err != nil {
				slog.Error("failed to send command to bot", "connection_id", bot.ID(), "command", command, "error", err)
				continue
			}
			metrics.BotCommandsTotal.Inc()
			slog.Info("sent command to bot", "command", command)
		}
	}
}

func (s *Store) now() float64 {
	return float64(s.clock.Now().UnixMilli()) / 1000
}
