// Package metrics defines the Prometheus instrumentation for the hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebSocket connection metrics
var (
	// ConnectionsCurrent tracks the number of currently registered connections
	ConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connections_current",
			Help: "Number of currently registered WebSocket connections",
		},
	)

	// ConnectionsTotal tracks total accepted connections
	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_connections_total",
			Help: "Total accepted WebSocket connections",
		},
	)

	// SendFailuresTotal tracks failed deliveries to individual connections
	SendFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_send_failures_total",
			Help: "Total failed message deliveries to individual connections",
		},
	)

	// BroadcastsTotal tracks fan-out operations issued by the router
	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_broadcasts_total",
			Help: "Total broadcast operations",
		},
	)
)

// Router metrics
var (
	// FramesTotal tracks inbound frames by top-level action
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_frames_total",
			Help: "Total inbound frames by action",
		},
		[]string{"action"},
	)

	// FramesDroppedTotal tracks dropped frames by reason
	FramesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_frames_dropped_total",
			Help: "Total dropped frames by reason (malformed, unknown_action, rate_limited)",
		},
		[]string{"reason"},
	)

	// BotCommandsTotal tracks console commands forwarded to bot connections
	BotCommandsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_bot_commands_total",
			Help: "Total console commands forwarded to bot connections",
		},
	)
)

// Translation metrics
var (
	// TranslationCacheHits tracks requests served from the cache
	TranslationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translation_cache_hits_total",
			Help: "Translation requests served from the cache",
		},
	)

	// TranslationCacheMisses tracks requests that reached the external boundary
	TranslationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translation_cache_misses_total",
			Help: "Translation requests not found in the cache",
		},
	)

	// TranslationCacheEvictions tracks entries removed by the halving eviction
	TranslationCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translation_cache_evictions_total",
			Help: "Translation cache entries evicted",
		},
	)

	// TranslationDeduplicated tracks requests dropped because the key was in flight
	TranslationDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translation_deduplicated_total",
			Help: "Translation requests dropped because a request for the same key was in flight",
		},
	)

	// TranslationRequestsTotal tracks external translation calls by status
	TranslationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_requests_total",
			Help: "External translation calls by status (success, error)",
		},
		[]string{"status"},
	)
)

// Persistence metrics
var (
	// PersistenceFailuresTotal tracks best-effort write failures by record
	PersistenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_failures_total",
			Help: "Best-effort persistence failures by record",
		},
		[]string{"record"},
	)
)
