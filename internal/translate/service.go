package translate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/metrics"
)

type resultMessage struct {
	Action      string  `json:"action"`
	CacheKey    string  `json:"cache_key"`
	Translation string  `json:"translation"`
	Timestamp   float64 `json:"timestamp"`
}

// Service is the translation cache and dedup gate. The mutex guards the
// check-then-set on the cache and the in-flight set, preserving the
// at-most-one-outbound-request-per-key contract under concurrent handlers.
type Service struct {
	mu       sync.Mutex
	cache    *cache
	inflight map[string]struct{}

	translator domain.Translator
	reg        domain.Broadcaster
	clock      clockwork.Clock
}

func NewService(translator domain.Translator, reg domain.Broadcaster, clock clockwork.Clock, cacheMax int) *Service {
	return &Service{
		cache:      newCache(cacheMax),
		inflight:   make(map[string]struct{}),
		translator: translator,
		reg:        reg,
		clock:      clock,
	}
}

// Request resolves a translation for the given cache key. A cached key is
// answered by broadcasting the stored translation without touching the
// external boundary. A key already being resolved is dropped; its requester
// relies on the eventual broadcast. Otherwise the key is marked in flight
// and the boundary is invoked; any failure is logged and the request
// silently abandoned. The in-flight marker is cleared on every path so a
// later request for the same key can proceed.
func (s *Service) Request(ctx context.Context, cacheKey, text string) {
	s.mu.Lock()
	if translation, ok := s.cache.get(cacheKey); ok {
		size := s.cache.len()
		s.mu.Unlock()
		metrics.TranslationCacheHits.Inc()
		slog.Info("translation cache hit", "cache_key", truncate(cacheKey, 50), "cached", size)
		s.broadcastResult(cacheKey, translation)
		return
	}
	if _, pending := s.inflight[cacheKey]; pending {
		s.mu.Unlock()
		metrics.TranslationDeduplicated.Inc()
		slog.Info("translation already in progress", "cache_key", truncate(cacheKey, 50))
		return
	}
	s.inflight[cacheKey] = struct{}{}
	s.mu.Unlock()

	metrics.TranslationCacheMisses.Inc()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, cacheKey)
		s.mu.Unlock()
	}()

	translation, err := s.translator.Translate(ctx, text)
	if err != nil {
		metrics.TranslationRequestsTotal.WithLabelValues("error").Inc()
		slog.Error("translation failed", "cache_key", truncate(cacheKey, 50), "error", err)
		return
	}
	metrics.TranslationRequestsTotal.WithLabelValues("success").Inc()

	s.mu.Lock()
	evicted := s.cache.put(cacheKey, translation)
	size := s.cache.len()
	s.mu.Unlock()

	if evicted > 0 {
		metrics.TranslationCacheEvictions.Add(float64(evicted))
		slog.Info("translation cache limit reached", "evicted", evicted, "cached", size)
	}
	slog.Info("translation completed", "text", truncate(text, 30), "translation", truncate(translation, 30), "cached", size)

	s.broadcastResult(cacheKey, translation)
}

// CachedCount returns the number of cached translations.
func (s *Service) CachedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.len()
}

func (s *Service) broadcastResult(cacheKey, translation string) {
	s.reg.Broadcast(resultMessage{
		Action:      "translation_result",
		CacheKey:    cacheKey,
		Translation: translation,
		Timestamp:   float64(s.clock.Now().UnixMilli()) / 1000,
	})
}

// truncate shortens log fields by character so multi-byte chat text is
// never cut mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
