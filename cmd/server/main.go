package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/config"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/hub"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/logging"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/protocol"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/server"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/settings"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/store"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/translate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	host := flag.String("host", cfg.Host, "Host or IP address to listen on")
	port := flag.Int("port", cfg.Port, "Port to listen on")
	flag.Parse()
	cfg.Host = *host
	cfg.Port = *port

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	var stateStore domain.StateStore
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		stateStore = redisStore
		slog.Info("using redis persistence", "url", cfg.RedisURL)
	} else {
		fileStore, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			slog.Error("failed to open data directory", "error", err)
			os.Exit(1)
		}
		stateStore = fileStore
		slog.Info("using file persistence", "dir", cfg.DataDir)
	}

	if cfg.TranslateAPIKey == "" {
		slog.Warn("no translation API key configured, translation requests will be dropped")
	}

	clock := clockwork.NewRealClock()
	registry := hub.New()
	journal := store.NewJournal(stateStore)
	settingsStore := settings.NewStore(ctx, stateStore, registry, clock)
	translator := translate.NewClient(translate.ClientConfig{
		APIKey:  cfg.TranslateAPIKey,
		URL:     cfg.TranslateURL,
		Target:  cfg.TranslateTarget,
		Referer: cfg.TranslateReferer,
		Timeout: cfg.TranslateTimeout,
	})
	translations := translate.NewService(translator, registry, clock, cfg.TranslateCacheMax)
	router := protocol.NewRouter(registry, translations, settingsStore, journal)

	srv := server.NewServer(cfg, registry, router)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
