package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/config"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/hub"
)

type Server struct {
	echo    *echo.Echo
	config  *config.Config
	hub     *hub.Hub
	handler domain.MessageHandler
}

func NewServer(cfg *config.Config, h *hub.Hub, handler domain.MessageHandler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	srv := &Server{
		echo:    e,
		config:  cfg,
		hub:     h,
		handler: handler,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("starting WebSocket server", "host", s.config.Host, "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Host, s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
