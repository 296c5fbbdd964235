package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Twitch extension and bot connect from arbitrary origins
	},
}

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// gorilla already wrote the error response during the handshake
		return fmt.Errorf("failed to upgrade websocket connection: %w", err)
	}

	wsConn := websocket.NewConn(uuid.New().String(), conn, s.hub, s.handler)
	wsConn.Start()
	return nil
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadiness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.hub.Len(),
	})
}
