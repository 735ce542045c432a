package router

import (
	"github.com/labstack/echo/v4"

	"github.com/vuquangminhpe/eb/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the realtime endpoint. No auth middleware:
// the connection binds its identity through the join event.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
