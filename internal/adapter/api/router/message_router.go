package router

import (
	"github.com/labstack/echo/v4"

	"github.com/vuquangminhpe/eb/internal/adapter/api/handler"
	"github.com/vuquangminhpe/eb/internal/adapter/api/middleware"
)

// SetupMessageRouter registers the message REST surface. Every route requires
// a bearer token.
func SetupMessageRouter(e *echo.Echo, messageHandler *handler.MessageHandler, authMiddleware *middleware.AuthMiddleware) {
	messages := e.Group("/v1/messages")
	messages.Use(authMiddleware.Authenticate)

	messages.POST("", messageHandler.CreateMessage)
	messages.GET("/conversation/:user1/:user2", messageHandler.GetConversation)
	messages.GET("/conversations/:userId", messageHandler.GetConversations)
	messages.GET("/inbox/:userId", messageHandler.GetInbox)
	messages.GET("/sent/:userId", messageHandler.GetSent)
	messages.POST("/reply", messageHandler.ReplyToMessage)
	messages.PATCH("/:id/read", messageHandler.MarkMessageAsRead)
}
