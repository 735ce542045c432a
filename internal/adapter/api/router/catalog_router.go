package router

import (
	"github.com/labstack/echo/v4"

	"github.com/vuquangminhpe/eb/internal/adapter/api/handler"
	"github.com/vuquangminhpe/eb/internal/adapter/api/middleware"
)

// SetupCatalogRouter registers the collaborator lookups the chat clients use
// to resolve the identities and products a conversation references.
func SetupCatalogRouter(e *echo.Echo, userHandler *handler.UserHandler, productHandler *handler.ProductHandler, authMiddleware *middleware.AuthMiddleware) {
	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)
	users.GET("/:id", userHandler.GetUser)

	products := e.Group("/v1/products")
	products.Use(authMiddleware.Authenticate)
	products.GET("/:id", productHandler.GetProduct)
}
