package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/vuquangminhpe/eb/internal/domain/repository"
	"github.com/vuquangminhpe/eb/pkg/response"
)

type UserHandler struct {
	userRepo repository.UserRepository
}

func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
	}
}

// GetUser returns the public profile summary chat peers render.
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user.Summary())
}
