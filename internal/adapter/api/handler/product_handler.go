package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/vuquangminhpe/eb/internal/domain/repository"
	"github.com/vuquangminhpe/eb/pkg/response"
)

type ProductHandler struct {
	productRepo repository.ProductRepository
}

func NewProductHandler(productRepo repository.ProductRepository) *ProductHandler {
	return &ProductHandler{
		productRepo: productRepo,
	}
}

// GetProduct returns the product a conversation is scoped to.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}
