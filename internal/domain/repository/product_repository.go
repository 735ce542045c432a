package repository

import (
	"context"

	"github.com/vuquangminhpe/eb/internal/domain/entity"
)

// ProductRepository is the read surface of the external catalog collaborator.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
