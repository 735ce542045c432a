package repository

import (
	"context"

	"github.com/vuquangminhpe/eb/internal/domain/entity"
)

// UserRepository is the read surface of the external identity collaborator.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
