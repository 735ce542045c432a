package repository

import (
	"context"

	"github.com/vuquangminhpe/eb/internal/domain/entity"
)

// MessageRepository is the durable record of every chat message. A nil
// productID means "no product filter"; list order is part of the contract.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)

	// ListBetween returns every message exchanged between the two users,
	// optionally scoped to a product, ascending by creation time. The result
	// is identical regardless of argument order.
	ListBetween(ctx context.Context, userA, userB string, productID *string) ([]*entity.Message, error)

	// ListByReceiver returns the user's inbox, descending by creation time.
	ListByReceiver(ctx context.Context, userID string) ([]*entity.Message, error)

	// ListBySender returns the user's sent messages, descending by creation time.
	ListBySender(ctx context.Context, userID string) ([]*entity.Message, error)

	// ListByParticipant returns every message the user sent or received,
	// descending by creation time.
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Message, error)

	// MarkRead flips the read flag to true and returns the updated message.
	// Marking an already-read message is a no-op success.
	MarkRead(ctx context.Context, id string) (*entity.Message, error)

	// CountUnread counts unread messages from senderID to receiverID,
	// optionally scoped to a product.
	CountUnread(ctx context.Context, senderID, receiverID string, productID *string) (int, error)
}
