package usecase

import (
	"context"

	"github.com/vuquangminhpe/eb/internal/domain/entity"
	"github.com/vuquangminhpe/eb/internal/domain/repository"
	"github.com/vuquangminhpe/eb/pkg/errors"
	"github.com/vuquangminhpe/eb/pkg/logger"
)

type MessageUseCase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
) *MessageUseCase {
	return &MessageUseCase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

type CreateMessageInput struct {
	SenderID   string
	ReceiverID string
	Content    string
	ProductID  *string
	RepliedTo  *string
}

type ReplyInput struct {
	MessageID  string
	ReceiverID string
	Content    string
	ProductID  *string
}

// MessageResponse is a message decorated with the collaborator summaries the
// clients render alongside it.
type MessageResponse struct {
	*entity.Message
	Sender   *entity.UserSummary    `json:"sender,omitempty"`
	Receiver *entity.UserSummary    `json:"receiver,omitempty"`
	Product  *entity.ProductSummary `json:"product,omitempty"`
}

// CreateMessage persists a new message. When the message is a reply without
// its own product reference, it inherits the product context of the message
// it replies to.
func (uc *MessageUseCase) CreateMessage(ctx context.Context, input CreateMessageInput) (*entity.Message, error) {
	if input.SenderID == "" {
		return nil, errors.BadRequest("Sender is required", nil)
	}
	if input.ReceiverID == "" {
		return nil, errors.BadRequest("Receiver is required", nil)
	}
	if input.Content == "" {
		return nil, errors.BadRequest("Content is required", nil)
	}
	if input.SenderID == input.ReceiverID {
		return nil, errors.BadRequest("You cannot send a message to yourself", nil)
	}

	productID := input.ProductID
	if input.RepliedTo != nil {
		original, err := uc.messageRepo.GetByID(ctx, *input.RepliedTo)
		if err != nil {
			return nil, err
		}
		if productID == nil {
			productID = original.ProductID
		}
	}

	message := &entity.Message{
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Content:    input.Content,
		ProductID:  productID,
		RepliedTo:  input.RepliedTo,
		Read:       false,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("Failed to persist message from %s to %s: %v", input.SenderID, input.ReceiverID, err)
		return nil, err
	}

	return message, nil
}

// ReplyToMessage creates a reply; the sender comes from the authenticated
// identity, never from the request body.
func (uc *MessageUseCase) ReplyToMessage(ctx context.Context, senderID string, input ReplyInput) (*entity.Message, error) {
	if input.MessageID == "" {
		return nil, errors.BadRequest("Message ID is required", nil)
	}

	return uc.CreateMessage(ctx, CreateMessageInput{
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		Content:    input.Content,
		ProductID:  input.ProductID,
		RepliedTo:  &input.MessageID,
	})
}

// GetConversation returns the full history between two users, ascending by
// creation time, optionally scoped to one product thread. The result is the
// same regardless of argument order.
func (uc *MessageUseCase) GetConversation(ctx context.Context, user1, user2 string, productID *string) ([]*entity.Message, error) {
	messages, err := uc.messageRepo.ListBetween(ctx, user1, user2, productID)
	if err != nil {
		return nil, err
	}

	if messages == nil {
		messages = []*entity.Message{}
	}
	return messages, nil
}

// GetInbox returns messages received by the user, newest first, decorated
// with sender and product summaries.
func (uc *MessageUseCase) GetInbox(ctx context.Context, userID string) ([]*MessageResponse, error) {
	messages, err := uc.messageRepo.ListByReceiver(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, &MessageResponse{
			Message: m,
			Sender:  uc.userSummary(ctx, m.SenderID),
			Product: uc.productSummary(ctx, m.ProductID),
		})
	}

	return responses, nil
}

// GetSent returns messages sent by the user, newest first, decorated with
// receiver and product summaries.
func (uc *MessageUseCase) GetSent(ctx context.Context, userID string) ([]*MessageResponse, error) {
	messages, err := uc.messageRepo.ListBySender(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, &MessageResponse{
			Message:  m,
			Receiver: uc.userSummary(ctx, m.ReceiverID),
			Product:  uc.productSummary(ctx, m.ProductID),
		})
	}

	return responses, nil
}

// Decorate attaches the sender and product summaries a client renders next
// to a message. Used for live relay payloads and history listings alike.
func (uc *MessageUseCase) Decorate(ctx context.Context, message *entity.Message) *MessageResponse {
	return &MessageResponse{
		Message: message,
		Sender:  uc.userSummary(ctx, message.SenderID),
		Product: uc.productSummary(ctx, message.ProductID),
	}
}

// MarkMessageAsRead flips the read flag. Idempotent: re-marking an already
// read message succeeds without change.
func (uc *MessageUseCase) MarkMessageAsRead(ctx context.Context, messageID string) (*entity.Message, error) {
	return uc.messageRepo.MarkRead(ctx, messageID)
}

// userSummary resolves a participant summary; lookup failures degrade to a
// bare ID so one missing profile never fails a listing.
func (uc *MessageUseCase) userSummary(ctx context.Context, userID string) *entity.UserSummary {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Warn("Failed to resolve user %s: %v", userID, err)
		return &entity.UserSummary{ID: userID}
	}
	return user.Summary()
}

func (uc *MessageUseCase) productSummary(ctx context.Context, productID *string) *entity.ProductSummary {
	if productID == nil {
		return nil
	}

	product, err := uc.productRepo.GetByID(ctx, *productID)
	if err != nil {
		logger.Warn("Failed to resolve product %s: %v", *productID, err)
		return &entity.ProductSummary{ID: *productID}
	}
	return product.Summary()
}
