package usecase

import (
	"context"
	"sort"

	"github.com/vuquangminhpe/eb/internal/domain/entity"
	"github.com/vuquangminhpe/eb/pkg/logger"
)

// conversationKey identifies one thread: the counterpart plus the product
// context. Messages without a product form their own thread per counterpart.
type conversationKey struct {
	otherUserID string
	productID   string
	hasProduct  bool
}

// ListConversations derives the user's inbox of distinct conversations from
// the message store. Messages are walked newest-first, so the first message
// seen for a key is that thread's latest. Decoration failures (profile,
// product, unread count) degrade per entry instead of aborting the listing.
func (uc *MessageUseCase) ListConversations(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	messages, err := uc.messageRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	byKey := make(map[conversationKey]*entity.Conversation)
	var order []conversationKey

	for _, message := range messages {
		otherUserID := message.SenderID
		if otherUserID == userID {
			otherUserID = message.ReceiverID
		}

		key := conversationKey{otherUserID: otherUserID}
		if message.ProductID != nil {
			key.productID = *message.ProductID
			key.hasProduct = true
		}

		if _, ok := byKey[key]; ok {
			continue
		}

		conversation := &entity.Conversation{
			OtherUser:     uc.userSummary(ctx, otherUserID),
			LatestMessage: message,
		}

		if message.ProductID != nil {
			conversation.Product = uc.productSummary(ctx, message.ProductID)
		}

		// Unread messages flowing toward the viewer, scoped to the same
		// product filter as the thread itself (none for the general thread).
		count, err := uc.messageRepo.CountUnread(ctx, otherUserID, userID, message.ProductID)
		if err != nil {
			logger.Warn("Failed to count unread from %s to %s: %v", otherUserID, userID, err)
			count = 0
		}
		conversation.UnreadCount = count

		byKey[key] = conversation
		order = append(order, key)
	}

	conversations := make([]*entity.Conversation, 0, len(order))
	for _, key := range order {
		conversations = append(conversations, byKey[key])
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LatestMessage.CreatedAt.After(conversations[j].LatestMessage.CreatedAt)
	})

	return conversations, nil
}
