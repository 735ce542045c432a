package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vuquangminhpe/eb/internal/domain/entity"
	"github.com/vuquangminhpe/eb/internal/domain/repository"
	"github.com/vuquangminhpe/eb/pkg/errors"
	"github.com/vuquangminhpe/eb/pkg/logger"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	message.CreatedAt = time.Now()

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	doc, err := r.client.Collection("messages").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}

	return &message, nil
}

func (r *firestoreMessageRepository) ListBetween(ctx context.Context, userA, userB string, productID *string) ([]*entity.Message, error) {
	// Firestore has no OR filter across field pairs, so both directions are
	// fetched separately and merged in memory.
	sent, err := r.queryMessages(ctx, r.directionQuery(userA, userB, productID))
	if err != nil {
		return nil, err
	}

	received, err := r.queryMessages(ctx, r.directionQuery(userB, userA, productID))
	if err != nil {
		return nil, err
	}

	messages := append(sent, received...)
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

func (r *firestoreMessageRepository) ListByReceiver(ctx context.Context, userID string) ([]*entity.Message, error) {
	query := r.client.Collection("messages").Where("receiverId", "==", userID)

	messages, err := r.queryMessages(ctx, query)
	if err != nil {
		return nil, err
	}

	sortDescending(messages)
	return messages, nil
}

func (r *firestoreMessageRepository) ListBySender(ctx context.Context, userID string) ([]*entity.Message, error) {
	query := r.client.Collection("messages").Where("senderId", "==", userID)

	messages, err := r.queryMessages(ctx, query)
	if err != nil {
		return nil, err
	}

	sortDescending(messages)
	return messages, nil
}

func (r *firestoreMessageRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Message, error) {
	sent, err := r.queryMessages(ctx, r.client.Collection("messages").Where("senderId", "==", userID))
	if err != nil {
		return nil, err
	}

	received, err := r.queryMessages(ctx, r.client.Collection("messages").Where("receiverId", "==", userID))
	if err != nil {
		return nil, err
	}

	messages := append(sent, received...)
	sortDescending(messages)
	return messages, nil
}

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, id string) (*entity.Message, error) {
	docRef := r.client.Collection("messages").Doc(id)

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}

	if message.Read {
		return &message, nil
	}

	message.Read = true
	if _, err := docRef.Set(ctx, &message); err != nil {
		return nil, errors.Internal("Failed to update message read status", err)
	}

	return &message, nil
}

func (r *firestoreMessageRepository) CountUnread(ctx context.Context, senderID, receiverID string, productID *string) (int, error) {
	query := r.directionQuery(senderID, receiverID, productID).Where("read", "==", false)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while counting unread from %s to %s: %v", senderID, receiverID, err)
		return 0, errors.Internal("Failed to count unread messages", err)
	}

	return len(docs), nil
}

func (r *firestoreMessageRepository) directionQuery(senderID, receiverID string, productID *string) firestore.Query {
	query := r.client.Collection("messages").
		Where("senderId", "==", senderID).
		Where("receiverId", "==", receiverID)

	if productID != nil {
		query = query.Where("productId", "==", *productID)
	}

	return query
}

func (r *firestoreMessageRepository) queryMessages(ctx context.Context, query firestore.Query) ([]*entity.Message, error) {
	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages: %v", err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Error("Error parsing message data: %v", err)
			return nil, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, nil
}

func sortDescending(messages []*entity.Message) {
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
}
