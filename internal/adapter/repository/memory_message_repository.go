package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vuquangminhpe/eb/internal/domain/entity"
	"github.com/vuquangminhpe/eb/internal/domain/repository"
	"github.com/vuquangminhpe/eb/pkg/errors"
)

// memoryMessageRepository keeps messages in a mutex-guarded map. It backs the
// test suite and local development without a Firestore project.
type memoryMessageRepository struct {
	mu       sync.RWMutex
	messages map[string]entity.Message
}

func NewMemoryMessageRepository() repository.MessageRepository {
	return &memoryMessageRepository{
		messages: make(map[string]entity.Message),
	}
}

func (r *memoryMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	message.CreatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages[message.ID] = *message
	return nil
}

func (r *memoryMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}

	return &message, nil
}

func (r *memoryMessageRepository) ListBetween(ctx context.Context, userA, userB string, productID *string) ([]*entity.Message, error) {
	messages := r.filter(func(m *entity.Message) bool {
		between := (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA)
		return between && matchProduct(m, productID)
	})

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

func (r *memoryMessageRepository) ListByReceiver(ctx context.Context, userID string) ([]*entity.Message, error) {
	messages := r.filter(func(m *entity.Message) bool {
		return m.ReceiverID == userID
	})

	sortDescending(messages)
	return messages, nil
}

func (r *memoryMessageRepository) ListBySender(ctx context.Context, userID string) ([]*entity.Message, error) {
	messages := r.filter(func(m *entity.Message) bool {
		return m.SenderID == userID
	})

	sortDescending(messages)
	return messages, nil
}

func (r *memoryMessageRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Message, error) {
	messages := r.filter(func(m *entity.Message) bool {
		return m.SenderID == userID || m.ReceiverID == userID
	})

	sortDescending(messages)
	return messages, nil
}

func (r *memoryMessageRepository) MarkRead(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}

	message.Read = true
	r.messages[id] = message

	return &message, nil
}

func (r *memoryMessageRepository) CountUnread(ctx context.Context, senderID, receiverID string, productID *string) (int, error) {
	matches := r.filter(func(m *entity.Message) bool {
		return m.SenderID == senderID && m.ReceiverID == receiverID &&
			!m.Read && matchProduct(m, productID)
	})

	return len(matches), nil
}

func (r *memoryMessageRepository) filter(keep func(*entity.Message) bool) []*entity.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entity.Message
	for _, m := range r.messages {
		m := m
		if keep(&m) {
			result = append(result, &m)
		}
	}

	return result
}

func matchProduct(m *entity.Message, productID *string) bool {
	if productID == nil {
		return true
	}
	return m.ProductID != nil && *m.ProductID == *productID
}
