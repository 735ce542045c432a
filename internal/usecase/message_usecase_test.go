package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuquangminhpe/eb/internal/adapter/repository"
	"github.com/vuquangminhpe/eb/internal/domain/entity"
	"github.com/vuquangminhpe/eb/pkg/errors"
)

func newTestUseCase(t *testing.T) *MessageUseCase {
	t.Helper()

	userRepo := repository.NewMemoryUserRepository()
	productRepo := repository.NewMemoryProductRepository()

	ctx := context.Background()
	require.NoError(t, userRepo.Create(ctx, &entity.User{ID: "u1", Username: "alice", FullName: "Alice A"}))
	require.NoError(t, userRepo.Create(ctx, &entity.User{ID: "u2", Username: "bob", FullName: "Bob B"}))
	require.NoError(t, productRepo.Create(ctx, &entity.Product{ID: "p1", SellerID: "u2", Title: "Keyboard", Image: "kb.jpg", Price: 49.9}))
	require.NoError(t, productRepo.Create(ctx, &entity.Product{ID: "p2", SellerID: "u2", Title: "Mouse", Image: "m.jpg", Price: 19.9}))

	return NewMessageUseCase(repository.NewMemoryMessageRepository(), userRepo, productRepo)
}

func strptr(s string) *string { return &s }

func TestCreateMessageDefaults(t *testing.T) {
	uc := newTestUseCase(t)
	before := time.Now()

	message, err := uc.CreateMessage(context.Background(), CreateMessageInput{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "hello",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)
	assert.False(t, message.Read)
	assert.Nil(t, message.ProductID)
	assert.Nil(t, message.RepliedTo)
	assert.False(t, message.CreatedAt.Before(before))
}

func TestCreateMessageValidation(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateMessageInput
	}{
		{"missing sender", CreateMessageInput{ReceiverID: "u2", Content: "hi"}},
		{"missing receiver", CreateMessageInput{SenderID: "u1", Content: "hi"}},
		{"missing content", CreateMessageInput{SenderID: "u1", ReceiverID: "u2"}},
		{"self message", CreateMessageInput{SenderID: "u1", ReceiverID: "u1", Content: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateMessage(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, "BAD_REQUEST"))
		})
	}
}

func TestReplyInheritsProductContext(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	original, err := uc.CreateMessage(ctx, CreateMessageInput{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "is this still available?",
		ProductID:  strptr("p1"),
	})
	require.NoError(t, err)

	reply, err := uc.ReplyToMessage(ctx, "u2", ReplyInput{
		MessageID:  original.ID,
		ReceiverID: "u1",
		Content:    "yes it is",
	})
	require.NoError(t, err)

	require.NotNil(t, reply.ProductID)
	assert.Equal(t, "p1", *reply.ProductID)
	require.NotNil(t, reply.RepliedTo)
	assert.Equal(t, original.ID, *reply.RepliedTo)
}

func TestReplyKeepsExplicitProduct(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	original, err := uc.CreateMessage(ctx, CreateMessageInput{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "about the keyboard",
		ProductID:  strptr("p1"),
	})
	require.NoError(t, err)

	reply, err := uc.ReplyToMessage(ctx, "u2", ReplyInput{
		MessageID:  original.ID,
		ReceiverID: "u1",
		Content:    "check out the mouse too",
		ProductID:  strptr("p2"),
	})
	require.NoError(t, err)

	require.NotNil(t, reply.ProductID)
	assert.Equal(t, "p2", *reply.ProductID)
}

func TestReplyToUnknownMessage(t *testing.T) {
	uc := newTestUseCase(t)

	_, err := uc.ReplyToMessage(context.Background(), "u2", ReplyInput{
		MessageID:  "missing",
		ReceiverID: "u1",
		Content:    "hello?",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestMarkMessageAsReadIdempotent(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	message, err := uc.CreateMessage(ctx, CreateMessageInput{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "read me",
	})
	require.NoError(t, err)

	first, err := uc.MarkMessageAsRead(ctx, message.ID)
	require.NoError(t, err)
	assert.True(t, first.Read)

	second, err := uc.MarkMessageAsRead(ctx, message.ID)
	require.NoError(t, err)
	assert.True(t, second.Read)
}

func TestMarkUnknownMessageAsRead(t *testing.T) {
	uc := newTestUseCase(t)

	_, err := uc.MarkMessageAsRead(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestGetConversationSymmetric(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		_, err := uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: content})
		require.NoError(t, err)
	}
	_, err := uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u2", ReceiverID: "u1", Content: "four"})
	require.NoError(t, err)

	forward, err := uc.GetConversation(ctx, "u1", "u2", nil)
	require.NoError(t, err)
	backward, err := uc.GetConversation(ctx, "u2", "u1", nil)
	require.NoError(t, err)

	require.Len(t, forward, 4)
	require.Len(t, backward, 4)
	for i := range forward {
		assert.Equal(t, forward[i].ID, backward[i].ID)
	}

	// Ascending by creation time.
	for i := 1; i < len(forward); i++ {
		assert.False(t, forward[i].CreatedAt.Before(forward[i-1].CreatedAt))
	}
}

func TestGetConversationProductFilter(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	withProduct, err := uc.CreateMessage(ctx, CreateMessageInput{
		SenderID: "u1", ReceiverID: "u2", Content: "about p1", ProductID: strptr("p1"),
	})
	require.NoError(t, err)
	_, err = uc.CreateMessage(ctx, CreateMessageInput{
		SenderID: "u1", ReceiverID: "u2", Content: "general chat",
	})
	require.NoError(t, err)

	p1Thread, err := uc.GetConversation(ctx, "u1", "u2", strptr("p1"))
	require.NoError(t, err)
	require.Len(t, p1Thread, 1)
	assert.Equal(t, withProduct.ID, p1Thread[0].ID)

	p2Thread, err := uc.GetConversation(ctx, "u1", "u2", strptr("p2"))
	require.NoError(t, err)
	assert.Empty(t, p2Thread)

	all, err := uc.GetConversation(ctx, "u1", "u2", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInboxAndSentOrdering(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "first"})
	require.NoError(t, err)
	_, err = uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "second"})
	require.NoError(t, err)

	inbox, err := uc.GetInbox(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, "second", inbox[0].Content)
	require.NotNil(t, inbox[0].Sender)
	assert.Equal(t, "alice", inbox[0].Sender.Username)

	sent, err := uc.GetSent(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Equal(t, "second", sent[0].Content)
	require.NotNil(t, sent[0].Receiver)
	assert.Equal(t, "bob", sent[0].Receiver.Username)

	empty, err := uc.GetInbox(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
