package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListConversationsGroupsByCounterpartAndProduct(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "hey there"})
	require.NoError(t, err)
	_, err = uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "about the keyboard", ProductID: strptr("p1")})
	require.NoError(t, err)
	_, err = uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "still there?"})
	require.NoError(t, err)

	conversations, err := uc.ListConversations(ctx, "u2")
	require.NoError(t, err)

	// One general thread and one product thread with the same counterpart.
	require.Len(t, conversations, 2)

	general := conversations[0]
	assert.Nil(t, general.Product)
	assert.Equal(t, "still there?", general.LatestMessage.Content)
	require.NotNil(t, general.OtherUser)
	assert.Equal(t, "u1", general.OtherUser.ID)

	product := conversations[1]
	require.NotNil(t, product.Product)
	assert.Equal(t, "p1", product.Product.ID)
	assert.Equal(t, "about the keyboard", product.LatestMessage.Content)
}

func TestListConversationsUnreadCounts(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	message, err := uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "hello"})
	require.NoError(t, err)

	// The receiver sees one unread message, the sender sees none.
	receiverView, err := uc.ListConversations(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, receiverView, 1)
	assert.Equal(t, 1, receiverView[0].UnreadCount)

	senderView, err := uc.ListConversations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, senderView, 1)
	assert.Equal(t, 0, senderView[0].UnreadCount)

	_, err = uc.MarkMessageAsRead(ctx, message.ID)
	require.NoError(t, err)

	receiverView, err = uc.ListConversations(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, receiverView, 1)
	assert.Equal(t, 0, receiverView[0].UnreadCount)
}

func TestListConversationsUnreadScopedToThread(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "keyboard q1", ProductID: strptr("p1")})
	require.NoError(t, err)
	_, err = uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "keyboard q2", ProductID: strptr("p1")})
	require.NoError(t, err)
	_, err = uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "unrelated"})
	require.NoError(t, err)

	conversations, err := uc.ListConversations(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	for _, conversation := range conversations {
		if conversation.Product != nil {
			assert.Equal(t, 2, conversation.UnreadCount)
		} else {
			// The general thread counts every unread message from the
			// counterpart, product-tagged ones included.
			assert.Equal(t, 3, conversation.UnreadCount)
		}
	}
}

func TestListConversationsOrderedByLatestActivity(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "first thread", ProductID: strptr("p1")})
	require.NoError(t, err)
	_, err = uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u1", ReceiverID: "u2", Content: "second thread", ProductID: strptr("p2")})
	require.NoError(t, err)
	_, err = uc.CreateMessage(ctx, CreateMessageInput{SenderID: "u2", ReceiverID: "u1", Content: "bump first", ProductID: strptr("p1")})
	require.NoError(t, err)

	conversations, err := uc.ListConversations(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	assert.Equal(t, "bump first", conversations[0].LatestMessage.Content)
	assert.Equal(t, "second thread", conversations[1].LatestMessage.Content)
}

func TestListConversationsEmpty(t *testing.T) {
	uc := newTestUseCase(t)

	conversations, err := uc.ListConversations(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, conversations)
}
