package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/vuquangminhpe/eb/internal/usecase"
	"github.com/vuquangminhpe/eb/pkg/errors"
	"github.com/vuquangminhpe/eb/pkg/response"
)

type MessageHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewMessageHandler(messageUseCase *usecase.MessageUseCase) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
	}
}

type createMessageRequest struct {
	SenderID   string  `json:"sender_id" validate:"required"`
	ReceiverID string  `json:"receiver_id" validate:"required"`
	Content    string  `json:"content" validate:"required"`
	ProductID  *string `json:"product_id"`
}

type replyMessageRequest struct {
	MessageID  string  `json:"message_id" validate:"required"`
	ReceiverID string  `json:"receiver_id" validate:"required"`
	Content    string  `json:"content" validate:"required"`
	ProductID  *string `json:"product_id"`
}

// CreateMessage persists a new message. The declared sender must be the
// authenticated user.
func (h *MessageHandler) CreateMessage(c echo.Context) error {
	var req createMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	if req.SenderID != userID {
		return response.Error(c, errors.Forbidden("Sender must be the authenticated user", nil))
	}

	message, err := h.messageUseCase.CreateMessage(c.Request().Context(), usecase.CreateMessageInput{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		ProductID:  req.ProductID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetConversation returns the history between two users, oldest first,
// optionally filtered to a product thread via ?product_id=.
func (h *MessageHandler) GetConversation(c echo.Context) error {
	user1 := c.Param("user1")
	user2 := c.Param("user2")

	userID := c.Get("uid").(string)
	if userID != user1 && userID != user2 {
		return response.Error(c, errors.Forbidden("You are not part of this conversation", nil))
	}

	messages, err := h.messageUseCase.GetConversation(c.Request().Context(), user1, user2, optionalQueryParam(c, "product_id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

// GetConversations returns the user's aggregated conversation list.
func (h *MessageHandler) GetConversations(c echo.Context) error {
	targetID := c.Param("userId")
	if err := requireSelf(c, targetID); err != nil {
		return response.Error(c, err)
	}

	conversations, err := h.messageUseCase.ListConversations(c.Request().Context(), targetID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

// GetInbox returns messages received by the user, newest first.
func (h *MessageHandler) GetInbox(c echo.Context) error {
	targetID := c.Param("userId")
	if err := requireSelf(c, targetID); err != nil {
		return response.Error(c, err)
	}

	messages, err := h.messageUseCase.GetInbox(c.Request().Context(), targetID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

// GetSent returns messages sent by the user, newest first.
func (h *MessageHandler) GetSent(c echo.Context) error {
	targetID := c.Param("userId")
	if err := requireSelf(c, targetID); err != nil {
		return response.Error(c, err)
	}

	messages, err := h.messageUseCase.GetSent(c.Request().Context(), targetID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

// ReplyToMessage creates a reply to an existing message; the sender is the
// authenticated user.
func (h *MessageHandler) ReplyToMessage(c echo.Context) error {
	var req replyMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.messageUseCase.ReplyToMessage(c.Request().Context(), userID, usecase.ReplyInput{
		MessageID:  req.MessageID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		ProductID:  req.ProductID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MarkMessageAsRead marks a single message read. Safe to call repeatedly.
func (h *MessageHandler) MarkMessageAsRead(c echo.Context) error {
	messageID := c.Param("id")

	message, err := h.messageUseCase.MarkMessageAsRead(c.Request().Context(), messageID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, message)
}

func requireSelf(c echo.Context, targetID string) error {
	if c.Get("uid").(string) != targetID {
		return errors.Forbidden("You can only access your own messages", nil)
	}
	return nil
}

func optionalQueryParam(c echo.Context, name string) *string {
	value := c.QueryParam(name)
	if value == "" {
		return nil
	}
	return &value
}
