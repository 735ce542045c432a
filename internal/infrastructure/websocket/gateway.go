package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vuquangminhpe/eb/internal/usecase"
	"github.com/vuquangminhpe/eb/pkg/logger"
)

// HandleClientMessage dispatches one inbound frame. Called from the
// connection's read goroutine, so per-connection processing order equals
// send order; no ordering is guaranteed across connections.
func (m *Manager) HandleClientMessage(client *Client, data []byte) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		logger.Warn("WebSocket: invalid frame from %q: %v", client.UserID, err)
		m.sendErrorToClient(client, "Invalid message format")
		return
	}

	switch envelope.Type {
	case EventJoin:
		m.handleJoin(client, envelope.Data)

	case EventSendMessage:
		m.handleSendMessage(client, envelope.Data)

	case EventTyping:
		m.handleTyping(client, envelope.Data, EventUserTyping)

	case EventStopTyping:
		m.handleTyping(client, envelope.Data, EventUserStopTyping)

	default:
		logger.Warn("WebSocket: unknown event type %q from %q", envelope.Type, client.UserID)
		m.sendErrorToClient(client, "Unknown event type")
	}
}

// handleJoin binds the connection to a user identity and registers presence.
func (m *Manager) handleJoin(client *Client, data interface{}) {
	var joinData JoinData
	if err := decodeData(data, &joinData); err != nil {
		m.sendErrorToClient(client, "Invalid join payload")
		return
	}

	if joinData.UserID == "" {
		m.sendErrorToClient(client, "Missing userId")
		return
	}

	client.UserID = joinData.UserID
	m.join(joinData.UserID, client)
}

func (m *Manager) handleSendMessage(client *Client, data interface{}) {
	if client.UserID == "" {
		m.sendErrorToClient(client, "Join before sending messages")
		return
	}

	var sendData SendMessageData
	if err := decodeData(data, &sendData); err != nil {
		m.sendErrorToClient(client, "Invalid sendMessage payload")
		return
	}

	if sendData.SenderID != "" && sendData.SenderID != client.UserID {
		m.sendErrorToClient(client, "Sender does not match connection identity")
		return
	}

	// Replay protection: a client retransmitting the same frame, on this
	// connection or the next one after a reconnect, must not produce a second
	// stored message. A recognized replay is answered with the original
	// confirm echo so a client still awaiting feedback can reconcile. Only
	// successful sends are recorded; a failed send stays retryable with the
	// identical frame. Frames without a client timestamp are never treated
	// as replays: the timestamp is what separates a retransmit from two
	// legitimate identical messages.
	var fingerprint string
	if sendData.Timestamp != "" {
		fingerprint = sendFingerprint(client.UserID, &sendData)
		if payload, ok := m.recallSend(client.UserID, fingerprint); ok {
			logger.Debug("WebSocket: confirming replayed send from %s", client.UserID)
			m.sendToClient(client, Envelope{
				Type:      EventMessageConfirmed,
				Data:      payload,
				Timestamp: now(),
			})
			return
		}
	}

	ctx := context.Background()

	message, err := m.messages.CreateMessage(ctx, messageInput(client.UserID, &sendData))
	if err != nil {
		logger.Error("WebSocket: failed to persist message from %s: %v", client.UserID, err)
		m.sendToClient(client, Envelope{
			Type:      EventMessageFailed,
			Data:      ErrorData{Error: err.Error()},
			Timestamp: now(),
		})
		return
	}

	payload := m.messages.Decorate(ctx, message)
	if fingerprint != "" {
		m.recordSend(client.UserID, fingerprint, payload)
	}

	// Relay to the receiver only if they are online; offline receivers catch
	// up through history fetch.
	if receiver, ok := m.Resolve(message.ReceiverID); ok {
		m.sendToClient(receiver, Envelope{
			Type:      EventMessageReceived,
			Data:      payload,
			Timestamp: now(),
		})
	}

	// The sender always gets a confirmation echo, even when the receiver is
	// offline. Delivery is fire-and-forget.
	m.sendToClient(client, Envelope{
		Type:      EventMessageConfirmed,
		Data:      payload,
		Timestamp: now(),
	})

	logger.Info("Message %s sent from %s to %s", message.ID, message.SenderID, message.ReceiverID)
}

// handleTyping relays a typing or stop-typing signal. Nothing is persisted
// and nothing is queued: an offline receiver simply never sees it.
func (m *Manager) handleTyping(client *Client, data interface{}, noticeType string) {
	if client.UserID == "" {
		m.sendErrorToClient(client, "Join before sending typing signals")
		return
	}

	var typingData TypingData
	if err := decodeData(data, &typingData); err != nil {
		m.sendErrorToClient(client, "Invalid typing payload")
		return
	}

	receiver, ok := m.Resolve(typingData.ReceiverID)
	if !ok {
		return
	}

	m.sendToClient(receiver, Envelope{
		Type: noticeType,
		Data: TypingNotice{
			UserID:    client.UserID,
			ProductID: typingData.ProductID,
		},
		Timestamp: now(),
	})
}

func (m *Manager) sendToClient(client *Client, envelope Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s event: %v", envelope.Type, err)
		return
	}

	select {
	case client.Send <- data:
	default:
		logger.Warn("WebSocket: send buffer full for %q, dropping connection", client.UserID)
		m.Disconnect(client)
	}
}

func (m *Manager) sendErrorToClient(client *Client, message string) {
	m.sendToClient(client, Envelope{
		Type:      EventError,
		Data:      ErrorData{Error: message},
		Timestamp: now(),
	})
}

// decodeData round-trips the envelope's loosely typed data field into the
// expected payload struct.
func decodeData(data interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

func messageInput(senderID string, data *SendMessageData) usecase.CreateMessageInput {
	return usecase.CreateMessageInput{
		SenderID:   senderID,
		ReceiverID: data.ReceiverID,
		Content:    data.Content,
		ProductID:  data.ProductID,
	}
}

func sendFingerprint(senderID string, data *SendMessageData) string {
	productID := ""
	if data.ProductID != nil {
		productID = *data.ProductID
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s", senderID, data.ReceiverID, data.Content, productID, data.Timestamp)
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
