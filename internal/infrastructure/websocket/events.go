package websocket

// Client → server event types.
const (
	EventJoin        = "join"
	EventSendMessage = "sendMessage"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
)

// Server → client event types.
const (
	EventMessageReceived  = "messageReceived"
	EventMessageConfirmed = "messageConfirmed"
	EventMessageFailed    = "messageFailed"
	EventUserTyping       = "userTyping"
	EventUserStopTyping   = "userStopTyping"
	EventError            = "error"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type JoinData struct {
	UserID string `json:"userId"`
}

type SendMessageData struct {
	SenderID   string  `json:"senderId"`
	ReceiverID string  `json:"receiverId"`
	Content    string  `json:"content"`
	ProductID  *string `json:"productId,omitempty"`
	// Client clock at submit time. Not trusted for ordering; only part of the
	// replay fingerprint so a reconnect resubmitting the same frame is dropped.
	Timestamp string `json:"timestamp,omitempty"`
}

type TypingData struct {
	SenderID   string  `json:"senderId"`
	ReceiverID string  `json:"receiverId"`
	ProductID  *string `json:"productId,omitempty"`
}

// TypingNotice is what the receiving peer sees for typing/stopTyping.
type TypingNotice struct {
	UserID    string  `json:"userId"`
	ProductID *string `json:"productId,omitempty"`
}

type ErrorData struct {
	Error string `json:"error"`
}
