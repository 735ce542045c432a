// Package chatclient wraps one realtime connection to the chat gateway. It
// exposes listener registration for message, typing and connection events,
// drops duplicate message deliveries (the confirm echo and a replay can carry
// the same id), and debounces outbound typing signals.
package chatclient

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vuquangminhpe/eb/pkg/dedup"
	"github.com/vuquangminhpe/eb/pkg/logger"
)

// Wire event types, mirroring the gateway protocol.
const (
	eventJoin        = "join"
	eventSendMessage = "sendMessage"
	eventTyping      = "typing"
	eventStopTyping  = "stopTyping"

	eventMessageReceived  = "messageReceived"
	eventMessageConfirmed = "messageConfirmed"
	eventMessageFailed    = "messageFailed"
	eventUserTyping       = "userTyping"
	eventUserStopTyping   = "userStopTyping"
)

// recentMessageCapacity bounds the recently-seen message id set.
const recentMessageCapacity = 200

const (
	defaultTypingSuppressWindow = 2 * time.Second
	defaultTypingQuietPeriod    = 3 * time.Second
)

type envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type outEnvelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
}

type ProductSummary struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Image string  `json:"image"`
	Price float64 `json:"price"`
}

// Message is a delivered chat message with the summaries the gateway attaches.
type Message struct {
	ID         string          `json:"id"`
	SenderID   string          `json:"sender_id"`
	ReceiverID string          `json:"receiver_id"`
	Content    string          `json:"content"`
	ProductID  *string         `json:"product_id,omitempty"`
	RepliedTo  *string         `json:"replied_to,omitempty"`
	Read       bool            `json:"read"`
	CreatedAt  time.Time       `json:"created_at"`
	Sender     *UserSummary    `json:"sender,omitempty"`
	Product    *ProductSummary `json:"product,omitempty"`
}

type TypingNotice struct {
	UserID    string  `json:"userId"`
	ProductID *string `json:"productId,omitempty"`
}

type MessageListener func(Message)

// TypingListener receives the notice and whether the peer started (true) or
// stopped (false) typing.
type TypingListener func(TypingNotice, bool)

type ConnectionListener func(connected bool)

// Client manages a single live connection. All methods are safe for
// concurrent use.
type Client struct {
	url string

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	userID    string

	nextListenerID      int
	messageListeners    map[int]MessageListener
	typingListeners     map[int]TypingListener
	connectionListeners map[int]ConnectionListener

	seen *dedup.Set

	typingSuppressed map[string]bool
	stopTimers       map[string]*time.Timer

	// Debounce windows; overridable before Connect (tests shrink them).
	TypingSuppressWindow time.Duration
	TypingQuietPeriod    time.Duration
}

func New(url string) *Client {
	return &Client{
		url:                  url,
		messageListeners:     make(map[int]MessageListener),
		typingListeners:      make(map[int]TypingListener),
		connectionListeners:  make(map[int]ConnectionListener),
		seen:                 dedup.New(recentMessageCapacity),
		typingSuppressed:     make(map[string]bool),
		stopTimers:           make(map[string]*time.Timer),
		TypingSuppressWindow: defaultTypingSuppressWindow,
		TypingQuietPeriod:    defaultTypingQuietPeriod,
	}
}

// Connect dials the gateway and announces the user identity. Reconnecting
// with the same identity while connected is a no-op; a different identity
// replaces the connection.
func (c *Client) Connect(userID string) error {
	c.mu.Lock()
	if c.connected && c.userID == userID {
		c.mu.Unlock()
		return nil
	}

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.connected = false
	}
	c.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		c.notifyConnection(false)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.userID = userID
	c.mu.Unlock()

	if err := c.write(eventJoin, map[string]string{"userId": userID}); err != nil {
		c.Close()
		return err
	}

	go c.readLoop(conn)

	c.notifyConnection(true)
	return nil
}

// Close tears the connection down and cancels pending typing timers.
func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	wasConnected := c.connected
	c.conn = nil
	c.connected = false
	for key, timer := range c.stopTimers {
		timer.Stop()
		delete(c.stopTimers, key)
	}
	c.typingSuppressed = make(map[string]bool)
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if wasConnected {
		c.notifyConnection(false)
	}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// AddMessageListener registers a listener for delivered messages and returns
// an unsubscribe func.
func (c *Client) AddMessageListener(listener MessageListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListenerID
	c.nextListenerID++
	c.messageListeners[id] = listener

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.messageListeners, id)
	}
}

func (c *Client) AddTypingListener(listener TypingListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListenerID
	c.nextListenerID++
	c.typingListeners[id] = listener

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.typingListeners, id)
	}
}

func (c *Client) AddConnectionListener(listener ConnectionListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListenerID
	c.nextListenerID++
	c.connectionListeners[id] = listener

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.connectionListeners, id)
	}
}

// SendMessage submits a message over the live channel. Delivery feedback
// arrives as a messageConfirmed (or messageFailed) event.
func (c *Client) SendMessage(receiverID, content string, productID *string) error {
	c.mu.Lock()
	senderID := c.userID
	c.mu.Unlock()

	return c.write(eventSendMessage, map[string]interface{}{
		"senderId":   senderID,
		"receiverId": receiverID,
		"content":    content,
		"productId":  productID,
		"timestamp":  time.Now().Format(time.RFC3339Nano),
	})
}

// SendTyping emits a typing signal, at most once per suppress window per
// conversation, and schedules an automatic stopTyping after the quiet period
// elapses with no further typing activity.
func (c *Client) SendTyping(receiverID string, productID *string) {
	key := conversationKey(receiverID, productID)

	c.mu.Lock()
	if timer, ok := c.stopTimers[key]; ok {
		timer.Stop()
	}
	c.stopTimers[key] = time.AfterFunc(c.TypingQuietPeriod, func() {
		c.SendStopTyping(receiverID, productID)
	})

	emit := !c.typingSuppressed[key]
	if emit {
		c.typingSuppressed[key] = true
		time.AfterFunc(c.TypingSuppressWindow, func() {
			c.mu.Lock()
			delete(c.typingSuppressed, key)
			c.mu.Unlock()
		})
	}
	c.mu.Unlock()

	if !emit {
		return
	}

	if err := c.write(eventTyping, c.typingPayload(receiverID, productID)); err != nil {
		logger.Debug("chatclient: typing signal dropped: %v", err)
	}
}

// SendStopTyping emits a stopTyping signal and cancels the pending automatic
// one.
func (c *Client) SendStopTyping(receiverID string, productID *string) {
	key := conversationKey(receiverID, productID)

	c.mu.Lock()
	if timer, ok := c.stopTimers[key]; ok {
		timer.Stop()
		delete(c.stopTimers, key)
	}
	c.mu.Unlock()

	if err := c.write(eventStopTyping, c.typingPayload(receiverID, productID)); err != nil {
		logger.Debug("chatclient: stopTyping signal dropped: %v", err)
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			current := c.conn == conn
			if current {
				c.conn = nil
				c.connected = false
			}
			c.mu.Unlock()

			if current {
				c.notifyConnection(false)
			}
			return
		}

		c.handleFrame(data)
	}
}

func (c *Client) handleFrame(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Warn("chatclient: invalid frame: %v", err)
		return
	}

	switch env.Type {
	case eventMessageReceived, eventMessageConfirmed:
		var message Message
		if err := json.Unmarshal(env.Data, &message); err != nil {
			logger.Warn("chatclient: invalid message payload: %v", err)
			return
		}

		// The same id can arrive twice: confirm echo plus receive, or a
		// replay after reconnect. Only the first copy reaches listeners.
		if message.ID != "" && c.seen.Seen(message.ID) {
			return
		}

		for _, listener := range c.snapshotMessageListeners() {
			listener(message)
		}

	case eventUserTyping, eventUserStopTyping:
		var notice TypingNotice
		if err := json.Unmarshal(env.Data, &notice); err != nil {
			logger.Warn("chatclient: invalid typing payload: %v", err)
			return
		}

		typing := env.Type == eventUserTyping
		for _, listener := range c.snapshotTypingListeners() {
			listener(notice, typing)
		}

	case eventMessageFailed:
		logger.Warn("chatclient: message failed: %s", string(env.Data))
	}
}

func (c *Client) write(eventType string, data interface{}) error {
	payload, err := json.Marshal(outEnvelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return websocket.ErrCloseSent
	}

	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Client) notifyConnection(connected bool) {
	c.mu.Lock()
	listeners := make([]ConnectionListener, 0, len(c.connectionListeners))
	for _, listener := range c.connectionListeners {
		listeners = append(listeners, listener)
	}
	c.mu.Unlock()

	for _, listener := range listeners {
		listener(connected)
	}
}

func (c *Client) snapshotMessageListeners() []MessageListener {
	c.mu.Lock()
	defer c.mu.Unlock()

	listeners := make([]MessageListener, 0, len(c.messageListeners))
	for _, listener := range c.messageListeners {
		listeners = append(listeners, listener)
	}
	return listeners
}

func (c *Client) snapshotTypingListeners() []TypingListener {
	c.mu.Lock()
	defer c.mu.Unlock()

	listeners := make([]TypingListener, 0, len(c.typingListeners))
	for _, listener := range c.typingListeners {
		listeners = append(listeners, listener)
	}
	return listeners
}

func (c *Client) typingPayload(receiverID string, productID *string) map[string]interface{} {
	c.mu.Lock()
	senderID := c.userID
	c.mu.Unlock()

	return map[string]interface{}{
		"senderId":   senderID,
		"receiverId": receiverID,
		"productId":  productID,
	}
}

func conversationKey(receiverID string, productID *string) string {
	if productID == nil {
		return receiverID + "|noproduct"
	}
	return receiverID + "|" + *productID
}
