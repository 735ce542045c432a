package entity

// UserSummary is the denormalized participant info attached to conversations
// and relayed messages.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
}

// ProductSummary is the denormalized product context attached to conversations
// and relayed messages.
type ProductSummary struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Image string  `json:"image"`
	Price float64 `json:"price"`
}

// Conversation is derived from the message store, never persisted. One entry
// per (other participant, product) pair; messages without a product context
// form their own thread with the same counterpart.
type Conversation struct {
	OtherUser     *UserSummary    `json:"other_user"`
	Product       *ProductSummary `json:"product,omitempty"`
	LatestMessage *Message        `json:"latest_message"`
	UnreadCount   int             `json:"unread_count"`
}
