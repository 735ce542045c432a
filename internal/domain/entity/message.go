package entity

import "time"

type Message struct {
	ID         string    `json:"id" firestore:"id"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	ReceiverID string    `json:"receiver_id" firestore:"receiverId"`
	Content    string    `json:"content" firestore:"content"`
	ProductID  *string   `json:"product_id,omitempty" firestore:"productId,omitempty"`
	RepliedTo  *string   `json:"replied_to,omitempty" firestore:"repliedTo,omitempty"` // ID of the message this one replies to
	Read       bool      `json:"read" firestore:"read"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}
