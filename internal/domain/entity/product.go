package entity

import "time"

type Product struct {
	ID          string    `json:"id" firestore:"id"`
	SellerID    string    `json:"seller_id" firestore:"sellerId"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	Image       string    `json:"image,omitempty" firestore:"image,omitempty"`
	Price       float64   `json:"price" firestore:"price"`
	Status      string    `json:"status" firestore:"status"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{
		ID:    p.ID,
		Title: p.Title,
		Image: p.Image,
		Price: p.Price,
	}
}
