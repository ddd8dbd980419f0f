package models

import "time"

// CartItem is one line of a customer's open cart, keyed by billing email.
// The cart is emptied when a payment is confirmed.
type CartItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CustomerEmail string    `gorm:"size:255;not null;index" json:"customer_email"`
	ProductID     uint      `gorm:"not null" json:"product_id"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_items" }
