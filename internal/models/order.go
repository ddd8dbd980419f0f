package models

import (
	"time"

	"gorm.io/gorm"
)

type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Currency        string         `gorm:"size:3;not null" json:"currency"`
	TotalAmount     float64        `gorm:"not null" json:"total_amount"`
	Status          string         `gorm:"size:20;not null;index" json:"status"` // pending, processing, on-hold, completed, failed, cancelled
	BillingEmail    string         `gorm:"size:255" json:"billing_email"`
	BillingAddress1 string         `gorm:"size:255" json:"billing_address_1"`
	BillingCity     string         `gorm:"size:100" json:"billing_city"`
	BillingCountry  string         `gorm:"size:2" json:"billing_country"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Name      string  `gorm:"size:255;not null" json:"name"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}

func (OrderItem) TableName() string { return "order_items" }

// OrderMeta is the small per-order key/value store the gateway persists its
// correlation identifiers in (payment_code, payment_uuid). Write-once per
// attempt; a retried checkout overwrites.
type OrderMeta struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;uniqueIndex:idx_order_meta_key" json:"order_id"`
	MetaKey   string    `gorm:"size:100;not null;uniqueIndex:idx_order_meta_key" json:"meta_key"`
	MetaValue string    `gorm:"size:255;not null" json:"meta_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderMeta) TableName() string { return "order_meta" }

// OrderNote is an audit note on an order, one per reconciliation pass.
type OrderNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Note      string    `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func (OrderNote) TableName() string { return "order_notes" }
