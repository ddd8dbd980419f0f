package repository

import (
	"github.com/firefinancialservices/plugin-woocommerce/internal/models"

	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Add(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// ClearForCustomer empties a customer's cart after a confirmed payment.
func (r *CartRepository) ClearForCustomer(email string) error {
	return r.db.Where("customer_email = ?", email).Delete(&models.CartItem{}).Error
}
