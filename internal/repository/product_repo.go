package repository

import (
	"github.com/firefinancialservices/plugin-woocommerce/internal/models"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(p *models.Product) error {
	return r.db.Create(p).Error
}

func (r *ProductRepository) GetByID(id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ReduceStockForOrder decrements stock for every line item of a confirmed
// order.
func (r *ProductRepository) ReduceStockForOrder(order *models.Order) error {
	for _, item := range order.Items {
		err := r.db.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", item.Quantity)).Error
		if err != nil {
			return err
		}
	}
	return nil
}
