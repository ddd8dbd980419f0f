package repository

import (
	"github.com/firefinancialservices/plugin-woocommerce/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SweepCandidate is one order selected for a poll sweep, with the metadata
// value the sweep keys on (payment uuid for Sweep A, payment code for Sweep B).
type SweepCandidate struct {
	OrderID   uint   `gorm:"column:order_id"`
	MetaValue string `gorm:"column:meta_value"`
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *models.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) GetByID(id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) SetStatus(orderID uint, status string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error
}

// UpdateStatusIf transitions an order's status only when the persisted status
// still matches the one read before the write. Returns whether the row
// changed, which is how callers detect losing a race to another reconciler.
func (r *OrderRepository) UpdateStatusIf(orderID uint, from, to string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

func (r *OrderRepository) SetMeta(orderID uint, key, value string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
	}).Create(&models.OrderMeta{OrderID: orderID, MetaKey: key, MetaValue: value}).Error
}

// GetMeta returns "" without error when the key is absent.
func (r *OrderRepository) GetMeta(orderID uint, key string) (string, error) {
	var m models.OrderMeta
	err := r.db.Where("order_id = ? AND meta_key = ?", orderID, key).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.MetaValue, nil
}

func (r *OrderRepository) AddNote(orderID uint, note string) error {
	return r.db.Create(&models.OrderNote{OrderID: orderID, Note: note}).Error
}

// PaidCandidates selects processing orders carrying a payment uuid, the
// input of Sweep A.
func (r *OrderRepository) PaidCandidates() ([]SweepCandidate, error) {
	return r.candidates("processing", "_fireob_paymentUuid")
}

// PendingCandidates selects pending orders carrying only a payment code,
// i.e. orders whose callback never arrived — the input of Sweep B.
func (r *OrderRepository) PendingCandidates() ([]SweepCandidate, error) {
	return r.candidates("pending", "_fireob_payment_code")
}

// Ordering is meta value ascending then order id descending; deterministic
// only, no cross-order dependency.
func (r *OrderRepository) candidates(status, metaKey string) ([]SweepCandidate, error) {
	var out []SweepCandidate
	err := r.db.Table("order_meta").
		Select("order_meta.order_id, order_meta.meta_value").
		Joins("JOIN orders ON orders.id = order_meta.order_id").
		Where("orders.status = ? AND order_meta.meta_key = ? AND orders.deleted_at IS NULL", status, metaKey).
		Order("order_meta.meta_value ASC, order_meta.order_id DESC").
		Scan(&out).Error
	return out, err
}
