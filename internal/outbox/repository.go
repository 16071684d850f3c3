package outbox

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

// MaxDeliveryAttempts bounds retries of a failed purchase delivery.
const MaxDeliveryAttempts = 3

// PurchaseOutboxRepository handles database operations for purchase outbox rows
type PurchaseOutboxRepository interface {
	// Create inserts a new outbox row
	Create(ctx context.Context, order *domain.PurchaseOrder) error

	// GetByID retrieves an outbox row by ID
	GetByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error)

	// GetPending retrieves rows awaiting first delivery (status = 'pending')
	GetPending(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error)

	// GetRetryable retrieves failed rows still under the retry budget
	GetRetryable(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error)

	// MarkDelivered flags a row as delivered upstream
	MarkDelivered(ctx context.Context, id int64) error

	// MarkFailed records a delivery failure and bumps the retry counter
	MarkFailed(ctx context.Context, id int64, errMsg string) error

	// DeleteDeliveredBefore removes delivered rows older than the cutoff
	DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) error
}

// GormPurchaseOutboxRepository is the GORM implementation of PurchaseOutboxRepository
type GormPurchaseOutboxRepository struct {
	DB *gorm.DB
}

func NewGormPurchaseOutboxRepository(db *gorm.DB) *GormPurchaseOutboxRepository {
	return &GormPurchaseOutboxRepository{DB: db}
}

func (r *GormPurchaseOutboxRepository) Create(ctx context.Context, order *domain.PurchaseOrder) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormPurchaseOutboxRepository) GetByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	err := r.DB.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormPurchaseOutboxRepository) GetPending(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error) {
	var orders []*domain.PurchaseOrder
	err := r.DB.WithContext(ctx).
		Where("status = ?", domain.PurchaseStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *GormPurchaseOutboxRepository) GetRetryable(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error) {
	var orders []*domain.PurchaseOrder
	err := r.DB.WithContext(ctx).
		Where("status = ?", domain.PurchaseStatusFailed).
		Where("retry_count < ?", MaxDeliveryAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *GormPurchaseOutboxRepository) MarkDelivered(ctx context.Context, id int64) error {
	now := time.Now()
	return r.DB.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.PurchaseStatusDelivered,
			"delivered_at": now,
			"last_error":   "",
		}).Error
}

func (r *GormPurchaseOutboxRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return r.DB.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      domain.PurchaseStatusFailed,
			"last_error":  errMsg,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
}

func (r *GormPurchaseOutboxRepository) DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) error {
	return r.DB.WithContext(ctx).
		Where("status = ? AND delivered_at < ?", domain.PurchaseStatusDelivered, cutoff).
		Delete(&domain.PurchaseOrder{}).Error
}
