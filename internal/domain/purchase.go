package domain

import "time"

// Purchase outbox states. A purchase is applied to local pantry state
// first; delivery to the upstream service is best effort and never rolls
// the local merge back.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusDelivered = "delivered"
	PurchaseStatusFailed    = "failed"
)

// PurchaseOrder is an outbox row for a reconciled purchase awaiting
// delivery to the upstream pantry service.
type PurchaseOrder struct {
	ID           int64      `gorm:"primaryKey" json:"id,string"`
	UserID       int64      `gorm:"index" json:"user_id"`
	StoreName    string     `json:"store_name"`
	PurchaseDate string     `gorm:"size:10" json:"purchase_date"`
	Payload      string     `gorm:"type:text" json:"payload"` // normalized purchase JSON sent upstream
	Status       string     `gorm:"size:16;index" json:"status"`
	RetryCount   int        `json:"retry_count"`
	LastError    string     `json:"last_error"`
	DeliveredAt  *time.Time `json:"delivered_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (PurchaseOrder) TableName() string {
	return "purchase_order"
}
