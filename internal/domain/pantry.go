package domain

import "time"

// PantryRecord is one user's tracked stock of one product. The composite
// unique index makes the one-record-per-(user,product) invariant structural
// instead of relying on linear search during merge.
type PantryRecord struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	UserID         int64     `gorm:"uniqueIndex:idx_pantry_user_product" json:"userId"`
	ProductID      int64     `gorm:"uniqueIndex:idx_pantry_user_product" json:"productId"`
	QuantityClosed int       `json:"quantityClosed"`
	QuantityOpen   int       `json:"quantityOpen"`
	QuantityWeight float64   `json:"quantityWeight"`
	MinDesired     float64   `json:"minDesired"`
	ExpiresAt      string    `gorm:"size:10" json:"expiresAt"` // nearest known expiry, ISO YYYY-MM-DD, empty if unknown
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName Specify table name
func (PantryRecord) TableName() string {
	return "pantry_record"
}
